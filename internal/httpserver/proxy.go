package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"operator-panel/internal/domain"
	"operator-panel/internal/service/importer"
	"operator-panel/internal/service/search"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// User-facing messages are localized; server-side failures stay generic
// while validation failures name the missing condition.
const (
	msgEmptyQuery     = "検索クエリを入力してください"
	msgSearchFailed   = "顧客データの取得に失敗しました"
	msgServerError    = "サーバーエラーが発生しました"
	msgBodyUnreadable = "リクエストボディの解析に失敗しました"
	msgMissingFields  = "オペレーターIDまたは顧客データが不足しています"
	msgUpdateFailed   = "顧客データの更新に失敗しました"
)

type searchResponse struct {
	Success    bool                    `json:"success"`
	Customers  []domain.SourceCustomer `json:"customers"`
	TotalCount int                     `json:"totalCount"`
}

type searchErrorResponse struct {
	Success   bool                    `json:"success"`
	Error     string                  `json:"error"`
	Customers []domain.SourceCustomer `json:"customers"`
}

func searchHandler(svc *search.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("query")
		if strings.TrimSpace(query) == "" {
			c.JSON(http.StatusBadRequest, searchErrorResponse{
				Error:     msgEmptyQuery,
				Customers: []domain.SourceCustomer{},
			})
			return
		}

		customers, err := svc.Search(c.Request.Context(), query)
		if err != nil {
			// Internal detail is logged by the service; the caller only
			// ever sees a generic message.
			logger.Error("customer search failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, searchErrorResponse{
				Error:     searchFailureMessage(err),
				Customers: []domain.SourceCustomer{},
			})
			return
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, searchResponse{
			Success:    true,
			Customers:  customers,
			TotalCount: len(customers),
		})
	}
}

func searchFailureMessage(err error) string {
	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		return msgSearchFailed
	}
	return msgServerError
}

type importRequest struct {
	OperatorCustomerID string                 `json:"operatorCustomerId"`
	SourceCustomer     *domain.SourceCustomer `json:"sourceCustomer"`
}

func importHandler(svc *importer.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req importRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("import body unreadable", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgBodyUnreadable})
			return
		}
		if strings.TrimSpace(req.OperatorCustomerID) == "" || req.SourceCustomer == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgMissingFields})
			return
		}

		result, err := svc.Import(c.Request.Context(), req.OperatorCustomerID, req.SourceCustomer)
		if err != nil {
			status, body := importErrorResponse(err)
			logger.Error("customer import failed", zap.Error(err))
			c.JSON(status, body)
			return
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, result)
	}
}

// importErrorResponse maps the error taxonomy onto HTTP statuses: caller
// mistakes and field rejections are 4xx, everything downstream is a 5xx
// with a generic message.
func importErrorResponse(err error) (int, gin.H) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, gin.H{"success": false, "error": msgMissingFields}
	}

	var fieldErr *domain.FieldError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, gin.H{
			"success":    false,
			"error":      fieldErr.Error(),
			"userErrors": fieldErr.UserErrors,
		}
	}

	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   msgUpdateFailed,
			"details": transportErr.Messages,
		}
	}

	return http.StatusInternalServerError, gin.H{"success": false, "error": msgServerError}
}
