package httpserver

import (
	"errors"
	"net/http"

	"operator-panel/internal/domain"
	"operator-panel/internal/service/customization"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func listCustomizationsHandler(svc *customization.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator, all, err := svc.List(c.Request.Context())
		if err != nil {
			logger.Error("list payment customizations failed", zap.Error(err))
			status, body := customizationErrorResponse(err)
			c.JSON(status, body)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":            true,
			"ccIvrCustomization": operator,
			"allCustomizations":  all,
		})
	}
}

func createCustomizationHandler(svc *customization.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		created, err := svc.Create(c.Request.Context())
		if err != nil {
			logger.Error("create payment customization failed", zap.Error(err))
			status, body := customizationErrorResponse(err)
			c.JSON(status, body)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "Payment customization created successfully!",
			"customization": created,
		})
	}
}

func setCustomizationEnabledHandler(svc *customization.Service, logger *zap.Logger, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		updated, err := svc.SetEnabled(c.Request.Context(), c.Param("id"), enabled)
		if err != nil {
			logger.Error("update payment customization failed", zap.Error(err))
			status, body := customizationErrorResponse(err)
			c.JSON(status, body)
			return
		}
		message := "Payment customization disabled"
		if enabled {
			message = "Payment customization enabled"
		}
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       message,
			"customization": updated,
		})
	}
}

func deleteCustomizationHandler(svc *customization.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		deletedID, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			logger.Error("delete payment customization failed", zap.Error(err))
			status, body := customizationErrorResponse(err)
			c.JSON(status, body)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Payment customization deleted",
			"deletedId": deletedID,
		})
	}
}

func customizationErrorResponse(err error) (int, gin.H) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, gin.H{"success": false, "error": validationErr.Error()}
	}
	var fieldErr *domain.FieldError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, gin.H{"success": false, "error": fieldErr.Error()}
	}
	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusInternalServerError, gin.H{"success": false, "error": transportErr.Error()}
	}
	return http.StatusInternalServerError, gin.H{"success": false, "error": "server error"}
}
