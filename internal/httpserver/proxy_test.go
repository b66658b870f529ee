package httpserver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"operator-panel/internal/config"
	"operator-panel/internal/service/customization"
	"operator-panel/internal/service/importer"
	"operator-panel/internal/service/search"
	"operator-panel/internal/shopify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type stubAdmin struct {
	mu    sync.Mutex
	resp  *shopify.GraphQLResponse
	err   error
	calls int
}

func (s *stubAdmin) Execute(_ context.Context, _ string, _ map[string]interface{}) (*shopify.GraphQLResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.resp, s.err
}

func newTestRouter(admin shopify.AdminClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	return buildRouter(logger, nil, Deps{
		Cfg:              config.Config{APISecret: testSecret},
		SearchSvc:        search.New(admin, logger),
		ImportSvc:        importer.New(admin, logger),
		CustomizationSvc: customization.New(admin, logger),
	})
}

// signQuery appends a valid App Proxy signature to the given query values.
func signQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(strings.Join(params[k], ","))
	}

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(sb.String()))
	params.Set("signature", hex.EncodeToString(mac.Sum(nil)))
	return params.Encode()
}

func TestProxy_RejectsInvalidSignature(t *testing.T) {
	admin := &stubAdmin{}
	router := newTestRouter(admin)

	req := httptest.NewRequest(http.MethodGet, "/proxy/customers?query=taro&signature=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if admin.calls != 0 {
		t.Fatalf("unauthenticated request must not reach the admin api")
	}
}

func TestProxy_RejectsMissingSignature(t *testing.T) {
	router := newTestRouter(&stubAdmin{})

	req := httptest.NewRequest(http.MethodGet, "/proxy/customers?query=taro", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestImportHandler_PreflightReturns204(t *testing.T) {
	router := newTestRouter(&stubAdmin{})

	req := httptest.NewRequest(http.MethodOptions, "/proxy/import-customer", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected permissive CORS headers, got %v", rec.Header())
	}
}

func TestImportHandler_MissingFieldsRejectedBeforeExternalCalls(t *testing.T) {
	admin := &stubAdmin{}
	router := newTestRouter(admin)

	query := signQuery(url.Values{})
	req := httptest.NewRequest(http.MethodPost, "/proxy/import-customer?"+query, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Success || body.Error != msgMissingFields {
		t.Fatalf("body = %+v", body)
	}
	if admin.calls != 0 {
		t.Fatalf("validation failure must not reach the admin api")
	}
}

func TestImportHandler_MalformedBody(t *testing.T) {
	router := newTestRouter(&stubAdmin{})

	query := signQuery(url.Values{})
	req := httptest.NewRequest(http.MethodPost, "/proxy/import-customer?"+query, strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgBodyUnreadable) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestImportHandler_Success(t *testing.T) {
	data := `{"customerUpdate":{"customer":{"id":"gid://shopify/Customer/9","firstName":"花子","lastName":"鈴木","metafields":{"nodes":[]}},"userErrors":[]}}`
	admin := &stubAdmin{resp: &shopify.GraphQLResponse{Data: json.RawMessage(data)}}
	router := newTestRouter(admin)

	body := `{"operatorCustomerId":"o1","sourceCustomer":{"id":"c1","metafields":{"birthday":"1990-01-02"}}}`
	query := signQuery(url.Values{})
	req := httptest.NewRequest(http.MethodPost, "/proxy/import-customer?"+query, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q, want no-store", got)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSearchHandler_EmptyQuery(t *testing.T) {
	admin := &stubAdmin{}
	router := newTestRouter(admin)

	query := signQuery(url.Values{"query": {"   "}})
	req := httptest.NewRequest(http.MethodGet, "/proxy/customers?"+query, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgEmptyQuery) {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if admin.calls != 0 {
		t.Fatalf("blank query must not reach the admin api")
	}
}

func TestSearchHandler_Success(t *testing.T) {
	data := `{"customers":{"nodes":[{"id":"gid://shopify/Customer/1","firstName":"太郎","tags":[]}]}}`
	admin := &stubAdmin{resp: &shopify.GraphQLResponse{Data: json.RawMessage(data)}}
	router := newTestRouter(admin)

	query := signQuery(url.Values{"query": {"太郎"}})
	req := httptest.NewRequest(http.MethodGet, "/proxy/customers?"+query, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q, want no-store", got)
	}

	var body searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if !body.Success || body.TotalCount != 1 || len(body.Customers) != 1 {
		t.Fatalf("body = %+v", body)
	}
	if body.Customers[0].FirstName != "太郎" {
		t.Fatalf("customer = %+v", body.Customers[0])
	}
}

func TestSearchHandler_ExternalFailureIsGeneric(t *testing.T) {
	admin := &stubAdmin{resp: &shopify.GraphQLResponse{
		Errors: []shopify.GraphQLError{{Message: "internal schema detail"}},
	}}
	router := newTestRouter(admin)

	query := signQuery(url.Values{"query": {"taro"}})
	req := httptest.NewRequest(http.MethodGet, "/proxy/customers?"+query, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "internal schema detail") {
		t.Fatalf("internal error detail leaked: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), msgSearchFailed) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestPaymentFunctionEndpoint(t *testing.T) {
	router := newTestRouter(&stubAdmin{})

	// Guest checkout: the operator-only method gets hidden.
	body := `{"cart":{"operatorName":null},"paymentMethods":[{"id":"pm-2","name":"クレカIVR"}]}`
	req := httptest.NewRequest(http.MethodPost, "/function/cart-payment-methods/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"paymentMethodId":"pm-2"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}

	// Operator checkout: no changes.
	body = `{"cart":{"operatorName":{"value":"山田"}},"paymentMethods":[{"id":"pm-2","name":"クレカIVR"}]}`
	req = httptest.NewRequest(http.MethodPost, "/function/cart-payment-methods/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"operations":[]`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
