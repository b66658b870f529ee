package importer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"operator-panel/internal/domain"
	"operator-panel/internal/shopify"
)

type adminCall struct {
	query     string
	variables map[string]interface{}
}

type stubAdmin struct {
	mu    sync.Mutex
	calls []adminCall

	updateResp  *shopify.GraphQLResponse
	updateErr   error
	addressResp *shopify.GraphQLResponse
	addressErr  error
	deleteResp  *shopify.GraphQLResponse
	deleteErr   error
}

func (s *stubAdmin) Execute(_ context.Context, query string, variables map[string]interface{}) (*shopify.GraphQLResponse, error) {
	s.mu.Lock()
	s.calls = append(s.calls, adminCall{query: query, variables: variables})
	s.mu.Unlock()

	switch {
	case strings.Contains(query, "customerUpdate"):
		return s.updateResp, s.updateErr
	case strings.Contains(query, "customerAddressCreate"):
		return s.addressResp, s.addressErr
	case strings.Contains(query, "metafieldsDelete"):
		return s.deleteResp, s.deleteErr
	}
	return nil, errors.New("unexpected query")
}

func (s *stubAdmin) callsMatching(substr string) []adminCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []adminCall
	for _, call := range s.calls {
		if strings.Contains(call.query, substr) {
			out = append(out, call)
		}
	}
	return out
}

func okResponse(data string) *shopify.GraphQLResponse {
	return &shopify.GraphQLResponse{Data: json.RawMessage(data)}
}

const updateOK = `{"customerUpdate":{"customer":{"id":"gid://shopify/Customer/9","firstName":"花子","lastName":"鈴木","metafields":{"nodes":[{"namespace":"custom","key":"card_id","value":"7"}]}},"userErrors":[]}}`

func TestImport_MissingInputsMakeNoCalls(t *testing.T) {
	admin := &stubAdmin{}
	svc := New(admin, nil)

	if _, err := svc.Import(context.Background(), "", &domain.SourceCustomer{ID: "c1"}); err == nil {
		t.Fatalf("expected validation error for missing operator id")
	}
	if _, err := svc.Import(context.Background(), "o1", nil); err == nil {
		t.Fatalf("expected validation error for missing source customer")
	}

	var validationErr *domain.ValidationError
	_, err := svc.Import(context.Background(), " ", nil)
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(admin.calls) != 0 {
		t.Fatalf("expected zero external calls, got %d", len(admin.calls))
	}
}

func TestImport_NoAddressAndAbsentBirthday(t *testing.T) {
	admin := &stubAdmin{
		updateResp: okResponse(updateOK),
		deleteResp: okResponse(`{"metafieldsDelete":{"deletedMetafields":[],"userErrors":[]}}`),
	}
	svc := New(admin, nil)

	result, err := svc.Import(context.Background(), "o1", &domain.SourceCustomer{
		ID: "c1",
		Metafields: domain.SourceMetafields{
			CardID: strPtr("7"),
			Points: intPtr(150),
		},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !result.Success || result.Customer == nil || result.Customer.ID != "gid://shopify/Customer/9" {
		t.Fatalf("unexpected result %+v", result)
	}

	updates := admin.callsMatching("customerUpdate")
	if len(updates) != 1 {
		t.Fatalf("expected 1 customerUpdate call, got %d", len(updates))
	}
	input := updates[0].variables["input"].(map[string]interface{})
	if input["id"] != "o1" {
		t.Fatalf("update targeted %v, want o1", input["id"])
	}
	metafields := input["metafields"].([]domain.MetafieldInput)
	checks := map[string]string{
		domain.KeyCardID:          "7",
		domain.KeyPoints:          "150",
		domain.KeyGender:          GenderUnanswered,
		domain.KeyShippingAddress: "{}",
	}
	for key, want := range checks {
		if got := findMetafield(t, metafields, key).Value; got != want {
			t.Fatalf("metafield %s = %q, want %q", key, got, want)
		}
	}

	if got := len(admin.callsMatching("metafieldsDelete")); got != 1 {
		t.Fatalf("expected 1 birthday delete call, got %d", got)
	}
	if got := len(admin.callsMatching("customerAddressCreate")); got != 0 {
		t.Fatalf("expected no address create call, got %d", got)
	}
}

func TestImport_TransportErrorAbortsSideCalls(t *testing.T) {
	admin := &stubAdmin{
		updateResp: &shopify.GraphQLResponse{
			Errors: []shopify.GraphQLError{{Message: "throttled"}},
		},
	}
	svc := New(admin, nil)

	_, err := svc.Import(context.Background(), "o1", &domain.SourceCustomer{ID: "c1"})
	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if len(admin.calls) != 1 {
		t.Fatalf("expected side calls to be skipped, got %d calls", len(admin.calls))
	}
}

func TestImport_UserErrorsSurfacePerField(t *testing.T) {
	admin := &stubAdmin{
		updateResp: okResponse(`{"customerUpdate":{"customer":null,"userErrors":[{"field":["input","metafields"],"message":"invalid value"}]}}`),
	}
	svc := New(admin, nil)

	_, err := svc.Import(context.Background(), "o1", &domain.SourceCustomer{ID: "c1"})
	var fieldErr *domain.FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if got := fieldErr.Error(); got != "input.metafields: invalid value" {
		t.Fatalf("joined message = %q", got)
	}
	if len(admin.calls) != 1 {
		t.Fatalf("expected side calls to be skipped, got %d calls", len(admin.calls))
	}
}

func TestImport_AddressCreateFailureIsNotFatal(t *testing.T) {
	admin := &stubAdmin{
		updateResp: okResponse(updateOK),
		addressErr: errors.New("boom"),
	}
	svc := New(admin, nil)

	result, err := svc.Import(context.Background(), "o1", &domain.SourceCustomer{
		ID:             "c1",
		Metafields:     domain.SourceMetafields{Birthday: strPtr("1990-01-02")},
		DefaultAddress: &domain.SourceAddress{Address1: "1-2-3 Ginza"},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success despite address failure")
	}

	if got := len(admin.callsMatching("customerAddressCreate")); got != 1 {
		t.Fatalf("expected 1 address create attempt, got %d", got)
	}
	// Birthday present, so no delete.
	if got := len(admin.callsMatching("metafieldsDelete")); got != 0 {
		t.Fatalf("expected no birthday delete call, got %d", got)
	}
}

func TestImport_BirthdayDeleteFailureIsNotFatal(t *testing.T) {
	admin := &stubAdmin{
		updateResp: okResponse(updateOK),
		deleteErr:  errors.New("boom"),
	}
	svc := New(admin, nil)

	result, err := svc.Import(context.Background(), "o1", &domain.SourceCustomer{ID: "c1"})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success despite delete failure")
	}
}
