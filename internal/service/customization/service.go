package customization

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"operator-panel/internal/domain"
	"operator-panel/internal/shopify"

	"go.uber.org/zap"
)

// Title and function handle of the operator-only payment customization.
const (
	Title          = "CC IVR - Operator Only"
	FunctionHandle = "cc-ivr"
)

const listQuery = `
query getPaymentCustomizations {
  paymentCustomizations(first: 50) {
    nodes {
      id
      title
      enabled
      functionId
    }
  }
}`

const createMutation = `
mutation createPaymentCustomization($title: String!, $functionHandle: String!, $enabled: Boolean!) {
  paymentCustomizationCreate(paymentCustomization: {
    title: $title
    functionHandle: $functionHandle
    enabled: $enabled
  }) {
    paymentCustomization {
      id
      title
      enabled
      functionId
    }
    userErrors {
      field
      message
    }
  }
}`

const updateMutation = `
mutation updatePaymentCustomization($id: ID!, $enabled: Boolean!) {
  paymentCustomizationUpdate(id: $id, paymentCustomization: {
    enabled: $enabled
  }) {
    paymentCustomization {
      id
      title
      enabled
    }
    userErrors {
      field
      message
    }
  }
}`

const deleteMutation = `
mutation deletePaymentCustomization($id: ID!) {
  paymentCustomizationDelete(id: $id) {
    deletedId
    userErrors {
      field
      message
    }
  }
}`

// Service manages the cc-ivr payment customization through the Admin API.
type Service struct {
	admin  shopify.AdminClient
	logger *zap.Logger
}

// New creates a Service.
func New(admin shopify.AdminClient, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{admin: admin, logger: logger}
}

// List returns all payment customizations plus the cc-ivr one when found
// (matched by its fixed title, or any title mentioning the payment method).
func (s *Service) List(ctx context.Context) (operator *domain.PaymentCustomization, all []domain.PaymentCustomization, err error) {
	resp, err := s.admin.Execute(ctx, listQuery, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("list payment customizations: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, nil, &domain.TransportError{Messages: resp.ErrorMessages()}
	}

	var payload struct {
		PaymentCustomizations struct {
			Nodes []domain.PaymentCustomization `json:"nodes"`
		} `json:"paymentCustomizations"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, nil, fmt.Errorf("parse payment customizations: %w", err)
	}

	all = payload.PaymentCustomizations.Nodes
	if all == nil {
		all = []domain.PaymentCustomization{}
	}
	for i := range all {
		if all[i].Title == Title || strings.Contains(all[i].Title, "クレカIVR") {
			operator = &all[i]
			break
		}
	}
	return operator, all, nil
}

// Create registers the customization bound to the cc-ivr function, enabled.
func (s *Service) Create(ctx context.Context) (*domain.PaymentCustomization, error) {
	resp, err := s.admin.Execute(ctx, createMutation, map[string]interface{}{
		"title":          Title,
		"functionHandle": FunctionHandle,
		"enabled":        true,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment customization: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, &domain.TransportError{Messages: resp.ErrorMessages()}
	}

	var payload struct {
		PaymentCustomizationCreate struct {
			PaymentCustomization *domain.PaymentCustomization `json:"paymentCustomization"`
			UserErrors           []domain.UserError           `json:"userErrors"`
		} `json:"paymentCustomizationCreate"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("parse create payload: %w", err)
	}
	if len(payload.PaymentCustomizationCreate.UserErrors) > 0 {
		return nil, &domain.FieldError{UserErrors: payload.PaymentCustomizationCreate.UserErrors}
	}
	return payload.PaymentCustomizationCreate.PaymentCustomization, nil
}

// SetEnabled toggles the customization.
func (s *Service) SetEnabled(ctx context.Context, id string, enabled bool) (*domain.PaymentCustomization, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &domain.ValidationError{Message: "customization id required"}
	}
	resp, err := s.admin.Execute(ctx, updateMutation, map[string]interface{}{
		"id":      id,
		"enabled": enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("update payment customization: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, &domain.TransportError{Messages: resp.ErrorMessages()}
	}

	var payload struct {
		PaymentCustomizationUpdate struct {
			PaymentCustomization *domain.PaymentCustomization `json:"paymentCustomization"`
			UserErrors           []domain.UserError           `json:"userErrors"`
		} `json:"paymentCustomizationUpdate"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("parse update payload: %w", err)
	}
	if len(payload.PaymentCustomizationUpdate.UserErrors) > 0 {
		return nil, &domain.FieldError{UserErrors: payload.PaymentCustomizationUpdate.UserErrors}
	}
	return payload.PaymentCustomizationUpdate.PaymentCustomization, nil
}

// Delete removes the customization and returns the deleted id.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", &domain.ValidationError{Message: "customization id required"}
	}
	resp, err := s.admin.Execute(ctx, deleteMutation, map[string]interface{}{
		"id": id,
	})
	if err != nil {
		return "", fmt.Errorf("delete payment customization: %w", err)
	}
	if len(resp.Errors) > 0 {
		return "", &domain.TransportError{Messages: resp.ErrorMessages()}
	}

	var payload struct {
		PaymentCustomizationDelete struct {
			DeletedID  string             `json:"deletedId"`
			UserErrors []domain.UserError `json:"userErrors"`
		} `json:"paymentCustomizationDelete"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return "", fmt.Errorf("parse delete payload: %w", err)
	}
	if len(payload.PaymentCustomizationDelete.UserErrors) > 0 {
		return "", &domain.FieldError{UserErrors: payload.PaymentCustomizationDelete.UserErrors}
	}
	return payload.PaymentCustomizationDelete.DeletedID, nil
}
