package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"operator-panel/internal/domain"
	"operator-panel/internal/shopify"

	"go.uber.org/zap"
)

const customerUpdateMutation = `
mutation UpdateOperatorCustomer($input: CustomerInput!) {
  customerUpdate(input: $input) {
    customer {
      id
      firstName
      lastName
      metafields(first: 10) {
        nodes {
          namespace
          key
          value
        }
      }
    }
    userErrors {
      field
      message
    }
  }
}`

const addressCreateMutation = `
mutation CreateOperatorAddress($customerId: ID!, $address: MailingAddressInput!) {
  customerAddressCreate(customerId: $customerId, address: $address) {
    customerAddress {
      id
    }
    userErrors {
      field
      message
    }
  }
}`

const metafieldsDeleteMutation = `
mutation DeleteBirthdayMetafield($metafields: [MetafieldIdentifierInput!]!) {
  metafieldsDelete(metafields: $metafields) {
    deletedMetafields {
      ownerId
      namespace
      key
    }
    userErrors {
      field
      message
    }
  }
}`

// Service copies a source customer's metafields and address onto an
// operator account.
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

// Import writes the normalized metafield set onto the operator account,
// then issues the best-effort address create and birthday delete. Only the
// metafield write decides the overall outcome; the side calls are logged
// on failure and never abort the import.
func (s *Service) Import(ctx context.Context, operatorCustomerID string, src *domain.SourceCustomer) (*domain.ImportResult, error) {
	if strings.TrimSpace(operatorCustomerID) == "" || src == nil {
		return nil, &domain.ValidationError{Message: "operator customer id and source customer are required"}
	}

	n := Normalize(*src)

	updated, err := s.writeMetafields(ctx, operatorCustomerID, n.Metafields)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	if n.AccountAddress != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.createAddress(ctx, operatorCustomerID, *n.AccountAddress)
		}()
	}
	if n.DeleteBirthday {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.deleteBirthday(ctx, operatorCustomerID)
		}()
	}
	wg.Wait()

	return &domain.ImportResult{
		Success:  true,
		Message:  "顧客データを取り込みました",
		Customer: updated,
	}, nil
}

func (s *Service) writeMetafields(ctx context.Context, operatorCustomerID string, metafields []domain.MetafieldInput) (*domain.UpdatedCustomer, error) {
	resp, err := s.admin.Execute(ctx, customerUpdateMutation, map[string]interface{}{
		"input": map[string]interface{}{
			"id":         operatorCustomerID,
			"metafields": metafields,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("customer update: %w", err)
	}
	if len(resp.Errors) > 0 {
		s.logger.Error("customer update failed",
			zap.String("operatorCustomerId", operatorCustomerID),
			zap.Strings("errors", resp.ErrorMessages()))
		return nil, &domain.TransportError{Messages: resp.ErrorMessages()}
	}

	var payload struct {
		CustomerUpdate struct {
			Customer   *domain.UpdatedCustomer `json:"customer"`
			UserErrors []domain.UserError      `json:"userErrors"`
		} `json:"customerUpdate"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("parse customer update payload: %w", err)
	}
	if len(payload.CustomerUpdate.UserErrors) > 0 {
		s.logger.Error("customer update rejected",
			zap.String("operatorCustomerId", operatorCustomerID),
			zap.Any("userErrors", payload.CustomerUpdate.UserErrors))
		return nil, &domain.FieldError{UserErrors: payload.CustomerUpdate.UserErrors}
	}

	return payload.CustomerUpdate.Customer, nil
}

// createAddress is best effort: metafield propagation is the higher
// priority channel, so a failed address create does not fail the import.
func (s *Service) createAddress(ctx context.Context, operatorCustomerID string, addr domain.MailingAddressInput) {
	resp, err := s.admin.Execute(ctx, addressCreateMutation, map[string]interface{}{
		"customerId": operatorCustomerID,
		"address":    addr,
	})
	if err != nil {
		s.logger.Warn("address create failed",
			zap.String("operatorCustomerId", operatorCustomerID),
			zap.Error(err))
		return
	}
	if len(resp.Errors) > 0 {
		s.logger.Warn("address create failed",
			zap.String("operatorCustomerId", operatorCustomerID),
			zap.Strings("errors", resp.ErrorMessages()))
		return
	}

	var payload struct {
		CustomerAddressCreate struct {
			UserErrors []domain.UserError `json:"userErrors"`
		} `json:"customerAddressCreate"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		s.logger.Warn("address create payload unreadable", zap.Error(err))
		return
	}
	if len(payload.CustomerAddressCreate.UserErrors) > 0 {
		s.logger.Warn("address create rejected",
			zap.String("operatorCustomerId", operatorCustomerID),
			zap.Any("userErrors", payload.CustomerAddressCreate.UserErrors))
	}
}

// deleteBirthday is best effort and runs only after the metafield write
// has settled, since it operates on the account's post-write state.
func (s *Service) deleteBirthday(ctx context.Context, operatorCustomerID string) {
	resp, err := s.admin.Execute(ctx, metafieldsDeleteMutation, map[string]interface{}{
		"metafields": []map[string]string{{
			"ownerId":   operatorCustomerID,
			"namespace": domain.MetafieldNamespace,
			"key":       domain.KeyBirthday,
		}},
	})
	if err != nil {
		s.logger.Warn("birthday delete failed",
			zap.String("operatorCustomerId", operatorCustomerID),
			zap.Error(err))
		return
	}
	if len(resp.Errors) > 0 {
		s.logger.Warn("birthday delete failed",
			zap.String("operatorCustomerId", operatorCustomerID),
			zap.Strings("errors", resp.ErrorMessages()))
	}
}
