package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"operator-panel/internal/domain"
	"operator-panel/internal/shopify"

	"go.uber.org/zap"
)

const searchCustomersQuery = `
query SearchCustomers($query: String!) {
  customers(first: 20, query: $query) {
    nodes {
      id
      firstName
      lastName
      defaultEmailAddress {
        emailAddress
      }
      defaultPhoneNumber {
        phoneNumber
      }
      createdAt
      numberOfOrders
      amountSpent {
        amount
        currencyCode
      }
      defaultAddress {
        address1
        address2
        city
        company
        country
        countryCodeV2
        firstName
        lastName
        phone
        province
        provinceCode
        zip
      }
      tags
      cardId: metafield(namespace: "custom", key: "card_id") {
        value
      }
      points: metafield(namespace: "custom", key: "points") {
        value
      }
      gender: metafield(namespace: "custom", key: "gender") {
        value
      }
      customerId: metafield(namespace: "custom", key: "customer_id") {
        value
      }
      birthday: metafield(namespace: "custom", key: "birthday") {
        value
      }
    }
  }
}`

// Service finds customers through the Admin API and maps them into the
// canonical shape the importer consumes.
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

// Search runs a customer query. An empty query is rejected before any
// external call. Raw result shapes are tolerated field by field: missing
// text becomes empty string, missing metafields stay nil, missing tags
// become an empty list.
func (s *Service) Search(ctx context.Context, query string) ([]domain.SourceCustomer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Message: "search query required"}
	}

	resp, err := s.admin.Execute(ctx, searchCustomersQuery, map[string]interface{}{
		"query": query,
	})
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	if len(resp.Errors) > 0 {
		s.logger.Error("customer search failed",
			zap.String("query", query),
			zap.Strings("errors", resp.ErrorMessages()))
		return nil, &domain.TransportError{Messages: resp.ErrorMessages()}
	}

	var payload struct {
		Customers struct {
			Nodes []rawCustomer `json:"nodes"`
		} `json:"customers"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("parse search payload: %w", err)
	}

	customers := make([]domain.SourceCustomer, 0, len(payload.Customers.Nodes))
	for _, node := range payload.Customers.Nodes {
		customers = append(customers, node.toSourceCustomer())
	}
	return customers, nil
}

type metafieldValue struct {
	Value string `json:"value"`
}

type rawCustomer struct {
	ID                  string `json:"id"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	DefaultEmailAddress *struct {
		EmailAddress string `json:"emailAddress"`
	} `json:"defaultEmailAddress"`
	DefaultPhoneNumber *struct {
		PhoneNumber string `json:"phoneNumber"`
	} `json:"defaultPhoneNumber"`
	CreatedAt      string                `json:"createdAt"`
	NumberOfOrders string                `json:"numberOfOrders"`
	AmountSpent    *domain.AmountSpent   `json:"amountSpent"`
	DefaultAddress *domain.SourceAddress `json:"defaultAddress"`
	Tags           []string              `json:"tags"`
	CardID         *metafieldValue       `json:"cardId"`
	Points         *metafieldValue       `json:"points"`
	Gender         *metafieldValue       `json:"gender"`
	CustomerID     *metafieldValue       `json:"customerId"`
	Birthday       *metafieldValue       `json:"birthday"`
}

func (r rawCustomer) toSourceCustomer() domain.SourceCustomer {
	c := domain.SourceCustomer{
		ID:             r.ID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		CreatedAt:      r.CreatedAt,
		DefaultAddress: r.DefaultAddress,
		Tags:           r.Tags,
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if r.DefaultEmailAddress != nil {
		c.Email = r.DefaultEmailAddress.EmailAddress
	}
	if r.DefaultPhoneNumber != nil {
		c.Phone = r.DefaultPhoneNumber.PhoneNumber
	}
	if r.AmountSpent != nil {
		c.AmountSpent = *r.AmountSpent
	}
	// numberOfOrders arrives as a stringified unsigned integer.
	if n, err := strconv.Atoi(r.NumberOfOrders); err == nil {
		c.NumberOfOrders = n
	}

	c.Metafields = domain.SourceMetafields{
		CardID:     textValue(r.CardID),
		Gender:     textValue(r.Gender),
		CustomerID: textValue(r.CustomerID),
		Birthday:   textValue(r.Birthday),
		Points:     intValue(r.Points),
	}
	return c
}

func textValue(m *metafieldValue) *string {
	if m == nil || m.Value == "" {
		return nil
	}
	v := m.Value
	return &v
}

// intValue treats an unparsable points metafield as absent; the "0"
// default is applied at write time, not here.
func intValue(m *metafieldValue) *int {
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(m.Value))
	if err != nil {
		return nil
	}
	return &n
}
