package domain

// AmountSpent is the lifetime spend of a customer as reported by the
// Admin API.
type AmountSpent struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// SourceMetafields holds the operator-panel metafields of a source customer.
// Pointers distinguish "absent" from "present but empty".
type SourceMetafields struct {
	CardID     *string `json:"cardId"`
	Points     *int    `json:"points"`
	Gender     *string `json:"gender"`
	CustomerID *string `json:"customerId"`
	Birthday   *string `json:"birthday"`
}

// SourceAddress is the raw default address attached to a search result.
type SourceAddress struct {
	Address1      string `json:"address1"`
	Address2      string `json:"address2"`
	City          string `json:"city"`
	Company       string `json:"company"`
	Country       string `json:"country"`
	CountryCodeV2 string `json:"countryCodeV2"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	ProvinceCode  string `json:"provinceCode"`
	Zip           string `json:"zip"`
}

// SourceCustomer is a read-only snapshot of a customer found by search.
// It is constructed fresh per search response and discarded after the
// caller imports it or abandons the search.
type SourceCustomer struct {
	ID             string           `json:"id"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	CreatedAt      string           `json:"createdAt,omitempty"`
	NumberOfOrders int              `json:"numberOfOrders"`
	AmountSpent    AmountSpent      `json:"amountSpent"`
	DefaultAddress *SourceAddress   `json:"defaultAddress"`
	Tags           []string         `json:"tags"`
	Metafields     SourceMetafields `json:"metafields"`
}
