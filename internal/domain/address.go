package domain

// DefaultCountryCode is substituted whenever a source address carries no
// ISO country code.
const DefaultCountryCode = "JP"

// MailingAddressInput is the account-write shape of an address, matching
// the Admin API's MailingAddressInput (country as a display name).
type MailingAddressInput struct {
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Company   string `json:"company"`
	Country   string `json:"country"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
}

// CheckoutAddress is the checkout-apply shape of an address (ISO country
// and province codes). It is what gets serialized into the
// shipping_address metafield and later applied to the live checkout.
type CheckoutAddress struct {
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Company      string `json:"company"`
	CountryCode  string `json:"countryCode"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	ProvinceCode string `json:"provinceCode"`
	Zip          string `json:"zip"`
}
