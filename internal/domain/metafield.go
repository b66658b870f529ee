package domain

// MetafieldNamespace is the namespace every operator-panel metafield
// lives under.
const MetafieldNamespace = "custom"

// Metafield keys written onto the operator account.
const (
	KeyOrderedForCustomer = "operator_ordered_for_customer"
	KeyCardID             = "card_id"
	KeyCustomerID         = "customer_id"
	KeyPoints             = "points"
	KeyGender             = "gender"
	KeyBirthday           = "birthday"
	KeyShippingAddress    = "shipping_address"
)

// Metafield value types understood by the Admin API.
const (
	TypeSingleLineText = "single_line_text_field"
	TypeNumberInteger  = "number_integer"
	TypeDate           = "date"
	TypeJSON           = "json"
)

// MetafieldInput is one entry of a batched metafield write.
type MetafieldInput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// MetafieldNode is a metafield as returned by the Admin API.
type MetafieldNode struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// UpdatedCustomer is the post-write snapshot returned by customerUpdate.
type UpdatedCustomer struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Metafields struct {
		Nodes []MetafieldNode `json:"nodes"`
	} `json:"metafields"`
}

// ImportResult is the outcome of one import operation. Transient; returned
// once to the caller and never persisted.
type ImportResult struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Customer *UpdatedCustomer `json:"customer,omitempty"`
}
