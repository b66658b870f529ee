package checkout

import "strings"

// Cart attribute keys used for guest-mode propagation, where no customer
// account exists to hang metafields on.
const (
	AttrOperatorName    = "operator_name"
	AttrShippingAddress = "operator_order_shipping_address"

	// Per-field customer data carried alongside the address in guest mode.
	AttrCustomerPrefix = "operator_order_for_customer_"
)

// CartAttributeBag is the attribute key/value mapping read from the live cart.
// Read-only here; the storefront surface writes it.
type CartAttributeBag map[string]string

// ShippingAddressPayload returns the embedded address JSON, empty when the
// guest channel carries none.
func (b CartAttributeBag) ShippingAddressPayload() string {
	return b[AttrShippingAddress]
}

// OperatorName returns the operator attribute, trimmed.
func (b CartAttributeBag) OperatorName() string {
	return strings.TrimSpace(b[AttrOperatorName])
}

// CustomerFields extracts the operator_order_for_customer_* entries keyed
// by their short field name.
func (b CartAttributeBag) CustomerFields() map[string]string {
	fields := make(map[string]string)
	for k, v := range b {
		if strings.HasPrefix(k, AttrCustomerPrefix) {
			fields[strings.TrimPrefix(k, AttrCustomerPrefix)] = v
		}
	}
	return fields
}
