// Package paymentfunc holds the checkout-time payment visibility decision:
// the クレカIVR payment method is only offered while an operator is placing
// the order on the customer's behalf.
package paymentfunc

import "strings"

// OperatorOnlyPaymentMethod is the display name of the method hidden from
// self-service checkouts.
const OperatorOnlyPaymentMethod = "クレカIVR"

// Attribute is one cart attribute value.
type Attribute struct {
	Value string `json:"value"`
}

// Cart carries the single attribute the rule inspects.
type Cart struct {
	OperatorName *Attribute `json:"operatorName"`
}

// PaymentMethod is one method available at checkout.
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Input is the invocation payload handed over by the checkout platform.
type Input struct {
	Cart           Cart            `json:"cart"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
}

// HideOperation hides one payment method by id.
type HideOperation struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

// Operation is one entry of the result's operations list.
type Operation struct {
	PaymentMethodHide *HideOperation `json:"paymentMethodHide,omitempty"`
}

// Result is the decision returned to the platform.
type Result struct {
	Operations []Operation `json:"operations"`
}

// Run decides whether to hide the operator-only payment method. Pure: no
// state survives between invocations. An absent or blank operator_name
// attribute means a self-service checkout, so the method is hidden;
// if the method is not offered at all there is nothing to do.
func Run(input Input) Result {
	noChanges := Result{Operations: []Operation{}}

	if attr := input.Cart.OperatorName; attr != nil && strings.TrimSpace(attr.Value) != "" {
		return noChanges
	}

	for _, method := range input.PaymentMethods {
		if method.Name == OperatorOnlyPaymentMethod {
			return Result{Operations: []Operation{
				{PaymentMethodHide: &HideOperation{PaymentMethodID: method.ID}},
			}}
		}
	}
	return noChanges
}
