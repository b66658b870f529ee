package importer

import (
	"encoding/json"
	"strconv"

	"operator-panel/internal/domain"
)

// GenderUnanswered is written when the source carries no gender
// ("prefer not to say"; choices are 男性 / 女性 / 回答せず).
const GenderUnanswered = "回答せず"

// NormalizedCustomer is the pure output of Normalize: the canonical
// metafield set plus the optional address in both of its shapes.
type NormalizedCustomer struct {
	Metafields      []domain.MetafieldInput
	AccountAddress  *domain.MailingAddressInput
	CheckoutAddress *domain.CheckoutAddress

	// DeleteBirthday is true when the source has no birthday; birthday is
	// the only field with delete-on-absence semantics. An empty-string
	// birthday is normalized to absent since the platform rejects "" as a
	// date value.
	DeleteBirthday bool
}

// Normalize maps a source customer onto the metafield set and address
// payloads written during an import. No I/O; never fails.
func Normalize(src domain.SourceCustomer) NormalizedCustomer {
	mf := src.Metafields
	out := NormalizedCustomer{}

	if src.ID != "" {
		out.Metafields = append(out.Metafields, textField(domain.KeyOrderedForCustomer, src.ID))
	}

	out.Metafields = append(out.Metafields,
		textField(domain.KeyCardID, stringOrDefault(mf.CardID, "0")),
		textField(domain.KeyCustomerID, stringOrDefault(mf.CustomerID, "0")),
		domain.MetafieldInput{
			Namespace: domain.MetafieldNamespace,
			Key:       domain.KeyPoints,
			Value:     pointsValue(mf.Points),
			Type:      domain.TypeNumberInteger,
		},
		textField(domain.KeyGender, stringOrDefault(mf.Gender, GenderUnanswered)),
	)

	if mf.Birthday != nil && *mf.Birthday != "" {
		out.Metafields = append(out.Metafields, domain.MetafieldInput{
			Namespace: domain.MetafieldNamespace,
			Key:       domain.KeyBirthday,
			Value:     *mf.Birthday,
			Type:      domain.TypeDate,
		})
	} else {
		out.DeleteBirthday = true
	}

	shippingJSON := "{}"
	if addr := src.DefaultAddress; addr != nil {
		out.AccountAddress = &domain.MailingAddressInput{
			Address1:  addr.Address1,
			Address2:  addr.Address2,
			City:      addr.City,
			Company:   addr.Company,
			Country:   addr.Country,
			FirstName: addr.FirstName,
			LastName:  addr.LastName,
			Phone:     addr.Phone,
			Province:  addr.Province,
			Zip:       addr.Zip,
		}

		countryCode := addr.CountryCodeV2
		if countryCode == "" {
			countryCode = domain.DefaultCountryCode
		}
		out.CheckoutAddress = &domain.CheckoutAddress{
			Address1:     addr.Address1,
			Address2:     addr.Address2,
			City:         addr.City,
			Company:      addr.Company,
			CountryCode:  countryCode,
			FirstName:    addr.FirstName,
			LastName:     addr.LastName,
			Phone:        addr.Phone,
			ProvinceCode: addr.ProvinceCode,
			Zip:          addr.Zip,
		}

		// Marshalling a struct of strings cannot fail.
		b, _ := json.Marshal(out.CheckoutAddress)
		shippingJSON = string(b)
	}

	// The downstream write always gets a string value, "{}" when no
	// address exists, so the checkout side can clear stale data.
	out.Metafields = append(out.Metafields, domain.MetafieldInput{
		Namespace: domain.MetafieldNamespace,
		Key:       domain.KeyShippingAddress,
		Value:     shippingJSON,
		Type:      domain.TypeJSON,
	})

	return out
}

func textField(key, value string) domain.MetafieldInput {
	return domain.MetafieldInput{
		Namespace: domain.MetafieldNamespace,
		Key:       key,
		Value:     value,
		Type:      domain.TypeSingleLineText,
	}
}

func stringOrDefault(v *string, def string) string {
	if v != nil && *v != "" {
		return *v
	}
	return def
}

func pointsValue(points *int) string {
	if points == nil {
		return "0"
	}
	return strconv.Itoa(*points)
}
