package domain

import "time"

// ShopSession is the offline Admin API credential stored for a shop after
// the app is installed.
type ShopSession struct {
	Shop        string    `json:"shop"`
	AccessToken string    `json:"-"`
	Scope       string    `json:"scope"`
	InstalledAt time.Time `json:"installedAt"`
}

// PaymentCustomization is a platform-level payment customization record.
type PaymentCustomization struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Enabled    bool   `json:"enabled"`
	FunctionID string `json:"functionId,omitempty"`
}
