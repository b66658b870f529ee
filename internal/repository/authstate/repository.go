package authstate

import "context"

// Repository stores short-lived OAuth state nonces keyed by value.
type Repository interface {
	Create(ctx context.Context, state, shop string) error
	// Consume removes the state and returns the shop it was issued for.
	// Expired or unknown states return domain.ErrNotFound.
	Consume(ctx context.Context, state string) (string, error)
}
