package session

import (
	"context"

	"operator-panel/internal/domain"
)

// Repository persists per-shop offline Admin API credentials.
type Repository interface {
	Upsert(ctx context.Context, s domain.ShopSession) (*domain.ShopSession, error)
	GetByShop(ctx context.Context, shop string) (*domain.ShopSession, error)
	Delete(ctx context.Context, shop string) error
}
