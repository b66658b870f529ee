package session

import (
	"context"
	"errors"
	"strings"

	"operator-panel/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Upsert(ctx context.Context, s domain.ShopSession) (*domain.ShopSession, error) {
	const q = `
INSERT INTO shopify_sessions (shop, access_token, scope)
VALUES ($1, $2, $3)
ON CONFLICT (shop) DO UPDATE
SET access_token = EXCLUDED.access_token, scope = EXCLUDED.scope, installed_at = now()
RETURNING shop, access_token, scope, installed_at
`
	return r.scanSession(r.pool.QueryRow(ctx, q, normalizeShop(s.Shop), s.AccessToken, s.Scope))
}

func (r *postgresRepo) GetByShop(ctx context.Context, shop string) (*domain.ShopSession, error) {
	const q = `
SELECT shop, access_token, scope, installed_at
FROM shopify_sessions
WHERE shop = $1
`
	return r.scanSession(r.pool.QueryRow(ctx, q, normalizeShop(shop)))
}

func (r *postgresRepo) Delete(ctx context.Context, shop string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shopify_sessions WHERE shop = $1`, normalizeShop(shop))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanSession(row pgx.Row) (*domain.ShopSession, error) {
	var s domain.ShopSession
	if err := row.Scan(&s.Shop, &s.AccessToken, &s.Scope, &s.InstalledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func normalizeShop(shop string) string {
	return strings.ToLower(strings.TrimSpace(shop))
}
