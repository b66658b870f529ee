package authstate

import (
	"context"
	"errors"

	"operator-panel/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, state, shop string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO oauth_states (state, shop) VALUES ($1, $2)`, state, shop)
	return err
}

func (r *postgresRepo) Consume(ctx context.Context, state string) (string, error) {
	const q = `
DELETE FROM oauth_states
WHERE state = $1 AND created_at > now() - interval '10 minutes'
RETURNING shop
`
	var shop string
	if err := r.pool.QueryRow(ctx, q, state).Scan(&shop); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return shop, nil
}
