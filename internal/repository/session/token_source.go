package session

import (
	"context"
	"fmt"
)

// TokenSource adapts the session store into a shopify.TokenSource for one
// shop, so the admin client always sees the latest installed token.
type TokenSource struct {
	Repo Repository
	Shop string
}

// Token returns the stored offline access token for the shop.
func (t TokenSource) Token(ctx context.Context) (string, error) {
	s, err := t.Repo.GetByShop(ctx, t.Shop)
	if err != nil {
		return "", fmt.Errorf("load session for %s: %w", t.Shop, err)
	}
	return s.AccessToken, nil
}
