package httpserver

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"operator-panel/internal/config"
	"operator-panel/internal/domain"
	"operator-panel/internal/repository/authstate"
	"operator-panel/internal/repository/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

func isValidShopDomain(shop string) bool {
	return shopDomainPattern.MatchString(shop)
}

func randomState(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// authBeginHandler starts the install flow: it parks a state nonce and
// redirects the merchant to the authorize screen.
func authBeginHandler(cfg config.Config, states authstate.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := strings.ToLower(strings.TrimSpace(c.Query("shop")))
		if !isValidShopDomain(shop) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shop (expected like your-store.myshopify.com)"})
			return
		}

		state, err := randomState(24)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate state"})
			return
		}
		if err := states.Create(c.Request.Context(), state, shop); err != nil {
			logger.Error("store oauth state failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store state"})
			return
		}

		authorizeURL := fmt.Sprintf(
			"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
			shop,
			url.QueryEscape(cfg.APIKey),
			url.QueryEscape(cfg.Scopes),
			url.QueryEscape(cfg.AppURL+"/auth/callback"),
			url.QueryEscape(state),
		)
		c.Redirect(http.StatusFound, authorizeURL)
	}
}

// authCallbackHandler completes the install: verifies the callback HMAC
// and state, exchanges the code for an offline token, and stores it.
func authCallbackHandler(cfg config.Config, states authstate.Repository, sessions session.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		shop := strings.ToLower(strings.TrimSpace(query.Get("shop")))
		code := query.Get("code")
		state := query.Get("state")
		hmacParam := strings.TrimSpace(query.Get("hmac"))

		if !isValidShopDomain(shop) || code == "" || state == "" || hmacParam == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid callback parameters"})
			return
		}
		if !verifyOAuthHMAC(query, cfg.APISecret, hmacParam) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hmac"})
			return
		}

		issuedFor, err := states.Consume(c.Request.Context(), state)
		if err != nil || issuedFor != shop {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired state"})
			return
		}

		token, scope, err := exchangeToken(c.Request.Context(), shop, cfg.APIKey, cfg.APISecret, code)
		if err != nil {
			logger.Error("token exchange failed", zap.String("shop", shop), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "token exchange failed"})
			return
		}

		if _, err := sessions.Upsert(c.Request.Context(), domain.ShopSession{
			Shop:        shop,
			AccessToken: token,
			Scope:       scope,
		}); err != nil {
			logger.Error("store session failed", zap.String("shop", shop), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store session"})
			return
		}

		logger.Info("app installed", zap.String("shop", shop), zap.String("scope", scope))
		c.JSON(http.StatusOK, gin.H{"success": true, "shop": shop})
	}
}

// verifyOAuthHMAC checks the OAuth callback scheme: all parameters except
// hmac and signature, sorted, joined key=value with &, HMAC-SHA256
// hex-encoded under the app secret.
func verifyOAuthHMAC(params url.Values, secret, providedHex string) bool {
	if secret == "" {
		return false
	}

	pairs := make([]string, 0, len(params))
	for k, vals := range params {
		if k == "hmac" || k == "signature" {
			continue
		}
		for _, v := range vals {
			pairs = append(pairs, k+"="+v)
		}
	}
	sort.Strings(pairs)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(providedHex)))
}

func exchangeToken(ctx context.Context, shop, apiKey, apiSecret, code string) (token, scope string, err error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     apiKey,
		"client_secret": apiSecret,
		"code":          code,
	})
	if err != nil {
		return "", "", err
	}

	endpoint := fmt.Sprintf("https://%s/admin/oauth/access_token", shop)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("token endpoint status %d: %s", res.StatusCode, string(raw))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", "", err
	}
	if out.AccessToken == "" {
		return "", "", fmt.Errorf("token endpoint returned no access_token")
	}
	return out.AccessToken, out.Scope, nil
}
