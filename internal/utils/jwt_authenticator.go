package utils

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// AuthenticatedUser is the identity decoded from a validated bearer token
type AuthenticatedUser struct {
	Sub           string   `json:"sub"`
	Iss           string   `json:"iss"`
	Aud           []string `json:"aud"`
	ClientId      string   `json:"client_id"`
	Exp           int64    `json:"exp"`
	Roles         []string `json:"roles"`
	Scopes        []string `json:"scopes"`
	WalletAddress string   `json:"wallet_address,omitempty"`
	// Token is the raw bearer token, forwarded to the backend API
	Token string `json:"-"`
}

// JwtAuthenticator validates RS256 bearer tokens against a JWKS endpoint
type JwtAuthenticator struct {
	JwksUri string

	cacheTTL  time.Duration
	mu        sync.RWMutex
	keySet    jwk.Set
	fetchedAt time.Time
}

func NewJwtAuthenticator(jwksUri string) *JwtAuthenticator {
	return &JwtAuthenticator{
		JwksUri:  jwksUri,
		cacheTTL: 5 * time.Minute,
	}
}

// ValidateToken verifies the token signature and standard claims and maps the claims to a user
func (a *JwtAuthenticator) ValidateToken(tokenString string) (*AuthenticatedUser, error) {
	if a.JwksUri == "" {
		return nil, fmt.Errorf("JWKS URI not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		return a.fetchKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}

	user, err := a.mapClaimsToUser(claims)
	if err != nil {
		return nil, err
	}
	user.Token = tokenString
	return user, nil
}

func (a *JwtAuthenticator) fetchKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	set, err := a.keys(ctx)
	if err != nil {
		return nil, err
	}

	var key jwk.Key
	if kid != "" {
		k, found := set.LookupKeyID(kid)
		if !found {
			return nil, fmt.Errorf("key %q not found in JWKS", kid)
		}
		key = k
	} else {
		if set.Len() == 0 {
			return nil, fmt.Errorf("JWKS is empty")
		}
		k, _ := set.Key(0)
		key = k
	}

	var raw rsa.PublicKey
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to extract RSA public key: %w", err)
	}
	return &raw, nil
}

func (a *JwtAuthenticator) keys(ctx context.Context) (jwk.Set, error) {
	a.mu.RLock()
	if a.keySet != nil && time.Since(a.fetchedAt) < a.cacheTTL {
		set := a.keySet
		a.mu.RUnlock()
		return set, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.keySet != nil && time.Since(a.fetchedAt) < a.cacheTTL {
		return a.keySet, nil
	}

	set, err := jwk.Fetch(ctx, a.JwksUri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	a.keySet = set
	a.fetchedAt = time.Now()
	return set, nil
}

func (a *JwtAuthenticator) mapClaimsToUser(claims map[string]interface{}) (*AuthenticatedUser, error) {
	user := &AuthenticatedUser{
		Sub:      stringClaim(claims, "sub"),
		Iss:      stringClaim(claims, "iss"),
		ClientId: stringClaim(claims, "client_id"),
		Aud:      stringListClaim(claims, "aud"),
		Roles:    stringListClaim(claims, "roles"),
		Scopes:   stringListClaim(claims, "scopes"),
	}

	if exp, ok := claims["exp"].(float64); ok {
		user.Exp = int64(exp)
	}

	if wallet := stringClaim(claims, "wallet_address"); wallet != "" {
		normalized, err := NormalizeAddress(wallet)
		if err != nil {
			return nil, fmt.Errorf("invalid wallet_address claim: %w", err)
		}
		user.WalletAddress = normalized
	}

	return user, nil
}

func stringClaim(claims map[string]interface{}, name string) string {
	v, _ := claims[name].(string)
	return v
}

// stringListClaim accepts either a single string or an array of strings.
// Space separated scope strings are split.
func stringListClaim(claims map[string]interface{}, name string) []string {
	switch v := claims[name].(type) {
	case string:
		if name == "scopes" {
			return strings.Fields(v)
		}
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	}
	return nil
}
