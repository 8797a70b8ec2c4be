package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/hashnipe/internal/utils"
)

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	// ResourceID is the expected audience for token validation
	ResourceID string
	// TokenValidator is a function that validates the bearer token
	// It should return an error if the token is invalid
	TokenValidator func(token string, audience []string) error
	// JWTAuthenticator for JWT token validation (optional, takes precedence over TokenValidator)
	JWTAuthenticator *utils.JwtAuthenticator
	// ResourceMetadataURL is advertised in the WWW-Authenticate header of 401 responses
	ResourceMetadataURL string
	// SkipWellKnown determines if .well-known endpoints should bypass auth
	SkipWellKnown bool
}

// DefaultAuthConfig provides default configuration
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		SkipWellKnown: true,
		TokenValidator: func(token string, audience []string) error {
			if token == "" {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
			}
			return nil
		},
	}
}

// AuthFailure is a rejected bearer token together with the response body to send
type AuthFailure struct {
	Message string
	Details string
}

func (f *AuthFailure) Error() string {
	if f.Details != "" {
		return fmt.Sprintf("%s: %s", f.Message, f.Details)
	}
	return f.Message
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// WalletHeader carries the wallet address of callers whose token has no wallet claim
const WalletHeader = "X-Wallet-Address"

// Authenticate validates the bearer token in an Authorization header value. Without a JWT
// authenticator the token is accepted as an opaque bearer and forwarded to the backend, and
// the wallet is taken from the X-Wallet-Address header value.
func Authenticate(cfg AuthConfig, header, wallet string) (*utils.AuthenticatedUser, error) {
	token := BearerToken(header)
	if token == "" {
		return nil, &AuthFailure{Message: "Missing or invalid Bearer token"}
	}

	if cfg.JWTAuthenticator != nil {
		user, err := cfg.JWTAuthenticator.ValidateToken(token)
		if err != nil {
			return nil, &AuthFailure{Message: "Invalid token", Details: err.Error()}
		}

		// Check if user has required audience (if specified)
		if cfg.ResourceID != "" {
			hasValidAudience := false
			for _, userAud := range user.Aud {
				if userAud == cfg.ResourceID {
					hasValidAudience = true
					break
				}
			}
			if !hasValidAudience {
				return nil, &AuthFailure{Message: "Invalid audience"}
			}
		}
		return user, nil
	}

	var audience []string
	if cfg.ResourceID != "" {
		audience = []string{cfg.ResourceID}
	}
	if cfg.TokenValidator != nil {
		if err := cfg.TokenValidator(token, audience); err != nil {
			return nil, &AuthFailure{Message: "Invalid token"}
		}
	}
	user := &utils.AuthenticatedUser{Token: token}
	if wallet != "" {
		normalized, err := utils.NormalizeAddress(wallet)
		if err != nil {
			return nil, &AuthFailure{Message: "Invalid wallet address", Details: err.Error()}
		}
		user.WalletAddress = normalized
	}
	return user, nil
}

// AuthMiddleware returns a Fiber middleware for Bearer token authentication
func AuthMiddleware(config ...AuthConfig) fiber.Handler {
	cfg := DefaultAuthConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		// Allow public access to well-known endpoints for metadata discovery
		if cfg.SkipWellKnown && strings.Contains(c.Path(), ".well-known") {
			return c.Next()
		}

		user, err := Authenticate(cfg, c.Get("Authorization"), c.Get(WalletHeader))
		if err != nil {
			failure, _ := err.(*AuthFailure)
			if cfg.ResourceMetadataURL != "" {
				c.Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="OAuth", resource_metadata="%s"`, cfg.ResourceMetadataURL))
			} else {
				c.Set("WWW-Authenticate", `Bearer realm="Access to protected resource"`)
			}
			body := fiber.Map{"error": failure.Message}
			if failure.Details != "" {
				body["details"] = failure.Details
			}
			return c.Status(fiber.StatusUnauthorized).JSON(body)
		}

		// Store authenticated user in context
		c.Locals("user", user)
		c.SetUserContext(utils.WithAuthenticatedUser(c.UserContext(), user))

		return c.Next()
	}
}

// GetAuthenticatedUser retrieves the authenticated user from Fiber context
// Returns nil if no user is found or if user is not of correct type
func GetAuthenticatedUser(c *fiber.Ctx) *utils.AuthenticatedUser {
	userInterface := c.Locals("user")
	if userInterface == nil {
		return nil
	}

	user, ok := userInterface.(*utils.AuthenticatedUser)
	if !ok {
		return nil
	}

	return user
}
