package middleware

import (
	"fmt"
	"time"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const identityKey = "identity"

// Protected rejects requests without a valid HS256 bearer token and stores
// the resolved identity for CurrentIdentity.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		SigningMethod:  "HS256",
		ErrorHandler:   jwtError,
		SuccessHandler: storeIdentity,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	msg := "Invalid or expired JWT"
	if err.Error() == "Missing or malformed JWT" {
		msg = "Authentication required"
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg, "code": "unauthorized"})
}

func storeIdentity(c *fiber.Ctx) error {
	id, err := identityFromToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims", "code": "unauthorized"})
	}
	c.Locals(identityKey, id)
	return c.Next()
}

func identityFromToken(c *fiber.Ctx) (services.Identity, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return services.Identity{}, services.ErrAuthenticationRequired
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return services.Identity{}, services.ErrAuthenticationRequired
	}
	return IdentityFromClaims(claims)
}

// IdentityFromClaims reads user_id and role from verified token claims.
func IdentityFromClaims(claims jwt.MapClaims) (services.Identity, error) {
	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return services.Identity{}, services.ErrAuthenticationRequired
	}
	rawRole, _ := claims["role"].(string)
	role := models.Role(rawRole)
	if !role.Valid() {
		return services.Identity{}, services.ErrAuthenticationRequired
	}
	return services.Identity{ID: userID, Role: role}, nil
}

// ParseToken verifies a raw HS256 token outside the HTTP middleware chain,
// for transports such as the websocket handshake frame.
func ParseToken(secret, raw string) (services.Identity, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return services.Identity{}, services.ErrAuthenticationRequired
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return services.Identity{}, services.ErrAuthenticationRequired
	}
	return IdentityFromClaims(claims)
}

// CurrentIdentity returns the caller resolved by Protected.
func CurrentIdentity(c *fiber.Ctx) (services.Identity, error) {
	if id, ok := c.Locals(identityKey).(services.Identity); ok {
		return id, nil
	}
	return identityFromToken(c)
}

// RequireRole allows the request through only for the listed roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := CurrentIdentity(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required", "code": "unauthorized"})
		}
		for _, r := range roles {
			if id.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: insufficient role for this resource",
			"code":  "forbidden",
		})
	}
}

// GenerateToken signs the claims Protected expects.
func GenerateToken(secret string, userID uuid.UUID, role models.Role, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    string(role),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
