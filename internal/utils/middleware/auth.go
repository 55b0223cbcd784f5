package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefleet/server/internal/utils/requestctx"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// ActorKey is the gin context key for the authenticated actor.
	ActorKey = "actor"
)

// Claims are the JWT claims carried by platform access tokens.
type Claims struct {
	jwt.RegisteredClaims
	ActorID uuid.UUID       `json:"actor_id"`
	StoreID uuid.UUID       `json:"store_id"`
	Role    requestctx.Role `json:"role"`
}

// JWTValidator validates bearer tokens into actor claims.
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a validator for HS256-signed tokens.
func NewJWTValidator(secret, issuer string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret), issuer: issuer}
}

// ValidateToken parses and validates a bearer token.
func (v *JWTValidator) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ActorID == uuid.Nil || claims.StoreID == uuid.Nil {
		return nil, fmt.Errorf("token missing actor or store")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("unknown actor role: %s", claims.Role)
	}
	return claims, nil
}

// RequireAuth returns a middleware that requires a valid bearer token
// carrying actor, store and role claims.
func RequireAuth(validator *JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Authorization header required",
				},
			})
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Invalid or expired token",
				},
			})
			return
		}

		actor := requestctx.Actor{
			ID:      claims.ActorID,
			StoreID: claims.StoreID,
			Role:    claims.Role,
		}
		c.Set(ActorKey, actor)
		c.Request = c.Request.WithContext(requestctx.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// RequireRoles returns a middleware that restricts a route to the given
// actor roles. Must run after RequireAuth.
func RequireRoles(roles ...requestctx.Role) gin.HandlerFunc {
	allowed := make(map[requestctx.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "authentication required",
				},
			})
			return
		}
		if !allowed[actor.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "role not permitted for this operation",
				},
			})
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated actor from the gin context.
func GetActor(c *gin.Context) (requestctx.Actor, bool) {
	val, exists := c.Get(ActorKey)
	if !exists {
		return requestctx.Actor{}, false
	}
	actor, ok := val.(requestctx.Actor)
	return actor, ok
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix)
	}
	return ""
}
