package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"sawari/internal/domain"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "

	// partyContextKey is where the authenticated party lands in the gin
	// context.
	partyContextKey = "authenticatedParty"
)

// PartyClaims are the JWT claims carried by an access token: the standard
// subject holds the party id, Kind its role.
type PartyClaims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// AuthMiddleware returns middleware that authenticates the bearer token
// and places the acting party in the request context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authorizationHeader)
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims := &PartyClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, bearerPrefix), claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		kind := domain.PartyKind(claims.Kind)
		switch kind {
		case domain.PartyOrganization, domain.PartyDriver, domain.PartyPassenger:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(partyContextKey, domain.PartyRef{Kind: kind, ID: claims.Subject})
		c.Next()
	}
}

// PartyFrom extracts the authenticated party from the gin context.
func PartyFrom(c *gin.Context) (domain.PartyRef, bool) {
	value, ok := c.Get(partyContextKey)
	if !ok {
		return domain.PartyRef{}, false
	}

	ref, ok := value.(domain.PartyRef)
	return ref, ok
}

// NewToken issues a signed access token for a party. Used by provisioning
// tooling and tests.
func NewToken(secret string, ref domain.PartyRef, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &PartyClaims{
		Kind: string(ref.Kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ref.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
