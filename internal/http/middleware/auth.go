package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"seatbooking/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	requestContextKey = "request_context"
	RoleAdmin         = "admin"
)

func abortAuth(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       http.StatusText(status),
		"request_id": GetRequestID(c),
	})
}

// RequireRoles accepts HS256 bearer tokens whose role claim is one of
// allowedRoles. The token issuer lives outside this service; only the shared
// secret is known here.
func RequireRoles(secret []byte, allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortAuth(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if len(secret) == 0 {
			abortAuth(c, http.StatusUnauthorized, "authentication is not configured")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "invalid token")
			return
		}

		rc := domain.RequestContext{
			UserID: claimString(claims, "user_id"),
			Role:   claimString(claims, "role"),
		}
		if _, ok := allowed[strings.ToLower(rc.Role)]; !ok {
			abortAuth(c, http.StatusForbidden, "role not allowed")
			return
		}
		c.Set(requestContextKey, rc)
		c.Next()
	}
}

// GetRequestContext returns the caller set by RequireRoles.
func GetRequestContext(c *gin.Context) (domain.RequestContext, bool) {
	v, ok := c.Get(requestContextKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
