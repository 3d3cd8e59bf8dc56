package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/markdave123-py/Redacta/internal/logger"
)

type claimsKey struct{}

// Claims are the parts of a bearer token the API cares about.
type Claims struct {
	Subject string
	Scopes  []string
}

// HasScope reports whether the token grants scope.
func (c Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ClaimsFromContext returns the claims attached by JWTMiddleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}

// JWTMiddleware validates the HS256 bearer token in the Authorization header,
// requires every scope in required, and attaches the claims to the request
// context.
func JWTMiddleware(secret string, required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			mc := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, mc, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				logger.FromContext(r.Context()).Debug("rejected token", zap.Error(err))
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			claims := parseClaims(mc)
			for _, scope := range required {
				if !claims.HasScope(scope) {
					http.Error(w, "insufficient scope", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseClaims reads the subject from sub (or user_id) and the scopes from a
// space separated scope string or a scopes array.
func parseClaims(mc jwt.MapClaims) Claims {
	var c Claims
	if sub, err := mc.GetSubject(); err == nil && sub != "" {
		c.Subject = sub
	} else if id, ok := mc["user_id"].(string); ok {
		c.Subject = id
	}
	if s, ok := mc["scope"].(string); ok {
		c.Scopes = append(c.Scopes, strings.Fields(s)...)
	}
	if list, ok := mc["scopes"].([]interface{}); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				c.Scopes = append(c.Scopes, s)
			}
		}
	}
	return c
}
