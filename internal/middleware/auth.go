package middleware

import (
	"net/http"
	"os"
	"strings"

	"gc-invoice-driver/internal/identity"

	"github.com/golang-jwt/jwt/v5"
)

var jwtKey = []byte(os.Getenv("SECRET_KEY"))

// AuthMiddleware extracts the caller's identity from a bearer token issued by
// the host application. Requests without a valid token pass through
// anonymously; handlers decide whether that is acceptable.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			return jwtKey, nil
		})
		if err != nil || !token.Valid {
			next.ServeHTTP(w, r)
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			ctx := r.Context()
			if uid, ok := claims["user_id"].(float64); ok {
				ctx = identity.WithUser(ctx, uint(uid))
			}
			if sid, ok := claims["session_id"].(string); ok && sid != "" {
				ctx = identity.WithSessionID(ctx, sid)
			}
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
