package mw

import (
	"net/http"
	"strings"

	"github.com/EgorLis/secure-files/internal/domain"
)

type AuthDeps struct {
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
	Users     domain.UsersRepo
}

// RequireAuth — принимает только живой access-токен и активного пользователя.
// Пользователь загружается из БД на каждый запрос: роль/флаги в токене
// могли устареть.
func RequireAuth(deps AuthDeps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r.Header.Get("Authorization"))
		if raw == "" {
			unauthorized(w)
			return
		}
		claims, err := deps.Tokens.Parse(r.Context(), raw)
		if err != nil || claims.Kind != domain.TokenAccess {
			unauthorized(w)
			return
		}
		if revoked, _ := deps.Blacklist.IsRevoked(r.Context(), claims.JTI); revoked {
			unauthorized(w)
			return
		}
		u, err := deps.Users.UserByID(r.Context(), claims.UserID)
		if err != nil || !u.IsActive {
			unauthorized(w)
			return
		}
		ctx := domain.WithUser(r.Context(), u)
		ctx = domain.WithClaims(ctx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":1001,"kind":"unauthorized","text":"unauthorized"}}` + "\n"))
}

func extractBearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
