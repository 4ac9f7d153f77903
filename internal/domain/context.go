package domain

import "context"

// Контекст запроса: аутентифицированный пользователь и клеймы его токена.
type ctxKey int

const (
	userCtxKey ctxKey = iota + 1
	claimsCtxKey
)

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

func UserFromCtx(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userCtxKey).(User)
	return u, ok
}

func WithClaims(ctx context.Context, c TokenClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, c)
}

func ClaimsFromCtx(ctx context.Context) (TokenClaims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(TokenClaims)
	return c, ok
}
