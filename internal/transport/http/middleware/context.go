package middleware

import (
	"context"

	"hireflow/internal/domain/auth"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// WithUser stores the resolved caller on ctx.
func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
