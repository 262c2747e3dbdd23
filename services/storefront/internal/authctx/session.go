package authctx

import (
	"context"
)

type ctxKeySessionID struct{}

var sessionIDKey = ctxKeySessionID{}

// WithSessionID сохраняет id сессии покупателя в контексте (кладёт HTTP middleware)
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sid)
}

// SessionIDFromContext возвращает id сессии, если он был установлен
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok && sid != ""
}
