package httpx

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	subjectKey   contextKey = "subject"
	roleKey      contextKey = "role"
	requestIDKey contextKey = "requestID"
)

// SubjectFrom retrieves the authenticated caller from the request context.
func SubjectFrom(r *http.Request) string {
	if v, ok := r.Context().Value(subjectKey).(string); ok {
		return v
	}
	return ""
}

// RoleFrom retrieves the caller role from the request context.
func RoleFrom(r *http.Request) string {
	if v, ok := r.Context().Value(roleKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithCaller returns a new context with the caller subject and role.
// The request-scoped logger, when present, gains a caller field.
func ContextWithCaller(ctx context.Context, subject, role string) context.Context {
	zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("caller", subject)
	})
	ctx = context.WithValue(ctx, subjectKey, subject)
	return context.WithValue(ctx, roleKey, role)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
