package internal

import (
	"context"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
)

type ctxKey string

const (
	ContextSessionKey ctxKey = "session"
	ContextSubjectKey ctxKey = "subject"
)

// SessionFromContext returns the session attached by the session middleware.
// A request that never went through it is unauthenticated.
func SessionFromContext(ctx context.Context) access.Session {
	if ctx == nil {
		return access.Unauthenticated()
	}
	if s, ok := ctx.Value(ContextSessionKey).(access.Session); ok {
		return s
	}
	return access.Unauthenticated()
}

func ContextWithSession(ctx context.Context, s access.Session) context.Context {
	return context.WithValue(ctx, ContextSessionKey, s)
}

func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if subject, ok := ctx.Value(ContextSubjectKey).(string); ok {
		return subject
	}
	return ""
}

func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ContextSubjectKey, subject)
}

