package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxRole    contextKey = "actor_role"
	ctxTokenID contextKey = "token_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// TokenIDFromContext returns the jti of the presented access token.
func TokenIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTokenID).(string); ok {
		return v
	}
	return ""
}

// PrincipalFromContext rebuilds the authenticated identity seeded by Auth.
// The second return is false when the request never passed through Auth.
func PrincipalFromContext(ctx context.Context) (access.Principal, bool) {
	userID, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return access.Principal{}, false
	}
	role, err := enums.ParseUserRole(RoleFromContext(ctx))
	if err != nil {
		return access.Principal{}, false
	}
	return access.Principal{ID: userID, Role: role}, true
}

// WithPrincipal seeds the context the way Auth does; test helper surface.
func WithPrincipal(ctx context.Context, principal access.Principal, tokenID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, principal.ID.String())
	ctx = context.WithValue(ctx, ctxRole, string(principal.Role))
	if tokenID != "" {
		ctx = context.WithValue(ctx, ctxTokenID, tokenID)
	}
	return ctx
}
