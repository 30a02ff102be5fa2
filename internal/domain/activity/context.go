package activity

import "context"

// OperatorHeader carries the authenticated user set by a fronting proxy.
const OperatorHeader = "X-Forwarded-User"

// DefaultUser is recorded when a request carries no operator identity.
const DefaultUser = "anonymous"

type userKey struct{}

// WithUser attaches the operator name recorded on audit entries.
func WithUser(ctx context.Context, user string) context.Context {
	if user == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the operator name, or DefaultUser.
func UserFromContext(ctx context.Context) string {
	if user, ok := ctx.Value(userKey{}).(string); ok && user != "" {
		return user
	}
	return DefaultUser
}
