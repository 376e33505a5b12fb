package auth

import "context"

type contextKey struct{}

// Identity is the request-scoped authenticated subject. Every protected
// operation re-validates the session token; nothing trusts a cached
// client-side flag.
type Identity struct {
	Phone string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// Phone returns the authenticated phone number, or "" when the context
// carries no identity.
func Phone(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return id.Phone
}
