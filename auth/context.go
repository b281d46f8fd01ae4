package auth

import (
	"context"

	"auth-graphql/models"
)

type contextKey struct{}

// state is shared by every handler of one request, so LogIn and LogOut are visible to
// code that runs after them.
type state struct {
	auth *Authenticator
	user *models.User
}

func newContext(ctx context.Context, st *state) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

func stateFrom(ctx context.Context) (*state, bool) {
	st, ok := ctx.Value(contextKey{}).(*state)
	return st, ok
}

// UserFromContext returns the authenticated user of the request, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	st, ok := stateFrom(ctx)
	if !ok || st.user == nil {
		return nil, false
	}
	return st.user, true
}
