package session

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// GinKey is the gin context key the middleware stores the session under.
const GinKey = "session"

type contextKey struct{}

func NewContext(ctx context.Context, sess *sessions.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session attached by Middleware to the request context.
func FromContext(ctx context.Context) (*sessions.Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*sessions.Session)
	return sess, ok
}

func FromGin(c *gin.Context) (*sessions.Session, bool) {
	v, ok := c.Get(GinKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*sessions.Session)
	return sess, ok
}

type regenerator interface {
	Regenerate(ctx context.Context, sess *sessions.Session) error
}

// Regenerate gives sess a new id, removing the old record when the store supports it.
func Regenerate(ctx context.Context, sess *sessions.Session) error {
	if r, ok := sess.Store().(regenerator); ok {
		return r.Regenerate(ctx, sess)
	}
	sess.ID = uuid.NewString()
	return nil
}
