package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"auth-graphql/models"
	"auth-graphql/session"

	"github.com/gin-gonic/gin"
)

// GinUserKey is the gin context key holding the authenticated *models.User.
const GinUserKey = "user"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrNotInitialized = errors.New("authenticator not initialized for this request")
	ErrNoSession      = errors.New("no session on request")
)

// Deserializer turns the user reference stored in a session back into a user.
// Implementations return ErrUserNotFound when the reference no longer resolves.
type Deserializer interface {
	DeserializeUser(ctx context.Context, id string) (*models.User, error)
}

type Authenticator struct {
	users  Deserializer
	logger *slog.Logger
}

func New(users Deserializer, logger *slog.Logger) *Authenticator {
	return &Authenticator{users: users, logger: logger}
}

// SerializeUser is the reference written into the session for a logged in user.
func (a *Authenticator) SerializeUser(user *models.User) string {
	return user.ID.Hex()
}

// Initialize attaches the authenticator and an empty identity to the request.
// It must run before Session and before any call to LogIn or LogOut.
func (a *Authenticator) Initialize() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(a.NewContext(c.Request.Context()))
		c.Next()
	}
}

// NewContext returns ctx carrying the authenticator and an anonymous identity.
func (a *Authenticator) NewContext(ctx context.Context) context.Context {
	return newContext(ctx, &state{auth: a})
}

// Session resolves the user reference held by the request session. A reference to a
// user that no longer exists is dropped and the request continues anonymously.
func (a *Authenticator) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		st, ok := stateFrom(ctx)
		if !ok {
			a.logger.Error("Auth session middleware used without Initialize")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication not initialized"})
			return
		}

		sess, ok := session.FromContext(ctx)
		if !ok {
			c.Next()
			return
		}
		ref, _ := sess.Values[session.KeyUserID].(string)
		if ref == "" {
			c.Next()
			return
		}

		user, err := a.users.DeserializeUser(ctx, ref)
		switch {
		case errors.Is(err, ErrUserNotFound):
			a.logger.Warn("Session references unknown user, dropping it", "user_id", ref)
			delete(sess.Values, session.KeyUserID)
		case err != nil:
			a.logger.Error("Failed to deserialize user", "user_id", ref, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to deserialize user"})
			return
		default:
			st.user = user
			c.Set(GinUserKey, user)
		}
		c.Next()
	}
}

// LogIn records user as the identity of the request's session. The session moves to a
// new id first, so an id known before login is worthless afterwards. Credential checks
// are the caller's business.
func LogIn(ctx context.Context, user *models.User) error {
	st, ok := stateFrom(ctx)
	if !ok {
		return ErrNotInitialized
	}
	sess, ok := session.FromContext(ctx)
	if !ok {
		return ErrNoSession
	}
	if err := session.Regenerate(ctx, sess); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Values[session.KeyUserID] = st.auth.SerializeUser(user)
	st.user = user
	return nil
}

// LogOut removes the identity from the session. The session itself is kept.
func LogOut(ctx context.Context) error {
	st, ok := stateFrom(ctx)
	if !ok {
		return ErrNotInitialized
	}
	if sess, ok := session.FromContext(ctx); ok {
		delete(sess.Values, session.KeyUserID)
	}
	st.user = nil
	return nil
}
