package session

import (
	"log/slog"
	"maps"
	"reflect"

	"auth-graphql/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

type Options struct {
	Name string
	// Resave persists existing sessions on every request, even when unmodified.
	Resave bool
	// SaveUninitialized persists new sessions nobody wrote to.
	SaveUninitialized bool
	Store             sessions.Store
	Logger            *slog.Logger
	Metrics           *metrics.Metrics
}

// Middleware loads the request's session and makes it available through FromGin and
// FromContext. The session is saved, and its cookie set, right before the response
// headers go out.
func Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := opts.Store.Get(c.Request, opts.Name)
		if err != nil {
			opts.Logger.Error("Failed to load session, starting a new one", "error", err)
		}
		if sess == nil {
			sess = sessions.NewSession(opts.Store, opts.Name)
			sess.IsNew = true
		}
		if sess.IsNew {
			opts.Metrics.SessionsCreated.Inc()
		}

		snapshot := maps.Clone(sess.Values)
		loadedID := sess.ID
		c.Set(GinKey, sess)
		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), sess))

		w := &responseWriter{ResponseWriter: c.Writer}
		w.beforeWrite = func() {
			if !shouldSave(sess, snapshot, loadedID, opts) {
				return
			}
			if err := opts.Store.Save(c.Request, w.ResponseWriter, sess); err != nil {
				opts.Logger.Error("Failed to save session", "session_id", sess.ID, "error", err)
				opts.Metrics.SessionSaves.WithLabelValues("error").Inc()
				return
			}
			opts.Metrics.SessionSaves.WithLabelValues("ok").Inc()
		}
		c.Writer = w

		c.Next()

		// Handlers that only set a status never write; gin flushes the header afterwards.
		w.runBeforeWrite()
	}
}

func shouldSave(sess *sessions.Session, snapshot map[any]any, loadedID string, opts Options) bool {
	if sess.Options != nil && sess.Options.MaxAge < 0 {
		return true
	}
	modified := sess.ID != loadedID || !reflect.DeepEqual(snapshot, sess.Values)
	if sess.IsNew {
		return opts.SaveUninitialized || modified
	}
	return opts.Resave || modified
}
