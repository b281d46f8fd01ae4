package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"auth-graphql/models"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
)

// KeyUserID is the payload key holding the authenticated user reference. It is stored
// in its own field of the record rather than in the generic values.
const KeyUserID = "user_id"

// MongoStore is a sessions.Store whose cookie holds only the session id. Everything else
// lives in the repository.
type MongoStore struct {
	Options *sessions.Options

	repo   Repository
	codecs []securecookie.Codec
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewMongoStore(repo Repository, secret string, ttl time.Duration, clock clockwork.Clock) (*MongoStore, error) {
	hashKey, blockKey, err := deriveKeys(secret)
	if err != nil {
		return nil, err
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(ttl.Seconds()))

	return &MongoStore{
		Options: &sessions.Options{
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		repo:   repo,
		codecs: []securecookie.Codec{codec},
		ttl:    ttl,
		clock:  clock,
	}, nil
}

// Get returns the session cached for this request, loading it on first use.
func (s *MongoStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session referenced by the request cookie. A missing, undecodable or
// expired reference yields a fresh session with a new id and IsNew set; only repository
// failures are returned as errors, together with a usable fresh session.
func (s *MongoStore) New(r *http.Request, name string) (*sessions.Session, error) {
	sess := sessions.NewSession(s, name)
	opts := *s.Options
	sess.Options = &opts
	sess.IsNew = true
	sess.ID = uuid.NewString()

	cookie, err := r.Cookie(name)
	if err != nil {
		return sess, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, cookie.Value, &id, s.codecs...); err != nil {
		return sess, nil
	}

	record, err := s.repo.Find(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return sess, nil
	}
	if err != nil {
		return sess, err
	}
	if record.Expired(s.clock.Now()) {
		return sess, nil
	}

	sess.ID = record.ID
	sess.IsNew = false
	for k, v := range record.Values {
		sess.Values[k] = v
	}
	if record.UserID != "" {
		sess.Values[KeyUserID] = record.UserID
	}
	return sess, nil
}

// Save persists the session and sets the cookie. A negative MaxAge deletes the record
// and expires the cookie.
func (s *MongoStore) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	if sess.Options.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.repo.Delete(r.Context(), sess.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(sess.Name(), "", sess.Options))
		return nil
	}

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	record, err := s.toRecord(sess)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(r.Context(), record); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(sess.Name(), sess.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(sess.Name(), encoded, sess.Options))
	return nil
}

// Regenerate moves sess to a fresh id and drops the record stored under the old one.
// The values are kept and written under the new id on the next save.
func (s *MongoStore) Regenerate(ctx context.Context, sess *sessions.Session) error {
	if !sess.IsNew && sess.ID != "" {
		if err := s.repo.Delete(ctx, sess.ID); err != nil {
			return err
		}
	}
	sess.ID = uuid.NewString()
	return nil
}

func (s *MongoStore) toRecord(sess *sessions.Session) (*models.Session, error) {
	now := s.clock.Now()
	record := &models.Session{
		ID:        sess.ID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	for k, v := range sess.Values {
		key, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("session key %v: unsupported type %T", k, k)
		}
		value, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("session value %q: unsupported type %T", key, v)
		}
		if key == KeyUserID {
			record.UserID = value
			continue
		}
		if record.Values == nil {
			record.Values = make(map[string]string)
		}
		record.Values[key] = value
	}
	return record, nil
}
