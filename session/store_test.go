package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "sid"

func newTestStore(t *testing.T, repo Repository, clock clockwork.Clock) *MongoStore {
	t.Helper()
	store, err := NewMongoStore(repo, "test-secret", time.Hour, clock)
	require.NoError(t, err)
	return store
}

func saveSession(t *testing.T, store *MongoStore, sess *sessions.Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(httptest.NewRequest(http.MethodGet, "/", nil), rec, sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWith(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestNewMongoStoreRequiresSecret(t *testing.T) {
	_, err := NewMongoStore(NewMemoryRepository(), "", time.Hour, clockwork.NewFakeClock())
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestStoreNewWithoutCookie(t *testing.T) {
	store := newTestStore(t, NewMemoryRepository(), clockwork.NewFakeClock())

	sess, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	assert.True(t, sess.IsNew)
	assert.NotEmpty(t, sess.ID)
	assert.Empty(t, sess.Values)

	other, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, other.ID)
}

func TestStoreSaveAndReload(t *testing.T) {
	repo := NewMemoryRepository()
	store := newTestStore(t, repo, clockwork.NewFakeClock())

	sess, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	sess.Values[KeyUserID] = "user-1"
	sess.Values["theme"] = "dark"

	cookie := saveSession(t, store, sess)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, repo.Len())
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.NotContains(t, cookie.Value, sess.ID)
	assert.NotContains(t, cookie.Value, "user-1")

	record, err := repo.Find(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, map[string]string{"theme": "dark"}, record.Values)

	loaded, err := store.New(requestWith(cookie), testCookie)
	require.NoError(t, err)
	assert.False(t, loaded.IsNew)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "user-1", loaded.Values[KeyUserID])
	assert.Equal(t, "dark", loaded.Values["theme"])
}

func TestStoreTamperedCookieStartsNewSession(t *testing.T) {
	store := newTestStore(t, NewMemoryRepository(), clockwork.NewFakeClock())
	sess, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	cookie := saveSession(t, store, sess)

	cookie.Value = "x" + cookie.Value
	loaded, err := store.New(requestWith(cookie), testCookie)
	require.NoError(t, err)
	assert.True(t, loaded.IsNew)
}

func TestStoreCookieFromOtherSecretIsRejected(t *testing.T) {
	repo := NewMemoryRepository()
	clock := clockwork.NewFakeClock()
	store := newTestStore(t, repo, clock)
	sess, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	cookie := saveSession(t, store, sess)

	other, err := NewMongoStore(repo, "rotated-secret", time.Hour, clock)
	require.NoError(t, err)
	loaded, err := other.New(requestWith(cookie), testCookie)
	require.NoError(t, err)
	assert.True(t, loaded.IsNew)
}

func TestStoreExpiredRecordStartsNewSession(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Now())
	store, err := NewMongoStore(NewMemoryRepository(), "test-secret", 10*time.Minute, clock)
	require.NoError(t, err)

	sess, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	cookie := saveSession(t, store, sess)

	clock.Advance(11 * time.Minute)
	loaded, err := store.New(requestWith(cookie), testCookie)
	require.NoError(t, err)
	assert.True(t, loaded.IsNew)
}

func TestStoreMissingRecordStartsNewSession(t *testing.T) {
	repo := NewMemoryRepository()
	store := newTestStore(t, repo, clockwork.NewFakeClock())
	sess, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	cookie := saveSession(t, store, sess)

	require.NoError(t, repo.Delete(context.Background(), sess.ID))
	loaded, err := store.New(requestWith(cookie), testCookie)
	require.NoError(t, err)
	assert.True(t, loaded.IsNew)
}

func TestStoreNegativeMaxAgeDeletes(t *testing.T) {
	repo := NewMemoryRepository()
	store := newTestStore(t, repo, clockwork.NewFakeClock())
	sess, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	saveSession(t, store, sess)
	require.Equal(t, 1, repo.Len())

	sess.Options.MaxAge = -1
	cookie := saveSession(t, store, sess)

	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, -1, cookie.MaxAge)
	assert.Empty(t, cookie.Value)
}

func TestStoreRejectsNonStringValues(t *testing.T) {
	store := newTestStore(t, NewMemoryRepository(), clockwork.NewFakeClock())
	sess, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	sess.Values["count"] = 3

	err = store.Save(requestWith(nil), httptest.NewRecorder(), sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type int")
}

func TestStoreKeepsCreatedAtAcrossSaves(t *testing.T) {
	repo := NewMemoryRepository()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := newTestStore(t, repo, clock)
	sess, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	saveSession(t, store, sess)

	clock.Advance(5 * time.Minute)
	saveSession(t, store, sess)

	record, err := repo.Find(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), record.CreatedAt)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC), record.UpdatedAt)
	assert.Equal(t, time.Date(2026, 1, 1, 1, 5, 0, 0, time.UTC), record.ExpiresAt)
}

func TestStoreRegenerate(t *testing.T) {
	repo := NewMemoryRepository()
	store := newTestStore(t, repo, clockwork.NewFakeClock())
	sess, err := store.New(requestWith(nil), testCookie)
	require.NoError(t, err)
	sess.Values["theme"] = "dark"
	oldCookie := saveSession(t, store, sess)

	loaded, err := store.New(requestWith(oldCookie), testCookie)
	require.NoError(t, err)
	oldID := loaded.ID

	require.NoError(t, Regenerate(context.Background(), loaded))
	assert.NotEqual(t, oldID, loaded.ID)
	assert.Equal(t, "dark", loaded.Values["theme"])
	_, err = repo.Find(context.Background(), oldID)
	assert.ErrorIs(t, err, ErrNotFound)

	newCookie := saveSession(t, store, loaded)
	reloaded, err := store.New(requestWith(newCookie), testCookie)
	require.NoError(t, err)
	assert.Equal(t, loaded.ID, reloaded.ID)

	stale, err := store.New(requestWith(oldCookie), testCookie)
	require.NoError(t, err)
	assert.True(t, stale.IsNew)
	assert.NotEqual(t, oldID, stale.ID)
}

func TestRegenerateWithoutStore(t *testing.T) {
	sess := sessions.NewSession(nil, testCookie)
	sess.ID = "fixed"

	require.NoError(t, Regenerate(context.Background(), sess))
	assert.NotEqual(t, "fixed", sess.ID)
	assert.NotEmpty(t, sess.ID)
}
