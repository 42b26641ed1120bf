package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gym-portal/internal/apperr"
	"github.com/yourusername/gym-portal/internal/logging"
	"github.com/yourusername/gym-portal/internal/model"
	"github.com/yourusername/gym-portal/internal/storage"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemoryUsers(users ...*model.User) *memoryUsers {
	m := &memoryUsers{users: make(map[string]*model.User)}
	for _, u := range users {
		m.users[u.UserID] = u
	}
	return m
}

func (m *memoryUsers) FindByUserID(_ context.Context, userID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) rename(userID, first string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID].FirstName = first
}

func (m *memoryUsers) remove(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
}

var jane = &model.User{FirstName: "Jane", LastName: "Doe", Username: "janedoe", UserID: "janedoe4242"}

func newTestManager(t *testing.T, users UserLookup) *Manager {
	t.Helper()
	store, _ := newTestStore(t)
	return NewManager(store, users, logging.Nop(), Options{
		MaxLifetime: 12 * time.Hour,
		IdleTimeout: 30 * time.Minute,
	})
}

func TestOpenLookupRevoke(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUsers(jane)
	m := newTestManager(t, users)

	rec, err := m.Open(ctx, jane)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Token)
	assert.Equal(t, jane.UserID, rec.UserID)

	user, err := m.Lookup(ctx, rec.Token)
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)

	require.NoError(t, m.Revoke(ctx, rec.Token))
	_, err = m.Lookup(ctx, rec.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	require.NoError(t, m.Revoke(ctx, rec.Token))
	_, err = m.Lookup(ctx, rec.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestLookupRereadsUser(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUsers(&model.User{FirstName: "Jane", LastName: "Doe", UserID: "janedoe4242"})
	m := newTestManager(t, users)

	rec, err := m.Open(ctx, jane)
	require.NoError(t, err)

	users.rename("janedoe4242", "Janet")
	user, err := m.Lookup(ctx, rec.Token)
	require.NoError(t, err)
	assert.Equal(t, "Janet", user.FirstName)

	users.remove("janedoe4242")
	_, err = m.Lookup(ctx, rec.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestLookupUnknownOrEmptyToken(t *testing.T) {
	m := newTestManager(t, newMemoryUsers(jane))

	_, err := m.Lookup(context.Background(), "never-issued")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = m.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestOpenRejectsUserWithoutUserID(t *testing.T) {
	m := newTestManager(t, newMemoryUsers())

	_, err := m.Open(context.Background(), &model.User{Username: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
}

func TestIdleTimeoutAndLifetime(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newMemoryUsers(jane))

	start := time.Now()
	m.now = func() time.Time { return start }
	rec, err := m.Open(ctx, jane)
	require.NoError(t, err)

	// 無操作 31 分で失効
	m.now = func() time.Time { return start.Add(31 * time.Minute) }
	_, err = m.Lookup(ctx, rec.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// 操作を続けていても最大寿命で失効
	m.now = func() time.Time { return start }
	rec, err = m.Open(ctx, jane)
	require.NoError(t, err)
	for at := start; at.Before(start.Add(12 * time.Hour)); at = at.Add(20 * time.Minute) {
		current := at
		m.now = func() time.Time { return current }
		_, err = m.Lookup(ctx, rec.Token)
		require.NoError(t, err, "at %s", current.Sub(start))
	}
	m.now = func() time.Time { return start.Add(12 * time.Hour) }
	_, err = m.Lookup(ctx, rec.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRecordTTLBoundedByIdleTimeout(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	m := NewManager(store, newMemoryUsers(jane), logging.Nop(), Options{MaxLifetime: time.Hour, IdleTimeout: 10 * time.Minute})

	rec, err := m.Open(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, mr.TTL("session:"+rec.Token))

	mr.FastForward(11 * time.Minute)
	_, err = m.Lookup(ctx, rec.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

// gin 経由のクッキー往復

func newSessionRouter(m *Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(NewCookieStore("test-secret-test-secret-test-secret", m.CookieOptions())))
	router.POST("/login", func(c *gin.Context) {
		if _, err := m.Establish(c, jane); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.GET("/me", func(c *gin.Context) {
		user, err := m.Resolve(c)
		if err != nil {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.String(http.StatusOK, user.FirstName+" "+user.LastName)
	})
	router.GET("/logout", func(c *gin.Context) {
		if err := m.Terminate(c); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return router
}

func do(router http.Handler, method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// lastCookie はレスポンス中で最後に設定されたセッションクッキーを返します。
func lastCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			found = c
		}
	}
	return found
}

func TestCookieSessionLifecycle(t *testing.T) {
	m := newTestManager(t, newMemoryUsers(jane))
	router := newSessionRouter(m)

	rec := do(router, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookie := lastCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	rec = do(router, http.MethodGet, "/me", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane Doe", rec.Body.String())

	rec = do(router, http.MethodGet, "/logout", cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	cleared := lastCookie(rec)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	// ログアウト後に古いクッキーを再送しても認証されない
	rec = do(router, http.MethodGet, "/me", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 2回目のログアウトもエラーにならない
	rec = do(router, http.MethodGet, "/logout", cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(router, http.MethodGet, "/me", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEstablishReplacesPreviousSession(t *testing.T) {
	m := newTestManager(t, newMemoryUsers(jane))
	router := newSessionRouter(m)

	first := lastCookie(do(router, http.MethodPost, "/login", nil))
	require.NotNil(t, first)

	second := lastCookie(do(router, http.MethodPost, "/login", first))
	require.NotNil(t, second)
	assert.Greater(t, second.MaxAge, 0)

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/me", first).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/me", second).Code)
}

func TestTamperedCookieIsUnauthenticated(t *testing.T) {
	m := newTestManager(t, newMemoryUsers(jane))
	router := newSessionRouter(m)

	forged := &http.Cookie{Name: CookieName, Value: "not-a-signed-value"}
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/me", forged).Code)
}
