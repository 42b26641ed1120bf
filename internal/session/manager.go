// Package session はログインセッションの発行・復元・破棄を提供します。
//
// クライアントには署名付きクッキーで不透明なトークンのみを渡し、
// トークンとユーザーの対応は Redis 上のレコードで管理します。
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/gym-portal/internal/apperr"
	"github.com/yourusername/gym-portal/internal/logging"
	"github.com/yourusername/gym-portal/internal/model"
)

const (
	// CookieName はセッションクッキーの名前です。
	CookieName = "gym_session"

	sessionKeyToken = "sid"
)

const (
	defaultMaxLifetime = 12 * time.Hour
	defaultIdleTimeout = 30 * time.Minute
)

// UserLookup は userid からユーザーを取得します。
type UserLookup interface {
	FindByUserID(ctx context.Context, userID string) (*model.User, error)
}

// Options はセッションの有効期限とクッキーの設定です。
type Options struct {
	MaxLifetime  time.Duration
	IdleTimeout  time.Duration
	SecureCookie bool
}

// Manager はセッションのライフサイクルを管理します。
type Manager struct {
	store       *Store
	users       UserLookup
	logger      logging.Logger
	maxLifetime time.Duration
	idleTimeout time.Duration
	secure      bool
	now         func() time.Time
}

// NewManager は Manager を作成します。
func NewManager(store *Store, users UserLookup, logger logging.Logger, opts Options) *Manager {
	if opts.MaxLifetime <= 0 {
		opts.MaxLifetime = defaultMaxLifetime
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	return &Manager{
		store:       store,
		users:       users,
		logger:      logger.With("component", "session"),
		maxLifetime: opts.MaxLifetime,
		idleTimeout: opts.IdleTimeout,
		secure:      opts.SecureCookie,
		now:         time.Now,
	}
}

// CookieOptions はセッションクッキーの属性を返します。
func (m *Manager) CookieOptions() sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(m.maxLifetime.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewCookieStore はトークンを運ぶ署名付きクッキーストアを作成します。
func NewCookieStore(secret string, opts sessions.Options) cookie.Store {
	store := cookie.NewStore([]byte(secret))
	store.Options(opts)
	return store
}

// Middleware は gin-contrib/sessions のミドルウェアを返します。
func Middleware(store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(CookieName, store)
}

// Open はユーザーに紐づく新しいセッションレコードを作成します。
func (m *Manager) Open(ctx context.Context, user *model.User) (*Record, error) {
	if user == nil || user.UserID == "" {
		return nil, fmt.Errorf("%w: user without userid", apperr.ErrValidationFailed)
	}

	now := m.now()
	record := &Record{
		Token:        uuid.NewString(),
		UserID:       user.UserID,
		IssuedAt:     now,
		LastActivity: now,
		ExpiresAt:    now.Add(m.maxLifetime),
	}
	if err := m.store.Save(ctx, record, m.ttl(record, now)); err != nil {
		return nil, fmt.Errorf("%w: save session: %v", apperr.ErrPersistenceFailed, err)
	}
	return record, nil
}

// Lookup はトークンからユーザーを復元します。
// ユーザーは毎回ストアから読み直すため、常に最新のプロフィールが返ります。
// 有効なセッションが無い場合は apperr.ErrUnauthenticated のみを返します。
func (m *Manager) Lookup(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.ErrUnauthenticated
	}

	record, err := m.store.Get(ctx, token)
	if err != nil {
		m.logger.Warn(ctx, "session lookup failed", "error", err)
		return nil, apperr.ErrUnauthenticated
	}
	if record == nil {
		return nil, apperr.ErrUnauthenticated
	}

	now := m.now()
	if record.Expired(now, m.idleTimeout) {
		m.revokeQuietly(ctx, token)
		return nil, apperr.ErrUnauthenticated
	}

	user, err := m.users.FindByUserID(ctx, record.UserID)
	if err != nil {
		m.logger.Warn(ctx, "session user lookup failed", "userid", record.UserID, "error", err)
		return nil, apperr.ErrUnauthenticated
	}

	if err := m.store.Touch(ctx, token, now, m.ttl(record, now)); err != nil {
		m.logger.Warn(ctx, "session touch failed", "userid", record.UserID, "error", err)
	}
	return user, nil
}

// Revoke はトークンのセッションレコードを削除します。存在しないトークンでもエラーにはなりません。
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("%w: delete session: %v", apperr.ErrPersistenceFailed, err)
	}
	return nil
}

// Establish はログイン成功後にセッションを確立し、クッキーにトークンを書き込みます。
// 既存のトークンがあれば先に破棄します。
func (m *Manager) Establish(c *gin.Context, user *model.User) (string, error) {
	ctx := c.Request.Context()
	sess := sessions.Default(c)

	if old := tokenFrom(sess); old != "" {
		m.revokeQuietly(ctx, old)
	}

	record, err := m.Open(ctx, user)
	if err != nil {
		return "", err
	}

	sess.Clear()
	sess.Options(m.CookieOptions())
	sess.Set(sessionKeyToken, record.Token)
	if err := sess.Save(); err != nil {
		m.revokeQuietly(ctx, record.Token)
		return "", fmt.Errorf("save session cookie: %w", err)
	}
	return record.Token, nil
}

// Resolve はリクエストのクッキーからユーザーを復元します。
// 無効なトークンを持つクッキーは削除されます。
func (m *Manager) Resolve(c *gin.Context) (*model.User, error) {
	sess := sessions.Default(c)
	token := tokenFrom(sess)
	if token == "" {
		return nil, apperr.ErrUnauthenticated
	}

	user, err := m.Lookup(c.Request.Context(), token)
	if err != nil {
		clearCookie(sess)
		return nil, apperr.ErrUnauthenticated
	}
	return user, nil
}

// Terminate はセッションを破棄し、クッキーを削除します。何度呼んでもエラーにはなりません。
func (m *Manager) Terminate(c *gin.Context) error {
	sess := sessions.Default(c)
	token := tokenFrom(sess)
	clearCookie(sess)
	if token == "" {
		return nil
	}
	return m.Revoke(c.Request.Context(), token)
}

func (m *Manager) revokeQuietly(ctx context.Context, token string) {
	if err := m.Revoke(ctx, token); err != nil {
		m.logger.Warn(ctx, "session revoke failed", "error", err)
	}
}

// ttl はレコードの残り寿命と無操作タイムアウトの短い方を返します。
func (m *Manager) ttl(record *Record, now time.Time) time.Duration {
	remaining := record.ExpiresAt.Sub(now)
	if m.idleTimeout < remaining {
		return m.idleTimeout
	}
	return remaining
}

func tokenFrom(sess sessions.Session) string {
	token, _ := sess.Get(sessionKeyToken).(string)
	return token
}

func clearCookie(sess sessions.Session) {
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()
}
