package session

import "time"

// Record はサーバー側に保存するセッション情報です。
type Record struct {
	Token        string    `json:"token"`
	UserID       string    `json:"userId"`
	IssuedAt     time.Time `json:"issuedAt"`
	LastActivity time.Time `json:"lastActivity"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired は now 時点でセッションが寿命または無操作タイムアウトを超えているかを返します。
func (r *Record) Expired(now time.Time, idleTimeout time.Duration) bool {
	if r.IssuedAt.IsZero() || r.LastActivity.IsZero() {
		return true
	}
	if !now.Before(r.ExpiresAt) {
		return true
	}
	return idleTimeout > 0 && now.Sub(r.LastActivity) > idleTimeout
}
