package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/gym-portal/internal/model"
)

// ContextUserKey はログイン済みユーザーを gin.Context に格納するキーです。
const ContextUserKey = "auth.user"

// Resolver はリクエストのセッションからユーザーを復元します。
type Resolver interface {
	Resolve(c *gin.Context) (*model.User, error)
}

// LoadUser はセッションを検証し、認証済みならユーザーをコンテキストに格納するミドルウェアです。
// 未認証はエラーではないため、そのまま次へ進みます。
func LoadUser(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolver.Resolve(c); err == nil && user != nil {
			c.Set(ContextUserKey, user)
		}
		c.Next()
	}
}

// RequireLogin は未認証のリクエストを /login へリダイレクトします。
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectIfAuthenticated は認証済みのリクエストを指定パスへリダイレクトします。
func RedirectIfAuthenticated(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Redirect(http.StatusFound, path)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser はコンテキストに格納されたユーザーを返します。
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}
