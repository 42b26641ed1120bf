package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/gym-portal/internal/apperr"
	"github.com/yourusername/gym-portal/internal/logging"
	"github.com/yourusername/gym-portal/internal/model"
)

// SessionManager はログイン状態の確立と破棄を行います。
type SessionManager interface {
	Establish(c *gin.Context, user *model.User) (string, error)
	Terminate(c *gin.Context) error
}

// Handler はログイン・サインアップ・ログアウトの HTTP ハンドラーです。
type Handler struct {
	svc      *Service
	sessions SessionManager
	logger   logging.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(svc *Service, sessions SessionManager, logger logging.Logger) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
		logger:   logger.With("component", "auth"),
	}
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type signupForm struct {
	FirstName       string `form:"fName"`
	LastName        string `form:"lName"`
	Username        string `form:"username"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirmPassword"`
}

// LoginPage は GET /login のハンドラーです。
func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// SignupPage は GET /signup のハンドラーです。
func (h *Handler) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", nil)
}

// Login は POST /login のハンドラーです。
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	user, err := h.svc.Verify(ctx, form.Username, form.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrAuthFailure) {
			h.logger.Warn(ctx, "login failed", "username", form.Username)
		} else {
			h.logger.Error(ctx, "login lookup failed", "username", form.Username, "error", err)
		}
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if _, err := h.sessions.Establish(c, user); err != nil {
		h.logger.Error(ctx, "session establish failed", "userid", user.UserID, "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	h.logger.Info(ctx, "login succeeded", "userid", user.UserID)
	c.Redirect(http.StatusFound, "/profile")
}

// Signup は POST /signup のハンドラーです。
// 登録に成功するとそのままログイン状態にしてプロフィールへ遷移します。
func (h *Handler) Signup(c *gin.Context) {
	ctx := c.Request.Context()

	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusFound, "/signup")
		return
	}

	user, err := h.svc.Register(ctx, RegisterInput{
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Username:        form.Username,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		h.logger.Warn(ctx, "signup rejected", "username", form.Username, "kind", apperr.Kind(err), "error", err)
		c.Redirect(http.StatusFound, "/signup")
		return
	}

	if _, err := h.sessions.Establish(c, user); err != nil {
		h.logger.Error(ctx, "session establish failed", "userid", user.UserID, "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	h.logger.Info(ctx, "user registered", "userid", user.UserID)
	c.Redirect(http.StatusFound, "/profile")
}

// Logout は GET /logout のハンドラーです。
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Terminate(c); err != nil {
		h.logger.Error(c.Request.Context(), "session terminate failed", "error", err)
	}
	c.Redirect(http.StatusFound, "/")
}
