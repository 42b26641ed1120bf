// Package web は HTTP ルーティングとページの描画を提供します。
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/gym-portal/internal/auth"
	"github.com/yourusername/gym-portal/internal/config"
	"github.com/yourusername/gym-portal/internal/contact"
	"github.com/yourusername/gym-portal/internal/logging"
	"github.com/yourusername/gym-portal/internal/session"
)

const healthTimeout = 2 * time.Second

// HealthCheck は /health で確認する依存先です。
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps はルーターが必要とする依存関係です。
type Deps struct {
	Config       *config.Config
	Logger       logging.Logger
	Sessions     *session.Manager
	SessionStore sessions.Store
	Auth         *auth.Handler
	Contacts     *contact.Service
	HealthChecks []HealthCheck
}

// NewRouter は gin エンジンを組み立てます。
func NewRouter(deps Deps) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	router := gin.New()
	router.Use(logging.GinMiddleware(deps.Logger), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.Config)))
	router.SetHTMLTemplate(tmpl)

	router.StaticFS("/static", StaticFS())
	router.GET("/health", healthHandler(deps.HealthChecks))

	site := router.Group("/")
	site.Use(session.Middleware(deps.SessionStore), auth.LoadUser(deps.Sessions))
	{
		site.GET("/", homePage)

		site.POST("/login", deps.Auth.Login)
		site.POST("/signup", deps.Auth.Signup)
		site.GET("/logout", deps.Auth.Logout)

		guest := site.Group("")
		guest.Use(auth.RedirectIfAuthenticated("/profile"))
		{
			guest.GET("/login", deps.Auth.LoginPage)
			guest.GET("/signup", deps.Auth.SignupPage)
		}

		protected := site.Group("")
		protected.Use(auth.RequireLogin())
		{
			protected.GET("/contact", staticPage("contact.html"))
			protected.POST("/contact", contact.SubmitHandler(deps.Contacts, deps.Logger))
			protected.GET("/services", staticPage("services.html"))
			protected.GET("/source_payment", staticPage("source_payment.html"))
			protected.GET("/about", staticPage("about.html"))
			protected.GET("/profile", profilePage)
		}
	}

	return router, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 {
		origins = []string{"http://localhost:" + cfg.Port}
	}
	corsCfg.AllowOrigins = origins
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	return corsCfg
}

func homePage(c *gin.Context) {
	loggedIn := 0
	if _, ok := auth.CurrentUser(c); ok {
		loggedIn = 1
	}
	c.HTML(http.StatusOK, "home.html", gin.H{"info": loggedIn})
}

func profilePage(c *gin.Context) {
	user, _ := auth.CurrentUser(c)
	c.HTML(http.StatusOK, "profile.html", gin.H{"userInfo": user})
}

func staticPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, nil)
	}
}

// healthHandler はヘルスチェックエンドポイントのハンドラーです。
func healthHandler(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		results := gin.H{}
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[check.Name] = "down"
				continue
			}
			results[check.Name] = "up"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"service": "gym-portal",
			"checks":  results,
		})
	}
}
