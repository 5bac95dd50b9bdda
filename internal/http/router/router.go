package router

import (
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nmbsms/scholarship-backend/internal/auth"
	"github.com/nmbsms/scholarship-backend/internal/blacklist"
	"github.com/nmbsms/scholarship-backend/internal/config"
	"github.com/nmbsms/scholarship-backend/internal/http/handlers"
	"github.com/nmbsms/scholarship-backend/internal/http/middleware"
	"github.com/nmbsms/scholarship-backend/internal/token"
	"gorm.io/gorm"
)

// New assembles the gin engine: middleware chain, CORS, and the auth
// route groups. The caller owns running it.
func New(db *gorm.DB, cfg *config.Config) *gin.Engine {
	maker := token.NewJWTMaker(cfg.JWTSecret, cfg.TokenLifetime)
	bl := blacklist.NewStore(db)
	svc := auth.NewService(db, maker, bl)
	h := handlers.NewAuthHandler(svc, int(cfg.TokenLifetime.Seconds()))

	r := gin.New()
	r.Use(middleware.SlogLoggerMiddleware())
	r.Use(gin.Recovery())

	// reverse-proxied deployment, trust only localhost
	err := r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	if err != nil {
		log.Fatalf("Failed to set trusted proxies: %v", err)
	}

	allowedOrigins := strings.Split(cfg.AllowedOrigins, ",")
	slog.Info("Allowing origins", "origins", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS", "DELETE"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	{
		public := r.Group("/api/auth").Use(middleware.RateLimit())
		public.GET("/ping", handlers.Ping)
		public.POST("/signup/initial", h.InitialSignUp)
		public.POST("/signup/set-password", h.SetPassword)
		public.POST("/signup/complete", h.CompleteSignUp)
		public.POST("/login", h.Login)
		public.POST("/reset-password", h.ResetPassword)
	}

	// Logout verifies the token itself; it must stay reachable with a
	// blacklisted-but-unexpired cookie, so it skips Authenticate.
	r.POST("/api/logout", middleware.RateLimit(), h.Logout)

	{
		protected := r.Group("/api")
		protected.Use(middleware.RateLimit())
		protected.Use(middleware.Authenticate(maker, bl))
		protected.Use(middleware.RequireAuth())

		protected.GET("/auth/me", h.Me)
		protected.POST("/settings/change-password", h.ChangePassword)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"message": "Not Found: " + c.Request.URL.Path})
	})

	return r
}
