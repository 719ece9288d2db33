package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crowdfund-platform/internal/middleware"
	ws "crowdfund-platform/internal/websocket"
)

// Authenticator signs users in and verifies their tokens.
type Authenticator interface {
	AuthService
	middleware.Authenticator
}

// Deps is everything the router wires into handlers. Payments may be nil,
// in which case the checkout and webhook routes are not registered.
type Deps struct {
	Auth           Authenticator
	Fundraising    FundraisingService
	Documents      DocumentService
	Payments       PaymentService
	Hub            *ws.Hub
	Log            *zap.Logger
	AllowedOrigins []string
	TrendingLimit  int
	// UploadDir is served at /uploads when documents are kept on local disk.
	UploadDir string
	Ping      func(ctx context.Context) error
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if d.Documents != nil {
		r.MaxMultipartMemory = d.Documents.MaxBytes()
	}

	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			if err := d.Ping(c.Request.Context()); err != nil {
				d.Log.Error("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	authHandler := NewAuthHandler(d.Auth, d.Log)
	profileHandler := NewProfileHandler(d.Fundraising, d.Log)
	fundraiserHandler := NewFundraiserHandler(d.Fundraising, d.TrendingLimit, d.Log)
	donationHandler := NewDonationHandler(d.Fundraising, d.Payments, d.Log)
	uploadHandler := NewUploadHandler(d.Documents, d.Log)
	requireAuth := middleware.AuthMiddleware(d.Auth, d.Log)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
		}

		api.GET("/me", requireAuth, profileHandler.GetMyProfile)
		api.GET("/users/:id/profile", profileHandler.GetProfile)
		api.POST("/uploads", requireAuth, uploadHandler.Upload)

		fundraisers := api.Group("/fundraisers")
		{
			fundraisers.GET("/schema", fundraiserHandler.Schema)
			fundraisers.POST("/validate/:step", fundraiserHandler.ValidateStep)
			fundraisers.GET("/trending", fundraiserHandler.Trending)
			fundraisers.GET("", fundraiserHandler.List)
			fundraisers.POST("", requireAuth, fundraiserHandler.Create)
			fundraisers.GET("/:id", fundraiserHandler.Get)
			fundraisers.GET("/:id/donations", donationHandler.List)
			fundraisers.POST("/:id/donations", requireAuth, donationHandler.Donate)
			if d.Payments != nil {
				fundraisers.POST("/:id/checkout", requireAuth, donationHandler.Checkout)
			}
		}

		if d.Payments != nil {
			api.POST("/webhook/payment", donationHandler.HandlePaymentNotification)
		}
	}

	if d.Hub != nil {
		wsHandler := NewWebSocketHandler(d.Fundraising, d.Hub, d.Log)
		r.GET("/ws/fundraisers/:id", wsHandler.ServeWs)
	}

	return r
}
