package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/social-feed/config"
	_ "github.com/d60-Lab/social-feed/docs"
	"github.com/d60-Lab/social-feed/internal/api/handler"
	"github.com/d60-Lab/social-feed/pkg/middleware"
)

// NewRouter 组装 gin engine：中间件 + 路由
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLog())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware("social-feed"))
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(middleware.RateLimit(rate.Limit(50), 100))
	r.Use(middleware.Auth(cfg.Auth.JWTSecret, cfg.Auth.Issuer))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/sync", h.SyncUser)
			users.GET("/me", h.Me)
			users.GET("/suggestions", h.Suggestions)
			users.GET("/:username", h.Profile)
			users.GET("/:username/posts", h.UserPosts)
			users.GET("/:username/likes", h.UserLikedPosts)
			users.GET("/:username/following", h.Following)
			users.GET("/:username/followers", h.Followers)
		}

		// 目标用 ID 定位，与按 username 的读路由分开
		v1.POST("/follow/:id", h.ToggleFollow)

		v1.GET("/feed", h.Feed)

		posts := v1.Group("/posts")
		{
			posts.POST("", h.CreatePost)
			posts.DELETE("/:id", h.DeletePost)
			posts.POST("/:id/like", h.ToggleLike)
			posts.POST("/:id/comments", h.CreateComment)
		}

		v1.PATCH("/comments/:id", h.UpdateComment)

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", h.Notifications)
			notifications.POST("/read", h.MarkNotificationsRead)
		}
	}

	return r
}
