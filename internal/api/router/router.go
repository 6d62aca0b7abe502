package router

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/lablinker/config"
	_ "github.com/d60-Lab/lablinker/docs"
	"github.com/d60-Lab/lablinker/internal/api/handler"
	"github.com/d60-Lab/lablinker/internal/api/middleware"
	"github.com/d60-Lab/lablinker/pkg/token"
)

// Setup 注册中间件与全部路由
func Setup(cfg *config.Config, h *handler.Handler, issuer *token.Issuer, accounts middleware.ActorResolver) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Metrics())
	r.Use(middleware.Logger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Handler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	required := middleware.Auth(issuer, accounts, true)
	optional := middleware.Auth(issuer, accounts, false)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/otp-auth", h.RequestOTP)
		auth.POST("/verify-otp", h.VerifyOTP)
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/password-reset", required, h.ResetPassword)
		auth.POST("/follow/:user_id", required, h.Follow)
		auth.POST("/unfollow/:user_id", required, h.Unfollow)
		auth.GET("/users/:user_id/followers", h.ListFollowers)
		auth.GET("/users/:user_id/following", h.ListFollowing)

		users := v1.Group("/users")
		users.GET("", h.ListUsers)
		users.GET("/:user_id", required, h.GetUser)
		users.PATCH("/:user_id", required, h.UpdateUser)
		users.DELETE("/:user_id", required, h.DeleteUser)

		posts := v1.Group("/posts")
		posts.GET("", optional, h.ListPosts)
		posts.POST("", required, h.CreatePost)
		posts.GET("/feed", required, h.Feed)
		posts.GET("/bookmarks", required, h.ListBookmarks)
		posts.POST("/bookmark/:post_id", required, h.Bookmark)
		posts.DELETE("/unbookmark/:post_id", required, h.Unbookmark)
		posts.POST("/unbookmark/:post_id", required, h.Unbookmark)
		posts.GET("/categories", h.ListCategories)
		posts.POST("/categories", required, h.CreateCategory)
		posts.GET("/categories/:id", h.GetCategory)
		posts.PATCH("/categories/:id", required, h.UpdateCategory)
		posts.DELETE("/categories/:id", required, h.DeleteCategory)
		posts.GET("/categories/:id/posts", optional, h.ListCategoryPosts)
		posts.GET("/:post_id", optional, h.GetPost)
		posts.PATCH("/:post_id", required, h.UpdatePost)
		posts.PUT("/:post_id", required, h.UpdatePost)
		posts.DELETE("/:post_id", required, h.DeletePost)

		likes := v1.Group("/likes")
		likes.POST("/posts/:post_id/like", required, h.ToggleLike)
		likes.GET("/posts/:post_id", h.ListLikers)

		comments := v1.Group("/comments")
		comments.GET("/posts/:post_id", h.ListComments)
		comments.POST("", required, h.CreateComment)
		comments.GET("/:comment_id", h.GetComment)
		comments.PATCH("/:comment_id", required, h.EditComment)
		comments.DELETE("/:comment_id", required, h.DeleteComment)

		resources := v1.Group("/resources", required)
		resources.GET("", h.ListResources)
		resources.POST("", h.CreateResource)
		resources.GET("/my_resources", h.MyResources)
		resources.GET("/categories", h.ResourceCategories)
		resources.GET("/:id", h.GetResource)
		resources.PATCH("/:id", h.UpdateResource)
		resources.PUT("/:id", h.UpdateResource)
		resources.DELETE("/:id", h.DeleteResource)
	}

	return r
}
