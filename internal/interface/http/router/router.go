package router

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/library-catalog/docs" // 注册swagger文档
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/interface/http/handler"
	"github.com/xiebiao/library-catalog/internal/interface/http/middleware"
	"github.com/xiebiao/library-catalog/pkg/response"
	"github.com/xiebiao/library-catalog/pkg/validator"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	Book     *handler.BookHandler
	Author   *handler.AuthorHandler
	Genre    *handler.GenreHandler
	Instance *handler.InstanceHandler
	User     *handler.UserHandler
	Summary  *handler.SummaryHandler
}

// Options 路由选项
type Options struct {
	Mode        string // debug | release | test
	Logger      *slog.Logger
	Auth        *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter
	MetricsPath string // 为空时不暴露/metrics
	SessionTTL  time.Duration
	Swagger     bool
}

// New 创建Gin引擎并注册路由
// 读接口公开(带可选登录)，写接口要求登录并经过限流
func New(opts Options, h Handlers) (*gin.Engine, error) {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	if err := validator.RegisterGin(map[string][]string{"loanstatus": statusValues()}); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(opts.Logger))
	if opts.MetricsPath != "" {
		r.Use(middleware.Metrics())
		r.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limiter := opts.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(0, 1)
	}
	// 变更接口：登录 + 限流
	write := []gin.HandlerFunc{opts.Auth.RequireAuth(), limiter.Middleware()}

	v1 := r.Group("/api/v1")
	v1.Use(opts.Auth.OptionalAuth())
	{
		v1.GET("/", middleware.Session(opts.SessionTTL), h.Summary.Index)

		books := v1.Group("/books")
		{
			books.GET("", h.Book.List)
			books.GET("/:id", h.Book.Get)
			books.GET("/:id/instances", h.Book.ListInstances)
			books.GET("/:id/reviews", h.Book.ListReviews)

			books.POST("", append(write, h.Book.Create)...)
			books.PUT("/:id", append(write, h.Book.Update)...)
			books.DELETE("/:id", append(write, h.Book.Delete)...)
			books.POST("/:id/instances", append(write, h.Book.CreateInstance)...)
			books.POST("/:id/reviews", append(write, h.Book.CreateReview)...)
		}

		authors := v1.Group("/authors")
		{
			authors.GET("", h.Author.List)
			authors.GET("/:id", h.Author.Get)
			authors.POST("", append(write, h.Author.Create)...)
			authors.PUT("/:id", append(write, h.Author.Update)...)
			authors.DELETE("/:id", append(write, h.Author.Delete)...)
		}

		genres := v1.Group("/genres")
		{
			genres.GET("", h.Genre.List)
			genres.GET("/:id", h.Genre.Get)
			genres.POST("", append(write, h.Genre.Create)...)
			genres.PUT("/:id", append(write, h.Genre.Update)...)
			genres.DELETE("/:id", append(write, h.Genre.Delete)...)
		}

		instances := v1.Group("/instances")
		{
			instances.GET("/:id", h.Instance.Get)
			instances.PUT("/:id", append(write, h.Instance.UpdateImprint)...)
			instances.DELETE("/:id", append(write, h.Instance.Delete)...)
			instances.PUT("/:id/status", append(write, h.Instance.SetStatus)...)
			instances.POST("/:id/checkout", append(write, h.Instance.Checkout)...)
			instances.POST("/:id/reserve", append(write, h.Instance.Reserve)...)
			instances.POST("/:id/return", append(write, h.Instance.Return)...)
		}

		loans := v1.Group("/loans")
		loans.Use(opts.Auth.RequireAuth())
		{
			loans.GET("", h.Instance.AllLoans)
			loans.GET("/mine", h.Instance.MyLoans)
		}

		users := v1.Group("/users")
		{
			users.POST("/register", limiter.Middleware(), h.User.Register)
			users.POST("/login", limiter.Middleware(), h.User.Login)
			users.POST("/refresh", h.User.Refresh)
			users.POST("/logout", opts.Auth.RequireAuth(), h.User.Logout)
			users.DELETE("/:id", append(write, h.User.Delete)...)
		}
	}

	return r, nil
}

func statusValues() []string {
	all := instance.AllStatuses()
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = string(s)
	}
	return out
}
