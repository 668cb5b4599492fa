package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	appcatalog "github.com/xiebiao/library-catalog/internal/application/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/domain/review"
	"github.com/xiebiao/library-catalog/internal/domain/stats"
	"github.com/xiebiao/library-catalog/internal/domain/user"
	"github.com/xiebiao/library-catalog/internal/infrastructure/config"
	"github.com/xiebiao/library-catalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library-catalog/internal/interface/http/middleware"
	"github.com/xiebiao/library-catalog/internal/interface/http/router"
	"github.com/xiebiao/library-catalog/pkg/circuitbreaker"
	"github.com/xiebiao/library-catalog/pkg/jwt"
	"github.com/xiebiao/library-catalog/pkg/mq"
)

// 需要从配置中提取参数的Provider，main.go和wire.go共用

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func providePolicy(cfg *config.Config) instance.Policy {
	return instance.Policy{Strict: cfg.Catalog.StrictTransitions}
}

func provideRating(cfg *config.Config) review.Rating {
	return review.Rating{Min: cfg.Catalog.MinStars, Max: cfg.Catalog.MaxStars}
}

func provideUserService(repo user.Repository) user.Service {
	return user.NewService(repo)
}

func provideVisitStore(client *goredis.Client) *redis.VisitStore {
	return redis.NewVisitStore(client, redis.DefaultVisitTTL)
}

func provideListBooks(svc catalog.Service, cfg *config.Config) *appcatalog.ListBooksUseCase {
	return appcatalog.NewListBooksUseCase(svc, cfg.Catalog.PageSize, cfg.Catalog.GenreDisplayLimit)
}

func provideListAuthors(svc catalog.Service, cfg *config.Config) *appcatalog.ListAuthorsUseCase {
	return appcatalog.NewListAuthorsUseCase(svc, cfg.Catalog.PageSize)
}

func provideListGenres(svc catalog.Service, cfg *config.Config) *appcatalog.ListGenresUseCase {
	return appcatalog.NewListGenresUseCase(svc, cfg.Catalog.PageSize)
}

func provideBookDetail(svc catalog.Service, statsSvc *stats.Service, cfg *config.Config) *appcatalog.BookDetailUseCase {
	return appcatalog.NewBookDetailUseCase(svc, statsSvc, cfg.Catalog.GenreDisplayLimit)
}

func provideManage(svc catalog.Service, cfg *config.Config) *appcatalog.ManageUseCase {
	return appcatalog.NewManageUseCase(svc, cfg.Catalog.GenreDisplayLimit)
}

// provideRateLimiter 返回的cleanup停止后台清理
func provideRateLimiter(cfg *config.Config) (*middleware.RateLimiter, func()) {
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	return limiter, limiter.StartSweeper(middleware.DefaultSweepInterval)
}

// providePublisher mq.enabled=false时返回NopPublisher，否则带熔断保护
func providePublisher(cfg *config.Config) (mq.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return mq.NopPublisher{}, func() {}, nil
	}
	p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, mq.ExchangeTopic)
	if err != nil {
		return nil, nil, err
	}
	guarded := mq.NewBreakerPublisher(p, circuitbreaker.Config{
		Timeout:     cfg.MQ.BreakerTimeout,
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(cfg.MQ.BreakerFailures),
	})
	return guarded, func() { _ = guarded.Close() }, nil
}

func provideRouter(
	cfg *config.Config,
	logger *slog.Logger,
	auth *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
	handlers router.Handlers,
) (*gin.Engine, error) {
	opts := router.Options{
		Mode:        cfg.Server.Mode,
		Logger:      logger,
		Auth:        auth,
		RateLimiter: limiter,
		SessionTTL:  redis.DefaultVisitTTL,
		// 生产环境不暴露文档
		Swagger: cfg.Server.Mode != gin.ReleaseMode,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	return router.New(opts, handlers)
}
