//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 使用方式：
// 1. 运行 `wire gen ./cmd/api` 生成wire_gen.go
// 2. main.go改为调用InitializeApp()
//
// 依赖关系与main.go中的手动组装一致

package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appcatalog "github.com/xiebiao/library-catalog/internal/application/catalog"
	apploan "github.com/xiebiao/library-catalog/internal/application/loan"
	appuser "github.com/xiebiao/library-catalog/internal/application/user"
	"github.com/xiebiao/library-catalog/internal/domain/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/identity"
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/domain/review"
	"github.com/xiebiao/library-catalog/internal/domain/stats"
	"github.com/xiebiao/library-catalog/internal/domain/user"
	"github.com/xiebiao/library-catalog/internal/infrastructure/config"
	"github.com/xiebiao/library-catalog/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library-catalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library-catalog/internal/interface/http/handler"
	"github.com/xiebiao/library-catalog/internal/interface/http/middleware"
	"github.com/xiebiao/library-catalog/internal/interface/http/router"
)

// infrastructureSet 数据库、Redis、消息队列
var infrastructureSet = wire.NewSet(
	mysql.NewDB,
	redis.NewClient,
	providePublisher,
)

// repositorySet 仓储与存储
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewCapabilityStore,
	mysql.NewAuthorRepository,
	mysql.NewGenreRepository,
	mysql.NewBookRepository,
	mysql.NewInstanceRepository,
	mysql.NewReviewRepository,
	mysql.NewStatsRepository,
	mysql.NewTxManager,
	redis.NewSessionStore,
	provideVisitStore,

	// 能力校验与授权
	wire.Bind(new(identity.Checker), new(*mysql.CapabilityStore)),
	wire.Bind(new(appuser.CapabilityRevoker), new(*mysql.CapabilityStore)),
	// 借阅人必须是已存在的用户
	wire.Bind(new(identity.Directory), new(user.Repository)),
	wire.Bind(new(instance.BookChecker), new(catalog.BookRepository)),
	wire.Bind(new(review.BookChecker), new(catalog.BookRepository)),
	wire.Bind(new(stats.BookChecker), new(catalog.BookRepository)),
	wire.Bind(new(appuser.BorrowerClearer), new(instance.Repository)),
	wire.Bind(new(appuser.Transactor), new(*mysql.TxManager)),
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(middleware.Blacklist), new(*redis.SessionStore)),
	wire.Bind(new(appcatalog.VisitCounter), new(*redis.VisitStore)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	provideUserService,
	providePolicy,
	provideRating,
	catalog.NewService,
	instance.NewService,
	review.NewService,
	stats.NewService,
	wire.Bind(new(stats.InstanceLister), new(instance.Service)),
	wire.Bind(new(stats.ReviewLister), new(review.Service)),
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewDeleteUserUseCase,
	provideListBooks,
	provideListAuthors,
	provideListGenres,
	provideBookDetail,
	provideManage,
	appcatalog.NewReviewUseCase,
	appcatalog.NewSummaryUseCase,
	apploan.NewUseCase,
)

// handlerSet HTTP处理器与中间件
var handlerSet = wire.NewSet(
	provideJWTManager,
	provideRateLimiter,
	middleware.NewAuthMiddleware,
	handler.NewBookHandler,
	handler.NewAuthorHandler,
	handler.NewGenreHandler,
	handler.NewInstanceHandler,
	handler.NewUserHandler,
	handler.NewSummaryHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideRouter,
)

// InitializeApp 组装完整的HTTP引擎，cleanup关闭消息队列连接
func InitializeApp(cfg *config.Config, logger *slog.Logger) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		handlerSet,
	)
	return nil, nil, nil
}
