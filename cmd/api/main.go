package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcatalog "github.com/xiebiao/library-catalog/internal/application/catalog"
	apploan "github.com/xiebiao/library-catalog/internal/application/loan"
	appuser "github.com/xiebiao/library-catalog/internal/application/user"
	"github.com/xiebiao/library-catalog/internal/domain/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/domain/review"
	"github.com/xiebiao/library-catalog/internal/domain/stats"
	"github.com/xiebiao/library-catalog/internal/infrastructure/config"
	"github.com/xiebiao/library-catalog/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library-catalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library-catalog/internal/interface/http/handler"
	"github.com/xiebiao/library-catalog/internal/interface/http/middleware"
	"github.com/xiebiao/library-catalog/internal/interface/http/router"
	"github.com/xiebiao/library-catalog/pkg/logger"
	"github.com/xiebiao/library-catalog/pkg/metrics"
	"github.com/xiebiao/library-catalog/pkg/tracing"
)

// shutdownTimeout 优雅退出等待时间
const shutdownTimeout = 10 * time.Second

// main 主程序入口
// 说明：手动依赖注入，依赖关系与wire.go保持一致
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	appLogger, err := logger.Setup(logger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s (%s)\n", cfg.Database.Driver, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. 可观测性
	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化Tracing失败: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slog.Warn("关闭Tracer失败", "error", err)
			}
		}()
	}
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	// 3. 数据库与Redis
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}
	defer redisClient.Close()

	publisher, closePublisher, err := providePublisher(cfg)
	if err != nil {
		log.Fatalf("连接消息队列失败: %v", err)
	}
	defer closePublisher()

	// 4. 依赖注入（手动组装）
	// Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	capStore := mysql.NewCapabilityStore(db)
	authorRepo := mysql.NewAuthorRepository(db)
	genreRepo := mysql.NewGenreRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	instanceRepo := mysql.NewInstanceRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)
	statsRepo := mysql.NewStatsRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	visitStore := provideVisitStore(redisClient)
	jwtManager := provideJWTManager(cfg)

	// 领域层
	userService := provideUserService(userRepo)
	catalogService := catalog.NewService(authorRepo, genreRepo, bookRepo, capStore)
	instanceService := instance.NewService(instanceRepo, bookRepo, userRepo, capStore, providePolicy(cfg))
	reviewService := review.NewService(reviewRepo, bookRepo, provideRating(cfg))
	statsService := stats.NewService(bookRepo, instanceService, reviewService, statsRepo)

	// 应用层
	manageUseCase := provideManage(catalogService, cfg)
	loanUseCase := apploan.NewUseCase(instanceService, publisher)

	// 接口层
	handlers := router.Handlers{
		Book: handler.NewBookHandler(
			provideListBooks(catalogService, cfg),
			provideBookDetail(catalogService, statsService, cfg),
			manageUseCase,
			appcatalog.NewReviewUseCase(reviewService),
			loanUseCase,
		),
		Author:   handler.NewAuthorHandler(provideListAuthors(catalogService, cfg), manageUseCase),
		Genre:    handler.NewGenreHandler(provideListGenres(catalogService, cfg), manageUseCase),
		Instance: handler.NewInstanceHandler(loanUseCase),
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService),
			appuser.NewLoginUseCase(userService, jwtManager, sessionStore),
			appuser.NewDeleteUserUseCase(capStore, txManager, userRepo, instanceRepo, capStore, sessionStore),
		),
		Summary: handler.NewSummaryHandler(appcatalog.NewSummaryUseCase(statsService, visitStore)),
	}
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 5. 初始化Gin引擎并注册路由
	limiter, stopSweeper := provideRateLimiter(cfg)
	defer stopSweeper()
	engine, err := provideRouter(cfg, appLogger, authMiddleware, limiter, handlers)
	if err != nil {
		log.Fatalf("初始化路由失败: %v", err)
	}

	// 6. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   目录首页: GET http://localhost%s/api/v1/\n", addr)
	if cfg.Metrics.Enabled {
		fmt.Printf("   监控指标: http://localhost%s%s\n", addr, cfg.Metrics.Path)
	}
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("启动服务失败", "error", err)
		}
	case <-ctx.Done():
		slog.Info("收到退出信号，正在关闭服务")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("关闭服务失败", "error", err)
	}
}
