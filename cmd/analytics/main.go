package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/optionanalytics/internal/analytics/application"
	"github.com/wyfcoding/optionanalytics/internal/analytics/domain"
	"github.com/wyfcoding/optionanalytics/internal/analytics/infrastructure/messaging"
	"github.com/wyfcoding/optionanalytics/internal/analytics/infrastructure/persistence/mysql"
	httphandler "github.com/wyfcoding/optionanalytics/internal/analytics/interfaces/http"
	"github.com/wyfcoding/optionanalytics/pkg/cache"
	"github.com/wyfcoding/optionanalytics/pkg/config"
	"github.com/wyfcoding/optionanalytics/pkg/db"
	"github.com/wyfcoding/optionanalytics/pkg/logger"
	"github.com/wyfcoding/optionanalytics/pkg/metrics"
	"github.com/wyfcoding/optionanalytics/pkg/middleware"
	"github.com/wyfcoding/optionanalytics/pkg/mq"
	"github.com/wyfcoding/optionanalytics/pkg/ratelimit"
)

func main() {
	configPath := flag.String("config", "configs/analytics/config.toml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()

	// 3. 初始化指标
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Error(ctx, "failed to register metrics", "error", err)
		os.Exit(1)
	}
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	// 4. 初始化定价历史持久化（可选）
	var repo domain.EvaluationRepository
	var database *db.DB
	if cfg.Database.Enabled {
		database, err = db.Init(db.Config{
			Driver:             cfg.Database.Driver,
			DSN:                cfg.Database.DSN,
			MaxOpenConns:       cfg.Database.MaxOpenConns,
			MaxIdleConns:       cfg.Database.MaxIdleConns,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			LogEnabled:         cfg.Database.LogEnabled,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		})
		if err != nil {
			logger.Error(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := database.AutoMigrate(&mysql.EvaluationModel{}); err != nil {
			logger.Error(ctx, "failed to migrate database", "error", err)
			os.Exit(1)
		}
		repo = mysql.NewEvaluationRepository(database.DB)
	}

	// 5. 初始化事件发布（可选）
	var publisher domain.EventPublisher
	var producer *mq.KafkaProducer
	if cfg.Kafka.Enabled {
		producer, err = mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Error(ctx, "failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		publisher = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
	}

	// 6. 初始化 Redis（结果缓存与限流，可选）
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Error(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
	}

	// 7. 依赖注入
	engine := domain.NewEngineWithEpsilon(cfg.Engine.ExpiryEpsilon)
	appService := application.NewAnalyticsService(engine, repo, publisher, m)
	if redisCache != nil {
		appService = appService.WithCache(redisCache, time.Duration(cfg.Redis.CacheTTL)*time.Second)
	}
	handler := httphandler.NewAnalyticsHandler(appService)

	// 8. 启动 HTTP 服务
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinMetricsMiddleware(m),
		middleware.GinCORSMiddleware(),
	)
	if cfg.RateLimit.Enabled && redisCache != nil {
		limiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		router.Use(middleware.GinRateLimitMiddleware(limiter, ratelimit.PerMinute(cfg.RateLimit.PerMinute)))
	}
	handler.RegisterRoutes(router)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", server.Addr, "service", cfg.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "failed to serve", "error", err)
			os.Exit(1)
		}
	}()

	// 9. 优雅关停
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server shutdown failed", "error", err)
	}
	if producer != nil {
		_ = producer.Close()
	}
	if database != nil {
		_ = database.Close()
	}
	if redisCache != nil {
		_ = redisCache.Close()
	}
	logger.Info(ctx, "server stopped")
}
