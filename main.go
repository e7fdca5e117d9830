package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Xushengqwer/listing_service/docs" // 确保导入了 docs 包

	appConfig "github.com/Xushengqwer/listing_service/config"
	"github.com/Xushengqwer/listing_service/constant"
	"github.com/Xushengqwer/listing_service/controller"
	"github.com/Xushengqwer/listing_service/dependencies"
	"github.com/Xushengqwer/listing_service/mq/producer"
	"github.com/Xushengqwer/listing_service/repo/cache"
	"github.com/Xushengqwer/listing_service/repo/mysql"
	redisrepo "github.com/Xushengqwer/listing_service/repo/redis"
	"github.com/Xushengqwer/listing_service/router"
	"github.com/Xushengqwer/listing_service/service"
	"github.com/Xushengqwer/listing_service/tasks"

	sharedCore "github.com/Xushengqwer/go-common/core"
	sharedTracing "github.com/Xushengqwer/go-common/core/tracing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// @title           Listing Service API
// @version         1.0
// @description     社区二手集市帖子服务，提供帖子发布、浏览、搜索、信息流会话等功能。
// @termsOfService  http://swagger.io/terms/

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8083

// @schemes http https
func main() {
	// --- 配置和基础设置 ---
	var configFile string
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "Path to configuration file")
	flag.Parse()

	// 1. 加载配置
	var cfg appConfig.ListingConfig
	if err := sharedCore.LoadConfig(configFile, &cfg); err != nil {
		log.Fatalf("FATAL: 加载配置失败 (%s): %v", configFile, err)
	}

	// 打印最终生效的配置以供调试
	configBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Fatalf("无法序列化配置以进行打印: %v", err)
	}
	log.Printf("✅ 配置加载成功！最终生效的配置如下:\n%s\n", string(configBytes))

	// 2. 初始化 Logger
	logger, loggerErr := sharedCore.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		log.Fatalf("FATAL: 初始化 ZapLogger 失败: %v", loggerErr)
	}
	defer func() {
		logger.Info("正在同步日志...")
		if err := logger.Logger().Sync(); err != nil {
			log.Printf("WARN: ZapLogger Sync 失败: %v\n", err)
		}
	}()
	logger.Info("Logger 初始化成功")

	// 3. 初始化 TracerProvider
	var tracerShutdown func(context.Context) error
	if cfg.TracerConfig.Enabled {
		var err error
		tracerShutdown, err = sharedTracing.InitTracerProvider(
			constant.ServiceName,
			constant.ServiceVersion,
			cfg.TracerConfig,
		)
		if err != nil {
			logger.Fatal("初始化 TracerProvider 失败", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("正在关闭 TracerProvider...")
			if err := tracerShutdown(ctx); err != nil {
				logger.Error("关闭 TracerProvider 失败", zap.Error(err))
			} else {
				logger.Info("TracerProvider 已成功关闭")
			}
		}()
		logger.Info("分布式追踪已初始化")
		// 本服务目前没有出站的 HTTP 调用，仅初始化 Transport 备用。
		_ = otelhttp.NewTransport(http.DefaultTransport)
	} else {
		logger.Info("分布式追踪已禁用")
		tracerShutdown = func(ctx context.Context) error { return nil }
	}

	// --- 4. 初始化核心依赖 ---
	// 4.1 数据库 (MySQL)
	db, dbErr := dependencies.InitMySQL(&cfg, logger)
	if dbErr != nil {
		logger.Fatal("初始化 MySQL 数据库失败", zap.Error(dbErr))
	}
	logger.Info("MySQL 数据库连接成功")

	// 4.2 Redis
	rdb, redisErr := dependencies.InitRedis(&cfg.RedisConfig, logger)
	if redisErr != nil {
		logger.Fatal("初始化 Redis 失败", zap.Error(redisErr))
	}
	logger.Info("Redis 连接成功")

	// 4.3 COS 客户端
	cosClient, cosErr := dependencies.InitCOS(&cfg.COSConfig, logger)
	if cosErr != nil {
		logger.Fatal("初始化 COS 客户端失败", zap.Error(cosErr))
	}
	logger.Info("COS 客户端初始化成功")

	// 4.4 Kafka 生产者
	var kafkaProducer *producer.KafkaProducer
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer = producer.NewKafkaProducer(cfg.KafkaConfig, logger)
		logger.Info("Kafka 生产者已初始化")
	} else {
		logger.Warn("未配置 Kafka brokers，Kafka 生产者将为 nil")
	}

	// --- 5. 初始化数据仓库层 (Repositories) ---
	listingRepo := mysql.NewListingRepository(db, logger)
	categoryRepo := mysql.NewCategoryRepository(db, logger)
	listingBatchRepo := mysql.NewListingBatchRepository(db, logger, cfg.ViewSyncConfig)
	logger.Debug("MySQL Repositories 初始化完成")

	listingViewRepo := redisrepo.NewListingViewRepository(
		rdb,
		logger,
		constant.BloomFilterDefaultSize,
		constant.BloomFilterDefaultHashes,
		constant.BloomFilterDefaultErrorRate,
		cfg.ViewSyncConfig,
	)
	logger.Debug("Redis Repositories 初始化完成")

	// 5.1 帖子内存缓存 (TTL 可配置，缺省 5 分钟)
	cacheTTL := constant.ListingCacheTTL
	if cfg.ListingConfig.CacheTTLSeconds > 0 {
		cacheTTL = time.Duration(cfg.ListingConfig.CacheTTLSeconds) * time.Second
	}
	listingCache := cache.NewListingCache(cacheTTL, logger)
	logger.Debug("帖子内存缓存初始化完成", zap.Duration("ttl", cacheTTL))

	// --- 6. 初始化服务层 (Services) ---
	listingStore := service.NewListingStore(db, listingRepo, listingCache, cosClient, listingViewRepo, kafkaProducer, logger)
	listingService := service.NewListingService(db, listingRepo, categoryRepo, listingStore, cosClient, listingViewRepo, kafkaProducer, logger, cfg.ListingConfig)
	feedManager := service.NewFeedManager(listingService, cfg.FeedConfig, logger)
	logger.Debug("Services 初始化完成")

	// 6.1 启动时预热权威集合，失败不阻塞启动 (后续请求仍可直接回源)。
	{
		warmupCtx, warmupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := listingStore.Refresh(warmupCtx); err != nil {
			logger.Warn("启动时预热帖子集合失败，跳过", zap.Error(err))
		}
		warmupCancel()
	}

	// --- 7. 初始化控制器层 (Controllers) ---
	listingController := controller.NewListingController(listingService, listingStore)
	feedController := controller.NewFeedController(feedManager)
	logger.Debug("Controllers 初始化完成")

	// --- 8. 初始化定时任务 ---
	syncTask := tasks.NewViewCountSyncTask(listingViewRepo, listingBatchRepo, logger)
	janitorTask := tasks.NewFeedJanitorTask(feedManager, logger)
	logger.Info("后台定时任务已初始化并启动")

	// --- 9. 设置 Gin 路由器 ---
	ginRouter := router.SetupRouter(logger, &cfg, listingController, feedController)
	logger.Info("Gin 路由器已设置")

	// --- 10. 启动 HTTP 服务器 ---
	serverAddr := fmt.Sprintf(":%s", cfg.ServerConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: ginRouter,
	}

	go func() {
		logger.Info("HTTP 服务器开始监听", zap.String("address", serverAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
		logger.Info("HTTP 服务器已停止监听")
	}()

	// --- 11. 实现优雅关停 ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	logger.Info("收到关停信号，开始优雅退出...", zap.String("signal", receivedSignal.String()))

	shutdownCtx, shutdownCancelFunc := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancelFunc()

	// a. 停止 HTTP 服务器 (允许处理完当前请求)
	logger.Info("正在关闭 HTTP 服务器...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭 HTTP 服务器失败", zap.Error(err))
	} else {
		logger.Info("HTTP 服务器已成功关闭")
	}

	// b. 停止定时任务调度器 (等待任务结束)
	logger.Info("正在停止定时任务...")
	syncStopCtx := syncTask.Stop()
	janitorStopCtx := janitorTask.Stop()

	for _, stopCtx := range []context.Context{syncStopCtx, janitorStopCtx} {
		select {
		case <-stopCtx.Done():
		case <-shutdownCtx.Done():
			logger.Error("等待定时任务停止超时", zap.Error(shutdownCtx.Err()))
		}
	}
	logger.Info("所有定时任务已停止")

	// c. 关闭 Kafka 生产者
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Error("关闭 Kafka 生产者失败", zap.Error(err))
		} else {
			logger.Info("Kafka 生产者已关闭")
		}
	}

	// d. 关闭 Redis 连接
	if err := rdb.Close(); err != nil {
		logger.Error("关闭 Redis 连接失败", zap.Error(err))
	}

	logger.Info("服务已成功关闭")
}
