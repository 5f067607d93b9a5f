package service

import (
	"context"
	"database/sql"
	"fmt"

	"surgemind-dispatch/internal/classifier"
	"surgemind-dispatch/internal/config"
	"surgemind-dispatch/internal/dedup"
	"surgemind-dispatch/internal/engine"
	"surgemind-dispatch/internal/enrichment"
	"surgemind-dispatch/internal/ranker"
	"surgemind-dispatch/internal/repository"
	"surgemind-dispatch/internal/source"
	"surgemind-dispatch/internal/synthesizer"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DispatchService 调度服务（整合各层）
type DispatchService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *source.MQTTClient
	logger      *zap.Logger
	tenantID    string

	// 各层组件
	rosterRepo  *repository.RosterRepository
	tasksRepo   *repository.TasksRepository
	eventSource *source.MQTTSource
	engine      *engine.Engine
}

// NewDispatchService 创建调度服务
func NewDispatchService(cfg *config.Config, logger *zap.Logger, tenantID string) (*DispatchService, error) {
	// 1. 连接数据库
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试数据库连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 2. 连接 Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试 Redis 连接
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 3. 连接 MQTT（事件源）
	mqttClient, err := source.NewMQTTClient(&cfg.MQTT, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mqtt: %w", err)
	}

	// 4. 创建 Repository 层
	rosterRepo := repository.NewRosterRepository(db, logger)
	tasksRepo := repository.NewTasksRepository(db, logger)

	// 5. 文案增强（未配置 API Key 时禁用，走确定性文案）
	var provider enrichment.Provider
	if cfg.Dispatch.Enrichment.Enabled {
		provider = enrichment.NewOpenRouterClient(
			cfg.Dispatch.Enrichment.BaseURL,
			cfg.Dispatch.Enrichment.APIKey,
			cfg.Dispatch.Enrichment.Model,
			cfg.Dispatch.Enrichment.Timeout,
			logger,
		)
	}
	syn := synthesizer.NewSynthesizer(provider, cfg.Dispatch.Enrichment.Timeout, logger)

	// 6. 创建事件源和引擎
	eventSource := source.NewMQTTSource(cfg, mqttClient, logger)
	eng := engine.NewEngine(
		cfg,
		classifier.NewClassifier(logger),
		dedup.NewRedisWindow(cfg, redisClient, logger),
		ranker.NewWorkloadRanker(),
		syn,
		rosterRepo,
		tasksRepo,
		engine.NewLogReporter(logger),
		logger,
		tenantID,
	)

	return &DispatchService{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		mqttClient:  mqttClient,
		logger:      logger,
		tenantID:    tenantID,
		rosterRepo:  rosterRepo,
		tasksRepo:   tasksRepo,
		eventSource: eventSource,
		engine:      eng,
	}, nil
}

// Start 启动服务（阻塞直到上下文取消）
func (s *DispatchService) Start(ctx context.Context) error {
	s.logger.Info("Starting dispatch service",
		zap.String("tenant_id", s.tenantID),
	)

	sourceErrChan := make(chan error, 1)
	go func() {
		if err := s.eventSource.Start(ctx); err != nil {
			sourceErrChan <- err
		}
	}()

	engineErrChan := make(chan error, 1)
	go func() {
		engineErrChan <- s.engine.Run(ctx, s.eventSource.Events())
	}()

	select {
	case err := <-sourceErrChan:
		return fmt.Errorf("event source failed: %w", err)
	case err := <-engineErrChan:
		return err
	}
}

// Stop 停止服务
func (s *DispatchService) Stop() error {
	s.logger.Info("Stopping dispatch service")

	if err := s.eventSource.Stop(context.Background()); err != nil {
		s.logger.Error("Failed to stop event source",
			zap.Error(err),
		)
	}
	s.mqttClient.Disconnect()

	// 关闭数据库连接
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}

	// 关闭 Redis 连接
	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}

	return nil
}
