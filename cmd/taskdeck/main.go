package main

import (
	"context"
	"database/sql"

	categoryApp "github.com/mroldan/taskdeck/internal/category/application"
	categoryDomain "github.com/mroldan/taskdeck/internal/category/domain"
	categoryHttp "github.com/mroldan/taskdeck/internal/category/infra/inbound/http"
	categoryRepo "github.com/mroldan/taskdeck/internal/category/infra/outbound/db/sqlite"
	config "github.com/mroldan/taskdeck/internal/config"
	sharedEvents "github.com/mroldan/taskdeck/internal/shared/domain/events"
	sharedOutboxPostgres "github.com/mroldan/taskdeck/internal/shared/infra/db/postgres"
	sharedOutboxSQLite "github.com/mroldan/taskdeck/internal/shared/infra/db/sqlite"
	infraEvents "github.com/mroldan/taskdeck/internal/shared/infra/events"
	"github.com/mroldan/taskdeck/internal/shared/infra/fixtures"
	sharedBus "github.com/mroldan/taskdeck/internal/shared/infra/platform/bus"
	sharedCache "github.com/mroldan/taskdeck/internal/shared/infra/platform/cache"
	infraRelayer "github.com/mroldan/taskdeck/internal/shared/infra/relayer"
	taskApp "github.com/mroldan/taskdeck/internal/task/application"
	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"
	taskEvents "github.com/mroldan/taskdeck/internal/task/infra/inbound/events"
	taskHttp "github.com/mroldan/taskdeck/internal/task/infra/inbound/http"
	taskAnalytics "github.com/mroldan/taskdeck/internal/task/infra/outbound/analytics/clickhouse"
	taskRepo "github.com/mroldan/taskdeck/internal/task/infra/outbound/db/sqlite"

	"github.com/mroldan/taskdeck/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "modernc.org/sqlite"
)

// ---------------- Main ----------------
func main() {
	logger.Init()          // inicializa zap
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	ctx := context.Background()
	cfg := config.LoadConfig()

	// ---------------- DB ----------------
	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		log.Fatal("failed to open SQLite", zap.Error(err))
	}
	defer db.Close()

	if err := taskRepo.InitSQLite(db); err != nil {
		log.Fatal("failed to initialize tasks schema", zap.Error(err))
	}
	if err := categoryRepo.InitSQLite(db); err != nil {
		log.Fatal("failed to initialize categories schema", zap.Error(err))
	}

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping SQLite", zap.Error(err))
	}

	taskRepoSQLite := taskRepo.NewTaskRepoSQLite(db)
	categoryRepoSQLite := categoryRepo.NewCategoryRepoSQLite(db)

	// ---------------- Analítica ----------------
	var analyticsRepo taskDomain.TaskAnalyticsRepository
	if cfg.UseClickHouse {
		chRepo, err := taskAnalytics.NewTaskAnalyticsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, analítica deshabilitada", zap.Error(err))
		} else if err := chRepo.InitSchema(); err != nil {
			log.Warn("⚠️ ClickHouse schema init failed, analítica deshabilitada", zap.Error(err))
		} else {
			analyticsRepo = chRepo
			log.Info("✅ ClickHouse conectado, analítica habilitada")
		}
	}

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		cacheInstance = sharedCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	} else {
		cacheInstance = sharedCache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// --------------- Servicios --------------
	taskService := taskApp.NewTaskService(taskRepoSQLite, analyticsRepo, cacheInstance, log)
	categoryService := categoryApp.NewCategoryService(categoryRepoSQLite, taskRepoSQLite, cacheInstance, log)

	// --------------- Fixtures ---------------
	if cfg.SeedDir != "" {
		seeder := fixtures.NewSeeder(taskService, categoryService, log)
		if err := seeder.Seed(ctx, cfg.SeedDir); err != nil {
			log.Warn("⚠️ Seeding failed", zap.Error(err))
		}
	}

	// ---------------- Events ---------------
	var eventTaskPublisher sharedBus.EventPublisher
	var eventCategoryPublisher sharedBus.EventPublisher

	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")

		taskWriter := kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   taskDomain.TaskTopic,
		})
		categoryWriter := kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   categoryDomain.CategoryTopic,
		})

		defer taskWriter.Close()
		defer categoryWriter.Close()

		eventTaskPublisher = infraEvents.NewKafkaPublisher(taskWriter, log)
		eventCategoryPublisher = infraEvents.NewKafkaPublisher(categoryWriter, log)

		taskConsumer := taskEvents.NewTaskConsumer(taskService, log)

		taskKafkaReader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    taskDomain.TaskTopic,
			GroupID:  "taskdeck-task-service",
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})
		defer taskKafkaReader.Close()

		taskConsumerAdapter := infraEvents.NewConsumerAdapter(taskKafkaReader, taskConsumer, log)
		taskConsumerAdapter.Start(ctx)

	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		inMemoryTaskBus := infraEvents.NewInMemoryEventBus(taskDomain.TaskTopic)
		inMemoryCategoryBus := infraEvents.NewInMemoryEventBus(categoryDomain.CategoryTopic)

		eventTaskPublisher = inMemoryTaskBus
		eventCategoryPublisher = inMemoryCategoryBus

		taskConsumer := taskEvents.NewTaskConsumer(taskService, log)
		taskEventsChannel := inMemoryTaskBus.Subscribe(10)

		log.Info("🎧 Iniciando listener en memoria para eventos de tarea")
		taskEvents.BackgroundConsumerChan(ctx, taskEventsChannel, taskConsumer)
	}

	// ------------ Outbox Worker ------------
	// Se podría ejecutar externamente
	eventRegistry := make(map[string]sharedEvents.EventMetadata)

	// Merge de los registros de cada dominio
	for k, v := range taskDomain.NewEventRegistry() {
		eventRegistry[k] = v
	}
	for k, v := range categoryDomain.NewEventRegistry() {
		eventRegistry[k] = v
	}

	if cfg.LocalDeployment {
		outboxRepoSQLite := sharedOutboxSQLite.NewOutboxRepoSQLite(db)
		outboxTaskWorker := infraRelayer.NewOutboxWorker(outboxRepoSQLite, eventTaskPublisher, eventRegistry, cfg.OutboxPeriod, cfg.OutboxLimit, log)
		outboxTaskWorker.Start(ctx)
		outboxCategoryWorker := infraRelayer.NewOutboxWorker(outboxRepoSQLite, eventCategoryPublisher, eventRegistry, cfg.OutboxPeriod, cfg.OutboxLimit, log)
		outboxCategoryWorker.Start(ctx)
	} else {
		pgDB, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to open Postgres", zap.Error(err))
		}
		defer pgDB.Close()

		outboxRepoPostgres := sharedOutboxPostgres.NewOutboxRepoPostgres(pgDB)
		outboxWorker := infraRelayer.NewOutboxWorker(outboxRepoPostgres, eventTaskPublisher, eventRegistry, cfg.OutboxPeriod, cfg.OutboxLimit, log)
		outboxWorker.Start(ctx)
	}

	// ---------------- HTTP ----------------
	taskHandler := taskHttp.NewTaskHandler(taskService)
	categoryHandler := categoryHttp.NewCategoryHandler(categoryService)
	router := gin.Default()
	taskHttp.RegisterTaskRoutes(router, taskHandler)
	categoryHttp.RegisterCategoryRoutes(router, categoryHandler)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
