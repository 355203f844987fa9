package bootstrap

import (
	"context"
	"fmt"
	"log"

	"docsync-be/internal/config"
	"docsync-be/internal/controller"
	"docsync-be/internal/mapper"
	"docsync-be/internal/pkg/logger"
	"docsync-be/internal/repository/memory"
	"docsync-be/internal/repository/unitofwork"
	"docsync-be/internal/scheduler"
	"docsync-be/internal/search"
	"docsync-be/internal/service"
	"docsync-be/pkg/elasticsearch"
	pktNats "docsync-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const runLockKey = "docsync:run-lock"

type Container struct {
	Logger logger.ILogger

	// Controllers
	DocumentController controller.IDocumentController

	// Core
	Scheduler         *scheduler.DocumentScheduler
	ProcessingService service.IDocumentProcessingService
	Reader            search.IDocumentReader

	// Background Services (Exposed for main.go to run)
	ConsumerService    service.IConsumerService
	SyncRequestService service.ISyncRequestService

	db       *gorm.DB
	esClient *es.Client
	pubSub   *gochannel.GoChannel
	natsPub  *pktNats.Publisher
	natsSub  *pktNats.Subscriber
	rdb      *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production", cfg.App.LogLevel)

	esClient, err := elasticsearch.NewClient(elasticsearch.ClientConfig{
		URIs:     cfg.Elasticsearch.URIs,
		Username: cfg.Elasticsearch.Username,
		Password: cfg.Elasticsearch.Password,
		Timeout:  cfg.Elasticsearch.Timeout,
	})
	if err != nil {
		return nil, err
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS is optional: without it run events are not published and sync requests only arrive over HTTP.
	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	var eventPublisher service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		} else {
			eventPublisher = natsPub
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
			natsSub = nil
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// 3. Services
	lookupCache := memory.NewSourceDocumentCache(cfg.Scheduler.LookupTTL)
	reader := search.NewCachedDocumentReader(
		search.NewDocumentReader(esClient, cfg.Elasticsearch.Index, cfg.Elasticsearch.QuerySize, sysLogger),
		lookupCache,
	)

	writer, err := service.NewDocumentWriterService(context.Background(), uowFactory, cfg.Storage.WriteMode, sysLogger)
	if err != nil {
		return nil, err
	}
	processingService := service.NewDocumentProcessingService(
		reader,
		mapper.NewSearchDocumentMapper(),
		writer,
		sysLogger,
	)

	syncEventService := service.NewSyncEventService(eventPublisher, sysLogger)
	historyService := service.NewRunHistoryService(uowFactory, syncEventService, sysLogger)

	opts := []scheduler.Option{scheduler.WithDefaultRecentHours(cfg.Scheduler.RecentHours)}
	if cfg.Scheduler.LockEnabled {
		if rdb == nil {
			return nil, fmt.Errorf("scheduler lock enabled without a redis connection")
		}
		opts = append(opts, scheduler.WithRunLock(scheduler.NewRedisRunLock(rdb, runLockKey, cfg.Scheduler.LockTTL)))
	}
	documentScheduler := scheduler.NewDocumentScheduler(
		processingService,
		historyService,
		scheduler.NewRunState(),
		sysLogger,
		opts...,
	)

	publisherService := service.NewPublisherService(cfg.Scheduler.TriggerTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Scheduler.TriggerTopic,
		documentScheduler,
		sysLogger,
	)
	syncRequestService := service.NewSyncRequestService(
		natsSub,
		cfg.Scheduler.SyncDurable,
		publisherService,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		Logger: sysLogger,

		DocumentController: controller.NewDocumentController(
			processingService,
			historyService,
			publisherService,
			documentScheduler,
		),

		Scheduler:         documentScheduler,
		ProcessingService: processingService,
		Reader:            reader,

		ConsumerService:    consumerService,
		SyncRequestService: syncRequestService,

		db:       db,
		esClient: esClient,
		pubSub:   pubSub,
		natsPub:  natsPub,
		natsSub:  natsSub,
		rdb:      rdb,
	}, nil
}

// Ping checks the relational store and the search backend.
func (c *Container) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	res, err := c.esClient.Ping(c.esClient.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search backend unreachable: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search backend unhealthy: %s", res.Status())
	}
	return nil
}

// Close releases connections. Call after the scheduler has stopped.
func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}
