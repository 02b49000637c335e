package bootstrap

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/config"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/model"
	gcsClient "github.com/fsgmhh-Ray/ai-agent-dashboard/internal/platform/gcs"
	mysqlClient "github.com/fsgmhh-Ray/ai-agent-dashboard/internal/platform/mysql"
	rabbitmqClient "github.com/fsgmhh-Ray/ai-agent-dashboard/internal/platform/rabbitmq"
	redisClient "github.com/fsgmhh-Ray/ai-agent-dashboard/internal/platform/redis"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/repository"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/worker"
)

// App holds the long-lived collaborators created once at process start and
// passed explicitly into every component that needs them.
type App struct {
	Config      *config.Config
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	Storage     *storage.Client
	AuditWorker *worker.GenerationAuditWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Document{}, &model.GenerationRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	storageCli, err := gcsClient.New(ctx)
	if err != nil {
		return nil, err
	}

	recordRepo := repository.NewGenerationRecordRepository(mysqlDB)
	auditWorker := worker.NewGenerationAuditWorker(mqConn, recordRepo, cfg.RabbitMQ.GenerationAuditQueue)
	if err := auditWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start audit worker failed: %w", err)
	}

	return &App{
		Config:      cfg,
		MySQL:       mysqlDB,
		Redis:       redisCli,
		MQConn:      mqConn,
		Storage:     storageCli,
		AuditWorker: auditWorker,
		StartedAt:   time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.AuditWorker != nil {
		a.AuditWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
