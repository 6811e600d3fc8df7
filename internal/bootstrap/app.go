package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"guestdesk/internal/config"
	"guestdesk/internal/model"
	mysqlClient "guestdesk/internal/platform/mysql"
	rabbitmqClient "guestdesk/internal/platform/rabbitmq"
	redisClient "guestdesk/internal/platform/redis"
	"guestdesk/internal/repository"
	"guestdesk/internal/worker"
)

type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	CuratedWorker *worker.CuratedPersistWorker

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
	if err := mysqlDB.AutoMigrate(
		&model.Tenant{},
		&model.Document{},
		&model.Chunk{},
		&model.Session{},
		&model.Message{},
		&model.CuratedMessage{},
	); err != nil {
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

	curatedRepo := repository.NewCuratedMessageRepository(mysqlDB)
	curatedWorker := worker.NewCuratedPersistWorker(mqConn, curatedRepo, cfg.RabbitMQ.CuratedPersistQueue)
	if err := curatedWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start curated worker failed: %w", err)
	}

	return &App{
		Config:        cfg,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		CuratedWorker: curatedWorker,
		StartedAt:     time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.CuratedWorker != nil {
		a.CuratedWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
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
