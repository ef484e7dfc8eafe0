package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "unsend_service/docs"
	"unsend_service/internal/deletion/api/handlers"
	"unsend_service/internal/deletion/app"
	"unsend_service/internal/deletion/repository"
	"unsend_service/internal/deletion/router"
	"unsend_service/pkg/config"
	"unsend_service/pkg/database"
	errprocess "unsend_service/pkg/err"
	"unsend_service/pkg/logger"
	testtool "unsend_service/pkg/test_tool"
	"unsend_service/pkg/token"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.DeletionService, config.EnvConfig.DeletionServiceLogPath)
	defer logger.Log.Sync()
	cfg := config.LoadConfig[config.Deletion](config.EnvConfig.DeletionService, config.EnvConfig.DeletionServiceYAMLPath)
	if config.EnvConfig.DeletionServicePort != "" {
		cfg.Port = config.EnvConfig.DeletionServicePort
	}
	token.SetSecret(cfg.JWT.Secret)
	testtool.StartPprof()

	ctx := context.Background()

	// 1. Mongo (訊息)
	uri := database.MongoURI(cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval),
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal("Unable to connect to mongoDB database after retries", zap.String("host", cfg.MongoSQL.Host), zap.Error(err))
	}
	defer mongo.Close(ctx)
	if err := repository.EnsureMessageIndexes(ctx, mongo.Database); err != nil {
		logger.Log.Fatal("create message indexes", zap.Error(err))
	}

	// 2. PostgreSQL (對話)
	pool, err := database.NewDatabaseConnection(ctx, database.Connection{
		ConnectStr:    database.PostgresDSN(cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database),
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgres after retries", zap.String("host", cfg.PostgreSQL.Host), zap.Error(err))
	}
	defer pool.Close()
	if err := repository.Migrate(ctx, pool); err != nil {
		logger.Log.Fatal("migrate conversations", zap.Error(err))
	}

	// 3. Redis (swarm + pub/sub)
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = database.NewRedisStandaloneClient(cfg.Redis.Addr, cfg.Redis.RedisDB)
	} else {
		masterName, sentinel := config.GetRedisSetting()
		redisClient, err = database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	}
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	defer redisClient.Close()

	// 4. 外送佇列
	publisher, err := newPublisher(cfg.Queue)
	if err != nil {
		logger.Log.Fatal("connect message queue", zap.String("driver", cfg.Queue.Driver), zap.Error(err))
	}
	defer publisher.Close()

	// 5. MinIO (附件)
	var attachments repository.AttachmentRepository
	if cfg.MinIO.Endpoint != "" {
		minioClient, err := database.NewMinIOConnection(ctx, database.MinIOConnection{
			Endpoint:      cfg.MinIO.Endpoint,
			User:          cfg.MinIO.User,
			Password:      cfg.MinIO.Password,
			BucketName:    cfg.MinIO.Bucket,
			UseSSL:        cfg.MinIO.UseSSL,
			RetryCount:    cfg.MinIO.RetryCount,
			RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal("connect minio", zap.String("endpoint", cfg.MinIO.Endpoint), zap.Error(err))
		}
		attachments = repository.NewMinIOAttachmentRepository(minioClient)
	}

	// 6. Repository
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	convoRepo := repository.NewConversationRepository(pool)
	clock := app.NewNetworkTime()
	swarmRepo := repository.NewRedisSwarmRepository(redisClient, cfg.Redis.SwarmTTL, clock)
	pubsub := repository.NewRedisPubSub(redisClient)
	outbox := repository.NewOutbox(publisher, swarmRepo, cfg.AccountID)
	community := repository.NewHTTPCommunityClient(cfg.Community.Timeout, cfg.Community.RatePerSecond, cfg.Community.Burst)

	// 7. UseCase
	local := app.NewLocalDeleter(msgRepo, convoRepo, attachments)
	deletionUC := app.NewDeletionUseCase(
		convoRepo,
		msgRepo,
		local,
		app.NewSwarmDeleter(swarmRepo, local),
		app.NewUnsender(outbox, clock, cfg.Queue.MaxConcurrency),
		community,
		app.NewPubSubNotifier(pubsub),
		cfg.Community.MaxConcurrency,
	)

	// 8. Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.DeletionServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r,
		handlers.NewDeletionHandler(deletionUC, cfg.AccountID),
		app.NewDeletionWebsocketHandler(deletionUC, pubsub),
	)

	port := ":" + cfg.Port
	logger.Log.Info("Deletion Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}

// newPublisher kafka 或 rabbitmq
func newPublisher(q config.QueueConfig) (repository.Publisher, error) {
	switch q.Driver {
	case "rabbitmq":
		conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
			ConnectStr:    q.RabbitURL,
			RetryCount:    q.RetryCount,
			RetryInterval: time.Duration(q.RetryInterval),
		})
		if err != nil {
			return nil, err
		}
		ch, err := database.OpenRabbitMQExchange(conn, q.Exchange)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return repository.NewRabbitPublisher(ch, q.Exchange), nil
	case "kafka", "":
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       q.Brokers,
			Topic:         q.Topic,
			RetryCount:    q.RetryCount,
			RetryInterval: time.Duration(q.RetryInterval),
		})
		if err != nil {
			return nil, err
		}
		return repository.NewKafkaPublisher(writer), nil
	default:
		return nil, errprocess.Set(fmt.Sprintf("unknown queue driver %q", q.Driver))
	}
}
