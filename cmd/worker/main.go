package main

import (
	"careplan-service/internal/app/config"
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/app/drivers/database"
	"careplan-service/internal/app/drivers/logger"
	"careplan-service/internal/app/drivers/messaging"
	miniodriver "careplan-service/internal/app/drivers/storage"
	"careplan-service/internal/app/services/core/careplans"
	"careplan-service/internal/app/services/core/generation"
	"careplan-service/internal/app/services/shared/genai"
	"careplan-service/internal/app/services/shared/jobqueue"
	"careplan-service/internal/app/services/shared/locker"
	redisrepo "careplan-service/internal/app/services/shared/redis"
	"careplan-service/internal/app/services/shared/storage"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// Standalone generation worker. Runs the consumer pool and the pending sweep
// without the HTTP surface, so generation capacity scales independently of
// the admission path.
func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	logger.InitLogger(internalConfig)
	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	defer zapLogger.Sync()

	mongoClient := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitConn := messaging.NewRabbitMQ(driverConfig)
	minioClient := miniodriver.NewMinio(driverConfig)

	redisRepository := redisrepo.NewRedisRepository(redisClient)
	lockService := locker.NewLockService(redisRepository, zapLogger)
	jobRepository := careplans.NewCarePlanJobMongoRepository(mongoClient, driverConfig.MongoDB.DbName)

	queueService, err := jobqueue.NewService(rabbitConn, zapLogger, internalConfig.Worker.Prefetch)
	if err != nil {
		logrus.Fatalf("Failed to set up job queue: %s", err.Error())
	}

	var generationClient contracts.GenerationClient
	if internalConfig.Generation.UseMock {
		zapLogger.Warn("generation client running in mock mode")
		generationClient = genai.NewMockClient()
	} else {
		generationClient = genai.NewClient(internalConfig.Generation, zapLogger)
	}
	artifactStorage := storage.NewMinioStorage(minioClient, driverConfig.Minio.BucketName, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweep := generation.NewSweep(jobRepository, queueService, lockService, internalConfig.Worker, zapLogger)
	go sweep.Start(ctx)

	worker := generation.NewWorker(queueService, jobRepository, generationClient, artifactStorage, internalConfig.Worker, zapLogger)
	go func() {
		if err := worker.Start(ctx); err != nil {
			zapLogger.Error("generation worker stopped", zap.Error(err))
		}
	}()

	logrus.Infof("Generation worker started with pool size %d", internalConfig.Worker.PoolSize)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down worker")
	sweep.Stop()
	cancel()
	_ = rabbitConn.Close()
	_ = mongoClient.Disconnect(context.Background())
	logrus.Info("Worker exited")
}
