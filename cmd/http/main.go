package main

import (
	"careplan-service/internal/app/config"
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/app/delivery/http/controllers"
	"careplan-service/internal/app/delivery/http/middlewares"
	"careplan-service/internal/app/delivery/http/routers"
	"careplan-service/internal/app/drivers/database"
	"careplan-service/internal/app/drivers/logger"
	"careplan-service/internal/app/drivers/messaging"
	miniodriver "careplan-service/internal/app/drivers/storage"
	"careplan-service/internal/app/services/core/careplans"
	"careplan-service/internal/app/services/core/generation"
	"careplan-service/internal/app/services/core/orders"
	"careplan-service/internal/app/services/core/patients"
	"careplan-service/internal/app/services/core/providers"
	"careplan-service/internal/app/services/core/validation"
	"careplan-service/internal/app/services/shared/genai"
	"careplan-service/internal/app/services/shared/jobqueue"
	"careplan-service/internal/app/services/shared/locker"
	"careplan-service/internal/app/services/shared/ratelimiter"
	redisrepo "careplan-service/internal/app/services/shared/redis"
	"careplan-service/internal/app/services/shared/storage"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	logger.InitLogger(internalConfig)
	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	defer zapLogger.Sync()

	mongoClient := database.NewMongoDB(driverConfig)
	if err := database.EnsureIndexes(context.Background(), mongoClient, driverConfig.MongoDB.DbName); err != nil {
		logrus.Fatalf("Failed to ensure mongo indexes: %s", err.Error())
	}
	redisClient := database.NewRedisClient(driverConfig)
	rabbitConn := messaging.NewRabbitMQ(driverConfig)
	minioClient := miniodriver.NewMinio(driverConfig)

	redisRepository := redisrepo.NewRedisRepository(redisClient)
	lockService := locker.NewLockService(redisRepository, zapLogger)

	providerRepository := providers.NewProviderMongoRepository(mongoClient, driverConfig.MongoDB.DbName)
	patientRepository := patients.NewPatientMongoRepository(mongoClient, driverConfig.MongoDB.DbName)
	orderRepository := orders.NewOrderMongoRepository(mongoClient, driverConfig.MongoDB.DbName)
	jobRepository := careplans.NewCarePlanJobMongoRepository(mongoClient, driverConfig.MongoDB.DbName)

	queueService, err := jobqueue.NewService(rabbitConn, zapLogger, internalConfig.Worker.Prefetch)
	if err != nil {
		logrus.Fatalf("Failed to set up job queue: %s", err.Error())
	}

	engine := validation.NewEngine(providerRepository, patientRepository, orderRepository, zapLogger)
	limiter := ratelimiter.NewSubmissionLimiter(
		redisRepository,
		zapLogger,
		internalConfig.CarePlan.SubmissionsPerMinute,
		internalConfig.CarePlan.SubmissionsPerDay,
	)

	carePlanUsecase := careplans.NewCarePlanUsecase(
		engine,
		limiter,
		providerRepository,
		patientRepository,
		orderRepository,
		jobRepository,
		queueService,
		internalConfig.CarePlan,
		zapLogger,
	)

	generationClient := newGenerationClient(internalConfig, zapLogger)
	artifactStorage := storage.NewMinioStorage(minioClient, driverConfig.Minio.BucketName, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := generation.NewWorker(queueService, jobRepository, generationClient, artifactStorage, internalConfig.Worker, zapLogger)
	go func() {
		if err := worker.Start(ctx); err != nil {
			zapLogger.Error("generation worker stopped", zap.Error(err))
		}
	}()

	sweep := generation.NewSweep(jobRepository, queueService, lockService, internalConfig.Worker, zapLogger)
	go sweep.Start(ctx)

	chiRouter := chi.NewRouter()
	mws := middlewares.NewMiddlewares(zapLogger, internalConfig)
	carePlanController := controllers.NewCarePlanController(zapLogger, carePlanUsecase)
	routers.SetupRoutes(chiRouter, internalConfig, mws, carePlanController)

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		logrus.Infof("HTTP server listening on %s", internalConfig.App.Port)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed to start: %s", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server")
	sweep.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(internalConfig.App.ShutdownTimeoutInSeconds)*time.Second,
	)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %s", err.Error())
	}
	_ = rabbitConn.Close()
	_ = mongoClient.Disconnect(shutdownCtx)
	logrus.Info("Server exited")
}

func newGenerationClient(internalConfig *config.InternalConfig, zapLogger *zap.Logger) contracts.GenerationClient {
	if internalConfig.Generation.UseMock {
		zapLogger.Warn("generation client running in mock mode")
		return genai.NewMockClient()
	}
	return genai.NewClient(internalConfig.Generation, zapLogger)
}
