package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"warehouse-service/config"
	"warehouse-service/internal/api"
	"warehouse-service/internal/broker"
	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/resolver"
	"warehouse-service/internal/scanner"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"
	"warehouse-service/internal/workflow"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting warehouse service")

	tp, err := util.InitTracer("warehouse-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	st := store.NewStore()
	if err := st.Seed(); err != nil {
		log.Fatalf("Failed to seed store: %v", err)
	}
	log.Println("Store seeded with demo data")

	var redisClient *redisclient.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	var eventPublisher *broker.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		eventPublisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")
	}

	// Decoded payloads come from handheld devices through the API, so the
	// camera behind every scan session is the fed gateway.
	camera := scanner.NewGateway()

	sessionManager := workflow.NewManager(
		st,
		resolver.New(),
		camera,
		eventPublisher,
		redisClient,
		cfg.Scanner.SessionTTL,
	)

	managerCtx, managerCancel := context.WithCancel(context.Background())
	defer managerCancel()
	go sessionManager.Run(managerCtx)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(st, sessionManager, eventPublisher)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	managerCancel()

	log.Println("Server exited")
}
