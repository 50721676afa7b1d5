package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shaiso/Fastgraph/internal/api"
	"github.com/shaiso/Fastgraph/internal/artifact"
	"github.com/shaiso/Fastgraph/internal/chat"
	"github.com/shaiso/Fastgraph/internal/llm"
	"github.com/shaiso/Fastgraph/internal/memstore"
	"github.com/shaiso/Fastgraph/internal/mq"
	"github.com/shaiso/Fastgraph/internal/repo"
	"github.com/shaiso/Fastgraph/internal/stream"
	"github.com/shaiso/Fastgraph/internal/taskqueue"
	"github.com/shaiso/Fastgraph/internal/telemetry"
	"github.com/shaiso/Fastgraph/internal/workflow"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fastgraph_api_http_requests_total",
		Help: "Total HTTP requests handled by fastgraph_api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting fastgraph-api")

	// Контекст жизни процесса: его отмена видна активным runs.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Хранилища: Postgres при заданном DB_URL, иначе in-memory.
	var (
		runStore        workflow.RunStore
		checkpointStore workflow.CheckpointStore
		messageStore    chat.MessageStore
	)

	if os.Getenv("DB_URL") != "" {
		pool, err := repo.NewPool(rootCtx)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := repo.EnsureSchema(rootCtx, pool); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to database")

		runStore = repo.NewRunRepo(pool)
		checkpointStore = repo.NewCheckpointRepo(pool)
		messageStore = repo.NewChatRepo(pool)
	} else {
		logger.Info("DB_URL not set, using in-memory stores")
		runStore = memstore.NewRunStore()
		checkpointStore = memstore.NewCheckpointStore()
		messageStore = memstore.NewMessageStore()
	}

	// Файловое хранилище артефактов
	artifacts, err := artifact.NewStore(artifact.Config{
		Dir: os.Getenv("ARTIFACT_DIR"),
	})
	if err != nil {
		logger.Error("failed to init artifact store", "error", err)
		os.Exit(1)
	}

	// Опциональный publisher терминальных событий в RabbitMQ
	var notifier workflow.Notifier
	if mqURL := os.Getenv("MQ_URL"); mqURL != "" {
		conn, err := mq.NewConnection(mqURL, logger)
		if err != nil {
			logger.Error("failed to connect to message queue", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		publisher, err := mq.NewPublisher(conn, logger)
		if err != nil {
			logger.Error("failed to init publisher", "error", err)
			os.Exit(1)
		}
		notifier = publisher
		logger.Info("connected to message queue")
	}

	hub := stream.NewHub(stream.Config{Logger: logger})
	queue := taskqueue.New(taskqueue.Config{
		BaseContext: rootCtx,
		Logger:      logger,
	})

	workflowSvc := workflow.NewService(workflow.Config{
		Runs:        runStore,
		Checkpoints: checkpointStore,
		Artifacts:   artifacts,
		Hub:         hub,
		Queue:       queue,
		Notifier:    notifier,
		BaseContext: rootCtx,
		Logger:      logger,
	})

	chatSvc := chat.NewService(chat.Config{
		Messages: messageStore,
		Hub:      hub,
		Queue:    queue,
		Streamer: &llm.Mock{},
		Logger:   logger,
	})

	handler := api.NewHandler(api.Config{
		Workflow:  workflowSvc,
		Chat:      chatSvc,
		Artifacts: artifacts,
		Hub:       hub,
		Logger:    logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Отменяем активные runs и дожидаемся, пока worker-цикл их финализирует.
	rootCancel()
	queue.Wait()

	logger.Info("stopped")
}
