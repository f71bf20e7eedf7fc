package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/campus-canteen/internal/adapter/handler"
	"github.com/rl1809/campus-canteen/internal/adapter/messaging"
	"github.com/rl1809/campus-canteen/internal/adapter/storage"
	"github.com/rl1809/campus-canteen/internal/config"
	"github.com/rl1809/campus-canteen/internal/logging"
	"github.com/rl1809/campus-canteen/internal/core/service"
	"github.com/rl1809/campus-canteen/internal/port"
	"github.com/rl1809/campus-canteen/internal/tracing"
)

const tracerName = "campus-canteen"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OtelEndpoint, cfg.OtelServiceName)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}
	if cfg.OtelEndpoint != "" {
		logger.Info("exporting traces", zap.String("endpoint", cfg.OtelEndpoint))
	}

	// Journal sinks are optional; without any the store discards events.
	var (
		journal *service.Journal
		closers []func() error
	)
	if cfg.JournalEnabled() {
		sinks, c, err := openSinks(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("failed to open journal sinks", zap.Error(err))
		}
		closers = c

		journal = service.NewJournal(cfg.JournalQueueSize, logger.Named("journal"))
		journal.Start(cfg.JournalWorkers, service.FanoutSink(sinks))
	}

	var publisher port.EventPublisher
	if journal != nil {
		publisher = journal
	}

	store := storage.NewMemoryStore(cfg.StartingBalance, cfg.DefaultStock, publisher)

	dispatcher := service.NewDispatcher(store, logger,
		service.Logging(logger.Named("dispatcher")),
		service.Tracing(otel.Tracer(tracerName)),
	)
	logger.Info("dispatcher ready", zap.Strings("commands", dispatcher.Commands()))

	// gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterDispatcherServer(grpcServer, handler.NewGRPCHandler(dispatcher))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP server
	router := handler.NewRouter(handler.NewHTTPHandler(dispatcher), logger.Named("http"))
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	if journal != nil {
		journal.Close()
		logger.Info("journal drained", zap.Int64("dropped", journal.Dropped()))
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Warn("close connection", zap.Error(err))
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
	logger.Info("connections closed")
}

// openSinks connects every configured journal backend.
func openSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]port.EventSink, []func() error, error) {
	var (
		sinks   []port.EventSink
		closers []func() error
	)
	fail := func(err error) ([]port.EventSink, []func() error, error) {
		for _, closeFn := range closers {
			_ = closeFn()
		}
		return nil, nil, err
	}

	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return fail(err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		closers = append(closers, db.Close)

		if err := db.PingContext(ctx); err != nil {
			return fail(err)
		}
		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
			return fail(err)
		}
		sinks = append(sinks, mysqlAdapter)
		logger.Info("connected to mysql")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		closers = append(closers, rdb.Close)

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fail(err)
		}
		sinks = append(sinks, storage.NewRedisAdapter(rdb))
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafkaAdapter := messaging.NewKafkaAdapter(messaging.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		closers = append(closers, kafkaAdapter.Close)
		sinks = append(sinks, kafkaAdapter)
		logger.Info("kafka writer ready",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	return sinks, closers, nil
}
