package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	schedulingv1 "github.com/masterries/AppointmentManager/internal/api/schedulingv1"
	"github.com/masterries/AppointmentManager/internal/config"
	"github.com/masterries/AppointmentManager/internal/identity"
	"github.com/masterries/AppointmentManager/internal/notify"
	"github.com/masterries/AppointmentManager/internal/ratelimit"
	"github.com/masterries/AppointmentManager/internal/service/booking"
	"github.com/masterries/AppointmentManager/internal/store"
	"github.com/masterries/AppointmentManager/internal/store/memory"
	"github.com/masterries/AppointmentManager/internal/store/postgres"
	"github.com/masterries/AppointmentManager/internal/telemetry"
	grpcTransport "github.com/masterries/AppointmentManager/internal/transport/grpc"
)

const serviceName = "salon-scheduler"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	if err := run(log, cfg); err != nil {
		log.Error("server exited with error", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info(
		"starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("timezone", cfg.Location.String()),
		slog.String("log_level", cfg.LogLevel),
	)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTelEnabled,
		ServiceName: serviceName,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("trace flush failed", slog.Any("err", err))
		}
	}()

	repo, closeStore, err := openStore(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sender, err := newSender(log, cfg)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(sender, log, notify.DispatcherConfig{
		QueueSize:   cfg.NotifyQueueSize,
		Workers:     cfg.NotifyWorkers,
		SendTimeout: cfg.NotifySendTimeout,
	})
	dispatcher.Start()
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := dispatcher.Close(drainCtx); err != nil {
			log.Warn("notification drain incomplete", slog.Any("err", err), slog.Int64("dropped", dispatcher.Dropped()))
		}
		if c, ok := sender.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Warn("notification sender close failed", slog.Any("err", err))
			}
		}
	}()

	svc := booking.NewService(repo, booking.Options{
		Location:    cfg.Location,
		Granularity: cfg.BookingGranularity,
		Publisher:   dispatcher,
		Log:         log,
	})
	sweeper := booking.NewSweeper(svc, booking.SweeperConfig{Interval: cfg.SweepInterval})

	provider, err := identity.NewJWTProvider(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return err
	}

	limiter, closeLimiter := newLimiter(ctx, log, cfg)
	defer closeLimiter()

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcTransport.RequestIDInterceptor(),
			grpcTransport.TimeoutInterceptor(cfg.GRPCRequestTimeout),
			grpcTransport.AuthInterceptor(provider, log),
			grpcTransport.RateLimitInterceptor(limiter, log),
		),
	)
	schedulingv1.RegisterBookingServiceServer(grpcServer, grpcTransport.NewBookingServer(svc, log))
	schedulingv1.RegisterCatalogServiceServer(grpcServer, grpcTransport.NewCatalogServer(svc, log))

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sweeper.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")
		shutdown(log, grpcServer, cfg.ShutdownTimeout)
		return nil
	})
	return g.Wait()
}

func openStore(ctx context.Context, log *slog.Logger, cfg config.Config) (store.Repository, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store; data is lost on restart")
		return memory.New(memory.WithLockTimeout(cfg.LockTimeout)), func() {}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.OpenOptions{
		Pool: postgres.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		},
		SlowQuery: 250 * time.Millisecond,
		Log:       log,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return nil, nil, err
	}
	closeDB := func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}
	return postgres.NewRepo(db, cfg.LockTimeout), closeDB, nil
}

func newSender(log *slog.Logger, cfg config.Config) (notify.Sender, error) {
	brokers := notify.SplitBrokers(cfg.KafkaBrokers)
	if len(brokers) == 0 {
		log.Info("no kafka brokers configured; booking events go to the log")
		return notify.NewLogSender(log), nil
	}
	log.Info("publishing booking events to kafka", slog.Any("brokers", brokers), slog.String("topic", cfg.KafkaTopic))
	ks, err := notify.NewKafkaSender(notify.KafkaConfig{
		Brokers:      brokers,
		Topic:        cfg.KafkaTopic,
		WriteTimeout: cfg.NotifySendTimeout,
	})
	if err != nil {
		return nil, err
	}
	return ks, nil
}

// newLimiter prefers Redis so every instance shares one budget, and falls
// back to a per-process limiter when Redis is absent or unreachable.
func newLimiter(ctx context.Context, log *slog.Logger, cfg config.Config) (ratelimit.Limiter, func()) {
	local := func() (ratelimit.Limiter, func()) {
		return ratelimit.NewLocalLimiter(cfg.RateLimit, cfg.RateLimitWindow), func() {}
	}
	if cfg.RedisAddr == "" {
		return local()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable; using local rate limiter", slog.Any("err", err), slog.String("redis_addr", cfg.RedisAddr))
		_ = rdb.Close()
		return local()
	}
	closeRedis := func() {
		if err := rdb.Close(); err != nil {
			log.Warn("redis close failed", slog.Any("err", err))
		}
	}
	return ratelimit.NewRedisLimiter(rdb, cfg.RateLimit, cfg.RateLimitWindow, "salon:rl"), closeRedis
}

func shutdown(log *slog.Logger, s *grpc.Server, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-timer.C:
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	host, port, name := u.Hostname(), u.Port(), strings.TrimPrefix(u.Path, "/")
	if host == "" {
		host = "unknown"
	}
	if port == "" {
		port = "default"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
