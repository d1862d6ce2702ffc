package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"

	"nutrition-scheduler/internal/auth"
	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/config"
	gweb "nutrition-scheduler/internal/grpcweb"
	"nutrition-scheduler/internal/handler"
	"nutrition-scheduler/internal/logger"
	"nutrition-scheduler/internal/metrics"
	"nutrition-scheduler/internal/middleware"
	"nutrition-scheduler/internal/notify"
	"nutrition-scheduler/internal/store"
	"nutrition-scheduler/internal/store/sqlite"
	"nutrition-scheduler/internal/wire"
)

type backend interface {
	booking.Store
	handler.Users
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(&logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		Output:     os.Stderr,
		JSON:       cfg.LogJSON,
		TimeFormat: time.RFC3339,
	})
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	dispatcher, closeNotify, err := openNotifier(cfg, log)
	if err != nil {
		return err
	}
	defer closeNotify()

	m := metrics.New()
	eng := booking.New(st, dispatcher,
		booking.WithLocation(loc),
		booking.WithNotifyTimeout(cfg.Notify.Timeout),
		booking.WithRecorder(m),
	)
	iss := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	h := handler.New(eng, st, iss)

	// grpc server
	rl := middleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	srv := grpc.NewServer(
		grpc.ForceServerCodec(wire.Codec{}),
		grpc.ChainUnaryInterceptor(
			middleware.Logging(log, m),
			middleware.RateLimit(rl),
			middleware.Auth(iss),
		),
	)
	wire.RegisterBookingServiceServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	errc := make(chan error, 2)
	go func() {
		log.Info("grpc listening", "port", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			errc <- fmt.Errorf("grpc: %w", err)
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := gweb.New("localhost:"+cfg.GRPCPort, log)
	if err != nil {
		srv.Stop()
		return err
	}
	defer bridge.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/", bridge.Handler())

	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("grpc-web listening", "port", cfg.WebPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if sErr := httpSrv.Shutdown(shutdownCtx); sErr != nil {
		log.Warn("http shutdown", "err", sErr)
	}
	srv.GracefulStop()
	return err
}

// openStore picks the embedded SQLite store for sqlite: URLs and PostgreSQL
// otherwise. Both are migrated before use.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (backend, func(), error) {
	if path, ok := cfg.SQLitePath(); ok {
		st, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		log.Info("using sqlite", "path", path)
		return st, func() { st.Close() }, nil
	}

	if err := store.Migrate(ctx, cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	log.Info("connected to postgres")
	return store.New(pool), pool.Close, nil
}

func openNotifier(cfg *config.Config, log logger.Logger) (notify.Dispatcher, func(), error) {
	n := cfg.Notify
	switch n.Driver {
	case "amqp":
		p, err := notify.NewPublisher(n.RabbitURL, n.Exchange)
		if err != nil {
			return nil, nil, err
		}
		log.Info("publishing notifications", "exchange", n.Exchange)
		return p, func() { p.Close() }, nil
	case "smtp":
		m, err := notify.NewMailer(notify.SMTPConfig{
			Host:     n.SMTPHost,
			Port:     n.SMTPPort,
			User:     n.SMTPUser,
			Password: n.SMTPPass,
			From:     n.MailFrom,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("mailing notifications", "host", n.SMTPHost)
		return m, func() {}, nil
	default:
		return notify.LogDispatcher{}, func() {}, nil
	}
}
