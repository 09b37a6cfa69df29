package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CardTable/pkg/grpcx"
	"CardTable/service/cards/internal/config"
	"CardTable/service/cards/internal/db"
	"CardTable/service/cards/internal/game"
	"CardTable/service/cards/internal/grpcapi"
	"CardTable/service/cards/internal/httpapi"
	"CardTable/service/cards/internal/lock"
	"CardTable/service/cards/internal/logging"
	"github.com/coder/quartz"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

func main() {
	// Carica le variabili da .env se presente (solo per dev).
	envPath := os.Getenv("GO_DOTENV_PATH")
	if envPath == "" {
		envPath = ".env"
	}
	envErr := godotenv.Overload(envPath)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config non valida", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat, "cards-svc")
	if err != nil {
		slog.Error("logger non valido", "error", err)
		os.Exit(1)
	}
	if envErr != nil {
		// Se manca il file .env, continuiamo con le env già presenti.
		logger.Warn("impossibile caricare .env", "path", envPath, "error", envErr)
	} else {
		logger.Info(".env caricato", "path", envPath)
	}

	if err := run(logger, cfg); err != nil {
		logger.Error("cards-svc terminato con errore", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := game.ParseDrawPolicy(cfg.DrawPolicy)
	if err != nil {
		return err
	}

	// DB richiesto per la persistenza delle partite.
	if cfg.DBDSN == "" {
		return errors.New("DB_DSN mancante")
	}
	database, err := db.Open(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer database.Close()

	// Lock distribuito su Redis se configurato, altrimenti lock in-process.
	clock := quartz.NewReal()
	var locker lock.Manager
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return err
		}
		locker = lock.NewRedisLock(client, clock, cfg.LockTTL, cfg.LockRetries, cfg.LockBackoff)
		logger.Info("lock su redis", "addr", cfg.RedisAddr)
	} else {
		locker = lock.NewLocalLock(clock, cfg.LockRetries, cfg.LockBackoff)
		logger.Warn("REDIS_ADDR non impostato, lock solo in-process")
	}

	service := game.NewService(logger, game.NewRepo(database), locker, policy, game.WithClock(clock))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(logger, service).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcx.UnaryRequestID(logger)))
	grpcapi.Register(grpcServer, grpcapi.NewServer(logger, service))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("cards-svc http in ascolto", "addr", cfg.HTTPAddr, "draw_policy", policy.String())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("cards-svc grpc in ascolto", "addr", cfg.GRPCAddr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		// Alla chiusura del context ferma entrambi i server.
		<-gctx.Done()
		logger.Info("arresto cards-svc")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
