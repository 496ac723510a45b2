package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moviestream/identity-system/internal/api"
	"github.com/moviestream/identity-system/internal/core/service"
	"github.com/moviestream/identity-system/internal/infrastructure/config"
	mongodb "github.com/moviestream/identity-system/internal/infrastructure/db/mongo"
	redisdb "github.com/moviestream/identity-system/internal/infrastructure/db/redis"
	"github.com/moviestream/identity-system/internal/infrastructure/queue"
	"github.com/moviestream/identity-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Stores ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	historyRepo := mongodb.NewHistoryRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := roleRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("role index creation failed")
	}

	// --- Core services ---
	denylist := redisdb.NewDenylist(rdb)
	codec := service.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	recorder := queue.NewDispatcher(0, service.NewHistoryService(historyRepo, log), log)
	recorder.Start(ctx)

	ladder := service.NewRoleService(roleRepo)
	session := service.NewSessionService(userRepo, roleRepo, codec, denylist, recorder, log, cfg.JWT.DenylistFloor)
	accounts := service.NewAccountService(userRepo, ladder, recorder)
	admin := service.NewAdminService(userRepo, roleRepo)

	e := api.NewRouter(cfg, log, api.Services{
		Session:  session,
		Accounts: accounts,
		Admin:    admin,
	}, db, rdb)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("auth service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("auth service stopped")
}
