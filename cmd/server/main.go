// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cardtable/unoroom/internal/broadcast"
	"github.com/cardtable/unoroom/internal/config"
	"github.com/cardtable/unoroom/internal/engine"
	"github.com/cardtable/unoroom/internal/game"
	"github.com/cardtable/unoroom/internal/handlers"
	"github.com/cardtable/unoroom/internal/history"
	"github.com/cardtable/unoroom/internal/middleware"
	"github.com/cardtable/unoroom/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	var rdb *redis.Client
	if cfg.StoreBackend == "redis" || cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			if cfg.StoreBackend == "redis" {
				log.Fatalf("redis connect: %v", err)
			}
			logger.WithError(err).Warn("redis unreachable; history and pub/sub disabled")
			rdb = nil
		}
	}

	var st store.Store
	switch cfg.StoreBackend {
	case "memory":
		st = store.NewMemoryStore()
	case "redis":
		st = store.NewRedisStore(rdb)
	case "postgres":
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("pgx pool: %v", err)
		}
		pg := store.NewPostgresStore(pool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = pg.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Fatalf("postgres schema: %v", err)
		}
		st = pg
	default:
		log.Fatalf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	hub := broadcast.NewHub(logger)
	publishers := broadcast.MultiPublisher{hub}
	var recorder *history.Recorder
	if rdb != nil {
		publishers = append(publishers, broadcast.NewRedisPublisher(rdb, logger))
		recorder = history.NewRecorder(rdb, cfg.HistorianQueue)
	}

	eng := engine.New(
		st,
		game.NewMachine(cfg.CatchWindow),
		logger,
		engine.WithPublisher(publishers),
		engine.WithRecorder(recorder),
		engine.WithCommitRetries(cfg.CommitRetries),
	)

	srv := handlers.NewServer(eng, hub, logger)
	mux := http.NewServeMux()
	srv.Routes(mux)

	logger.Infof("Running on %s (store: %s)", cfg.Addr, cfg.StoreBackend)
	if err := http.ListenAndServe(cfg.Addr, middleware.LogMiddleware(logger)(mux)); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
