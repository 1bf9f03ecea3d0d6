package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/votables/backend/internal/auth"
	"github.com/emilythestrangee/votables/backend/internal/cache"
	"github.com/emilythestrangee/votables/backend/internal/config"
	"github.com/emilythestrangee/votables/backend/internal/database"
	"github.com/emilythestrangee/votables/backend/internal/handlers"
	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/observability"
	"github.com/emilythestrangee/votables/backend/internal/server"
	"github.com/emilythestrangee/votables/backend/internal/users"
	"github.com/emilythestrangee/votables/backend/internal/voting"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Env
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logger
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownOTel := observability.InitOTel(ctx, log, cfg.Env, cfg.Otel)

	// Postgres
	db, err := database.New(cfg.DB, log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	defer db.Close()
	gormDB := db.GetDB()

	// Redis
	stats, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisChannel, log)
	if err != nil {
		log.Warn("Redis init failed, statistics cache disabled", "error", err)
		stats = cache.Nop{}
	}
	defer stats.Close()
	if rs, ok := stats.(*cache.RedisStats); ok {
		go func() {
			err := rs.Subscribe(ctx, func(ev cache.StatsEvent) {
				log.Debug("Statistics updated", "votable_id", ev.VotableID, "total_votes", ev.Statistics.TotalVotes, "wilson_score", ev.Statistics.WilsonScore)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("Statistics subscription ended", "error", err)
			}
		}()
	}

	// Services
	userStore := users.NewStore(gormDB, log)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	votingService := voting.NewService(gormDB, userStore, stats, log)

	// Handlers
	handler := handlers.NewHandler(userStore, issuer, votingService, stats, log)

	srv := server.NewServer(cfg, db, handler, issuer, log)
	go func() {
		log.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Warn("otel shutdown failed", "error", err)
	}
}
