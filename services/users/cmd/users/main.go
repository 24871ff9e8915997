package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/elzpil/bookclub/internal/authtoken"
	"github.com/elzpil/bookclub/internal/ratelimit"
	"github.com/elzpil/bookclub/internal/util"
	"github.com/elzpil/bookclub/services/users/internal/app"
	"github.com/elzpil/bookclub/services/users/internal/config"
	"github.com/elzpil/bookclub/services/users/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	tokens := authtoken.New(cfg.JWTSecret, authtoken.DefaultTokenTTL)

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		Tokens:      tokens,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" && cfg.RateLimit > 0 {
		window := time.Minute
		if cfg.RateLimitWindow != "" {
			if parsed, err := time.ParseDuration(cfg.RateLimitWindow); err == nil {
				window = parsed
			}
		}
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "bookclub:users", cfg.RateLimit, window)
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
	}

	httpServer := server.New(server.Config{
		App:     appCore,
		Tokens:  tokens,
		Limiter: limiter,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("users server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
