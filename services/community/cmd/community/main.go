package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/elzpil/bookclub/internal/authtoken"
	"github.com/elzpil/bookclub/internal/util"
	"github.com/elzpil/bookclub/services/community/internal/app"
	"github.com/elzpil/bookclub/services/community/internal/bookclient"
	"github.com/elzpil/bookclub/services/community/internal/config"
	"github.com/elzpil/bookclub/services/community/internal/server"
	"github.com/elzpil/bookclub/services/community/internal/userclient"
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
		Books:       bookclient.New(cfg.BooksServiceURL),
		Users:       userclient.New(cfg.UsersServiceURL),
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer := server.New(server.Config{
		App:    appCore,
		Tokens: tokens,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("community server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
