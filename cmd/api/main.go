package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fianka/shop-api/internal/api"
	"github.com/fianka/shop-api/internal/config"
	"github.com/fianka/shop-api/internal/database"
	"github.com/fianka/shop-api/internal/mailer"
	"github.com/fianka/shop-api/internal/promo"
	"github.com/fianka/shop-api/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	var sender mailer.Sender = &mailer.LogSender{Logger: logger}
	if cfg.SMTP.Host != "" {
		sender = mailer.NewSMTPSender(cfg.SMTP)
	}

	registry := promo.NewRegistry()

	handler := api.NewRouter(api.Deps{
		Logger:     logger,
		Orders:     store.NewOrderStore(db, registry),
		Products:   store.NewProductStore(db),
		Users:      store.NewUserStore(db),
		Newsletter: store.NewNewsletterStore(db),
		Mailer:     sender,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("listen", "error", err)
		os.Exit(1)
	}

	<-idleConnsClosed
	logger.Info("server stopped")
}
