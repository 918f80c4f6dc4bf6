// Package main initializes and starts the ContentAI backend, setting up
// configuration, logging, database connections, repositories, services and
// handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/config"
	"github.com/atinyakov/ContentAI/internal/db"
	"github.com/atinyakov/ContentAI/internal/logger"
	"github.com/atinyakov/ContentAI/internal/repository"
	"github.com/atinyakov/ContentAI/internal/server/handler/http"
	"github.com/atinyakov/ContentAI/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	db.StartSubscriptionCleaner(ctx, postgresDB, options.CleanupInterval, zapLogger)

	users := repository.NewPostgresUserRepository(postgresDB)

	authService := service.NewAuthService(users, options.JWTSecret, options.TokenTTL)
	subscriptionService := service.NewSubscriptionService(users, zapLogger.Named("subscription"))
	contentService := service.NewContentService()

	authHandler := &http.AuthHandler{AuthService: authService, Subscriptions: subscriptionService, Log: zapLogger}
	subscriptionHandler := &http.SubscriptionHandler{Subscriptions: subscriptionService, Log: zapLogger}
	contentHandler := &http.ContentHandler{Content: contentService, Subscriptions: subscriptionService, Log: zapLogger}

	router := http.NewRouter(authHandler, subscriptionHandler, contentHandler,
		authService, service.ErrTokenExpired, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.CertFile != "" && options.KeyFile != "" {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.CertFile, options.KeyFile)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
