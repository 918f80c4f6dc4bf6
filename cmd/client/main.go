// Package main runs the ContentAI interactive client.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/client/account"
	"github.com/atinyakov/ContentAI/internal/client/api"
	"github.com/atinyakov/ContentAI/internal/client/authbus"
	"github.com/atinyakov/ContentAI/internal/client/entitlement"
	"github.com/atinyakov/ContentAI/internal/client/prompt"
	"github.com/atinyakov/ContentAI/internal/client/storage"
	"github.com/atinyakov/ContentAI/internal/client/watcher"
	"github.com/atinyakov/ContentAI/internal/config"
	"github.com/atinyakov/ContentAI/internal/logger"
)

var (
	version   string
	buildDate string
)

// openBackend builds the storage backend named in opts. The returned close
// function is never nil.
func openBackend(ctx context.Context, opts *config.ClientOptions) (storage.Backend, func() error, error) {
	var (
		backend storage.Backend
		closeFn = func() error { return nil }
	)
	switch opts.StorageBackend {
	case config.StorageMemory:
		backend = storage.NewMemoryBackend()
	case config.StorageRedis:
		rb, err := storage.NewRedisBackend(ctx, opts.RedisURL, "contentai:")
		if err != nil {
			return nil, nil, err
		}
		backend, closeFn = rb, rb.Close
	default:
		dir := cmp.Or(opts.StorageDir, storage.DefaultDir())
		fb, err := storage.NewFileBackend(dir)
		if err != nil {
			return nil, nil, err
		}
		backend = fb
	}

	if opts.StorageSecret != "" {
		aead, err := storage.NewAEAD([]byte(opts.StorageSecret))
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		backend = &storage.SealedBackend{Inner: backend, AEAD: aead}
	}
	return backend, closeFn, nil
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "-version" {
		fmt.Printf("ContentAI Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	opts, err := config.ParseClient(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(opts.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, opts)
	if err != nil {
		zapLogger.Fatal("cannot open storage", zap.Error(err))
	}
	defer func() { _ = closeBackend() }()

	httpClient, err := api.NewHTTPClient(opts.CAFile, opts.RequestTimeout)
	if err != nil {
		zapLogger.Fatal("cannot configure HTTP client", zap.Error(err))
	}

	sessions := storage.NewSessionStore(backend, zapLogger.Named("session"))
	results := storage.NewResultStore(backend, zapLogger.Named("results"))
	bus := authbus.New()
	client := api.New(opts.BaseURL, sessions,
		api.WithHTTPClient(httpClient),
		api.WithLang(opts.Lang),
		api.WithLogger(zapLogger.Named("api")),
	)

	sh := &shell{
		out:      os.Stdout,
		in:       prompt.New(os.Stdin, os.Stdout),
		sessions: sessions,
		svc:      account.NewService(client, sessions, results, bus, zapLogger.Named("account")),
		guard:    entitlement.NewGuard(sessions, client, bus, zapLogger.Named("entitlement")),
		bus:      bus,
		watcher:  watcher.New(sessions, bus, opts.PollInterval, zapLogger.Named("watcher")),
		lang:     opts.Lang,
		log:      zapLogger,
	}
	sh.run(ctx)
	sh.watcher.Stop()
}
