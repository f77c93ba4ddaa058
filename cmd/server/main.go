package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"pairchat/api"
	"pairchat/auth"
	"pairchat/blob"
	"pairchat/domain/event"
	"pairchat/hub"
	"pairchat/internal"
	"pairchat/presence"
	"pairchat/repositories"
	"pairchat/runtime/workers"
	"pairchat/services"
	"pairchat/sink"
)

// Exit codes provide meaningful status to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// main is a thin wrapper: run() owns the lifecycle so every defer
	// (database close, worker drain) executes before the process exits.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & logger
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded, relying on environment")
	}

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	options := badger.DefaultOptions(config.BadgerFilepath).WithLogger(nil)
	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Core components
	deliveryHub := hub.New(logger, config.QueueSize)
	events := make(chan event.DomainEvent, config.EventBufferSize)
	tracker := presence.NewTracker(logger, events, config.PresenceTimeout)

	users := repositories.NewUserRepository(db)
	tokens := auth.NewTokenManager([]byte(config.AuthSecret), config.AuthTokenDuration)
	authService := services.NewAuthService(users, tokens)

	// tally sees both the store's committed events and the presence
	// channel drained by the fanout worker.
	tally := sink.NewTally()
	store := repositories.NewConversationStore(db, logger, deliveryHub, authService, tracker).AddSinks(tally)
	chatService := services.NewChatService(logger, store, tracker, authService, users, deliveryHub)
	presenceService := services.NewPresenceService(tracker, store)

	blobs, err := blob.NewDiskStore(logger, config.BlobDir, config.BlobBaseURL)
	if err != nil {
		return exitRuntime, err
	}

	// 4. Supervised workers
	fanout := workers.NewEventFanout(logger, deliveryHub, events, config.SinkTimeout).Add(tally)
	sweeper := workers.NewPresenceSweeper(logger, tracker, config.SweepInterval)
	gc := workers.NewBadgerGC(logger, db, config.GCInterval)

	supervisor := workers.NewSupervisor(logger)
	supervisor.Add(fanout, sweeper, gc)

	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		supervisor.Run(ctx)
	}()

	// 5. HTTP server
	handlers := api.NewHandlers(authService, chatService, presenceService, blobs)
	router := api.BuildRouter(logger, handlers, authService, tally, blobs.Root())

	server := &http.Server{
		Addr:    config.Addr(),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", config.Addr())
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		supervisor.Stop()
		<-supervisorDone
		return exitRuntime, fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	// 6. Graceful shutdown: stop accepting requests, then drain workers.
	logger.Info("Shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}

	supervisor.Stop()
	<-supervisorDone
	return exitOK, nil
}
