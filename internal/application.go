package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/gameroom-backend/internal/broadcast"
	"github.com/rocketscienceinc/gameroom-backend/internal/config"
	"github.com/rocketscienceinc/gameroom-backend/internal/game"
	"github.com/rocketscienceinc/gameroom-backend/internal/reactiontime"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gameroom-backend/internal/scheduler"
	"github.com/rocketscienceinc/gameroom-backend/internal/usecase"
	"github.com/rocketscienceinc/gameroom-backend/transport/rest"
	"github.com/rocketscienceinc/gameroom-backend/transport/websocket"
)

var (
	ErrAddrNotFound       = errors.New("redis address string is empty")
	ErrUnknownResultStore = errors.New("unknown result store")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	results, closeStore, err := newResultRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer closeStore()

	hub := broadcast.NewHub(logger)
	factory := game.NewFactory(game.Options{
		Difficulty: conf.Game.Difficulty,
		Reaction: reactiontime.Config{
			MaxRounds:   conf.Game.MaxRounds,
			MinDelay:    conf.Game.MinRoundDelay,
			MaxDelay:    conf.Game.MaxRoundDelay,
			MinReaction: conf.Game.MinReaction,
			MaxReaction: conf.Game.MaxReaction,
		},
	})

	roomManager := usecase.NewRoomManager(logger, factory, hub, results, scheduler.NewReal(), usecase.Timings{
		ComputerMoveDelay: conf.Game.ComputerMoveDelay,
		CleanupDelay:      conf.Game.CleanupDelay,
		FirstRoundDelay:   conf.Game.FirstRoundDelay,
		InterRoundPause:   conf.Game.InterRoundPause,
		ResponseTimeout:   conf.Game.ResponseTimeout,
	})
	defer roomManager.Close()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, results, conf.CORSOrigin, conf.Environment)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, roomManager, conf.Socket, conf.CORSOrigin)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newResultRepository picks the archive of finished matches. The returned func releases its connection.
func newResultRepository(ctx context.Context, conf *config.Config) (repository.ResultRepository, func(), error) {
	switch conf.ResultStore {
	case config.ResultStoreMemory, "":
		return repository.NewMemoryResultRepository(conf.ResultTTL), func() {}, nil
	case config.ResultStoreRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		closeStore := func() {
			if err := redisStorage.Close(); err != nil {
				slog.Error("could not close redis storage", "error", err)
			}
		}

		return repository.NewResultRepository(redisStorage, conf.ResultTTL), closeStore, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownResultStore, conf.ResultStore)
	}
}
