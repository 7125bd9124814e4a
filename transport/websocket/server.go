package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/rocketscienceinc/gameroom-backend/internal/config"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type roomManager interface {
	JoinRoom(ctx context.Context, req usecase.JoinRequest, caller entity.Recipient) (any, error)
	LeaveRoom(ctx context.Context, roomID, playerID string, caller entity.Recipient) error
	Disconnect(ctx context.Context, roomID, playerID string, caller entity.Recipient) error
	ApplyAction(ctx context.Context, roomID, playerID string, action entity.Action, caller entity.Recipient) error
}

type handlerFunc func(ctx context.Context, conn *Connection, payload json.RawMessage) error

type Server struct {
	logger   *slog.Logger
	rooms    roomManager
	conf     config.Socket
	upgrader gorilla.Upgrader

	handlers map[string]handlerFunc

	mu          sync.Mutex
	connections map[*Connection]struct{}
}

func New(logger *slog.Logger, rooms roomManager, conf config.Socket, allowedOrigin string) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		rooms:  rooms,
		conf:   conf,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigin),
		},
		handlers:    make(map[string]handlerFunc),
		connections: make(map[*Connection]struct{}),
	}

	server.handlers[ActionJoinGame] = server.handleJoinGame
	server.handlers[ActionMakeMove] = server.handleMakeMove
	server.handlers[ActionSubmitReactionTime] = server.handleSubmitReaction
	server.handlers[ActionLeaveGame] = server.handleLeaveGame

	return server
}

// Handler exposes the /ws endpoint.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server and blocks until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
		that.CloseAll()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// CloseAll closes every open connection. Hijacked sockets are not covered by http.Server.Shutdown.
func (that *Server) CloseAll() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for conn := range that.connections {
		conn.close()
	}
}

func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	socket, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(uuid.NewString(), that.logger, socket, that.sendBuffer(), that.newLimiter())
	that.register(conn)

	log.Info("WebSocket connection established", "connection_id", conn.id, "remote_addr", req.RemoteAddr)

	go conn.writePump()
	conn.readPump(context.WithoutCancel(req.Context()), that)
}

func (that *Server) register(conn *Connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.connections[conn] = struct{}{}
}

// disconnect runs once the read loop of a connection ends.
func (that *Server) disconnect(ctx context.Context, conn *Connection) {
	that.mu.Lock()
	delete(that.connections, conn)
	that.mu.Unlock()

	roomID, playerID := conn.unbind()
	if roomID == "" {
		return
	}

	if err := that.rooms.Disconnect(ctx, roomID, playerID, conn); err != nil {
		conn.logger.Debug("disconnect from a gone room", "room_id", roomID, "error", err)
	}

	conn.logger.Info("connection closed", "room_id", roomID, "player_id", playerID)
}

func (that *Server) sendBuffer() int {
	if that.conf.SendBuffer <= 0 {
		return 256
	}

	return that.conf.SendBuffer
}

func (that *Server) newLimiter() *rate.Limiter {
	if that.conf.RateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}

	return rate.NewLimiter(rate.Limit(that.conf.RateLimit), max(that.conf.RateBurst, 1))
}

func checkOrigin(allowed string) func(*http.Request) bool {
	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		return origin == "" || allowed == "" || allowed == "*" || origin == allowed
	}
}
