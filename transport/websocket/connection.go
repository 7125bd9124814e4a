package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	gorilla "github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// Connection is one client socket. Only writePump writes to the socket; everyone else goes through Send.
type Connection struct {
	id      string
	logger  *slog.Logger
	conn    *gorilla.Conn
	send    chan []byte
	done    chan struct{}
	limiter *rate.Limiter

	closeOnce sync.Once

	mu       sync.Mutex
	roomID   string
	playerID string
}

func newConnection(id string, logger *slog.Logger, conn *gorilla.Conn, buffer int, limiter *rate.Limiter) *Connection {
	return &Connection{
		id:      id,
		logger:  logger.With("connection_id", id),
		conn:    conn,
		send:    make(chan []byte, buffer),
		done:    make(chan struct{}),
		limiter: limiter,
	}
}

// Send enqueues the event without blocking. A client that cannot keep up is disconnected.
func (that *Connection) Send(event entity.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		that.logger.Error("failed to marshal event", "action", event.Action, "error", err)
		return
	}

	select {
	case <-that.done:
		return
	default:
	}

	select {
	case that.send <- data:
	default:
		that.logger.Warn("send buffer is full, closing connection", "action", event.Action)
		that.close()
	}
}

func (that *Connection) close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

// bind records the room and player this connection plays for and returns the previous binding.
func (that *Connection) bind(roomID, playerID string) (string, string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	prevRoom, prevPlayer := that.roomID, that.playerID
	that.roomID, that.playerID = roomID, playerID

	return prevRoom, prevPlayer
}

func (that *Connection) binding() (string, string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.roomID, that.playerID
}

func (that *Connection) unbind() (string, string) {
	return that.bind("", "")
}

func (that *Connection) readPump(ctx context.Context, server *Server) {
	defer func() {
		that.close()
		server.disconnect(ctx, that)
	}()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseGoingAway, gorilla.CloseNormalClosure) {
				that.logger.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		server.handleMessage(ctx, that, data)
	}
}

func (that *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		that.conn.Close()
	}()

	for {
		select {
		case <-that.done:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = that.conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""))
			return
		case data := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(gorilla.TextMessage, data); err != nil {
				that.logger.Debug("write failed", "error", err)
				that.close()
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(gorilla.PingMessage, nil); err != nil {
				that.close()
				return
			}
		}
	}
}
