// Package ws streams reconciliation progress to the session that submitted
// the cart: one event per processed entry, one when the run completes.
package ws

import (
	"net/http"
	"sync"
	"time"

	"invadmin-stock-services/internal/middleware"
	"invadmin-stock-services/internal/reconcile"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	logger    *zap.Logger
	heartbeat time.Duration

	mu   sync.RWMutex
	subs map[string]map[*client]struct{}
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

func (c *client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func New(logger *zap.Logger, heartbeat time.Duration) *Server {
	return &Server{
		logger:    logger,
		heartbeat: heartbeat,
		subs:      make(map[string]map[*client]struct{}),
	}
}

type runEvent struct {
	Type  string                 `json:"type"`
	RunID string                 `json:"runId"`
	Entry *reconcile.EntryResult `json:"entry,omitempty"`
	Run   *reconcile.Result      `json:"run,omitempty"`
}

// EntryDone fans one per-entry result out to the owning session's sockets.
func (s *Server) EntryDone(sessionKey, runID string, entry reconcile.EntryResult) {
	s.broadcast(sessionKey, runEvent{Type: "entry", RunID: runID, Entry: &entry})
}

// RunCompleted fans the aggregate result out to the owning session's sockets.
func (s *Server) RunCompleted(sessionKey string, result *reconcile.Result) {
	s.broadcast(sessionKey, runEvent{Type: "completed", RunID: result.RunID, Run: result})
}

func (s *Server) broadcast(sessionKey string, event runEvent) {
	s.mu.RLock()
	clients := make([]*client, 0, len(s.subs[sessionKey]))
	for c := range s.subs[sessionKey] {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(event); err != nil {
			s.logger.Debug("ws write failed, dropping client", zap.Error(err))
			s.unsubscribe(sessionKey, c)
			_ = c.conn.Close()
		}
	}
}

// StockRunsWS upgrades the connection and subscribes it to the caller's own
// reconciliation runs until the peer goes away.
func (s *Server) StockRunsWS(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, "Authorization token required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("ws upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn}
	s.subscribe(session.Key, c)
	defer func() {
		s.unsubscribe(session.Key, c)
		_ = conn.Close()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}

func (s *Server) subscribe(sessionKey string, c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs[sessionKey] == nil {
		s.subs[sessionKey] = make(map[*client]struct{})
	}
	s.subs[sessionKey][c] = struct{}{}
}

func (s *Server) unsubscribe(sessionKey string, c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if clients, ok := s.subs[sessionKey]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(s.subs, sessionKey)
		}
	}
}
