package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mindfall/mindfall-server/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checking is the reverse proxy's concern.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StateMessage is the payload pushed to subscribers after every applied
// action: the full authoritative state plus the events the action produced.
type StateMessage struct {
	Type   string          `json:"type"`
	State  *game.GameState `json:"state"`
	Events []game.Event    `json:"events,omitempty"`
}

func stateMessage(state *game.GameState, events []game.Event) StateMessage {
	return StateMessage{Type: "state", State: state, Events: events}
}

// Hub fans game state updates out to websocket subscribers, keyed by game ID.
// A slow subscriber is dropped rather than allowed to block the broadcast.
type Hub struct {
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan StateMessage
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

// Broadcast pushes a message to every subscriber of gameID.
func (h *Hub) Broadcast(gameID string, msg StateMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[gameID] {
		select {
		case sub.send <- msg:
		default:
			// Buffer full; the write pump will notice the closed channel.
			h.logger.Warn("dropping slow websocket subscriber",
				zap.String("game_id", gameID),
			)
			close(sub.send)
			delete(h.subs[gameID], sub)
		}
	}
}

func (h *Hub) add(gameID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*subscriber]struct{})
	}
	h.subs[gameID][sub] = struct{}{}
}

func (h *Hub) remove(gameID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[gameID]; ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			close(sub.send)
		}
		if len(set) == 0 {
			delete(h.subs, gameID)
		}
	}
}

// handleGameSocket upgrades the connection and streams state updates for the
// requested game. The current state is sent immediately on connect.
func (s *Server) handleGameSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	state, err := s.games.GetState(r.Context(), gameID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{conn: conn, send: make(chan StateMessage, sendBufferSize)}
	s.hub.add(gameID, sub)
	sub.send <- stateMessage(state, nil)

	go s.writePump(gameID, sub)
	go s.readPump(gameID, sub)
}

func (s *Server) writePump(gameID string, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; the socket is server-push only. It exists
// to process pongs and to notice the peer going away.
func (s *Server) readPump(gameID string, sub *subscriber) {
	defer func() {
		s.hub.remove(gameID, sub)
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(1024)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}
