// Package server exposes the game engine over JSON HTTP plus a websocket
// state stream. Identity is taken from the X-Player-ID header; authentication
// happens upstream.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mindfall/mindfall-server/internal/catalog"
	"github.com/mindfall/mindfall-server/internal/deck"
	"github.com/mindfall/mindfall-server/internal/game"
	"github.com/mindfall/mindfall-server/internal/game/card"
	"github.com/mindfall/mindfall-server/internal/profile"
)

// Server is the HTTP transport over the engine and its stores.
type Server struct {
	logger   *zap.Logger
	games    *game.Manager
	catalog  *catalog.Catalog
	decks    *deck.Store
	profiles *profile.Store
	hub      *Hub
}

// New creates the HTTP server around its collaborators.
func New(logger *zap.Logger, games *game.Manager, cat *catalog.Catalog, decks *deck.Store, profiles *profile.Store) *Server {
	return &Server{
		logger:   logger,
		games:    games,
		catalog:  cat,
		decks:    decks,
		profiles: profiles,
		hub:      NewHub(logger),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	mux.HandleFunc("POST /api/games/{id}/join", s.handleJoinGame)
	mux.HandleFunc("POST /api/games/{id}/actions", s.handleAction)
	mux.HandleFunc("GET /api/games/{id}/ws", s.handleGameSocket)

	mux.HandleFunc("GET /api/cards", s.handleListCards)
	mux.HandleFunc("GET /api/cards/{id}", s.handleGetCard)
	mux.HandleFunc("PUT /api/cards/{id}", s.handlePutCard)

	mux.HandleFunc("GET /api/decks", s.handleListDecks)
	mux.HandleFunc("GET /api/decks/{id}", s.handleGetDeck)
	mux.HandleFunc("PUT /api/decks/{id}", s.handlePutDeck)

	mux.HandleFunc("GET /api/profiles/{id}", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profiles/{id}", s.handlePutProfile)

	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// playerID extracts the caller identity. Empty means unauthenticated.
func playerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Player-ID"))
}

type createGameRequest struct {
	DeckID string `json:"deckId"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	pid := playerID(r)
	if pid == "" {
		writeError(w, http.StatusUnauthorized, "missing_player", "X-Player-ID header is required")
		return
	}
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeckID == "" {
		writeError(w, http.StatusBadRequest, "malformed_payload", "deckId is required")
		return
	}

	state, err := s.games.CreateGame(r.Context(), pid, req.DeckID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	state, err := s.games.GetState(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	pid := playerID(r)
	if pid == "" {
		writeError(w, http.StatusUnauthorized, "missing_player", "X-Player-ID header is required")
		return
	}
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeckID == "" {
		writeError(w, http.StatusBadRequest, "malformed_payload", "deckId is required")
		return
	}

	state, err := s.games.JoinGame(r.Context(), r.PathValue("id"), pid, req.DeckID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.hub.Broadcast(state.ID, stateMessage(state, nil))
	writeJSON(w, http.StatusOK, state)
}

type actionRequest struct {
	Type game.ActionType `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type actionResponse struct {
	State  *game.GameState `json:"state"`
	Events []game.Event    `json:"events"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	pid := playerID(r)
	if pid == "" {
		writeError(w, http.StatusUnauthorized, "missing_player", "X-Player-ID header is required")
		return
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_payload", "invalid action body")
		return
	}
	if !game.ValidActionType(req.Type) {
		writeError(w, http.StatusBadRequest, "unknown_action", "unknown action type")
		return
	}

	action := game.Action{Type: req.Type, PlayerID: pid, Data: req.Data}
	state, events, err := s.games.ApplyAction(r.Context(), r.PathValue("id"), action)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.hub.Broadcast(state.ID, stateMessage(state, events))
	writeJSON(w, http.StatusOK, actionResponse{State: state, Events: events})
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	ids, err := s.catalog.ListCardIDs(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"cards": ids})
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	def, err := s.catalog.GetCard(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handlePutCard(w http.ResponseWriter, r *http.Request) {
	var def card.Definition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_payload", "invalid card definition")
		return
	}
	def.ID = r.PathValue("id")
	if err := s.catalog.PutCard(r.Context(), &def); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	pid := playerID(r)
	if pid == "" {
		writeError(w, http.StatusUnauthorized, "missing_player", "X-Player-ID header is required")
		return
	}
	ids, err := s.decks.List(r.Context(), pid)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"decks": ids})
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	pid := playerID(r)
	if pid == "" {
		writeError(w, http.StatusUnauthorized, "missing_player", "X-Player-ID header is required")
		return
	}
	d, err := s.decks.Get(r.Context(), pid, r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePutDeck(w http.ResponseWriter, r *http.Request) {
	pid := playerID(r)
	if pid == "" {
		writeError(w, http.StatusUnauthorized, "missing_player", "X-Player-ID header is required")
		return
	}
	var d deck.Deck
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_payload", "invalid deck")
		return
	}
	d.ID = r.PathValue("id")
	if err := s.decks.Put(r.Context(), pid, &d); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_payload", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	pid := playerID(r)
	userID := r.PathValue("id")
	if pid == "" || pid != userID {
		writeError(w, http.StatusForbidden, "forbidden", "can only edit your own profile")
		return
	}
	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_payload", "invalid profile")
		return
	}
	p.UserID = userID
	if err := s.profiles.Put(r.Context(), &p); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// writeDomainError maps engine and store errors to HTTP. Rule rejections are
// 400 with a stable code; not-found collaborator errors are 404; anything
// else, including engine faults, is a logged 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var re *game.RuleError
	switch {
	case errors.As(err, &re):
		writeError(w, http.StatusBadRequest, string(re.Code), re.Message)
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, catalog.ErrCardNotFound),
		errors.Is(err, deck.ErrDeckNotFound),
		errors.Is(err, profile.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, game.ErrGameFinished):
		writeError(w, http.StatusConflict, "game_finished", err.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
