package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/calvinwijaya/casino-night/internal/db"
	"github.com/calvinwijaya/casino-night/internal/game"
	"github.com/calvinwijaya/casino-night/internal/session"
	"github.com/calvinwijaya/casino-night/internal/store"
	"github.com/calvinwijaya/casino-night/pkg/apperror"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Options are the table settings applied to new sessions
type Options struct {
	StartingBalance int
	MaxWager        int
	HistoryLimit    int
	// RoundFactory overrides how sessions create rounds. Nil deals from a
	// freshly shuffled deck.
	RoundFactory func() *game.Round
}

// Handlers contains all the API handlers
type Handlers struct {
	store    store.Store
	database *db.Database
	hub      *Hub
	log      zerolog.Logger
	opts     Options
}

// NewHandlers creates a new instance of Handlers. database and hub may be nil.
func NewHandlers(store store.Store, database *db.Database, hub *Hub, log zerolog.Logger, opts Options) *Handlers {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}
	return &Handlers{
		store:    store,
		database: database,
		hub:      hub,
		log:      log.With().Str("component", "api").Logger(),
		opts:     opts,
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Session endpoints
	r.HandleFunc("/api/session", h.CreateSession).Methods("POST")
	r.HandleFunc("/api/session/{id}", h.GetSession).Methods("GET")
	r.HandleFunc("/api/session/{id}", h.CloseSession).Methods("DELETE")

	// Round endpoints
	r.HandleFunc("/api/session/{id}/deal", h.Deal).Methods("POST")
	r.HandleFunc("/api/session/{id}/hit", h.Hit).Methods("POST")
	r.HandleFunc("/api/session/{id}/stand", h.Stand).Methods("POST")

	// History endpoints
	r.HandleFunc("/api/session/{id}/history", h.History).Methods("GET")
	r.HandleFunc("/api/session/{id}/stats", h.Stats).Methods("GET")

	// WebSocket endpoint
	if h.hub != nil {
		r.HandleFunc("/ws", h.hub.WebSocketHandler)
	}
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorResponse maps err to its AppError and writes the error envelope
func (h *Handlers) errorResponse(w http.ResponseWriter, err error) {
	appErr := apperror.FromError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("error_code", appErr.Code).Msg("request failed")
	}
	response(w, appErr.HTTPStatus, appErr)
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.Validation("Invalid request body")
	}
	return nil
}

func (h *Handlers) session(r *http.Request) (*session.Session, error) {
	return h.store.GetSession(mux.Vars(r)["id"])
}

func (h *Handlers) broadcast(s *session.Session) {
	if h.hub != nil {
		h.hub.BroadcastSessionUpdate(s)
	}
}

// CreateSession seats a new player with the table's starting balance, or the
// balance given in the request
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Balance *int `json:"balance"`
	}
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	balance := h.opts.StartingBalance
	if req.Balance != nil {
		balance = *req.Balance
	}

	opts := []session.Option{
		session.WithLogger(h.log),
		session.WithMaxWager(h.opts.MaxWager),
	}
	// A nil *db.Database must not end up behind the Recorder interface
	if h.database != nil {
		opts = append(opts, session.WithRecorder(h.database))
	}
	if h.opts.RoundFactory != nil {
		opts = append(opts, session.WithRoundFactory(h.opts.RoundFactory))
	}

	s, err := session.New(balance, opts...)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	if err := h.store.SaveSession(s); err != nil {
		h.errorResponse(w, err)
		return
	}

	h.log.Info().Str("session_id", s.ID()).Int("balance", balance).Msg("session created")
	response(w, http.StatusCreated, s.View())
}

// GetSession returns the session and its current round
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	response(w, http.StatusOK, s.View())
}

// CloseSession cashes the player out and forgets the session
func (h *Handlers) CloseSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	view, err := s.CashOut()
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	if err := h.store.DeleteSession(s.ID()); err != nil {
		h.errorResponse(w, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastSessionClosed(s)
	}
	h.log.Info().Str("session_id", s.ID()).Int("balance", view.Balance).Msg("session closed")
	response(w, http.StatusOK, view)
}

// Deal places a wager and deals a new round
func (h *Handlers) Deal(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	var req struct {
		Wager int `json:"wager"`
	}
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	if _, err := s.Deal(r.Context(), req.Wager); err != nil {
		// An aborted round still changed the session
		h.broadcast(s)
		h.errorResponse(w, err)
		return
	}

	h.broadcast(s)
	response(w, http.StatusOK, s.View())
}

// Hit draws one card for the player
func (h *Handlers) Hit(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	card, err := s.Hit(r.Context())
	if err != nil {
		h.broadcast(s)
		h.errorResponse(w, err)
		return
	}

	h.broadcast(s)
	response(w, http.StatusOK, map[string]interface{}{
		"card":    card,
		"session": s.View(),
	})
}

// Stand ends the player's turn; the dealer's hand is played out before
// responding
func (h *Handlers) Stand(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	drawn, err := s.Stand(r.Context())
	if err != nil {
		h.broadcast(s)
		h.errorResponse(w, err)
		return
	}
	if drawn == nil {
		drawn = []game.Card{}
	}

	h.broadcast(s)
	response(w, http.StatusOK, map[string]interface{}{
		"dealerDrew": drawn,
		"session":    s.View(),
	})
}

// History lists the session's settled rounds, newest first
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	if h.database == nil {
		h.errorResponse(w, apperror.ErrUnavailable("Round history"))
		return
	}

	limit := h.opts.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.errorResponse(w, apperror.Validation("limit must be a positive integer"))
			return
		}
		limit = n
	}

	history, err := h.database.GetSessionHistory(r.Context(), s.ID(), limit)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	response(w, http.StatusOK, history)
}

// Stats aggregates the session's settled rounds
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	if h.database == nil {
		h.errorResponse(w, apperror.ErrUnavailable("Round history"))
		return
	}

	stats, err := h.database.GetSessionStats(r.Context(), s.ID())
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	response(w, http.StatusOK, stats)
}
