package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
	statex "github.com/ovgu-assistant/campus-assistant/agent/state"
)

const (
	duplicateQueryMessage = "You just asked the same question. Please try rephrasing or ask a different question."
	internalErrorNotice   = "Sorry, an internal error occurred. Please try again later."
)

type turnRequest struct {
	Query string `json:"query"`
}

type turnResponse struct {
	SessionID string          `json:"session_id"`
	Query     string          `json:"query"`
	Topic     contractx.Topic `json:"topic"`
	Answer    string          `json:"answer"`
	Failed    bool            `json:"failed"`
}

type sessionResponse struct {
	SessionID string              `json:"session_id"`
	Turns     []statex.TurnRecord `json:"turns"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func newSessionID() string {
	return uuid.NewString()
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": s.newID()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	st, err := s.turns.Session(r.Context(), sessionID)
	switch {
	case errors.Is(err, statex.ErrStateNotFound):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case err != nil:
		log.Error().Err(err).Str("session_id", sessionID).Msg("http: load session failed")
		writeError(w, http.StatusInternalServerError, "could not load session")
		return
	}

	turns := st.Turns
	if turns == nil {
		turns = []statex.TurnRecord{}
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: st.SessionID, Turns: turns, UpdatedAt: st.UpdatedAt})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if err := s.turns.Reset(r.Context(), sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("http: reset session failed")
		writeError(w, http.StatusInternalServerError, "could not reset session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(mux.Vars(r)["id"])
	logger := log.With().Str("session_id", sessionID).Logger()

	var req turnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	if s.isRepeat(r, sessionID, query) {
		writeError(w, http.StatusConflict, duplicateQueryMessage)
		return
	}

	out, err := s.turns.Invoke(r.Context(), contractx.NewTurnState(query), sessionID)
	code := http.StatusOK
	if err != nil {
		if !errors.Is(err, contractx.ErrTurnStuck) || out == nil {
			logger.Error().Err(err).Msg("http: turn failed")
			writeError(w, http.StatusInternalServerError, internalErrorNotice)
			return
		}
		code = http.StatusGatewayTimeout
	}

	resp := turnResponse{
		SessionID: sessionID,
		Query:     query,
		Topic:     out.ChosenAgent,
		Answer:    out.AgentOutcome,
		Failed:    out.Failed(),
	}
	// Stuck turns keep their own reply; other failures hide the topic apology.
	if resp.Failed && code == http.StatusOK {
		resp.Answer = internalErrorNotice
	}
	writeJSON(w, code, resp)
}

// isRepeat reports whether the session's previous query equals query. Lookup
// failures never block a turn.
func (s *Server) isRepeat(r *http.Request, sessionID, query string) bool {
	st, err := s.turns.Session(r.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, statex.ErrStateNotFound) {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("http: duplicate check skipped")
		}
		return false
	}
	return st.IsRepeat(query)
}
