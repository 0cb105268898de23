package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

// DefaultMaxTurns caps the turns kept per session; older turns are dropped first.
const DefaultMaxTurns = 50

var ErrInvalidTurn = errors.New("invalid turn record")

// SessionState is the ordered turn history of one conversation. Routing never
// reads it; it exists so a session can be resumed by id.
type SessionState struct {
	SessionID string       `json:"session_id"`
	Turns     []TurnRecord `json:"turns,omitempty"`
	LastQuery string       `json:"last_query,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TurnRecord is a finished turn as persisted.
type TurnRecord struct {
	Query   string          `json:"query"`
	Topic   contractx.Topic `json:"topic"`
	Outcome string          `json:"outcome"`
	Error   string          `json:"error,omitempty"`
	At      time.Time       `json:"at"`
}

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Turns:     make([]TurnRecord, 0, 4),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AppendTurn records a finished turn and keeps at most maxTurns entries.
func (s *SessionState) AppendTurn(turn *contractx.TurnState, now time.Time, maxTurns int) error {
	if s == nil {
		return ErrNilSessionState
	}
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidTurn)
	}
	if !turn.ChosenAgent.Valid() {
		return fmt.Errorf("%w: topic=%q", ErrInvalidTurn, turn.ChosenAgent)
	}

	rec := TurnRecord{
		Query:   turn.UserQuery,
		Topic:   turn.ChosenAgent,
		Outcome: turn.AgentOutcome,
		At:      now.UTC(),
	}
	if turn.Err != nil {
		rec.Error = turn.Err.Error()
	}

	s.Turns = append(s.Turns, rec)
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if over := len(s.Turns) - maxTurns; over > 0 {
		s.Turns = append([]TurnRecord(nil), s.Turns[over:]...)
	}
	s.LastQuery = turn.UserQuery
	s.Touch(now)
	return nil
}

// LastTurn returns the most recent turn, if any.
func (s *SessionState) LastTurn() (TurnRecord, bool) {
	if s == nil || len(s.Turns) == 0 {
		return TurnRecord{}, false
	}
	return s.Turns[len(s.Turns)-1], true
}

// IsRepeat reports whether query equals the previous query of the session,
// ignoring surrounding whitespace.
func (s *SessionState) IsRepeat(query string) bool {
	if s == nil || s.LastQuery == "" {
		return false
	}
	return strings.TrimSpace(s.LastQuery) == strings.TrimSpace(query)
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	for i, t := range s.Turns {
		if !t.Topic.Valid() {
			return fmt.Errorf("%w: turn %d has topic=%q", ErrInvalidTurn, i, t.Topic)
		}
	}
	return nil
}
