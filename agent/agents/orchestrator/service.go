package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
	nodex "github.com/ovgu-assistant/campus-assistant/agent/nodes"
	statex "github.com/ovgu-assistant/campus-assistant/agent/state"
)

const (
	defaultMaxSteps     = 10
	persistTimeout      = 5 * time.Second
	orchestratorErrNode = "orchestrator"
)

type Config struct {
	TurnTimeout time.Duration `envconfig:"TURN_TIMEOUT" split_words:"true" default:"120s"`
	MaxSteps    int           `envconfig:"MAX_STEPS" split_words:"true" default:"10"`
	MaxTurns    int           `envconfig:"MAX_TURNS" split_words:"true" default:"50"`
}

// Orchestrator runs one turn through route, one executor and synthesize, then
// records the turn in the session store.
type Orchestrator struct {
	registry contractx.Registry
	deps     contractx.DepsProvider
	store    statex.Store
	recorder contractx.Recorder

	graphRunner compose.Runnable[*contractx.TurnState, *contractx.TurnState]

	turnTimeout time.Duration
	maxTurns    int

	now func() time.Time
}

func New(
	registry contractx.Registry,
	deps contractx.DepsProvider,
	store statex.Store,
	recorder contractx.Recorder,
	cfg Config,
) (*Orchestrator, error) {
	if registry == nil {
		return nil, errors.New("agent registry is required")
	}
	if deps == nil {
		return nil, errors.New("dependency provider is required")
	}
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	o := &Orchestrator{
		registry:    registry,
		deps:        deps,
		store:       store,
		recorder:    recorder,
		turnTimeout: cfg.TurnTimeout,
		maxTurns:    cfg.MaxTurns,
		now:         time.Now,
	}

	graphRunner, err := o.compileTurnGraph(context.Background(), maxSteps)
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Invoke answers one query. Only the query of in is read; the turn always starts
// from a fresh state. When the turn times out, is cancelled or overruns the step
// limit, the returned state carries the stuck reply and the error wraps
// contract.ErrTurnStuck.
func (o *Orchestrator) Invoke(ctx context.Context, in *contractx.TurnState, sessionID string) (*contractx.TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}

	turn := contractx.NewTurnState(in.UserQuery)
	logger := log.With().Str("session_id", sessionID).Logger()

	runCtx := ctx
	if o.turnTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.turnTimeout)
		defer cancel()
	}

	out, err := o.graphRunner.Invoke(runCtx, turn)
	if err != nil {
		if !isStuck(runCtx, err) {
			logger.Error().Err(err).Msg("orchestrator: turn failed")
			return nil, err
		}

		logger.Warn().Err(err).Str("topic", turn.ChosenAgent.String()).Msg("orchestrator: turn stuck")
		out = stuckState(turn, err)
		o.recorder.ObserveTurn(out.ChosenAgent, true)
		o.persist(ctx, sessionID, out)
		return out, fmt.Errorf("%w: %v", contractx.ErrTurnStuck, err)
	}

	o.recorder.ObserveTurn(out.ChosenAgent, out.Failed())
	o.persist(ctx, sessionID, out)
	return out, nil
}

// Session returns the stored history of a session.
func (o *Orchestrator) Session(ctx context.Context, sessionID string) (*statex.SessionState, error) {
	return o.store.Load(ctx, sessionID)
}

// Reset drops the stored history of a session.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	return o.store.Delete(ctx, sessionID)
}

// persist appends the turn to the session. Failures are logged and never fail
// the turn.
func (o *Orchestrator) persist(ctx context.Context, sessionID string, turn *contractx.TurnState) {
	if strings.TrimSpace(sessionID) == "" {
		return
	}
	logger := log.With().Str("session_id", sessionID).Logger()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	now := o.now()
	st, err := o.store.Load(ctx, sessionID)
	switch {
	case errors.Is(err, statex.ErrStateNotFound):
		st = statex.NewSessionState(sessionID, now)
	case err != nil:
		logger.Warn().Err(err).Msg("orchestrator: load session failed, turn not recorded")
		return
	}

	if err := st.AppendTurn(turn, now, o.maxTurns); err != nil {
		logger.Warn().Err(err).Msg("orchestrator: append turn failed")
		return
	}
	if err := o.store.Save(ctx, st); err != nil {
		logger.Warn().Err(err).Msg("orchestrator: save session failed")
	}
}

func isStuck(ctx context.Context, err error) bool {
	if errors.Is(err, compose.ErrExceedMaxSteps) || strings.Contains(err.Error(), compose.ErrExceedMaxSteps.Error()) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return ctx.Err() != nil
}

func stuckState(turn *contractx.TurnState, cause error) *contractx.TurnState {
	chosen := turn.ChosenAgent
	if !chosen.Valid() {
		chosen = contractx.TopicNone
	}
	return &contractx.TurnState{
		UserQuery:    turn.UserQuery,
		ChosenAgent:  chosen,
		AgentOutcome: nodex.StuckReply,
		Err:          &contractx.TurnError{Node: orchestratorErrNode, Cause: cause.Error()},
	}
}

type noopRecorder struct{}

func (noopRecorder) ObserveRoute(contractx.Topic)                {}
func (noopRecorder) ObserveTurn(contractx.Topic, bool)           {}
func (noopRecorder) ObserveAgent(contractx.Topic, float64, bool) {}
