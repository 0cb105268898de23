package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

// ExecuteTopic runs the agent of topic with freshly acquired handles. Failures are
// contained here: the outcome becomes the topic apology and the detail is kept in
// the turn error. Only context cancellation escapes the node.
func ExecuteTopic(
	ctx context.Context,
	in *contractx.TurnState,
	topic contractx.Topic,
	registry contractx.Registry,
	deps contractx.DepsProvider,
	recorder contractx.Recorder,
) (*contractx.TurnState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	node := ExecutorNode(topic)
	started := time.Now()
	answer, err := runAgent(ctx, in.UserQuery, topic, registry, deps)
	recorder.ObserveAgent(topic, time.Since(started).Seconds(), err != nil)

	if err != nil {
		if isCancellation(ctx, err) {
			return nil, err
		}
		log.Error().Err(err).Str("node", node).Str("topic", topic.String()).Msg("orchestrator: agent failed")
		in.AgentOutcome = ApologyFor(topic)
		in.Err = &contractx.TurnError{Node: node, Cause: err.Error()}
		return in, nil
	}

	in.AgentOutcome = answer
	in.Err = nil
	return in, nil
}

func runAgent(
	ctx context.Context,
	query string,
	topic contractx.Topic,
	registry contractx.Registry,
	deps contractx.DepsProvider,
) (string, error) {
	if registry == nil {
		return "", fmt.Errorf("%w: agent registry", contractx.ErrMissingDependency)
	}
	agent, ok := registry.Agent(topic)
	if !ok || agent == nil {
		return "", fmt.Errorf("%w: no agent for topic=%s", contractx.ErrMissingDependency, topic)
	}

	var handles contractx.AgentDeps
	if deps != nil {
		acquired, err := deps.Acquire(ctx, topic)
		if err != nil {
			return "", fmt.Errorf("%w: acquire handles for topic=%s: %v", contractx.ErrMissingDependency, topic, err)
		}
		handles = acquired
	}

	return agent.Answer(ctx, query, handles)
}

func isCancellation(ctx context.Context, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return ctx.Err() != nil
}
