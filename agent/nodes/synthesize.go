package orchestratornode

import (
	"strings"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

// Synthesize finalizes the outcome. It passes the error through and never fails.
func Synthesize(in *contractx.TurnState) (*contractx.TurnState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	if strings.TrimSpace(in.AgentOutcome) == "" {
		in.AgentOutcome = EmptyOutcomeReply
	}
	return in, nil
}
