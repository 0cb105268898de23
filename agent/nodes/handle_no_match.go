package orchestratornode

import (
	"github.com/rs/zerolog/log"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

func HandleNoMatch(in *contractx.TurnState) (*contractx.TurnState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	log.Info().Str("node", NodeHandleNoMatch).Msg("orchestrator: no topic matched")
	in.AgentOutcome = NoMatchReply
	return in, nil
}
