package orchestratornode

import (
	"github.com/rs/zerolog/log"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
	routerx "github.com/ovgu-assistant/campus-assistant/agent/router"
)

// RouteQuery commits the routing decision. It runs once per turn and never
// revisits the choice.
func RouteQuery(in *contractx.TurnState, recorder contractx.Recorder) (*contractx.TurnState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	in.ChosenAgent = routerx.Route(in.UserQuery)
	recorder.ObserveRoute(in.ChosenAgent)
	log.Info().Str("node", NodeRouter).Str("topic", in.ChosenAgent.String()).Msg("orchestrator: query routed")
	return in, nil
}

// DecideNext is the branch condition after the router.
func DecideNext(in *contractx.TurnState) (string, error) {
	if in == nil {
		return "", ErrNilState
	}
	return ExecutorNode(in.ChosenAgent), nil
}
