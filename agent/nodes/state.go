package orchestratornode

import (
	"errors"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

// Node names as they appear in the orchestrator graph.
const (
	NodeRouter           = "router"
	NodeExecuteOVGU      = "execute_ovgu"
	NodeExecuteFIN       = "execute_fin"
	NodeExecuteMagdeburg = "execute_magdeburg"
	NodeHandleNoMatch    = "handle_no_match"
	NodeSynthesize       = "synthesize"
)

var ErrNilState = errors.New("turn state is nil")

const (
	NoMatchReply = "I'm sorry, I couldn't determine the specific topic of your question based on keywords. " +
		"I can answer questions about:\n" +
		"*   **General OVGU topics** (campus, services, student life, administration)\n" +
		"*   **Faculty of Informatics (FIN)** (studies, courses, research, staff)\n" +
		"*   **City of Magdeburg** (sights, transport, events, services)\n\n" +
		"Could you please rephrase your question or specify the topic (OVGU, FIN, or Magdeburg)?"

	EmptyOutcomeReply = "Sorry, I could not generate a response."
	StuckReply        = "Sorry, the process took too long or got stuck. Please try rephrasing your question."
)

// ApologyFor is the outcome written when a topic executor fails.
func ApologyFor(topic contractx.Topic) string {
	return "An error occurred while processing your request about " + topic.String() + "."
}

// ExecutorNode maps a topic to the node that runs its agent.
func ExecutorNode(topic contractx.Topic) string {
	switch topic {
	case contractx.TopicOVGU:
		return NodeExecuteOVGU
	case contractx.TopicFIN:
		return NodeExecuteFIN
	case contractx.TopicMagdeburg:
		return NodeExecuteMagdeburg
	default:
		return NodeHandleNoMatch
	}
}

// BranchTargets lists every node decide_next may select.
func BranchTargets() map[string]bool {
	return map[string]bool{
		NodeExecuteOVGU:      true,
		NodeExecuteFIN:       true,
		NodeExecuteMagdeburg: true,
		NodeHandleNoMatch:    true,
	}
}
