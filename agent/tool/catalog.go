package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

// Binding ties a topic to its collection and tool identity.
type Binding struct {
	Topic      contractx.Topic
	Collection string
	ToolName   string
	Label      string
	Desc       string
}

var bindings = map[contractx.Topic]Binding{
	contractx.TopicOVGU: {
		Topic:      contractx.TopicOVGU,
		Collection: "ovgu_pages",
		ToolName:   "retrieve_ovgu_documentation",
		Label:      "OVGU",
		Desc:       "Retrieve documentation chunks about Otto von Guericke University (OVGU): campus, services, student life and administration.",
	},
	contractx.TopicFIN: {
		Topic:      contractx.TopicFIN,
		Collection: "fin_pages",
		ToolName:   "retrieve_fin_documentation",
		Label:      "FIN",
		Desc:       "Retrieve documentation chunks about the Faculty of Informatics (FIN) at OVGU: studies, courses, research and staff.",
	},
	contractx.TopicMagdeburg: {
		Topic:      contractx.TopicMagdeburg,
		Collection: "magdeburg_pages",
		ToolName:   "retrieve_magdeburg_documentation",
		Label:      "Magdeburg",
		Desc:       "Retrieve information chunks about the city of Magdeburg: sights, transport, events and services.",
	},
}

// BindingFor returns the tool binding of a topic, with the collection optionally
// overridden (empty keeps the default).
func BindingFor(topic contractx.Topic, collection string) (Binding, error) {
	b, ok := bindings[topic]
	if !ok {
		return Binding{}, fmt.Errorf("%w: no retrieval tool for topic=%s", contractx.ErrValidation, topic)
	}
	if collection != "" {
		b.Collection = collection
	}
	return b, nil
}

func (b Binding) ToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: b.ToolName,
		Desc: b.Desc,
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"user_query": {Type: schema.String, Desc: "The user's question, or a rephrased search query", Required: true},
		}),
	}
}

func (b Binding) NotFoundText() string {
	return fmt.Sprintf("I could not find specific information about that topic in the %s documentation.", b.Label)
}

func (b Binding) RetrievalErrorText() string {
	return fmt.Sprintf("An error occurred while retrieving %s documentation.", b.Label)
}

// Executor runs one tool call by name with raw JSON arguments.
type Executor func(ctx context.Context, tool string, argumentsInJSON string) (string, error)

func NewExecutor(retrieval *Retrieval) Executor {
	return func(ctx context.Context, tool string, argumentsInJSON string) (string, error) {
		if tool != retrieval.Name() {
			return "", fmt.Errorf("%w: tool=%s is not available for topic=%s", contractx.ErrSchemaViolation, tool, retrieval.binding.Topic)
		}
		return retrieval.InvokableRun(ctx, argumentsInJSON)
	}
}
