package topic

import (
	"context"
	"fmt"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
	llmx "github.com/ovgu-assistant/campus-assistant/agent/llm"
	promptx "github.com/ovgu-assistant/campus-assistant/agent/prompt"
	toolx "github.com/ovgu-assistant/campus-assistant/agent/tool"
)

// Limits bounds the generation loop of every topic agent.
type Limits struct {
	ToolRetries        int `envconfig:"TOOL_RETRIES" split_words:"true" default:"1"`
	MaxGenerationSteps int `envconfig:"MAX_GENERATION_STEPS" split_words:"true" default:"4"`

	OVGUCollection      string `envconfig:"OVGU_COLLECTION" split_words:"true"`
	FINCollection       string `envconfig:"FIN_COLLECTION" split_words:"true"`
	MagdeburgCollection string `envconfig:"MAGDEBURG_COLLECTION" split_words:"true"`
}

func (l Limits) toolRetries() int {
	if l.ToolRetries < 0 {
		return defaultToolRetries
	}
	return l.ToolRetries
}

func (l Limits) maxSteps() int {
	if l.MaxGenerationSteps <= 0 {
		return defaultMaxGenerationSteps
	}
	return l.MaxGenerationSteps
}

func (l Limits) collection(topic contractx.Topic) string {
	switch topic {
	case contractx.TopicOVGU:
		return l.OVGUCollection
	case contractx.TopicFIN:
		return l.FINCollection
	case contractx.TopicMagdeburg:
		return l.MagdeburgCollection
	default:
		return ""
	}
}

type registryImpl struct {
	agents map[contractx.Topic]contractx.TopicAgent
}

func (r *registryImpl) Agent(topic contractx.Topic) (contractx.TopicAgent, bool) {
	a, ok := r.agents[topic]
	return a, ok
}

// NewRegistry builds the three topic agents once. The result is read-only and safe
// to share across sessions.
func NewRegistry(ctx context.Context, cfg llmx.Config, limits Limits) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()
	agents := make(map[contractx.Topic]contractx.TopicAgent, len(contractx.Topics))
	for _, topic := range contractx.Topics {
		modelCfg := cfg.OpenAIFor(topic)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for topic=%s: %v", contractx.ErrModelInvoke, topic, err)
		}

		systemPrompt, err := prompts.For(topic)
		if err != nil {
			return nil, err
		}
		binding, err := toolx.BindingFor(topic, limits.collection(topic))
		if err != nil {
			return nil, err
		}

		agent, err := newAgent(ctx, topic, chatModel, systemPrompt, binding, limits)
		if err != nil {
			return nil, err
		}
		agents[topic] = agent
	}

	return &registryImpl{agents: agents}, nil
}
