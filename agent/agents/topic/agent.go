package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
	toolx "github.com/ovgu-assistant/campus-assistant/agent/tool"
)

const (
	defaultToolRetries        = 1
	defaultMaxGenerationSteps = 4
)

type agentImpl struct {
	topic        contractx.Topic
	binding      toolx.Binding
	systemPrompt string
	runner       compose.Runnable[[]*schema.Message, *schema.Message]
	toolRetries  int
	maxSteps     int
}

var _ contractx.TopicAgent = (*agentImpl)(nil)

func newAgent(
	ctx context.Context,
	topic contractx.Topic,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	binding toolx.Binding,
	limits Limits,
) (*agentImpl, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: topic=%s", contractx.ErrPromptMissing, topic)
	}

	toolModel, err := chatModel.WithTools([]*schema.ToolInfo{binding.ToolInfo()})
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for topic=%s: %v", contractx.ErrModelInvoke, topic, err)
	}
	runner, err := compileGenerationGraph(ctx, toolModel, "topic."+strings.ToLower(topic.String())+".generation_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile generation graph for topic=%s: %v", contractx.ErrModelInvoke, topic, err)
	}

	return &agentImpl{
		topic:        topic,
		binding:      binding,
		systemPrompt: systemPrompt,
		runner:       runner,
		toolRetries:  limits.toolRetries(),
		maxSteps:     limits.maxSteps(),
	}, nil
}

func (a *agentImpl) Topic() contractx.Topic {
	return a.topic
}

// Answer retrieves context for the query and lets the model compose a grounded reply.
// Terminal retrieval outcomes (missing handle, nothing found, backend failure) are
// returned as the answer without calling the model.
func (a *agentImpl) Answer(ctx context.Context, query string, deps contractx.AgentDeps) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: query is empty", contractx.ErrValidation)
	}

	logger := log.With().Str("topic", a.topic.String()).Logger()

	retrieval := toolx.NewRetrieval(a.binding, deps)
	first := retrieval.Retrieve(ctx, query)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if first.Terminal() {
		logger.Info().Int("kind", int(first.Kind)).Msg("agent: retrieval ended the run")
		return first.Text, nil
	}

	messages, err := a.seedMessages(query, first.Text)
	if err != nil {
		return "", err
	}

	execute := toolx.NewExecutor(retrieval)
	failures := 0
	for step := 0; step < a.maxSteps; step++ {
		msg, err := a.runner.Invoke(ctx, messages)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", fmt.Errorf("%w: topic=%s: %v", contractx.ErrModelInvoke, a.topic, err)
		}
		if msg == nil {
			return "", fmt.Errorf("%w: topic=%s: empty model response", contractx.ErrSchemaViolation, a.topic)
		}

		if len(msg.ToolCalls) == 0 {
			content := strings.TrimSpace(msg.Content)
			if content == "" {
				return "", fmt.Errorf("%w: topic=%s: answer is empty", contractx.ErrSchemaViolation, a.topic)
			}
			logger.Debug().Int("steps", step+1).Msg("agent: answer generated")
			return content, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			out, err := execute(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				failures++
				logger.Warn().Err(err).Str("tool", call.Function.Name).Int("failures", failures).Msg("agent: tool call failed")
				if failures > a.toolRetries {
					return "", fmt.Errorf("%w: topic=%s: %v", contractx.ErrToolRetriesExceeded, a.topic, err)
				}
				out = fmt.Sprintf("Tool call failed: %v. Call %s with a JSON object containing a non-empty \"user_query\".", err, a.binding.ToolName)
			}
			messages = append(messages, schema.ToolMessage(out, call.ID))
		}
	}

	return "", fmt.Errorf("%w: topic=%s: no answer after %d generation steps", contractx.ErrModelInvoke, a.topic, a.maxSteps)
}

// seedMessages replays the first retrieval as if the model had requested it.
func (a *agentImpl) seedMessages(query, retrieved string) ([]*schema.Message, error) {
	args, err := json.Marshal(map[string]string{"user_query": query})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal tool arguments: %v", contractx.ErrValidation, err)
	}

	callID := "call_" + uuid.NewString()
	return []*schema.Message{
		schema.SystemMessage(a.systemPrompt),
		schema.UserMessage(query),
		schema.AssistantMessage("", []schema.ToolCall{
			{
				ID:   callID,
				Type: "function",
				Function: schema.FunctionCall{
					Name:      a.binding.ToolName,
					Arguments: string(args),
				},
			},
		}),
		schema.ToolMessage(retrieved, callID),
	}, nil
}
