package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

const (
	DefaultTopK    = 7
	chunkSeparator = "\n\n---\n\n"
)

type ResultKind int

const (
	ResultContext ResultKind = iota
	ResultNotFound
	ResultMissingDependency
	ResultRetrievalError
)

// Result is what one retrieval call produced. Text is always safe to hand to the
// generation backend or to the user.
type Result struct {
	Kind   ResultKind
	Text   string
	Chunks int
}

// Terminal reports whether the result ends the agent run without generation.
func (r Result) Terminal() bool {
	return r.Kind != ResultContext
}

type retrieveArgs struct {
	UserQuery string `json:"user_query"`
}

// Retrieval is the documentation lookup tool of one topic agent.
type Retrieval struct {
	binding Binding
	deps    contractx.AgentDeps
	topK    int
}

var _ einotool.InvokableTool = (*Retrieval)(nil)

func NewRetrieval(binding Binding, deps contractx.AgentDeps) *Retrieval {
	return &Retrieval{
		binding: binding,
		deps:    deps,
		topK:    DefaultTopK,
	}
}

func (r *Retrieval) Name() string {
	return r.binding.ToolName
}

func (r *Retrieval) Info(_ context.Context) (*schema.ToolInfo, error) {
	return r.binding.ToolInfo(), nil
}

// InvokableRun serves tool calls issued by the generation backend. Malformed arguments
// are returned as errors so the agent can spend its retry budget on them.
func (r *Retrieval) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...einotool.Option) (string, error) {
	var args retrieveArgs
	raw := strings.TrimSpace(argumentsInJSON)
	if raw == "" {
		return "", fmt.Errorf("%w: tool=%s arguments are empty", contractx.ErrSchemaViolation, r.binding.ToolName)
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return "", fmt.Errorf("%w: invalid args for tool=%s: %v", contractx.ErrSchemaViolation, r.binding.ToolName, err)
	}
	if strings.TrimSpace(args.UserQuery) == "" {
		return "", fmt.Errorf("%w: tool=%s requires user_query", contractx.ErrSchemaViolation, r.binding.ToolName)
	}
	return r.Retrieve(ctx, args.UserQuery).Text, nil
}

// Retrieve embeds the query, searches the topic collection and formats the chunks.
// It never returns an error: failures become user-safe text with a non-context Kind.
func (r *Retrieval) Retrieve(ctx context.Context, query string) Result {
	logger := log.With().Str("topic", r.binding.Topic.String()).Str("tool", r.binding.ToolName).Logger()

	if r.deps.Embedder == nil {
		logger.Error().Err(contractx.ErrMissingDependency).Msg("tool: embedding client missing")
		return Result{Kind: ResultMissingDependency, Text: "Error: Agent configuration issue (embedding client missing)."}
	}
	if r.deps.Retriever == nil {
		logger.Error().Err(contractx.ErrMissingDependency).Msg("tool: retrieval client missing")
		return Result{Kind: ResultMissingDependency, Text: "Error: Agent configuration issue (retrieval client missing)."}
	}

	vector := r.deps.Embedder.Embed(ctx, query)
	chunks, err := r.deps.Retriever.Search(ctx, r.binding.Collection, vector, r.topK)
	if err != nil {
		logger.Error().Err(err).Str("collection", r.binding.Collection).Msg("tool: retrieval failed")
		return Result{Kind: ResultRetrievalError, Text: r.binding.RetrievalErrorText()}
	}
	if len(chunks) == 0 {
		logger.Info().Msg("tool: no relevant documentation found")
		return Result{Kind: ResultNotFound, Text: r.binding.NotFoundText()}
	}

	logger.Info().Int("chunks", len(chunks)).Msg("tool: documentation retrieved")
	return Result{Kind: ResultContext, Text: FormatChunks(chunks), Chunks: len(chunks)}
}

// FormatChunks renders chunks as Source/Content blocks joined by a visible separator.
func FormatChunks(chunks []contractx.Chunk) string {
	blocks := make([]string, 0, len(chunks))
	for _, c := range chunks {
		url := strings.TrimSpace(c.URL)
		if url == "" {
			url = "N/A"
		}
		content := c.Content
		if strings.TrimSpace(content) == "" {
			content = "N/A"
		}

		pageInfo := ""
		if page, ok := c.PDFPage(); ok {
			pageInfo = fmt.Sprintf(" (Page %d)", page)
		}
		blocks = append(blocks, fmt.Sprintf("**Source**: %s%s\n**Content**:\n%s", url, pageInfo, content))
	}
	return strings.Join(blocks, chunkSeparator)
}
