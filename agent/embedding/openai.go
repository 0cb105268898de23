package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

var (
	_ contractx.Embedder     = (*OpenAIEmbedder)(nil)
	_ einoembedding.Embedder = (*OpenAIEmbedder)(nil)
)

// OpenAIEmbedder embeds text with the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	client     *openaisdk.Client
	model      string
	dimensions int
}

func NewOpenAI(client *openaisdk.Client, model string, dimensions int) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:     client,
		model:      strings.TrimSpace(model),
		dimensions: dimensions,
	}
}

// Embed returns the query vector, or an all-zero vector when the input is blank or
// the backend fails. A zero vector makes the downstream search predictably weak
// instead of failing the turn.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) []float32 {
	normalized := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if normalized == "" {
		log.Warn().Msg("embedding: empty text, returning zero vector")
		return e.zero()
	}

	vectors, err := e.EmbedStrings(ctx, []string{normalized})
	if err != nil {
		log.Error().Err(err).Str("text", truncate(normalized, 50)).Msg("embedding: request failed, returning zero vector")
		return e.zero()
	}
	if len(vectors[0]) != e.dimensions {
		log.Error().Int("got", len(vectors[0])).Int("want", e.dimensions).Msg("embedding: unexpected dimensions, returning zero vector")
		return e.zero()
	}

	out := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		out[i] = float32(v)
	}
	return out
}

func (e *OpenAIEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...einoembedding.Option) ([][]float64, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: openai client", contractx.ErrMissingDependency)
	}
	if len(texts) == 0 {
		return nil, errors.New("no texts to embed")
	}

	params := openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openaisdk.EmbeddingModel(e.model),
	}
	// Only the text-embedding-3 family accepts an explicit output size.
	if strings.HasPrefix(e.model, "text-embedding-3") && e.dimensions > 0 {
		params.Dimensions = openaisdk.Int(int64(e.dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("embeddings response index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (e *OpenAIEmbedder) zero() []float32 {
	return make([]float32, e.dimensions)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
