package topic

import (
	"context"

	"github.com/uptrace/bun"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
	embeddingx "github.com/ovgu-assistant/campus-assistant/agent/embedding"
	llmx "github.com/ovgu-assistant/campus-assistant/agent/llm"
	retrievalx "github.com/ovgu-assistant/campus-assistant/agent/retrieval"
	openaix "github.com/ovgu-assistant/campus-assistant/pkg/openaicompat"
)

// DepsProvider hands each executor a fresh embedding client and a retriever over
// the shared connection pool.
type DepsProvider struct {
	cfg llmx.Config
	db  bun.IDB
}

var _ contractx.DepsProvider = (*DepsProvider)(nil)

// NewDepsProvider accepts a nil db; agents then answer with the missing
// retrieval client message.
func NewDepsProvider(cfg llmx.Config, db bun.IDB) *DepsProvider {
	return &DepsProvider{cfg: cfg, db: db}
}

func (p *DepsProvider) Acquire(_ context.Context, _ contractx.Topic) (contractx.AgentDeps, error) {
	var deps contractx.AgentDeps

	if client := openaix.NewClient(p.cfg.Embedding()); client != nil {
		deps.Embedder = embeddingx.NewOpenAI(client, p.cfg.EmbeddingModel, p.cfg.EmbeddingDimensions)
	}
	if p.db != nil {
		deps.Retriever = retrievalx.NewPGVector(p.db)
	}
	return deps, nil
}
