package contract

import "context"

// Embedder turns text into a fixed-length vector. Implementations degrade to a zero
// vector instead of failing the caller.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

type Retriever interface {
	Search(ctx context.Context, collection string, vector []float32, k int) ([]Chunk, error)
}

// AgentDeps are the per-invocation handles a topic agent needs. Either field may be
// nil; the retrieval tool reports the missing one instead of failing.
type AgentDeps struct {
	Embedder  Embedder
	Retriever Retriever
}

// DepsProvider builds fresh handles for one executor invocation.
type DepsProvider interface {
	Acquire(ctx context.Context, topic Topic) (AgentDeps, error)
}

type TopicAgent interface {
	Topic() Topic
	Answer(ctx context.Context, query string, deps AgentDeps) (string, error)
}

type Registry interface {
	Agent(topic Topic) (TopicAgent, bool)
}

// Recorder receives orchestration measurements. A nil Recorder is never passed to
// nodes; the orchestrator substitutes a no-op.
type Recorder interface {
	ObserveRoute(topic Topic)
	ObserveTurn(topic Topic, failed bool)
	ObserveAgent(topic Topic, seconds float64, failed bool)
}
