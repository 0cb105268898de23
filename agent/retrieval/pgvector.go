package retrieval

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
)

var collectionPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// chunkRow mirrors the columns the ingestion pipeline writes into each collection table.
type chunkRow struct {
	URL      string         `bun:"url"`
	Content  string         `bun:"content"`
	Metadata map[string]any `bun:"metadata,type:jsonb"`
}

// PGVectorRetriever runs nearest-neighbour search over pgvector collection tables,
// ordered by cosine distance.
type PGVectorRetriever struct {
	db bun.IDB
}

var _ contractx.Retriever = (*PGVectorRetriever)(nil)

func NewPGVector(db bun.IDB) *PGVectorRetriever {
	return &PGVectorRetriever{db: db}
}

func (r *PGVectorRetriever) Search(ctx context.Context, collection string, vector []float32, k int) ([]contractx.Chunk, error) {
	q, err := r.query(collection, vector, k)
	if err != nil {
		return nil, err
	}
	// Cosine distance to a zero vector is NaN, which would order rows arbitrarily.
	if isZero(vector) {
		return nil, nil
	}

	var rows []chunkRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: collection=%s: %v", contractx.ErrRetrieval, collection, err)
	}

	chunks := make([]contractx.Chunk, 0, len(rows))
	for _, row := range rows {
		chunks = append(chunks, contractx.Chunk{
			URL:      row.URL,
			Content:  row.Content,
			Metadata: row.Metadata,
		})
	}
	return chunks, nil
}

func (r *PGVectorRetriever) query(collection string, vector []float32, k int) (*bun.SelectQuery, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("%w: vector store handle", contractx.ErrMissingDependency)
	}
	if !collectionPattern.MatchString(collection) {
		return nil, fmt.Errorf("%w: invalid collection name %q", contractx.ErrValidation, collection)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be > 0", contractx.ErrValidation)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", contractx.ErrValidation)
	}

	return r.db.NewSelect().
		TableExpr("?", bun.Ident(collection)).
		ColumnExpr("url, content, metadata").
		OrderExpr("embedding <=> ?", pgvector.NewVector(vector)).
		Limit(k), nil
}

func isZero(vector []float32) bool {
	for _, v := range vector {
		if v != 0 {
			return false
		}
	}
	return true
}
