package retrieval

import (
	"context"

	"learnpath/database"
	apperrors "learnpath/errors"
	"learnpath/matching"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// Store searches stored passages by cosine similarity against the query
// embedding. Similarity arrives precomputed at the confidence router, which
// treats retrieval quality as advisory only.
type Store struct {
	db       *database.PostgresStore
	embedder *EmbeddingClient
	logger   *zap.Logger
}

func NewStore(db *database.PostgresStore, embedder *EmbeddingClient, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, embedder: embedder, logger: logger}
}

// Search embeds the query and returns the most similar passages. Failures
// degrade to an empty passage set with a warning: the router then simply
// scores lower, which is the intended behavior for missing context.
func (s *Store) Search(ctx context.Context, query string, limit int) []matching.Passage {
	if s.db == nil || s.embedder == nil || limit <= 0 {
		return nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("Query embedding failed, skipping passage retrieval", zap.Error(err))
		return nil
	}

	passages, err := s.searchByVector(ctx, vector, limit)
	if err != nil {
		s.logger.Warn("Passage search failed, continuing without passages", zap.Error(err))
		return nil
	}
	return passages
}

func (s *Store) searchByVector(ctx context.Context, vector []float32, limit int) ([]matching.Passage, error) {
	query := `
        SELECT content, 1 - (embedding <=> $1) AS similarity
        FROM passages
        WHERE embedding IS NOT NULL
        ORDER BY embedding <=> $1
        LIMIT $2
    `
	rows, err := s.db.DB.QueryContext(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, apperrors.WrapError(err, "query passages")
	}
	defer rows.Close()

	var passages []matching.Passage
	for rows.Next() {
		var p matching.Passage
		if err := rows.Scan(&p.Content, &p.Similarity); err != nil {
			return nil, apperrors.WrapError(err, "scan passage row")
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.WrapError(err, "iterate passage rows")
	}
	return passages, nil
}
