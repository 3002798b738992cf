package database

import (
	"context"
	"database/sql"

	apperrors "learnpath/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore persists the tag taxonomy, relation edges, course catalog,
// and retrieval passages. The matching engine never touches it: main loads
// plain collections from here (or from YAML) and hands them over.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, apperrors.WrapError(err, "open database")
	}
	if err := db.Ping(); err != nil {
		return nil, apperrors.WrapError(err, "ping database")
	}
	return &PostgresStore{DB: db}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tags (
            tag_id TEXT PRIMARY KEY,
            display_name TEXT NOT NULL,
            tag_type TEXT NOT NULL DEFAULT '',
            synonyms TEXT[] DEFAULT '{}'::TEXT[],
            aliases TEXT[] DEFAULT '{}'::TEXT[],
            ui_terms TEXT[] DEFAULT '{}'::TEXT[],
            error_signatures TEXT[] DEFAULT '{}'::TEXT[],
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS tag_edges (
            id UUID PRIMARY KEY,
            source TEXT NOT NULL REFERENCES tags(tag_id) ON DELETE CASCADE,
            target TEXT NOT NULL REFERENCES tags(tag_id) ON DELETE CASCADE,
            relation TEXT NOT NULL,
            weight DOUBLE PRECISION NOT NULL DEFAULT 0.5,
            UNIQUE (source, target, relation)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_tag_edges_source ON tag_edges(source)`,
		`CREATE INDEX IF NOT EXISTS idx_tag_edges_target ON tag_edges(target)`,
		`CREATE TABLE IF NOT EXISTS course_items (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            curated_tags TEXT[] DEFAULT '{}'::TEXT[],
            ai_tags TEXT[] DEFAULT '{}'::TEXT[],
            transcript_tags TEXT[] DEFAULT '{}'::TEXT[],
            legacy_tags JSONB DEFAULT '{}'::jsonb,
            minutes INT NOT NULL DEFAULT 0,
            unit_count INT NOT NULL DEFAULT 0
        )`,
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS passages (
            id UUID PRIMARY KEY,
            course_id TEXT REFERENCES course_items(id) ON DELETE CASCADE,
            content TEXT NOT NULL,
            embedding vector(768)
        )`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return apperrors.WrapErrorf(err, "ensure schema statement failed")
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
