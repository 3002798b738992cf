package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"learnpath/catalog"
	apperrors "learnpath/errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UpsertTag stores or updates one taxonomy tag.
func (s *PostgresStore) UpsertTag(ctx context.Context, tag catalog.Tag) error {
	aliases := make([]string, 0, len(tag.Aliases))
	for _, a := range tag.Aliases {
		aliases = append(aliases, a.Value)
	}

	query := `
        INSERT INTO tags (tag_id, display_name, tag_type, synonyms, aliases, ui_terms, error_signatures)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (tag_id)
        DO UPDATE SET display_name = EXCLUDED.display_name, tag_type = EXCLUDED.tag_type,
            synonyms = EXCLUDED.synonyms, aliases = EXCLUDED.aliases,
            ui_terms = EXCLUDED.ui_terms, error_signatures = EXCLUDED.error_signatures
    `
	_, err := s.DB.ExecContext(ctx, query,
		tag.ID, tag.DisplayName, tag.Type,
		pq.Array(tag.Synonyms), pq.Array(aliases),
		pq.Array(tag.Signals.UITerms), pq.Array(tag.Signals.ErrorSignatures))
	if err != nil {
		return apperrors.WrapErrorf(err, "upsert tag %s", tag.ID)
	}
	return nil
}

// UpsertEdge stores or updates one relation edge.
func (s *PostgresStore) UpsertEdge(ctx context.Context, edge catalog.Edge) error {
	query := `
        INSERT INTO tag_edges (id, source, target, relation, weight)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (source, target, relation)
        DO UPDATE SET weight = EXCLUDED.weight
    `
	_, err := s.DB.ExecContext(ctx, query, uuid.New(), edge.Source, edge.Target, edge.Relation, edge.Weight)
	if err != nil {
		return apperrors.WrapErrorf(err, "upsert edge %s -> %s", edge.Source, edge.Target)
	}
	return nil
}

// UpsertCourseItem stores or updates one catalog entry.
func (s *PostgresStore) UpsertCourseItem(ctx context.Context, item catalog.CourseItem) error {
	legacyJSON, err := json.Marshal(item.LegacyTags)
	if err != nil {
		return apperrors.WrapErrorf(err, "marshal legacy tags for %s", item.ID)
	}

	query := `
        INSERT INTO course_items (id, title, curated_tags, ai_tags, transcript_tags, legacy_tags, minutes, unit_count)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id)
        DO UPDATE SET title = EXCLUDED.title, curated_tags = EXCLUDED.curated_tags,
            ai_tags = EXCLUDED.ai_tags, transcript_tags = EXCLUDED.transcript_tags,
            legacy_tags = EXCLUDED.legacy_tags, minutes = EXCLUDED.minutes, unit_count = EXCLUDED.unit_count
    `
	_, err = s.DB.ExecContext(ctx, query,
		item.ID, item.Title,
		pq.Array(item.CuratedTags), pq.Array(item.AITags), pq.Array(item.TranscriptTags),
		string(legacyJSON), item.Minutes, item.UnitCount)
	if err != nil {
		return apperrors.WrapErrorf(err, "upsert course item %s", item.ID)
	}
	return nil
}

// LoadTaxonomy reads the full tag and edge sets. The result has the same
// shape the YAML loader produces, so the engine is indifferent to source.
func (s *PostgresStore) LoadTaxonomy(ctx context.Context) ([]catalog.Tag, []catalog.Edge, error) {
	tagRows, err := s.DB.QueryContext(ctx,
		`SELECT tag_id, display_name, tag_type, synonyms, aliases, ui_terms, error_signatures FROM tags ORDER BY tag_id`)
	if err != nil {
		return nil, nil, apperrors.WrapError(err, "query tags")
	}
	defer tagRows.Close()

	var tags []catalog.Tag
	for tagRows.Next() {
		var tag catalog.Tag
		var aliases []string
		err := tagRows.Scan(&tag.ID, &tag.DisplayName, &tag.Type,
			pq.Array(&tag.Synonyms), pq.Array(&aliases),
			pq.Array(&tag.Signals.UITerms), pq.Array(&tag.Signals.ErrorSignatures))
		if err != nil {
			return nil, nil, apperrors.WrapError(err, "scan tag row")
		}
		for _, a := range aliases {
			tag.Aliases = append(tag.Aliases, catalog.Alias{Value: a})
		}
		tags = append(tags, tag)
	}
	if err := tagRows.Err(); err != nil {
		return nil, nil, apperrors.WrapError(err, "iterate tag rows")
	}

	edgeRows, err := s.DB.QueryContext(ctx,
		`SELECT source, target, relation, weight FROM tag_edges ORDER BY source, target, relation`)
	if err != nil {
		return nil, nil, apperrors.WrapError(err, "query tag edges")
	}
	defer edgeRows.Close()

	var edges []catalog.Edge
	for edgeRows.Next() {
		var edge catalog.Edge
		if err := edgeRows.Scan(&edge.Source, &edge.Target, &edge.Relation, &edge.Weight); err != nil {
			return nil, nil, apperrors.WrapError(err, "scan edge row")
		}
		edges = append(edges, edge)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, nil, apperrors.WrapError(err, "iterate edge rows")
	}

	return tags, edges, nil
}

// LoadCatalog reads all course items.
func (s *PostgresStore) LoadCatalog(ctx context.Context) ([]catalog.CourseItem, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, curated_tags, ai_tags, transcript_tags, legacy_tags, minutes, unit_count
         FROM course_items ORDER BY id`)
	if err != nil {
		return nil, apperrors.WrapError(err, "query course items")
	}
	defer rows.Close()

	var items []catalog.CourseItem
	for rows.Next() {
		var item catalog.CourseItem
		var legacyJSON []byte
		err := rows.Scan(&item.ID, &item.Title,
			pq.Array(&item.CuratedTags), pq.Array(&item.AITags), pq.Array(&item.TranscriptTags),
			&legacyJSON, &item.Minutes, &item.UnitCount)
		if err != nil {
			return nil, apperrors.WrapError(err, "scan course item row")
		}
		if len(legacyJSON) > 0 {
			if err := json.Unmarshal(legacyJSON, &item.LegacyTags); err != nil {
				return nil, apperrors.WrapErrorf(err, "unmarshal legacy tags for %s", item.ID)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.WrapError(err, "iterate course item rows")
	}
	return items, nil
}

// CourseItemByID fetches a single catalog entry.
func (s *PostgresStore) CourseItemByID(ctx context.Context, id string) (*catalog.CourseItem, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, title, curated_tags, ai_tags, transcript_tags, legacy_tags, minutes, unit_count
         FROM course_items WHERE id = $1`, id)

	var item catalog.CourseItem
	var legacyJSON []byte
	err := row.Scan(&item.ID, &item.Title,
		pq.Array(&item.CuratedTags), pq.Array(&item.AITags), pq.Array(&item.TranscriptTags),
		&legacyJSON, &item.Minutes, &item.UnitCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapErrorf(err, "fetch course item %s", id)
	}
	if len(legacyJSON) > 0 {
		if err := json.Unmarshal(legacyJSON, &item.LegacyTags); err != nil {
			return nil, apperrors.WrapErrorf(err, "unmarshal legacy tags for %s", id)
		}
	}
	return &item, nil
}
