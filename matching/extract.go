package matching

import (
	"sort"
	"strings"

	"learnpath/catalog"

	"go.uber.org/zap"
)

// ExtractedMatch ties a matched tag to the index term that produced it.
// Confidence is assigned purely from the term type.
type ExtractedMatch struct {
	TagID       string   `json:"tag_id"`
	MatchedTerm string   `json:"matched_term"`
	MatchType   TermType `json:"match_type"`
	Confidence  float64  `json:"confidence"`
}

// ExtractionResult is the full outcome of tag extraction for one query.
// Empty fields are valid: a query that matches nothing is a data-quality
// outcome, not an error.
type ExtractionResult struct {
	MatchedTagIDs   []string         `json:"matched_tag_ids"`
	Matches         []ExtractedMatch `json:"matches"`
	ExcludedTagIDs  []string         `json:"excluded_tag_ids"`
	NormalizedQuery string           `json:"normalized_query"`
	ExpandedTerms   []string         `json:"expanded_terms"`
	NegatedTerms    []string         `json:"negated_terms"`
}

// ExtractTags normalizes the query and walks the term index in its sorted
// order (phrases first, longer terms first). The first qualifying term wins
// per tag, so no tag appears twice. Negation is applied after matching: a
// negated word can only suppress tags it would otherwise have matched.
func (e *Engine) ExtractTags(raw string) ExtractionResult {
	result := ExtractionResult{
		MatchedTagIDs:  []string{},
		Matches:        []ExtractedMatch{},
		ExcludedTagIDs: []string{},
	}

	norm := NormalizeQuery(raw)
	result.NormalizedQuery = norm.Normalized
	result.ExpandedTerms = norm.ExpandedTerms
	result.NegatedTerms = norm.NegatedTerms
	if norm.Normalized == "" {
		return result
	}

	words := strings.Fields(norm.Normalized)
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}

	matched := make(map[string]struct{})
	for _, entry := range e.index {
		if _, done := matched[entry.TagID]; done {
			continue
		}

		var hit bool
		if entry.IsPhrase {
			hit = entry.phrasePattern.MatchString(norm.Normalized)
		} else {
			hit = matchSingleWord(entry.Term, wordSet)
		}
		if !hit {
			continue
		}

		matched[entry.TagID] = struct{}{}
		result.Matches = append(result.Matches, ExtractedMatch{
			TagID:       entry.TagID,
			MatchedTerm: entry.Term,
			MatchType:   entry.Type,
			Confidence:  termTypeConfidence[entry.Type],
		})
	}

	if len(norm.NegatedTerms) > 0 {
		kept := result.Matches[:0]
		for _, match := range result.Matches {
			if negatedTag(match.TagID, norm.NegatedTerms) {
				result.ExcludedTagIDs = append(result.ExcludedTagIDs, match.TagID)
				continue
			}
			kept = append(kept, match)
		}
		result.Matches = kept
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Confidence > result.Matches[j].Confidence
	})

	for _, match := range result.Matches {
		result.MatchedTagIDs = append(result.MatchedTagIDs, match.TagID)
	}

	e.logger.Debug("Extracted tags from query",
		zap.String("normalized", norm.Normalized),
		zap.Int("matches", len(result.Matches)),
		zap.Int("excluded", len(result.ExcludedTagIDs)))

	return result
}

// matchSingleWord tests exact word-set membership, then a depluralized
// cross-check in both directions so "blueprints" in the query still matches
// an indexed "blueprint" and vice versa.
func matchSingleWord(term string, wordSet map[string]struct{}) bool {
	if _, ok := wordSet[term]; ok {
		return true
	}
	depluralizedTerm := Depluralize(term)
	for word := range wordSet {
		if Depluralize(word) == term || word == depluralizedTerm {
			return true
		}
	}
	return false
}

// negatedTag reports whether the tag's ID suffix is textually tied to any
// negated word: the suffix contains the word or the word contains the
// suffix.
func negatedTag(tagID string, negated []string) bool {
	suffix := catalog.TagSuffix(tagID)
	for _, neg := range negated {
		if strings.Contains(suffix, neg) || strings.Contains(neg, suffix) {
			return true
		}
	}
	return false
}
