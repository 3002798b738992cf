package matching

import (
	"regexp"
	"sort"
	"strings"

	"learnpath/catalog"
)

// TermType identifies which part of a tag a term was indexed from. It
// determines match confidence: error signatures are the most trustworthy
// signal, editor UI terms the least.
type TermType string

const (
	TermErrorSig    TermType = "error_sig"
	TermDisplayName TermType = "display_name"
	TermSynonym     TermType = "synonym"
	TermTagIDSuffix TermType = "tag_id_suffix"
	TermAlias       TermType = "alias"
	TermUITerm      TermType = "ui_term"
)

// termTypeConfidence is the fixed confidence table. Confidence depends only
// on the term type; there is no partial credit for fuzzy distance.
var termTypeConfidence = map[TermType]float64{
	TermErrorSig:    0.95,
	TermDisplayName: 0.9,
	TermSynonym:     0.8,
	TermTagIDSuffix: 0.7,
	TermAlias:       0.6,
	TermUITerm:      0.5,
}

// TermIndexEntry maps one matchable text fragment back to its tag. Phrase
// entries carry a precompiled word-boundary pattern.
type TermIndexEntry struct {
	Term     string
	TagID    string
	Type     TermType
	IsPhrase bool

	phrasePattern *regexp.Regexp
}

// BuildTermIndex flattens a tag set into a sorted term index. Every tag
// contributes its display name, tag-id suffix, synonyms, aliases, UI terms,
// and error signatures, plus the depluralized variant of each term when it
// differs. Terms under 2 characters are dropped. Entries sort phrase-first,
// then longer-first, so the most specific term wins ties during extraction.
func BuildTermIndex(tags []catalog.Tag) []TermIndexEntry {
	var entries []TermIndexEntry

	for _, tag := range tags {
		seen := make(map[string]struct{})
		add := func(raw string, termType TermType) {
			term := strings.ToLower(strings.TrimSpace(raw))
			if len(term) < 2 {
				return
			}
			if _, dup := seen[term]; dup {
				return
			}
			seen[term] = struct{}{}

			entry := TermIndexEntry{
				Term:     term,
				TagID:    tag.ID,
				Type:     termType,
				IsPhrase: strings.Contains(term, " "),
			}
			if entry.IsPhrase {
				entry.phrasePattern = compilePhrasePattern(term)
			}
			entries = append(entries, entry)
		}
		addWithVariant := func(raw string, termType TermType) {
			add(raw, termType)
			term := strings.ToLower(strings.TrimSpace(raw))
			if variant := Depluralize(term); variant != term {
				add(variant, termType)
			}
		}

		addWithVariant(tag.DisplayName, TermDisplayName)
		addWithVariant(tag.Suffix(), TermTagIDSuffix)
		for _, syn := range tag.Synonyms {
			addWithVariant(syn, TermSynonym)
		}
		for _, alias := range tag.Aliases {
			addWithVariant(alias.Value, TermAlias)
		}
		for _, term := range tag.Signals.UITerms {
			addWithVariant(term, TermUITerm)
		}
		for _, sig := range tag.Signals.ErrorSignatures {
			addWithVariant(sig, TermErrorSig)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsPhrase != entries[j].IsPhrase {
			return entries[i].IsPhrase
		}
		if len(entries[i].Term) != len(entries[j].Term) {
			return len(entries[i].Term) > len(entries[j].Term)
		}
		if entries[i].Term != entries[j].Term {
			return entries[i].Term < entries[j].Term
		}
		return entries[i].TagID < entries[j].TagID
	})

	return entries
}

// compilePhrasePattern builds a whole-phrase matcher anchored on whitespace
// or string edges. \b is unreliable here because indexed terms may end in
// non-word characters ("c++", "5.3").
func compilePhrasePattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|\s)` + regexp.QuoteMeta(term) + `(?:\s|$)`)
}
