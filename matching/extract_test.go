package matching

import (
	"reflect"
	"testing"

	"learnpath/catalog"
)

func testTags() []catalog.Tag {
	return []catalog.Tag{
		{ID: "rendering.lighting", DisplayName: "Lighting", Type: "topic"},
		{
			ID:          "rendering.lumen.global_illumination",
			DisplayName: "Lumen Global Illumination",
			Type:        "system",
			Synonyms:    []string{"gi", "global illumination"},
			Signals:     catalog.Signals{ErrorSignatures: []string{"lumen scene data missing"}},
		},
		{
			ID:          "vfx.niagara",
			DisplayName: "Niagara",
			Type:        "system",
			Signals:     catalog.Signals{UITerms: []string{"niagara system"}},
		},
		{ID: "scripting.blueprint", DisplayName: "Blueprint", Type: "topic", Synonyms: []string{"visual scripting"}},
		{ID: "networking.replication", DisplayName: "Replication", Type: "topic", Synonyms: []string{"net"}},
		{ID: "assets.material", DisplayName: "Material", Type: "topic"},
		{ID: "symptom.light_flicker", DisplayName: "Light Flicker", Type: "symptom", Synonyms: []string{"flickering"}},
	}
}

func testEdges() []catalog.Edge {
	return []catalog.Edge{
		{Source: "rendering.lighting", Target: "rendering.lumen.global_illumination", Relation: catalog.RelationSubtopic, Weight: 0.8},
		{Source: "symptom.light_flicker", Target: "rendering.lumen.global_illumination", Relation: catalog.RelationSymptomOf, Weight: 0.9},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(testTags(), testEdges(), nil)
}

func TestExtractTags(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name            string
		query           string
		wantMatched     []string
		wantExcluded    []string
		wantNoMatchOnly bool
	}{
		{
			name:        "abbreviations expand into matches",
			query:       "bp setup for gi lighting",
			wantMatched: []string{"scripting.blueprint", "rendering.lighting", "rendering.lumen.global_illumination"},
		},
		{
			name:            "substring never matches a word",
			query:           "internet connection issues",
			wantNoMatchOnly: true,
		},
		{
			name:         "negation suppresses an otherwise matched tag",
			query:        "lighting not niagara",
			wantMatched:  []string{"rendering.lighting"},
			wantExcluded: []string{"vfx.niagara"},
		},
		{
			name:        "plural query word matches singular term",
			query:       "materials setup",
			wantMatched: []string{"assets.material"},
		},
		{
			name:        "error signature phrase match",
			query:       "getting lumen scene data missing in editor",
			wantMatched: []string{"rendering.lumen.global_illumination"},
		},
		{
			name:        "editor ui phrase match",
			query:       "where is the niagara system panel",
			wantMatched: []string{"vfx.niagara"},
		},
		{
			name:            "empty query",
			query:           "",
			wantNoMatchOnly: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ExtractTags(tt.query)

			if tt.wantNoMatchOnly {
				if len(got.MatchedTagIDs) != 0 {
					t.Fatalf("expected no matches, got %v", got.MatchedTagIDs)
				}
				return
			}

			if !reflect.DeepEqual(got.MatchedTagIDs, tt.wantMatched) {
				t.Errorf("MatchedTagIDs = %v, want %v", got.MatchedTagIDs, tt.wantMatched)
			}
			if len(tt.wantExcluded) > 0 && !reflect.DeepEqual(got.ExcludedTagIDs, tt.wantExcluded) {
				t.Errorf("ExcludedTagIDs = %v, want %v", got.ExcludedTagIDs, tt.wantExcluded)
			}
			if len(got.MatchedTagIDs) != len(got.Matches) {
				t.Errorf("MatchedTagIDs and Matches lengths differ: %d vs %d", len(got.MatchedTagIDs), len(got.Matches))
			}
		})
	}
}

func TestExtractTagsConfidenceOrder(t *testing.T) {
	engine := newTestEngine(t)

	got := engine.ExtractTags("bp setup for gi lighting")
	for i := 1; i < len(got.Matches); i++ {
		if got.Matches[i].Confidence > got.Matches[i-1].Confidence {
			t.Fatalf("matches not sorted by confidence: %v", got.Matches)
		}
	}
}

func TestExtractTagsNoDuplicateTags(t *testing.T) {
	engine := newTestEngine(t)

	// "gi", "global illumination", and the display name all point at the
	// same tag; it must appear once.
	got := engine.ExtractTags("gi global illumination lumen global illumination")
	seen := make(map[string]int)
	for _, id := range got.MatchedTagIDs {
		seen[id]++
	}
	if seen["rendering.lumen.global_illumination"] != 1 {
		t.Errorf("tag matched %d times, want 1", seen["rendering.lumen.global_illumination"])
	}
}

func TestExtractTagsDeterministic(t *testing.T) {
	engine := newTestEngine(t)

	query := "fixing flickering gi lighting on blueprints not niagara"
	first := engine.ExtractTags(query)
	for i := 0; i < 10; i++ {
		if got := engine.ExtractTags(query); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestMatchSingleWord(t *testing.T) {
	wordSet := map[string]struct{}{
		"blueprints": {},
		"internet":   {},
		"setup":      {},
	}

	tests := []struct {
		term string
		want bool
	}{
		{"blueprint", true},
		{"blueprints", true},
		{"net", false},
		{"setup", true},
		{"setups", true},
		{"lighting", false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := matchSingleWord(tt.term, wordSet); got != tt.want {
				t.Errorf("matchSingleWord(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}
