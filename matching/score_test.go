package matching

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"learnpath/catalog"
)

func TestScoreCourseBreakdown(t *testing.T) {
	engine := newTestEngine(t)

	item := &catalog.CourseItem{
		ID:          "course-1",
		Title:       "Lumen Deep Dive",
		CuratedTags: []string{"global illumination"},
		AITags:      []string{"rendering.lumen.global_illumination", "lighting"},
	}

	got := engine.ScoreCourse(item, []string{"rendering.lumen.global_illumination"})

	// Exact overlap 25, curated bonus 10, one reverse subtopic hop:
	// 5 * 0.5 * 0.5 * 0.8 = 1.0.
	if got.Breakdown.DirectOverlap != 25 {
		t.Errorf("DirectOverlap = %v, want 25", got.Breakdown.DirectOverlap)
	}
	if got.Breakdown.CuratedBonus != 10 {
		t.Errorf("CuratedBonus = %v, want 10", got.Breakdown.CuratedBonus)
	}
	if math.Abs(got.Breakdown.GraphPropagation-1.0) > 1e-9 {
		t.Errorf("GraphPropagation = %v, want 1.0", got.Breakdown.GraphPropagation)
	}
	if got.Breakdown.Penalties != 0 {
		t.Errorf("Penalties = %v, want 0", got.Breakdown.Penalties)
	}
	if got.Score != 36 {
		t.Errorf("Score = %d, want 36", got.Score)
	}
	if len(got.TopContributors) != 3 {
		t.Fatalf("TopContributors = %d entries, want 3", len(got.TopContributors))
	}
	for i := 1; i < len(got.TopContributors); i++ {
		if got.TopContributors[i].Contribution > got.TopContributors[i-1].Contribution {
			t.Errorf("contributors not sorted: %+v", got.TopContributors)
		}
	}
}

func TestScoreCourseSuffixMatch(t *testing.T) {
	engine := newTestEngine(t)

	item := &catalog.CourseItem{
		ID:     "course-2",
		Title:  "Scene Lighting Workflows",
		AITags: []string{"lighting"},
	}

	got := engine.ScoreCourse(item, []string{"rendering.lighting"})
	if got.Breakdown.DirectOverlap != 15 {
		t.Errorf("DirectOverlap = %v, want suffix credit 15", got.Breakdown.DirectOverlap)
	}
	if got.Score != 15 {
		t.Errorf("Score = %d, want 15", got.Score)
	}
}

func TestScoreCourseGraphCreditCap(t *testing.T) {
	hub := catalog.Tag{ID: "topics.hub", DisplayName: "Hub"}
	tags := []catalog.Tag{hub}
	var edges []catalog.Edge
	itemTags := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("topics.node%02d", i)
		tags = append(tags, catalog.Tag{ID: id, DisplayName: fmt.Sprintf("Node %02d", i)})
		edges = append(edges, catalog.Edge{Source: "topics.hub", Target: id, Relation: catalog.RelationRelated, Weight: 1.0})
		itemTags = append(itemTags, id)
	}
	engine := NewEngine(tags, edges, nil)

	item := &catalog.CourseItem{ID: "course-3", Title: "Everything", AITags: itemTags}

	// Each neighbor is worth 5 * 0.6 * 0.5 * 1.0 = 1.5; twelve would be 18
	// uncapped, so the per-tag cap must hold the total to 15.
	got := engine.ScoreCourse(item, []string{"topics.hub"})
	if math.Abs(got.Breakdown.GraphPropagation-15) > 1e-9 {
		t.Errorf("GraphPropagation = %v, want capped 15", got.Breakdown.GraphPropagation)
	}
	if got.Score != 15 {
		t.Errorf("Score = %d, want 15", got.Score)
	}
}

func TestScoreCourseClampedToMax(t *testing.T) {
	engine := newTestEngine(t)

	queryTags := []string{
		"rendering.lighting",
		"rendering.lumen.global_illumination",
		"vfx.niagara",
		"scripting.blueprint",
		"assets.material",
	}
	item := &catalog.CourseItem{
		ID:     "course-4",
		Title:  "The Everything Course",
		AITags: queryTags,
	}

	got := engine.ScoreCourse(item, queryTags)
	if got.Score != 100 {
		t.Errorf("Score = %d, want clamped 100", got.Score)
	}
	if len(got.TopContributors) > 10 {
		t.Errorf("TopContributors = %d entries, want at most 10", len(got.TopContributors))
	}
}

func TestScoreCourseEmptyInputs(t *testing.T) {
	engine := newTestEngine(t)
	item := &catalog.CourseItem{ID: "course-5", Title: "Untagged"}

	tests := []struct {
		name      string
		item      *catalog.CourseItem
		queryTags []string
	}{
		{"nil item", nil, []string{"rendering.lighting"}},
		{"no query tags", item, nil},
		{"blank query tag", item, []string{"  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ScoreCourse(tt.item, tt.queryTags)
			if got.Score != 0 {
				t.Errorf("Score = %d, want 0", got.Score)
			}
			if len(got.TopContributors) != 0 {
				t.Errorf("TopContributors = %v, want empty", got.TopContributors)
			}
		})
	}
}

func TestScoreCourseDeterministic(t *testing.T) {
	engine := newTestEngine(t)

	item := &catalog.CourseItem{
		ID:          "course-6",
		Title:       "Lighting and Effects",
		CuratedTags: []string{"global illumination"},
		AITags:      []string{"lighting", "vfx.niagara"},
		LegacyTags:  map[string]string{"category": "rendering", "level": "advanced"},
	}
	queryTags := []string{"rendering.lumen.global_illumination", "vfx.niagara"}

	first := engine.ScoreCourse(item, queryTags)
	for i := 0; i < 10; i++ {
		if got := engine.ScoreCourse(item, queryTags); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestDirectionWeight(t *testing.T) {
	tests := []struct {
		relation string
		forward  bool
		want     float64
	}{
		{catalog.RelationSubtopic, true, 0.7},
		{catalog.RelationSubtopic, false, 0.5},
		{catalog.RelationRelated, true, 0.6},
		{catalog.RelationRelated, false, 0.6},
		{catalog.RelationSymptomOf, true, 0.8},
		{catalog.RelationReplaces, false, 0.3},
		{"made_up", true, 0.2},
		{"made_up", false, 0.1},
	}

	for _, tt := range tests {
		name := tt.relation
		if tt.forward {
			name += "/forward"
		} else {
			name += "/reverse"
		}
		t.Run(name, func(t *testing.T) {
			if got := directionWeight(tt.relation, tt.forward); got != tt.want {
				t.Errorf("directionWeight(%q, %v) = %v, want %v", tt.relation, tt.forward, got, tt.want)
			}
		})
	}
}
