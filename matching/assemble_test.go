package matching

import (
	"testing"

	"learnpath/catalog"
)

func scoredFixture() []ScoredCourse {
	intro := &catalog.CourseItem{
		ID:      "intro-lighting",
		Title:   "Introduction to Lighting",
		AITags:  []string{"lighting"},
		Minutes: 30,
	}
	core := &catalog.CourseItem{
		ID:      "advanced-lumen",
		Title:   "Advanced Lumen",
		AITags:  []string{"rendering.lumen.global_illumination"},
		Minutes: 45,
	}
	troubleshooting := &catalog.CourseItem{
		ID:      "fix-flicker",
		Title:   "Fixing Light Flicker",
		AITags:  []string{"symptom.light_flicker"},
		Minutes: 30,
	}
	supplemental := &catalog.CourseItem{
		ID:      "audio-overview",
		Title:   "Audio Mixing Overview",
		AITags:  []string{"audio"},
		Minutes: 30,
	}

	return []ScoredCourse{
		{Item: intro, Relevance: RelevanceResult{Score: 80}},
		{Item: core, Relevance: RelevanceResult{Score: 90}},
		{Item: troubleshooting, Relevance: RelevanceResult{Score: 60}},
		{Item: supplemental, Relevance: RelevanceResult{Score: 20}},
	}
}

func pathIDs(steps []PathStep) []string {
	ids := make([]string, 0, len(steps))
	for _, step := range steps {
		ids = append(ids, step.Item.ID)
	}
	return ids
}

func TestAssemblePathRoles(t *testing.T) {
	engine := newTestEngine(t)

	steps := engine.AssemblePath(scoredFixture(), nil, PathConfig{})
	if len(steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(steps))
	}

	wantRoles := map[string]PathRole{
		"intro-lighting": RolePrerequisite,
		"advanced-lumen": RoleCore,
		"fix-flicker":    RoleTroubleshooting,
		"audio-overview": RoleSupplemental,
	}
	for _, step := range steps {
		if want := wantRoles[step.Item.ID]; step.Role != want {
			t.Errorf("%s role = %s, want %s", step.Item.ID, step.Role, want)
		}
		if step.Reason == "" {
			t.Errorf("%s has no reason", step.Item.ID)
		}
	}

	// Output groups prerequisite, core, troubleshooting, supplemental.
	for i := 1; i < len(steps); i++ {
		if steps[i].Role < steps[i-1].Role {
			t.Errorf("roles out of order: %s before %s", steps[i-1].Role, steps[i].Role)
		}
	}
}

func TestAssemblePathBudget(t *testing.T) {
	engine := newTestEngine(t)

	steps := engine.AssemblePath(scoredFixture(), nil, PathConfig{TimeBudgetMinutes: 70})

	total := 0
	for _, step := range steps {
		total += step.EstimatedMinutes
	}
	if total > 70 {
		t.Fatalf("path uses %d minutes, budget is 70", total)
	}

	// The 45-minute core item no longer fits after the prerequisite, so the
	// cheaper troubleshooting item takes its slot.
	want := []string{"intro-lighting", "fix-flicker"}
	got := pathIDs(steps)
	if len(got) != len(want) {
		t.Fatalf("path = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("path = %v, want %v", got, want)
		}
	}
}

func TestAssemblePathMaxItems(t *testing.T) {
	engine := newTestEngine(t)

	steps := engine.AssemblePath(scoredFixture(), nil, PathConfig{MaxItems: 2})
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	got := pathIDs(steps)
	if got[0] != "intro-lighting" || got[1] != "advanced-lumen" {
		t.Errorf("path = %v, want prerequisite then best core", got)
	}
}

func TestAssemblePathDiversity(t *testing.T) {
	engine := newTestEngine(t)

	first := &catalog.CourseItem{
		ID:     "shaders-intro",
		Title:  "Introduction to Shaders",
		AITags: []string{"shaders", "materials"},
	}
	overlapping := &catalog.CourseItem{
		ID:     "shader-graphs",
		Title:  "Shader Graphs",
		AITags: []string{"shaders", "materials"},
	}
	fresh := &catalog.CourseItem{
		ID:     "shader-performance",
		Title:  "Shader Performance",
		AITags: []string{"profiling", "optimization"},
	}
	scored := []ScoredCourse{
		{Item: first, Relevance: RelevanceResult{Score: 80}},
		{Item: overlapping, Relevance: RelevanceResult{Score: 50}},
		{Item: fresh, Relevance: RelevanceResult{Score: 50}},
	}

	steps := engine.AssemblePath(scored, nil, PathConfig{Diversity: true})
	got := pathIDs(steps)
	if len(got) != 3 {
		t.Fatalf("steps = %d, want 3", len(got))
	}
	// With diversity on, the tied candidate covering new tags wins the
	// second slot.
	if got[1] != "shader-performance" {
		t.Errorf("path = %v, want shader-performance in second place", got)
	}

	steps = engine.AssemblePath(scored, nil, PathConfig{})
	got = pathIDs(steps)
	if got[1] != "shader-graphs" {
		t.Errorf("without diversity path = %v, want listed order kept", got)
	}
}

func TestAssemblePathParentTopicPrerequisite(t *testing.T) {
	engine := newTestEngine(t)

	parent := &catalog.CourseItem{
		ID:     "lighting-overview",
		Title:  "Lighting Pipeline Overview",
		AITags: []string{"rendering.lighting"},
	}
	scored := []ScoredCourse{{Item: parent, Relevance: RelevanceResult{Score: 55}}}

	steps := engine.AssemblePath(scored, []string{"rendering.lumen.global_illumination"}, PathConfig{})
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].Role != RolePrerequisite {
		t.Errorf("role = %s, want prerequisite for an item covering the parent topic", steps[0].Role)
	}
}

func TestAssemblePathEmptyAndUnitEstimates(t *testing.T) {
	engine := newTestEngine(t)

	if steps := engine.AssemblePath(nil, nil, PathConfig{}); len(steps) != 0 {
		t.Errorf("empty input produced %d steps", len(steps))
	}

	item := &catalog.CourseItem{
		ID:        "units-only",
		Title:     "Material Basics in Five Parts",
		UnitCount: 5,
	}
	scored := []ScoredCourse{{Item: item, Relevance: RelevanceResult{Score: 40}}}
	steps := engine.AssemblePath(scored, nil, PathConfig{MinutesPerUnit: 10})
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].EstimatedMinutes != 50 {
		t.Errorf("EstimatedMinutes = %d, want unit count times per-unit estimate", steps[0].EstimatedMinutes)
	}
}
