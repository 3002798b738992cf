package catalog

import (
	"sort"
	"strings"
)

// Relation kinds for taxonomy edges.
const (
	RelationSubtopic      = "subtopic"
	RelationRelated       = "related"
	RelationSymptomOf     = "symptom_of"
	RelationOftenCausedBy = "often_caused_by"
	RelationReplaces      = "replaces"
)

// Alias is an alternate name for a tag, kept as a struct so additional
// per-alias attributes can be layered in without a schema break.
type Alias struct {
	Value string `yaml:"value" json:"value"`
}

// Signals carries the text fragments that identify a tag outside of its
// name: editor UI labels and known error message signatures.
type Signals struct {
	UITerms         []string `yaml:"ui_terms" json:"ui_terms"`
	ErrorSignatures []string `yaml:"error_signatures" json:"error_signatures"`
}

// Tag is a node in the domain taxonomy. The ID is a dotted hierarchical
// string such as "rendering.lumen.global_illumination". Tags are loaded once
// per catalog snapshot and never mutated afterwards.
type Tag struct {
	ID          string   `yaml:"tag_id" json:"tag_id"`
	DisplayName string   `yaml:"display_name" json:"display_name"`
	Type        string   `yaml:"tag_type" json:"tag_type"`
	Synonyms    []string `yaml:"synonyms" json:"synonyms"`
	Aliases     []Alias  `yaml:"aliases" json:"aliases"`
	Signals     Signals  `yaml:"signals" json:"signals"`
}

// Suffix returns the last dot segment of the tag ID with underscores
// replaced by spaces, lowercased. This is the textual form used for
// cross-namespace suffix comparison.
func (t Tag) Suffix() string {
	return TagSuffix(t.ID)
}

// TagSuffix extracts the comparable suffix of any dotted tag string.
func TagSuffix(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if idx := strings.LastIndex(id, "."); idx >= 0 {
		id = id[idx+1:]
	}
	return strings.ReplaceAll(id, "_", " ")
}

// Edge is a directed, weighted, typed link between two tags. Both directions
// are queryable but carry asymmetric semantic weight; for subtopic edges the
// source contains the target.
type Edge struct {
	Source   string  `yaml:"source" json:"source"`
	Target   string  `yaml:"target" json:"target"`
	Relation string  `yaml:"relation" json:"relation"`
	Weight   float64 `yaml:"weight" json:"weight"`
}

// CourseItem is one catalog entry. Tagging quality is heterogeneous: curated
// tags are human-reviewed, AI and transcript tags are machine-derived, and
// legacy tags are free-form key/value pairs from the old CMS.
type CourseItem struct {
	ID             string            `yaml:"id" json:"id"`
	Title          string            `yaml:"title" json:"title"`
	CuratedTags    []string          `yaml:"curated_tags" json:"curated_tags"`
	AITags         []string          `yaml:"ai_tags" json:"ai_tags"`
	TranscriptTags []string          `yaml:"transcript_tags" json:"transcript_tags"`
	LegacyTags     map[string]string `yaml:"legacy_tags" json:"legacy_tags"`
	Minutes        int               `yaml:"minutes" json:"minutes"`
	UnitCount      int               `yaml:"unit_count" json:"unit_count"`
}

// AllTags flattens every tag source into one deduplicated, lowercased,
// sorted list. All matching downstream treats this as the item's tag set;
// no single source is authoritative.
func (c *CourseItem) AllTags() []string {
	seen := make(map[string]struct{})
	add := func(raw string) {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" {
			return
		}
		seen[tag] = struct{}{}
	}
	for _, t := range c.CuratedTags {
		add(t)
	}
	for _, t := range c.AITags {
		add(t)
	}
	for _, t := range c.TranscriptTags {
		add(t)
	}
	for _, v := range c.LegacyTags {
		add(v)
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// CuratedTagsLower returns the AI-curated tag strings lowercased and sorted.
// The scorer trusts these above the heterogeneous flattened set.
func (c *CourseItem) CuratedTagsLower() []string {
	tags := make([]string, 0, len(c.CuratedTags))
	for _, t := range c.CuratedTags {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// EstimatedMinutes reports the item duration: the explicit minutes field
// when present, otherwise unit count times the supplied per-unit estimate.
func (c *CourseItem) EstimatedMinutes(minutesPerUnit int) int {
	if c.Minutes > 0 {
		return c.Minutes
	}
	if minutesPerUnit <= 0 {
		minutesPerUnit = 12
	}
	return c.UnitCount * minutesPerUnit
}
