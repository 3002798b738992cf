package matching

import (
	"fmt"
	"sort"
	"strings"

	"learnpath/catalog"

	"go.uber.org/zap"
)

// PathRole orders items within an assembled learning path. Lower values
// come first in the output.
type PathRole int

const (
	RolePrerequisite PathRole = iota
	RoleCore
	RoleTroubleshooting
	RoleSupplemental
)

func (r PathRole) String() string {
	switch r {
	case RolePrerequisite:
		return "prerequisite"
	case RoleCore:
		return "core"
	case RoleTroubleshooting:
		return "troubleshooting"
	case RoleSupplemental:
		return "supplemental"
	default:
		return "unknown"
	}
}

// MarshalText lets roles serialize as their names.
func (r PathRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts the role names MarshalText produces.
func (r *PathRole) UnmarshalText(text []byte) error {
	switch string(text) {
	case "prerequisite":
		*r = RolePrerequisite
	case "core":
		*r = RoleCore
	case "troubleshooting":
		*r = RoleTroubleshooting
	case "supplemental":
		*r = RoleSupplemental
	default:
		return fmt.Errorf("unknown path role %q", text)
	}
	return nil
}

// supplementalScoreCeiling is the relevance score below which an item is
// offered as supplemental coverage rather than core material.
const supplementalScoreCeiling = 30

var prerequisiteTitleWords = []string{
	"introduction", "intro to", "fundamentals", "basics", "getting started", "beginner",
}

var troubleshootingTitleWords = []string{
	"troubleshoot", "fixing", "fix ", "debug", "diagnos", "common errors", "crash",
}

// ScoredCourse pairs a catalog item with its relevance result for path
// assembly.
type ScoredCourse struct {
	Item      *catalog.CourseItem `json:"item"`
	Relevance RelevanceResult     `json:"relevance"`
}

// PathConfig controls assembly. A zero TimeBudgetMinutes means unlimited.
type PathConfig struct {
	PreferTroubleshooting bool `json:"prefer_troubleshooting"`
	Diversity             bool `json:"diversity"`
	TimeBudgetMinutes     int  `json:"time_budget_minutes"`
	MinutesPerUnit        int  `json:"minutes_per_unit"`
	MaxItems              int  `json:"max_items"`
}

// PathStep is one entry of an assembled learning path.
type PathStep struct {
	Item             *catalog.CourseItem `json:"item"`
	Role             PathRole            `json:"role"`
	Reason           string              `json:"reason"`
	EstimatedMinutes int                 `json:"estimated_minutes"`
}

type pathCandidate struct {
	course  ScoredCourse
	role    PathRole
	reason  string
	minutes int
	tags    []string
}

// AssemblePath selects scored items into an ordered path. Selection is
// greedy in (role priority, score, overlap) order and never exceeds the
// time budget; output is grouped prerequisite → core → troubleshooting →
// supplemental, ranked by score within each group.
func (e *Engine) AssemblePath(scored []ScoredCourse, targetTags []string, cfg PathConfig) []PathStep {
	if len(scored) == 0 {
		return []PathStep{}
	}

	candidates := make([]*pathCandidate, 0, len(scored))
	for _, course := range scored {
		if course.Item == nil || course.Relevance.Score <= 0 {
			continue
		}
		role, reason := e.assignRole(course, targetTags, cfg)
		candidates = append(candidates, &pathCandidate{
			course:  course,
			role:    role,
			reason:  reason,
			minutes: course.Item.EstimatedMinutes(cfg.MinutesPerUnit),
			tags:    course.Item.AllTags(),
		})
	}

	// Stable base order: role priority, then score descending.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].role != candidates[j].role {
			return candidates[i].role < candidates[j].role
		}
		return candidates[i].course.Relevance.Score > candidates[j].course.Relevance.Score
	})

	var selected []*pathCandidate
	usedMinutes := 0
	covered := make(map[string]struct{})

	remaining := candidates
	for len(remaining) > 0 {
		if cfg.MaxItems > 0 && len(selected) >= cfg.MaxItems {
			break
		}

		bestIdx := -1
		bestOverlap := 0.0
		for idx, cand := range remaining {
			if cfg.TimeBudgetMinutes > 0 && usedMinutes+cand.minutes > cfg.TimeBudgetMinutes {
				continue
			}
			if bestIdx < 0 {
				bestIdx = idx
				bestOverlap = overlapRatio(cand.tags, covered)
				if !cfg.Diversity {
					break
				}
				continue
			}
			// Diversity: among candidates of the same role and score,
			// prefer the one covering the most new ground.
			best := remaining[bestIdx]
			if cand.role != best.role || cand.course.Relevance.Score != best.course.Relevance.Score {
				break
			}
			if ratio := overlapRatio(cand.tags, covered); ratio < bestOverlap {
				bestIdx = idx
				bestOverlap = ratio
			}
		}
		if bestIdx < 0 {
			break
		}

		chosen := remaining[bestIdx]
		selected = append(selected, chosen)
		usedMinutes += chosen.minutes
		for _, t := range chosen.tags {
			covered[t] = struct{}{}
		}
		remaining = append(remaining[:bestIdx:bestIdx], remaining[bestIdx+1:]...)
	}

	// Output keeps role grouping for presentation, score order within.
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].role != selected[j].role {
			return selected[i].role < selected[j].role
		}
		return selected[i].course.Relevance.Score > selected[j].course.Relevance.Score
	})

	steps := make([]PathStep, 0, len(selected))
	for _, cand := range selected {
		steps = append(steps, PathStep{
			Item:             cand.course.Item,
			Role:             cand.role,
			Reason:           cand.reason,
			EstimatedMinutes: cand.minutes,
		})
	}

	e.logger.Debug("Assembled learning path",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(steps)),
		zap.Int("minutes", usedMinutes),
		zap.Int("budget", cfg.TimeBudgetMinutes))

	return steps
}

// assignRole decides where an item sits in the path. Items default to core
// when no stronger signal applies.
func (e *Engine) assignRole(course ScoredCourse, targetTags []string, cfg PathConfig) (PathRole, string) {
	title := strings.ToLower(course.Item.Title)
	itemTags := course.Item.AllTags()

	if symptom, ok := e.troubleshootingSignal(itemTags, title); ok {
		if cfg.PreferTroubleshooting {
			return RoleTroubleshooting, fmt.Sprintf("addresses reported symptom %q", symptom)
		}
		return RoleTroubleshooting, fmt.Sprintf("covers troubleshooting for %q", symptom)
	}

	for _, word := range prerequisiteTitleWords {
		if strings.Contains(title, word) {
			return RolePrerequisite, "foundational material for the requested topics"
		}
	}
	if parent, ok := e.coversParentTopic(itemTags, targetTags); ok {
		return RolePrerequisite, fmt.Sprintf("covers %q, a parent topic of the request", parent)
	}

	if course.Relevance.Score < supplementalScoreCeiling {
		return RoleSupplemental, "related coverage beyond the core topics"
	}

	return RoleCore, "directly covers the requested topics"
}

// troubleshootingSignal reports whether the item reads as troubleshooting
// content: a symptom-typed tag or a telltale title.
func (e *Engine) troubleshootingSignal(itemTags []string, title string) (string, bool) {
	for _, itemTag := range itemTags {
		if tag, ok := e.tags[itemTag]; ok && tag.Type == "symptom" {
			return tag.ID, true
		}
	}
	for _, word := range troubleshootingTitleWords {
		if strings.Contains(title, word) {
			return strings.TrimSpace(word), true
		}
	}
	return "", false
}

// coversParentTopic reports whether the item carries a tag that contains
// one of the target tags via a subtopic edge.
func (e *Engine) coversParentTopic(itemTags []string, targetTags []string) (string, bool) {
	targets := make(map[string]struct{}, len(targetTags))
	for _, t := range targetTags {
		targets[t] = struct{}{}
	}
	for _, itemTag := range itemTags {
		for _, edge := range e.graph.Outgoing(itemTag) {
			if edge.Relation != catalog.RelationSubtopic {
				continue
			}
			if _, ok := targets[edge.Target]; ok {
				return itemTag, true
			}
		}
	}
	return "", false
}

// overlapRatio is covered-tags-of-candidate over candidate tag count.
func overlapRatio(tags []string, covered map[string]struct{}) float64 {
	if len(tags) == 0 {
		return 0
	}
	hits := 0
	for _, t := range tags {
		if _, ok := covered[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(tags))
}
