package matching

import (
	"math"
	"sort"
	"strings"

	"learnpath/catalog"
)

// Scoring constants. The hop cap and per-tag graph credit cap are hard
// invariants of the scoring model: removing either changes scores
// materially, not just their tuning.
const (
	directMatchPoints  = 25.0
	suffixMatchPoints  = 15.0
	curatedBonusPoints = 10.0
	graphBasePoints    = 5.0
	hopAttenuation     = 0.5
	maxGraphHops       = 2
	graphCreditCap     = 15.0
	maxContributors    = 10
	maxScore           = 100
)

// directionWeights maps (relation, forward?) to the scalar applied to graph
// propagation. Forward follows the edge from source to target; a subtopic
// edge forward expresses "contains" and is stronger than its reverse.
var directionWeights = map[string][2]float64{
	catalog.RelationSubtopic:      {0.7, 0.5},
	catalog.RelationRelated:       {0.6, 0.6},
	catalog.RelationSymptomOf:     {0.8, 0.6},
	catalog.RelationOftenCausedBy: {0.7, 0.5},
	catalog.RelationReplaces:      {0.5, 0.3},
}

// unknown relations still propagate a little credit rather than none.
var defaultDirectionWeight = [2]float64{0.2, 0.1}

func directionWeight(relation string, forward bool) float64 {
	weights, ok := directionWeights[relation]
	if !ok {
		weights = defaultDirectionWeight
	}
	if forward {
		return weights[0]
	}
	return weights[1]
}

// ScoreBreakdown itemizes the additive sources of a relevance score.
// Penalties is reserved: no current rule produces one, so it is always 0,
// but it stays in the surface so the shape is stable if a rule lands.
type ScoreBreakdown struct {
	DirectOverlap    float64 `json:"direct_overlap"`
	CuratedBonus     float64 `json:"curated_bonus"`
	GraphPropagation float64 `json:"graph_propagation"`
	Penalties        float64 `json:"penalties"`
}

// Contributor records one scoring event for explainability: which query tag
// earned credit, against which item tag, via which path.
type Contributor struct {
	SourceTag    string   `json:"source_tag"`
	TargetTag    string   `json:"target_tag"`
	Path         []string `json:"path"`
	Contribution float64  `json:"contribution"`
}

// RelevanceResult is the scored outcome for one catalog item against one
// query tag set. Identical inputs always produce identical results.
type RelevanceResult struct {
	Score           int            `json:"score"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
	TopContributors []Contributor  `json:"top_contributors"`
}

// ScoreCourse computes relevance from three additive sources: direct tag
// overlap, a curated-tag bonus, and bounded graph propagation. The final
// score is the integer sum clamped to [0,100].
func (e *Engine) ScoreCourse(item *catalog.CourseItem, queryTags []string) RelevanceResult {
	result := RelevanceResult{TopContributors: []Contributor{}}
	if item == nil || len(queryTags) == 0 {
		return result
	}

	itemTags := item.AllTags()
	itemTagSet := make(map[string]struct{}, len(itemTags))
	for _, t := range itemTags {
		itemTagSet[t] = struct{}{}
	}
	curated := item.CuratedTagsLower()

	var contributors []Contributor

	for _, queryTag := range queryTags {
		queryTag = strings.ToLower(strings.TrimSpace(queryTag))
		if queryTag == "" {
			continue
		}

		// Direct overlap: exact presence beats a cross-namespace suffix
		// match; at most one suffix bonus per query tag.
		if _, ok := itemTagSet[queryTag]; ok {
			result.Breakdown.DirectOverlap += directMatchPoints
			contributors = append(contributors, Contributor{
				SourceTag:    queryTag,
				TargetTag:    queryTag,
				Path:         []string{queryTag},
				Contribution: directMatchPoints,
			})
		} else if itemTag, ok := suffixMatch(queryTag, itemTags); ok {
			result.Breakdown.DirectOverlap += suffixMatchPoints
			contributors = append(contributors, Contributor{
				SourceTag:    queryTag,
				TargetTag:    itemTag,
				Path:         []string{queryTag, itemTag},
				Contribution: suffixMatchPoints,
			})
		}

		// Curated bonus: curated tags are trusted over the flattened set.
		querySuffix := catalog.TagSuffix(queryTag)
		for _, curatedTag := range curated {
			if strings.Contains(curatedTag, querySuffix) || strings.Contains(querySuffix, curatedTag) {
				result.Breakdown.CuratedBonus += curatedBonusPoints
				contributors = append(contributors, Contributor{
					SourceTag:    queryTag,
					TargetTag:    curatedTag,
					Path:         []string{queryTag, curatedTag},
					Contribution: curatedBonusPoints,
				})
				break
			}
		}

		// Graph propagation, capped per query tag so one densely connected
		// tag cannot dominate the score.
		credit, graphContribs := e.propagate(queryTag, itemTags, itemTagSet)
		result.Breakdown.GraphPropagation += credit
		contributors = append(contributors, graphContribs...)
	}

	total := result.Breakdown.DirectOverlap +
		result.Breakdown.CuratedBonus +
		result.Breakdown.GraphPropagation -
		result.Breakdown.Penalties

	score := int(math.Round(total))
	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	result.Score = score

	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].Contribution > contributors[j].Contribution
	})
	if len(contributors) > maxContributors {
		contributors = contributors[:maxContributors]
	}
	result.TopContributors = contributors

	return result
}

type frontierNode struct {
	tagID string
	path  []string
}

// propagate breadth-first traverses the relation graph from a query tag for
// up to maxGraphHops hops in both edge directions, crediting neighbors that
// match an item tag. The visited set prevents cycles from re-counting.
// Total credit is capped at graphCreditCap.
func (e *Engine) propagate(queryTag string, itemTags []string, itemTagSet map[string]struct{}) (float64, []Contributor) {
	credit := 0.0
	var contributors []Contributor

	visited := map[string]struct{}{queryTag: {}}
	frontier := []frontierNode{{tagID: queryTag, path: []string{queryTag}}}

	for hop := 1; hop <= maxGraphHops; hop++ {
		attenuation := math.Pow(hopAttenuation, float64(hop))
		var next []frontierNode

		for _, node := range frontier {
			neighbors := collectNeighbors(e.graph, node.tagID)
			for _, n := range neighbors {
				if _, seen := visited[n.tagID]; seen {
					continue
				}
				visited[n.tagID] = struct{}{}

				path := make([]string, len(node.path), len(node.path)+1)
				copy(path, node.path)
				path = append(path, n.tagID)

				if itemTag, ok := matchItemTag(n.tagID, itemTags, itemTagSet); ok {
					contribution := graphBasePoints * n.directionWeight * attenuation * n.edgeWeight
					if credit+contribution > graphCreditCap {
						contribution = graphCreditCap - credit
					}
					if contribution > 0 {
						credit += contribution
						contributors = append(contributors, Contributor{
							SourceTag:    queryTag,
							TargetTag:    itemTag,
							Path:         path,
							Contribution: contribution,
						})
					}
				}

				next = append(next, frontierNode{tagID: n.tagID, path: path})
			}
		}

		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	return credit, contributors
}

type neighbor struct {
	tagID           string
	directionWeight float64
	edgeWeight      float64
}

// collectNeighbors gathers outgoing then incoming edges of a node in a
// fixed order so traversal is reproducible.
func collectNeighbors(graph *RelationGraph, tagID string) []neighbor {
	outgoing := graph.Outgoing(tagID)
	incoming := graph.Incoming(tagID)
	neighbors := make([]neighbor, 0, len(outgoing)+len(incoming))

	for _, edge := range outgoing {
		neighbors = append(neighbors, neighbor{
			tagID:           edge.Target,
			directionWeight: directionWeight(edge.Relation, true),
			edgeWeight:      edge.Weight,
		})
	}
	for _, edge := range incoming {
		neighbors = append(neighbors, neighbor{
			tagID:           edge.Source,
			directionWeight: directionWeight(edge.Relation, false),
			edgeWeight:      edge.Weight,
		})
	}
	return neighbors
}

// matchItemTag resolves a taxonomy tag against the item's tag set: exact
// first, then suffix equality over the sorted tag list (first match wins).
func matchItemTag(tagID string, itemTags []string, itemTagSet map[string]struct{}) (string, bool) {
	if _, ok := itemTagSet[tagID]; ok {
		return tagID, true
	}
	return suffixMatch(tagID, itemTags)
}

// suffixMatch finds the first item tag whose dot-suffix equals the query
// tag's dot-suffix. itemTags must be sorted for determinism.
func suffixMatch(queryTag string, itemTags []string) (string, bool) {
	querySuffix := catalog.TagSuffix(queryTag)
	if querySuffix == "" {
		return "", false
	}
	for _, itemTag := range itemTags {
		if catalog.TagSuffix(itemTag) == querySuffix {
			return itemTag, true
		}
	}
	return "", false
}
