package matching

import (
	"sort"

	"learnpath/catalog"

	"go.uber.org/zap"
)

// Engine holds the read-only term index and relation graph for one catalog
// snapshot. Construct one per snapshot and share it freely: every per-query
// method allocates its own state, so concurrent callers never interfere.
// When the tag or edge set changes, build a new Engine rather than mutating
// this one.
type Engine struct {
	index  []TermIndexEntry
	graph  *RelationGraph
	tags   map[string]catalog.Tag
	logger *zap.Logger
}

// NewEngine builds the term index and relation graph from the supplied
// taxonomy. A nil logger is replaced with a no-op logger.
func NewEngine(tags []catalog.Tag, edges []catalog.Edge, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	tagMap := make(map[string]catalog.Tag, len(tags))
	for _, tag := range tags {
		tagMap[tag.ID] = tag
	}

	engine := &Engine{
		index:  BuildTermIndex(tags),
		graph:  NewRelationGraph(edges),
		tags:   tagMap,
		logger: logger,
	}

	logger.Info("Matching engine built",
		zap.Int("tags", len(tags)),
		zap.Int("index_terms", len(engine.index)),
		zap.Int("edges", engine.graph.EdgeCount()))

	return engine
}

// Tag returns the taxonomy tag for an ID, if known.
func (e *Engine) Tag(id string) (catalog.Tag, bool) {
	tag, ok := e.tags[id]
	return tag, ok
}

// TagCount reports the number of taxonomy tags loaded into the engine.
func (e *Engine) TagCount() int {
	return len(e.tags)
}

// Tags returns every taxonomy tag, sorted by ID.
func (e *Engine) Tags() []catalog.Tag {
	tags := make([]catalog.Tag, 0, len(e.tags))
	for _, tag := range e.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].ID < tags[j].ID
	})
	return tags
}

// Graph exposes the relation graph for callers that need neighbor lookups.
func (e *Engine) Graph() *RelationGraph {
	return e.graph
}
