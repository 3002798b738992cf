package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"learnpath/catalog"
	"learnpath/config"
	"learnpath/intake"
	"learnpath/matching"
	"learnpath/retrieval"
	"learnpath/web/format"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// Response strategies selected from the confidence score. The thresholds
// are policy, not engine behavior, so they live here with the caller.
const (
	StrategyClarify       = "clarify"
	StrategyDeepRetrieval = "deep_retrieval"
	StrategyDirect        = "direct"
)

type RecommendHandler struct {
	engine   *matching.Engine
	items    []catalog.CourseItem
	parser   *intake.Parser
	passages *retrieval.Store
	config   *config.Config
	logger   *zap.Logger
	cache    *lru.Cache
}

// RecommendRequest is the API surface for one recommendation call. Either a
// structured case report or free report text may be supplied; free text is
// parsed through intake.
type RecommendRequest struct {
	Query                 string               `json:"query"`
	ReportText            string               `json:"report_text,omitempty"`
	CaseReport            *matching.CaseReport `json:"case_report,omitempty"`
	History               []matching.Turn      `json:"history,omitempty"`
	TimeBudgetMinutes     int                  `json:"time_budget_minutes,omitempty"`
	PreferTroubleshooting bool                 `json:"prefer_troubleshooting,omitempty"`
	Diversity             bool                 `json:"diversity,omitempty"`
	Format                string               `json:"format,omitempty"`
}

type scoredItemView struct {
	ID        string                   `json:"id"`
	Title     string                   `json:"title"`
	Relevance matching.RelevanceResult `json:"relevance"`
}

type RecommendResponse struct {
	RequestID  string                    `json:"request_id"`
	Extraction matching.ExtractionResult `json:"extraction"`
	Items      []scoredItemView          `json:"items"`
	Path       []matching.PathStep       `json:"path"`
	Confidence matching.ConfidenceResult `json:"confidence"`
	Strategy   string                    `json:"strategy"`
	PlanHTML   string                    `json:"plan_html,omitempty"`
}

func NewRecommendHandler(engine *matching.Engine, items []catalog.CourseItem, parser *intake.Parser, passages *retrieval.Store, cfg *config.Config, logger *zap.Logger) *RecommendHandler {
	cacheSize := cfg.ResponseCacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		logger.Warn("Failed to create response cache, continuing without it", zap.Error(err))
		cache = nil
	}

	return &RecommendHandler{
		engine:   engine,
		items:    items,
		parser:   parser,
		passages: passages,
		config:   cfg,
		logger:   logger,
		cache:    cache,
	}
}

func (h *RecommendHandler) Recommend(c *gin.Context) {
	requestID, _ := c.MustGet("request_id").(string)

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// The engine is pure, so identical requests produce identical
	// responses and caching is safe. Retrieval-backed requests skip the
	// cache because passage stores can change between calls.
	cacheKey := h.cacheKey(&req)
	if cacheKey != "" && h.passages == nil {
		if cached, ok := h.cache.Get(cacheKey); ok {
			response := cached.(RecommendResponse)
			response.RequestID = requestID
			c.JSON(http.StatusOK, response)
			return
		}
	}

	response := h.recommend(c, &req)
	response.RequestID = requestID

	if cacheKey != "" && h.passages == nil {
		h.cache.Add(cacheKey, response)
	}

	c.JSON(http.StatusOK, response)
}

func (h *RecommendHandler) recommend(c *gin.Context, req *RecommendRequest) RecommendResponse {
	extraction := h.engine.ExtractTags(req.Query)

	scored := make([]matching.ScoredCourse, 0, len(h.items))
	for i := range h.items {
		item := &h.items[i]
		relevance := h.engine.ScoreCourse(item, extraction.MatchedTagIDs)
		if relevance.Score <= 0 {
			continue
		}
		scored = append(scored, matching.ScoredCourse{Item: item, Relevance: relevance})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Relevance.Score != scored[j].Relevance.Score {
			return scored[i].Relevance.Score > scored[j].Relevance.Score
		}
		return scored[i].Item.ID < scored[j].Item.ID
	})

	budget := req.TimeBudgetMinutes
	if budget <= 0 {
		budget = h.config.DefaultTimeBudget
	}
	path := h.engine.AssemblePath(scored, extraction.MatchedTagIDs, matching.PathConfig{
		PreferTroubleshooting: req.PreferTroubleshooting,
		Diversity:             req.Diversity,
		TimeBudgetMinutes:     budget,
		MinutesPerUnit:        h.config.MinutesPerUnit,
		MaxItems:              h.config.MaxPathItems,
	})

	report := req.CaseReport
	if report == nil && req.ReportText != "" {
		report = h.parser.Parse(req.ReportText)
	}

	var passages []matching.Passage
	if h.passages != nil {
		passages = h.passages.Search(c.Request.Context(), req.Query, h.config.PassageLimit)
	}

	intent := h.detectedSystems(extraction.MatchedTagIDs)
	confidence := matching.ComputeConfidence(intent, report, passages, req.History, req.Query)

	response := RecommendResponse{
		Extraction: extraction,
		Items:      make([]scoredItemView, 0, len(scored)),
		Path:       path,
		Confidence: confidence,
		Strategy:   h.chooseStrategy(confidence.Score),
	}
	for _, sc := range scored {
		response.Items = append(response.Items, scoredItemView{
			ID:        sc.Item.ID,
			Title:     sc.Item.Title,
			Relevance: sc.Relevance,
		})
	}

	if req.Format == "html" {
		md := format.PlanMarkdown(req.Query, path)
		response.PlanHTML = format.MarkdownToHTML(md)
	}

	h.logger.Debug("Recommendation computed",
		zap.Int("matched_tags", len(extraction.MatchedTagIDs)),
		zap.Int("scored_items", len(scored)),
		zap.Int("path_steps", len(path)),
		zap.Int("confidence", confidence.Score),
		zap.String("strategy", response.Strategy))

	return response
}

// detectedSystems maps matched tags with a system tag type onto the intent
// the confidence router consumes.
func (h *RecommendHandler) detectedSystems(tagIDs []string) matching.Intent {
	intent := matching.Intent{Systems: []string{}}
	for _, id := range tagIDs {
		if tag, ok := h.engine.Tag(id); ok && tag.Type == "system" {
			intent.Systems = append(intent.Systems, tag.ID)
		}
	}
	return intent
}

func (h *RecommendHandler) chooseStrategy(score int) string {
	switch {
	case score >= h.config.DirectAnswerThreshold:
		return StrategyDirect
	case score >= h.config.ClarifyThreshold:
		return StrategyDeepRetrieval
	default:
		return StrategyClarify
	}
}

// cacheKey canonicalizes the request. An empty key disables caching.
func (h *RecommendHandler) cacheKey(req *RecommendRequest) string {
	if h.cache == nil {
		return ""
	}
	key, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(key)
}
