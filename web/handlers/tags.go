package handlers

import (
	"net/http"

	"learnpath/matching"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TagsHandler exposes extraction diagnostics: what the engine would match
// for a query, without scoring the catalog.
type TagsHandler struct {
	engine *matching.Engine
	logger *zap.Logger
}

type ExtractRequest struct {
	Query string `json:"query"`
}

func NewTagsHandler(engine *matching.Engine, logger *zap.Logger) *TagsHandler {
	return &TagsHandler{engine: engine, logger: logger}
}

func (h *TagsHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result := h.engine.ExtractTags(req.Query)
	c.JSON(http.StatusOK, result)
}

type tagView struct {
	ID          string `json:"tag_id"`
	DisplayName string `json:"display_name"`
	Type        string `json:"tag_type"`
}

func (h *TagsHandler) List(c *gin.Context) {
	tags := h.engine.Tags()
	views := make([]tagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, tagView{ID: tag.ID, DisplayName: tag.DisplayName, Type: tag.Type})
	}
	c.JSON(http.StatusOK, gin.H{"tag_count": len(views), "tags": views})
}
