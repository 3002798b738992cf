package handlers

import (
	"net/http"

	"learnpath/database"
	apperrors "learnpath/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ItemsHandler serves single catalog entries from the database store. It is
// only registered when the service runs against Postgres.
type ItemsHandler struct {
	store  *database.PostgresStore
	logger *zap.Logger
}

func NewItemsHandler(store *database.PostgresStore, logger *zap.Logger) *ItemsHandler {
	return &ItemsHandler{store: store, logger: logger}
}

func (h *ItemsHandler) Get(c *gin.Context) {
	id := c.Param("id")
	item, err := h.store.CourseItemByID(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course item not found"})
			return
		}
		h.logger.Error("Failed to fetch course item", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch course item"})
		return
	}
	c.JSON(http.StatusOK, item)
}
