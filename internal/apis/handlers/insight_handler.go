package handlers

import (
	"clave-insights/internal/apis/dtos"
	"clave-insights/internal/repositories"
	"clave-insights/internal/services"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultInteractionListLimit = 20

type InsightHandler struct {
	pipeline     *services.PipelineService
	interactions repositories.InteractionRepository
}

func NewInsightHandler(pipeline *services.PipelineService, interactions repositories.InteractionRepository) *InsightHandler {
	return &InsightHandler{pipeline: pipeline, interactions: interactions}
}

// @Summary Ask an analytics question
// @Description Runs the question-to-insight pipeline and streams progress,
// insight chunks, and the final result as server-sent events
// @Accept json
// @Produce text/event-stream
// @Param askRequest body dtos.AskRequest true "Analytics question"

func (h *InsightHandler) Ask(c *gin.Context) {
	var req dtos.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	emit := func(event interface{}) {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("InsightHandler -> Ask -> marshal error: %v", err)
			return
		}
		c.Writer.Write([]byte(fmt.Sprintf("data: %s\n\n", data)))
		c.Writer.Flush()
	}

	h.pipeline.Run(c.Request.Context(), req.Question, emit)
}

// @Summary List recent interactions
// @Description Returns the most recent interaction log records, newest first
// @Produce json
// @Param limit query int false "Number of records to return (1-100, default 20)"

func (h *InsightHandler) ListInteractions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultInteractionListLimit)))
	if err != nil || limit < 1 || limit > 100 {
		limit = defaultInteractionListLimit
	}

	records, err := h.interactions.ListRecent(limit)
	if err != nil {
		log.Printf("InsightHandler -> ListInteractions -> %v", err)
		errorMsg := "failed to load interactions"
		c.JSON(http.StatusInternalServerError, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(http.StatusOK, dtos.Response{
		Success: true,
		Data:    records,
	})
}
