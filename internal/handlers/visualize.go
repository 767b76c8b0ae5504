package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"quantumeyes/internal/quantum"

	"github.com/gin-gonic/gin"
)

type visualizationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*quantum.Visualization
}

func (h *Handler) visualize(c *gin.Context, render func(quantum.VisualizeParams) (*quantum.Visualization, error), done string) {
	var p quantum.VisualizeParams
	if !bindOptionalJSON(c, &p) {
		return
	}
	v, err := render(p)
	if err != nil {
		if errors.Is(err, quantum.ErrInvalidVisualization) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		slog.Error("visualization failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "visualization failed"})
		return
	}
	c.JSON(http.StatusOK, visualizationResponse{Success: true, Message: done, Visualization: v})
}

func (h *Handler) VisualizeCircuit(c *gin.Context) {
	h.visualize(c, h.viz.Circuit, "circuit generated")
}

func (h *Handler) VisualizeHistogram(c *gin.Context) {
	h.visualize(c, h.viz.Histogram, "histogram generated")
}

func (h *Handler) VisualizeComplete(c *gin.Context) {
	h.visualize(c, h.viz.Complete, "visualizations generated")
}
