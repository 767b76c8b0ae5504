package handlers

import (
	"errors"
	"net/http"

	"quantumeyes/internal/simulator"

	"github.com/gin-gonic/gin"
)

func (h *Handler) StartSimulation(c *gin.Context) {
	var o simulator.Overrides
	if !bindOptionalJSON(c, &o) {
		return
	}
	if o.OrganizationID == nil && c.Query("organizationId") != "" {
		org, ok := h.orgID(c)
		if !ok {
			return
		}
		o.OrganizationID = &org
	}

	cfg, err := h.sim.Start(o)
	if err != nil {
		if errors.Is(err, simulator.ErrInvalidConfig) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		storeError(c, err, "error starting simulation")
		return
	}

	h.audit(c, "simulation", cfg.OrganizationID, "start", "interval=%dms batch=%d rate=%.2f",
		cfg.IntervalMs, cfg.ConnectionsPerBatch, cfg.AnomalyRate)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "simulation started",
		"config":  cfg,
	})
}

func (h *Handler) StopSimulation(c *gin.Context) {
	stats := h.sim.Stop()

	h.audit(c, "simulation", 0, "stop", "total=%d anomalies=%d", stats.TotalConnections, stats.TotalAnomalies)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "simulation stopped",
		"stats":   stats,
	})
}

func (h *Handler) ResetSimulation(c *gin.Context) {
	cfg, err := h.sim.Reset(c.Request.Context())
	if err != nil {
		storeError(c, err, "error resetting simulation")
		return
	}

	h.audit(c, "simulation", cfg.OrganizationID, "reset", "")
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "simulation reset",
	})
}

func (h *Handler) SimulationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.sim.Status())
}

func (h *Handler) SimulationStream(c *gin.Context) {
	h.stream.ServeWS(c.Writer, c.Request)
}

func (h *Handler) NetworkConnections(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c, 50, 1000)
	if !ok {
		return
	}
	conns, err := h.store.GetNetworkConnections(c.Request.Context(), org, limit)
	if err != nil {
		storeError(c, err, "error fetching network connections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

func (h *Handler) AnomalousConnections(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c, 50, 1000)
	if !ok {
		return
	}
	conns, err := h.store.GetAnomalousConnections(c.Request.Context(), org, limit)
	if err != nil {
		storeError(c, err, "error fetching anomalous connections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}
