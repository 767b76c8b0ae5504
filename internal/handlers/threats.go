package handlers

import (
	"net/http"
	"strings"

	"quantumeyes/internal/middleware"
	"quantumeyes/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RecentThreats(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c, 10, 100)
	if !ok {
		return
	}
	threats, err := h.store.GetRecentThreats(c.Request.Context(), org, limit)
	if err != nil {
		storeError(c, err, "error fetching recent threats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"threats": threats})
}

type threatRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Level       models.ThreatLevel   `json:"level"`
	Source      string               `json:"source"`
	Icon        string               `json:"icon"`
	Actions     models.ThreatActions `json:"actions"`
}

func (h *Handler) CreateThreat(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	var req threatRequest
	if !bindJSON(c, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if len(req.Title) < 3 {
		respondError(c, http.StatusBadRequest, "title must be at least 3 characters")
		return
	}
	if req.Description == "" {
		respondError(c, http.StatusBadRequest, "description is required")
		return
	}
	if !req.Level.Valid() {
		respondError(c, http.StatusBadRequest, "invalid threat level")
		return
	}

	t := models.Threat{
		OrganizationID: org,
		Title:          req.Title,
		Description:    req.Description,
		Level:          req.Level,
		Source:         strings.TrimSpace(req.Source),
		Icon:           req.Icon,
		Actions:        req.Actions,
	}
	if err := h.store.CreateThreat(c.Request.Context(), &t); err != nil {
		storeError(c, err, "error saving threat")
		return
	}

	h.audit(c, "threat", t.ID, "create", "Threat created: %s", t.Title)
	c.JSON(http.StatusCreated, gin.H{"threat": t})
}

type threatStatusRequest struct {
	Status models.ThreatStatus `json:"status"`
}

func (h *Handler) UpdateThreatStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req threatStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Status.Valid() {
		respondError(c, http.StatusBadRequest, "invalid threat status")
		return
	}

	current, err := h.store.GetThreat(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, "error fetching threat")
		return
	}

	if !canChangeThreatStatus(middleware.SessionRoleFrom(c), current.Status, req.Status) {
		respondError(c, http.StatusForbidden, "status change not allowed")
		return
	}

	updated, err := h.store.UpdateThreatStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		storeError(c, err, "error updating threat status")
		return
	}

	h.audit(c, "threat", id, "status_change", "%s -> %s", current.Status, req.Status)
	c.JSON(http.StatusOK, gin.H{"threat": updated})
}

// логика ролей
func canChangeThreatStatus(role models.UserRole, current, next models.ThreatStatus) bool {
	if current == next {
		return false
	}

	switch role {

	case models.RoleAdmin:
		return true

	case models.RoleAnalyst:
		switch current {
		case models.ThreatActive:
			return next == models.ThreatResolved || next == models.ThreatIgnored
		case models.ThreatIgnored:
			return next == models.ThreatActive
		}
		return false

	default:
		return false
	}
}
