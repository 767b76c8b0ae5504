package handlers

import (
	"net/http"
	"strings"

	"quantumeyes/internal/middleware"
	"quantumeyes/internal/models"

	"github.com/gin-gonic/gin"
)

const maxCVELength = 20

type vulnerabilityRequest struct {
	CVEID          string          `json:"cveId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Severity       models.Severity `json:"severity"`
	AffectedSystem string          `json:"affectedSystem"`
}

func (h *Handler) CreateVulnerability(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	var req vulnerabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	req.CVEID = strings.TrimSpace(req.CVEID)
	req.Title = strings.TrimSpace(req.Title)
	req.AffectedSystem = strings.TrimSpace(req.AffectedSystem)

	switch {
	case req.CVEID == "" || len(req.CVEID) > maxCVELength:
		respondError(c, http.StatusBadRequest, "cveId is required and must be at most 20 characters")
		return
	case len(req.Title) < 3:
		respondError(c, http.StatusBadRequest, "title must be at least 3 characters")
		return
	case !req.Severity.Valid():
		respondError(c, http.StatusBadRequest, "invalid severity")
		return
	case req.AffectedSystem == "":
		respondError(c, http.StatusBadRequest, "affectedSystem is required")
		return
	}

	v := models.Vulnerability{
		OrganizationID: org,
		CVEID:          req.CVEID,
		Title:          req.Title,
		Description:    strings.TrimSpace(req.Description),
		Severity:       req.Severity,
		AffectedSystem: req.AffectedSystem,
	}
	if err := h.store.CreateVulnerability(c.Request.Context(), &v); err != nil {
		storeError(c, err, "error saving vulnerability")
		return
	}

	h.audit(c, "vulnerability", v.ID, "create", "%s %s", v.CVEID, v.Severity)
	c.JSON(http.StatusCreated, gin.H{"vulnerability": v})
}

type vulnerabilityStatusRequest struct {
	Status models.VulnStatus `json:"status"`
}

func (h *Handler) UpdateVulnerabilityStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req vulnerabilityStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Status.Valid() {
		respondError(c, http.StatusBadRequest, "invalid vulnerability status")
		return
	}

	current, err := h.store.GetVulnerability(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, "error fetching vulnerability")
		return
	}

	if !canChangeVulnerabilityStatus(middleware.SessionRoleFrom(c), current.Status, req.Status) {
		respondError(c, http.StatusForbidden, "status change not allowed")
		return
	}

	updated, err := h.store.UpdateVulnerabilityStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		storeError(c, err, "error updating vulnerability status")
		return
	}

	h.audit(c, "vulnerability", id, "status_change", "%s -> %s", current.Status, req.Status)
	c.JSON(http.StatusOK, gin.H{"vulnerability": updated})
}

func canChangeVulnerabilityStatus(role models.UserRole, current, next models.VulnStatus) bool {
	if current == next {
		return false
	}

	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleAnalyst:
		switch current {
		case models.VulnOpen:
			return next == models.VulnInProgress || next == models.VulnResolved
		case models.VulnInProgress:
			return next == models.VulnResolved || next == models.VulnOpen
		}
		// переоткрыть исправленную может только админ
		return false
	default:
		return false
	}
}
