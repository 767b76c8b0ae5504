package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"quantumeyes/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListReports(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	reports, err := h.store.GetReports(c.Request.Context(), org, c.Query("type"))
	if err != nil {
		storeError(c, err, "error fetching reports")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (h *Handler) GetReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.store.GetReport(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, "error fetching report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": r})
}

type reportRequest struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Type           string                `json:"type"`
	Content        json.RawMessage       `json:"content"`
	Metrics        *models.ReportMetrics `json:"metrics"`
	OrganizationID uint                  `json:"organizationId"`
	FileURL        *string               `json:"fileUrl"`
	IconType       *string               `json:"iconType"`
}

// content принимается и строкой с JSON, и самим JSON-объектом.
func (r reportRequest) content() (string, bool) {
	raw := strings.TrimSpace(string(r.Content))
	if raw == "" || raw == "null" {
		return "{}", true
	}
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		if !json.Valid([]byte(s)) {
			return "", false
		}
		return s, true
	}
	return raw, true
}

func (h *Handler) createReport(c *gin.Context) (*models.Report, bool) {
	org, ok := h.orgID(c)
	if !ok {
		return nil, false
	}
	var req reportRequest
	if !bindJSON(c, &req) {
		return nil, false
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Type = strings.TrimSpace(req.Type)
	if len(req.Title) < 3 {
		respondError(c, http.StatusBadRequest, "title must be at least 3 characters")
		return nil, false
	}
	if req.Type == "" {
		respondError(c, http.StatusBadRequest, "type is required")
		return nil, false
	}
	content, ok := req.content()
	if !ok {
		respondError(c, http.StatusBadRequest, "content must be valid JSON")
		return nil, false
	}
	if req.OrganizationID != 0 {
		org = req.OrganizationID
	}

	r := models.Report{
		OrganizationID: org,
		Title:          req.Title,
		Description:    strings.TrimSpace(req.Description),
		Type:           req.Type,
		Content:        content,
		Metrics:        req.Metrics,
		FileURL:        req.FileURL,
		IconType:       req.IconType,
	}
	if err := h.store.CreateReport(c.Request.Context(), &r); err != nil {
		storeError(c, err, "error saving report")
		return nil, false
	}

	h.audit(c, "report", r.ID, "create", "Report created: %s", r.Title)
	return &r, true
}

func (h *Handler) CreateReport(c *gin.Context) {
	r, ok := h.createReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": r})
}

// CreateAnalysisReport: отчёт по результатам анализа из квантовой страницы.
func (h *Handler) CreateAnalysisReport(c *gin.Context) {
	r, ok := h.createReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"report":  r,
		"message": "report created",
	})
}

func (h *Handler) DeleteReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteReport(c.Request.Context(), id); err != nil {
		storeError(c, err, "error deleting report")
		return
	}

	h.audit(c, "report", id, "delete", "")
	c.JSON(http.StatusOK, gin.H{"message": "report deleted"})
}
