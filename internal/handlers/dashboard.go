package handlers

import (
	"math"
	"net/http"

	"quantumeyes/internal/database"
	"quantumeyes/internal/models"

	"github.com/gin-gonic/gin"
)

// ====== МЕТРИКИ БЕЗОПАСНОСТИ ======

func (h *Handler) SecurityMetrics(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	m, err := h.store.GetSecurityMetrics(c.Request.Context(), org)
	if err != nil {
		storeError(c, err, "error fetching security metrics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": m})
}

type securityMetricsRequest struct {
	SecurityScore         int  `json:"securityScore"`
	SecurityScoreChange   *int `json:"securityScoreChange"`
	ActiveThreats         int  `json:"activeThreats"`
	ActiveThreatsChange   *int `json:"activeThreatsChange"`
	Vulnerabilities       int  `json:"vulnerabilities"`
	VulnerabilitiesChange *int `json:"vulnerabilitiesChange"`
	MonitoredAssets       int  `json:"monitoredAssets"`
}

func (h *Handler) CreateSecurityMetrics(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	var req securityMetricsRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.SecurityScore < 0 || req.SecurityScore > 100 {
		respondError(c, http.StatusBadRequest, "securityScore must be between 0 and 100")
		return
	}
	if req.ActiveThreats < 0 || req.Vulnerabilities < 0 || req.MonitoredAssets < 0 {
		respondError(c, http.StatusBadRequest, "counters must not be negative")
		return
	}

	m := models.SecurityMetrics{
		OrganizationID:        org,
		SecurityScore:         req.SecurityScore,
		SecurityScoreChange:   req.SecurityScoreChange,
		ActiveThreats:         req.ActiveThreats,
		ActiveThreatsChange:   req.ActiveThreatsChange,
		Vulnerabilities:       req.Vulnerabilities,
		VulnerabilitiesChange: req.VulnerabilitiesChange,
		MonitoredAssets:       req.MonitoredAssets,
	}
	if err := h.store.CreateSecurityMetrics(c.Request.Context(), &m); err != nil {
		storeError(c, err, "error saving security metrics")
		return
	}

	h.audit(c, "security_metrics", m.ID, "create", "score %d", m.SecurityScore)
	c.JSON(http.StatusCreated, gin.H{"metrics": m})
}

// ====== ЗРЕЛОСТЬ ======

type maturityCategory struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	MaxScore int    `json:"maxScore"`
}

func maturityResponse(m *models.CyberMaturity) gin.H {
	return gin.H{
		"categories": []maturityCategory{
			{Name: "Gouvernance", Score: m.Governance, MaxScore: 100},
			{Name: "Protection", Score: m.Protection, MaxScore: 100},
			{Name: "Détection", Score: m.Detection, MaxScore: 100},
			{Name: "Réponse", Score: m.Response, MaxScore: 100},
			{Name: "Récupération", Score: m.Recovery, MaxScore: 100},
		},
		"overallScore": m.OverallScore,
		"lastUpdated":  m.LastUpdated,
	}
}

func (h *Handler) CyberMaturity(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	m, err := h.store.GetCyberMaturity(c.Request.Context(), org)
	if err != nil {
		storeError(c, err, "error fetching cyber maturity data")
		return
	}
	c.JSON(http.StatusOK, maturityResponse(m))
}

type maturityRequest struct {
	Governance   int  `json:"governance"`
	Protection   int  `json:"protection"`
	Detection    int  `json:"detection"`
	Response     int  `json:"response"`
	Recovery     int  `json:"recovery"`
	OverallScore *int `json:"overallScore"`
}

func (h *Handler) UpdateCyberMaturity(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	var req maturityRequest
	if !bindJSON(c, &req) {
		return
	}
	scores := []int{req.Governance, req.Protection, req.Detection, req.Response, req.Recovery}
	if req.OverallScore != nil {
		scores = append(scores, *req.OverallScore)
	}
	for _, s := range scores {
		if s < 0 || s > 100 {
			respondError(c, http.StatusBadRequest, "scores must be between 0 and 100")
			return
		}
	}

	m := models.CyberMaturity{
		OrganizationID: org,
		Governance:     req.Governance,
		Protection:     req.Protection,
		Detection:      req.Detection,
		Response:       req.Response,
		Recovery:       req.Recovery,
	}
	if req.OverallScore != nil {
		m.OverallScore = *req.OverallScore
	} else {
		sum := req.Governance + req.Protection + req.Detection + req.Response + req.Recovery
		m.OverallScore = int(math.Round(float64(sum) / 5))
	}

	if err := h.store.UpdateCyberMaturity(c.Request.Context(), &m); err != nil {
		storeError(c, err, "error updating cyber maturity")
		return
	}

	h.audit(c, "cyber_maturity", m.ID, "update", "overall %d", m.OverallScore)
	c.JSON(http.StatusOK, maturityResponse(&m))
}

// ====== СЕТЕВАЯ АКТИВНОСТЬ ======

func (h *Handler) NetworkActivity(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	summary, err := h.store.GetNetworkActivity(c.Request.Context(), org)
	if err != nil {
		storeError(c, err, "error fetching network activity")
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": summary})
}

type networkActivityRequest struct {
	InboundTraffic    int  `json:"inboundTraffic"`
	OutboundTraffic   int  `json:"outboundTraffic"`
	ActiveConnections int  `json:"activeConnections"`
	AnomalyDetected   bool `json:"anomalyDetected"`
}

func (h *Handler) RecordNetworkActivity(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	var req networkActivityRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.InboundTraffic < 0 || req.OutboundTraffic < 0 || req.ActiveConnections < 0 {
		respondError(c, http.StatusBadRequest, "traffic values must not be negative")
		return
	}

	a := models.NetworkActivity{
		OrganizationID:    org,
		InboundTraffic:    req.InboundTraffic,
		OutboundTraffic:   req.OutboundTraffic,
		ActiveConnections: req.ActiveConnections,
		AnomalyDetected:   req.AnomalyDetected,
	}
	if err := h.store.RecordNetworkActivity(c.Request.Context(), &a); err != nil {
		storeError(c, err, "error saving network activity")
		return
	}

	h.audit(c, "network_activity", a.ID, "create", "")
	c.JSON(http.StatusCreated, gin.H{"activity": a})
}

// ====== УЯЗВИМОСТИ (виджет) ======

func (h *Handler) Vulnerabilities(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	vulns, err := h.store.GetVulnerabilities(c.Request.Context(), org)
	if err != nil {
		storeError(c, err, "error fetching vulnerabilities")
		return
	}
	counts, critical := database.CategorizeVulnerabilities(vulns)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"counts":                  counts,
			"criticalVulnerabilities": critical,
		},
	})
}
