package handlers

import (
	"net/http"
	"strings"

	"quantumeyes/internal/models"
	"quantumeyes/internal/quantum"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListQuantumConfigs(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	configs, err := h.store.GetQuantumConfigs(c.Request.Context(), org)
	if err != nil {
		storeError(c, err, "error fetching quantum configs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": configs})
}

func (h *Handler) GetQuantumConfig(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cfg, err := h.store.GetQuantumConfig(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, "error fetching quantum config")
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

type quantumConfigRequest struct {
	Name       *string `json:"name"`
	Qubits     *int    `json:"qubits"`
	FeatureMap *string `json:"feature_map"`
	Ansatz     *string `json:"ansatz"`
	Shots      *int    `json:"shots"`
	ModelType  *string `json:"model_type"`
	Active     *bool   `json:"active"`
}

// fields проверяет заданные поля и возвращает их как колонки для UPDATE.
func (r quantumConfigRequest) fields() (map[string]any, string) {
	out := map[string]any{}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return nil, "name must not be empty"
		}
		out["name"] = name
	}
	if r.Qubits != nil {
		if *r.Qubits < quantum.MinQubits || *r.Qubits > quantum.MaxQubits {
			return nil, "qubits must be between 1 and 20"
		}
		out["qubits"] = *r.Qubits
	}
	if r.Shots != nil {
		if *r.Shots < quantum.MinShots || *r.Shots > quantum.MaxShots {
			return nil, "shots must be between 1 and 100000"
		}
		out["shots"] = *r.Shots
	}
	for col, v := range map[string]*string{"feature_map": r.FeatureMap, "ansatz": r.Ansatz, "model_type": r.ModelType} {
		if v == nil {
			continue
		}
		if *v == "" {
			return nil, col + " must not be empty"
		}
		out[col] = *v
	}
	if r.Active != nil {
		out["active"] = *r.Active
	}
	return out, ""
}

func (h *Handler) CreateQuantumConfig(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	var req quantumConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == nil {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}
	fields, msg := req.fields()
	if msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	def := quantum.DefaultStatus()
	cfg := models.QuantumConfig{
		OrganizationID: org,
		Name:           fields["name"].(string),
		Qubits:         def.Qubits,
		FeatureMap:     def.FeatureMap,
		Ansatz:         def.Ansatz,
		Shots:          def.Shots,
		ModelType:      def.ModelType,
		Active:         true,
	}
	if v, ok := fields["qubits"].(int); ok {
		cfg.Qubits = v
	}
	if v, ok := fields["shots"].(int); ok {
		cfg.Shots = v
	}
	if v, ok := fields["feature_map"].(string); ok {
		cfg.FeatureMap = v
	}
	if v, ok := fields["ansatz"].(string); ok {
		cfg.Ansatz = v
	}
	if v, ok := fields["model_type"].(string); ok {
		cfg.ModelType = v
	}
	if v, ok := fields["active"].(bool); ok {
		cfg.Active = v
	}

	if err := h.store.CreateQuantumConfig(c.Request.Context(), &cfg); err != nil {
		storeError(c, err, "error saving quantum config")
		return
	}

	h.audit(c, "quantum_config", cfg.ID, "create", "Config created: %s", cfg.Name)
	c.JSON(http.StatusCreated, gin.H{"config": cfg})
}

func (h *Handler) UpdateQuantumConfig(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req quantumConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	fields, msg := req.fields()
	if msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}
	if len(fields) == 0 {
		respondError(c, http.StatusBadRequest, "nothing to update")
		return
	}

	cfg, err := h.store.UpdateQuantumConfig(c.Request.Context(), id, fields)
	if err != nil {
		storeError(c, err, "error updating quantum config")
		return
	}

	h.audit(c, "quantum_config", id, "update", "")
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

func (h *Handler) DeleteQuantumConfig(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteQuantumConfig(c.Request.Context(), id); err != nil {
		storeError(c, err, "error deleting quantum config")
		return
	}

	h.audit(c, "quantum_config", id, "delete", "")
	c.JSON(http.StatusOK, gin.H{"message": "quantum config deleted"})
}

// ====== РЕЗУЛЬТАТЫ АНАЛИЗА ======

func (h *Handler) ListAnalysisResults(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c, 10, 100)
	if !ok {
		return
	}
	results, err := h.store.GetAnalysisResults(c.Request.Context(), org, limit)
	if err != nil {
		storeError(c, err, "error fetching analysis results")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) GetAnalysisResult(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.store.GetAnalysisResult(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, "error fetching analysis result")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": r})
}
