package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"quantumeyes/internal/metrics"
	"quantumeyes/internal/models"
	"quantumeyes/internal/netsim"
	"quantumeyes/internal/quantum"

	"github.com/gin-gonic/gin"
)

const (
	graphDemoSize     = 30
	detectionDemoSize = 50
	maxDemoData       = 1000
	// кластеризация квадратична по степени узла
	maxInputConnections = 1000
)

func (h *Handler) QuantumStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.quantum.Status())
}

func (h *Handler) ConfigureQuantum(c *gin.Context) {
	var req quantum.ConfigUpdate
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.quantum.Configure(req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	h.audit(c, "quantum", 0, "configure", "qubits=%d shots=%d", st.Qubits, st.Shots)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "configuration updated",
		"config":  st,
	})
}

type ibmConnectRequest struct {
	Token string `json:"token"`
}

func (h *Handler) ConnectIBM(c *gin.Context) {
	var req ibmConnectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	res, err := h.quantum.ConnectIBM(c.Request.Context(), req.Token)
	if err != nil {
		slog.Warn("ibm quantum connect failed", "error", err)
		respondError(c, http.StatusBadGateway, "IBM Quantum connection failed: "+err.Error())
		return
	}

	h.audit(c, "quantum", 0, "ibm_connect", "demo=%t", res.Demo)
	c.JSON(http.StatusOK, res)
}

// CircuitDemo рисует тестовую схему и гистограмму демонстрационных отсчётов.
func (h *Handler) CircuitDemo(c *gin.Context) {
	st := h.quantum.Status()
	counts := h.quantum.CircuitDemo()

	circuitURL, err := h.viz.RenderCircuit(quantum.TestCircuitQASM(st.Qubits))
	if err != nil {
		storeError(c, err, "error rendering circuit")
		return
	}
	byState := make(map[string]int, len(counts))
	for _, sc := range counts {
		byState[sc.State] = sc.Count
	}
	histURL, err := h.viz.RenderHistogram(byState, "Résultats du circuit de démonstration")
	if err != nil {
		storeError(c, err, "error rendering histogram")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":              "success",
		"circuit_image_url":   circuitURL,
		"histogram_image_url": histURL,
		"counts":              counts,
		"num_qubits":          st.Qubits,
		"shots":               st.Shots,
	})
}

type connectionsRequest struct {
	Connections []models.NetworkConnection `json:"connections"`
}

func (h *Handler) connectionsOrDemo(c *gin.Context, demoSize int) ([]models.NetworkConnection, bool) {
	var req connectionsRequest
	if !bindOptionalJSON(c, &req) {
		return nil, false
	}
	if len(req.Connections) == 0 {
		return h.gen.DemoData(demoSize), true
	}
	if len(req.Connections) > maxInputConnections {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("too many connections: at most %d allowed", maxInputConnections))
		return nil, false
	}
	return req.Connections, true
}

func (h *Handler) NetworkGraph(c *gin.Context) {
	conns, ok := h.connectionsOrDemo(c, graphDemoSize)
	if !ok {
		return
	}
	g := netsim.BuildGraph(conns)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"metrics": g.Metrics,
		"nodes":   g.Nodes,
		"edges":   g.Edges,
	})
}

// DetectAnomalies прогоняет демо-детектор, выполняет схему (IBM или локально)
// и сохраняет результат как AnalysisResult.
func (h *Handler) DetectAnomalies(c *gin.Context) {
	org, ok := h.orgID(c)
	if !ok {
		return
	}
	conns, ok := h.connectionsOrDemo(c, detectionDemoSize)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	d := h.quantum.DetectAnomalies(conns)
	sim := d.QuantumSimulation
	qasm := quantum.AnomalyCircuitQASM(sim.Qubits, sim.FeatureMap, sim.Ansatz)

	res := h.quantum.RunCircuit(ctx, qasm, quantum.DefaultIBMBackend, sim.Shots)
	d.CircuitResults = &res

	if url, err := h.viz.RenderCircuit(qasm); err != nil {
		slog.Warn("circuit render failed", "error", err)
	} else {
		d.CircuitImageURL = url
	}
	if url, err := h.viz.RenderHistogram(res.Counts, "Distribution des Mesures Quantiques"); err != nil {
		slog.Warn("histogram render failed", "error", err)
	} else {
		d.HistogramImageURL = url
	}

	rec, err := d.Record(org, true)
	if err == nil {
		err = h.store.CreateAnalysisResult(ctx, &rec)
	}
	if err != nil {
		slog.Warn("analysis result not saved", "error", err)
	} else {
		h.audit(c, "analysis_result", rec.ID, "create", "%d anomalies in %d connections", d.AnomaliesDetected, d.ConnectionsAnalyzed)
	}
	metrics.AnalysisRunsTotal.WithLabelValues("api").Inc()

	c.JSON(http.StatusOK, d)
}

func (h *Handler) DemoData(c *gin.Context) {
	count := detectionDemoSize
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, "invalid count")
			return
		}
		count = min(n, maxDemoData)
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": h.gen.DemoData(count)})
}

func (h *Handler) TrainModel(c *gin.Context) {
	var p quantum.TrainParams
	if !bindOptionalJSON(c, &p) {
		return
	}
	res, err := h.quantum.TrainModel(p)
	if err != nil {
		if errors.Is(err, quantum.ErrInvalidConfig) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		storeError(c, err, "error training model")
		return
	}

	h.audit(c, "quantum", 0, "train_model", "dataset=%s accuracy=%.2f", res.Dataset, res.Accuracy)
	c.JSON(http.StatusOK, res)
}
