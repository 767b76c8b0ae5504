package quantum

import (
	"encoding/json"
	"fmt"
	"math"

	"quantumeyes/internal/models"
	"quantumeyes/internal/netsim"
)

// каждое N-е соединение помечается как аномалия в демо-детекторе
const detectionStride = 10

var detectorTypes = []string{"port_scan", "data_exfiltration", "brute_force"}

type Anomaly struct {
	ConnectionID  uint    `json:"connection_id"`
	SourceIP      string  `json:"source_ip"`
	DestinationIP string  `json:"destination_ip"`
	Protocol      string  `json:"protocol"`
	Port          int     `json:"port"`
	AnomalyScore  float64 `json:"anomaly_score"`
	AnomalyType   string  `json:"anomaly_type"`
}

type SimulationParams struct {
	Qubits     int    `json:"qubits"`
	Shots      int    `json:"shots"`
	FeatureMap string `json:"feature_map"`
	Ansatz     string `json:"ansatz"`
}

type Detection struct {
	Status              string           `json:"status"`
	Metrics             netsim.Metrics   `json:"metrics"`
	AnomaliesDetected   int              `json:"anomalies_detected"`
	Anomalies           []Anomaly        `json:"anomalies"`
	ExecutionTime       float64          `json:"execution_time"` // секунды
	ConnectionsAnalyzed int              `json:"connections_analyzed"`
	QuantumSimulation   SimulationParams `json:"quantum_simulation"`
	CircuitResults      *CircuitResult   `json:"circuit_results,omitempty"`
	CircuitImageURL     string           `json:"circuit_image_url,omitempty"`
	HistogramImageURL   string           `json:"histogram_image_url,omitempty"`
}

func (s *Service) simulationParams() SimulationParams {
	st := s.Status()
	return SimulationParams{Qubits: st.Qubits, Shots: st.Shots, FeatureMap: st.FeatureMap, Ansatz: st.Ansatz}
}

func anomalyFrom(c models.NetworkConnection, id uint, score float64, typ string) Anomaly {
	return Anomaly{
		ConnectionID:  id,
		SourceIP:      c.SourceIP,
		DestinationIP: c.DestinationIP,
		Protocol:      c.Protocol,
		Port:          c.DestinationPort,
		AnomalyScore:  score,
		AnomalyType:   typ,
	}
}

// DetectAnomalies это демо-детектор. Метрики графа считаются по-настоящему,
// а аномалией объявляется каждое десятое соединение.
func (s *Service) DetectAnomalies(conns []models.NetworkConnection) Detection {
	d := Detection{
		Status:              "success",
		Metrics:             netsim.BuildGraph(conns).Metrics,
		Anomalies:           make([]Anomaly, 0),
		ConnectionsAnalyzed: len(conns),
		QuantumSimulation:   s.simulationParams(),
	}

	for i := 0; i < len(conns); i += detectionStride {
		id := conns[i].ID
		if id == 0 {
			id = uint(i)
		}
		score := round2(s.gen.Float(0.85, 0.99))
		d.Anomalies = append(d.Anomalies, anomalyFrom(conns[i], id, score, detectorTypes[i%len(detectorTypes)]))
	}
	d.AnomaliesDetected = len(d.Anomalies)
	d.ExecutionTime = round2(s.gen.Float(0.5, 3.0))
	return d
}

// AnalyzeLabelled разбирает уже размеченные соединения (из симулятора):
// аномалии берутся из меток, схема прогоняется на локальном симуляторе.
func (s *Service) AnalyzeLabelled(conns []models.NetworkConnection) Detection {
	params := s.simulationParams()
	d := Detection{
		Status:              "success",
		Metrics:             netsim.BuildGraph(conns).Metrics,
		Anomalies:           make([]Anomaly, 0),
		ConnectionsAnalyzed: len(conns),
		QuantumSimulation:   params,
	}

	for _, c := range conns {
		if !c.IsAnomaly {
			continue
		}
		score := 0.85
		if c.AnomalyScore != nil {
			score = *c.AnomalyScore
		}
		typ := c.AnomalyType
		if typ == "" {
			typ = "unknown"
		}
		d.Anomalies = append(d.Anomalies, anomalyFrom(c, c.ID, score, typ))
	}
	d.AnomaliesDetected = len(d.Anomalies)

	res := s.SimulateLocally(AnomalyCircuitQASM(params.Qubits, params.FeatureMap, params.Ansatz), params.Shots)
	d.CircuitResults = &res
	d.ExecutionTime = round2(s.gen.Float(1, 3))
	return d
}

// Record превращает результат анализа в строку analysis_results.
func (d Detection) Record(orgID uint, quantum bool) (models.AnalysisResult, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("marshal detection: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("unmarshal detection: %w", err)
	}

	return models.AnalysisResult{
		OrganizationID:      orgID,
		ConnectionsAnalyzed: d.ConnectionsAnalyzed,
		AnomaliesDetected:   d.AnomaliesDetected,
		ExecutionTimeMs:     int(math.Round(d.ExecutionTime * 1000)),
		ResultData:          data,
		Quantum:             quantum,
		Qubits:              d.QuantumSimulation.Qubits,
		FeatureMap:          d.QuantumSimulation.FeatureMap,
		Ansatz:              d.QuantumSimulation.Ansatz,
		Shots:               d.QuantumSimulation.Shots,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
