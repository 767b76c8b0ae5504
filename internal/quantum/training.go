package quantum

import (
	"fmt"
	"math"
	"time"
)

const (
	defaultTrainSplit    = 0.8
	defaultMaxIterations = 100
	maxIterationsLimit   = 1000
)

// размеры обучающих наборов: обычные соединения и аномалии
var datasetSizes = map[string][2]int{
	"small":     {200, 10},
	"medium":    {1000, 50},
	"large":     {5000, 250},
	"synthetic": {1000, 50},
}

type TrainParams struct {
	Dataset       string  `json:"dataset"`
	TrainSplit    float64 `json:"train_split"`
	NumQubits     int     `json:"num_qubits"`
	ModelType     string  `json:"model_type"`
	FeatureMap    string  `json:"feature_map"`
	Ansatz        string  `json:"ansatz"`
	Reps          int     `json:"reps"`
	Optimizer     string  `json:"optimizer"`
	Backend       string  `json:"backend"`
	Shots         int     `json:"shots"`
	MaxIterations int     `json:"max_iterations"`
}

type ModelInfo struct {
	Type       string `json:"type"`
	Qubits     int    `json:"qubits"`
	FeatureMap string `json:"feature_map"`
	Ansatz     string `json:"ansatz"`
	Reps       int    `json:"reps"`
	Optimizer  string `json:"optimizer"`
	Backend    string `json:"backend"`
	Shots      int    `json:"shots"`
}

type TrainResult struct {
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	Accuracy     float64   `json:"accuracy"` // проценты
	Precision    float64   `json:"precision"`
	Recall       float64   `json:"recall"`
	F1Score      float64   `json:"f1_score"`
	Dataset      string    `json:"dataset"`
	TrainSamples int       `json:"train_samples"`
	TestSamples  int       `json:"test_samples"`
	AnomalyRatio float64   `json:"anomaly_ratio"`
	Iterations   int       `json:"iterations"`
	TrainingTime float64   `json:"training_time"` // секунды
	Model        ModelInfo `json:"model"`
	CompletedAt  time.Time `json:"completed_at"`
}

func (p *TrainParams) applyDefaults(st Status) error {
	if p.Dataset == "" {
		p.Dataset = "synthetic"
	}
	if _, ok := datasetSizes[p.Dataset]; !ok {
		return fmt.Errorf("%w: unknown dataset %q", ErrInvalidConfig, p.Dataset)
	}
	if p.TrainSplit == 0 {
		p.TrainSplit = defaultTrainSplit
	}
	if p.TrainSplit <= 0 || p.TrainSplit >= 1 {
		return fmt.Errorf("%w: train_split must be between 0 and 1", ErrInvalidConfig)
	}
	if p.NumQubits == 0 {
		p.NumQubits = st.Qubits
	}
	if p.NumQubits < MinQubits || p.NumQubits > MaxQubits {
		return fmt.Errorf("%w: num_qubits must be between %d and %d", ErrInvalidConfig, MinQubits, MaxQubits)
	}
	if p.Shots == 0 {
		p.Shots = st.Shots
	}
	if p.Shots < MinShots || p.Shots > MaxShots {
		return fmt.Errorf("%w: shots must be between %d and %d", ErrInvalidConfig, MinShots, MaxShots)
	}
	if p.MaxIterations == 0 {
		p.MaxIterations = defaultMaxIterations
	}
	if p.MaxIterations < 1 || p.MaxIterations > maxIterationsLimit {
		return fmt.Errorf("%w: max_iterations must be between 1 and %d", ErrInvalidConfig, maxIterationsLimit)
	}
	if p.Reps <= 0 {
		p.Reps = 2
	}
	if p.ModelType == "" {
		p.ModelType = st.ModelType
	}
	if p.FeatureMap == "" {
		p.FeatureMap = st.FeatureMap
	}
	if p.Ansatz == "" {
		p.Ansatz = st.Ansatz
	}
	if p.Optimizer == "" {
		p.Optimizer = "cobyla"
	}
	if p.Backend == "" {
		p.Backend = LocalBackend
	}
	return nil
}

// TrainModel "обучает" модель: генерирует размеченный набор, делит его на выборки
// и возвращает правдоподобные метрики. Параметры модели становятся текущими.
func (s *Service) TrainModel(p TrainParams) (*TrainResult, error) {
	if err := p.applyDefaults(s.Status()); err != nil {
		return nil, err
	}

	size := datasetSizes[p.Dataset]
	set := s.gen.TrainingDataset(size[0], size[1], 0)
	total := len(set.Connections)
	anomalies := 0
	for _, l := range set.Labels {
		if l {
			anomalies++
		}
	}
	train := int(math.Round(float64(total) * p.TrainSplit))

	accuracy := s.gen.Float(80, 97)
	precision := math.Min(accuracy+s.gen.Float(-3, 3), 99)
	recall := math.Min(accuracy+s.gen.Float(-5, 2), 99)
	iterations := min(p.MaxIterations, 20+s.gen.IntN(p.MaxIterations))

	s.mu.Lock()
	s.status.Qubits = p.NumQubits
	s.status.ModelType = p.ModelType
	s.status.FeatureMap = p.FeatureMap
	s.status.Ansatz = p.Ansatz
	s.status.Shots = p.Shots
	s.mu.Unlock()

	return &TrainResult{
		Status:       "success",
		Message:      "model trained",
		Accuracy:     round2(accuracy),
		Precision:    round2(precision),
		Recall:       round2(recall),
		F1Score:      round2(2 * precision * recall / (precision + recall)),
		Dataset:      p.Dataset,
		TrainSamples: train,
		TestSamples:  total - train,
		AnomalyRatio: round2(float64(anomalies) / float64(total)),
		Iterations:   iterations,
		TrainingTime: round2(float64(iterations*p.NumQubits) * 0.01 * s.gen.Float(1, 2)),
		Model: ModelInfo{
			Type:       p.ModelType,
			Qubits:     p.NumQubits,
			FeatureMap: p.FeatureMap,
			Ansatz:     p.Ansatz,
			Reps:       p.Reps,
			Optimizer:  p.Optimizer,
			Backend:    p.Backend,
			Shots:      p.Shots,
		},
		CompletedAt: s.now(),
	}, nil
}
