// Package quantum имитирует сервис квантового машинного обучения:
// статус, схемы, локальная "симуляция", анализ аномалий и клиент IBM Quantum.
package quantum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"quantumeyes/internal/metrics"
	"quantumeyes/internal/netsim"
)

const (
	MinQubits = 1
	MaxQubits = 20
	MinShots  = 1
	MaxShots  = 100000
)

var ErrInvalidConfig = errors.New("invalid quantum configuration")

type Status struct {
	Status       string `json:"status"`
	Qubits       int    `json:"qubits"`
	FeatureMap   string `json:"feature_map"`
	Ansatz       string `json:"ansatz"`
	Shots        int    `json:"shots"`
	ModelType    string `json:"model_type"`
	IBMConnected bool   `json:"ibm_connected"`
}

func DefaultStatus() Status {
	return Status{
		Status:     "running",
		Qubits:     4,
		FeatureMap: "zz",
		Ansatz:     "real",
		Shots:      1024,
		ModelType:  "qsvc",
	}
}

// ConfigUpdate задаёт частичное обновление, nil-поля не трогаются.
type ConfigUpdate struct {
	Qubits     *int    `json:"qubits"`
	FeatureMap *string `json:"feature_map"`
	Ansatz     *string `json:"ansatz"`
	Shots      *int    `json:"shots"`
	ModelType  *string `json:"model_type"`
}

func (u ConfigUpdate) validate() error {
	if u.Qubits != nil && (*u.Qubits < MinQubits || *u.Qubits > MaxQubits) {
		return fmt.Errorf("%w: qubits must be between %d and %d", ErrInvalidConfig, MinQubits, MaxQubits)
	}
	if u.Shots != nil && (*u.Shots < MinShots || *u.Shots > MaxShots) {
		return fmt.Errorf("%w: shots must be between %d and %d", ErrInvalidConfig, MinShots, MaxShots)
	}
	for name, v := range map[string]*string{"feature_map": u.FeatureMap, "ansatz": u.Ansatz, "model_type": u.ModelType} {
		if v != nil && *v == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, name)
		}
	}
	return nil
}

// Service хранит состояние "квантового" сервиса в памяти процесса.
type Service struct {
	mu     sync.RWMutex
	status Status

	gen *netsim.Generator
	ibm *IBMClient
	now func() time.Time
}

// NewService: ibm может быть nil, тогда схемы всегда считаются локально.
func NewService(gen *netsim.Generator, ibm *IBMClient) *Service {
	if gen == nil {
		gen = netsim.NewGenerator(nil)
	}
	return &Service{
		status: DefaultStatus(),
		gen:    gen,
		ibm:    ibm,
		now:    time.Now,
	}
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Service) Configure(u ConfigUpdate) (Status, error) {
	if err := u.validate(); err != nil {
		return s.Status(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Qubits != nil {
		s.status.Qubits = *u.Qubits
	}
	if u.FeatureMap != nil {
		s.status.FeatureMap = *u.FeatureMap
	}
	if u.Ansatz != nil {
		s.status.Ansatz = *u.Ansatz
	}
	if u.Shots != nil {
		s.status.Shots = *u.Shots
	}
	if u.ModelType != nil {
		s.status.ModelType = *u.ModelType
	}
	return s.status, nil
}

func (s *Service) setIBMConnected(v bool) {
	s.mu.Lock()
	s.status.IBMConnected = v
	s.mu.Unlock()
}

// демо-список, который отдаётся без токена
var demoBackends = []string{"ibmq_qasm_simulator", "ibmq_santiago", "ibmq_manila"}

type ConnectResult struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	UserID   string   `json:"userId,omitempty"`
	Backends []string `json:"backends"`
	Demo     bool     `json:"demo"`
}

// ConnectIBM подключается к IBM Quantum. Без токена (ни в запросе, ни в конфиге)
// сервис помечается подключённым в демо-режиме.
func (s *Service) ConnectIBM(ctx context.Context, token string) (*ConnectResult, error) {
	if token == "" && s.ibm != nil {
		token = s.ibm.Token()
	}

	if token == "" || s.ibm == nil {
		s.setIBMConnected(true)
		slog.Info("ibm quantum connected in demo mode")
		return &ConnectResult{
			Status:   "success",
			Message:  "connected to IBM Quantum (demo)",
			Backends: demoBackends,
			Demo:     true,
		}, nil
	}

	account, err := s.ibm.Connect(ctx, token)
	if err != nil {
		s.setIBMConnected(false)
		return nil, err
	}
	s.setIBMConnected(true)

	backends := s.ibm.Backends()
	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.Name)
	}
	return &ConnectResult{
		Status:   "success",
		Message:  "connected to IBM Quantum",
		UserID:   account.ID,
		Backends: names,
	}, nil
}

// RunCircuit выполняет схему на IBM, если клиент подключён, иначе (или при ошибке) локально.
func (s *Service) RunCircuit(ctx context.Context, qasm, backend string, shots int) CircuitResult {
	if s.ibm != nil && s.ibm.Connected() {
		res, err := s.ibm.Execute(ctx, qasm, backend, shots)
		if err == nil {
			metrics.QuantumJobsTotal.WithLabelValues("remote").Inc()
			return *res
		}
		slog.Warn("ibm quantum execution failed, simulating locally", "backend", backend, "error", err)
		metrics.QuantumJobsTotal.WithLabelValues("local_fallback").Inc()
		return s.SimulateLocally(qasm, shots)
	}

	metrics.QuantumJobsTotal.WithLabelValues("local").Inc()
	return s.SimulateLocally(qasm, shots)
}
