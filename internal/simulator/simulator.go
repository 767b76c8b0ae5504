// Package simulator периодически генерирует синтетические соединения,
// сохраняет их и запускает по ним анализ графа и аномалий.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"quantumeyes/internal/config"
	"quantumeyes/internal/metrics"
	"quantumeyes/internal/models"
	"quantumeyes/internal/netsim"
	"quantumeyes/internal/quantum"

	"github.com/jonboulle/clockwork"
)

const (
	// сколько последних соединений берётся для графа и анализа
	analysisWindow = 50
	graphEvery     = 10
	analysisEvery  = 30

	minIntervalMs = int(config.MinSimulationInterval / time.Millisecond)
	maxBatchSize  = config.MaxSimulationBatchSize

	EventBatch    = "batch"
	EventGraph    = "graph"
	EventAnalysis = "analysis"
	EventState    = "state"
)

var ErrInvalidConfig = errors.New("invalid simulation configuration")

type Store interface {
	CreateManyNetworkConnections(ctx context.Context, conns []models.NetworkConnection) error
	GetNetworkConnections(ctx context.Context, orgID uint, limit int) ([]models.NetworkConnection, error)
	DeleteNetworkConnections(ctx context.Context, orgID uint) (int64, error)
	CreateAnalysisResult(ctx context.Context, r *models.AnalysisResult) error
}

type Publisher interface {
	Publish(eventType string, data any)
}

type Config struct {
	IntervalMs          int     `json:"interval"`
	ConnectionsPerBatch int     `json:"connectionsPerBatch"`
	AnomalyRate         float64 `json:"anomalyRate"`
	OrganizationID      uint    `json:"organizationId"`
	Enabled             bool    `json:"enabled"`
}

func (c Config) interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Overrides: параметры запуска; незаданные берутся из конфигурации по умолчанию.
type Overrides struct {
	IntervalMs          *int     `json:"interval"`
	ConnectionsPerBatch *int     `json:"connectionsPerBatch"`
	AnomalyRate         *float64 `json:"anomalyRate"`
	OrganizationID      *uint    `json:"organizationId"`
}

func (o Overrides) apply(c Config) (Config, error) {
	if o.IntervalMs != nil {
		c.IntervalMs = *o.IntervalMs
	}
	if o.ConnectionsPerBatch != nil {
		c.ConnectionsPerBatch = *o.ConnectionsPerBatch
	}
	if o.AnomalyRate != nil {
		c.AnomalyRate = *o.AnomalyRate
	}
	if o.OrganizationID != nil {
		c.OrganizationID = *o.OrganizationID
	}

	switch {
	case c.IntervalMs < minIntervalMs:
		return c, fmt.Errorf("%w: interval must be at least %d ms", ErrInvalidConfig, minIntervalMs)
	case c.ConnectionsPerBatch < 1 || c.ConnectionsPerBatch > maxBatchSize:
		return c, fmt.Errorf("%w: connectionsPerBatch must be between 1 and %d", ErrInvalidConfig, maxBatchSize)
	case c.AnomalyRate < 0 || c.AnomalyRate > 1:
		return c, fmt.Errorf("%w: anomalyRate must be between 0 and 1", ErrInvalidConfig)
	case c.OrganizationID == 0:
		return c, fmt.Errorf("%w: organizationId is required", ErrInvalidConfig)
	}
	return c, nil
}

type Stats struct {
	IsRunning             bool       `json:"isRunning"`
	TotalConnections      int        `json:"totalConnections"`
	TotalAnomalies        int        `json:"totalAnomalies"`
	LastAnalysisTimestamp *time.Time `json:"lastAnalysisTimestamp"`
	AnomaliesDetected     int        `json:"anomaliesDetected"`
}

type StatusReport struct {
	Config             Config             `json:"config"`
	Stats              Stats              `json:"stats"`
	LastGraphData      *netsim.Graph      `json:"lastGraphData"`
	LastAnalysisResult *quantum.Detection `json:"lastAnalysisResult"`
}

type Simulator struct {
	store   Store
	quantum *quantum.Service
	gen     *netsim.Generator
	pub     Publisher
	clock   clockwork.Clock

	defaults Config

	// ctrl сериализует Start/Stop/Reset, mu защищает состояние
	ctrl sync.Mutex
	mu   sync.Mutex

	cfg    Config
	cancel context.CancelFunc
	done   chan struct{}

	totalConnections int
	totalAnomalies   int
	lastGraph        *netsim.Graph
	lastAnalysis     *quantum.Detection
	lastAnalysisAt   *time.Time
}

// New: pub может быть nil, тогда события никуда не публикуются.
func New(store Store, qs *quantum.Service, gen *netsim.Generator, pub Publisher, clock clockwork.Clock, defaults Config) *Simulator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Simulator{
		store:    store,
		quantum:  qs,
		gen:      gen,
		pub:      pub,
		clock:    clock,
		defaults: defaults,
		cfg:      defaults,
	}
}

func (s *Simulator) publish(eventType string, data any) {
	if s.pub != nil {
		s.pub.Publish(eventType, data)
	}
}

// Start запускает генерацию; если симуляция уже идёт, она перезапускается с новой конфигурацией.
// Первая пачка генерируется сразу.
func (s *Simulator) Start(o Overrides) (Config, error) {
	cfg, err := o.apply(s.defaults)
	if err != nil {
		return Config{}, err
	}
	cfg.Enabled = true

	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.stopLoop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.cfg = cfg
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	metrics.SimulatorRunning.Set(1)
	go s.run(ctx, cfg, done)

	slog.Info("simulation started",
		"interval_ms", cfg.IntervalMs,
		"batch", cfg.ConnectionsPerBatch,
		"anomaly_rate", cfg.AnomalyRate,
		"organization_id", cfg.OrganizationID,
	)
	s.publish(EventState, map[string]any{"running": true, "config": cfg})
	return cfg, nil
}

func (s *Simulator) Stop() Stats {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.stopLoop()
	slog.Info("simulation stopped")

	stats := s.Status().Stats
	s.publish(EventState, map[string]any{"running": false, "stats": stats})
	return stats
}

// stopLoop останавливает горутину и ждёт её завершения. Вызывается под ctrl.
func (s *Simulator) stopLoop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.cfg.Enabled = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	metrics.SimulatorRunning.Set(0)
}

// Reset останавливает симуляцию, удаляет соединения организации и обнуляет счётчики.
func (s *Simulator) Reset(ctx context.Context) (Config, error) {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.stopLoop()

	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	deleted, err := s.store.DeleteNetworkConnections(ctx, cfg.OrganizationID)
	if err != nil {
		return cfg, fmt.Errorf("reset simulation: %w", err)
	}

	s.mu.Lock()
	s.totalConnections = 0
	s.totalAnomalies = 0
	s.lastGraph = nil
	s.lastAnalysis = nil
	s.lastAnalysisAt = nil
	s.mu.Unlock()

	slog.Info("simulation reset", "organization_id", cfg.OrganizationID, "deleted", deleted)
	s.publish(EventState, map[string]any{"running": false, "reset": true})
	return cfg, nil
}

func (s *Simulator) Status() StatusReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	anomalies := 0
	if s.lastAnalysis != nil {
		anomalies = s.lastAnalysis.AnomaliesDetected
	}
	return StatusReport{
		Config: s.cfg,
		Stats: Stats{
			IsRunning:             s.cancel != nil && s.cfg.Enabled,
			TotalConnections:      s.totalConnections,
			TotalAnomalies:        s.totalAnomalies,
			LastAnalysisTimestamp: s.lastAnalysisAt,
			AnomaliesDetected:     anomalies,
		},
		LastGraphData:      s.lastGraph,
		LastAnalysisResult: s.lastAnalysis,
	}
}

func (s *Simulator) run(ctx context.Context, cfg Config, done chan struct{}) {
	defer close(done)

	ticker := s.clock.NewTicker(cfg.interval())
	defer ticker.Stop()

	s.batch(ctx, cfg)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.batch(ctx, cfg)
		}
	}
}

// batch никогда не падает: ошибки логируются, цикл продолжается.
func (s *Simulator) batch(ctx context.Context, cfg Config) {
	conns := s.gen.Connections(cfg.ConnectionsPerBatch, cfg.AnomalyRate, cfg.OrganizationID)
	if err := s.store.CreateManyNetworkConnections(ctx, conns); err != nil {
		if ctx.Err() == nil {
			slog.Error("simulation batch failed", "error", err)
			metrics.SimulatorBatchesTotal.WithLabelValues("error").Inc()
		}
		return
	}

	anomalies := 0
	for _, c := range conns {
		if c.IsAnomaly {
			anomalies++
		}
	}

	s.mu.Lock()
	s.totalConnections += len(conns)
	s.totalAnomalies += anomalies
	total, totalAnomalies := s.totalConnections, s.totalAnomalies
	s.mu.Unlock()

	metrics.SimulatorBatchesTotal.WithLabelValues("ok").Inc()
	metrics.SimulatorConnectionsTotal.Add(float64(len(conns)))
	metrics.SimulatorAnomaliesTotal.Add(float64(anomalies))

	slog.Debug("simulation batch generated", "total_connections", total, "total_anomalies", totalAnomalies)
	s.publish(EventBatch, map[string]any{
		"connections":      len(conns),
		"anomalies":        anomalies,
		"totalConnections": total,
		"totalAnomalies":   totalAnomalies,
	})

	if total%graphEvery == 0 {
		s.updateGraph(ctx, cfg)
	}
	if total%analysisEvery == 0 {
		s.analyze(ctx, cfg)
	}
}

func (s *Simulator) updateGraph(ctx context.Context, cfg Config) {
	conns, err := s.store.GetNetworkConnections(ctx, cfg.OrganizationID, analysisWindow)
	if err != nil {
		slog.Error("simulation graph update failed", "error", err)
		return
	}
	if len(conns) == 0 {
		return
	}

	g := netsim.BuildGraph(conns)
	s.mu.Lock()
	s.lastGraph = &g
	s.mu.Unlock()

	s.publish(EventGraph, g.Metrics)
}

func (s *Simulator) analyze(ctx context.Context, cfg Config) {
	conns, err := s.store.GetNetworkConnections(ctx, cfg.OrganizationID, analysisWindow)
	if err != nil {
		slog.Error("simulation analysis failed", "error", err)
		return
	}
	if len(conns) == 0 {
		return
	}

	d := s.quantum.AnalyzeLabelled(conns)
	rec, err := d.Record(cfg.OrganizationID, false)
	if err != nil {
		slog.Error("simulation analysis encode failed", "error", err)
		return
	}
	if err := s.store.CreateAnalysisResult(ctx, &rec); err != nil {
		slog.Error("simulation analysis save failed", "error", err)
	}
	metrics.AnalysisRunsTotal.WithLabelValues("simulator").Inc()

	now := s.clock.Now()
	s.mu.Lock()
	s.lastAnalysis = &d
	s.lastAnalysisAt = &now
	s.mu.Unlock()

	slog.Info("simulation anomaly detection completed",
		"anomalies", d.AnomaliesDetected,
		"connections", d.ConnectionsAnalyzed,
	)
	s.publish(EventAnalysis, d)
}
