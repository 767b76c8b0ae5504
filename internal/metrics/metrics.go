package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantumeyes_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quantumeyes_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"route"},
	)
)

// Real-time simulator
var (
	SimulatorRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quantumeyes_simulator_running",
			Help: "1 while the real-time simulator is generating batches",
		},
	)

	SimulatorBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantumeyes_simulator_batches_total",
			Help: "Simulator batches by outcome",
		},
		[]string{"status"},
	)

	SimulatorConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quantumeyes_simulator_connections_total",
			Help: "Synthetic network connections written by the simulator",
		},
	)

	SimulatorAnomaliesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quantumeyes_simulator_anomalies_total",
			Help: "Synthetic connections labelled anomalous by the simulator",
		},
	)

	AnalysisRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantumeyes_analysis_runs_total",
			Help: "Anomaly analysis runs by origin (simulator, api)",
		},
		[]string{"origin"},
	)
)

// IBM Quantum client
var (
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantumeyes_circuit_breaker_state_changes_total",
			Help: "Circuit breaker transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// 0=closed, 1=half-open, 2=open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quantumeyes_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)

	QuantumJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantumeyes_quantum_jobs_total",
			Help: "Circuit executions by backend kind (remote, local_fallback)",
		},
		[]string{"backend"},
	)
)

// Stream
var StreamClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "quantumeyes_stream_clients",
		Help: "Connected simulator stream websocket clients",
	},
)
