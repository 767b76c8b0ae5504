package quantum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"quantumeyes/internal/metrics"

	"github.com/sony/gobreaker"
)

const (
	ibmComponent        = "ibm_quantum"
	defaultPollInterval = time.Second
	defaultMaxPolls     = 60
	DefaultIBMBackend   = "ibmq_qasm_simulator"

	// hub/group/project открытого аккаунта IBM Quantum
	ibmHub     = "ibm-q"
	ibmGroup   = "open"
	ibmProject = "main"
)

var (
	ErrNotConnected = errors.New("ibm quantum: not connected")
	ErrJobFailed    = errors.New("ibm quantum: job failed")
	ErrJobTimeout   = errors.New("ibm quantum: job timed out")
)

type Backend struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// API больше не отдаёт список бэкендов открытому аккаунту, поэтому он фиксирован.
var ibmBackends = []Backend{
	{Name: "ibmq_qasm_simulator", Status: "active", Description: "Simulateur QASM IBM"},
	{Name: "simulator_statevector", Status: "active", Description: "Simulateur de vecteur d'état"},
	{Name: "simulator_mps", Status: "active", Description: "Simulateur MPS"},
	{Name: "simulator_extended_stabilizer", Status: "active", Description: "Simulateur à stabilisateur étendu"},
	{Name: "simulator_stabilizer", Status: "active", Description: "Simulateur à stabilisateur"},
	{Name: "ibm_brisbane", Status: "active", Description: "IBM Quantum System"},
	{Name: "ibm_osaka", Status: "active", Description: "IBM Quantum System"},
	{Name: "ibm_kyoto", Status: "active", Description: "IBM Quantum System"},
}

type IBMAccount struct {
	ID string `json:"id"`
}

// IBMClient: REST-клиент IBM Quantum. Все запросы идут через circuit breaker.
type IBMClient struct {
	endpoint string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker

	pollInterval time.Duration
	maxPolls     int

	mu        sync.RWMutex
	token     string
	account   *IBMAccount
	connected bool
}

type IBMOption func(*IBMClient)

func WithHTTPClient(c *http.Client) IBMOption {
	return func(ic *IBMClient) { ic.http = c }
}

func WithPolling(interval time.Duration, maxPolls int) IBMOption {
	return func(ic *IBMClient) {
		ic.pollInterval = interval
		ic.maxPolls = maxPolls
	}
}

func NewIBMClient(endpoint, token string, opts ...IBMOption) *IBMClient {
	c := &IBMClient{
		endpoint:     strings.TrimRight(endpoint, "/"),
		http:         &http.Client{Timeout: 30 * time.Second},
		token:        token,
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        ibmComponent,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"component", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return c
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (c *IBMClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *IBMClient) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *IBMClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *IBMClient) Backends() []Backend {
	out := make([]Backend, len(ibmBackends))
	copy(out, ibmBackends)
	return out
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *IBMClient) do(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Error.Message != "" {
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, ae.Error.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Connect проверяет токен запросом /me и запоминает его.
func (c *IBMClient) Connect(ctx context.Context, token string) (*IBMAccount, error) {
	v, err := c.breaker.Execute(func() (interface{}, error) {
		var acc IBMAccount
		if err := c.do(ctx, http.MethodGet, "/me", token, nil, &acc); err != nil {
			return nil, err
		}
		return &acc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ibm quantum connect: %w", err)
	}

	acc := v.(*IBMAccount)
	c.mu.Lock()
	c.token = token
	c.account = acc
	c.connected = true
	c.mu.Unlock()

	slog.Info("connected to ibm quantum", "user_id", acc.ID)
	return acc, nil
}

type jobRequest struct {
	Backend struct {
		Name string `json:"name"`
	} `json:"backend"`
	QObject struct {
		QASM   string `json:"qasm"`
		Shots  int    `json:"shots"`
		Config struct {
			Memory bool `json:"memory"`
		} `json:"config"`
	} `json:"qObject"`
}

type jobStatus struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Results struct {
		Counts map[string]int `json:"counts"`
	} `json:"results"`
}

func jobsPath() string {
	return fmt.Sprintf("/Providers/%s/Groups/%s/Projects/%s/Jobs", ibmHub, ibmGroup, ibmProject)
}

// Execute отправляет QASM-схему и ждёт завершения задачи.
func (c *IBMClient) Execute(ctx context.Context, qasm, backend string, shots int) (*CircuitResult, error) {
	token := c.Token()
	if !c.Connected() || token == "" {
		return nil, ErrNotConnected
	}
	if backend == "" {
		backend = DefaultIBMBackend
	}

	v, err := c.breaker.Execute(func() (interface{}, error) {
		var req jobRequest
		req.Backend.Name = backend
		req.QObject.QASM = qasm
		req.QObject.Shots = shots
		req.QObject.Config.Memory = true

		var created jobStatus
		if err := c.do(ctx, http.MethodPost, jobsPath(), token, req, &created); err != nil {
			return nil, fmt.Errorf("submit job: %w", err)
		}
		return c.waitForJob(ctx, token, created.ID)
	})
	if err != nil {
		return nil, err
	}

	job := v.(*jobStatus)
	return &CircuitResult{
		Counts:      job.Results.Counts,
		Status:      job.Status,
		Success:     true,
		Date:        time.Now(),
		BackendName: backend,
	}, nil
}

func (c *IBMClient) waitForJob(ctx context.Context, token, id string) (*jobStatus, error) {
	for i := 0; i < c.maxPolls; i++ {
		var job jobStatus
		if err := c.do(ctx, http.MethodGet, jobsPath()+"/"+id, token, nil, &job); err != nil {
			return nil, fmt.Errorf("poll job %s: %w", id, err)
		}

		switch job.Status {
		case "COMPLETED":
			return &job, nil
		case "ERROR", "FAILED":
			return nil, fmt.Errorf("%w: job %s status %s", ErrJobFailed, id, job.Status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
	return nil, fmt.Errorf("%w: job %s", ErrJobTimeout, id)
}
