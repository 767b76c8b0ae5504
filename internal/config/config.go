package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Границы параметров симулятора: те же проверяет simulator при каждом запуске.
const (
	MinSimulationInterval  = 100 * time.Millisecond
	MaxSimulationBatchSize = 1000
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string

	LogLevel  string
	LogFormat string

	DefaultOrganizationID uint

	AdminUsername string
	AdminPassword string

	IBMQuantumAPIKey   string
	IBMQuantumEndpoint string

	VisualizationDir string

	SimulationInterval    time.Duration
	SimulationBatchSize   int
	SimulationAnomalyRate float64
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из произвольного источника переменных.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBDSN:              getenv("DB_DSN"),
		ServerPort:         getenv("SERVER_PORT"),
		SessionSecret:      getenv("SESSION_SECRET"),
		LogLevel:           getenv("LOG_LEVEL"),
		LogFormat:          getenv("LOG_FORMAT"),
		AdminUsername:      getenv("ADMIN_USERNAME"),
		AdminPassword:      getenv("ADMIN_PASSWORD"),
		IBMQuantumAPIKey:   getenv("IBM_QUANTUM_API_KEY"),
		IBMQuantumEndpoint: getenv("IBM_QUANTUM_ENDPOINT"),
		VisualizationDir:   getenv("VISUALIZATION_DIR"),

		DefaultOrganizationID: 1,
		SimulationInterval:    5 * time.Second,
		SimulationBatchSize:   10,
		SimulationAnomalyRate: 0.05,
	}

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin@quantumeyes.local"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "Admin123!"
	}
	if cfg.IBMQuantumEndpoint == "" {
		cfg.IBMQuantumEndpoint = "https://api.quantum-computing.ibm.com/v2"
	}
	if cfg.VisualizationDir == "" {
		cfg.VisualizationDir = "./data/quantum-viz"
	}

	if v := getenv("DEFAULT_ORGANIZATION_ID"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid DEFAULT_ORGANIZATION_ID %q", v)
		}
		cfg.DefaultOrganizationID = uint(id)
	}
	if v := getenv("SIMULATION_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < MinSimulationInterval {
			return nil, fmt.Errorf("invalid SIMULATION_INTERVAL %q: must be at least %s", v, MinSimulationInterval)
		}
		cfg.SimulationInterval = d
	}
	if v := getenv("SIMULATION_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxSimulationBatchSize {
			return nil, fmt.Errorf("invalid SIMULATION_BATCH_SIZE %q: must be between 1 and %d", v, MaxSimulationBatchSize)
		}
		cfg.SimulationBatchSize = n
	}
	if v := getenv("SIMULATION_ANOMALY_RATE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 || r > 1 {
			return nil, fmt.Errorf("invalid SIMULATION_ANOMALY_RATE %q", v)
		}
		cfg.SimulationAnomalyRate = r
	}

	return cfg, nil
}
