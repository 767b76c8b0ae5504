package handlers

import (
	"context"
	"net/http"

	"quantumeyes/internal/database"
	"quantumeyes/internal/models"
	"quantumeyes/internal/netsim"
	"quantumeyes/internal/quantum"
	"quantumeyes/internal/simulator"
)

// Store описывает всё, что HTTP-слою нужно от базы.
type Store interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	GetOrganization(ctx context.Context, id uint) (*models.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error)
	CreateOrganizationWithOwner(ctx context.Context, org *models.Organization, ownerID uint) error
	GetUserOrganizations(ctx context.Context, userID uint) ([]models.Organization, error)
	AddUserToOrganization(ctx context.Context, ou *models.OrganizationUser) (*models.OrganizationUser, error)

	GetSecurityMetrics(ctx context.Context, orgID uint) (*models.SecurityMetrics, error)
	CreateSecurityMetrics(ctx context.Context, m *models.SecurityMetrics) error
	GetCyberMaturity(ctx context.Context, orgID uint) (*models.CyberMaturity, error)
	UpdateCyberMaturity(ctx context.Context, m *models.CyberMaturity) error
	GetNetworkActivity(ctx context.Context, orgID uint) (*database.NetworkActivitySummary, error)
	RecordNetworkActivity(ctx context.Context, a *models.NetworkActivity) error

	GetRecentThreats(ctx context.Context, orgID uint, limit int) ([]models.Threat, error)
	GetThreat(ctx context.Context, id uint) (*models.Threat, error)
	CreateThreat(ctx context.Context, t *models.Threat) error
	UpdateThreatStatus(ctx context.Context, id uint, status models.ThreatStatus) (*models.Threat, error)

	GetVulnerabilities(ctx context.Context, orgID uint) ([]models.Vulnerability, error)
	GetVulnerability(ctx context.Context, id uint) (*models.Vulnerability, error)
	CreateVulnerability(ctx context.Context, v *models.Vulnerability) error
	UpdateVulnerabilityStatus(ctx context.Context, id uint, status models.VulnStatus) (*models.Vulnerability, error)

	GetQuantumConfigs(ctx context.Context, orgID uint) ([]models.QuantumConfig, error)
	GetQuantumConfig(ctx context.Context, id uint) (*models.QuantumConfig, error)
	CreateQuantumConfig(ctx context.Context, c *models.QuantumConfig) error
	UpdateQuantumConfig(ctx context.Context, id uint, fields map[string]any) (*models.QuantumConfig, error)
	DeleteQuantumConfig(ctx context.Context, id uint) error

	GetNetworkConnections(ctx context.Context, orgID uint, limit int) ([]models.NetworkConnection, error)
	GetAnomalousConnections(ctx context.Context, orgID uint, limit int) ([]models.NetworkConnection, error)

	GetAnalysisResults(ctx context.Context, orgID uint, limit int) ([]models.AnalysisResult, error)
	GetAnalysisResult(ctx context.Context, id uint) (*models.AnalysisResult, error)
	CreateAnalysisResult(ctx context.Context, r *models.AnalysisResult) error

	GetReports(ctx context.Context, orgID uint, reportType string) ([]models.Report, error)
	GetReport(ctx context.Context, id uint) (*models.Report, error)
	CreateReport(ctx context.Context, r *models.Report) error
	DeleteReport(ctx context.Context, id uint) error

	CreateAuditLog(ctx context.Context, userID uint, entity string, entityID uint, action, details string) error
	ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type Simulation interface {
	Start(o simulator.Overrides) (simulator.Config, error)
	Stop() simulator.Stats
	Reset(ctx context.Context) (simulator.Config, error)
	Status() simulator.StatusReport
}

type Streamer interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Store      Store
	Quantum    *quantum.Service
	Visualizer *quantum.Visualizer
	Generator  *netsim.Generator
	Simulation Simulation
	Stream     Streamer

	DefaultOrganizationID uint
}

type Handler struct {
	store      Store
	quantum    *quantum.Service
	viz        *quantum.Visualizer
	gen        *netsim.Generator
	sim        Simulation
	stream     Streamer
	defaultOrg uint
}

func New(d Deps) *Handler {
	org := d.DefaultOrganizationID
	if org == 0 {
		org = 1
	}
	return &Handler{
		store:      d.Store,
		quantum:    d.Quantum,
		viz:        d.Visualizer,
		gen:        d.Generator,
		sim:        d.Simulation,
		stream:     d.Stream,
		defaultOrg: org,
	}
}
