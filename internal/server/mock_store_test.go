package server

import (
	"context"

	"quantumeyes/internal/database"
	"quantumeyes/internal/models"
	"quantumeyes/internal/simulator"

	"github.com/stretchr/testify/mock"
)

// MockStore implements handlers.Store for testing using testify/mock
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) GetOrganization(ctx context.Context, id uint) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockStore) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockStore) CreateOrganizationWithOwner(ctx context.Context, org *models.Organization, ownerID uint) error {
	return m.Called(ctx, org, ownerID).Error(0)
}

func (m *MockStore) GetUserOrganizations(ctx context.Context, userID uint) ([]models.Organization, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Organization), args.Error(1)
}

func (m *MockStore) AddUserToOrganization(ctx context.Context, ou *models.OrganizationUser) (*models.OrganizationUser, error) {
	args := m.Called(ctx, ou)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrganizationUser), args.Error(1)
}

func (m *MockStore) GetSecurityMetrics(ctx context.Context, orgID uint) (*models.SecurityMetrics, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SecurityMetrics), args.Error(1)
}

func (m *MockStore) CreateSecurityMetrics(ctx context.Context, sm *models.SecurityMetrics) error {
	return m.Called(ctx, sm).Error(0)
}

func (m *MockStore) GetCyberMaturity(ctx context.Context, orgID uint) (*models.CyberMaturity, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CyberMaturity), args.Error(1)
}

func (m *MockStore) UpdateCyberMaturity(ctx context.Context, cm *models.CyberMaturity) error {
	return m.Called(ctx, cm).Error(0)
}

func (m *MockStore) GetNetworkActivity(ctx context.Context, orgID uint) (*database.NetworkActivitySummary, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.NetworkActivitySummary), args.Error(1)
}

func (m *MockStore) RecordNetworkActivity(ctx context.Context, a *models.NetworkActivity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockStore) GetRecentThreats(ctx context.Context, orgID uint, limit int) ([]models.Threat, error) {
	args := m.Called(ctx, orgID, limit)
	return args.Get(0).([]models.Threat), args.Error(1)
}

func (m *MockStore) GetThreat(ctx context.Context, id uint) (*models.Threat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Threat), args.Error(1)
}

func (m *MockStore) CreateThreat(ctx context.Context, t *models.Threat) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockStore) UpdateThreatStatus(ctx context.Context, id uint, status models.ThreatStatus) (*models.Threat, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Threat), args.Error(1)
}

func (m *MockStore) GetVulnerabilities(ctx context.Context, orgID uint) ([]models.Vulnerability, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]models.Vulnerability), args.Error(1)
}

func (m *MockStore) GetVulnerability(ctx context.Context, id uint) (*models.Vulnerability, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vulnerability), args.Error(1)
}

func (m *MockStore) CreateVulnerability(ctx context.Context, v *models.Vulnerability) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockStore) UpdateVulnerabilityStatus(ctx context.Context, id uint, status models.VulnStatus) (*models.Vulnerability, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vulnerability), args.Error(1)
}

func (m *MockStore) GetQuantumConfigs(ctx context.Context, orgID uint) ([]models.QuantumConfig, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]models.QuantumConfig), args.Error(1)
}

func (m *MockStore) GetQuantumConfig(ctx context.Context, id uint) (*models.QuantumConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuantumConfig), args.Error(1)
}

func (m *MockStore) CreateQuantumConfig(ctx context.Context, c *models.QuantumConfig) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockStore) UpdateQuantumConfig(ctx context.Context, id uint, fields map[string]any) (*models.QuantumConfig, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuantumConfig), args.Error(1)
}

func (m *MockStore) DeleteQuantumConfig(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) GetNetworkConnections(ctx context.Context, orgID uint, limit int) ([]models.NetworkConnection, error) {
	args := m.Called(ctx, orgID, limit)
	return args.Get(0).([]models.NetworkConnection), args.Error(1)
}

func (m *MockStore) GetAnomalousConnections(ctx context.Context, orgID uint, limit int) ([]models.NetworkConnection, error) {
	args := m.Called(ctx, orgID, limit)
	return args.Get(0).([]models.NetworkConnection), args.Error(1)
}

func (m *MockStore) GetAnalysisResults(ctx context.Context, orgID uint, limit int) ([]models.AnalysisResult, error) {
	args := m.Called(ctx, orgID, limit)
	return args.Get(0).([]models.AnalysisResult), args.Error(1)
}

func (m *MockStore) GetAnalysisResult(ctx context.Context, id uint) (*models.AnalysisResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

func (m *MockStore) CreateAnalysisResult(ctx context.Context, r *models.AnalysisResult) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockStore) GetReports(ctx context.Context, orgID uint, reportType string) ([]models.Report, error) {
	args := m.Called(ctx, orgID, reportType)
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockStore) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockStore) CreateReport(ctx context.Context, r *models.Report) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockStore) DeleteReport(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) CreateAuditLog(ctx context.Context, userID uint, entity string, entityID uint, action, details string) error {
	return m.Called(ctx, userID, entity, entityID, action, details).Error(0)
}

func (m *MockStore) ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.AuditLog), args.Error(1)
}

// MockSimulation implements handlers.Simulation for testing using testify/mock
type MockSimulation struct {
	mock.Mock
}

func (m *MockSimulation) Start(o simulator.Overrides) (simulator.Config, error) {
	args := m.Called(o)
	return args.Get(0).(simulator.Config), args.Error(1)
}

func (m *MockSimulation) Stop() simulator.Stats {
	return m.Called().Get(0).(simulator.Stats)
}

func (m *MockSimulation) Reset(ctx context.Context) (simulator.Config, error) {
	args := m.Called(ctx)
	return args.Get(0).(simulator.Config), args.Error(1)
}

func (m *MockSimulation) Status() simulator.StatusReport {
	return m.Called().Get(0).(simulator.StatusReport)
}
