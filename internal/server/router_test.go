package server

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quantumeyes/internal/config"
	"quantumeyes/internal/database"
	"quantumeyes/internal/handlers"
	"quantumeyes/internal/models"
	"quantumeyes/internal/netsim"
	"quantumeyes/internal/quantum"
	"quantumeyes/internal/simulator"
	"quantumeyes/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secret-pass"

var roleIDs = map[models.UserRole]uint{
	models.RoleAdmin:   1,
	models.RoleAnalyst: 2,
	models.RoleViewer:  3,
}

type testEnv struct {
	router *gin.Engine
	store  *MockStore
	sim    *MockSimulation
	vizDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &MockStore{}
	sim := &MockSimulation{}
	dir := t.TempDir()

	cfg := &config.Config{
		SessionSecret:         "test-session-secret",
		VisualizationDir:      dir,
		DefaultOrganizationID: 1,
	}
	gen := netsim.NewGenerator(rand.NewPCG(5, 6))
	qs := quantum.NewService(gen, nil)
	h := handlers.New(handlers.Deps{
		Store:                 store,
		Quantum:               qs,
		Visualizer:            quantum.NewVisualizer(dir, qs),
		Generator:             gen,
		Simulation:            sim,
		Stream:                stream.NewHub(),
		DefaultOrganizationID: 1,
	})

	store.On("CreateAuditLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Maybe()

	t.Cleanup(func() {
		store.AssertExpectations(t)
		sim.AssertExpectations(t)
	})

	return &testEnv{
		router: NewRouter(cfg, h, store, RouterOptions{}),
		store:  store,
		sim:    sim,
		vizDir: dir,
	}
}

func (e *testEnv) do(method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, role models.UserRole) []*http.Cookie {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.User{ID: roleIDs[role], Username: string(role), PasswordHash: string(hash), Role: role}
	e.store.On("GetUserByUsername", mock.Anything, string(role)).Return(u, nil).Once()
	e.store.On("GetUser", mock.Anything, u.ID).Return(u, nil).Maybe()

	w := e.do(http.MethodPost, "/api/auth/login",
		fmt.Sprintf(`{"username":%q,"password":%q}`, role, testPassword), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = e.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quantumeyes_http_requests_total")
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)

	t.Run("unknown user", func(t *testing.T) {
		e.store.On("GetUserByUsername", mock.Anything, "ghost").
			Return(nil, fmt.Errorf("get user by username: %w", database.ErrNotFound)).Once()
		w := e.do(http.MethodPost, "/api/auth/login", `{"username":"ghost","password":"x"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
		e.store.On("GetUserByUsername", mock.Anything, "bob").
			Return(&models.User{ID: 9, Username: "bob", PasswordHash: string(hash)}, nil).Once()
		w := e.do(http.MethodPost, "/api/auth/login", `{"username":"bob","password":"nope"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("session user", func(t *testing.T) {
		cookies := e.login(t, models.RoleAnalyst)
		e.store.On("GetUserOrganizations", mock.Anything, uint(2)).
			Return([]models.Organization{{ID: 1, Name: "QuantumEyes Demo", Slug: "demo"}}, nil).Once()

		w := e.do(http.MethodGet, "/api/auth/user", "", cookies)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "analyst", body["user"].(map[string]any)["username"])
		assert.Len(t, body["organizations"], 1)
	})

	t.Run("no session", func(t *testing.T) {
		w := e.do(http.MethodGet, "/api/auth/user", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserBadge(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/user", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":{"name":"Entreprise Client","role":"Admin","initials":"EC"}}`, w.Body.String())

	cookies := e.login(t, models.RoleViewer)
	w = e.do(http.MethodGet, "/api/user", "", cookies)
	assert.JSONEq(t, `{"user":{"name":"viewer","role":"Lecteur","initials":"vi"}}`, w.Body.String())
}

func TestSecurityMetrics(t *testing.T) {
	e := newTestEnv(t)

	e.store.On("GetSecurityMetrics", mock.Anything, uint(1)).
		Return(&models.SecurityMetrics{OrganizationID: 1, SecurityScore: 72, MonitoredAssets: 28}, nil).Once()
	w := e.do(http.MethodGet, "/api/security-metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)["metrics"].(map[string]any)
	assert.EqualValues(t, 72, m["securityScore"])

	e.store.On("GetSecurityMetrics", mock.Anything, uint(4)).
		Return(&models.SecurityMetrics{OrganizationID: 4}, nil).Once()
	w = e.do(http.MethodGet, "/api/security-metrics?organizationId=4", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/api/security-metrics?organizationId=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"invalid organizationId"}`, w.Body.String())
}

func TestCreateSecurityMetrics_Roles(t *testing.T) {
	e := newTestEnv(t)
	body := `{"securityScore":80,"activeThreats":2,"vulnerabilities":5,"monitoredAssets":30}`

	w := e.do(http.MethodPost, "/api/security-metrics", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/security-metrics", body, e.login(t, models.RoleViewer))
	assert.Equal(t, http.StatusForbidden, w.Code)

	e.store.On("CreateSecurityMetrics", mock.Anything, mock.MatchedBy(func(m *models.SecurityMetrics) bool {
		return m.OrganizationID == 1 && m.SecurityScore == 80 && m.MonitoredAssets == 30
	})).Return(nil).Once()
	w = e.do(http.MethodPost, "/api/security-metrics", body, e.login(t, models.RoleAnalyst))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = e.do(http.MethodPost, "/api/security-metrics", `{"securityScore":140}`, e.login(t, models.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCyberMaturity(t *testing.T) {
	e := newTestEnv(t)

	e.store.On("GetCyberMaturity", mock.Anything, uint(1)).Return(&models.CyberMaturity{
		Governance: 75, Protection: 60, Detection: 70, Response: 50, Recovery: 55, OverallScore: 72,
	}, nil).Once()
	w := e.do(http.MethodGet, "/api/cyber-maturity", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	cats := body["categories"].([]any)
	require.Len(t, cats, 5)
	assert.Equal(t, "Gouvernance", cats[0].(map[string]any)["name"])
	assert.EqualValues(t, 72, body["overallScore"])

	update := `{"governance":80,"protection":70,"detection":60,"response":50,"recovery":41}`
	w = e.do(http.MethodPut, "/api/cyber-maturity", update, e.login(t, models.RoleAnalyst))
	assert.Equal(t, http.StatusForbidden, w.Code)

	e.store.On("UpdateCyberMaturity", mock.Anything, mock.MatchedBy(func(m *models.CyberMaturity) bool {
		return m.OverallScore == 60
	})).Return(nil).Once()
	w = e.do(http.MethodPut, "/api/cyber-maturity", update, e.login(t, models.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 60, decode(t, w)["overallScore"])
}

func TestVulnerabilitiesWidget(t *testing.T) {
	e := newTestEnv(t)

	e.store.On("GetVulnerabilities", mock.Anything, uint(1)).Return([]models.Vulnerability{
		{ID: 1, CVEID: "CVE-2023-1", Severity: models.SeverityCritical},
		{ID: 2, CVEID: "CVE-2023-2", Severity: models.SeverityHigh},
		{ID: 3, CVEID: "CVE-2023-3", Severity: models.SeverityHigh},
		{ID: 4, CVEID: "CVE-2023-4", Severity: models.SeverityLow},
	}, nil).Once()

	w := e.do(http.MethodGet, "/api/vulnerabilities", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, map[string]any{"critical": 1.0, "high": 2.0, "medium": 0.0, "low": 1.0}, data["counts"])
	assert.Len(t, data["criticalVulnerabilities"], 1)
}

func TestCreateVulnerability_Validation(t *testing.T) {
	e := newTestEnv(t)
	cookies := e.login(t, models.RoleAnalyst)

	tests := []struct {
		name string
		body string
	}{
		{"missing cve", `{"title":"Buffer overflow","severity":"high","affectedSystem":"web"}`},
		{"cve too long", `{"cveId":"CVE-2023-123456789012345","title":"Buffer overflow","severity":"high","affectedSystem":"web"}`},
		{"bad severity", `{"cveId":"CVE-2023-1","title":"Buffer overflow","severity":"extreme","affectedSystem":"web"}`},
		{"no system", `{"cveId":"CVE-2023-1","title":"Buffer overflow","severity":"high"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/vulnerabilities", tt.body, cookies)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	e.store.On("CreateVulnerability", mock.Anything, mock.AnythingOfType("*models.Vulnerability")).Return(nil).Once()
	w := e.do(http.MethodPost, "/api/vulnerabilities",
		`{"cveId":"CVE-2023-1","title":"Buffer overflow","severity":"high","affectedSystem":"web"}`, cookies)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpdateVulnerabilityStatus(t *testing.T) {
	e := newTestEnv(t)
	analyst := e.login(t, models.RoleAnalyst)

	e.store.On("GetVulnerability", mock.Anything, uint(5)).
		Return(&models.Vulnerability{ID: 5, Status: models.VulnOpen}, nil).Once()
	e.store.On("UpdateVulnerabilityStatus", mock.Anything, uint(5), models.VulnInProgress).
		Return(&models.Vulnerability{ID: 5, Status: models.VulnInProgress}, nil).Once()

	w := e.do(http.MethodPatch, "/api/vulnerabilities/5/status", `{"status":"in_progress"}`, analyst)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "in_progress", decode(t, w)["vulnerability"].(map[string]any)["status"])
	e.store.AssertCalled(t, "CreateAuditLog", mock.Anything, uint(2), "vulnerability", uint(5), "status_change", "open -> in_progress")

	e.store.On("GetVulnerability", mock.Anything, uint(6)).
		Return(&models.Vulnerability{ID: 6, Status: models.VulnResolved}, nil).Once()
	w = e.do(http.MethodPatch, "/api/vulnerabilities/6/status", `{"status":"open"}`, analyst)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPatch, "/api/vulnerabilities/6/status", `{"status":"closed"}`, analyst)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.store.On("GetVulnerability", mock.Anything, uint(7)).
		Return(nil, fmt.Errorf("get vulnerability: %w", database.ErrNotFound)).Once()
	w = e.do(http.MethodPatch, "/api/vulnerabilities/7/status", `{"status":"resolved"}`, analyst)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestThreats(t *testing.T) {
	e := newTestEnv(t)

	e.store.On("GetRecentThreats", mock.Anything, uint(1), 10).
		Return([]models.Threat{{ID: 1, Title: "Tentative de phishing"}}, nil).Once()
	w := e.do(http.MethodGet, "/api/threats/recent", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["threats"], 1)

	analyst := e.login(t, models.RoleAnalyst)
	w = e.do(http.MethodPost, "/api/threats", `{"title":"Scan","description":"Ports","level":"severe"}`, analyst)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.store.On("CreateThreat", mock.Anything, mock.MatchedBy(func(th *models.Threat) bool {
		return th.Title == "Scan de ports" && th.Level == models.ThreatWarning
	})).Return(nil).Once()
	w = e.do(http.MethodPost, "/api/threats", `{"title":" Scan de ports ","description":"Depuis 10.0.0.4","level":"warning"}`, analyst)
	assert.Equal(t, http.StatusCreated, w.Code)

	e.store.On("GetThreat", mock.Anything, uint(3)).
		Return(&models.Threat{ID: 3, Status: models.ThreatActive}, nil).Once()
	e.store.On("UpdateThreatStatus", mock.Anything, uint(3), models.ThreatIgnored).
		Return(&models.Threat{ID: 3, Status: models.ThreatIgnored}, nil).Once()
	w = e.do(http.MethodPatch, "/api/threats/3/status", `{"status":"ignored"}`, analyst)
	assert.Equal(t, http.StatusOK, w.Code)

	e.store.On("GetThreat", mock.Anything, uint(3)).
		Return(&models.Threat{ID: 3, Status: models.ThreatActive}, nil).Once()
	w = e.do(http.MethodPatch, "/api/threats/3/status", `{"status":"resolved"}`, e.login(t, models.RoleViewer))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrganizations(t *testing.T) {
	e := newTestEnv(t)
	admin := e.login(t, models.RoleAdmin)

	e.store.On("GetOrganizationBySlug", mock.Anything, "acme").
		Return(nil, fmt.Errorf("get organization by slug: %w", database.ErrNotFound)).Once()
	e.store.On("CreateOrganizationWithOwner", mock.Anything, mock.AnythingOfType("*models.Organization"), uint(1)).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Organization).ID = 12 }).
		Return(nil).Once()

	w := e.do(http.MethodPost, "/api/organizations", `{"name":"Acme","slug":"ACME"}`, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 12, decode(t, w)["organization"].(map[string]any)["id"])

	// гонка по slug: проверка прошла, а уникальный индекс сработал
	e.store.On("GetOrganizationBySlug", mock.Anything, "race").
		Return(nil, fmt.Errorf("get organization by slug: %w", database.ErrNotFound)).Once()
	e.store.On("CreateOrganizationWithOwner", mock.Anything, mock.AnythingOfType("*models.Organization"), uint(1)).
		Return(fmt.Errorf("create organization: %w", database.ErrConflict)).Once()
	w = e.do(http.MethodPost, "/api/organizations", `{"name":"Race","slug":"race"}`, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodPost, "/api/organizations", `{"name":"Acme","slug":"not a slug"}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.store.On("GetOrganizationBySlug", mock.Anything, "demo").
		Return(&models.Organization{ID: 1, Slug: "demo"}, nil).Once()
	w = e.do(http.MethodPost, "/api/organizations", `{"name":"Demo","slug":"demo"}`, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodPost, "/api/organizations", `{"name":"Beta","slug":"beta"}`, e.login(t, models.RoleAnalyst))
	assert.Equal(t, http.StatusForbidden, w.Code)

	e.store.On("GetOrganizationBySlug", mock.Anything, "demo").
		Return(&models.Organization{ID: 1, Slug: "demo"}, nil).Once()
	w = e.do(http.MethodGet, "/api/organizations/slug/demo", "", admin)
	assert.Equal(t, http.StatusOK, w.Code)

	e.store.On("GetOrganization", mock.Anything, uint(1)).Return(&models.Organization{ID: 1}, nil).Once()
	e.store.On("GetUser", mock.Anything, uint(3)).Return(&models.User{ID: 3, Username: "lecteur"}, nil).Once()
	e.store.On("AddUserToOrganization", mock.Anything, mock.MatchedBy(func(ou *models.OrganizationUser) bool {
		return ou.OrganizationID == 1 && ou.UserID == 3 && ou.Role == models.RoleViewer
	})).Return(&models.OrganizationUser{ID: 2, OrganizationID: 1, UserID: 3, Role: models.RoleViewer}, nil).Once()
	w = e.do(http.MethodPost, "/api/organizations/1/members", `{"userId":3}`, admin)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	e.store.On("GetOrganization", mock.Anything, uint(1)).Return(&models.Organization{ID: 1}, nil).Once()
	e.store.On("GetUser", mock.Anything, uint(3)).Return(&models.User{ID: 3, Username: "lecteur"}, nil).Once()
	e.store.On("AddUserToOrganization", mock.Anything, mock.AnythingOfType("*models.OrganizationUser")).
		Return(nil, fmt.Errorf("add user to organization: %w", database.ErrConflict)).Once()
	w = e.do(http.MethodPost, "/api/organizations/1/members", `{"userId":3}`, admin)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestQuantumStatusAndConfigure(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/quantum/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"running","qubits":4,"feature_map":"zz","ansatz":"real","shots":1024,"model_type":"qsvc","ibm_connected":false}`, w.Body.String())

	analyst := e.login(t, models.RoleAnalyst)
	w = e.do(http.MethodPost, "/api/quantum/configure", `{"qubits":50}`, analyst)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/quantum/configure", `{"qubits":6,"shots":2048}`, analyst)
	require.Equal(t, http.StatusOK, w.Code)
	cfg := decode(t, w)["config"].(map[string]any)
	assert.EqualValues(t, 6, cfg["qubits"])
	assert.EqualValues(t, 2048, cfg["shots"])

	w = e.do(http.MethodPost, "/api/quantum/ibm-connect", "", analyst)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["demo"])
	assert.Len(t, body["backends"], 3)

	w = e.do(http.MethodGet, "/api/quantum/status", "", nil)
	assert.Equal(t, true, decode(t, w)["ibm_connected"])
}

func TestCircuitDemo_WritesImages(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/quantum/circuit-demo", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	for _, key := range []string{"circuit_image_url", "histogram_image_url"} {
		url := body[key].(string)
		require.True(t, strings.HasPrefix(url, quantum.VisualizationURLPrefix), url)
		_, err := os.Stat(filepath.Join(e.vizDir, strings.TrimPrefix(url, quantum.VisualizationURLPrefix)))
		assert.NoError(t, err)

		served := e.do(http.MethodGet, url, "", nil)
		assert.Equal(t, http.StatusOK, served.Code)
	}

	total := 0
	for _, sc := range body["counts"].([]any) {
		total += int(sc.(map[string]any)["count"].(float64))
	}
	assert.GreaterOrEqual(t, total, 1024)
}

func TestNetworkGraph(t *testing.T) {
	e := newTestEnv(t)

	body := `{"connections":[
		{"source_ip":"10.0.0.1","destination_ip":"8.8.8.8","protocol":"DNS","destination_port":53},
		{"source_ip":"8.8.8.8","destination_ip":"10.0.0.2","protocol":"DNS","destination_port":53}
	]}`
	w := e.do(http.MethodPost, "/api/quantum/network-graph", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	m := out["metrics"].(map[string]any)
	assert.EqualValues(t, 3, m["nodes"])
	assert.EqualValues(t, 2, m["edges"])
	assert.EqualValues(t, 1, m["connected_components"])

	w = e.do(http.MethodPost, "/api/quantum/network-graph", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["edges"], 30)
}

func TestNetworkGraph_TooManyConnections(t *testing.T) {
	e := newTestEnv(t)

	conns := make([]map[string]any, 1001)
	for i := range conns {
		conns[i] = map[string]any{
			"source_ip":        fmt.Sprintf("10.0.%d.%d", i/250, i%250),
			"destination_ip":   "8.8.8.8",
			"protocol":         "DNS",
			"destination_port": 53,
		}
	}
	raw, err := json.Marshal(map[string]any{"connections": conns})
	require.NoError(t, err)

	w := e.do(http.MethodPost, "/api/quantum/network-graph", string(raw), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/quantum/detect-anomalies", string(raw), e.login(t, models.RoleAnalyst))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetectAnomalies_StoresResult(t *testing.T) {
	e := newTestEnv(t)

	e.store.On("CreateAnalysisResult", mock.Anything, mock.MatchedBy(func(r *models.AnalysisResult) bool {
		return r.OrganizationID == 1 && r.Quantum && r.ConnectionsAnalyzed == 50 && r.AnomaliesDetected == 5
	})).Return(nil).Once()

	w := e.do(http.MethodPost, "/api/quantum/detect-anomalies", "", e.login(t, models.RoleAnalyst))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 5, body["anomalies_detected"])
	assert.NotEmpty(t, body["circuit_image_url"])
	assert.NotEmpty(t, body["histogram_image_url"])
	assert.Equal(t, quantum.LocalBackend, body["circuit_results"].(map[string]any)["backend_name"])
}

func TestDemoData(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/quantum/demo-data?count=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 5)

	w = e.do(http.MethodGet, "/api/quantum/demo-data?count=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrainModel(t *testing.T) {
	e := newTestEnv(t)
	analyst := e.login(t, models.RoleAnalyst)

	w := e.do(http.MethodPost, "/api/quantum/train-model", `{"dataset":"small","train_split":0.75}`, analyst)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 158, body["train_samples"])

	w = e.do(http.MethodPost, "/api/quantum/train-model", `{"dataset":"huge"}`, analyst)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuantumConfigs(t *testing.T) {
	e := newTestEnv(t)
	analyst := e.login(t, models.RoleAnalyst)

	e.store.On("GetQuantumConfigs", mock.Anything, uint(1)).
		Return([]models.QuantumConfig{{ID: 1, Name: "Configuration par défaut"}}, nil).Once()
	w := e.do(http.MethodGet, "/api/quantum/configs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["configs"], 1)

	e.store.On("CreateQuantumConfig", mock.Anything, mock.MatchedBy(func(c *models.QuantumConfig) bool {
		return c.Name == "Prod" && c.Qubits == 8 && c.FeatureMap == "zz" && c.Shots == 1024 && c.Active
	})).Return(nil).Once()
	w = e.do(http.MethodPost, "/api/quantum/configs", `{"name":"Prod","qubits":8}`, analyst)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = e.do(http.MethodPost, "/api/quantum/configs", `{"qubits":8}`, analyst)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.store.On("UpdateQuantumConfig", mock.Anything, uint(2), map[string]any{"shots": 4096}).
		Return(&models.QuantumConfig{ID: 2, Shots: 4096}, nil).Once()
	w = e.do(http.MethodPut, "/api/quantum/configs/2", `{"shots":4096}`, analyst)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPut, "/api/quantum/configs/2", `{}`, analyst)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.store.On("DeleteQuantumConfig", mock.Anything, uint(9)).
		Return(fmt.Errorf("delete quantum config: %w", database.ErrNotFound)).Once()
	w = e.do(http.MethodDelete, "/api/quantum/configs/9", "", analyst)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVisualize(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/quantum/visualize/circuit", `{"numQubits":12}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])

	w = e.do(http.MethodPost, "/api/quantum/visualize/histogram", `{"numShots":50}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/quantum/visualize/complete", `{"numQubits":3,"anomaly":true}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["circuitImageUrl"])
	assert.NotEmpty(t, body["histogramImageUrl"])
	assert.EqualValues(t, 3, body["details"].(map[string]any)["numQubits"])

	entries, err := os.ReadDir(e.vizDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSimulationEndpoints(t *testing.T) {
	e := newTestEnv(t)
	analyst := e.login(t, models.RoleAnalyst)

	w := e.do(http.MethodPost, "/api/simulation/start", "", e.login(t, models.RoleViewer))
	assert.Equal(t, http.StatusForbidden, w.Code)

	org := uint(3)
	e.sim.On("Start", simulator.Overrides{OrganizationID: &org}).
		Return(simulator.Config{IntervalMs: 5000, ConnectionsPerBatch: 10, OrganizationID: 3, Enabled: true}, nil).Once()
	w = e.do(http.MethodPost, "/api/simulation/start?organizationId=3", "", analyst)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["config"].(map[string]any)["organizationId"])

	e.sim.On("Start", mock.AnythingOfType("simulator.Overrides")).
		Return(simulator.Config{}, fmt.Errorf("%w: anomalyRate must be between 0 and 1", simulator.ErrInvalidConfig)).Once()
	w = e.do(http.MethodPost, "/api/simulation/start", `{"anomalyRate":2}`, analyst)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.sim.On("Status").Return(simulator.StatusReport{Stats: simulator.Stats{IsRunning: true, TotalConnections: 40}}).Once()
	w = e.do(http.MethodGet, "/api/simulation/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 40, decode(t, w)["stats"].(map[string]any)["totalConnections"])

	e.sim.On("Stop").Return(simulator.Stats{TotalConnections: 40}).Once()
	w = e.do(http.MethodPost, "/api/simulation/stop", "", analyst)
	assert.Equal(t, http.StatusOK, w.Code)

	e.sim.On("Reset", mock.Anything).Return(simulator.Config{OrganizationID: 1}, nil).Once()
	w = e.do(http.MethodPost, "/api/simulation/reset", "", analyst)
	assert.Equal(t, http.StatusOK, w.Code)

	e.store.On("GetAnomalousConnections", mock.Anything, uint(1), 20).
		Return([]models.NetworkConnection{{ID: 1, IsAnomaly: true}}, nil).Once()
	w = e.do(http.MethodGet, "/api/network-connections/anomalous?limit=20", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["connections"], 1)
}

func TestReports(t *testing.T) {
	e := newTestEnv(t)
	analyst := e.login(t, models.RoleAnalyst)

	e.store.On("GetReports", mock.Anything, uint(1), "monthly").
		Return([]models.Report{{ID: 1, Type: "monthly"}}, nil).Once()
	w := e.do(http.MethodGet, "/api/reports?type=monthly", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["reports"], 1)

	e.store.On("CreateReport", mock.Anything, mock.MatchedBy(func(r *models.Report) bool {
		return r.Title == "Analyse quantique" && r.Content == `{"anomalies":3}` && r.Metrics != nil && r.Metrics.Threats == 3
	})).Run(func(args mock.Arguments) { args.Get(1).(*models.Report).ID = 77 }).Return(nil).Once()
	w = e.do(http.MethodPost, "/api/quantum/create-report",
		`{"title":"Analyse quantique","type":"quantum","content":"{\"anomalies\":3}","metrics":{"securityScore":94,"threats":3,"vulnerabilities":5},"iconType":"shield"}`,
		analyst)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 77, body["report"].(map[string]any)["id"])

	e.store.On("DeleteReport", mock.Anything, uint(77)).Return(nil).Once()
	w = e.do(http.MethodDelete, "/api/reports/77", "", analyst)
	assert.Equal(t, http.StatusOK, w.Code)

	e.store.On("GetReport", mock.Anything, uint(5)).
		Return(nil, fmt.Errorf("get report: %w", database.ErrNotFound)).Once()
	w = e.do(http.MethodGet, "/api/reports/5", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAudit_AdminOnly(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/audit", "", e.login(t, models.RoleAnalyst))
	assert.Equal(t, http.StatusForbidden, w.Code)

	e.store.On("ListAuditLogs", mock.Anything, 200).
		Return([]models.AuditLog{{ID: 1, Entity: "threat", Action: "create"}}, nil).Once()
	w = e.do(http.MethodGet, "/api/audit", "", e.login(t, models.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["logs"], 1)
}
