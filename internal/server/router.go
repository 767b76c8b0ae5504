package server

import (
	"net/http"

	"quantumeyes/internal/config"
	"quantumeyes/internal/handlers"
	"quantumeyes/internal/middleware"
	"quantumeyes/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionName = "qe_session"

type RouterOptions struct {
	// запросов в секунду на IP; 0 отключает лимит
	RateLimit float64
	RateBurst int
}

func NewRouter(cfg *config.Config, h *handlers.Handler, users middleware.UserGetter, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.Static("/quantum-viz", cfg.VisualizationDir)

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 86400 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(middleware.InjectUser(users))

	writers := middleware.RequireRole(models.RoleAdmin, models.RoleAnalyst)
	admins := middleware.RequireRole(models.RoleAdmin)

	api := r.Group("/api")
	if opts.RateLimit > 0 {
		api.Use(middleware.RateLimit(middleware.NewIPRateLimiter(opts.RateLimit, opts.RateBurst)))
	}

	// AUTH
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/user", middleware.RequireAuth(), h.AuthUser)
	api.GET("/user", h.UserBadge)

	// ДАШБОРД: чтение открыто
	api.GET("/security-metrics", h.SecurityMetrics)
	api.GET("/cyber-maturity", h.CyberMaturity)
	api.GET("/threats/recent", h.RecentThreats)
	api.GET("/network-activity", h.NetworkActivity)
	api.GET("/vulnerabilities", h.Vulnerabilities)

	// КВАНТОВЫЙ СЕРВИС: чистые вычисления без записи
	api.GET("/quantum/status", h.QuantumStatus)
	api.GET("/quantum/circuit-demo", h.CircuitDemo)
	api.POST("/quantum/network-graph", h.NetworkGraph)
	api.GET("/quantum/demo-data", h.DemoData)
	api.GET("/quantum/configs", h.ListQuantumConfigs)
	api.GET("/quantum/configs/:id", h.GetQuantumConfig)
	api.GET("/quantum/results", h.ListAnalysisResults)
	api.GET("/quantum/results/:id", h.GetAnalysisResult)
	api.POST("/quantum/visualize/circuit", h.VisualizeCircuit)
	api.POST("/quantum/visualize/histogram", h.VisualizeHistogram)
	api.POST("/quantum/visualize/complete", h.VisualizeComplete)

	// СИМУЛЯТОР
	api.GET("/simulation/status", h.SimulationStatus)
	api.GET("/simulation/stream", h.SimulationStream)
	api.GET("/network-connections", h.NetworkConnections)
	api.GET("/network-connections/anomalous", h.AnomalousConnections)

	// ОТЧЁТЫ
	api.GET("/reports", h.ListReports)
	api.GET("/reports/:id", h.GetReport)

	auth := api.Group("/")
	auth.Use(middleware.RequireAuth())

	auth.POST("/security-metrics", writers, h.CreateSecurityMetrics)
	auth.PUT("/cyber-maturity", admins, h.UpdateCyberMaturity)
	auth.POST("/threats", writers, h.CreateThreat)
	// права на переход статуса проверяет сам обработчик
	auth.PATCH("/threats/:id/status", h.UpdateThreatStatus)
	auth.POST("/network-activity", writers, h.RecordNetworkActivity)
	auth.POST("/vulnerabilities", writers, h.CreateVulnerability)
	auth.PATCH("/vulnerabilities/:id/status", h.UpdateVulnerabilityStatus)

	// ОРГАНИЗАЦИИ
	auth.GET("/organizations", h.ListOrganizations)
	auth.GET("/organizations/:id", h.GetOrganization)
	auth.GET("/organizations/slug/:slug", h.GetOrganizationBySlug)
	auth.POST("/organizations", admins, h.CreateOrganization)
	auth.POST("/organizations/:id/members", admins, h.AddOrganizationMember)

	auth.POST("/quantum/configure", writers, h.ConfigureQuantum)
	auth.POST("/quantum/ibm-connect", writers, h.ConnectIBM)
	auth.POST("/quantum/detect-anomalies", writers, h.DetectAnomalies)
	auth.POST("/quantum/train-model", writers, h.TrainModel)
	auth.POST("/quantum/create-report", writers, h.CreateAnalysisReport)
	auth.POST("/quantum/configs", writers, h.CreateQuantumConfig)
	auth.PUT("/quantum/configs/:id", writers, h.UpdateQuantumConfig)
	auth.DELETE("/quantum/configs/:id", writers, h.DeleteQuantumConfig)

	auth.POST("/simulation/start", writers, h.StartSimulation)
	auth.POST("/simulation/stop", writers, h.StopSimulation)
	auth.POST("/simulation/reset", writers, h.ResetSimulation)

	auth.POST("/reports", writers, h.CreateReport)
	auth.DELETE("/reports/:id", writers, h.DeleteReport)

	// АУДИТ
	auth.GET("/audit", admins, h.ListAuditLogs)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
