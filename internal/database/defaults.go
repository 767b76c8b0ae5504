package database

import (
	"encoding/json"
	"time"

	"quantumeyes/internal/models"
)

// Демо-данные для пустой организации: дашборд не должен показывать пустые виджеты.

func intPtr(v int) *int { return &v }

func defaultSecurityMetrics(orgID uint, now time.Time) *models.SecurityMetrics {
	return &models.SecurityMetrics{
		OrganizationID:        orgID,
		SecurityScore:         72,
		SecurityScoreChange:   intPtr(4),
		ActiveThreats:         3,
		ActiveThreatsChange:   intPtr(1),
		Vulnerabilities:       12,
		VulnerabilitiesChange: intPtr(-3),
		MonitoredAssets:       28,
		Timestamp:             now,
	}
}

func defaultCyberMaturity(orgID uint, now time.Time) *models.CyberMaturity {
	return &models.CyberMaturity{
		OrganizationID: orgID,
		Governance:     75,
		Protection:     60,
		Detection:      70,
		Response:       50,
		Recovery:       55,
		OverallScore:   72,
		LastUpdated:    now,
	}
}

func defaultThreats(orgID uint, now time.Time) []models.Threat {
	return []models.Threat{
		{
			ID:             1,
			OrganizationID: orgID,
			Title:          "Tentative de connexion suspecte",
			Description:    "Multiples tentatives de connexion échouées détectées depuis une adresse IP non reconnue. Possible attaque par force brute.",
			Level:          models.ThreatCritical,
			Source:         "IP: 185.173.92.14",
			Timestamp:      now.Add(-28 * time.Minute),
			Status:         models.ThreatActive,
			Icon:           "alert",
			Actions: models.ThreatActions{
				Primary:   "Voir les détails",
				Secondary: []string{"Bloquer l'IP", "Ignorer"},
			},
		},
		{
			ID:             2,
			OrganizationID: orgID,
			Title:          "Email de phishing détecté",
			Description:    "Campagne de phishing potentielle ciblant le département financier. Les emails contiennent des liens malveillants imitant le portail bancaire de l'entreprise.",
			Level:          models.ThreatWarning,
			Source:         "Ciblant 3 utilisateurs",
			Timestamp:      now.Add(-time.Hour),
			Status:         models.ThreatActive,
			Icon:           "mail",
			Actions: models.ThreatActions{
				Primary:   "Voir les détails",
				Secondary: []string{"Bloquer l'expéditeur"},
			},
		},
	}
}

func defaultVulnerabilities(orgID uint, now time.Time) []models.Vulnerability {
	return []models.Vulnerability{
		{
			ID:             1,
			OrganizationID: orgID,
			CVEID:          "CVE-2023-1234",
			Title:          "Vulnérabilité d'exécution de code à distance dans Apache 2.4.52",
			Description:    "Vulnérabilité d'exécution de code à distance dans Apache 2.4.52",
			Severity:       models.SeverityCritical,
			AffectedSystem: "Serveur Web",
			Status:         models.VulnOpen,
			DiscoveredAt:   now.Add(-3 * 24 * time.Hour),
		},
		{
			ID:             2,
			OrganizationID: orgID,
			CVEID:          "CVE-2023-5678",
			Title:          "Faille d'authentification dans PostgreSQL 14.2",
			Description:    "Faille d'authentification dans PostgreSQL 14.2",
			Severity:       models.SeverityCritical,
			AffectedSystem: "Base de données",
			Status:         models.VulnOpen,
			DiscoveredAt:   now.Add(-2 * 24 * time.Hour),
		},
	}
}

func defaultQuantumConfig(orgID uint, now time.Time) models.QuantumConfig {
	return models.QuantumConfig{
		ID:             1,
		OrganizationID: orgID,
		Name:           "Configuration par défaut",
		Qubits:         4,
		FeatureMap:     "zz",
		Ansatz:         "real",
		Shots:          1024,
		ModelType:      "qsvc",
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

type demoReportSection struct {
	Title    string   `json:"title"`
	Score    int      `json:"score"`
	Findings []string `json:"findings"`
}

type demoReportContent struct {
	ExecutiveSummary       string              `json:"executiveSummary"`
	SecurityScore          int                 `json:"securityScore"`
	SecurityScoreChange    int                 `json:"securityScoreChange"`
	HighPriorityFindings   int                 `json:"highPriorityFindings"`
	MediumPriorityFindings int                 `json:"mediumPriorityFindings"`
	LowPriorityFindings    int                 `json:"lowPriorityFindings"`
	Sections               []demoReportSection `json:"sections"`
}

func defaultReport(orgID uint, now time.Time) models.Report {
	content, _ := json.Marshal(demoReportContent{
		ExecutiveSummary:       "Résumé exécutif du rapport mensuel de cybersécurité",
		SecurityScore:          76,
		SecurityScoreChange:    4,
		HighPriorityFindings:   3,
		MediumPriorityFindings: 8,
		LowPriorityFindings:    12,
		Sections: []demoReportSection{
			{Title: "Gouvernance", Score: 70, Findings: []string{"Politique de sécurité mise à jour", "Formation de sensibilisation complétée"}},
			{Title: "Protection", Score: 65, Findings: []string{"Vulnérabilités critiques dans les serveurs web", "Pare-feu correctement configuré"}},
			{Title: "Détection", Score: 80, Findings: []string{"Système de détection d'intrusion amélioré", "Monitoring 24/7 en place"}},
			{Title: "Réponse", Score: 60, Findings: []string{"Plan de réponse aux incidents incomplet", "Équipe de réponse formée"}},
		},
	})
	icon := "shield"

	return models.Report{
		ID:             1,
		OrganizationID: orgID,
		Title:          "Rapport de sécurité mensuel",
		Description:    "Rapport d'analyse de sécurité globale pour le mois courant",
		Type:           "monthly",
		Content:        string(content),
		Metrics:        &models.ReportMetrics{SecurityScore: 76, Threats: 5, Vulnerabilities: 15},
		IconType:       &icon,
		CreatedAt:      now.Add(-5 * 24 * time.Hour),
	}
}
