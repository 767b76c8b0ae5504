// Package netsim генерирует синтетический сетевой трафик и строит по нему граф.
package netsim

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"quantumeyes/internal/models"
)

var (
	Protocols = []string{"TCP", "UDP", "HTTP", "HTTPS", "DNS", "SMTP", "FTP", "SSH", "ICMP"}

	InternalPrefixes = []string{"10.0.0", "192.168.1", "172.16.0", "172.17.0", "192.168.0"}
	ExternalPrefixes = []string{"8.8.8", "1.1.1", "104.18.2", "172.217.169", "52.84.13"}

	CommonPorts = []int{20, 21, 22, 23, 25, 53, 80, 443, 110, 143, 465, 993, 995, 3306, 3389, 5432, 8080, 8443}

	AnomalyTypes = []string{"port_scan", "data_exfiltration", "brute_force", "ddos", "backdoor"}
)

const (
	// доля внутренних адресов назначения для обычного трафика
	internalDestinationRate = 0.7
	defaultAnomalyRate      = 0.05
)

// Generator это источник случайных соединений. Безопасен для конкурентного использования.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator с nil-источником берёт случайный seed.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rng: rand.New(src), now: time.Now}
}

func (g *Generator) pick(items []string) string {
	return items[g.rng.IntN(len(items))]
}

func (g *Generator) pickPort(ports []int) int {
	return ports[g.rng.IntN(len(ports))]
}

func (g *Generator) ip(internal bool) string {
	prefixes := ExternalPrefixes
	if internal {
		prefixes = InternalPrefixes
	}
	return fmt.Sprintf("%s.%d", g.pick(prefixes), g.rng.IntN(255)+1)
}

// Connection генерирует одно соединение; для аномалий параметры подгоняются под тип атаки.
func (g *Generator) Connection(orgID uint, anomalous bool) models.NetworkConnection {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connection(orgID, anomalous)
}

func (g *Generator) connection(orgID uint, anomalous bool) models.NetworkConnection {
	c := models.NetworkConnection{
		OrganizationID:  orgID,
		SourceIP:        g.ip(true),
		DestinationIP:   g.ip(g.rng.Float64() < internalDestinationRate),
		Protocol:        g.pick(Protocols),
		DestinationPort: g.pickPort(CommonPorts),
	}

	if anomalous {
		c.IsAnomaly = true
		c.AnomalyType = g.pick(AnomalyTypes)

		switch c.AnomalyType {
		case "port_scan":
			c.DestinationPort = g.rng.IntN(65535) + 1
		case "data_exfiltration":
			c.DestinationIP = g.ip(false)
			c.DestinationPort = g.pickPort([]int{53, 80, 443})
		case "brute_force":
			c.DestinationPort = g.pickPort([]int{22, 21, 3389})
			c.Protocol = g.pick([]string{"SSH", "FTP", "RDP"})
		case "ddos":
			c.DestinationPort = g.pickPort([]int{80, 443})
			c.SourceIP = g.ip(false)
		case "backdoor":
			c.DestinationPort = 4444 + g.rng.IntN(1000)
		}

		score := round2(g.rng.Float64()*0.25 + 0.75)
		c.AnomalyScore = &score
	}

	c.PacketSize = g.rng.IntN(1460) + 40
	c.Duration = g.rng.Float64() * 5
	c.BytesSent = g.rng.IntN(100000) + 100
	c.BytesReceived = g.rng.IntN(100000) + 100
	c.Timestamp = g.now()

	return c
}

// Connections генерирует пачку: сначала round(count*rate) аномальных, затем обычные.
func (g *Generator) Connections(count int, anomalyRate float64, orgID uint) []models.NetworkConnection {
	if count <= 0 {
		return nil
	}
	if anomalyRate < 0 || anomalyRate > 1 {
		anomalyRate = defaultAnomalyRate
	}

	anomalous := int(math.Round(float64(count) * anomalyRate))

	g.mu.Lock()
	defer g.mu.Unlock()

	conns := make([]models.NetworkConnection, 0, count)
	for i := 0; i < count; i++ {
		conns = append(conns, g.connection(orgID, i < anomalous))
	}
	return conns
}

type TrainingSet struct {
	Connections []models.NetworkConnection `json:"connections"`
	Labels      []bool                     `json:"labels"`
}

// TrainingDataset: сначала обычные соединения, затем аномальные, метки параллельны.
func (g *Generator) TrainingDataset(normal, anomalies int, orgID uint) TrainingSet {
	g.mu.Lock()
	defer g.mu.Unlock()

	set := TrainingSet{
		Connections: make([]models.NetworkConnection, 0, normal+anomalies),
		Labels:      make([]bool, 0, normal+anomalies),
	}
	for i := 0; i < normal; i++ {
		set.Connections = append(set.Connections, g.connection(orgID, false))
		set.Labels = append(set.Labels, false)
	}
	for i := 0; i < anomalies; i++ {
		set.Connections = append(set.Connections, g.connection(orgID, true))
		set.Labels = append(set.Labels, true)
	}
	return set
}

var (
	demoPrefixes  = []string{"192.168.1.", "10.0.0.", "172.16.0.", "8.8.8."}
	demoProtocols = []string{"TCP", "UDP", "ICMP", "HTTP", "HTTPS"}
	demoPorts     = []int{80, 443, 22, 25, 53, 8080, 3389}
)

// DemoData: упрощённый набор для квантового демо (без меток аномалий).
func (g *Generator) DemoData(n int) []models.NetworkConnection {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	data := make([]models.NetworkConnection, 0, max(n, 0))
	for i := 0; i < n; i++ {
		data = append(data, models.NetworkConnection{
			ID:              uint(i + 1),
			SourceIP:        fmt.Sprintf("%s%d", g.pick(demoPrefixes), g.rng.IntN(254)+1),
			DestinationIP:   fmt.Sprintf("%s%d", g.pick(demoPrefixes), g.rng.IntN(254)+1),
			Protocol:        g.pick(demoProtocols),
			DestinationPort: g.pickPort(demoPorts),
			PacketSize:      g.rng.IntN(1400) + 100,
			Duration:        g.rng.Float64()*4.9 + 0.1,
			Timestamp:       now,
		})
	}
	return data
}

// Float возвращает число в [lo, hi).
func (g *Generator) Float(lo, hi float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return lo + g.rng.Float64()*(hi-lo)
}

// IntN возвращает число в [0, n).
func (g *Generator) IntN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
