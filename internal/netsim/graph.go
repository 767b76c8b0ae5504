package netsim

import (
	"strings"

	"quantumeyes/internal/models"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

type NodeType string

const (
	NodeInternal NodeType = "internal"
	NodeExternal NodeType = "external"
)

type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Type  NodeType `json:"type"`
}

type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Protocol  string `json:"protocol"`
	Port      int    `json:"port"`
	Anomalous bool   `json:"anomalous"`
}

// Metrics считаются по ориентированному графу без кратных рёбер.
type Metrics struct {
	Nodes               int     `json:"nodes"`
	Edges               int     `json:"edges"`
	Density             float64 `json:"density"`
	AvgDegree           float64 `json:"avg_degree"`
	ConnectedComponents int     `json:"connected_components"`
	AvgClustering       float64 `json:"avg_clustering"`
}

type Graph struct {
	Nodes   []Node  `json:"nodes"`
	Edges   []Edge  `json:"edges"`
	Metrics Metrics `json:"metrics"`
}

func nodeType(ip string) NodeType {
	if strings.HasPrefix(ip, "192.168.") || strings.HasPrefix(ip, "10.") {
		return NodeInternal
	}
	return NodeExternal
}

// BuildGraph: уникальные узлы в порядке появления, одно ребро на соединение.
func BuildGraph(conns []models.NetworkConnection) Graph {
	g := Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0, len(conns)),
	}

	index := make(map[string]int)
	addNode := func(ip string) int {
		if i, ok := index[ip]; ok {
			return i
		}
		index[ip] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{ID: ip, Label: ip, Type: nodeType(ip)})
		return index[ip]
	}

	d := simple.NewDirectedGraph()
	// simple.DirectedGraph не хранит петли, их считаем отдельно
	loops := make(map[int64]struct{})

	for _, c := range conns {
		from := int64(addNode(c.SourceIP))
		to := int64(addNode(c.DestinationIP))
		if d.Node(from) == nil {
			d.AddNode(simple.Node(from))
		}
		if d.Node(to) == nil {
			d.AddNode(simple.Node(to))
		}
		if from == to {
			loops[from] = struct{}{}
		} else {
			d.SetEdge(d.NewEdge(simple.Node(from), simple.Node(to)))
		}

		g.Edges = append(g.Edges, Edge{
			ID:        uuid.NewString(),
			Source:    c.SourceIP,
			Target:    c.DestinationIP,
			Protocol:  c.Protocol,
			Port:      c.DestinationPort,
			Anomalous: c.IsAnomaly,
		})
	}

	n := len(g.Nodes)
	if n == 0 {
		return g
	}

	u := graph.Undirect{G: d}
	e := d.Edges().Len() + len(loops)
	g.Metrics = Metrics{
		Nodes:               n,
		Edges:               e,
		AvgDegree:           2 * float64(e) / float64(n),
		ConnectedComponents: len(topo.ConnectedComponents(u)),
		AvgClustering:       averageClustering(u),
	}
	if n > 1 {
		g.Metrics.Density = float64(e) / float64(n*(n-1))
	}
	return g
}

// averageClustering: средний локальный коэффициент по неориентированному виду,
// узлы степени < 2 дают 0.
func averageClustering(u graph.Undirected) float64 {
	nodes := graph.NodesOf(u.Nodes())
	if len(nodes) == 0 {
		return 0
	}

	var total float64
	for _, v := range nodes {
		neighbours := graph.NodesOf(u.From(v.ID()))
		k := len(neighbours)
		if k < 2 {
			continue
		}
		links := 0
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				if u.HasEdgeBetween(neighbours[i].ID(), neighbours[j].ID()) {
					links++
				}
			}
		}
		total += 2 * float64(links) / float64(k*(k-1))
	}
	return total / float64(len(nodes))
}
