package quantum

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

const (
	VisualizationURLPrefix = "/quantum-viz/"

	minVizQubits = 2
	maxVizQubits = 10
	minVizShots  = 100
	maxVizShots  = 10000

	histogramTitle = "Distribution des Mesures Quantiques"
)

var ErrInvalidVisualization = errors.New("invalid visualization parameters")

type VisualizeParams struct {
	NumQubits  int    `json:"numQubits"`
	FeatureMap string `json:"featureMap"`
	Ansatz     string `json:"ansatz"`
	NumShots   int    `json:"numShots"`
	Anomaly    bool   `json:"anomaly"`
}

func (p *VisualizeParams) applyDefaults() {
	if p.NumQubits == 0 {
		p.NumQubits = 4
	}
	if p.FeatureMap == "" {
		p.FeatureMap = "zz"
	}
	if p.Ansatz == "" {
		p.Ansatz = "real"
	}
	if p.NumShots == 0 {
		p.NumShots = 1024
	}
}

func (p VisualizeParams) validateQubits() error {
	if p.NumQubits < minVizQubits || p.NumQubits > maxVizQubits {
		return fmt.Errorf("%w: numQubits must be between %d and %d", ErrInvalidVisualization, minVizQubits, maxVizQubits)
	}
	return nil
}

func (p VisualizeParams) validateShots() error {
	if p.NumShots < minVizShots || p.NumShots > maxVizShots {
		return fmt.Errorf("%w: numShots must be between %d and %d", ErrInvalidVisualization, minVizShots, maxVizShots)
	}
	return nil
}

// Visualizer рисует схемы и гистограммы в SVG-файлы, раздаваемые по /quantum-viz/.
type Visualizer struct {
	dir string
	svc *Service
}

func NewVisualizer(dir string, svc *Service) *Visualizer {
	return &Visualizer{dir: dir, svc: svc}
}

func (v *Visualizer) Dir() string { return v.dir }

type Visualization struct {
	CircuitImageURL   string          `json:"circuitImageUrl,omitempty"`
	HistogramImageURL string          `json:"histogramImageUrl,omitempty"`
	Counts            []StateCount    `json:"counts,omitempty"`
	Details           VisualizeParams `json:"details"`
}

func (v *Visualizer) Circuit(p VisualizeParams) (*Visualization, error) {
	p.applyDefaults()
	if err := p.validateQubits(); err != nil {
		return nil, err
	}
	url, err := v.RenderCircuit(AnomalyCircuitQASM(p.NumQubits, p.FeatureMap, p.Ansatz))
	if err != nil {
		return nil, err
	}
	return &Visualization{CircuitImageURL: url, Details: p}, nil
}

func (v *Visualizer) Histogram(p VisualizeParams) (*Visualization, error) {
	p.applyDefaults()
	if err := p.validateQubits(); err != nil {
		return nil, err
	}
	if err := p.validateShots(); err != nil {
		return nil, err
	}
	counts := v.svc.CountsDistribution(p.NumQubits, p.NumShots, p.Anomaly)
	url, err := v.RenderHistogram(counts, histogramTitle)
	if err != nil {
		return nil, err
	}
	return &Visualization{HistogramImageURL: url, Counts: SortedCounts(counts), Details: p}, nil
}

// Complete рисует схему и гистограмму за один запрос.
func (v *Visualizer) Complete(p VisualizeParams) (*Visualization, error) {
	circuit, err := v.Circuit(p)
	if err != nil {
		return nil, err
	}
	hist, err := v.Histogram(p)
	if err != nil {
		return nil, err
	}
	hist.CircuitImageURL = circuit.CircuitImageURL
	return hist, nil
}

func (v *Visualizer) write(prefix, body string) (string, error) {
	if err := os.MkdirAll(v.dir, 0o755); err != nil {
		return "", fmt.Errorf("create visualization dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.svg", prefix, uuid.NewString())
	if err := os.WriteFile(filepath.Join(v.dir, name), []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return VisualizationURLPrefix + name, nil
}

// ====== СХЕМА ======

type Gate struct {
	Name   string
	Param  string
	Qubits []int
}

var (
	gateRe  = regexp.MustCompile(`^([a-z]+)(?:\(([^)]*)\))?\s+(.+);$`)
	qubitRe = regexp.MustCompile(`q\[(\d+)\]`)
)

// ParseGates разбирает подмножество OpenQASM 2.0, которое генерирует этот пакет.
func ParseGates(qasm string) (qubits int, gates []Gate) {
	qubits = QubitsFromQASM(qasm)
	for _, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		if line == "" ||
			strings.HasPrefix(line, "OPENQASM") ||
			strings.HasPrefix(line, "include") ||
			strings.HasPrefix(line, "qreg") ||
			strings.HasPrefix(line, "creg") {
			continue
		}
		if strings.HasPrefix(line, "measure q ->") {
			all := make([]int, qubits)
			for i := range all {
				all[i] = i
			}
			gates = append(gates, Gate{Name: "measure", Qubits: all})
			continue
		}

		m := gateRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		g := Gate{Name: m[1], Param: m[2]}
		for _, q := range qubitRe.FindAllStringSubmatch(m[3], -1) {
			n, _ := strconv.Atoi(q[1])
			g.Qubits = append(g.Qubits, n)
		}
		if len(g.Qubits) > 0 {
			gates = append(gates, g)
		}
	}
	return qubits, gates
}

const (
	wireGap    = 50
	colWidth   = 50
	leftMargin = 70
	topMargin  = 40
	gateSize   = 32
)

// layoutGates раскладывает вентили по столбцам: каждый встаёт в первый
// столбец, где свободны все затронутые провода.
func layoutGates(qubits int, gates []Gate) (cols []int, width int) {
	level := make([]int, qubits)
	cols = make([]int, len(gates))
	for i, g := range gates {
		lo, hi := span(g)
		col := 0
		for q := lo; q <= hi && q < qubits; q++ {
			col = max(col, level[q])
		}
		for q := lo; q <= hi && q < qubits; q++ {
			level[q] = col + 1
		}
		cols[i] = col
		width = max(width, col+1)
	}
	return cols, width
}

func span(g Gate) (lo, hi int) {
	lo, hi = g.Qubits[0], g.Qubits[0]
	for _, q := range g.Qubits[1:] {
		lo = min(lo, q)
		hi = max(hi, q)
	}
	return lo, hi
}

func CircuitSVG(qasm string) string {
	qubits, gates := ParseGates(qasm)
	cols, ncols := layoutGates(qubits, gates)

	w := leftMargin + ncols*colWidth + 40
	h := topMargin + qubits*wireGap
	wireY := func(q int) int { return topMargin + q*wireGap }
	colX := func(c int) int { return leftMargin + c*colWidth + colWidth/2 }

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, w, h), `font-family="sans-serif"`)
	canvas.Rect(0, 0, w, h, "fill:#ffffff")

	for q := 0; q < qubits; q++ {
		y := wireY(q)
		canvas.Text(10, y+5, fmt.Sprintf("q[%d]", q), "font-size:14px")
		canvas.Line(leftMargin-10, y, w-20, y, "stroke:#333")
	}

	const cxStyle = "stroke:#1f4e99;stroke-width:2"
	for i, g := range gates {
		x := colX(cols[i])
		switch {
		case g.Name == "cx" && len(g.Qubits) == 2:
			cy, ty := wireY(g.Qubits[0]), wireY(g.Qubits[1])
			canvas.Line(x, cy, x, ty, cxStyle)
			canvas.Circle(x, cy, 5, "fill:#1f4e99")
			canvas.Circle(x, ty, 11, "fill:#ffffff;"+cxStyle)
			canvas.Line(x-11, ty, x+11, ty, cxStyle)
			canvas.Line(x, ty-11, x, ty+11, cxStyle)
		case g.Name == "measure":
			for _, q := range g.Qubits {
				gateBox(canvas, x, wireY(q), "M", "", "#6b6b6b")
			}
		default:
			for _, q := range g.Qubits {
				gateBox(canvas, x, wireY(q), strings.ToUpper(g.Name), g.Param, gateColor(g.Name))
			}
		}
	}

	canvas.End()
	return buf.String()
}

func gateColor(name string) string {
	switch name {
	case "h":
		return "#d9534f"
	case "rz", "rx", "ry":
		return "#7b4fb5"
	}
	return "#3a7d44"
}

// gateBox: svgo экранирует текст сам.
func gateBox(canvas *svg.SVG, x, y int, label, param, color string) {
	half := gateSize / 2
	canvas.Roundrect(x-half, y-half, gateSize, gateSize, 3, 3, "fill:"+color)
	canvas.Text(x, y+4, label, "font-size:12px;fill:#ffffff;text-anchor:middle")
	if param != "" {
		canvas.Text(x, y+half+10, param, "font-size:9px;fill:#333;text-anchor:middle")
	}
}

func (v *Visualizer) RenderCircuit(qasm string) (string, error) {
	return v.write("quantum_circuit", CircuitSVG(qasm))
}

// ====== ГИСТОГРАММА ======

const (
	histHeight   = 320
	histMargin   = 100
	maxBarLabels = 32
	histMaxWidth = 900
	histMinBarW  = 2
	histMaxBarW  = 40
)

var histBarColor = color.RGBA{R: 0x4a, G: 0x7b, B: 0xd0, A: 0xff}

// HistogramSVG строит столбчатую диаграмму по состояниям в лексикографическом
// порядке. Подписи оси X только если состояний не больше maxBarLabels.
func HistogramSVG(counts map[string]int, title string) (string, error) {
	states := make([]string, 0, len(counts))
	for s := range counts {
		states = append(states, s)
	}
	sort.Strings(states)

	values := make(plotter.Values, len(states))
	for i, s := range states {
		values[i] = float64(counts[s])
	}

	barW := histMaxBarW
	if len(states) > 0 {
		barW = min(histMaxBarW, max(histMinBarW, histMaxWidth/len(states)))
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Occurrences"
	p.Y.Min = 0

	if len(states) > 0 {
		bars, err := plotter.NewBarChart(values, vg.Points(float64(barW)*0.8))
		if err != nil {
			return "", fmt.Errorf("histogram bars: %w", err)
		}
		bars.Color = histBarColor
		bars.LineStyle.Width = 0
		p.Add(bars)
	}
	if len(states) > 0 && len(states) <= maxBarLabels {
		p.NominalX(states...)
		p.X.Tick.Label.Rotation = math.Pi / 3
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}

	width := vg.Points(float64(histMargin + len(states)*barW))
	c := vgsvg.New(width, vg.Points(histHeight))
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("encode histogram: %w", err)
	}
	return buf.String(), nil
}

func (v *Visualizer) RenderHistogram(counts map[string]int, title string) (string, error) {
	out, err := HistogramSVG(counts, title)
	if err != nil {
		return "", err
	}
	return v.write("quantum_histogram", out)
}
