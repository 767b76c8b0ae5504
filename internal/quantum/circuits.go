package quantum

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"quantumeyes/internal/models"
)

const (
	defaultCircuitQubits = 4
	// выше этого порога состояния не перечисляются, а сэмплируются
	maxEnumeratedQubits = 12
	evenParityBias      = 0.85
	LocalBackend        = "local_simulator"
)

type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

type CircuitResult struct {
	Counts      map[string]int `json:"counts"`
	Status      string         `json:"status"`
	Success     bool           `json:"success"`
	Date        time.Time      `json:"date"`
	BackendName string         `json:"backend_name"`
}

func bitstring(i, n int) string {
	s := strconv.FormatInt(int64(i), 2)
	if len(s) < n {
		s = strings.Repeat("0", n-len(s)) + s
	}
	return s
}

func header(qubits int) string {
	return fmt.Sprintf("OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[%d];\ncreg c[%d];\n", qubits, qubits)
}

// TestCircuitQASM: пары Белла на первых кубитах.
func TestCircuitQASM(qubits int) string {
	if qubits < 1 {
		qubits = defaultCircuitQubits
	}
	var b strings.Builder
	b.WriteString(header(qubits))
	for i := 0; i < min(qubits, 2); i++ {
		fmt.Fprintf(&b, "h q[%d];\n", i)
	}
	for i := 0; i < min(qubits, 2); i++ {
		if i+2 < qubits {
			fmt.Fprintf(&b, "cx q[%d], q[%d];\n", i, i+2)
		}
	}
	b.WriteString("measure q -> c;\n")
	return b.String()
}

// AnomalyCircuitQASM: Адамар на всех кубитах, feature map (zz или rx/rz),
// затем вариационный слой ansatz (пустой ansatz слой не добавляет).
func AnomalyCircuitQASM(qubits int, featureMap, ansatz string) string {
	if qubits < 1 {
		qubits = defaultCircuitQubits
	}
	var b strings.Builder
	b.WriteString(header(qubits))

	for i := 0; i < qubits; i++ {
		fmt.Fprintf(&b, "h q[%d];\n", i)
	}

	if featureMap == "zz" {
		for i := 0; i < qubits; i++ {
			for j := i + 1; j < qubits; j++ {
				fmt.Fprintf(&b, "cx q[%d], q[%d];\n", i, j)
				fmt.Fprintf(&b, "rz(0.1) q[%d];\n", j)
				fmt.Fprintf(&b, "cx q[%d], q[%d];\n", i, j)
			}
		}
	} else {
		for i := 0; i < qubits; i++ {
			fmt.Fprintf(&b, "rx(0.1) q[%d];\n", i)
			fmt.Fprintf(&b, "rz(0.2) q[%d];\n", i)
		}
	}

	switch ansatz {
	case "":
	case "efficient":
		for i := 0; i < qubits; i++ {
			fmt.Fprintf(&b, "ry(0.5) q[%d];\n", i)
			fmt.Fprintf(&b, "rz(0.5) q[%d];\n", i)
		}
		for i := 0; i+1 < qubits; i++ {
			fmt.Fprintf(&b, "cx q[%d], q[%d];\n", i, i+1)
		}
	default:
		for i := 0; i < qubits; i++ {
			fmt.Fprintf(&b, "ry(0.5) q[%d];\n", i)
		}
		for i := 0; i+1 < qubits; i++ {
			fmt.Fprintf(&b, "cx q[%d], q[%d];\n", i, i+1)
		}
	}

	b.WriteString("measure q -> c;\n")
	return b.String()
}

var qregRe = regexp.MustCompile(`qreg\s+q\[(\d+)\]`)

// QubitsFromQASM читает размер регистра q; 4, если объявления нет.
func QubitsFromQASM(qasm string) int {
	m := qregRe.FindStringSubmatch(qasm)
	if m == nil {
		return defaultCircuitQubits
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return defaultCircuitQubits
	}
	return n
}

func evenParity(state string) bool {
	return strings.Count(state, "1")%2 == 0
}

// SimulateLocally выдаёт распределение со смещением в сторону состояний чётной
// чётности; недостача до shots добавляется в нулевое состояние.
func (s *Service) SimulateLocally(qasm string, shots int) CircuitResult {
	if shots < 1 {
		shots = s.Status().Shots
	}
	n := QubitsFromQASM(qasm)

	var counts map[string]int
	if n <= maxEnumeratedQubits {
		counts = s.enumerateParity(n, shots)
	} else {
		counts = s.sampleParity(n, shots)
	}

	return CircuitResult{
		Counts:      counts,
		Status:      "COMPLETED",
		Success:     true,
		Date:        s.now(),
		BackendName: LocalBackend,
	}
}

func (s *Service) enumerateParity(n, shots int) map[string]int {
	states := 1 << n
	half := float64(states) / 2

	counts := make(map[string]int)
	total := 0
	for i := 0; i < states; i++ {
		state := bitstring(i, n)
		var c int
		if evenParity(state) {
			c = s.gen.IntN(max(1, int(float64(shots)*0.4/half))) + int(float64(shots)*0.1/half)
		} else {
			c = s.gen.IntN(max(1, int(float64(shots)*0.1/half)))
		}
		if c > 0 {
			counts[state] = c
			total += c
		}
	}

	if shortfall := shots - total; shortfall > 0 {
		counts[bitstring(0, n)] += shortfall
	}
	return counts
}

// sampleParity для больших регистров делает shots случайных измерений.
func (s *Service) sampleParity(n, shots int) map[string]int {
	counts := make(map[string]int)
	buf := make([]byte, n)
	for k := 0; k < shots; k++ {
		ones := 0
		for i := range buf {
			if s.gen.IntN(2) == 1 {
				buf[i] = '1'
				ones++
			} else {
				buf[i] = '0'
			}
		}
		if ones%2 == 1 && s.gen.Float(0, 1) < evenParityBias {
			if buf[n-1] == '1' {
				buf[n-1] = '0'
			} else {
				buf[n-1] = '1'
			}
		}
		counts[string(buf)]++
	}
	return counts
}

// CircuitDemo считает фиксированную 4-кубитную схему с пиками на 0000 и 1111.
func (s *Service) CircuitDemo() []StateCount {
	shots := s.Status().Shots

	counts := make([]int, 16)
	total := 0
	for i := range counts {
		if i == 0 || i == 15 {
			counts[i] = s.gen.IntN(200) + 200
		} else {
			counts[i] = s.gen.IntN(30)
		}
		total += counts[i]
	}
	if shortfall := shots - total; shortfall > 0 {
		counts[0] += shortfall
	}

	out := make([]StateCount, 0, len(counts))
	for i, c := range counts {
		if c > 0 {
			out = append(out, StateCount{State: bitstring(i, 4), Count: c})
		}
	}
	return out
}

// CountsDistribution: гистограмма измерений. При anomaly около 70% выборок
// приходится на состояния из всех нулей и всех единиц, иначе распределение близко к равномерному.
// Сумма всегда равна shots.
func (s *Service) CountsDistribution(qubits, shots int, anomaly bool) map[string]int {
	if qubits < 1 {
		qubits = defaultCircuitQubits
	}
	qubits = min(qubits, maxEnumeratedQubits)
	n := 1 << qubits

	weights := make([]float64, n)
	var sum float64
	for i := range weights {
		edge := i == 0 || i == n-1
		switch {
		case anomaly && edge:
			weights[i] = 0.35 + s.gen.Float(-0.02, 0.02)
		case anomaly:
			weights[i] = 0.3 / float64(n-2) * (1 + s.gen.Float(-0.25, 0.25))
		default:
			weights[i] = 1 / float64(n) * (1 + s.gen.Float(-0.25, 0.25))
		}
		sum += weights[i]
	}

	counts := make(map[string]int, n)
	total := 0
	for i, w := range weights {
		c := int(math.Floor(w / sum * float64(shots)))
		counts[bitstring(i, qubits)] = c
		total += c
	}
	counts[bitstring(0, qubits)] += shots - total
	return counts
}

// SortedCounts превращает карту в список, упорядоченный по состоянию.
func SortedCounts(counts map[string]int) []StateCount {
	out := make([]StateCount, 0, len(counts))
	for state, c := range counts {
		out = append(out, StateCount{State: state, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

func lastOctet(ip string) float64 {
	i := strings.LastIndexByte(ip, '.')
	v, err := strconv.Atoi(ip[i+1:])
	if err != nil {
		return 0
	}
	return float64(v)
}

// FeatureVectors нормирует соединения в векторы для кодирования в схему:
// последние октеты адресов, порт, размер пакета, длительность.
func FeatureVectors(conns []models.NetworkConnection) [][]float64 {
	out := make([][]float64, 0, len(conns))
	for _, c := range conns {
		out = append(out, []float64{
			lastOctet(c.SourceIP) / 255,
			lastOctet(c.DestinationIP) / 255,
			float64(c.DestinationPort) / 65535,
			float64(c.PacketSize) / 1500,
			c.Duration / 5,
		})
	}
	return out
}
