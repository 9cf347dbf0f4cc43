// Package metric computes similarity/distance between vectors under a
// chosen execution backend. All kernels share semantics up to
// floating-point rounding except Binary, which is explicitly approximate.
package metric

import "fmt"

// Metric is the similarity family; higher score is always better once
// through Calculate, regardless of kind.
type Metric int

const (
	Cosine Metric = iota
	Euclidean
	DotProduct
)

// ExecutionMode selects which kernel implementation computes the raw
// metric value before Metric's higher-is-better conversion is applied.
type ExecutionMode int

const (
	Auto ExecutionMode = iota
	Scalar
	Simd
	Parallel
	Binary
	Jit
)

// resolve turns Auto into a concrete backend. Go has no portable way to
// detect SIMD-capable architectures without cgo or assembly, so Auto
// always resolves to the unrolled Simd kernel, which every architecture
// Go targets can execute identically to Scalar.
func (m ExecutionMode) resolve() ExecutionMode {
	if m == Auto {
		return Simd
	}
	return m
}

// Calculate computes the similarity of a and b under m, using backend.
// Returns higher-is-better: Cosine in [-1,1], Euclidean distance mapped
// through 1/(1+d), DotProduct unbounded.
func (m Metric) Calculate(a, b []float32, mode ExecutionMode) float64 {
	raw := rawDistance(a, b, m, mode.resolve())
	switch m {
	case Euclidean:
		return 1.0 / (1.0 + raw)
	default:
		return raw
	}
}

// CalculateWithMode is an alias kept for call sites that prefer a verb
// matching the original source's calculate_with_mode naming.
func (m Metric) CalculateWithMode(a, b []float32, mode ExecutionMode) float64 {
	return m.Calculate(a, b, mode)
}

func rawDistance(a, b []float32, metric Metric, backend ExecutionMode) float64 {
	switch backend {
	case Scalar:
		return scalarDistance(a, b, metric)
	case Simd:
		return simdDistance(a, b, metric)
	case Parallel:
		return parallelDistance(a, b, metric)
	case Binary:
		return binaryDistance(a, b, metric)
	case Jit:
		return jitDistance(a, b, metric)
	default:
		return scalarDistance(a, b, metric)
	}
}

func checkLen(a, b []float32) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("metric: mismatched vector lengths %d != %d", len(a), len(b)))
	}
}

func (k ExecutionMode) String() string {
	switch k {
	case Auto:
		return "auto"
	case Scalar:
		return "scalar"
	case Simd:
		return "simd"
	case Parallel:
		return "parallel"
	case Binary:
		return "binary"
	case Jit:
		return "jit"
	default:
		return "unknown"
	}
}

func (m Metric) String() string {
	switch m {
	case Cosine:
		return "cosine"
	case Euclidean:
		return "euclidean"
	case DotProduct:
		return "dot_product"
	default:
		return "unknown"
	}
}

// MarshalText/UnmarshalText let ExecutionMode round-trip through TOML
// and JSON as its lowercase name instead of a bare integer.
func (k ExecutionMode) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ExecutionMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "auto", "":
		*k = Auto
	case "scalar":
		*k = Scalar
	case "simd":
		*k = Simd
	case "parallel":
		*k = Parallel
	case "binary":
		*k = Binary
	case "jit":
		*k = Jit
	default:
		return fmt.Errorf("metric: unknown execution mode %q", text)
	}
	return nil
}

// MarshalText/UnmarshalText give Metric the same textual round-trip.
func (m Metric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Metric) UnmarshalText(text []byte) error {
	switch string(text) {
	case "cosine", "":
		*m = Cosine
	case "euclidean":
		*m = Euclidean
	case "dot_product":
		*m = DotProduct
	default:
		return fmt.Errorf("metric: unknown metric %q", text)
	}
	return nil
}
