// Package quantization implements lossy in-memory vector encodings:
// scalar int8 quantization and a blockwise product-quantization variant,
// unified behind QuantizedVector so callers never branch on encoding kind.
package quantization

import "math"

// Kind tags which encoding a QuantizedVector carries.
type Kind int

const (
	KindScalar Kind = iota
	KindPQ
)

// Scalar is a single-min/max int8 encoding of a whole vector.
type Scalar struct {
	Values []int8
	Min    float32
	Max    float32
}

// FromF32Scalar quantizes v with one min/max pair for the whole vector.
func FromF32Scalar(v []float32) Scalar {
	if len(v) == 0 {
		return Scalar{}
	}
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	if hi-lo < float32(epsilon) {
		return Scalar{Values: make([]int8, len(v)), Min: lo, Max: hi}
	}
	rng := hi - lo
	values := make([]int8, len(v))
	for i, x := range v {
		normalized := (x - lo) / rng
		scaled := normalized*254.0 - 127.0
		values[i] = clampInt8(scaled)
	}
	return Scalar{Values: values, Min: lo, Max: hi}
}

func (s Scalar) ToF32() []float32 {
	if len(s.Values) == 0 {
		return nil
	}
	if s.Max-s.Min < float32(epsilon) {
		out := make([]float32, len(s.Values))
		for i := range out {
			out[i] = s.Min
		}
		return out
	}
	rng := s.Max - s.Min
	out := make([]float32, len(s.Values))
	for i, q := range s.Values {
		normalized := (float32(q) + 127.0) / 254.0
		out[i] = normalized*rng + s.Min
	}
	return out
}

func (s Scalar) Dim() int { return len(s.Values) }

// PQ is a lightweight product-quantization representation: the vector is
// split into `Subquantizers` contiguous blocks, each linearly quantized to
// 8 bits against its own min/max.
type PQ struct {
	Codes         []uint8
	BlockMins     []float32
	BlockMaxs     []float32
	Dim           int
	Subquantizers int
}

// FromF32PQ quantizes v into the given number of blocks.
func FromF32PQ(v []float32, subquantizers int) PQ {
	if len(v) == 0 {
		return PQ{}
	}
	dim := len(v)
	if subquantizers < 1 {
		subquantizers = 1
	}
	if subquantizers > dim {
		subquantizers = dim
	}
	blockLen := (dim + subquantizers - 1) / subquantizers

	codes := make([]uint8, 0, dim)
	blockMins := make([]float32, 0, subquantizers)
	blockMaxs := make([]float32, 0, subquantizers)

	for b := 0; b < subquantizers; b++ {
		start := b * blockLen
		if start >= dim {
			break
		}
		end := min(start+blockLen, dim)
		slice := v[start:end]

		blockMin, blockMax := slice[0], slice[0]
		for _, x := range slice[1:] {
			if x < blockMin {
				blockMin = x
			}
			if x > blockMax {
				blockMax = x
			}
		}
		blockMins = append(blockMins, blockMin)
		blockMaxs = append(blockMaxs, blockMax)

		rng := blockMax - blockMin
		if rng < float32(epsilon) {
			rng = float32(epsilon)
		}
		for _, x := range slice {
			normalized := (x - blockMin) / rng
			code := normalized * 255.0
			codes = append(codes, clampUint8(code))
		}
	}

	return PQ{Codes: codes, BlockMins: blockMins, BlockMaxs: blockMaxs, Dim: dim, Subquantizers: subquantizers}
}

func (p PQ) ToF32() []float32 {
	if len(p.Codes) == 0 || p.Subquantizers == 0 {
		return nil
	}
	blockLen := (p.Dim + p.Subquantizers - 1) / p.Subquantizers
	values := make([]float32, 0, p.Dim)
	idx := 0
	for b := 0; b < p.Subquantizers; b++ {
		start := b * blockLen
		if start >= p.Dim {
			break
		}
		end := min(start+blockLen, p.Dim)
		rng := p.BlockMaxs[b] - p.BlockMins[b]
		if rng < float32(epsilon) {
			rng = float32(epsilon)
		}
		for j := start; j < end; j++ {
			_ = j
			var code uint8
			if idx < len(p.Codes) {
				code = p.Codes[idx]
			}
			normalized := float32(code) / 255.0
			values = append(values, normalized*rng+p.BlockMins[b])
			idx++
		}
	}
	return values
}

func (p PQ) Dimension() int { return p.Dim }

// QuantizedVector is the unified on-disk representation. Zero-value
// (legacy, tag-less records) decodes as Scalar with empty fields, so old
// scalar-only checkpoints continue to load without special-casing.
type QuantizedVector struct {
	Kind Kind
	S    Scalar
	P    PQ
}

// FromF32 quantizes with the default (scalar) encoding.
func FromF32(v []float32) QuantizedVector {
	return QuantizedVector{Kind: KindScalar, S: FromF32Scalar(v)}
}

// Level selects which encoding FromF32WithLevel produces.
type Level struct {
	PQ            bool
	Subquantizers int
}

// FromF32WithLevel dispatches to scalar or PQ quantization per cfg.
func FromF32WithLevel(v []float32, level Level) QuantizedVector {
	if level.PQ {
		return QuantizedVector{Kind: KindPQ, P: FromF32PQ(v, level.Subquantizers)}
	}
	return FromF32(v)
}

func (q QuantizedVector) ToF32() []float32 {
	switch q.Kind {
	case KindPQ:
		if len(q.P.Codes) > 0 {
			return q.P.ToF32()
		}
		return q.S.ToF32()
	default:
		return q.S.ToF32()
	}
}

func (q QuantizedVector) Dim() int {
	switch q.Kind {
	case KindPQ:
		if q.P.Dim > 0 || len(q.P.Codes) > 0 {
			return q.P.Dimension()
		}
		return q.S.Dim()
	default:
		return q.S.Dim()
	}
}

const epsilon = 1e-7

func clampInt8(x float32) int8 {
	r := math.Round(float64(x))
	if r < -127 {
		r = -127
	}
	if r > 127 {
		r = 127
	}
	return int8(r)
}

func clampUint8(x float32) uint8 {
	r := math.Round(float64(x))
	if r < 0 {
		r = 0
	}
	if r > 255 {
		r = 255
	}
	return uint8(r)
}
