package dtypes

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ElementKind identifies the numeric element type of a vector column.
type ElementKind string

const (
	I8  ElementKind = "I8"
	I16 ElementKind = "I16"
	I32 ElementKind = "I32"
	I64 ElementKind = "I64"
	F16 ElementKind = "F16"
	F32 ElementKind = "F32"
	F64 ElementKind = "F64"
)

// DefaultElementKind is used when a VECTOR type omits its element kind.
const DefaultElementKind = F32

var elementWidths = map[ElementKind]int{
	I8:  1,
	I16: 2,
	I32: 4,
	I64: 8,
	F16: 2,
	F32: 4,
	F64: 8,
}

var (
	// ErrDimensionMismatch is returned when an encoded value's length does
	// not equal the vector's declared dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrTruncatedVector is returned when a binary blob's length is not
	// exactly dimension times the element width.
	ErrTruncatedVector = errors.New("truncated vector value")
)

// ParseElementKind matches a kind name case-insensitively.
func ParseElementKind(s string) (ElementKind, error) {
	kind := ElementKind(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := elementWidths[kind]; !ok {
		return "", fmt.Errorf("unknown vector element kind %q", s)
	}
	return kind, nil
}

// Width returns the element byte width, or 0 for an unknown kind.
func (k ElementKind) Width() int {
	return elementWidths[k]
}

// Vector is the VECTOR(dimension, kind) column type. Instances are
// immutable after construction.
type Vector struct {
	Dimension int         `json:"dimension"`
	Kind      ElementKind `json:"kind"`
}

// NewVector validates and builds a Vector type. A zero-valued kind selects
// the F32 default.
func NewVector(dimension int, kind ElementKind) (*Vector, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", dimension)
	}
	if kind == "" {
		kind = DefaultElementKind
	}
	if _, ok := elementWidths[kind]; !ok {
		return nil, fmt.Errorf("unknown vector element kind %q", kind)
	}
	return &Vector{Dimension: dimension, Kind: kind}, nil
}

// DDLText renders the type for CREATE TABLE statements.
func (v *Vector) DDLText() string {
	return fmt.Sprintf("VECTOR(%d, %s)", v.Dimension, v.Kind)
}

// ByteLength is the exact wire length of one encoded value.
func (v *Vector) ByteLength() int {
	return v.Dimension * v.Kind.Width()
}

// CacheKey is a pure function of the construction parameters, so two
// vectors of equal shape key identically in a statement cache.
func (v *Vector) CacheKey() string {
	return fmt.Sprintf("vector:%d:%s", v.Dimension, v.Kind)
}

// Encode packs the values as a little-endian fixed-width array. The input
// length must equal the declared dimension.
func (v *Vector) Encode(values []float64) ([]byte, error) {
	if len(values) != v.Dimension {
		return nil, fmt.Errorf("%w: got %d elements, want %d", ErrDimensionMismatch, len(values), v.Dimension)
	}
	buf := make([]byte, 0, v.ByteLength())
	for _, val := range values {
		switch v.Kind {
		case I8:
			buf = append(buf, byte(int8(val)))
		case I16:
			buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(val)))
		case I32:
			buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(val)))
		case I64:
			buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(val)))
		case F16:
			buf = binary.LittleEndian.AppendUint16(buf, float16bits(float32(val)))
		case F32:
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(val)))
		case F64:
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(val))
		}
	}
	return buf, nil
}

// Decode unpacks a binary blob into the vector's numeric values.
func (v *Vector) Decode(data []byte) ([]float64, error) {
	width := v.Kind.Width()
	if len(data) != v.ByteLength() {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrTruncatedVector, len(data), v.ByteLength())
	}
	values := make([]float64, v.Dimension)
	for i := 0; i < v.Dimension; i++ {
		chunk := data[i*width:]
		switch v.Kind {
		case I8:
			values[i] = float64(int8(chunk[0]))
		case I16:
			values[i] = float64(int16(binary.LittleEndian.Uint16(chunk)))
		case I32:
			values[i] = float64(int32(binary.LittleEndian.Uint32(chunk)))
		case I64:
			values[i] = float64(int64(binary.LittleEndian.Uint64(chunk)))
		case F16:
			values[i] = float64(float16value(binary.LittleEndian.Uint16(chunk)))
		case F32:
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(chunk)))
		case F64:
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk))
		}
	}
	return values, nil
}

// float16bits converts an IEEE 754 float32 to half precision, rounding to
// nearest even.
func float16bits(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23&0xff) - 127 + 15
	mant := bits & 0x7fffff

	switch {
	case exp >= 0x1f:
		// Overflow to infinity; NaN keeps a mantissa bit.
		if int32(bits>>23&0xff) == 0xff && mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	case exp <= 0:
		// Subnormal or zero.
		if exp < -10 {
			return sign
		}
		mant |= 0x800000
		shift := uint32(14 - exp)
		half := uint16(mant >> shift)
		if mant>>(shift-1)&1 != 0 {
			half++
		}
		return sign | half
	default:
		half := sign | uint16(exp)<<10 | uint16(mant>>13)
		if mant&0x1000 != 0 {
			half++
		}
		return half
	}
}

// float16value expands a half precision value back to float32.
func float16value(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h >> 10 & 0x1f)
	mant := uint32(h & 0x3ff)

	switch exp {
	case 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// Normalize the subnormal.
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		mant &= 0x3ff
		exp++
	case 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	return math.Float32frombits(sign | (exp+127-15)<<23 | mant<<13)
}
