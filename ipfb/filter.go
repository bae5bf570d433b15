// Package ipfb reads and writes inverse polyphase filterbank coefficient files.
//
// Layout:
//
//	TAPS    u8            number of taps T, 1..255
//	COEFFS  T*256 f32 LE  row-major, tap outer, channel inner
//
// The file carries no magic or version; its total length must be exactly
// 1 + T*256*4 bytes.
package ipfb

import (
	"encoding/binary"
	"math"

	"github.com/mwatdr/mwatdr/numconv"
	"github.com/mwatdr/mwatdr/tdrerr"
)

const (
	// Channels is the fixed number of frequency channels per tap.
	Channels = 256
	// MaxTaps is the largest tap count the one-byte prefix can hold.
	MaxTaps = 255

	headerLen = 1
	valueLen  = 4
	rowLen    = Channels * valueLen
)

// FileSize returns the exact size of a coefficient file with taps rows.
func FileSize(taps int) int { return headerLen + taps*rowLen }

// Filter is an immutable [taps, 256] coefficient matrix.
type Filter struct {
	taps   int
	coeffs []float32
}

// New builds a filter from float32 rows.
func New(rows [][]float32) (*Filter, error) { return FromRows(rows) }

// FromRows builds a filter from rows of any numeric type, converting each
// element with numconv.Float32.
func FromRows[T numconv.Number](rows [][]T) (*Filter, error) {
	a, err := numconv.Matrix(rows)
	if err != nil {
		return nil, tdrerr.Validation("ipfb.new", "%v", err)
	}
	return FromArray(a)
}

// FromArray builds a filter from a shaped array, which must be two
// dimensional with shape [1..255, 256].
func FromArray[T numconv.Number](a numconv.Array[T]) (*Filter, error) {
	const op = "ipfb.new"
	if err := a.Check(); err != nil {
		return nil, tdrerr.Validation(op, "%v", err)
	}
	if a.Ndim() != 2 {
		return nil, tdrerr.Validation(op, "filter must have 2 dimensions, got %d", a.Ndim())
	}
	if err := checkTaps(op, a.Shape[0]); err != nil {
		return nil, err
	}
	if a.Shape[1] != Channels {
		return nil, tdrerr.Validation(op, "channel dimension is %d, want exactly %d", a.Shape[1], Channels)
	}
	coeffs := make([]float32, len(a.Data))
	for i, v := range a.Data {
		coeffs[i] = numconv.Float32(v)
	}
	return &Filter{taps: a.Shape[0], coeffs: coeffs}, nil
}

func checkTaps(op string, taps int) error {
	if taps < 1 || taps > MaxTaps {
		return tdrerr.Validation(op, "tap dimension is %d, must be >= 1 and <= %d", taps, MaxTaps)
	}
	return nil
}

// Taps returns the time dimension T.
func (f *Filter) Taps() int { return f.taps }

// At returns the coefficient at tap t, channel c.
func (f *Filter) At(t, c int) float32 {
	if c < 0 || c >= Channels {
		panic("ipfb: channel index out of range")
	}
	return f.coeffs[t*Channels+c]
}

// Row returns a copy of tap t.
func (f *Filter) Row(t int) []float32 {
	r := make([]float32, Channels)
	copy(r, f.coeffs[t*Channels:(t+1)*Channels])
	return r
}

// Values returns a row-major copy of all coefficients.
func (f *Filter) Values() []float32 {
	v := make([]float32, len(f.coeffs))
	copy(v, f.coeffs)
	return v
}

// Equal reports whether f and g hold bit-identical coefficients.
func (f *Filter) Equal(g *Filter) bool {
	if f == nil || g == nil {
		return f == g
	}
	if f.taps != g.taps || len(f.coeffs) != len(g.coeffs) {
		return false
	}
	for i, v := range f.coeffs {
		if math.Float32bits(v) != math.Float32bits(g.coeffs[i]) {
			return false
		}
	}
	return true
}

// MarshalBinary encodes f in the file layout. A filter not built by New,
// FromRows, FromArray or Decode fails validation.
func (f *Filter) MarshalBinary() ([]byte, error) {
	if err := f.check("ipfb.encode"); err != nil {
		return nil, err
	}
	b := make([]byte, FileSize(f.taps))
	b[0] = uint8(f.taps)
	off := headerLen
	for _, v := range f.coeffs {
		binary.LittleEndian.PutUint32(b[off:off+valueLen], math.Float32bits(v))
		off += valueLen
	}
	return b, nil
}

func (f *Filter) check(op string) error {
	if f == nil {
		return tdrerr.Validation(op, "nil filter")
	}
	if err := checkTaps(op, f.taps); err != nil {
		return err
	}
	if len(f.coeffs) != f.taps*Channels {
		return tdrerr.Validation(op, "filter holds %d coefficients, %d taps need %d", len(f.coeffs), f.taps, f.taps*Channels)
	}
	return nil
}

func (f *Filter) UnmarshalBinary(b []byte) error {
	g, err := Decode(b)
	if err != nil {
		return err
	}
	*f = *g
	return nil
}

// Decode parses the contents of a coefficient file. A lone 0x00 byte has a
// consistent length but declares zero taps; it is a format error rather than
// an empty [0, 256] filter.
func Decode(b []byte) (*Filter, error) {
	const op = "ipfb.decode"
	if len(b) == 0 {
		return nil, tdrerr.Format(op, "", "file is empty")
	}
	taps := int(b[0])
	if len(b) != FileSize(taps) {
		return nil, tdrerr.Format(op, "", "file is %d bytes, %d taps need %d", len(b), taps, FileSize(taps))
	}
	if taps == 0 {
		return nil, tdrerr.Format(op, "", "filter has no taps")
	}
	coeffs := make([]float32, taps*Channels)
	off := headerLen
	for i := range coeffs {
		coeffs[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+valueLen]))
		off += valueLen
	}
	return &Filter{taps: taps, coeffs: coeffs}, nil
}
