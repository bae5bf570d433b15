// Package numconv holds the explicit numeric conversions used by the encoders
// and a minimal shaped array type for handing them n-dimensional input.
package numconv

import (
	"errors"
	"fmt"
	"math"
)

// Integer is any built-in integer type.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Float is any built-in floating-point type.
type Float interface {
	~float32 | ~float64
}

// Number is any built-in real numeric type.
type Number interface {
	Integer | Float
}

// Float32 converts v to float32 by value. Integers and float64 values are
// rounded to the nearest representable float32 (IEEE round-half-even);
// float64 values beyond the float32 range become ±Inf.
func Float32[T Number](v T) float32 {
	return float32(v)
}

// Int16 converts v to int16.
//
// Integer inputs wrap: the result keeps the low 16 bits in two's complement,
// so 40000 becomes -25536. Floating-point inputs are truncated toward zero
// and then saturated to [math.MinInt16, math.MaxInt16]; NaN becomes 0.
func Int16[T Number](v T) int16 {
	if isFloat[T]() {
		return floatToInt16(float64(v))
	}
	return int16(int64(v))
}

func floatToInt16(f float64) int16 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt16:
		return math.MaxInt16
	case f <= math.MinInt16:
		return math.MinInt16
	}
	return int16(math.Trunc(f))
}

// isFloat reports whether T's underlying type is floating point.
func isFloat[T Number]() bool {
	one, two := T(1), T(2)
	return one/two != 0
}

// Array is a row-major n-dimensional array.
type Array[T Number] struct {
	Shape []int
	Data  []T
}

// Vector returns a one-dimensional array over data.
func Vector[T Number](data []T) Array[T] {
	return Array[T]{Shape: []int{len(data)}, Data: data}
}

// Matrix flattens rows into a two-dimensional array. Rows must all have the
// same width.
func Matrix[T Number](rows [][]T) (Array[T], error) {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	data := make([]T, 0, len(rows)*width)
	for i, r := range rows {
		if len(r) != width {
			return Array[T]{}, fmt.Errorf("row %d has width %d, want %d", i, len(r), width)
		}
		data = append(data, r...)
	}
	return Array[T]{Shape: []int{len(rows), width}, Data: data}, nil
}

// Ndim returns the number of dimensions.
func (a Array[T]) Ndim() int { return len(a.Shape) }

// Size returns the product of the shape.
func (a Array[T]) Size() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Check verifies the shape is non-negative and consistent with Data.
func (a Array[T]) Check() error {
	if len(a.Shape) == 0 {
		return errors.New("array has no shape")
	}
	for i, d := range a.Shape {
		if d < 0 {
			return fmt.Errorf("dimension %d is negative (%d)", i, d)
		}
	}
	if n := a.Size(); n != len(a.Data) {
		return fmt.Errorf("shape %v holds %d elements, data has %d", a.Shape, n, len(a.Data))
	}
	return nil
}
