// Package tensor provides the dense array backend and the
// demonstrative primitive library for the ad package. Scalars are
// plain float64; multi-dimensional values are *Dense. Elementwise
// operations broadcast in the NumPy manner: shapes are aligned on
// their trailing dimensions, and a dimension of size one stretches
// to match.
package tensor

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Dense is a row-major float64 array.
type Dense struct {
	shape []int
	data  []float64
}

// NewDense wraps data as an array of the given shape. The data is
// not copied.
func NewDense(shape []int, data []float64) *Dense {
	if len(data) != sizeOf(shape) {
		panic(&ShapeError{Op: "new", A: shape, B: []int{len(data)}})
	}
	return &Dense{shape: append([]int(nil), shape...), data: data}
}

// FromSlice returns a one-dimensional array over a copy of data.
func FromSlice(data []float64) *Dense {
	return NewDense([]int{len(data)}, append([]float64(nil), data...))
}

// Zeros returns an all-zero array of the given shape.
func Zeros(shape ...int) *Dense {
	return NewDense(shape, make([]float64, sizeOf(shape)))
}

// Ones returns an all-one array of the given shape.
func Ones(shape ...int) *Dense {
	return Full(1., shape...)
}

// Full returns an array of the given shape filled with value.
func Full(value float64, shape ...int) *Dense {
	data := make([]float64, sizeOf(shape))
	for i := range data {
		data[i] = value
	}
	return NewDense(shape, data)
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) *Dense {
	data := make([]float64, n)
	floats.Span(data, lo, hi)
	return NewDense([]int{n}, data)
}

// Shape returns a copy of the array's dimensions.
func (d *Dense) Shape() []int {
	return append([]int(nil), d.shape...)
}

// Ndim returns the number of dimensions.
func (d *Dense) Ndim() int { return len(d.shape) }

// Size returns the number of elements.
func (d *Dense) Size() int { return len(d.data) }

// Data returns the backing row-major slice.
func (d *Dense) Data() []float64 { return d.data }

// At returns the element at the given index.
func (d *Dense) At(idx ...int) float64 {
	return d.data[d.offset(idx)]
}

func (d *Dense) offset(idx []int) int {
	if len(idx) != len(d.shape) {
		panic(&ShapeError{Op: "index", A: d.shape, B: idx})
	}
	off := 0
	for i, j := range idx {
		if j < 0 || j >= d.shape[i] {
			panic(&ShapeError{Op: "index", A: d.shape, B: idx})
		}
		off = off*d.shape[i] + j
	}
	return off
}

func (d *Dense) clone() *Dense {
	return NewDense(d.shape, append([]float64(nil), d.data...))
}

func (d *Dense) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tensor%v%v", d.shape, d.data)
	return b.String()
}

func sizeOf(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ShapeError reports incompatible operand shapes. It propagates out
// of the forward pass or a VJP rule to the caller of the user
// function.
type ShapeError struct {
	Op   string
	A, B []int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("tensor: %s: incompatible shapes %v and %v",
		e.Op, e.A, e.B)
}
