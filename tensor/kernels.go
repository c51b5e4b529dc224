package tensor

// Raw numeric kernels behind the primitives. Values are float64
// scalars or *Dense arrays; kernels dispatch on both operands and
// broadcast where shapes differ. Same-shape dense pairs take the
// flat gonum fast path for add, sub, mul and div; pow loops
// elementwise.

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pkg/errors"
)

var (
	kAdd = &binKernel{op: "add", f: func(x, y float64) float64 { return x + y }, fast: floats.AddTo}
	kSub = &binKernel{op: "sub", f: func(x, y float64) float64 { return x - y }, fast: floats.SubTo}
	kMul = &binKernel{op: "mul", f: func(x, y float64) float64 { return x * y }, fast: floats.MulTo}
	kDiv = &binKernel{op: "div", f: func(x, y float64) float64 { return x / y }, fast: floats.DivTo}
	kPow = &binKernel{op: "pow", f: math.Pow}
)

func badValue(op string, v any) error {
	return errors.Errorf("tensor: %s: unsupported value of type %T", op, v)
}

func shapeOf(v any) []int {
	switch x := v.(type) {
	case float64:
		return nil
	case *Dense:
		return x.Shape()
	}
	panic(badValue("shape", v))
}

func ndimOf(v any) int {
	switch x := v.(type) {
	case float64:
		return 0
	case *Dense:
		return x.Ndim()
	}
	panic(badValue("ndim", v))
}

func zerosLike(v any) any {
	switch x := v.(type) {
	case float64:
		return 0.
	case *Dense:
		return Zeros(x.shape...)
	}
	panic(badValue("zeros_like", v))
}

func onesLike(v any) any {
	switch x := v.(type) {
	case float64:
		return 1.
	case *Dense:
		return Ones(x.shape...)
	}
	panic(badValue("ones_like", v))
}

// binKernel is a broadcasting elementwise binary operation. fast,
// when set, computes the same-shape dense case over the flat
// buffers.
type binKernel struct {
	op   string
	f    func(x, y float64) float64
	fast func(dst, s, t []float64) []float64
}

func (k *binKernel) apply(a, b any) any {
	switch x := a.(type) {
	case float64:
		switch y := b.(type) {
		case float64:
			return k.f(x, y)
		case *Dense:
			out := Zeros(y.shape...)
			for i, v := range y.data {
				out.data[i] = k.f(x, v)
			}
			return out
		}
	case *Dense:
		switch y := b.(type) {
		case float64:
			out := Zeros(x.shape...)
			for i, v := range x.data {
				out.data[i] = k.f(v, y)
			}
			return out
		case *Dense:
			if sameShape(x.shape, y.shape) {
				out := Zeros(x.shape...)
				if k.fast != nil {
					k.fast(out.data, x.data, y.data)
				} else {
					for i := range x.data {
						out.data[i] = k.f(x.data[i], y.data[i])
					}
				}
				return out
			}
			return k.broadcast(x, y)
		}
	}
	panic(badValue(k.op, a))
}

func (k *binKernel) broadcast(a, b *Dense) *Dense {
	shape := broadcastShape(k.op, a.shape, b.shape)
	out := Zeros(shape...)
	sa := bcastStrides(a.shape, shape)
	sb := bcastStrides(b.shape, shape)
	idx := make([]int, len(shape))
	for i := range out.data {
		out.data[i] = k.f(a.data[flatOffset(idx, sa)], b.data[flatOffset(idx, sb)])
		incrIndex(idx, shape)
	}
	return out
}

// broadcastShape aligns two shapes on their trailing dimensions. A
// dimension of size one stretches to match the other operand.
func broadcastShape(op string, a, b []int) []int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	shape := make([]int, n)
	for i := 1; i <= n; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}
		switch {
		case da == db:
			shape[n-i] = da
		case da == 1:
			shape[n-i] = db
		case db == 1:
			shape[n-i] = da
		default:
			panic(&ShapeError{Op: op, A: a, B: b})
		}
	}
	return shape
}

// bcastStrides returns row-major strides of an array of shape from
// when read at the positions of shape out, zero on stretched
// dimensions.
func bcastStrides(from, out []int) []int {
	strides := make([]int, len(out))
	stride := 1
	pad := len(out) - len(from)
	for i := len(out) - 1; i >= 0; i-- {
		if i < pad || from[i-pad] == 1 {
			strides[i] = 0
		} else {
			strides[i] = stride
		}
		if i >= pad {
			stride *= from[i-pad]
		}
	}
	return strides
}

func flatOffset(idx, strides []int) int {
	off := 0
	for i, j := range idx {
		off += j * strides[i]
	}
	return off
}

func incrIndex(idx, shape []int) {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < shape[i] {
			return
		}
		idx[i] = 0
	}
}

func mapUnary(op string, v any, f func(float64) float64) any {
	switch x := v.(type) {
	case float64:
		return f(x)
	case *Dense:
		out := Zeros(x.shape...)
		for i, e := range x.data {
			out.data[i] = f(e)
		}
		return out
	}
	panic(badValue(op, v))
}

func sumAll(v any) any {
	switch x := v.(type) {
	case float64:
		return x
	case *Dense:
		return floats.Sum(x.data)
	}
	panic(badValue("sum", v))
}

// sumAxisKernel reduces one axis. A reduction to rank zero yields a
// float64 scalar.
func sumAxisKernel(v any, axis int, keepdims bool) any {
	x, ok := v.(*Dense)
	if !ok {
		panic(badValue("sum", v))
	}
	if axis < 0 || axis >= len(x.shape) {
		panic(&ShapeError{Op: "sum", A: x.shape, B: []int{axis}})
	}
	outer, n, inner := 1, x.shape[axis], 1
	for _, d := range x.shape[:axis] {
		outer *= d
	}
	for _, d := range x.shape[axis+1:] {
		inner *= d
	}
	data := make([]float64, outer*inner)
	for o := 0; o < outer; o++ {
		dst := data[o*inner : (o+1)*inner]
		for k := 0; k < n; k++ {
			base := (o*n + k) * inner
			floats.Add(dst, x.data[base:base+inner])
		}
	}
	var shape []int
	if keepdims {
		shape = x.Shape()
		shape[axis] = 1
	} else {
		shape = append(append([]int{}, x.shape[:axis]...), x.shape[axis+1:]...)
	}
	if len(shape) == 0 {
		return data[0]
	}
	return NewDense(shape, data)
}

func broadcastToKernel(v any, shape []int) any {
	if len(shape) == 0 {
		switch x := v.(type) {
		case float64:
			return x
		case *Dense:
			if x.Size() == 1 {
				return x.data[0]
			}
		}
		panic(&ShapeError{Op: "broadcast_to", A: shapeOf(v), B: shape})
	}
	switch x := v.(type) {
	case float64:
		return Full(x, shape...)
	case *Dense:
		if !sameShape(broadcastShape("broadcast_to", x.shape, shape), shape) {
			panic(&ShapeError{Op: "broadcast_to", A: x.shape, B: shape})
		}
		out := Zeros(shape...)
		strides := bcastStrides(x.shape, shape)
		idx := make([]int, len(shape))
		for i := range out.data {
			out.data[i] = x.data[flatOffset(idx, strides)]
			incrIndex(idx, shape)
		}
		return out
	}
	panic(badValue("broadcast_to", v))
}

func reshapeKernel(v any, shape []int) any {
	size := sizeOf(shape)
	switch x := v.(type) {
	case float64:
		if size != 1 {
			panic(&ShapeError{Op: "reshape", A: nil, B: shape})
		}
		if len(shape) == 0 {
			return x
		}
		return NewDense(shape, []float64{x})
	case *Dense:
		if size != x.Size() {
			panic(&ShapeError{Op: "reshape", A: x.shape, B: shape})
		}
		if len(shape) == 0 {
			return x.data[0]
		}
		return NewDense(shape, append([]float64(nil), x.data...))
	}
	panic(badValue("reshape", v))
}

func transposeKernel(v any) any {
	switch x := v.(type) {
	case float64:
		return x
	case *Dense:
		switch len(x.shape) {
		case 0, 1:
			return x
		case 2:
			r, c := x.shape[0], x.shape[1]
			out := Zeros(c, r)
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					out.data[j*r+i] = x.data[i*c+j]
				}
			}
			return out
		}
		panic(&ShapeError{Op: "transpose", A: x.shape, B: nil})
	}
	panic(badValue("transpose", v))
}

// dotKernel is the inner/matrix product for operands of up to two
// dimensions, on gonum's mat for the matrix cases.
func dotKernel(a, b any) any {
	if s, ok := a.(float64); ok {
		return kMul.apply(s, b)
	}
	if s, ok := b.(float64); ok {
		return kMul.apply(a, s)
	}
	x, ok := a.(*Dense)
	if !ok {
		panic(badValue("dot", a))
	}
	y, ok := b.(*Dense)
	if !ok {
		panic(badValue("dot", b))
	}
	switch {
	case x.Ndim() == 1 && y.Ndim() == 1:
		if x.shape[0] != y.shape[0] {
			panic(&ShapeError{Op: "dot", A: x.shape, B: y.shape})
		}
		return floats.Dot(x.data, y.data)
	case x.Ndim() == 2 && y.Ndim() == 1:
		if x.shape[1] != y.shape[0] {
			panic(&ShapeError{Op: "dot", A: x.shape, B: y.shape})
		}
		var out mat.VecDense
		out.MulVec(
			mat.NewDense(x.shape[0], x.shape[1], x.data),
			mat.NewVecDense(y.shape[0], y.data))
		return NewDense([]int{x.shape[0]}, out.RawVector().Data)
	case x.Ndim() == 1 && y.Ndim() == 2:
		if x.shape[0] != y.shape[0] {
			panic(&ShapeError{Op: "dot", A: x.shape, B: y.shape})
		}
		var out mat.VecDense
		out.MulVec(
			mat.NewDense(y.shape[0], y.shape[1], y.data).T(),
			mat.NewVecDense(x.shape[0], x.data))
		return NewDense([]int{y.shape[1]}, out.RawVector().Data)
	case x.Ndim() == 2 && y.Ndim() == 2:
		if x.shape[1] != y.shape[0] {
			panic(&ShapeError{Op: "dot", A: x.shape, B: y.shape})
		}
		var out mat.Dense
		out.Mul(
			mat.NewDense(x.shape[0], x.shape[1], x.data),
			mat.NewDense(y.shape[0], y.shape[1], y.data))
		raw := out.RawMatrix()
		return NewDense([]int{raw.Rows, raw.Cols}, raw.Data)
	}
	panic(&ShapeError{Op: "dot", A: x.shape, B: y.shape})
}
