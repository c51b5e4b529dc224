package tensor

// Testing the dense kernels directly, below the primitive layer.

import (
	"math"
	"reflect"
	"testing"
)

func TestBroadcastShape(t *testing.T) {
	for _, c := range []struct {
		a, b, want []int
	}{
		{[]int{3}, []int{3}, []int{3}},
		{[]int{2, 3}, []int{3}, []int{2, 3}},
		{[]int{3}, []int{2, 3}, []int{2, 3}},
		{[]int{3, 1}, []int{3, 4}, []int{3, 4}},
		{[]int{1}, []int{5}, []int{5}},
		{[]int{2, 1, 4}, []int{3, 1}, []int{2, 3, 4}},
	} {
		got := broadcastShape("test", c.a, c.b)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%v x %v: got %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestBroadcastShapeMismatch(t *testing.T) {
	defer func() {
		if _, ok := recover().(*ShapeError); !ok {
			t.Error("want ShapeError")
		}
	}()
	broadcastShape("test", []int{3}, []int{4})
}

func TestBinaryKernels(t *testing.T) {
	for _, c := range []struct {
		s    string
		a, b any
		want any
	}{
		{"scalar+scalar", 1., 2., 3.},
		{"scalar+dense", 1., FromSlice([]float64{1., 2.}),
			FromSlice([]float64{2., 3.})},
		{"dense+scalar", FromSlice([]float64{1., 2.}), 10.,
			FromSlice([]float64{11., 12.})},
		{"same shape", FromSlice([]float64{1., 2.}), FromSlice([]float64{3., 4.}),
			FromSlice([]float64{4., 6.})},
		{"row broadcast",
			NewDense([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6}),
			FromSlice([]float64{10., 20., 30.}),
			NewDense([]int{2, 3}, []float64{11, 22, 33, 14, 25, 36})},
		{"column broadcast",
			NewDense([]int{2, 1}, []float64{100, 200}),
			NewDense([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6}),
			NewDense([]int{2, 3}, []float64{101, 102, 103, 204, 205, 206})},
	} {
		got := kAdd.apply(c.a, c.b)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s: got %v, want %v", c.s, got, c.want)
		}
	}

	if got := kMul.apply(FromSlice([]float64{2., 3.}), FromSlice([]float64{4., 5.})); !reflect.DeepEqual(got, FromSlice([]float64{8., 15.})) {
		t.Errorf("mul: got %v", got)
	}
	if got := kDiv.apply(9., FromSlice([]float64{3., 9.})); !reflect.DeepEqual(got, FromSlice([]float64{3., 1.})) {
		t.Errorf("div: got %v", got)
	}
}

func TestSumKernels(t *testing.T) {
	x := NewDense([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	if got := sumAll(x); got != 21. {
		t.Errorf("sum all: got %v", got)
	}
	if got := sumAxisKernel(x, 0, false); !reflect.DeepEqual(got, FromSlice([]float64{5., 7., 9.})) {
		t.Errorf("sum axis 0: got %v", got)
	}
	if got := sumAxisKernel(x, 1, false); !reflect.DeepEqual(got, FromSlice([]float64{6., 15.})) {
		t.Errorf("sum axis 1: got %v", got)
	}
	if got := sumAxisKernel(x, 1, true); !reflect.DeepEqual(got, NewDense([]int{2, 1}, []float64{6., 15.})) {
		t.Errorf("sum axis 1 keepdims: got %v", got)
	}
	if got := sumAxisKernel(FromSlice([]float64{1., 2.}), 0, false); got != 3. {
		t.Errorf("sum to scalar: got %v", got)
	}
}

func TestBroadcastToKernel(t *testing.T) {
	if got := broadcastToKernel(2., []int{3}); !reflect.DeepEqual(got, Full(2., 3)) {
		t.Errorf("scalar: got %v", got)
	}
	got := broadcastToKernel(FromSlice([]float64{1., 2., 3.}), []int{2, 3})
	want := NewDense([]int{2, 3}, []float64{1, 2, 3, 1, 2, 3})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("vector: got %v", got)
	}
}

func TestReshapeTransposeKernels(t *testing.T) {
	x := NewDense([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	if got := reshapeKernel(x, []int{3, 2}); !reflect.DeepEqual(got, NewDense([]int{3, 2}, []float64{1, 2, 3, 4, 5, 6})) {
		t.Errorf("reshape: got %v", got)
	}
	if got := reshapeKernel(5., []int{1, 1}); !reflect.DeepEqual(got, NewDense([]int{1, 1}, []float64{5.})) {
		t.Errorf("reshape scalar: got %v", got)
	}
	if got := transposeKernel(x); !reflect.DeepEqual(got, NewDense([]int{3, 2}, []float64{1, 4, 2, 5, 3, 6})) {
		t.Errorf("transpose: got %v", got)
	}
}

func TestDotKernel(t *testing.T) {
	a := FromSlice([]float64{1., 2., 3.})
	b := FromSlice([]float64{4., 5., 6.})
	if got := dotKernel(a, b); got != 32. {
		t.Errorf("vec.vec: got %v", got)
	}
	A := NewDense([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	if got := dotKernel(A, a); !reflect.DeepEqual(got, FromSlice([]float64{14., 32.})) {
		t.Errorf("mat.vec: got %v", got)
	}
	v2 := FromSlice([]float64{1., 1.})
	if got := dotKernel(v2, A); !reflect.DeepEqual(got, FromSlice([]float64{5., 7., 9.})) {
		t.Errorf("vec.mat: got %v", got)
	}
	B := NewDense([]int{3, 2}, []float64{1, 0, 0, 1, 1, 1})
	got := dotKernel(A, B)
	want := NewDense([]int{2, 2}, []float64{4, 5, 10, 11})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mat.mat: got %v, want %v", got, want)
	}
}

func TestLinspace(t *testing.T) {
	x := Linspace(0., 1., 5)
	want := []float64{0., 0.25, 0.5, 0.75, 1.}
	for i, v := range x.Data() {
		if math.Abs(v-want[i]) > 1e-12 {
			t.Errorf("linspace: got %v", x)
			break
		}
	}
}

func TestAt(t *testing.T) {
	x := NewDense([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	if x.At(1, 2) != 6. || x.At(0, 0) != 1. {
		t.Error("At indexing")
	}
}
