package ad

import (
	"runtime"
)

// VJPFunc maps a cotangent of the traced output to the cotangent of
// the traced input.
type VJPFunc func(g any) (any, error)

// MakeVJP traces fun at x and returns the VJP closure together with
// the forward value. When the output does not depend on x, the
// closure returns zeros of x's shape and never invokes a rule — the
// derivative of a constant. The recorded graph lives as long as the
// closure.
func MakeVJP(fun UnaryFunc, x any) (vjp VJPFunc, ans any, err error) {
	defer recoverToError(&err)

	start := NewRoot()
	endValue, endNode := trace(start, fun, x)
	if endNode == nil {
		vjp = func(any) (any, error) {
			return activeBackend().ZerosLike(GetVal(x)), nil
		}
	} else {
		vjp = func(g any) (out any, err error) {
			defer recoverToError(&err)
			return backwardPass(g, endNode)
		}
	}
	return vjp, endValue, nil
}

// Grad returns the function computing the gradient of fun with
// respect to the argument at position argnum: the VJP of fun against
// ones of the output's shape, which for scalar-valued fun is the
// gradient. The result composes: Grad(Grad(f, 0), 0) is the second
// derivative, to any depth. Errors inside a nested Grad travel as
// panics and are converted back at the outermost MakeVJP boundary.
func Grad(fun Func, argnum int) Func {
	return func(args ...any) any {
		unary := func(x any) any {
			sub := make([]any, len(args))
			copy(sub, args)
			sub[argnum] = x
			return fun(sub...)
		}
		vjp, ans, err := MakeVJP(unary, args[argnum])
		if err != nil {
			panic(err)
		}
		g, err := vjp(activeBackend().OnesLike(GetVal(ans)))
		if err != nil {
			panic(err)
		}
		return g
	}
}

// recoverToError converts panics carrying an error back into a
// returned error at the API boundary. Runtime errors and non-error
// panics are re-raised; the deferred trace-stack release has already
// run by the time this executes.
func recoverToError(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(runtime.Error); ok {
		panic(r)
	}
	if e, ok := r.(error); ok {
		*err = e
		return
	}
	panic(r)
}
