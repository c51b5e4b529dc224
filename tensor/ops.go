package tensor

// The demonstrative primitive library. Every differentiable
// operation is an ad.Primitive; its VJP rules are written in terms
// of primitives as well, which is what makes gradients of gradients
// work. Shape queries and the like are notrace primitives: they
// unwrap boxes and never record.

import (
	"math"

	"github.com/mattjj/autodidact/ad"
)

var (
	addPrim = ad.NewPrimitive("add", func(args []any, _ ad.Kwargs) any {
		return kAdd.apply(args[0], args[1])
	})
	subPrim = ad.NewPrimitive("sub", func(args []any, _ ad.Kwargs) any {
		return kSub.apply(args[0], args[1])
	})
	mulPrim = ad.NewPrimitive("mul", func(args []any, _ ad.Kwargs) any {
		return kMul.apply(args[0], args[1])
	})
	divPrim = ad.NewPrimitive("div", func(args []any, _ ad.Kwargs) any {
		return kDiv.apply(args[0], args[1])
	})
	powPrim = ad.NewPrimitive("pow", func(args []any, _ ad.Kwargs) any {
		return kPow.apply(args[0], args[1])
	})
	negPrim = ad.NewPrimitive("neg", func(args []any, _ ad.Kwargs) any {
		return mapUnary("neg", args[0], func(x float64) float64 { return -x })
	})
	expPrim = ad.NewPrimitive("exp", func(args []any, _ ad.Kwargs) any {
		return mapUnary("exp", args[0], math.Exp)
	})
	logPrim = ad.NewPrimitive("log", func(args []any, _ ad.Kwargs) any {
		return mapUnary("log", args[0], math.Log)
	})
	tanhPrim = ad.NewPrimitive("tanh", func(args []any, _ ad.Kwargs) any {
		return mapUnary("tanh", args[0], math.Tanh)
	})
	sinhPrim = ad.NewPrimitive("sinh", func(args []any, _ ad.Kwargs) any {
		return mapUnary("sinh", args[0], math.Sinh)
	})
	coshPrim = ad.NewPrimitive("cosh", func(args []any, _ ad.Kwargs) any {
		return mapUnary("cosh", args[0], math.Cosh)
	})
	sumPrim = ad.NewPrimitive("sum", func(args []any, _ ad.Kwargs) any {
		return sumAll(args[0])
	})
	sumAxisPrim = ad.NewPrimitive("sum_axis", func(args []any, kw ad.Kwargs) any {
		return sumAxisKernel(args[0], kw["axis"].(int), kw["keepdims"].(bool))
	})
	reshapePrim = ad.NewPrimitive("reshape", func(args []any, kw ad.Kwargs) any {
		return reshapeKernel(args[0], kw["shape"].([]int))
	})
	broadcastToPrim = ad.NewPrimitive("broadcast_to", func(args []any, kw ad.Kwargs) any {
		return broadcastToKernel(args[0], kw["shape"].([]int))
	})
	transposePrim = ad.NewPrimitive("transpose", func(args []any, _ ad.Kwargs) any {
		return transposeKernel(args[0])
	})
	dotPrim = ad.NewPrimitive("dot", func(args []any, _ ad.Kwargs) any {
		return dotKernel(args[0], args[1])
	})
)

// Non-differentiable primitives: raw results at any nesting depth.
var (
	shapePrim = ad.NewNotracePrimitive("shape", func(args []any, _ ad.Kwargs) any {
		return shapeOf(args[0])
	})
	ndimPrim = ad.NewNotracePrimitive("ndim", func(args []any, _ ad.Kwargs) any {
		return ndimOf(args[0])
	})
	zerosLikePrim = ad.NewNotracePrimitive("zeros_like", func(args []any, _ ad.Kwargs) any {
		return zerosLike(args[0])
	})
	onesLikePrim = ad.NewNotracePrimitive("ones_like", func(args []any, _ ad.Kwargs) any {
		return onesLike(args[0])
	})
)

// Add returns a + b with broadcasting.
func Add(a, b any) any { return addPrim.Call(a, b) }

// Sub returns a - b with broadcasting.
func Sub(a, b any) any { return subPrim.Call(a, b) }

// Mul returns the elementwise product with broadcasting.
func Mul(a, b any) any { return mulPrim.Call(a, b) }

// Div returns the elementwise quotient with broadcasting.
func Div(a, b any) any { return divPrim.Call(a, b) }

// Pow returns a raised to b elementwise with broadcasting.
func Pow(a, b any) any { return powPrim.Call(a, b) }

// Neg returns -x.
func Neg(x any) any { return negPrim.Call(x) }

// Exp returns e**x elementwise.
func Exp(x any) any { return expPrim.Call(x) }

// Log returns the natural logarithm elementwise.
func Log(x any) any { return logPrim.Call(x) }

// Tanh returns the hyperbolic tangent elementwise.
func Tanh(x any) any { return tanhPrim.Call(x) }

// Sinh returns the hyperbolic sine elementwise.
func Sinh(x any) any { return sinhPrim.Call(x) }

// Cosh returns the hyperbolic cosine elementwise.
func Cosh(x any) any { return coshPrim.Call(x) }

// Sum reduces x to a scalar.
func Sum(x any) any { return sumPrim.Call(x) }

// SumAxis reduces one axis of x. With keepdims the reduced axis
// stays as size one.
func SumAxis(x any, axis int, keepdims bool) any {
	return sumAxisPrim.CallKw(ad.Kwargs{"axis": axis, "keepdims": keepdims}, x)
}

// Reshape returns x with the given shape; an empty shape yields a
// scalar.
func Reshape(x any, shape ...int) any {
	return reshapePrim.CallKw(ad.Kwargs{"shape": shape}, x)
}

// BroadcastTo stretches x to the given shape.
func BroadcastTo(x any, shape ...int) any {
	return broadcastToPrim.CallKw(ad.Kwargs{"shape": shape}, x)
}

// Transpose swaps the axes of a matrix; scalars and vectors pass
// through.
func Transpose(x any) any { return transposePrim.Call(x) }

// Dot is the inner/matrix product for operands of up to two
// dimensions.
func Dot(a, b any) any { return dotPrim.Call(a, b) }

// ShapeOf returns the dimensions of x, unwrapping boxes.
func ShapeOf(x any) []int { return shapePrim.Call(x).([]int) }

// NdimOf returns the number of dimensions of x, unwrapping boxes.
func NdimOf(x any) int { return ndimPrim.Call(x).(int) }

// ZerosLike returns raw zeros with x's shape.
func ZerosLike(x any) any { return zerosLikePrim.Call(x) }

// OnesLike returns raw ones with x's shape.
func OnesLike(x any) any { return onesLikePrim.Call(x) }

// unbroadcast sums g along the dimensions the forward pass
// broadcast, so the cotangent comes out with target's exact shape.
func unbroadcast(target, g any) any {
	for NdimOf(g) > NdimOf(target) {
		g = SumAxis(g, 0, false)
	}
	for axis, n := range ShapeOf(target) {
		if n == 1 && ShapeOf(g)[axis] != 1 {
			g = SumAxis(g, axis, true)
		}
	}
	return g
}

// keepShape is target's shape with axis collapsed to size one.
func keepShape(shape []int, axis int) []int {
	kept := append([]int(nil), shape...)
	kept[axis] = 1
	return kept
}

func init() {
	ad.DefVJP(addPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any { return unbroadcast(args[0], g) },
		func(g, _ any, args []any, _ ad.Kwargs) any { return unbroadcast(args[1], g) })
	ad.DefVJP(subPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any { return unbroadcast(args[0], g) },
		func(g, _ any, args []any, _ ad.Kwargs) any { return unbroadcast(args[1], Neg(g)) })
	ad.DefVJP(mulPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any { return unbroadcast(args[0], Mul(args[1], g)) },
		func(g, _ any, args []any, _ ad.Kwargs) any { return unbroadcast(args[1], Mul(args[0], g)) })
	ad.DefVJP(divPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any { return unbroadcast(args[0], Div(g, args[1])) },
		func(g, _ any, args []any, _ ad.Kwargs) any {
			return unbroadcast(args[1], Neg(Div(Mul(g, args[0]), Mul(args[1], args[1]))))
		})
	// The rule for the base assumes it is nonzero where the exponent
	// is below one; the rule for the exponent assumes a positive
	// base.
	ad.DefVJP(powPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any {
			return unbroadcast(args[0],
				Mul(g, Mul(args[1], Pow(args[0], Sub(args[1], 1.)))))
		},
		func(g, _ any, args []any, _ ad.Kwargs) any {
			return unbroadcast(args[1],
				Mul(g, Mul(Log(args[0]), Pow(args[0], args[1]))))
		})
	ad.DefVJP(negPrim,
		func(g, _ any, _ []any, _ ad.Kwargs) any { return Neg(g) })
	ad.DefVJP(expPrim,
		func(g, ans any, _ []any, _ ad.Kwargs) any { return Mul(ans, g) })
	ad.DefVJP(logPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any { return Div(g, args[0]) })
	ad.DefVJP(tanhPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any {
			c := Cosh(args[0])
			return Div(g, Mul(c, c))
		})
	ad.DefVJP(sinhPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any { return Mul(g, Cosh(args[0])) })
	ad.DefVJP(coshPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any { return Mul(g, Sinh(args[0])) })
	ad.DefVJP(sumPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any {
			return BroadcastTo(g, ShapeOf(args[0])...)
		})
	ad.DefVJP(sumAxisPrim,
		func(g, _ any, args []any, kw ad.Kwargs) any {
			shape := ShapeOf(args[0])
			if !kw["keepdims"].(bool) {
				g = Reshape(g, keepShape(shape, kw["axis"].(int))...)
			}
			return BroadcastTo(g, shape...)
		})
	ad.DefVJP(reshapePrim,
		func(g, _ any, args []any, _ ad.Kwargs) any {
			return Reshape(g, ShapeOf(args[0])...)
		})
	ad.DefVJP(broadcastToPrim,
		func(g, _ any, args []any, _ ad.Kwargs) any { return unbroadcast(args[0], g) })
	ad.DefVJP(transposePrim,
		func(g, _ any, _ []any, _ ad.Kwargs) any { return Transpose(g) })
	ad.DefVJP(dotPrim, dotVJP0, dotVJP1)
}

// dotVJP0 is the cotangent of the left operand of Dot.
func dotVJP0(g, _ any, args []any, _ ad.Kwargs) any {
	lhs, rhs := args[0], args[1]
	nl, nr := NdimOf(lhs), NdimOf(rhs)
	switch {
	case nl == 0:
		return Sum(Mul(rhs, g))
	case nl == 1 && nr == 1:
		return Mul(g, rhs)
	case nl == 2 && nr == 1:
		return Mul(Reshape(g, ShapeOf(g)[0], 1), rhs)
	case nl == 1 && nr == 2:
		return Dot(rhs, g)
	default:
		return Dot(g, Transpose(rhs))
	}
}

// dotVJP1 is the cotangent of the right operand of Dot.
func dotVJP1(g, _ any, args []any, _ ad.Kwargs) any {
	lhs, rhs := args[0], args[1]
	nl, nr := NdimOf(lhs), NdimOf(rhs)
	switch {
	case nr == 0:
		return Sum(Mul(lhs, g))
	case nl == 1 && nr == 1:
		return Mul(g, lhs)
	case nl == 2 && nr == 1:
		return Dot(g, lhs)
	case nl == 1 && nr == 2:
		return Mul(Reshape(lhs, ShapeOf(lhs)[0], 1), g)
	default:
		return Dot(Transpose(lhs), g)
	}
}
