// Package infer provides first-order optimizers driven by the
// gradients the ad package computes. An objective is a scalar-valued
// function of a parameter tensor; each Step differentiates it once
// and moves the parameters downhill.
package infer

import (
	"github.com/mattjj/autodidact/ad"
	"github.com/mattjj/autodidact/tensor"
)

// Objective is a scalar-valued function of the parameters.
type Objective func(x any) any

// valueGrad evaluates the objective and its gradient at x.
func valueGrad(f Objective, x any) (ans, grad any, err error) {
	vjp, ans, err := ad.MakeVJP(ad.UnaryFunc(f), x)
	if err != nil {
		return nil, nil, err
	}
	grad, err = vjp(tensor.OnesLike(ans))
	if err != nil {
		return nil, nil, err
	}
	return ans, grad, nil
}

// GradientDescent takes plain steps against the gradient.
type GradientDescent struct {
	Rate  float64 // learning rate
	Decay float64 // rate decay per step
	rate  float64
}

func (opt *GradientDescent) setDefaults() {
	if opt.Rate == 0 {
		opt.Rate = 0.01
	}
	if opt.Decay == 0 {
		opt.Decay = 1
	}
	if opt.rate == 0 {
		opt.rate = opt.Rate
	}
}

// Step returns the updated parameters together with the objective
// value before the step.
func (opt *GradientDescent) Step(f Objective, x any) (any, any, error) {
	opt.setDefaults()
	ans, grad, err := valueGrad(f, x)
	if err != nil {
		return x, nil, err
	}
	x = tensor.Sub(x, tensor.Mul(opt.rate, grad))
	opt.rate *= opt.Decay
	return x, ans, nil
}

// Momentum accumulates a velocity across steps.
type Momentum struct {
	Rate  float64 // learning rate
	Decay float64 // rate decay per step
	Gamma float64 // momentum factor
	rate  float64
	v     any
}

func (opt *Momentum) setDefaults() {
	if opt.Rate == 0 {
		opt.Rate = 0.01
	}
	if opt.Decay == 0 {
		opt.Decay = 1
	}
	if opt.Gamma == 0 {
		opt.Gamma = 0.9
	}
	if opt.rate == 0 {
		opt.rate = opt.Rate
	}
}

// Step returns the updated parameters together with the objective
// value before the step.
func (opt *Momentum) Step(f Objective, x any) (any, any, error) {
	opt.setDefaults()
	ans, grad, err := valueGrad(f, x)
	if err != nil {
		return x, nil, err
	}
	if opt.v == nil {
		opt.v = tensor.ZerosLike(x)
	}
	opt.v = tensor.Add(
		tensor.Mul(opt.Gamma, opt.v),
		tensor.Mul(opt.rate, grad))
	x = tensor.Sub(x, opt.v)
	opt.rate *= opt.Decay
	return x, ans, nil
}
