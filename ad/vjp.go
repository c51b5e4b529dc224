package ad

// The VJP registry and the backward pass.

import (
	"sync"

	"github.com/pkg/errors"
)

// VJP computes the cotangent contribution of one positional
// argument. g is the incoming cotangent with the shape of ans, ans
// is the recorded forward output, and args and kw are the unboxed
// forward inputs. The returned value has the argument's shape.
type VJP func(g, ans any, args []any, kw Kwargs) any

var (
	vjpMu sync.Mutex
	vjps  = map[*Primitive]map[int]VJP{}
)

// DefVJP registers rules for consecutive argument positions
// 0, 1, 2, …. A nil rule documents that the argument is not
// differentiated; the backward pass reports MissingVJPError if it is
// ever requested.
func DefVJP(p *Primitive, rules ...VJP) {
	argnums := make([]int, len(rules))
	for i := range rules {
		argnums[i] = i
	}
	DefVJPArgnums(p, argnums, rules...)
}

// DefVJPArgnums registers rules at explicit argument positions.
// Registration is expected during initialization only.
func DefVJPArgnums(p *Primitive, argnums []int, rules ...VJP) {
	vjpMu.Lock()
	defer vjpMu.Unlock()
	m := vjps[p]
	if m == nil {
		m = map[int]VJP{}
		vjps[p] = m
	}
	for i, argnum := range argnums {
		m[argnum] = rules[i]
	}
}

// backwardPass walks the graph from end in reverse topological order
// and accumulates cotangents per parent. The cotangent left over
// from the final node, the root, is the cotangent of the traced
// input.
func backwardPass(g any, end *Node) (any, error) {
	outgrads := map[*Node]any{end: g}
	var outgrad any
	for _, node := range toposort(end) {
		outgrad = outgrads[node]
		delete(outgrads, node)
		r := &node.recipe
		for i, argnum := range r.argnums {
			parent := node.parents[i]
			rule := vjps[r.prim][argnum]
			if rule == nil {
				return nil, errors.WithStack(
					&MissingVJPError{Prim: r.prim, Argnum: argnum})
			}
			contribution := rule(outgrad, r.out, r.args, r.kwargs)
			outgrads[parent] = addOutgrads(outgrads[parent], contribution)
		}
	}
	return outgrad, nil
}

// addOutgrads merges a new contribution into a parent's accumulated
// cotangent. The backend's add is a recording primitive, so
// accumulation itself stays differentiable and gradients of
// gradients see it.
func addOutgrads(prev, g any) any {
	if prev == nil {
		return g
	}
	return activeBackend().Add(prev, g)
}

// toposort returns the nodes reachable from end, each after all of
// its consumers. Two phases of child counting; shared parents are
// emitted once their last consumer has been.
func toposort(end *Node) []*Node {
	counts := map[*Node]int{}
	stack := []*Node{end}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if counts[node] > 0 {
			counts[node]++
			continue
		}
		counts[node] = 1
		stack = append(stack, node.parents...)
	}

	order := make([]*Node, 0, len(counts))
	ready := []*Node{end}
	for len(ready) > 0 {
		node := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		order = append(order, node)
		for _, parent := range node.parents {
			if counts[parent] == 1 {
				ready = append(ready, parent)
			} else {
				counts[parent]--
			}
		}
	}
	return order
}
