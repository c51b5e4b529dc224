package ad

// Node is a vertex of the recorded computation graph. parents are
// the nodes of the boxed arguments at the node's own depth, and the
// recipe holds everything the backward pass needs to dispatch VJP
// rules. len(parents) == len(recipe.argnums) always.
type Node struct {
	parents []*Node
	recipe  recipe
}

// recipe records one primitive invocation: the primitive, its
// forward output, the unboxed positional arguments, the keyword
// options, and the positions at which boxed arguments occurred.
type recipe struct {
	prim    *Primitive
	out     any
	args    []any
	kwargs  Kwargs
	argnums []int
}

// NewRoot returns a fresh root node marking a differentiation input.
// A root has no parents and a no-op recipe; reverse traversal
// terminates on it. Roots are never shared across MakeVJP calls.
func NewRoot() *Node {
	return &Node{}
}
