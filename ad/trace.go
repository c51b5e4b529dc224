package ad

// trace runs fun with x boxed at a freshly acquired depth and
// returns the end value together with the terminal graph node. The
// node is nil when the output does not depend on the traced input at
// this depth. The depth is released on every exit path, including
// panics out of fun.
func trace(start *Node, fun UnaryFunc, x any) (any, *Node) {
	stk := currentStack()
	id := stk.enter()
	defer stk.leave()

	startBox := NewBox(x, id, start)
	end := fun(startBox)
	if b, ok := end.(Boxed); ok && b.BoxTraceID() == id {
		return b.BoxValue(), b.BoxNode()
	}
	// The output is independent of the input at this depth. It is
	// returned untouched: a box of an enclosing trace must stay
	// boxed so the enclosing tape still sees it.
	return end, nil
}
