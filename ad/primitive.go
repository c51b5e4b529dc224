package ad

// Primitive bundles a raw numeric function with recording dispatch.
// The pointer identity of a Primitive is stable and serves as the
// key of the VJP registry.
type Primitive struct {
	name string
	raw  RawFunc
}

// NewPrimitive wraps raw as a recording primitive. The name appears
// in diagnostics only.
func NewPrimitive(name string, raw RawFunc) *Primitive {
	return &Primitive{name: name, raw: raw}
}

func (p *Primitive) Name() string   { return p.name }
func (p *Primitive) String() string { return p.name }

// Call invokes the primitive on args.
func (p *Primitive) Call(args ...any) any {
	return p.CallKw(nil, args...)
}

// CallKw invokes the primitive with keyword options. With no boxed
// argument the raw function is called directly. Otherwise the call
// is recorded at the deepest trace among the boxed arguments: the
// boxes at that depth are replaced by their values, boxes of
// shallower traces are left in place, and the primitive re-invokes
// itself on the result. The recursion is what stacks nested tapes:
// an argument boxed at both an outer and an inner depth is recorded
// by both traces.
func (p *Primitive) CallKw(kw Kwargs, args ...any) any {
	top, topID := findTopBoxedArgs(args)
	if len(top) == 0 {
		return p.raw(args, kw)
	}

	argvals := make([]any, len(args))
	copy(argvals, args)
	parents := make([]*Node, len(top))
	argnums := make([]int, len(top))
	for i, ba := range top {
		argvals[ba.argnum] = ba.box.BoxValue()
		parents[i] = ba.box.BoxNode()
		argnums[i] = ba.argnum
	}

	ans := p.CallKw(kw, argvals...)
	node := &Node{
		parents: parents,
		recipe: recipe{
			prim:    p,
			out:     ans,
			args:    argvals,
			kwargs:  kw,
			argnums: argnums,
		},
	}
	return NewBox(ans, topID, node)
}

type boxedArg struct {
	argnum int
	box    Boxed
}

// findTopBoxedArgs scans args for boxes at the deepest trace and
// returns them in argument order together with that depth. Boxes of
// shallower traces are discarded from the result; they stay in the
// argument list and are picked up by the recursive call.
func findTopBoxedArgs(args []any) ([]boxedArg, int) {
	topID := -1
	var top []boxedArg
	for argnum, arg := range args {
		b, ok := arg.(Boxed)
		if !ok {
			continue
		}
		switch {
		case b.BoxTraceID() > topID:
			top = append(top[:0], boxedArg{argnum, b})
			topID = b.BoxTraceID()
		case b.BoxTraceID() == topID:
			top = append(top, boxedArg{argnum, b})
		}
	}
	return top, topID
}

// NotracePrimitive wraps operations that must not be differentiated:
// comparisons, shape queries, integer-valued functions. Every
// argument is unwrapped to its innermost raw value and the raw
// result is returned unboxed, at any nesting depth.
type NotracePrimitive struct {
	name string
	raw  RawFunc
}

func NewNotracePrimitive(name string, raw RawFunc) *NotracePrimitive {
	return &NotracePrimitive{name: name, raw: raw}
}

func (p *NotracePrimitive) Name() string   { return p.name }
func (p *NotracePrimitive) String() string { return p.name }

func (p *NotracePrimitive) Call(args ...any) any {
	return p.CallKw(nil, args...)
}

func (p *NotracePrimitive) CallKw(kw Kwargs, args ...any) any {
	argvals := make([]any, len(args))
	for i, arg := range args {
		argvals[i] = GetVal(arg)
	}
	return p.raw(argvals, kw)
}
