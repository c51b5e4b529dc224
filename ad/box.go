package ad

// Boxes carry graph identity through forward execution.

import (
	"fmt"
	"reflect"
	"sync"
)

// Boxed is implemented by every box type. A box pairs a raw value
// with the depth of the trace that produced it and the graph node
// recording its provenance.
type Boxed interface {
	BoxValue() any
	BoxTraceID() int
	BoxNode() *Node
}

// Box is the standard box type. Backends with no special needs
// register it via RegisterStandardBox.
type Box struct {
	value   any
	traceID int
	node    *Node
}

func (b *Box) BoxValue() any   { return b.value }
func (b *Box) BoxTraceID() int { return b.traceID }
func (b *Box) BoxNode() *Node  { return b.node }

func (b *Box) String() string {
	return fmt.Sprintf("box@%d(%v)", b.traceID, b.value)
}

// BoxConstructor builds a box of a registered type.
type BoxConstructor func(value any, traceID int, node *Node) Boxed

// boxOf maps raw value types to box constructors. Each registration
// also installs a self-entry for the box type, so boxes of boxes
// route to the same constructor; nested differentiation depends on
// this.
var (
	boxMu sync.Mutex
	boxOf = map[reflect.Type]BoxConstructor{}
)

// RegisterBox installs ctor for values of rawType and for boxes of
// boxType. Registration is expected during initialization only; the
// table is read without locking while tracing.
func RegisterBox(rawType, boxType reflect.Type, ctor BoxConstructor) {
	boxMu.Lock()
	defer boxMu.Unlock()
	boxOf[rawType] = ctor
	boxOf[boxType] = ctor
}

// RegisterStandardBox installs the standard Box for values of
// rawType.
func RegisterStandardBox(rawType reflect.Type) {
	RegisterBox(rawType, reflect.TypeOf((*Box)(nil)),
		func(value any, traceID int, node *Node) Boxed {
			return &Box{value: value, traceID: traceID, node: node}
		})
}

// NewBox wraps value for the trace at depth traceID. It panics with
// *UnsupportedTypeError when value's type has no registered box; the
// panic is converted back to an error at the MakeVJP boundary.
func NewBox(value any, traceID int, node *Node) Boxed {
	ctor, ok := boxOf[reflect.TypeOf(value)]
	if !ok {
		panic(&UnsupportedTypeError{Type: reflect.TypeOf(value)})
	}
	return ctor(value, traceID, node)
}

// IsBox reports whether x is a box. A single interface assertion,
// constant time.
func IsBox(x any) bool {
	_, ok := x.(Boxed)
	return ok
}

// GetVal unwraps x until a non-box is reached and returns the
// innermost raw value. Iterative, so deep nesting does not grow the
// stack.
func GetVal(x any) any {
	for {
		b, ok := x.(Boxed)
		if !ok {
			return x
		}
		x = b.BoxValue()
	}
}
