package ad

// The trace stack assigns a nesting depth to each active
// differentiation. The depth is not a session id: two sibling
// differentiations run at the same depth, serialized by control
// flow.

import (
	"sync"

	"github.com/modern-go/gls"
)

// traceStack is a depth counter with scoped acquisition.
type traceStack struct {
	top int
}

func newTraceStack() *traceStack {
	return &traceStack{top: -1}
}

// enter acquires the next depth. The first trace runs at depth 0.
func (s *traceStack) enter() int {
	s.top++
	return s.top
}

// leave releases the innermost depth. Callers defer it immediately
// after enter so the depth is released on every exit path.
func (s *traceStack) leave() {
	s.top--
}

// By default every trace shares one process-wide stack. Under
// MTSafeOn each goroutine gets its own, held in a sync.Map keyed by
// goroutine id so the steady-state lookup takes no lock.
var (
	mtSafe       bool
	oneStack     = newTraceStack()
	perGoroutine sync.Map // int64 → *traceStack
)

// MTSafeOn makes differentiation safe across goroutines at the
// expense of a stack lookup per trace entry. There is no MTSafeOff:
// goroutines may already be tracing on their own stacks, which a
// switch back to the shared stack would tear mid-trace.
func MTSafeOn() {
	mtSafe = true
}

func currentStack() *traceStack {
	if !mtSafe {
		return oneStack
	}
	id := gls.GoID()
	if s, ok := perGoroutine.Load(id); ok {
		return s.(*traceStack)
	}
	s, _ := perGoroutine.LoadOrStore(id, newTraceStack())
	return s.(*traceStack)
}

// DropStack forgets the calling goroutine's trace stack. Goroutine
// ids are reused by the runtime, so a goroutine that differentiated
// under MTSafeOn should drop its stack before exiting.
func DropStack() {
	perGoroutine.Delete(gls.GoID())
}
