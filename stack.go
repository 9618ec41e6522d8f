package spanx

import "sync/atomic"

// Stack tracks the active span for one execution context.
//
// A Stack is an explicit handle: create one per logical execution context
// (request, task, message) and pass it along, typically embedded in a
// context.Context via [ContextWithStack]. Stacks are independent of each
// other; propagating a span to another goroutine is always an explicit
// capture-then-restore (see the concurrent subpackage), never shared storage.
//
// All methods are nil-receiver safe and never panic: tracing bookkeeping must
// not break application code. On a nil Stack every operation degrades to
// "no active span".
type Stack struct {
	top atomic.Pointer[Activation]
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

// Activation is the handle returned by [Stack.Activate]. It releases exactly
// one activation; invoking it more than once is harmless.
//
// An Activation links to the record that was top when it was created. The
// chain is never rewritten to repair broken links; finished records are
// pruned lazily when the top of the stack unwinds past them.
type Activation struct {
	span   Span
	parent *Activation
	stack  *Stack
	closed atomic.Bool
}

// Span returns the span this activation installed.
func (a *Activation) Span() Span {
	if a == nil {
		return nil
	}
	return a.span
}

// Peek returns the currently active span, or nil if there is none.
// O(1) and non-blocking.
func (s *Stack) Peek() Span {
	if s == nil {
		return nil
	}
	if top := s.top.Load(); top != nil {
		return top.span
	}
	return nil
}

// Activate makes span the active span for this stack and returns the handle
// that releases the activation. A nil span activates the no-op span, so the
// returned handle is always usable.
func (s *Stack) Activate(span Span) *Activation {
	if span == nil {
		span = NoopSpan()
	}
	rec := &Activation{span: span, stack: s}
	if s == nil {
		// Inert handle: Deactivate only flips the closed flag.
		return rec
	}
	for {
		top := s.top.Load()
		rec.parent = top
		if s.top.CompareAndSwap(top, rec) {
			return rec
		}
	}
}

// Deactivate releases the activation a. Equivalent to a.Deactivate.
func (s *Stack) Deactivate(a *Activation) { a.Deactivate() }

// Deactivate releases this activation. Idempotent.
//
// If this record is not the current top, only its closed flag is set: a
// late-finishing ancestor must not disturb a still-active nested scope. If it
// is the top, the stack unwinds past it and past any run of already-closed
// ancestors, installing the first unclosed ancestor (or empty) as the new
// top. Amortized O(1) for properly nested use.
func (a *Activation) Deactivate() {
	if a == nil || !a.closed.CompareAndSwap(false, true) {
		return
	}
	s := a.stack
	if s == nil {
		return
	}
	if s.top.Load() != a {
		return
	}
	next := a.parent
	for next != nil && next.closed.Load() {
		next = next.parent
	}
	// A lost CAS means another activation took the top in the meantime;
	// leave it untouched, the closed flag already did its part.
	s.top.CompareAndSwap(a, next)
}

// Clear drops every record from the stack and reports whether any were
// present. Boundary filters call this before handing a worker back to a pool
// so an unclosed span cannot leak into unrelated work.
func (s *Stack) Clear() bool {
	if s == nil {
		return false
	}
	return s.top.Swap(nil) != nil
}
