package spanx

import "context"

// stackKeyType is a private type for context keys to avoid collisions.
type stackKeyType struct{}

var stackKey stackKeyType

// ContextWithStack returns a context carrying the given stack.
func ContextWithStack(ctx context.Context, s *Stack) context.Context {
	return context.WithValue(ctx, stackKey, s)
}

// StackFromContext returns the stack carried by ctx, or nil if there is none.
// A nil result is safe to use: every Stack operation degrades to
// "no active span" on a nil receiver.
func StackFromContext(ctx context.Context) *Stack {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(stackKey).(*Stack)
	return s
}

// EnsureStack returns ctx carrying a stack, creating and attaching a fresh
// one when ctx has none. The returned stack is never nil.
func EnsureStack(ctx context.Context) (context.Context, *Stack) {
	if s := StackFromContext(ctx); s != nil {
		return ctx, s
	}
	s := NewStack()
	return ContextWithStack(ctx, s), s
}
