package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/arloliu/spanx"
)

// Option configures the interceptors.
type Option func(*settings)

type settings struct {
	resolver *spanx.Resolver
	namer    spanx.SpanNamer
}

// WithResolver sets the resolver the interceptor obtains its backend from.
// Defaults to the package-level default resolver.
func WithResolver(r *spanx.Resolver) Option {
	return func(s *settings) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithSpanNamer sets the namer applied to the full method name.
func WithSpanNamer(n spanx.SpanNamer) Option {
	return func(s *settings) {
		if n != nil {
			s.namer = n
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{resolver: spanx.Default(), namer: spanx.DefaultNamer{}}
	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// UnaryServerInterceptor returns an interceptor that manages the active span
// for each unary RPC. The handler context is re-issued with a fresh stack
// carrying a started server span named after the full method; handlers build
// child spans through it as usual.
func UnaryServerInterceptor(opts ...Option) grpc.UnaryServerInterceptor {
	s := applyOptions(opts)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		stack := spanx.NewStack()
		ctx = spanx.ContextWithStack(ctx, stack)

		span := serverSpan(s, info.FullMethod)
		act := stack.Activate(span)
		defer func() {
			act.Deactivate()
			_ = span.Finish()
			// Failsafe: the RPC goroutine goes back to the server pool, so
			// no activation may survive the handler.
			stack.Clear()
		}()

		resp, err := handler(ctx, req)
		if err != nil {
			span.SetTag("error", true)
		}

		return resp, err
	}
}

// UnaryClientInterceptor returns an interceptor that traces each outgoing
// unary call as a child of the caller's active span. Calls made without an
// active span are passed through untraced.
func UnaryClientInterceptor(opts ...Option) grpc.UnaryClientInterceptor {
	s := applyOptions(opts)

	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
		tracer := spanx.NewActiveTracer(s.resolver, spanx.StackFromContext(ctx),
			spanx.WithSpanNamer(s.namer))
		span := tracer.BuildSpan(method).
			WithTag("rpc.system", "grpc").
			Start()
		defer func() { _ = span.Finish() }()

		err := invoker(ctx, method, req, reply, cc, callOpts...)
		if err != nil {
			span.SetTag("error", true)
		}

		return err
	}
}

// serverSpan starts the per-RPC span directly on the resolved backend: the
// RPC is the root of its execution context, so there is no active span to
// inherit from.
func serverSpan(s settings, fullMethod string) spanx.Span {
	tracer, err := s.resolver.Resolve()
	if err != nil {
		tracer = spanx.NoopTracer{}
	}

	return tracer.BuildSpan(s.namer.Name(fullMethod)).
		WithTag("rpc.system", "grpc").
		WithTag("rpc.method", fullMethod).
		Start()
}
