package http

import (
	"net/http"

	"github.com/arloliu/spanx"
)

// Option configures the middleware.
type Option func(*settings)

type settings struct {
	resolver *spanx.Resolver
	namer    spanx.SpanNamer
}

// WithResolver sets the resolver the middleware obtains its backend from.
// Defaults to the package-level default resolver.
func WithResolver(r *spanx.Resolver) Option {
	return func(s *settings) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithSpanNamer sets the namer applied to the operation name.
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

// Middleware returns middleware that manages the active span for each
// request. The request context is re-issued with a fresh stack carrying a
// started server span; handlers build child spans through it as usual.
//
// Usage:
//
//	import spanxhttp "github.com/arloliu/spanx/http"
//
//	http.Handle("/api", spanxhttp.Middleware("api.request")(myHandler))
func Middleware(operation string, opts ...Option) func(http.Handler) http.Handler {
	s := applyOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			stack := spanx.NewStack()
			ctx := spanx.ContextWithStack(r.Context(), stack)

			span := serverSpan(s, s.namer.Name(operation), r)
			act := stack.Activate(span)
			defer func() {
				act.Deactivate()
				_ = span.Finish()
				// Failsafe: the request goroutine goes back to the server
				// pool, so no activation may survive the handler.
				stack.Clear()
			}()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Handler wraps an http.Handler with the active-span middleware.
//
// Usage:
//
//	http.Handle("/api", spanxhttp.Handler(myHandler, "api.request"))
func Handler(handler http.Handler, operation string, opts ...Option) http.Handler {
	return Middleware(operation, opts...)(handler)
}

// serverSpan starts the per-request span directly on the resolved backend:
// the request is the root of its execution context, so there is no active
// span to inherit from.
func serverSpan(s settings, name string, r *http.Request) spanx.Span {
	tracer, err := s.resolver.Resolve()
	if err != nil {
		tracer = spanx.NoopTracer{}
	}

	return tracer.BuildSpan(name).
		WithTag("http.method", r.Method).
		WithTag("http.target", r.URL.Path).
		Start()
}
