// Package grpc provides active-span lifecycle interceptors for gRPC.
//
// The server interceptor is a boundary filter: each unary RPC gets a fresh
// active-span stack, a server span activated on it for the duration of the
// handler, and a defensive stack clear before the goroutine returns to the
// server's pool. The client interceptor starts a child of the caller's
// active span around each outgoing unary call.
//
// Neither interceptor injects or extracts trace context from metadata;
// cross-process propagation is outside this module's scope.
//
// # gRPC Server
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(spanxgrpc.UnaryServerInterceptor()),
//	)
//
// # gRPC Client
//
//	conn, err := grpc.NewClient(target,
//	    grpc.WithUnaryInterceptor(spanxgrpc.UnaryClientInterceptor()),
//	)
package grpc
