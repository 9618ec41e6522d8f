// Package http provides active-span lifecycle middleware for HTTP servers.
//
// The middleware is a boundary filter: each request gets a fresh active-span
// stack, a server span activated on it for the duration of the handler, and
// a defensive stack clear before the goroutine returns to the server's pool.
// It does not inject or extract trace context from headers; cross-process
// propagation is outside this module's scope.
package http
