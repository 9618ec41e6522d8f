package spanx

// SpanNamer defines how operation names are transformed into span names.
type SpanNamer interface {
	Name(operation string) string
}

// DefaultNamer returns operation names unchanged.
type DefaultNamer struct{}

// Name returns the operation name as is.
func (DefaultNamer) Name(operation string) string {
	return operation
}

// NameHTTP returns a span name for an HTTP request: "METHOD /route".
// Example: "GET /users/{id}"
func NameHTTP(method, route string) string {
	return method + " " + route
}

// NameRPC returns a span name for an RPC call: "Service/Method".
// Example: "Greeter/SayHello"
func NameRPC(service, method string) string {
	return service + "/" + method
}
