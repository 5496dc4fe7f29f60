// Package observe provides request-scoped observability for the service
// chain: a lifecycle-tracking HTTP middleware, correlation identifiers,
// structured JSON logging, and OpenTelemetry tracing and metrics wiring.
//
// It is a pure instrumentation library: no business logic, no transport
// beyond exporter setup. Services construct one Observer at startup and
// pass it into their handlers and middleware explicitly.
package observe
