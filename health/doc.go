// Package health provides liveness and readiness HTTP endpoints for the
// chain services. Liveness is a fixed payload; readiness optionally pings
// the service's downstream hop.
package health
