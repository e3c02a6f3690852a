// Package http implements the diagnostics HTTP endpoint of the link daemon.
//
// It serves GET /healthz with a JSON snapshot of the daemon and GET /metrics
// with the Prometheus exposition. Every request is tagged with a trace ID and
// logged; the metrics response is gzip-compressed for clients that accept it.
package http
