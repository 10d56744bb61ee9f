// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package metrics defines the Prometheus gauges and counters the CLI's
// serve subcommand exposes, grounded on
// fxnlabs-function-node/internal/metrics.go's promauto-based style.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kjhaus/memtrack/diag"
)

var (
	// LiveMemoryObjects is the number of MemoryObject records
	// currently tracked.
	LiveMemoryObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "memtrack_live_memory_objects",
		Help: "Number of memory objects currently tracked.",
	})

	// LiveObjects is the number of Object records currently tracked.
	LiveObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "memtrack_live_objects",
		Help: "Number of objects currently tracked.",
	})

	// InFlightCommandBuffers is the number of command buffers whose
	// last submission has not yet retired.
	InFlightCommandBuffers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "memtrack_inflight_command_buffers",
		Help: "Number of command buffers currently in flight.",
	})

	// DiagnosticsEmitted counts diagnostics emitted per code. It is a
	// gauge rather than a counter because its value is read back from
	// diag.Sink's own running total rather than incremented in place.
	DiagnosticsEmitted = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "memtrack_diagnostics_emitted_total",
		Help: "Total number of diagnostics emitted, by code.",
	}, []string{"code"})
)

// Tracker is the subset of *track.Tracker the collector polls. It is
// an interface so this package does not need to import track.
type Tracker interface {
	LiveMemoryCount() int
	LiveObjectCount() int
	InFlightCommandBufferCount() int
	DiagnosticCount(code diag.Code) int
}

// AllCodes lists every diagnostic code the validator can emit, per
// spec.md §4.7's table, so the collector can refresh every counter
// series even ones that have never fired.
var AllCodes = []diag.Code{
	diag.InvalidMemObj,
	diag.InvalidCB,
	diag.InvalidObject,
	diag.RebindObject,
	diag.MissingMemBindings,
	diag.MemoryBindingError,
	diag.MemObjClearEmptyBindings,
	diag.FreedMemRef,
	diag.MemoryLeak,
	diag.InvalidFenceState,
	diag.ResetCBWhileInFlight,
	diag.InternalError,
}

// Refresh sets every gauge/counter from t's current state. The CLI's
// serve subcommand calls this on a ticker.
func Refresh(t Tracker) {
	LiveMemoryObjects.Set(float64(t.LiveMemoryCount()))
	LiveObjects.Set(float64(t.LiveObjectCount()))
	InFlightCommandBuffers.Set(float64(t.InFlightCommandBufferCount()))
	for _, code := range AllCodes {
		DiagnosticsEmitted.WithLabelValues(string(code)).Set(float64(t.DiagnosticCount(code)))
	}
}
