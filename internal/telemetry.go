package internal

import (
	"context"
	"sync"
)

// telemetry.go
// Lightweight telemetry hook layer used by the validation orchestrator.
// Callers may register a real metrics emitter (or a test stub) via
// RegisterTelemetryEmitter. By default the emitter is a no-op.

type telemetryEmitter func(ctx context.Context, name string, labels map[string]string, value any)

var (
	teleMu   sync.Mutex
	teleImpl telemetryEmitter = func(ctx context.Context, name string, labels map[string]string, value any) {
		// noop by default
	}
)

// RegisterTelemetryEmitter registers a custom emitter function. Passing nil
// restores the no-op emitter.
func RegisterTelemetryEmitter(fn telemetryEmitter) {
	teleMu.Lock()
	defer teleMu.Unlock()
	if fn == nil {
		teleImpl = func(ctx context.Context, name string, labels map[string]string, value any) {}
		return
	}
	teleImpl = fn
}

func emitter() telemetryEmitter {
	teleMu.Lock()
	defer teleMu.Unlock()
	return teleImpl
}

// EmitValidatorLatency records how long one validator ran (milliseconds).
// name: "validator_latency_ms" with label {"code": "<validator code>"}
func EmitValidatorLatency(ctx context.Context, code string, ms int64) {
	emitter()(ctx, "validator_latency_ms", map[string]string{"code": code}, ms)
}

// EmitIssueCount records how many issues one validator produced.
// name: "validator_issue_count" with labels {"code": "<validator code>", "kind": "<issue kind>"}
func EmitIssueCount(ctx context.Context, code, kind string, n int) {
	emitter()(ctx, "validator_issue_count", map[string]string{"code": code, "kind": kind}, int64(n))
}

// EmitRunLatency records the duration of a whole validation run (milliseconds).
// name: "validation_run_latency_ms" with label {"mode": "additive"|"rebuild"}
func EmitRunLatency(ctx context.Context, mode string, ms int64) {
	emitter()(ctx, "validation_run_latency_ms", map[string]string{"mode": mode}, ms)
}
