package metrics

import "github.com/innerpeacez/sharding-sphere/executor"

// Sink adapts the fan-out engine's eventbus.Sink interface to this
// package's Prometheus series, so wiring executor.New(n, metrics.NewSink())
// is all a caller needs to get execution counters for free.
type Sink struct{}

// NewSink returns a ready Sink. It holds no state, so one value can back
// every Engine in a process.
func NewSink() Sink { return Sink{} }

// Publish records OverallExecutionEvent and UnitExecutionEvent values.
// Other event types are ignored, matching Sink's role as a metrics-only
// subscriber among possibly several on an eventbus.Bus.
func (Sink) Publish(event any) {
	switch e := event.(type) {
	case executor.OverallExecutionEvent:
		if e.Phase != executor.Before {
			ExecutionDuration.WithLabelValues(e.SqlType.String()).Observe(e.Duration.Seconds())
		}
	case executor.UnitExecutionEvent:
		if e.Phase != executor.Before {
			ExecutionTotal.WithLabelValues(e.SqlType.String(), e.Phase.String()).Inc()
		}
	}
}
