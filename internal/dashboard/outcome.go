package dashboard

import "cartorios/internal/core"

// State tags a query outcome. The presentation layer renders each state
// differently: a chart, a "finish selecting" prompt, a "no data"
// notice, or a blocking error.
type State string

const (
	StateReady    State = "ready"
	StateNotReady State = "not_ready"
	StateNoData   State = "no_data"
	StateFailed   State = "failed"
)

// Outcome is the tagged result of a series query. Exactly one of the
// payload fields is meaningful for each state.
type Outcome struct {
	State  State
	Reason string // not_ready: what the user still has to choose
	Err    error  // failed: the underlying load error

	Points    []core.Point
	Metric    core.Metric
	HasMetric bool
}

func Ready(points []core.Point, metric core.Metric, hasMetric bool) Outcome {
	return Outcome{State: StateReady, Points: points, Metric: metric, HasMetric: hasMetric}
}

func NotReady(reason string) Outcome {
	return Outcome{State: StateNotReady, Reason: reason}
}

func NoData() Outcome {
	return Outcome{State: StateNoData}
}

func Failed(err error) Outcome {
	return Outcome{State: StateFailed, Err: err}
}
