package metrics

import (
	"testing"
	"time"

	"github.com/innerpeacez/sharding-sphere/executor"
)

func TestSinkRecordsUnitEvents(t *testing.T) {
	Init()
	s := NewSink()
	s.Publish(executor.UnitExecutionEvent{SqlType: executor.DML, Phase: executor.Before})
	s.Publish(executor.UnitExecutionEvent{SqlType: executor.DML, Phase: executor.Success})
}

func TestSinkRecordsOverallDurationOnTerminalOnly(t *testing.T) {
	Init()
	s := NewSink()

	// BEFORE carries no duration; must not panic or record garbage.
	s.Publish(executor.OverallExecutionEvent{SqlType: executor.DQL, Phase: executor.Before})
	s.Publish(executor.OverallExecutionEvent{SqlType: executor.DQL, Phase: executor.Success, Duration: 5 * time.Millisecond})
}

func TestSinkIgnoresUnknownEventTypes(t *testing.T) {
	Init()
	s := NewSink()
	s.Publish("not an execution event")
	s.Publish(42)
}
