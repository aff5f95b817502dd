package executor

import (
	"context"
	"time"
)

// Execute runs one logical request against every unit: units[0] on the
// caller's goroutine, units[1:] on the pool, awaited in input order. It is
// a free function rather than a method because Go methods cannot carry
// their own type parameters; Engine itself stays non-generic so one Engine
// can serve callbacks of different result types.
//
// Whenever Execute returns a nil error, the returned slice has len(units)
// entries in input order, even when some indices hold T's zero value
// because execCtx.ThrowOnError is false and that unit's callback failed.
// A returned error comes with a nil slice. In that case Execute itself
// returns a nil error, but still publishes an Overall FAILURE event
// carrying the first error observed across all units.
func Execute[T any](ctx context.Context, e *Engine, execCtx Context, sqlType SqlType, units []StatementUnit, cb ExecuteCallback[T]) ([]T, error) {
	if len(units) == 0 {
		return nil, nil
	}

	start := time.Now()
	e.sink.Publish(OverallExecutionEvent{SqlType: sqlType, UnitCount: len(units)})

	results := make([]T, len(units))
	errs := make([]error, len(units))

	rest := units[1:]
	done := make([]chan struct{}, len(rest))
	for i, unit := range rest {
		idx := i + 1
		u := unit
		ch := make(chan struct{})
		done[i] = ch
		if err := e.submit(func() {
			defer close(ch)
			results[idx], errs[idx] = executeInternal(e, ctx, execCtx, sqlType, u, cb)
		}); err != nil {
			errs[idx] = &ExecutionError{Op: "submit", Err: err}
			close(ch)
		}
	}

	results[0], errs[0] = executeInternal(e, ctx, execCtx, sqlType, units[0], cb)

	if errs[0] != nil && execCtx.ThrowOnError {
		// The synchronous leg failed and errors are not suppressed:
		// short-circuit further waiting and report this as Execute's
		// error. Async units already dispatched keep running to
		// completion; their results are discarded.
		e.sink.Publish(OverallExecutionEvent{SqlType: sqlType, UnitCount: len(units), Phase: Failure, Err: errs[0], Duration: time.Since(start)})
		return nil, errs[0]
	}

	for i, ch := range done {
		<-ch
		if errs[i+1] != nil && execCtx.ThrowOnError {
			e.sink.Publish(OverallExecutionEvent{SqlType: sqlType, UnitCount: len(units), Phase: Failure, Err: errs[i+1], Duration: time.Since(start)})
			return nil, errs[i+1]
		}
	}

	// Every unit has run. With ThrowOnError == false, a failed unit's
	// result index was left at T's zero value by executeInternal but its
	// error was not raised here; the Overall event still carries the
	// first error observed, per the error-handling design ("Overall
	// events always carry the first error observed"), even though
	// Execute itself returns nil.
	var firstErr error
	for _, err := range errs {
		if err != nil {
			firstErr = err
			break
		}
	}
	if firstErr != nil {
		e.sink.Publish(OverallExecutionEvent{SqlType: sqlType, UnitCount: len(units), Phase: Failure, Err: firstErr, Duration: time.Since(start)})
		return results, nil
	}

	e.sink.Publish(OverallExecutionEvent{SqlType: sqlType, UnitCount: len(units), Phase: Success, Duration: time.Since(start)})
	return results, nil
}

// executeInternal is the per-unit execution shared by the synchronous and
// asynchronous legs. It holds the unit's connection lock for the whole
// callback invocation so two units sharing a physical connection never run
// their callbacks concurrently, and publishes one BEFORE/terminal event
// pair per parameter set. The zero value of T stands in for a null result
// at this unit's index when execCtx.ThrowOnError is false; the error
// itself is still returned so Execute can surface it on the Overall event
// instead of raising it to the caller.
func executeInternal[T any](e *Engine, ctx context.Context, execCtx Context, sqlType SqlType, unit StatementUnit, cb ExecuteCallback[T]) (T, error) {
	lock := e.connLock(unit.Conn)
	lock.Lock()
	defer lock.Unlock()

	for _, params := range unit.ParameterSets {
		e.sink.Publish(UnitExecutionEvent{
			SqlType:      sqlType,
			DataSourceID: unit.DataSourceID,
			Conn:         unit.Conn,
			Parameters:   params,
			Phase:        Before,
		})
	}

	result, err := cb(ctx, unit)

	if err == nil {
		for _, params := range unit.ParameterSets {
			e.sink.Publish(UnitExecutionEvent{
				SqlType:      sqlType,
				DataSourceID: unit.DataSourceID,
				Conn:         unit.Conn,
				Parameters:   params,
				Phase:        Success,
			})
		}
		return result, nil
	}

	for _, params := range unit.ParameterSets {
		e.sink.Publish(UnitExecutionEvent{
			SqlType:      sqlType,
			DataSourceID: unit.DataSourceID,
			Conn:         unit.Conn,
			Parameters:   params,
			Phase:        Failure,
			Err:          err,
		})
	}

	if !execCtx.ThrowOnError {
		var zero T
		return zero, err
	}
	return result, err
}
