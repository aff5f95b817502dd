// Package registry holds the two instance-scoped concurrent tables the
// response state machine depends on: a channel identity's backend-assigned
// connection id, and the single outstanding response slot a caller is
// awaiting on that connection. These are instance-scoped rather than
// process-wide singletons so tests (and multiple proxies in one process)
// do not share state.
package registry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/innerpeacez/sharding-sphere/resultset"
)

// ConnectionID is the backend-assigned 32-bit identifier sent in the
// handshake packet.
type ConnectionID uint32

// ChannelRegistry maps a backend connection's local transport identity to
// the ConnectionID the backend assigned it at handshake. Written once per
// connection (handshake completion) and removed when the connection fails.
type ChannelRegistry struct {
	m sync.Map // map[string]ConnectionID
}

// NewChannelRegistry returns an empty registry.
func NewChannelRegistry() *ChannelRegistry { return &ChannelRegistry{} }

// Put records channel's assigned ConnectionID. Overwriting an existing
// entry for the same channel is a caller bug (a channel is handshaked
// exactly once) and panics, failing loudly on the violation.
func (r *ChannelRegistry) Put(channel string, id ConnectionID) {
	if _, loaded := r.m.LoadOrStore(channel, id); loaded {
		panic(fmt.Sprintf("registry: channel %q already has a connection id", channel))
	}
}

// Get returns the ConnectionID for channel, or ok=false if unknown.
func (r *ChannelRegistry) Get(channel string) (ConnectionID, bool) {
	v, ok := r.m.Load(channel)
	if !ok {
		return 0, false
	}
	return v.(ConnectionID), true
}

// Remove drops channel's entry, used on disconnect.
func (r *ChannelRegistry) Remove(channel string) {
	r.m.Delete(channel)
}

// ResponseFuture is a single-producer/single-consumer slot carrying a
// resultset.QueryResult. Created by the caller before sending the
// request, completed exactly once by the response state machine,
// consumed exactly once by the caller.
type ResponseFuture struct {
	ch   chan futureResult
	done atomic.Bool
}

type futureResult struct {
	result *resultset.QueryResult
	err    error
}

// NewResponseFuture returns an uncompleted future.
func NewResponseFuture() *ResponseFuture {
	return &ResponseFuture{ch: make(chan futureResult, 1)}
}

// Complete resolves the future with a finished result. Completing an
// already-completed future is a caller bug — a future completes exactly
// once per request — and is reported rather than blocking forever or
// silently overwriting.
func (f *ResponseFuture) Complete(result *resultset.QueryResult) error {
	if !f.done.CompareAndSwap(false, true) {
		return fmt.Errorf("registry: future already completed")
	}
	f.ch <- futureResult{result: result}
	return nil
}

// Fail resolves the future with a connection-level error. A malformed
// packet, sequence gap, or truncated frame is fatal and completes any
// waiting future with that error.
func (f *ResponseFuture) Fail(err error) error {
	if !f.done.CompareAndSwap(false, true) {
		return fmt.Errorf("registry: future already completed")
	}
	f.ch <- futureResult{err: err}
	return nil
}

// Get blocks until the future is completed. Awaiting a result future on
// the caller's own goroutine is the only suspension point on that side.
func (f *ResponseFuture) Get() (*resultset.QueryResult, error) {
	r := <-f.ch
	return r.result, r.err
}

// FutureRegistry maps a ConnectionID to the single outstanding
// ResponseFuture a caller is awaiting on it. Written by the request path
// immediately before flushing the command packet; read and cleared by
// the state machine at the response boundary.
type FutureRegistry struct {
	m sync.Map // map[ConnectionID]*ResponseFuture
}

// NewFutureRegistry returns an empty registry.
func NewFutureRegistry() *FutureRegistry { return &FutureRegistry{} }

// Put registers f as the in-flight future for id. It panics if one is
// already registered: at most one in-flight ResponseFuture per
// ConnectionID is a hard invariant, and a violation is a caller bug.
func (r *FutureRegistry) Put(id ConnectionID, f *ResponseFuture) {
	if _, loaded := r.m.LoadOrStore(id, f); loaded {
		panic(fmt.Sprintf("registry: connection %d already has an in-flight future", id))
	}
}

// Get returns the in-flight future for id, if any.
func (r *FutureRegistry) Get(id ConnectionID) (*ResponseFuture, bool) {
	v, ok := r.m.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*ResponseFuture), true
}

// Clear removes id's entry. Called by the request path when the command
// could not be sent, so no response will ever resolve the future.
func (r *FutureRegistry) Clear(id ConnectionID) {
	r.m.Delete(id)
}

// Take atomically gets and clears id's entry, used by the state machine at
// a response boundary so "resolve and clear" cannot race a concurrent Put.
func (r *FutureRegistry) Take(id ConnectionID) (*ResponseFuture, bool) {
	v, ok := r.m.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	return v.(*ResponseFuture), true
}
