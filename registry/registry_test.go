package registry

import (
	"errors"
	"testing"

	"github.com/innerpeacez/sharding-sphere/resultset"
)

func TestChannelRegistryPutGetRemove(t *testing.T) {
	r := NewChannelRegistry()
	r.Put("chan-1", ConnectionID(42))

	id, ok := r.Get("chan-1")
	if !ok || id != 42 {
		t.Fatalf("Get = %v, %v", id, ok)
	}

	r.Remove("chan-1")
	if _, ok := r.Get("chan-1"); ok {
		t.Error("expected removed channel to be absent")
	}
}

func TestChannelRegistryDuplicatePutPanics(t *testing.T) {
	r := NewChannelRegistry()
	r.Put("chan-1", 1)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate channel registration")
		}
	}()
	r.Put("chan-1", 2)
}

func TestFutureRegistryPutTake(t *testing.T) {
	r := NewFutureRegistry()
	f := NewResponseFuture()
	r.Put(ConnectionID(1), f)

	got, ok := r.Get(ConnectionID(1))
	if !ok || got != f {
		t.Fatalf("Get = %v, %v", got, ok)
	}

	taken, ok := r.Take(ConnectionID(1))
	if !ok || taken != f {
		t.Fatalf("Take = %v, %v", taken, ok)
	}
	if _, ok := r.Get(ConnectionID(1)); ok {
		t.Error("Take should have cleared the entry")
	}
}

func TestFutureRegistryDuplicatePutPanics(t *testing.T) {
	r := NewFutureRegistry()
	r.Put(ConnectionID(7), NewResponseFuture())
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate in-flight future registration")
		}
	}()
	r.Put(ConnectionID(7), NewResponseFuture())
}

// Invariant 3: the future is completed exactly once per request.
func TestResponseFutureCompletesExactlyOnce(t *testing.T) {
	f := NewResponseFuture()
	want := resultset.New()
	if err := f.Complete(want); err != nil {
		t.Fatalf("first Complete: %v", err)
	}
	if err := f.Complete(resultset.New()); err == nil {
		t.Error("second Complete should fail")
	}

	got, err := f.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != want {
		t.Error("Get returned a different result than Complete set")
	}
}

func TestResponseFutureFailDeliversError(t *testing.T) {
	f := NewResponseFuture()
	boom := errors.New("boom")
	if err := f.Fail(boom); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	result, err := f.Get()
	if result != nil {
		t.Errorf("expected nil result on failure, got %v", result)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Get error = %v, want %v", err, boom)
	}
}

func TestResponseFutureFailAfterCompleteRejected(t *testing.T) {
	f := NewResponseFuture()
	f.Complete(resultset.New())
	if err := f.Fail(errors.New("too late")); err == nil {
		t.Error("Fail after Complete should be rejected")
	}
}
