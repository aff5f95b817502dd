package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/innerpeacez/sharding-sphere/config"
	"github.com/innerpeacez/sharding-sphere/executor"
)

func testConfig() *config.Config {
	return &config.Config{
		DataSources: map[string]config.DataSourceConfig{
			"shard0": {Primary: "127.0.0.1:3306", Replicas: []string{"127.0.0.1:3316"}},
			"shard1": {Primary: "127.0.0.1:3406"},
		},
		ExecutorSize: 4,
	}
}

func TestNewRegistryBuildsOnePoolPerDataSource(t *testing.T) {
	r := NewRegistry(testConfig())

	if len(r.IDs()) != 2 {
		t.Fatalf("IDs() = %v, want 2 entries", r.IDs())
	}
	pool, ok := r.Get("shard0")
	if !ok {
		t.Fatal("Get(shard0) = false, want true")
	}
	if pool.GetPrimary() != "127.0.0.1:3306" {
		t.Errorf("GetPrimary() = %s, want 127.0.0.1:3306", pool.GetPrimary())
	}
}

func TestRegistryGetUnknownDataSource(t *testing.T) {
	r := NewRegistry(testConfig())

	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}
}

func TestRegistryStartHealthChecksReturnsOnCancel(t *testing.T) {
	r := NewRegistry(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.StartHealthChecks(ctx, 50*time.Millisecond)
		close(done)
	}()

	time.Sleep(80 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Error("StartHealthChecks did not return after context cancellation")
	}
}

func TestRegistrySelectAddressRoutesByDataSourceID(t *testing.T) {
	r := NewRegistry(testConfig())

	addr, label, err := r.SelectAddress("shard0", executor.DQL)
	if err != nil {
		t.Fatalf("SelectAddress: %v", err)
	}
	if addr != "127.0.0.1:3316" || label != "replica1" {
		t.Errorf("SelectAddress(shard0, DQL) = (%s, %s), want (127.0.0.1:3316, replica1)", addr, label)
	}

	if _, _, err := r.SelectAddress("missing", executor.DQL); err == nil {
		t.Error("SelectAddress(missing) = nil error, want ErrUnknownDataSource")
	}
}

func TestErrUnknownDataSourceMessage(t *testing.T) {
	err := &ErrUnknownDataSource{ID: "shard9"}
	if err.Error() == "" {
		t.Error("Error() is empty")
	}
}
