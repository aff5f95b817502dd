package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/innerpeacez/sharding-sphere/config"
	"github.com/innerpeacez/sharding-sphere/executor"
)

// Registry holds one Pool per configured data source, keyed by the same
// DataSourceID string an executor.StatementUnit carries.
type Registry struct {
	pools map[string]*Pool
}

// NewRegistry builds a Registry from a loaded Config, one Pool per
// configured data source.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{pools: make(map[string]*Pool, len(cfg.DataSources))}
	for id, ds := range cfg.DataSources {
		r.pools[id] = NewPool(ds.Primary, ds.Replicas)
	}
	return r
}

// Get returns the pool for a data source id, or false if unknown.
func (r *Registry) Get(id string) (*Pool, bool) {
	p, ok := r.pools[id]
	return p, ok
}

// IDs returns every configured data source id, in no particular order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.pools))
	for id := range r.pools {
		ids = append(ids, id)
	}
	return ids
}

// SelectAddress resolves the physical address a StatementUnit carrying
// DataSourceID == id should connect to for sqlType, per that shard's
// Pool.SelectAddress. It is the routing decision a caller makes before
// building the StatementUnit it hands to executor.Execute.
func (r *Registry) SelectAddress(id string, sqlType executor.SqlType) (address, label string, err error) {
	p, ok := r.pools[id]
	if !ok {
		return "", "", &ErrUnknownDataSource{ID: id}
	}
	address, label = p.SelectAddress(sqlType)
	return address, label, nil
}

// StartHealthChecks launches StartHealthChecks on every pool in the
// registry; it returns once ctx is done and all per-pool loops have
// exited.
func (r *Registry) StartHealthChecks(ctx context.Context, interval time.Duration) {
	done := make(chan struct{}, len(r.pools))
	for _, p := range r.pools {
		p := p
		go func() {
			p.StartHealthChecks(ctx, interval)
			done <- struct{}{}
		}()
	}
	for range r.pools {
		<-done
	}
}

// ErrUnknownDataSource is returned when a StatementUnit names a data
// source id the registry has no pool for.
type ErrUnknownDataSource struct {
	ID string
}

func (e *ErrUnknownDataSource) Error() string {
	return fmt.Sprintf("datasource: unknown data source %q", e.ID)
}
