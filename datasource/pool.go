package datasource

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/innerpeacez/sharding-sphere/executor"
)

// replicaSlot pairs a replica address with an independently-updatable
// health flag: the round-robin scan in GetReplica and the background
// health-check loop both touch health without contending on Pool's lock,
// the same per-target rather than per-pool locking granularity
// executor.Engine uses for its connection locks.
type replicaSlot struct {
	addr    string
	healthy atomic.Bool
}

// Pool manages a single shard's primary and its read replicas,
// round-robining across the replicas that pass health checks.
type Pool struct {
	mu      sync.RWMutex
	primary string
	slots   []*replicaSlot
	current atomic.Uint32
}

// NewPool creates a pool for one shard. All replicas start healthy.
func NewPool(primary string, replicas []string) *Pool {
	p := &Pool{primary: primary, slots: make([]*replicaSlot, len(replicas))}
	for i, addr := range replicas {
		s := &replicaSlot{addr: addr}
		s.healthy.Store(true)
		p.slots[i] = s
	}
	return p
}

// UpdateReplicas replaces the primary/replica addresses for hot config
// reload. A replica address kept across the reload retains its existing
// slot (and health flag); a new address starts healthy.
func (p *Pool) UpdateReplicas(primary string, replicas []string) {
	p.mu.RLock()
	existing := make(map[string]*replicaSlot, len(p.slots))
	for _, s := range p.slots {
		existing[s.addr] = s
	}
	p.mu.RUnlock()

	slots := make([]*replicaSlot, len(replicas))
	for i, addr := range replicas {
		if s, ok := existing[addr]; ok {
			slots[i] = s
			continue
		}
		s := &replicaSlot{addr: addr}
		s.healthy.Store(true)
		slots[i] = s
	}

	p.mu.Lock()
	p.primary = primary
	p.slots = slots
	p.mu.Unlock()
}

// GetPrimary returns the shard's primary address.
func (p *Pool) GetPrimary() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.primary
}

// GetReplica returns the next healthy replica using round-robin, or the
// primary if no replica is healthy. It returns (address, name), where
// name is "replicaN" or "primary" for use as a connection channel label.
func (p *Pool) GetReplica() (string, string) {
	p.mu.RLock()
	slots := p.slots
	p.mu.RUnlock()

	n := uint32(len(slots))
	if n == 0 {
		return p.GetPrimary(), "primary"
	}

	for attempts := uint32(0); attempts < n; attempts++ {
		idx := (p.current.Add(1) - 1) % n
		if slot := slots[idx]; slot.healthy.Load() {
			return slot.addr, fmt.Sprintf("replica%d", idx+1)
		}
	}

	log.Printf("[datasource] no healthy replicas available, using primary")
	return p.GetPrimary(), "primary"
}

// SelectAddress chooses the address a StatementUnit for this shard should
// carry, based on the sql type an executor.Execute call is about to fan
// out: DQL traffic prefers a healthy replica (via GetReplica), every other
// SqlType goes to the primary so DML/DDL/DCL/TCL never lands on a replica.
// label identifies which physical address was picked ("primary" or
// "replicaN"), suitable as the channel-registry key a backendconn.Conn is
// created with.
func (p *Pool) SelectAddress(sqlType executor.SqlType) (address, label string) {
	if sqlType == executor.DQL {
		return p.GetReplica()
	}
	return p.GetPrimary(), "primary"
}

func (p *Pool) findSlot(addr string) *replicaSlot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.slots {
		if s.addr == addr {
			return s
		}
	}
	return nil
}

// MarkUnhealthy marks addr unhealthy so GetReplica skips it.
func (p *Pool) MarkUnhealthy(addr string) {
	if s := p.findSlot(addr); s != nil {
		s.healthy.Store(false)
	}
}

// MarkHealthy marks addr healthy again.
func (p *Pool) MarkHealthy(addr string) {
	if s := p.findSlot(addr); s != nil {
		s.healthy.Store(true)
	}
}

// IsHealthy reports addr's current health status.
func (p *Pool) IsHealthy(addr string) bool {
	if s := p.findSlot(addr); s != nil {
		return s.healthy.Load()
	}
	return false
}

// GetHealthyCount returns the number of replicas currently marked healthy.
func (p *Pool) GetHealthyCount() int {
	p.mu.RLock()
	slots := p.slots
	p.mu.RUnlock()

	count := 0
	for _, s := range slots {
		if s.healthy.Load() {
			count++
		}
	}
	return count
}

// StartHealthChecks runs a TCP dial against every replica at interval
// until ctx is done, updating each replica's health status accordingly.
func (p *Pool) StartHealthChecks(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.checkAllReplicas()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.checkAllReplicas()
		}
	}
}

func (p *Pool) checkAllReplicas() {
	p.mu.RLock()
	slots := append([]*replicaSlot(nil), p.slots...)
	p.mu.RUnlock()
	for _, s := range slots {
		go checkSlot(s)
	}
}

// checkSlot dials s.addr directly and updates its health flag in place,
// bypassing the address-lookup MarkHealthy/MarkUnhealthy do for external
// callers since the health-check loop already holds the slot.
func checkSlot(s *replicaSlot) {
	network, dialAddr := "tcp", s.addr
	if len(s.addr) > 5 && s.addr[:5] == "unix:" {
		network, dialAddr = "unix", s.addr[5:]
	}

	conn, err := net.DialTimeout(network, dialAddr, 2*time.Second)
	if err != nil {
		s.healthy.Store(false)
		return
	}
	conn.Close()
	s.healthy.Store(true)
}
