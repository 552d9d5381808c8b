// Package stats collects lightweight counters over a simulation run: how
// many nodes joined, how many lookup rounds ran, and how many simulated
// RPCs were issued. A nil *Collector is valid everywhere its methods are
// called, so instrumentation can be wired in optionally without every
// call site branching on whether stats were requested.
package stats

import (
	"sync"
	"time"
)

// Collector aggregates counters for a single simulation run.
type Collector struct {
	mu sync.Mutex

	startTime time.Time

	joins        int
	lookupRounds int
	rpcs         int
}

// NewCollector creates a Collector with its clock started.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// RecordJoin records that a node joined the network.
func (c *Collector) RecordJoin() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joins++
}

// RecordLookupRound records that a lookup ran one more round.
func (c *Collector) RecordLookupRound() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookupRounds++
}

// RecordRPC records that a simulated Ping or FindNode was issued.
func (c *Collector) RecordRPC() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rpcs++
}

// Summary is a point-in-time snapshot of a Collector's counters.
type Summary struct {
	Elapsed      time.Duration
	Joins        int
	LookupRounds int
	RPCs         int
}

// Summary returns the current counter values. Calling it on a nil
// Collector returns the zero Summary.
func (c *Collector) Summary() Summary {
	if c == nil {
		return Summary{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Summary{
		Elapsed:      time.Since(c.startTime),
		Joins:        c.joins,
		LookupRounds: c.lookupRounds,
		RPCs:         c.rpcs,
	}
}
