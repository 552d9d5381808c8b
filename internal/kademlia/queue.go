package kademlia

import (
	"fmt"
	"sort"

	"github.com/deselmo/kademlia-simulator/internal/identifier"
	"github.com/deselmo/kademlia-simulator/internal/simerr"
)

// KClosestQueue tracks the k peers closest to a lookup's target seen so
// far, plus, for every peer ever admitted, the chain of peers that led a
// caller to discover it (its provenance). Provenance rows survive even
// after their peer is evicted from the top-k set: a peer bumped out by a
// closer one may still be the caller's only route to insert that peer's
// discoverer's neighbors into its own routing table.
type KClosestQueue struct {
	k          int
	target     identifier.ID
	entries    []distanceEntry
	provenance map[string][]Peer
}

// NewKClosestQueue seeds the queue with a bootstrap peer, recording origin
// (typically the lookup's initiating node) as its sole provenance entry.
func NewKClosestQueue(bootstrap, origin Peer, target identifier.ID, k int) (*KClosestQueue, error) {
	if k <= 0 {
		return nil, fmt.Errorf("kademlia: queue capacity must be positive, got %d: %w", k, simerr.ErrInvalidArgument)
	}

	q := &KClosestQueue{
		k:          k,
		target:     target,
		entries:    []distanceEntry{newDistanceEntry(bootstrap, target)},
		provenance: map[string][]Peer{bootstrap.ID.Key(): {origin}},
	}
	return q, nil
}

func (q *KClosestQueue) contains(peer Peer) bool {
	for _, e := range q.entries {
		if e.peer.Equal(peer) {
			return true
		}
	}
	return false
}

// TryAdd admits peer into the queue, recording queriedPeer (and everything
// that led to it) as its provenance. It reports false without modifying
// the queue if peer is already present. After insertion the queue is
// re-sorted by distance and trimmed back down to k entries; a peer dropped
// by the trim keeps its provenance row.
func (q *KClosestQueue) TryAdd(peer, queriedPeer Peer) bool {
	if q.contains(peer) {
		return false
	}

	q.entries = append(q.entries, newDistanceEntry(peer, q.target))
	sort.SliceStable(q.entries, func(i, j int) bool {
		cmp, _ := q.entries[i].compare(q.entries[j])
		return cmp < 0
	})

	trail := append([]Peer{}, q.Provenance(queriedPeer)...)
	trail = append(trail, queriedPeer)
	q.provenance[peer.ID.Key()] = trail

	if len(q.entries) > q.k {
		q.entries = q.entries[:q.k]
	}

	return true
}

// Closest returns the queue's nearest peer to the target.
func (q *KClosestQueue) Closest() Peer {
	return q.entries[0].peer
}

// Provenance returns the chain of peers that led to peer's discovery, or
// nil if peer was never admitted.
func (q *KClosestQueue) Provenance(peer Peer) []Peer {
	return q.provenance[peer.ID.Key()]
}

// Iterate returns a snapshot of the queue's current members in ascending
// distance order. Callers that mutate the queue (via TryAdd) while
// iterating over an earlier snapshot will not see the new entries.
func (q *KClosestQueue) Iterate() []Peer {
	out := make([]Peer, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.peer
	}
	return out
}

// Snapshot is an alias for Iterate, used at the end of a lookup to report
// its result.
func (q *KClosestQueue) Snapshot() []Peer {
	return q.Iterate()
}
