package kademlia

import (
	"fmt"

	"github.com/deselmo/kademlia-simulator/internal/identifier"
	"github.com/deselmo/kademlia-simulator/internal/simerr"
)

// RoutingTable is a node's k-bucket table: identifier.ID.Bits() buckets of
// capacity k, indexed by the bit-length of the XOR distance to the owner
// minus one. Bucket 0 holds the peers closest to the owner (distance 1);
// bucket m-1 holds the farthest.
type RoutingTable struct {
	owner   identifier.ID
	k       int
	buckets []*Bucket
	ping    PingFunc
}

// NewRoutingTable builds an empty routing table for owner with bucket
// capacity k. ping is consulted whenever a full bucket needs to evict its
// least recently seen peer; a nil ping always reports the peer reachable,
// matching this simulation's no-timeout RPC model.
func NewRoutingTable(owner identifier.ID, k int, ping PingFunc) (*RoutingTable, error) {
	if k <= 0 {
		return nil, fmt.Errorf("kademlia: routing table capacity must be positive, got %d: %w", k, simerr.ErrInvalidArgument)
	}
	if ping == nil {
		ping = func(Peer) bool { return true }
	}

	buckets := make([]*Bucket, owner.Bits())
	for i := range buckets {
		b, err := NewBucket(k)
		if err != nil {
			return nil, err
		}
		buckets[i] = b
	}

	return &RoutingTable{owner: owner, k: k, buckets: buckets, ping: ping}, nil
}

func (rt *RoutingTable) indexOf(id identifier.ID) int {
	return identifier.BitLen(rt.owner.Distance(id)) - 1
}

// Insert records that peer was just seen, placing it in the bucket for its
// distance from the owner. A peer equal to the owner is ignored.
func (rt *RoutingTable) Insert(peer Peer) {
	if peer.ID.Equal(rt.owner) {
		return
	}
	rt.buckets[rt.indexOf(peer.ID)].Insert(peer, rt.ping)
}

// InsertMany inserts each peer in order.
func (rt *RoutingTable) InsertMany(peers []Peer) {
	for _, p := range peers {
		rt.Insert(p)
	}
}

// AllPeers returns every peer currently held, ordered by ascending bucket
// index and, within a bucket, from least to most recently seen. This is
// the order the GML exporter walks a node's neighbors in.
func (rt *RoutingTable) AllPeers() []Peer {
	var out []Peer
	for _, b := range rt.buckets {
		out = append(out, b.Snapshot()...)
	}
	return out
}

// KClosest returns up to k peers closest to target, computed by first
// consulting the bucket target itself would occupy, then pooling the
// buckets holding peers closer to the owner than target, then scanning
// the buckets holding peers farther from the owner than target one at a
// time until k results have been gathered.
func (rt *RoutingTable) KClosest(target identifier.ID) []Peer {
	t := -1
	if !target.Equal(rt.owner) {
		t = rt.indexOf(target)
	}

	result := make([]Peer, 0, rt.k)

	if t != -1 {
		result = append(result, sortPeersByDistance(rt.buckets[t].Snapshot(), target)...)
	}

	if len(result) < rt.k {
		var pooled []Peer
		for i := t - 1; i >= 0; i-- {
			pooled = append(pooled, rt.buckets[i].Snapshot()...)
		}
		result = append(result, sortPeersByDistance(pooled, target)...)
	}

	for i := t + 1; i < len(rt.buckets) && len(result) < rt.k; i++ {
		result = append(result, sortPeersByDistance(rt.buckets[i].Snapshot(), target)...)
	}

	if len(result) > rt.k {
		result = result[:rt.k]
	}
	return result
}
