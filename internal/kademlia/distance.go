package kademlia

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/deselmo/kademlia-simulator/internal/identifier"
	"github.com/deselmo/kademlia-simulator/internal/simerr"
)

// distanceEntry pairs a peer with its precomputed XOR distance to a fixed
// target, so repeated comparisons during a sort don't recompute it.
type distanceEntry struct {
	peer     Peer
	target   identifier.ID
	distance *big.Int
}

func newDistanceEntry(peer Peer, target identifier.ID) distanceEntry {
	return distanceEntry{peer: peer, target: target, distance: peer.ID.Distance(target)}
}

// compare orders two entries by ascending distance to their target. It
// fails if the entries were computed against different targets, since
// comparing distances to different points is meaningless.
func (d distanceEntry) compare(other distanceEntry) (int, error) {
	if !d.target.Equal(other.target) {
		return 0, fmt.Errorf("kademlia: distance comparison across different targets: %w", simerr.ErrIncomparableTargets)
	}
	return d.distance.Cmp(other.distance), nil
}

// sortPeersByDistance returns peers ordered by ascending distance to
// target, preserving the relative order of the input on ties.
func sortPeersByDistance(peers []Peer, target identifier.ID) []Peer {
	entries := make([]distanceEntry, len(peers))
	for i, p := range peers {
		entries[i] = newDistanceEntry(p, target)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		cmp, _ := entries[i].compare(entries[j])
		return cmp < 0
	})

	out := make([]Peer, len(entries))
	for i, e := range entries {
		out[i] = e.peer
	}
	return out
}
