package kademlia

import "github.com/deselmo/kademlia-simulator/internal/identifier"

// Peer is a lightweight reference to another node, carrying only its
// identifier. Routing tables and lookup state hold Peer values instead of
// *Node pointers so a node's routing table never owns a reference into
// another node's internals — resolving a Peer back into a live *Node for a
// simulated RPC is the Network's job (see internal/network).
type Peer struct {
	ID identifier.ID
}

// Equal compares two peers by identifier, matching Node identity in
// spec.md §3 ("two nodes with equal identifiers are the same node").
func (p Peer) Equal(other Peer) bool {
	return p.ID.Equal(other.ID)
}
