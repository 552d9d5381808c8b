package kademlia

import (
	"container/list"
	"fmt"

	"github.com/deselmo/kademlia-simulator/internal/simerr"
)

// PingFunc reports whether a peer is still reachable. Production code
// always gets true (this simulation never actually loses an RPC); tests
// substitute a stub that returns false to exercise bucket eviction.
type PingFunc func(Peer) bool

// Bucket holds at most k distinct peers ordered by how recently each was
// seen, implementing the least-recently-seen (LRS) eviction policy: the
// front of the list is the least recently seen, the back the most recently
// seen.
type Bucket struct {
	k     int
	peers *list.List
}

// NewBucket builds an empty bucket with capacity k.
func NewBucket(k int) (*Bucket, error) {
	if k <= 0 {
		return nil, fmt.Errorf("kademlia: bucket capacity must be positive, got %d: %w", k, simerr.ErrInvalidArgument)
	}
	return &Bucket{k: k, peers: list.New()}, nil
}

// Insert records that peer was just seen. If peer is already present it
// moves to the back. Otherwise, if the bucket has room, peer is appended.
// If the bucket is full, the least recently seen peer is pinged: if it
// answers it moves to the back and peer is dropped, otherwise it is
// evicted and peer takes its place at the back.
func (b *Bucket) Insert(peer Peer, ping PingFunc) {
	for e := b.peers.Front(); e != nil; e = e.Next() {
		if e.Value.(Peer).Equal(peer) {
			b.peers.MoveToBack(e)
			return
		}
	}

	if b.peers.Len() < b.k {
		b.peers.PushBack(peer)
		return
	}

	head := b.peers.Front()
	if ping(head.Value.(Peer)) {
		b.peers.MoveToBack(head)
		return
	}
	b.peers.Remove(head)
	b.peers.PushBack(peer)
}

// Snapshot returns the bucket's peers from least to most recently seen.
func (b *Bucket) Snapshot() []Peer {
	out := make([]Peer, 0, b.peers.Len())
	for e := b.peers.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Peer))
	}
	return out
}

// Len reports how many peers the bucket currently holds.
func (b *Bucket) Len() int {
	return b.peers.Len()
}
