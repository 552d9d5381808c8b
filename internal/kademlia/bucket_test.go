package kademlia

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/deselmo/kademlia-simulator/internal/identifier"
	"github.com/deselmo/kademlia-simulator/internal/simerr"
)

func newPeer(t *testing.T, rng *rand.Rand, bits int) Peer {
	t.Helper()
	id, err := identifier.New(bits, rng)
	if err != nil {
		t.Fatalf("identifier.New: %v", err)
	}
	return Peer{ID: id}
}

func alwaysReachable(Peer) bool { return true }
func neverReachable(Peer) bool  { return false }

func TestNewBucket_InvalidCapacity(t *testing.T) {
	t.Parallel()

	if _, err := NewBucket(0); !errors.Is(err, simerr.ErrInvalidArgument) {
		t.Fatalf("NewBucket(0): want ErrInvalidArgument, got %v", err)
	}
}

func TestBucket_InsertFillsUpToCapacity(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	b, _ := NewBucket(3)

	peers := []Peer{newPeer(t, rng, 32), newPeer(t, rng, 32), newPeer(t, rng, 32)}
	for _, p := range peers {
		b.Insert(p, alwaysReachable)
	}

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if got := b.Snapshot(); len(got) != 3 || !got[0].Equal(peers[0]) || !got[2].Equal(peers[2]) {
		t.Fatalf("Snapshot() = %v, want insertion order %v", got, peers)
	}
}

func TestBucket_ReinsertMovesToBack(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(2))
	b, _ := NewBucket(3)
	a, c, d := newPeer(t, rng, 32), newPeer(t, rng, 32), newPeer(t, rng, 32)

	b.Insert(a, alwaysReachable)
	b.Insert(c, alwaysReachable)
	b.Insert(a, alwaysReachable) // re-seen, should move to back
	b.Insert(d, alwaysReachable)

	got := b.Snapshot()
	if len(got) != 3 {
		t.Fatalf("Len() = %d, want 3", len(got))
	}
	if !got[len(got)-1].Equal(d) {
		t.Fatalf("expected most recently seen peer at the back, got %v", got)
	}
	if !got[0].Equal(c) || !got[1].Equal(a) {
		t.Fatalf("expected re-seen peer moved behind c, got %v", got)
	}
}

func TestBucket_FullAndHeadReachable_DropsNewPeer(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	b, _ := NewBucket(2)
	oldest, second, newcomer := newPeer(t, rng, 32), newPeer(t, rng, 32), newPeer(t, rng, 32)

	b.Insert(oldest, alwaysReachable)
	b.Insert(second, alwaysReachable)
	b.Insert(newcomer, alwaysReachable)

	got := b.Snapshot()
	if len(got) != 2 || got[len(got)-1].Equal(newcomer) {
		t.Fatalf("expected newcomer to be dropped, got %v", got)
	}
	if !got[len(got)-1].Equal(oldest) {
		t.Fatalf("expected reachable oldest peer moved to back, got %v", got)
	}
}

func TestBucket_FullAndHeadUnreachable_EvictsHead(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(4))
	b, _ := NewBucket(2)
	oldest, second, newcomer := newPeer(t, rng, 32), newPeer(t, rng, 32), newPeer(t, rng, 32)

	b.Insert(oldest, alwaysReachable)
	b.Insert(second, alwaysReachable)
	b.Insert(newcomer, neverReachable)

	got := b.Snapshot()
	if len(got) != 2 {
		t.Fatalf("Len() = %d, want 2", len(got))
	}
	for _, p := range got {
		if p.Equal(oldest) {
			t.Fatalf("expected unreachable oldest peer evicted, got %v", got)
		}
	}
	if !got[len(got)-1].Equal(newcomer) {
		t.Fatalf("expected newcomer at the back after eviction, got %v", got)
	}
}
