package kademlia

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/deselmo/kademlia-simulator/internal/identifier"
	"github.com/deselmo/kademlia-simulator/internal/simerr"
)

func TestNewKClosestQueue_InvalidCapacity(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	target, _ := identifier.New(16, rng)
	bootstrap := newPeer(t, rng, 16)
	origin := newPeer(t, rng, 16)

	if _, err := NewKClosestQueue(bootstrap, origin, target, 0); !errors.Is(err, simerr.ErrInvalidArgument) {
		t.Fatalf("NewKClosestQueue(k=0): want ErrInvalidArgument, got %v", err)
	}
}

func TestKClosestQueue_SeededWithBootstrapProvenance(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(2))
	target, _ := identifier.New(16, rng)
	bootstrap := newPeer(t, rng, 16)
	origin := newPeer(t, rng, 16)

	q, err := NewKClosestQueue(bootstrap, origin, target, 3)
	if err != nil {
		t.Fatalf("NewKClosestQueue: %v", err)
	}

	if !q.Closest().Equal(bootstrap) {
		t.Fatalf("Closest() = %v, want bootstrap %v", q.Closest(), bootstrap)
	}

	prov := q.Provenance(bootstrap)
	if len(prov) != 1 || !prov[0].Equal(origin) {
		t.Fatalf("Provenance(bootstrap) = %v, want [%v]", prov, origin)
	}
}

func TestKClosestQueue_TryAdd_RejectsDuplicate(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	self, _ := identifier.New(16, rng)
	bootstrap := Peer{ID: mustRandomInBucket(t, self, 15, rng)}
	origin := Peer{ID: self}

	q, _ := NewKClosestQueue(bootstrap, origin, self, 3)

	if q.TryAdd(bootstrap, origin) {
		t.Fatalf("TryAdd should reject a peer already present")
	}
}

func TestKClosestQueue_TryAdd_TrimsToCapacityKeepsProvenance(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(4))
	self, _ := identifier.New(16, rng)

	bootstrapID := mustRandomInBucket(t, self, 15, rng)
	closer := mustRandomInBucket(t, self, 3, rng)
	closest := mustRandomInBucket(t, self, 1, rng)

	bootstrap := Peer{ID: bootstrapID}
	origin := Peer{ID: self}

	q, _ := NewKClosestQueue(bootstrap, origin, self, 1)

	if !q.TryAdd(Peer{ID: closer}, bootstrap) {
		t.Fatalf("TryAdd(closer) should succeed")
	}
	if !q.Closest().Equal(Peer{ID: closer}) {
		t.Fatalf("Closest() = %v, want closer peer", q.Closest())
	}

	// bootstrap has been trimmed out of the top-1 set, but its provenance
	// row must still be retrievable.
	if prov := q.Provenance(bootstrap); len(prov) != 1 || !prov[0].Equal(origin) {
		t.Fatalf("Provenance(bootstrap) after trim = %v, want [%v]", prov, origin)
	}

	if !q.TryAdd(Peer{ID: closest}, Peer{ID: closer}) {
		t.Fatalf("TryAdd(closest) should succeed")
	}
	if !q.Closest().Equal(Peer{ID: closest}) {
		t.Fatalf("Closest() = %v, want closest peer", q.Closest())
	}

	prov := q.Provenance(Peer{ID: closest})
	if len(prov) != 3 || !prov[0].Equal(origin) || !prov[1].Equal(bootstrap) || !prov[2].Equal(Peer{ID: closer}) {
		t.Fatalf("Provenance(closest) = %v, want [origin, bootstrap, closer]", prov)
	}
}

func mustRandomInBucket(t *testing.T, self identifier.ID, bucket int, rng *rand.Rand) identifier.ID {
	t.Helper()
	id, err := self.RandomInBucket(bucket, rng)
	if err != nil {
		t.Fatalf("RandomInBucket(%d): %v", bucket, err)
	}
	return id
}
