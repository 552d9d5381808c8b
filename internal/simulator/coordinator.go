// Package simulator drives the construction of a simulated Kademlia
// network: it repeatedly mints random identifiers, joins them to a
// network one at a time, and has each joining node look up a batch of
// random targets through an existing member so its routing table ends up
// populated the way a real join would leave it.
package simulator

import (
	"fmt"
	"io"
	"math/big"
	"math/rand"

	"github.com/deselmo/kademlia-simulator/internal/gml"
	"github.com/deselmo/kademlia-simulator/internal/identifier"
	"github.com/deselmo/kademlia-simulator/internal/kademlia"
	"github.com/deselmo/kademlia-simulator/internal/network"
	"github.com/deselmo/kademlia-simulator/internal/simerr"
	"github.com/deselmo/kademlia-simulator/internal/stats"
)

// percentageOfNodesPerBucket sets how many extra lookup targets a joining
// node draws per bucket, as a fraction of the bucket capacity k.
const percentageOfNodesPerBucket = 0.1

// maxJoinAttempts bounds how many times the construction phase will
// retry after drawing an identifier that collides with an existing
// member, before giving up on the run entirely.
const maxJoinAttempts = 1_000_000

// Coordinator builds a network of n nodes, each with m-bit identifiers
// and routing tables of bucket capacity k.
type Coordinator struct {
	m int
	n int
	k int

	network *network.Network
	rng     *rand.Rand
	stats   *stats.Collector
}

// New validates m, n, k and builds a Coordinator ready to Run. m is the
// identifier width in bits, n the number of nodes to join, k the bucket
// capacity. stats may be nil.
func New(m, n, k int, rng *rand.Rand, statsCollector *stats.Collector) (*Coordinator, error) {
	if m <= 0 || n <= 0 || k <= 0 {
		return nil, fmt.Errorf("simulator: m, n, k must all be positive (got m=%d, n=%d, k=%d): %w", m, n, k, simerr.ErrInvalidArgument)
	}
	if m > identifier.MaxBits {
		return nil, fmt.Errorf("simulator: m must not exceed %d, got %d: %w", identifier.MaxBits, m, simerr.ErrInvalidArgument)
	}

	capacity := new(big.Int).Lsh(big.NewInt(1), uint(m))
	if capacity.Cmp(big.NewInt(int64(n))) < 0 {
		return nil, fmt.Errorf("simulator: 2^m must be >= n (m=%d, n=%d): %w", m, n, simerr.ErrInvalidArgument)
	}

	return &Coordinator{
		m:       m,
		n:       n,
		k:       k,
		network: network.New(k, rng, statsCollector, nil),
		rng:     rng,
		stats:   statsCollector,
	}, nil
}

// Run builds the network: it seeds one node with no bootstrap, then joins
// the remaining n-1 nodes one at a time, each through a randomly chosen
// existing member. It fails with simerr.ErrIdentifierSpaceExhausted once
// the total number of identifier draws that collided with existing
// members during the run exceeds maxJoinAttempts.
func (c *Coordinator) Run() error {
	c.network.Clear()

	first, err := c.newRandomNode()
	if err != nil {
		return err
	}
	c.network.Join(first)

	attempts := 0
	for c.network.Size() != c.n {
		node, err := c.newRandomNode()
		if err != nil {
			return err
		}
		targets := c.pairedRandomIdentifiers(node.ID)

		if c.network.JoinWithLookups(node, targets) {
			continue
		}

		attempts++
		if attempts > maxJoinAttempts {
			return fmt.Errorf("simulator: %d identifier collisions while building the network, try increasing m: %w", attempts, simerr.ErrIdentifierSpaceExhausted)
		}
	}

	return nil
}

func (c *Coordinator) newRandomNode() (*kademlia.Node, error) {
	id, err := identifier.New(c.m, c.rng)
	if err != nil {
		return nil, err
	}
	return c.network.NewNode(id)
}

// pairedRandomIdentifiers draws, for every bucket a node with identifier
// id could have, a fixed percentage of k random identifiers that would
// land in it. Joining nodes look these up to seed their routing table the
// way a real bootstrap procedure would.
func (c *Coordinator) pairedRandomIdentifiers(id identifier.ID) []identifier.ID {
	perBucket := int(float64(c.k) * percentageOfNodesPerBucket)
	if perBucket < 1 {
		perBucket = 1
	}

	seen := make(map[string]bool)
	var out []identifier.ID

	for bucket := 0; bucket < c.m; bucket++ {
		for j := 0; j < perBucket; j++ {
			candidate, err := id.RandomInBucket(bucket, c.rng)
			if err != nil {
				continue
			}
			if key := candidate.Key(); !seen[key] {
				seen[key] = true
				out = append(out, candidate)
			}
		}
	}

	return out
}

// GML writes the network's current state as a GML graph.
func (c *Coordinator) GML(w io.Writer) error {
	return gml.Encode(w, c.network.Snapshot())
}

// Network exposes the underlying network, mainly for tests.
func (c *Coordinator) Network() *network.Network {
	return c.network
}
