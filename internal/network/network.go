// Package network implements the simulated overlay: a registry that owns
// every joined node and resolves a kademlia.Peer back into the live
// *kademlia.Node that identifier belongs to. Nodes and routing tables only
// ever hold identifiers (kademlia.Peer values); Network is the sole place
// that turns an identifier back into something with behavior, which is
// what lets a simulated RPC be dispatched without a node ever holding a
// pointer into another node's internals.
package network

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/deselmo/kademlia-simulator/internal/identifier"
	"github.com/deselmo/kademlia-simulator/internal/kademlia"
	"github.com/deselmo/kademlia-simulator/internal/simerr"
)

// StatsRecorder is the instrumentation surface Network calls into, on top
// of the RPC/round counters a Node reports directly through
// kademlia.StatsRecorder. stats.Collector implements both.
type StatsRecorder interface {
	kademlia.StatsRecorder
	RecordJoin()
}

// Network is the virtual Kademlia network: the set of nodes that have
// joined, in join order, plus the machinery to add new ones.
type Network struct {
	mu    sync.Mutex
	k     int
	rng   *rand.Rand
	stats StatsRecorder
	ping  kademlia.PingFunc

	order []identifier.ID
	byKey map[string]*kademlia.Node
}

// New builds an empty Network. rng drives bootstrap peer selection; k is
// the bucket capacity every joining node's routing table is built with;
// stats and ping may both be nil.
func New(k int, rng *rand.Rand, stats StatsRecorder, ping kademlia.PingFunc) *Network {
	return &Network{
		k:     k,
		rng:   rng,
		stats: stats,
		ping:  ping,
		byKey: make(map[string]*kademlia.Node),
	}
}

// NewNode builds a node bound to this network as its transport, ready to
// be passed to Join or JoinWithLookups.
func (net *Network) NewNode(id identifier.ID) (*kademlia.Node, error) {
	return kademlia.NewNode(id, net.k, net, net.stats, net.ping)
}

// Ping implements kademlia.Transport by resolving peer to a registered
// node and invoking it directly.
func (net *Network) Ping(peer kademlia.Peer) error {
	node, ok := net.lookup(peer.ID)
	if !ok {
		return fmt.Errorf("network: peer %s is not a member of this network: %w", peer.ID.Key(), simerr.ErrTimeout)
	}
	return node.Ping()
}

// FindNode implements kademlia.Transport by resolving peer to a
// registered node and invoking it directly.
func (net *Network) FindNode(peer kademlia.Peer, target identifier.ID, traversed []kademlia.Peer) ([]kademlia.Peer, error) {
	node, ok := net.lookup(peer.ID)
	if !ok {
		return nil, fmt.Errorf("network: peer %s is not a member of this network: %w", peer.ID.Key(), simerr.ErrTimeout)
	}
	return node.FindNode(target, traversed)
}

func (net *Network) lookup(id identifier.ID) (*kademlia.Node, bool) {
	net.mu.Lock()
	defer net.mu.Unlock()
	node, ok := net.byKey[id.Key()]
	return node, ok
}

// Contains reports whether id already identifies a member of the network.
func (net *Network) Contains(id identifier.ID) bool {
	_, ok := net.lookup(id)
	return ok
}

// Size returns the number of nodes currently in the network.
func (net *Network) Size() int {
	net.mu.Lock()
	defer net.mu.Unlock()
	return len(net.order)
}

// Clear removes every node from the network.
func (net *Network) Clear() {
	net.mu.Lock()
	defer net.mu.Unlock()
	net.order = nil
	net.byKey = make(map[string]*kademlia.Node)
}

func (net *Network) randomPeerLocked() (kademlia.Peer, bool) {
	if len(net.order) == 0 {
		return kademlia.Peer{}, false
	}
	id := net.order[net.rng.Intn(len(net.order))]
	return kademlia.Peer{ID: id}, true
}

func (net *Network) register(node *kademlia.Node) {
	net.byKey[node.ID.Key()] = node
	net.order = append(net.order, node.ID)
	if net.stats != nil {
		net.stats.RecordJoin()
	}
}

// Join admits node into the network without running any lookup. It
// reports false, leaving the network unchanged, if a node with the same
// identifier already joined. This is meant for the network's very first
// member, which has nobody to bootstrap against yet.
func (net *Network) Join(node *kademlia.Node) bool {
	net.mu.Lock()
	defer net.mu.Unlock()

	if _, ok := net.byKey[node.ID.Key()]; ok {
		return false
	}
	net.register(node)
	return true
}

// JoinWithLookups admits node into the network, then has it look up each
// identifier in targets through a bootstrap peer chosen uniformly at
// random from the network's existing members. The bootstrap is picked and
// node is registered before any lookup runs, so a node never bootstraps
// against itself. It reports false, leaving the network unchanged and
// running no lookups, if a node with the same identifier already joined.
func (net *Network) JoinWithLookups(node *kademlia.Node, targets []identifier.ID) bool {
	net.mu.Lock()
	if _, ok := net.byKey[node.ID.Key()]; ok {
		net.mu.Unlock()
		return false
	}
	bootstrap, hasBootstrap := net.randomPeerLocked()
	net.register(node)
	net.mu.Unlock()

	if !hasBootstrap {
		return true
	}
	for _, target := range targets {
		node.Lookup(bootstrap, target)
	}
	return true
}

// Nodes returns every joined node, in join order.
func (net *Network) Nodes() []*kademlia.Node {
	net.mu.Lock()
	defer net.mu.Unlock()

	out := make([]*kademlia.Node, len(net.order))
	for i, id := range net.order {
		out[i] = net.byKey[id.Key()]
	}
	return out
}
