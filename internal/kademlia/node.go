package kademlia

import "github.com/deselmo/kademlia-simulator/internal/identifier"

// Alpha bounds how many not-yet-queried peers a lookup round contacts
// before moving to the merge phase: outside the final pass, a round stops
// querying as soon as more than Alpha peers have answered, so it collects
// answers from at most Alpha+1 peers. It never means real concurrency
// here: the whole simulation runs on a single goroutine.
const Alpha = 5

// Transport abstracts the simulated RPC surface a Node needs to reach
// other nodes. It exists so this package never imports internal/network:
// network.Network implements Transport by resolving a Peer's identifier
// back to the live *Node that owns it.
type Transport interface {
	Ping(peer Peer) error
	FindNode(peer Peer, target identifier.ID, traversed []Peer) ([]Peer, error)
}

// StatsRecorder is the instrumentation surface a Node calls into. A nil
// StatsRecorder is valid everywhere and turns every call into a no-op;
// stats.Collector is the concrete implementation.
type StatsRecorder interface {
	RecordRPC()
	RecordLookupRound()
}

// Node is a single participant in the simulated overlay: an identifier, a
// routing table, and the RPC handlers spec.md defines for it.
type Node struct {
	ID           identifier.ID
	RoutingTable *RoutingTable
	k            int
	transport    Transport
	stats        StatsRecorder
}

// NewNode builds a node with an empty routing table. transport is used to
// reach other nodes during Lookup; stats may be nil.
func NewNode(id identifier.ID, k int, transport Transport, stats StatsRecorder, ping PingFunc) (*Node, error) {
	rt, err := NewRoutingTable(id, k, ping)
	if err != nil {
		return nil, err
	}
	return &Node{ID: id, RoutingTable: rt, k: k, transport: transport, stats: stats}, nil
}

// self returns the node's own identity as a Peer.
func (n *Node) self() Peer {
	return Peer{ID: n.ID}
}

// Ping answers the PING RPC. It never fails in this simulation.
func (n *Node) Ping() error {
	return nil
}

// FindNode answers the FIND_NODE RPC: the traversed peers the caller
// collected on its way here are folded into this node's own routing
// table, and this node's k closest peers to target are returned.
func (n *Node) FindNode(target identifier.ID, traversed []Peer) ([]Peer, error) {
	n.RoutingTable.InsertMany(traversed)
	return n.RoutingTable.KClosest(target), nil
}

func (n *Node) recordRPC() {
	if n.stats != nil {
		n.stats.RecordRPC()
	}
}

func (n *Node) recordRound() {
	if n.stats != nil {
		n.stats.RecordLookupRound()
	}
}

func (n *Node) tryFindNode(peer Peer, target identifier.ID, traversed []Peer) ([]Peer, bool) {
	n.recordRPC()
	peers, err := n.transport.FindNode(peer, target, traversed)
	if err != nil {
		return nil, false
	}
	return peers, true
}

// Lookup runs the iterative lookup for target, starting from bootstrap.
// Each round queries not-yet-queried peers from the current candidate
// queue until more than Alpha of them have answered, merges every peer
// they return into both the node's own routing table and the queue, and
// stops once a full round leaves the queue's closest candidate unchanged
// (running one final round first that queries every remaining candidate
// and adds found peers to the routing table only, not to the queue).
func (n *Node) Lookup(bootstrap Peer, target identifier.ID) []Peer {
	queue, err := NewKClosestQueue(bootstrap, n.self(), target, n.k)
	if err != nil {
		return nil
	}

	queried := make(map[string]bool)
	inserted := make(map[string]bool)
	lastPass := false

	for {
		n.recordRound()
		closestBefore := queue.Closest()

		type roundResult struct {
			queriedPeer Peer
			found       []Peer
		}
		var results []roundResult
		newQueried := 0

		for _, peer := range queue.Iterate() {
			key := peer.ID.Key()
			if queried[key] {
				continue
			}
			queried[key] = true

			found, ok := n.tryFindNode(peer, target, queue.Provenance(peer))
			if !ok {
				continue
			}

			results = append(results, roundResult{queriedPeer: peer, found: found})
			newQueried++

			if !lastPass && newQueried > Alpha {
				break
			}
		}

		for _, r := range results {
			for _, foundPeer := range r.found {
				fkey := foundPeer.ID.Key()
				if inserted[fkey] {
					continue
				}
				n.RoutingTable.Insert(foundPeer)
				if !lastPass {
					queue.TryAdd(foundPeer, r.queriedPeer)
				}
				inserted[fkey] = true
			}
		}

		if lastPass {
			break
		}
		if queue.Closest().Equal(closestBefore) {
			lastPass = true
		}
	}

	return queue.Snapshot()
}
