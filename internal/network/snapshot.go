package network

import (
	"github.com/deselmo/kademlia-simulator/internal/gml"
	"github.com/deselmo/kademlia-simulator/internal/identifier"
)

// Snapshot builds the data gml.Encode needs to render this network,
// walking nodes in join order and each node's peers in its routing
// table's own deterministic order.
func (net *Network) Snapshot() []gml.NodeSnapshot {
	nodes := net.Nodes()

	out := make([]gml.NodeSnapshot, len(nodes))
	for i, node := range nodes {
		peers := node.RoutingTable.AllPeers()

		ids := make([]identifier.ID, len(peers))
		for j, p := range peers {
			ids[j] = p.ID
		}

		out[i] = gml.NodeSnapshot{ID: node.ID, Peers: ids}
	}
	return out
}
