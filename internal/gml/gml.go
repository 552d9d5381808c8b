// Package gml serializes a network snapshot to the Graph Modeling
// Language text format, matching the grammar the original Kademlia
// simulator produced: one node block per member (in join order) and one
// edge block per (owner, known peer) pair.
package gml

import (
	"fmt"
	"io"

	"github.com/deselmo/kademlia-simulator/internal/identifier"
)

// NodeSnapshot is one network member's identifier and the peers its
// routing table currently holds, in the order the exporter should walk
// them.
type NodeSnapshot struct {
	ID    identifier.ID
	Peers []identifier.ID
}

// Encode writes snapshot as a GML graph to w. Node ids in the graph are
// assigned by position in snapshot, so callers control node numbering by
// controlling slice order (join order, for the simulator's own output).
func Encode(w io.Writer, snapshot []NodeSnapshot) error {
	index := make(map[string]int, len(snapshot))
	for i, n := range snapshot {
		index[n.ID.Key()] = i
	}

	if _, err := io.WriteString(w, "graph\n[\n"); err != nil {
		return err
	}

	for i, n := range snapshot {
		if _, err := fmt.Fprintf(w, "  node\n  [\n    id %d\n    comment \"%s\"\n  ]\n", i, n.ID.Text(16)); err != nil {
			return err
		}
	}

	for _, n := range snapshot {
		sourceIdx := index[n.ID.Key()]
		for _, peer := range n.Peers {
			targetIdx, ok := index[peer.Key()]
			if !ok {
				continue
			}
			if _, err := fmt.Fprintf(w, "  edge\n  [\n    source %d\n    target %d\n    comment \"%s -> %s\"\n  ]\n",
				sourceIdx, targetIdx, n.ID.Text(16), peer.Text(16)); err != nil {
				return err
			}
		}
	}

	_, err := io.WriteString(w, "]\n")
	return err
}
