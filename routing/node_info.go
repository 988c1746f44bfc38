// Package routing implements the Kademlia k-bucket routing table: a
// 160-bucket structure keyed by XOR distance from the owning node's own
// identifier, with least-recently-seen eviction, a bounce traversal for
// closest-node lookups, and tracked eviction conflicts for later
// reconciliation by the surrounding protocol layer.
package routing

import (
	"net"

	"github.com/TheWaWaR/subotai/hash"
)

// NodeInfo is a peer descriptor: its identifier and the transport address
// it can be reached at. Encoding of the address for the wire is the
// responsibility of the surrounding network layer; the core only ever
// compares and stores it.
type NodeInfo struct {
	ID      hash.Hash
	Address net.Addr
}

// Equal reports whether two NodeInfo values refer to the same peer at the
// same address. Equality is structural, matching spec.md's data model.
func (n NodeInfo) Equal(other NodeInfo) bool {
	if n.ID != other.ID {
		return false
	}
	if n.Address == nil || other.Address == nil {
		return n.Address == other.Address
	}
	return n.Address.Network() == other.Address.Network() && n.Address.String() == other.Address.String()
}
