package reception

import (
	"github.com/google/uuid"

	"github.com/TheWaWaR/subotai/hash"
	"github.com/TheWaWaR/subotai/routing"
	"github.com/TheWaWaR/subotai/storage"
)

// Rpc is an observed remote procedure call, received from some peer and
// published onto the node's broadcast hub. Which of the payload fields are
// meaningful depends on Kind; unused fields are left at their zero value.
type Rpc struct {
	SenderID  hash.Hash
	Kind      Kind
	MessageID uuid.UUID

	// StorePayload carries a Store request's entry.
	StorePayload storage.StorageEntry

	// FindNodeTarget carries a FindNode request's target id.
	FindNodeTarget hash.Hash
	// FindNodeResponseNodes carries a FindNodeResponse's returned peers.
	FindNodeResponseNodes []routing.NodeInfo

	// FindValueTarget carries a FindValue request's target key.
	FindValueTarget hash.Hash
	// FindValueResponsePayload carries a FindValueResponse's found entry.
	FindValueResponsePayload storage.StorageEntry

	// BootstrapResponseNodes carries a BootstrapResponse's returned peers.
	BootstrapResponseNodes []routing.NodeInfo
}

// NewRpc builds an Rpc from sender and kind, stamped with a fresh random
// MessageID. Its payload fields are left at their zero value.
func NewRpc(sender hash.Hash, kind Kind) Rpc {
	return Rpc{
		SenderID:  sender,
		Kind:      kind,
		MessageID: uuid.New(),
	}
}
