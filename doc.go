// Package subotai implements the core of a Kademlia-style distributed hash
// table node: a 160-bit routing table, a distance-expiring key-value store,
// and a filterable reception pipeline for observed RPCs. It does not itself
// open sockets, (de)serialize wire frames, or run protocol orchestration
// (bootstrap/ping/store/find-node/find-value) — those are left to a
// surrounding network layer that feeds decoded Rpcs in through
// node.Resources.Publish and reads peers back out through routing.Table and
// storage.Storage.
//
// # Getting started
//
// Create a node's shared resources once, for its lifetime:
//
//	id, err := hash.Random()
//	res := node.New(id, config.Default())
//	res.StartTicking()
//	defer res.Shutdown()
//
// Feed it decoded RPCs as they arrive over the transport:
//
//	res.Publish(incomingRpc)
//
// Subscribe to a filtered, time-bounded slice of what's observed:
//
//	sub := res.Subscribe().During(2 * time.Second).OfKind(reception.KindPingResponse)
//	defer sub.Close()
//	for rpc := range sub.All() {
//	    // handle rpc
//	}
//
// # Packages
//
//   - [github.com/TheWaWaR/subotai/hash]: the 160-bit identifier type and
//     its distance/bit operations.
//   - [github.com/TheWaWaR/subotai/routing]: the bucketed routing table and
//     closest-node lookup.
//   - [github.com/TheWaWaR/subotai/storage]: the bounded, distance-expiring
//     key-value store.
//   - [github.com/TheWaWaR/subotai/reception]: the broadcast hub and
//     filterable RPC iterator.
//   - [github.com/TheWaWaR/subotai/node]: the resources that wire the above
//     three together for one node's lifetime.
//   - [github.com/TheWaWaR/subotai/config]: tunable constants (K, ALPHA,
//     HASH_SIZE, MAX_STORAGE, and friends).
package subotai
