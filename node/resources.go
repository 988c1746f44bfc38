// Package node wires a routing table, a key-value store, and a reception
// broadcast hub together into the shared resources a single DHT participant
// needs for its lifetime. It owns no transport: callers feed it decoded
// Rpcs from a surrounding network layer and read back peers to contact.
package node

import (
	"time"

	"github.com/TheWaWaR/subotai/config"
	"github.com/TheWaWaR/subotai/hash"
	"github.com/TheWaWaR/subotai/internal/logging"
	"github.com/TheWaWaR/subotai/reception"
	"github.com/TheWaWaR/subotai/routing"
	"github.com/TheWaWaR/subotai/storage"
)

// Resources bundles the three data structures a node needs, created once
// at construction and held for the node's lifetime. Buckets in Table are
// never destroyed; Storage entries are destroyed on expiry or sweep;
// Receptions are created on demand via Subscribe and destroyed when Close
// is called or their deadline elapses.
type Resources struct {
	ID hash.Hash

	Table   *routing.Table
	Storage *storage.Storage
	hub     *reception.Hub

	cfg config.Config

	stopTicking chan struct{}
}

// New creates the shared resources for a node identified by id, applying
// cfg's tunables to the table, storage, and reception hub.
func New(id hash.Hash, cfg config.Config) *Resources {
	r := &Resources{
		ID: id,
		Table: routing.New(id, cfg.BucketSize),
		Storage: storage.New(id,
			storage.WithMaxEntries(cfg.MaxStorage),
			storage.WithBaseExpiration(cfg.BaseExpiration),
			storage.WithExpirationDistanceThreshold(cfg.ExpirationDistanceThreshold),
		),
		hub:         reception.NewHub(cfg.ReceptionBuffer),
		cfg:         cfg,
		stopTicking: make(chan struct{}),
	}
	return r
}

// Publish delivers an externally-decoded Rpc to every current Receptions
// subscriber. The surrounding network layer calls this once per inbound
// frame it decodes.
func (r *Resources) Publish(rpc reception.Rpc) {
	r.hub.Publish(reception.Update{Kind: reception.UpdateRpcReceived, Rpc: rpc})
}

// Subscribe returns a fresh, unfiltered Receptions over this node's
// broadcast hub. Callers narrow it with During/OfKind/From/FromSenders and
// must Close it when done.
func (r *Resources) Subscribe() *reception.Receptions {
	return reception.NewReceptions(r.hub)
}

// StartTicking launches a background goroutine that publishes an
// UpdateTick at cfg.TickInterval, letting blocked Receptions consumers
// re-check their own deadlines even when no real traffic arrives. It
// returns immediately; call Shutdown to stop it.
func (r *Resources) StartTicking() {
	logger := logging.New("node", "Resources.StartTicking")
	ticker := time.NewTicker(r.cfg.TickInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.hub.Publish(reception.Update{Kind: reception.UpdateTick})
			case <-r.stopTicking:
				logger.Debug("tick loop stopped")
				return
			}
		}
	}()
}

// Shutdown publishes UpdateShutdown to every current subscriber and stops
// the tick loop, if running. It does not prevent new Subscribes, though
// any consumer blocked in Next at the time will observe the shutdown and
// stop iterating.
func (r *Resources) Shutdown() {
	logging.New("node", "Resources.Shutdown").Info("shutting down node resources")
	r.hub.Shutdown()
	select {
	case <-r.stopTicking:
		// already closed
	default:
		close(r.stopTicking)
	}
}
