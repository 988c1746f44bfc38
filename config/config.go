// Package config carries the tunable parameters of a node's routing table,
// storage, and reception pipeline. It is a plain struct built by the
// embedding application, the same way the teacher's Options is: there is no
// file or environment parsing here, matching spec.md's explicit exclusion
// of configuration loading from the core.
package config

import "time"

// Default constants, surfaced for callers that want to reference them
// directly (e.g. when sizing their own buffers).
const (
	DefaultBucketSize                  = 20
	DefaultAlpha                       = 3
	DefaultHashBits                    = 160
	DefaultMaxStorage                  = 10000
	DefaultBaseExpiration              = 24 * time.Hour
	DefaultExpirationDistanceThreshold = 5
	DefaultTickInterval                = 10 * time.Second
	DefaultReceptionBuffer             = 32
)

// Config carries the parameters a node's routing table, storage, and
// reception pipeline are built with.
type Config struct {
	// BucketSize is K, the maximum number of peers held in any one bucket.
	BucketSize int
	// Alpha is the parallelism degree the surrounding iterative lookup
	// algorithm is expected to use. The core does not use it directly, but
	// surfaces it for that caller.
	Alpha int
	// HashBits is the width of a Hash in bits, and the number of buckets
	// in a Table. The core does not read it: both are fixed at hash.Size.
	HashBits int
	// MaxStorage is the maximum number of entries Storage will hold.
	MaxStorage int
	// BaseExpiration is the lifetime assigned to a stored entry at or
	// below ExpirationDistanceThreshold.
	BaseExpiration time.Duration
	// ExpirationDistanceThreshold is the Height() beyond which stored
	// entries get a reduced lifetime.
	ExpirationDistanceThreshold int
	// TickInterval is the cadence at which node.Resources.StartTicking
	// publishes Tick updates.
	TickInterval time.Duration
	// ReceptionBuffer is the per-subscriber channel buffer size for the
	// reception broadcast hub.
	ReceptionBuffer int
}

// Default returns a Config fixing spec.md's constants:
// K=20, ALPHA=3, HASH_SIZE=160, MAX_STORAGE=10000.
func Default() Config {
	return Config{
		BucketSize:                  DefaultBucketSize,
		Alpha:                       DefaultAlpha,
		HashBits:                    DefaultHashBits,
		MaxStorage:                  DefaultMaxStorage,
		BaseExpiration:              DefaultBaseExpiration,
		ExpirationDistanceThreshold: DefaultExpirationDistanceThreshold,
		TickInterval:                DefaultTickInterval,
		ReceptionBuffer:             DefaultReceptionBuffer,
	}
}
