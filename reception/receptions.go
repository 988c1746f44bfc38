package reception

import (
	"iter"
	"sync"
	"time"

	"github.com/TheWaWaR/subotai/clock"
	"github.com/TheWaWaR/subotai/hash"
	"github.com/TheWaWaR/subotai/internal/logging"
)

// Receptions is a filterable, time-bounded iterator over the Rpcs observed
// on a Hub. Build one with NewReceptions, narrow it with the During/OfKind/
// From/FromSenders builder methods, then drain it with Next or All. Callers
// must call Close when done, to release the underlying subscription; a
// Receptions whose During deadline has passed releases it itself.
type Receptions struct {
	hub   *Hub
	id    int
	ch    <-chan Update
	clock clock.Provider

	deadline    time.Time
	hasDeadline bool

	kindFilter   *Kind
	senderFilter map[hash.Hash]struct{}

	mu     sync.Mutex
	closed bool
	done   bool
}

// Option configures a Receptions at construction time.
type Option func(*Receptions)

// WithClock overrides the time source used to resolve During's deadline,
// for deterministic tests.
func WithClock(c clock.Provider) Option {
	return func(r *Receptions) { r.clock = c }
}

// NewReceptions subscribes to hub and returns an unfiltered, unbounded
// Receptions. Narrow it with the builder methods before iterating.
func NewReceptions(hub *Hub, opts ...Option) *Receptions {
	id, ch := hub.subscribe()
	r := &Receptions{
		hub:   hub,
		id:    id,
		ch:    ch,
		clock: clock.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// During bounds the iteration to events observed within d of this call.
func (r *Receptions) During(d time.Duration) *Receptions {
	r.deadline = r.clock.Now().Add(d)
	r.hasDeadline = true
	return r
}

// OfKind restricts iteration to RPCs of the given kind.
func (r *Receptions) OfKind(k Kind) *Receptions {
	kk := k
	r.kindFilter = &kk
	return r
}

// From restricts iteration to RPCs sent by a single peer.
func (r *Receptions) From(sender hash.Hash) *Receptions {
	return r.FromSenders([]hash.Hash{sender})
}

// FromSenders restricts iteration to RPCs sent by any of the given peers.
func (r *Receptions) FromSenders(senders []hash.Hash) *Receptions {
	set := make(map[hash.Hash]struct{}, len(senders))
	for _, s := range senders {
		set[s] = struct{}{}
	}
	r.senderFilter = set
	return r
}

// matches reports whether an observed Rpc passes this Receptions' filters.
func (r *Receptions) matches(rpc Rpc) bool {
	if r.kindFilter != nil && rpc.Kind != *r.kindFilter {
		return false
	}
	if r.senderFilter != nil {
		if _, ok := r.senderFilter[rpc.SenderID]; !ok {
			return false
		}
	}
	return true
}

// Next blocks until a matching Rpc arrives, the configured deadline passes,
// a shutdown event is observed, or the underlying subscription is closed.
// It returns ok == false in every case but the first.
func (r *Receptions) Next() (Rpc, bool) {
	logger := logging.New("reception", "Receptions.Next")

	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done {
		return Rpc{}, false
	}

	for {
		var timerC <-chan time.Time
		var timer *time.Timer
		if r.hasDeadline {
			remaining := r.deadline.Sub(r.clock.Now())
			if remaining <= 0 {
				r.markDone()
				r.Close()
				return Rpc{}, false
			}
			timer = time.NewTimer(remaining)
			timerC = timer.C
		}

		select {
		case update, ok := <-r.ch:
			if timer != nil {
				timer.Stop()
			}
			if !ok {
				logger.Debug("subscription closed, ending iteration")
				r.markDone()
				return Rpc{}, false
			}
			switch update.Kind {
			case UpdateShutdown:
				logger.Debug("shutdown observed, ending iteration")
				r.markDone()
				return Rpc{}, false
			case UpdateTick:
				continue
			case UpdateRpcReceived:
				if !r.matches(update.Rpc) {
					continue
				}
				return update.Rpc, true
			default:
				continue
			}
		case <-timerC:
			r.markDone()
			r.Close()
			return Rpc{}, false
		}
	}
}

func (r *Receptions) markDone() {
	r.mu.Lock()
	r.done = true
	r.mu.Unlock()
}

// All returns a range-over-func iterator equivalent to repeated Next calls,
// for use as `for rpc := range receptions.All() { ... }`.
func (r *Receptions) All() iter.Seq[Rpc] {
	return func(yield func(Rpc) bool) {
		for {
			rpc, ok := r.Next()
			if !ok {
				return
			}
			if !yield(rpc) {
				return
			}
		}
	}
}

// Close unsubscribes from the Hub, unblocking any goroutine currently
// parked in Next. It is safe to call more than once.
func (r *Receptions) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.hub.unsubscribe(r.id)
}
