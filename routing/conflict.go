package routing

// EvictionConflict records a peer that was dropped from a full bucket to
// make room for a newer one. The surrounding protocol layer may probe
// Evicted for liveness and, if it's still reachable, call
// Table.RevertConflict to restore it.
type EvictionConflict struct {
	Evicted  NodeInfo
	Inserted NodeInfo
}
