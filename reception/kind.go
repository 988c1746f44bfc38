// Package reception turns the raw stream of Update events published by the
// surrounding network layer into a filterable, time-bounded iterator of
// observed Rpcs, so protocol code can say "give me the next Pong from peer
// X within 2 seconds" without writing its own event-loop plumbing.
package reception

// Kind enumerates the variants an Rpc's payload can take.
type Kind int

const (
	KindPing Kind = iota
	KindPingResponse
	KindStore
	KindFindNode
	KindFindNodeResponse
	KindFindValue
	KindFindValueResponse
	KindBootstrap
	KindBootstrapResponse
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "Ping"
	case KindPingResponse:
		return "PingResponse"
	case KindStore:
		return "Store"
	case KindFindNode:
		return "FindNode"
	case KindFindNodeResponse:
		return "FindNodeResponse"
	case KindFindValue:
		return "FindValue"
	case KindFindValueResponse:
		return "FindValueResponse"
	case KindBootstrap:
		return "Bootstrap"
	case KindBootstrapResponse:
		return "BootstrapResponse"
	default:
		return "Unknown"
	}
}
