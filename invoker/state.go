package invoker

// State is a step of a single call as seen by the invoker. A failing step
// moves straight to StateCleaned.
type State string

const (
	StateIdle               State = "idle"
	StateEndpointBound      State = "endpoint_bound"
	StateChildSpawned       State = "child_spawned"
	StateAwaitingConnection State = "awaiting_connection"
	StateConnected          State = "connected"
	StateResultDecoded      State = "result_decoded"
	StateCleaned            State = "cleaned"
)
