package content

// State describes where a Content instance sits in its loading lifecycle.
//
// The happy path is Unloaded -> Loading -> Processing -> Ready. Any step may
// divert to Failed, and a destroyed Content that was still in flight settles
// in Failed as well.
type State uint8

const (
	// StateUnloaded is the initial state. No network request has been
	// issued, or a previous request was declined by the scheduler.
	StateUnloaded State = iota
	// StateLoading means a fetch has been scheduled and its result is
	// still outstanding.
	StateLoading
	// StateProcessing means the payload has been parsed and the model is
	// preparing its GPU-facing resources asynchronously.
	StateProcessing
	// StateReady means the content is fully usable: Update produces draw
	// commands and per-feature access is available.
	StateReady
	// StateFailed is terminal. The Err method reports the cause.
	StateFailed
)

// String returns the state name in upper-case form.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "UNLOADED"
	case StateLoading:
		return "LOADING"
	case StateProcessing:
		return "PROCESSING"
	case StateReady:
		return "READY"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}
