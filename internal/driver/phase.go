package driver

// Phase identifies where a driver is in its lifecycle. Phases advance
// strictly forward: Uninitialized → Initialized → Running → Finished.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitialized
	PhaseRunning
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitialized:
		return "initialized"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}
