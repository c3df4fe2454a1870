package component

type State int

const (
	PreInitialized State = iota
	Initialized
	Starting
	Running
	Stopping
	Stopped
	Resetting
	Disposed
)

func (s State) String() string {
	switch s {
	case PreInitialized:
		return "pre_initialized"
	case Initialized:
		return "initialized"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Resetting:
		return "resetting"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}
