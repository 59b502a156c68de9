package capture

import "sync"

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateSubscribedWaiting
	StateCaptured
	StateTimedOut
	StateConnectionFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateSubscribedWaiting:
		return "subscribed_waiting"
	case StateCaptured:
		return "captured"
	case StateTimedOut:
		return "timed_out"
	case StateConnectionFailed:
		return "connection_failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// tracker 记录状态迁移历史，读取方可能在其他 goroutine
type tracker struct {
	mu      sync.Mutex
	current State
	history []State
}

func (t *tracker) set(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = s
	t.history = append(t.history, s)
}

func (t *tracker) get() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *tracker) path() []State {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]State, len(t.history))
	copy(out, t.history)
	return out
}
