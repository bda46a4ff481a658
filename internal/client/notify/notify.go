// Package notify delivers user-visible notifications. Each notification has a
// stable id; a later notification with the same id replaces the earlier one,
// so a pending "Saving..." turns into "Saved" instead of stacking.
package notify

type Kind int

const (
	KindLoading Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

type Message struct {
	Title       string
	Description string
}

// Notifier shows notifications. Implementations must be safe for concurrent use.
type Notifier interface {
	Loading(id string, m Message)
	Success(id string, m Message)
	Error(id string, m Message)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Loading(string, Message) {}
func (Nop) Success(string, Message) {}
func (Nop) Error(string, Message)   {}

// OrNop returns n, or Nop when n is nil.
func OrNop(n Notifier) Notifier {
	if n == nil {
		return Nop{}
	}
	return n
}
