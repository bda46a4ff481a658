package notify

import "sync"

type Event struct {
	ID      string
	Kind    Kind
	Message Message
}

// Recorder keeps every notification in order. The current notification for an
// id is the last event recorded with it.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Loading(id string, m Message) { r.add(id, KindLoading, m) }
func (r *Recorder) Success(id string, m Message) { r.add(id, KindSuccess, m) }
func (r *Recorder) Error(id string, m Message)   { r.add(id, KindError, m) }

func (r *Recorder) add(id string, k Kind, m Message) {
	r.mu.Lock()
	r.events = append(r.events, Event{ID: id, Kind: k, Message: m})
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Current returns the notification shown for id, if any.
func (r *Recorder) Current(id string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].ID == id {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
