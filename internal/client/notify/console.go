package notify

import (
	"fmt"
	"io"
	"sync"
)

// Console prints notifications to a terminal, one line each. A line that
// replaces an active notification is prefixed with "↻". Loading notifications
// stay active until replaced; success and error notifications close their id.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	active map[string]Kind
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, active: make(map[string]Kind)}
}

func (c *Console) Loading(id string, m Message) { c.show(id, KindLoading, m) }
func (c *Console) Success(id string, m Message) { c.show(id, KindSuccess, m) }
func (c *Console) Error(id string, m Message)   { c.show(id, KindError, m) }

func (c *Console) show(id string, k Kind, m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := ""
	if _, ok := c.active[id]; ok {
		prefix = "↻ "
	}
	if k == KindLoading {
		c.active[id] = k
	} else {
		delete(c.active, id)
	}

	line := prefix + symbol(k) + " " + m.Title
	if m.Description != "" {
		line += ": " + m.Description
	}
	_, _ = fmt.Fprintln(c.w, line)
}

// Active reports whether id has a loading notification on screen.
func (c *Console) Active(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[id]
	return ok
}

func symbol(k Kind) string {
	switch k {
	case KindLoading:
		return "…"
	case KindSuccess:
		return "✓"
	case KindError:
		return "✗"
	default:
		return "?"
	}
}
