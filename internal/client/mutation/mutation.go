// Package mutation runs write operations against the API with a fixed
// lifecycle: validate, notify pending, run, apply side effects, notify the
// outcome, call hooks. It never retries.
package mutation

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/notify"
	"github.com/dmitrijs2005/catalogkeeper/internal/logging"
)

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Config describes one kind of mutation.
type Config[In, Out any] struct {
	Name string

	// NotificationID is shared by the pending, success and error
	// notifications so each replaces the previous one. Empty disables
	// notifications.
	NotificationID string
	Pending        notify.Message
	Success        notify.Message
	ClassifyError  func(err error) notify.Message

	// Validate rejects input before anything is sent. Optional.
	Validate func(in In) error
	Run      func(ctx context.Context, in In) (Out, error)
	// OnSuccess applies side effects of a successful Run, such as storing
	// tokens or invalidating queries. An error here fails the mutation.
	OnSuccess func(ctx context.Context, in In, out Out) error

	OnSettledSuccess func(out Out)
	OnSettledError   func(err error)

	Notifier notify.Notifier
	Logger   logging.Logger
}

type callOptions[Out any] struct {
	onSuccess func(Out)
	onError   func(error)
}

// CallOption adds hooks to a single Mutate call. They run after the hooks
// from Config.
type CallOption[Out any] func(*callOptions[Out])

func WithOnSuccess[Out any](fn func(Out)) CallOption[Out] {
	return func(o *callOptions[Out]) { o.onSuccess = fn }
}

func WithOnError[Out any](fn func(error)) CallOption[Out] {
	return func(o *callOptions[Out]) { o.onError = fn }
}

type Mutation[In, Out any] struct {
	cfg      Config[In, Out]
	notifier notify.Notifier
	log      logging.Logger

	mu     sync.Mutex
	seq    uint64
	status Status
	err    error
}

func New[In, Out any](cfg Config[In, Out]) *Mutation[In, Out] {
	return &Mutation[In, Out]{
		cfg:      cfg,
		notifier: notify.OrNop(cfg.Notifier),
		log:      logging.OrNop(cfg.Logger).With("mutation", cfg.Name),
	}
}

// Status reports the state of the most recent Mutate call.
func (m *Mutation[In, Out]) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Mutation[In, Out]) IsPending() bool { return m.Status() == StatusPending }

// Err returns the error of the most recent Mutate call, if it failed.
func (m *Mutation[In, Out]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Reset returns the mutation to idle. A call still running will not change
// the status when it finishes.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	m.seq++
	m.status = StatusIdle
	m.err = nil
	m.mu.Unlock()
}

func (m *Mutation[In, Out]) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

func (m *Mutation[In, Out]) set(seq uint64, s Status, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		return
	}
	m.status = s
	m.err = err
}

// Mutate runs the mutation once. The Run and OnSuccess steps are not
// cancelled by ctx: once a request is sent, its effects are applied.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In, opts ...CallOption[Out]) (Out, error) {
	var call callOptions[Out]
	for _, opt := range opts {
		opt(&call)
	}
	var zero Out
	seq := m.begin()

	if m.cfg.Validate != nil {
		if err := m.cfg.Validate(in); err != nil {
			m.set(seq, StatusError, err)
			m.log.Debug(ctx, "mutation input rejected", "error", err)
			m.settledError(err, call)
			return zero, err
		}
	}

	m.set(seq, StatusPending, nil)
	if m.cfg.NotificationID != "" {
		m.notifier.Loading(m.cfg.NotificationID, m.cfg.Pending)
	}

	rctx := context.WithoutCancel(ctx)
	out, err := m.cfg.Run(rctx, in)
	if err == nil && m.cfg.OnSuccess != nil {
		err = m.cfg.OnSuccess(rctx, in, out)
	}

	if err != nil {
		m.set(seq, StatusError, err)
		m.log.Warn(ctx, "mutation failed", "error", err)
		if m.cfg.NotificationID != "" {
			m.notifier.Error(m.cfg.NotificationID, m.classify(err))
		}
		m.settledError(err, call)
		return zero, err
	}

	m.set(seq, StatusSuccess, nil)
	m.log.Info(ctx, "mutation succeeded")
	if m.cfg.NotificationID != "" {
		m.notifier.Success(m.cfg.NotificationID, m.cfg.Success)
	}
	if m.cfg.OnSettledSuccess != nil {
		m.cfg.OnSettledSuccess(out)
	}
	if call.onSuccess != nil {
		call.onSuccess(out)
	}
	return out, nil
}

func (m *Mutation[In, Out]) classify(err error) notify.Message {
	if m.cfg.ClassifyError != nil {
		return m.cfg.ClassifyError(err)
	}
	return notify.Message{Title: "Something went wrong", Description: err.Error()}
}

func (m *Mutation[In, Out]) settledError(err error, call callOptions[Out]) {
	if m.cfg.OnSettledError != nil {
		m.cfg.OnSettledError(err)
	}
	if call.onError != nil {
		call.onError(err)
	}
}
