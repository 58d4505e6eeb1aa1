package outfit

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/smart-wardrobe/pkg/errors"
	"github.com/yanqian/smart-wardrobe/pkg/metrics"
	"github.com/yanqian/smart-wardrobe/pkg/util"
)

// Fetcher performs the single outbound call of a request cycle.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (Outcome, error)
}

// Config wires runtime defaults for the controller.
type Config struct {
	DefaultCity string
	DefaultMode Mode
}

// Controller owns the query state of one client session. Submit never blocks;
// the fetch runs on its own goroutine and the most recently submitted cycle is
// the only one allowed to settle the state.
type Controller struct {
	fetcher  Fetcher
	logger   *slog.Logger
	counters *metrics.CycleCounters
	now      func() time.Time
	newID    func() string

	base       context.Context
	stopAll    context.CancelFunc
	mu         sync.Mutex
	input      Query
	state      State
	cancelLast context.CancelFunc
	changed    chan struct{}
}

// NewController builds an idle controller seeded with the configured input.
func NewController(cfg Config, fetcher Fetcher, counters *metrics.CycleCounters, logger *slog.Logger) *Controller {
	mode := cfg.DefaultMode
	if mode != ModeBasic {
		mode = ModeSmart
	}
	if counters == nil {
		counters = metrics.NewCycleCounters()
	}
	base, stop := context.WithCancel(context.Background())
	return &Controller{
		fetcher:  fetcher,
		logger:   logger.With("component", "outfit.controller"),
		counters: counters,
		now:      util.NowUTC,
		newID:    uuid.NewString,
		base:     base,
		stopAll:  stop,
		input:    Query{City: cfg.DefaultCity, Mode: mode},
		state:    State{Phase: PhaseIdle},
		changed:  make(chan struct{}),
	}
}

// SetCity replaces the city text used by the next Trigger.
func (c *Controller) SetCity(city string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input.City = city
}

// SetMode switches the mode. It never starts a request; the next View simply
// re-derives the held state under the new mode.
func (c *Controller) SetMode(mode Mode) error {
	if mode != ModeBasic && mode != ModeSmart {
		return apperrors.Wrap(CodeInvalidInput, "mode must be basic or smart", nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.input.Mode != mode {
		c.input.Mode = mode
		c.notifyLocked()
	}
	return nil
}

// Input returns the current city and mode.
func (c *Controller) Input() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Trigger submits the current input. The button and the Enter key both land here.
func (c *Controller) Trigger() (Ticket, error) {
	return c.Submit(c.Input())
}

// Submit starts a fresh request cycle for q and returns immediately. A cycle
// still in flight is superseded: its context is cancelled and whatever it
// delivers later is dropped.
func (c *Controller) Submit(q Query) (Ticket, error) {
	query, err := normalizeQuery(q)
	if err != nil {
		return Ticket{}, err
	}

	c.mu.Lock()
	if c.cancelLast != nil {
		c.cancelLast()
	}
	ctx, cancel := context.WithCancel(c.base)
	c.cancelLast = cancel

	seq := c.state.Seq + 1
	cycleID := c.newID()
	c.state = State{
		Phase:   PhaseLoading,
		Seq:     seq,
		CycleID: cycleID,
		Query:   query,
		Outcome: c.state.Outcome,
	}
	c.notifyLocked()
	c.mu.Unlock()

	c.counters.Submitted()
	c.logger.Info("outfit cycle started", "cycle_id", cycleID, "seq", seq, "city", query.City, "mode", query.Mode)

	go c.run(ctx, cancel, seq, cycleID, query)

	return Ticket{Seq: seq, CycleID: cycleID, Query: query}, nil
}

// SubmitInput stores q as the current input and submits it. Rejected input
// leaves the held city and mode untouched.
func (c *Controller) SubmitInput(q Query) (Ticket, error) {
	if _, err := normalizeQuery(q); err != nil {
		return Ticket{}, err
	}
	c.mu.Lock()
	c.input.City = q.City
	if c.input.Mode != q.Mode {
		c.input.Mode = q.Mode
		c.notifyLocked()
	}
	c.mu.Unlock()
	return c.Submit(q)
}

func normalizeQuery(q Query) (Query, error) {
	city := strings.TrimSpace(q.City)
	if city == "" {
		return Query{}, apperrors.Wrap(CodeInvalidInput, "city cannot be empty", nil)
	}
	if q.Mode != ModeBasic && q.Mode != ModeSmart {
		return Query{}, apperrors.Wrap(CodeInvalidInput, "mode must be basic or smart", nil)
	}
	return Query{City: city, Mode: q.Mode}, nil
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, seq uint64, cycleID string, q Query) {
	defer cancel()
	outcome, err := c.fetch(WithCycleID(ctx, cycleID), q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.state.Seq {
		c.counters.Superseded()
		c.logger.Debug("outfit cycle superseded", "cycle_id", cycleID, "seq", seq, "current_seq", c.state.Seq)
		return
	}
	c.cancelLast = nil

	next := State{
		Phase:     PhaseSettled,
		Seq:       seq,
		CycleID:   cycleID,
		Query:     q,
		SettledAt: c.now(),
	}
	if err != nil {
		next.Err = FailureMessage(err)
		c.counters.Failed()
		c.logger.Warn("outfit cycle failed", "cycle_id", cycleID, "seq", seq, "city", q.City, "message", next.Err, "error", err)
	} else {
		next.Outcome = &outcome
		c.counters.Succeeded()
		c.logger.Info("outfit cycle settled", "cycle_id", cycleID, "seq", seq, "city", outcome.City)
	}
	c.state = next
	c.notifyLocked()
}

// fetch shields the state machine from a panicking Fetcher.
func (c *Controller) fetch(ctx context.Context, q Query) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("outfit fetcher panicked", "panic", r)
			outcome = Outcome{}
			err = apperrors.Wrap(CodeGatewayError, "fetcher panicked", nil)
		}
	}()
	return c.fetcher.Fetch(ctx, q)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View derives the view model for the current state and mode.
func (c *Controller) View() ViewModel {
	c.mu.Lock()
	state, mode := c.state, c.input.Mode
	c.mu.Unlock()
	return DeriveView(state, mode)
}

// Observe returns the current view together with a channel that is closed on
// the next state or mode change.
func (c *Controller) Observe() (ViewModel, <-chan struct{}) {
	c.mu.Lock()
	state, mode, changed := c.state, c.input.Mode, c.changed
	c.mu.Unlock()
	return DeriveView(state, mode), changed
}

// Wait blocks until cycle seq has settled or been superseded by a later
// submit, then returns the state at that moment.
func (c *Controller) Wait(ctx context.Context, seq uint64) (State, error) {
	for {
		c.mu.Lock()
		state, changed := c.state, c.changed
		c.mu.Unlock()

		if state.Seq > seq || (state.Seq == seq && state.Phase == PhaseSettled) {
			return state, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return state, ctx.Err()
		}
	}
}

// Counters exposes the cycle tallies.
func (c *Controller) Counters() metrics.CycleSnapshot {
	return c.counters.Snapshot()
}

// Close abandons any in-flight cycle. The state is left as it is.
func (c *Controller) Close() {
	c.stopAll()
}

func (c *Controller) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// FailureMessage picks the text shown for a failed cycle: the server supplied
// message when there is one, otherwise the generic message.
func FailureMessage(err error) string {
	if appErr, ok := apperrors.As(err); ok && appErr.Code == CodeServerError {
		if msg := strings.TrimSpace(appErr.Message); msg != "" {
			return msg
		}
	}
	return GenericFailureMessage
}

type cycleIDKey struct{}

// WithCycleID tags ctx with the id of the cycle it belongs to.
func WithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cycleIDKey{}, id)
}

// CycleIDFrom returns the cycle id stored by WithCycleID.
func CycleIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(cycleIDKey{}).(string)
	return id
}
