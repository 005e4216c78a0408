// Package search implements the debounced profile search controller:
// query state, result list, loading/error state, and top-level
// pagination over search results.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/starford/mannaz/internal/directory"
	"github.com/starford/mannaz/internal/observability"
	"github.com/starford/mannaz/internal/page"
)

// Port is the search dependency. Consumers provide the directory client
// or a fake in tests.
type Port interface {
	SearchProfiles(ctx context.Context, query string) ([]directory.ProfileSummary, error)
}

// FailureMessage is the only user-facing message for a failed search.
// No error detail or retry is surfaced; the user re-types to retry.
const FailureMessage = "Could not fetch profiles. Please try again later."

// minQueryLen gates which queries are searchable. Shorter input is
// suppressed silently, never surfaced as an error.
const minQueryLen = 3

// Event kinds published after a state change.
const (
	EventLoading = "search.loading"
	EventUpdated = "search.updated"
)

// EventFunc is called after a state change so a UI can re-read the
// snapshot. Called from the controller loop; must not block.
type EventFunc func(kind string)

// Snapshot is a consistent read of the controller state. Visible and
// TotalPages are derived from the result list on every read, never stored.
type Snapshot struct {
	Query      string
	Loading    bool
	Message    string
	Page       int
	Total      int
	TotalPages int
	Visible    []directory.ProfileSummary
}

type searchDone struct {
	results []directory.ProfileSummary
	err     error
}

// Controller owns the search state machine.
//
// Concurrency model: a single internal event loop (goroutine) owns all
// mutable state. Public methods communicate with this loop through
// channels, so no mutexes are required. Network calls run in short-lived
// goroutines and post completions back into the loop; completions apply
// in arrival order with no request sequencing, so under overlapping
// searches the last response to arrive wins.
type Controller struct {
	port     Port
	debounce time.Duration
	pageSize int
	logger   *slog.Logger
	events   EventFunc
	activate func(username string)

	queryCh    chan string
	pageCh     chan int
	snapshotCh chan chan Snapshot
	doneCh     chan searchDone

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet period before a query is evaluated.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithPageSize sets the result page size.
func WithPageSize(n int) Option {
	return func(c *Controller) { c.pageSize = n }
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithEvents sets the state-change callback.
func WithEvents(fn EventFunc) Option {
	return func(c *Controller) { c.events = fn }
}

// WithActivate sets the delegate invoked when a result is selected,
// normally the detail controller's Activate.
func WithActivate(fn func(username string)) Option {
	return func(c *Controller) { c.activate = fn }
}

// New creates a search controller and starts its event loop.
func New(port Port, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		port:       port,
		debounce:   500 * time.Millisecond,
		pageSize:   10,
		logger:     slog.Default(),
		queryCh:    make(chan string),
		pageCh:     make(chan int),
		snapshotCh: make(chan chan Snapshot),
		doneCh:     make(chan searchDone),
		ctx:        ctx,
		cancel:     cancel,
		stopped:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c
}

// Close stops the event loop and the pending debounce timer. In-flight
// port calls are abandoned; their results are discarded.
func (c *Controller) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.cancel()
	}
	<-c.stopped
}

// SetQuery stores the query text immediately and re-arms the debounce
// timer. Only the last call before the quiet period elapses triggers an
// evaluation.
func (c *Controller) SetQuery(text string) {
	select {
	case c.queryCh <- text:
	case <-c.ctx.Done():
	}
}

// NextPage advances the current page; a no-op on the last page.
func (c *Controller) NextPage() { c.movePage(1) }

// PrevPage moves back one page; a no-op on the first page.
func (c *Controller) PrevPage() { c.movePage(-1) }

func (c *Controller) movePage(delta int) {
	select {
	case c.pageCh <- delta:
	case <-c.ctx.Done():
	}
}

// Select activates a result. Per-profile loading state is owned by the
// detail controller, so nothing here touches search state.
func (c *Controller) Select(username string) {
	if c.activate != nil {
		c.activate(username)
	}
}

// Snapshot returns a consistent copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	resp := make(chan Snapshot, 1)
	select {
	case c.snapshotCh <- resp:
	case <-c.ctx.Done():
		return Snapshot{Page: 1}
	}
	select {
	case s := <-resp:
		return s
	case <-c.ctx.Done():
		return Snapshot{Page: 1}
	}
}

func (c *Controller) run() {
	defer close(c.stopped)

	var (
		query   string
		results []directory.ProfileSummary
		loading bool
		message string
		current = 1
	)

	// debounceTimer delays query evaluation until input goes quiet.
	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time
	arm := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(c.debounce)
			debounceCh = debounceTimer.C
		} else {
			debounceTimer.Reset(c.debounce)
		}
	}

	for {
		select {
		case <-c.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case text := <-c.queryCh:
			query = text
			arm()

		case <-debounceCh:
			trimmed := strings.TrimSpace(query)
			if utf8.RuneCountInString(trimmed) >= minQueryLen {
				loading = true
				message = ""
				current = 1
				c.emit(EventLoading)
				c.startSearch(trimmed)
			} else if len(results) > 0 {
				// Query shrank below the gate: drop stale results but
				// leave the typed text alone.
				results = nil
				current = 1
				c.emit(EventUpdated)
			}

		case done := <-c.doneCh:
			loading = false
			if done.err != nil {
				message = FailureMessage
				observability.SearchesTotal.WithLabelValues("error").Inc()
				c.logger.Warn("search: port call failed", slog.String("error", done.err.Error()))
			} else {
				results = done.results
				observability.SearchesTotal.WithLabelValues("ok").Inc()
				c.logger.Debug("search: results applied", slog.Int("count", len(results)))
			}
			c.emit(EventUpdated)

		case delta := <-c.pageCh:
			next := page.Clamp(current+delta, page.Total(len(results), c.pageSize))
			if next != current {
				current = next
				c.emit(EventUpdated)
			}

		case resp := <-c.snapshotCh:
			visible := page.Slice(results, current, c.pageSize)
			resp <- Snapshot{
				Query:      query,
				Loading:    loading,
				Message:    message,
				Page:       current,
				Total:      len(results),
				TotalPages: page.Total(len(results), c.pageSize),
				Visible:    append([]directory.ProfileSummary(nil), visible...),
			}
		}
	}
}

// startSearch issues the port call off-loop and posts the completion
// back. There is deliberately no cancellation of in-flight requests.
func (c *Controller) startSearch(query string) {
	go func() {
		results, err := c.port.SearchProfiles(c.ctx, query)
		select {
		case c.doneCh <- searchDone{results: results, err: err}:
		case <-c.ctx.Done():
		}
	}()
}

func (c *Controller) emit(kind string) {
	if c.events != nil {
		c.events(kind)
	}
}
