// Package detail implements the profile detail controller: the selected
// profile, a session-scoped detail cache, per-username loading flags,
// and a debounced filter with pagination over the strengths list.
package detail

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

// Port is the profile fetch dependency.
type Port interface {
	FetchProfile(ctx context.Context, username string) (*directory.ProfileDetail, error)
}

// FailureMessage is the only user-facing message for a failed fetch.
const FailureMessage = "Could not load profile details. Please try again later."

// minFilterLen gates the strength filter the same way the search query
// is gated; shorter input reverts to the unfiltered list.
const minFilterLen = 3

// Event kinds published after a state change.
const (
	EventLoading = "profile.loading"
	EventUpdated = "profile.updated"
)

// EventFunc is called after a state change. Called from the controller
// loop; must not block.
type EventFunc func(kind string)

// Snapshot is a consistent read of the controller state. Strength pages
// and pairs are derived from the filtered list on every read.
type Snapshot struct {
	Selected           *directory.ProfileDetail
	Loading            map[string]bool
	Message            string
	LinkedIn           string
	FilterText         string
	StrengthPage       int
	StrengthTotal      int
	StrengthTotalPages int
	VisibleStrengths   []page.Pair[directory.Strength]
}

type fetchDone struct {
	username string
	profile  *directory.ProfileDetail
	err      error
}

// Controller owns the detail state machine. Same concurrency model as
// the search controller: one event loop goroutine owns all state,
// including the injected cache; public methods go through channels.
type Controller struct {
	port     Port
	cache    *Cache
	debounce time.Duration
	pageSize int
	logger   *slog.Logger
	events   EventFunc

	activateCh chan string
	deselectCh chan struct{}
	filterCh   chan string
	pageCh     chan int
	snapshotCh chan chan Snapshot
	doneCh     chan fetchDone

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet period before the strength filter is
// evaluated.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithPageSize sets the strength page size.
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

// New creates a detail controller around the injected cache and starts
// its event loop.
func New(port Port, cache *Cache, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		port:       port,
		cache:      cache,
		debounce:   300 * time.Millisecond,
		pageSize:   12,
		logger:     slog.Default(),
		activateCh: make(chan string),
		deselectCh: make(chan struct{}),
		filterCh:   make(chan string),
		pageCh:     make(chan int),
		snapshotCh: make(chan chan Snapshot),
		doneCh:     make(chan fetchDone),
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

// Close stops the event loop and any pending filter timer.
func (c *Controller) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.cancel()
	}
	<-c.stopped
}

// Activate selects a profile: from cache when present (no network, no
// loading flag), otherwise via the fetch port.
func (c *Controller) Activate(username string) {
	select {
	case c.activateCh <- username:
	case <-c.ctx.Done():
	}
}

// Deselect clears the selected profile. The cache and loading flags are
// untouched; cached profiles persist for the session.
func (c *Controller) Deselect() {
	select {
	case c.deselectCh <- struct{}{}:
	case <-c.ctx.Done():
	}
}

// SetStrengthFilter stores the filter text immediately and re-arms the
// debounce timer.
func (c *Controller) SetStrengthFilter(text string) {
	select {
	case c.filterCh <- text:
	case <-c.ctx.Done():
	}
}

// NextStrengthPage advances the strength page; a no-op on the last page.
func (c *Controller) NextStrengthPage() { c.movePage(1) }

// PrevStrengthPage moves back one strength page; a no-op on the first.
func (c *Controller) PrevStrengthPage() { c.movePage(-1) }

func (c *Controller) movePage(delta int) {
	select {
	case c.pageCh <- delta:
	case <-c.ctx.Done():
	}
}

// Snapshot returns a consistent copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	resp := make(chan Snapshot, 1)
	select {
	case c.snapshotCh <- resp:
	case <-c.ctx.Done():
		return Snapshot{StrengthPage: 1}
	}
	select {
	case s := <-resp:
		return s
	case <-c.ctx.Done():
		return Snapshot{StrengthPage: 1}
	}
}

// loopState is the mutable state owned by the event loop.
type loopState struct {
	selected     *directory.ProfileDetail
	loading      map[string]bool
	message      string
	filterText   string
	filtered     []directory.Strength
	strengthPage int
}

func (c *Controller) run() {
	defer close(c.stopped)

	st := &loopState{
		loading:      make(map[string]bool),
		strengthPage: 1,
	}

	var filterTimer *time.Timer
	var debounceCh <-chan time.Time
	arm := func() {
		if filterTimer == nil {
			filterTimer = time.NewTimer(c.debounce)
			debounceCh = filterTimer.C
		} else {
			filterTimer.Reset(c.debounce)
		}
	}
	disarm := func() {
		if filterTimer != nil {
			filterTimer.Stop()
		}
	}

	for {
		select {
		case <-c.ctx.Done():
			disarm()
			return

		case username := <-c.activateCh:
			if p, ok := c.cache.Get(username); ok {
				observability.CacheLookupsTotal.WithLabelValues("hit").Inc()
				st.selected = p
				st.message = ""
				disarm()
				c.resetStrengths(st)
				c.emit(EventUpdated)
				continue
			}
			observability.CacheLookupsTotal.WithLabelValues("miss").Inc()
			st.loading[username] = true
			st.selected = nil
			st.message = ""
			disarm()
			c.resetStrengths(st)
			c.emit(EventLoading)
			c.startFetch(username)

		case done := <-c.doneCh:
			delete(st.loading, done.username)
			if done.err != nil {
				st.message = FailureMessage
				observability.ProfileFetchesTotal.WithLabelValues("error").Inc()
				c.logger.Warn("detail: fetch failed",
					slog.String("username", done.username),
					slog.String("error", done.err.Error()))
				c.emit(EventUpdated)
				continue
			}
			observability.ProfileFetchesTotal.WithLabelValues("ok").Inc()
			c.cache.Set(done.username, done.profile)
			st.selected = done.profile
			disarm()
			c.resetStrengths(st)
			c.emit(EventUpdated)

		case <-c.deselectCh:
			st.selected = nil
			disarm()
			c.resetStrengths(st)
			c.emit(EventUpdated)

		case text := <-c.filterCh:
			st.filterText = text
			arm()

		case <-debounceCh:
			c.applyFilter(st)
			c.emit(EventUpdated)

		case delta := <-c.pageCh:
			next := page.Clamp(st.strengthPage+delta, page.Total(len(st.filtered), c.pageSize))
			if next != st.strengthPage {
				st.strengthPage = next
				c.emit(EventUpdated)
			}

		case resp := <-c.snapshotCh:
			resp <- c.snapshot(st)
		}
	}
}

// resetStrengths re-seeds the filter state from the current selection:
// empty filter text, full strengths as the filtered list, page 1.
func (c *Controller) resetStrengths(st *loopState) {
	st.filterText = ""
	if st.selected != nil {
		st.filtered = st.selected.Strengths
	} else {
		st.filtered = nil
	}
	st.strengthPage = 1
}

// applyFilter evaluates the debounced filter text. Terms are comma
// separated and OR-matched case-insensitively against strength names;
// input below the gate reverts to the full list. Both branches reset
// the strength page.
func (c *Controller) applyFilter(st *loopState) {
	var base []directory.Strength
	if st.selected != nil {
		base = st.selected.Strengths
	}

	trimmed := strings.TrimSpace(st.filterText)
	if utf8.RuneCountInString(trimmed) < minFilterLen {
		st.filtered = base
		st.strengthPage = 1
		return
	}

	var terms []string
	for _, raw := range strings.Split(trimmed, ",") {
		if term := strings.ToLower(strings.TrimSpace(raw)); term != "" {
			terms = append(terms, term)
		}
	}

	var out []directory.Strength
	for _, s := range base {
		name := strings.ToLower(s.Name)
		for _, term := range terms {
			if strings.Contains(name, term) {
				out = append(out, s)
				break
			}
		}
	}
	st.filtered = out
	st.strengthPage = 1
}

func (c *Controller) snapshot(st *loopState) Snapshot {
	loading := make(map[string]bool, len(st.loading))
	for k, v := range st.loading {
		loading[k] = v
	}

	s := Snapshot{
		Selected:           st.selected,
		Loading:            loading,
		Message:            st.message,
		FilterText:         st.filterText,
		StrengthPage:       st.strengthPage,
		StrengthTotal:      len(st.filtered),
		StrengthTotalPages: page.Total(len(st.filtered), c.pageSize),
		VisibleStrengths:   page.Pairs(page.Slice(st.filtered, st.strengthPage, c.pageSize)),
	}
	if st.selected != nil {
		if url, ok := st.selected.LinkedInURL(); ok {
			s.LinkedIn = url
		}
	}
	return s
}

// startFetch issues the port call off-loop and posts the completion
// back. In-flight fetches are never cancelled mid-session; if another
// profile is activated meanwhile, completions apply in arrival order.
func (c *Controller) startFetch(username string) {
	go func() {
		p, err := c.port.FetchProfile(c.ctx, username)
		select {
		case c.doneCh <- fetchDone{username: username, profile: p, err: err}:
		case <-c.ctx.Done():
		}
	}()
}

func (c *Controller) emit(kind string) {
	if c.events != nil {
		c.events(kind)
	}
}
