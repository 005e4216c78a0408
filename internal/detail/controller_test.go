package detail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/starford/mannaz/internal/directory"
	"github.com/starford/mannaz/internal/testutil"
)

// fakePort serves profile fixtures and records fetches per username.
type fakePort struct {
	mu       sync.Mutex
	profiles map[string]*directory.ProfileDetail
	calls    map[string]int
	err      error
	delay    time.Duration
}

func newFakePort(usernames ...string) *fakePort {
	f := &fakePort{
		profiles: make(map[string]*directory.ProfileDetail),
		calls:    make(map[string]int),
	}
	for _, u := range usernames {
		f.profiles[u] = testutil.SampleProfile(u)
	}
	return f
}

func (f *fakePort) FetchProfile(_ context.Context, username string) (*directory.ProfileDetail, error) {
	f.mu.Lock()
	f.calls[username]++
	p, ok := f.profiles[username]
	err, delay := f.err, f.delay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (f *fakePort) fetchCount(username string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[username]
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func testController(t *testing.T, port Port, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithDebounce(20 * time.Millisecond)}, opts...)
	c := New(port, NewCache(), opts...)
	t.Cleanup(c.Close)
	return c
}

func awaitSelected(t *testing.T, c *Controller, username string) {
	t.Helper()
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		s := c.Snapshot()
		return s.Selected != nil && s.Selected.Username == username
	}, "profile "+username+" not selected")
}

func TestActivateFetchesAndCaches(t *testing.T) {
	port := newFakePort("alice")
	c := testController(t, port)

	c.Activate("alice")
	awaitSelected(t, c, "alice")
	if n := port.fetchCount("alice"); n != 1 {
		t.Fatalf("fetch count = %d", n)
	}

	// Deselect then re-activate: cache hit, no second fetch.
	c.Deselect()
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return c.Snapshot().Selected == nil
	}, "profile not deselected")

	c.Activate("alice")
	awaitSelected(t, c, "alice")
	if n := port.fetchCount("alice"); n != 1 {
		t.Errorf("cache hit should not fetch again, count = %d", n)
	}
}

func TestCacheHitSetsNoLoadingFlag(t *testing.T) {
	port := newFakePort("alice")
	cache := NewCache()
	cache.Set("alice", testutil.SampleProfile("alice"))
	c := New(port, cache, WithDebounce(20*time.Millisecond))
	t.Cleanup(c.Close)

	c.Activate("alice")
	awaitSelected(t, c, "alice")

	s := c.Snapshot()
	if len(s.Loading) != 0 {
		t.Errorf("loading flags on cache hit: %v", s.Loading)
	}
	if n := port.fetchCount("alice"); n != 0 {
		t.Errorf("cache hit issued %d fetches", n)
	}
}

func TestPerUsernameLoadingFlag(t *testing.T) {
	port := newFakePort("alice", "bob")
	port.delay = 150 * time.Millisecond
	c := testController(t, port)

	c.Activate("alice")
	eventually(t, time.Second, 5*time.Millisecond, func() bool {
		return c.Snapshot().Loading["alice"]
	}, "loading flag for alice not set")

	if c.Snapshot().Loading["bob"] {
		t.Error("bob should not be loading")
	}

	awaitSelected(t, c, "alice")
	if len(c.Snapshot().Loading) != 0 {
		t.Error("loading flag not cleared after fetch")
	}
}

func TestFetchFailureSetsGenericMessage(t *testing.T) {
	port := newFakePort()
	port.err = errors.New("boom")
	c := testController(t, port)

	c.Activate("ghost")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		s := c.Snapshot()
		return s.Message == FailureMessage && len(s.Loading) == 0
	}, "failure message not set")

	if c.Snapshot().Selected != nil {
		t.Error("selected should stay empty on failure")
	}
}

func TestDeselectKeepsCache(t *testing.T) {
	port := newFakePort("alice")
	cache := NewCache()
	c := New(port, cache, WithDebounce(20*time.Millisecond))
	t.Cleanup(c.Close)

	c.Activate("alice")
	awaitSelected(t, c, "alice")
	c.Deselect()
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return c.Snapshot().Selected == nil
	}, "profile not deselected")

	if cache.Len() != 1 {
		t.Errorf("cache len = %d after deselect", cache.Len())
	}
}

func TestStrengthFilterOrSemantics(t *testing.T) {
	port := newFakePort("alice")
	c := testController(t, port)

	c.Activate("alice")
	awaitSelected(t, c, "alice")

	// "react, node" matches "React Native" and "Node.js" case-insensitively.
	c.SetStrengthFilter("react, node")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return c.Snapshot().StrengthTotal == 2
	}, "OR filter not applied")

	names := map[string]bool{}
	for _, row := range c.Snapshot().VisibleStrengths {
		names[row.First.Name] = true
		if row.Second != nil {
			names[row.Second.Name] = true
		}
	}
	if !names["Node.js"] || !names["React Native"] {
		t.Errorf("filtered names = %v", names)
	}
}

func TestShortFilterRevertsToFullList(t *testing.T) {
	port := newFakePort("alice")
	c := testController(t, port)

	c.Activate("alice")
	awaitSelected(t, c, "alice")

	c.SetStrengthFilter("react")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return c.Snapshot().StrengthTotal == 1
	}, "filter not applied")

	c.SetStrengthFilter("re")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		s := c.Snapshot()
		return s.StrengthTotal == 4 && s.StrengthPage == 1
	}, "short filter did not revert to full list")
}

func TestSelectionChangeResetsFilterState(t *testing.T) {
	port := newFakePort("alice", "bob")
	c := testController(t, port)

	c.Activate("alice")
	awaitSelected(t, c, "alice")

	c.SetStrengthFilter("node")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return c.Snapshot().StrengthTotal == 1
	}, "filter not applied")

	c.Activate("bob")
	awaitSelected(t, c, "bob")

	s := c.Snapshot()
	if s.FilterText != "" {
		t.Errorf("filter text = %q after selection change", s.FilterText)
	}
	if s.StrengthTotal != 4 || s.StrengthPage != 1 {
		t.Errorf("strengths not reset: total=%d page=%d", s.StrengthTotal, s.StrengthPage)
	}
}

// A profile with 13 strengths at page size 12: page 1 shows 6 full rows,
// page 2 shows one row with an empty second cell.
func TestStrengthPaginationAndPairing(t *testing.T) {
	port := newFakePort()
	profile := testutil.SampleProfile("carol")
	profile.Strengths = nil
	for i := 0; i < 13; i++ {
		profile.Strengths = append(profile.Strengths, directory.Strength{Name: fmt.Sprintf("Skill %d", i+1)})
	}
	port.profiles["carol"] = profile
	c := testController(t, port)

	c.Activate("carol")
	awaitSelected(t, c, "carol")

	s := c.Snapshot()
	if s.StrengthTotalPages != 2 || len(s.VisibleStrengths) != 6 {
		t.Fatalf("page 1: totalPages=%d rows=%d", s.StrengthTotalPages, len(s.VisibleStrengths))
	}

	c.NextStrengthPage()
	s = c.Snapshot()
	if s.StrengthPage != 2 || len(s.VisibleStrengths) != 1 {
		t.Fatalf("page 2: page=%d rows=%d", s.StrengthPage, len(s.VisibleStrengths))
	}
	if s.VisibleStrengths[0].Second != nil {
		t.Error("odd tail row should have an empty second cell")
	}

	c.NextStrengthPage()
	if s = c.Snapshot(); s.StrengthPage != 2 {
		t.Errorf("NextStrengthPage past the end moved to %d", s.StrengthPage)
	}
	c.PrevStrengthPage()
	c.PrevStrengthPage()
	if s = c.Snapshot(); s.StrengthPage != 1 {
		t.Errorf("PrevStrengthPage landed on %d", s.StrengthPage)
	}
}

func TestFilterResetsStrengthPage(t *testing.T) {
	port := newFakePort()
	profile := testutil.SampleProfile("carol")
	profile.Strengths = nil
	for i := 0; i < 13; i++ {
		profile.Strengths = append(profile.Strengths, directory.Strength{Name: fmt.Sprintf("Skill %d", i+1)})
	}
	port.profiles["carol"] = profile
	c := testController(t, port)

	c.Activate("carol")
	awaitSelected(t, c, "carol")
	c.NextStrengthPage()
	if s := c.Snapshot(); s.StrengthPage != 2 {
		t.Fatalf("page = %d", s.StrengthPage)
	}

	c.SetStrengthFilter("skill 1")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		s := c.Snapshot()
		return s.StrengthPage == 1 && s.StrengthTotal == 5 // Skill 1, 10..13
	}, "filter did not reset the strength page")
}

func TestLinkedInDerivedField(t *testing.T) {
	port := newFakePort("alice")
	c := testController(t, port)

	c.Activate("alice")
	awaitSelected(t, c, "alice")
	if got := c.Snapshot().LinkedIn; got != "https://linkedin.com/in/alice" {
		t.Errorf("linkedIn = %q", got)
	}
}
