package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starford/mannaz/internal/directory"
	"github.com/starford/mannaz/internal/testutil"
)

// fakePort records search calls and serves canned results.
type fakePort struct {
	mu      sync.Mutex
	calls   []string
	results []directory.ProfileSummary
	err     error
	delay   time.Duration
}

func (f *fakePort) SearchProfiles(_ context.Context, query string) ([]directory.ProfileSummary, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	results, err, delay := f.results, f.err, f.delay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return results, err
}

func (f *fakePort) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakePort) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
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

func testController(t *testing.T, port Port) *Controller {
	t.Helper()
	c := New(port, WithDebounce(20*time.Millisecond))
	t.Cleanup(c.Close)
	return c
}

func TestShortQueryIsSuppressed(t *testing.T) {
	port := &fakePort{}
	c := testController(t, port)

	c.SetQuery("ab")
	time.Sleep(100 * time.Millisecond)

	if n := port.callCount(); n != 0 {
		t.Errorf("expected no search calls, got %d", n)
	}
	if s := c.Snapshot(); s.Query != "ab" {
		t.Errorf("query text should be kept, got %q", s.Query)
	}
}

func TestDebouncedSearchUsesTrimmedQuery(t *testing.T) {
	port := &fakePort{results: testutil.Summaries(3)}
	c := testController(t, port)

	c.SetQuery("  developer  ")

	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return c.Snapshot().Total == 3
	}, "results not applied")

	if n := port.callCount(); n != 1 {
		t.Fatalf("expected exactly one call, got %d", n)
	}
	if q := port.lastCall(); q != "developer" {
		t.Errorf("query = %q, want trimmed", q)
	}
}

func TestRapidTypingIssuesSingleCall(t *testing.T) {
	port := &fakePort{results: testutil.Summaries(1)}
	c := testController(t, port)

	for _, q := range []string{"dev", "deve", "devel", "developer"} {
		c.SetQuery(q)
		time.Sleep(2 * time.Millisecond)
	}

	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return c.Snapshot().Total == 1
	}, "results not applied")

	if n := port.callCount(); n != 1 {
		t.Fatalf("expected one call for the final value, got %d", n)
	}
	if q := port.lastCall(); q != "developer" {
		t.Errorf("query = %q, want final keystroke value", q)
	}
}

func TestShrinkingBelowGateClearsResults(t *testing.T) {
	port := &fakePort{results: testutil.Summaries(25)}
	c := testController(t, port)

	c.SetQuery("developer")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return c.Snapshot().Total == 25
	}, "results not applied")
	c.NextPage()

	c.SetQuery("de")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		s := c.Snapshot()
		return s.Total == 0 && s.Page == 1
	}, "results not cleared after query shrank")

	if n := port.callCount(); n != 1 {
		t.Errorf("short query should not hit the port, calls = %d", n)
	}
	if s := c.Snapshot(); s.Query != "de" {
		t.Errorf("query text should survive the clear, got %q", s.Query)
	}
}

func TestSearchFailureSetsGenericMessage(t *testing.T) {
	port := &fakePort{err: errors.New("boom")}
	c := testController(t, port)

	c.SetQuery("developer")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		s := c.Snapshot()
		return s.Message == FailureMessage && !s.Loading
	}, "failure message not set")
}

func TestLoadingFlagDuringSearch(t *testing.T) {
	port := &fakePort{results: testutil.Summaries(1), delay: 150 * time.Millisecond}
	c := testController(t, port)

	c.SetQuery("developer")
	eventually(t, time.Second, 5*time.Millisecond, func() bool {
		return c.Snapshot().Loading
	}, "loading flag not set while in flight")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		s := c.Snapshot()
		return !s.Loading && s.Total == 1
	}, "loading flag not cleared after completion")
}

func TestNewSearchClearsPreviousError(t *testing.T) {
	port := &fakePort{err: errors.New("boom")}
	c := testController(t, port)

	c.SetQuery("developer")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return c.Snapshot().Message == FailureMessage
	}, "failure message not set")

	port.mu.Lock()
	port.err = nil
	port.results = testutil.Summaries(2)
	port.mu.Unlock()

	c.SetQuery("designer")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		s := c.Snapshot()
		return s.Message == "" && s.Total == 2
	}, "error not cleared by successful retry")
}

// search("developer") returns 25 summaries: page 1 shows items 1-10 with
// 3 total pages; two NextPage calls land on page 3 with items 21-25;
// further paging in either direction past the bounds is a no-op.
func TestPaginationScenario(t *testing.T) {
	port := &fakePort{results: testutil.Summaries(25)}
	c := testController(t, port)

	c.SetQuery("developer")
	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return c.Snapshot().Total == 25
	}, "results not applied")

	s := c.Snapshot()
	if s.TotalPages != 3 || s.Page != 1 {
		t.Fatalf("page=%d totalPages=%d", s.Page, s.TotalPages)
	}
	if len(s.Visible) != 10 || s.Visible[0].Username != "user1" || s.Visible[9].Username != "user10" {
		t.Fatalf("page 1 visible = %d items", len(s.Visible))
	}

	c.NextPage()
	c.NextPage()
	s = c.Snapshot()
	if s.Page != 3 || len(s.Visible) != 5 || s.Visible[0].Username != "user21" || s.Visible[4].Username != "user25" {
		t.Fatalf("page 3 = %+v", s)
	}

	c.NextPage()
	if s = c.Snapshot(); s.Page != 3 {
		t.Errorf("NextPage past the end moved to %d", s.Page)
	}

	c.PrevPage()
	c.PrevPage()
	c.PrevPage()
	if s = c.Snapshot(); s.Page != 1 {
		t.Errorf("PrevPage sequence landed on %d", s.Page)
	}
	c.PrevPage()
	if s = c.Snapshot(); s.Page != 1 {
		t.Errorf("PrevPage below 1 moved to %d", s.Page)
	}
}

func TestSelectDelegates(t *testing.T) {
	var selected string
	c := New(&fakePort{}, WithDebounce(20*time.Millisecond), WithActivate(func(u string) { selected = u }))
	t.Cleanup(c.Close)

	c.Select("alice")
	if selected != "alice" {
		t.Errorf("selected = %q", selected)
	}
}
