package registry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quran-omni/omnisearch/internal/domain"
)

type mockLister struct {
	spaces map[string]string
	err    error
	calls  int
}

func (m *mockLister) ListSpaces(_ context.Context) (map[string]string, error) {
	m.calls++
	return m.spaces, m.err
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestResolve_RefreshesAndCaches(t *testing.T) {
	lister := &mockLister{spaces: map[string]string{
		"quran":   "sp-q",
		"tafsir":  "sp-t",
		"unknown": "sp-x",
	}}
	clock := newClock()
	reg := New(lister, nil, 10*time.Minute, nil, WithClock(clock.Now))

	mapping := reg.Resolve(context.Background())
	if mapping[domain.SpaceQuran] != "sp-q" || mapping[domain.SpaceTafsir] != "sp-t" {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
	if _, ok := mapping["unknown"]; ok {
		t.Error("unrecognized space name must not be mapped")
	}
	if lister.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", lister.calls)
	}

	// Within TTL: idempotent, no second upstream call.
	clock.Advance(5 * time.Minute)
	again := reg.Resolve(context.Background())
	if lister.calls != 1 {
		t.Errorf("expected cached resolve, got %d calls", lister.calls)
	}
	if again[domain.SpaceQuran] != mapping[domain.SpaceQuran] {
		t.Error("mapping changed within TTL")
	}

	// Past TTL: refreshed inline.
	clock.Advance(6 * time.Minute)
	lister.spaces = map[string]string{"quran": "sp-q2"}
	refreshed := reg.Resolve(context.Background())
	if lister.calls != 2 {
		t.Errorf("expected refresh past TTL, got %d calls", lister.calls)
	}
	if refreshed[domain.SpaceQuran] != "sp-q2" {
		t.Errorf("mapping not refreshed: %v", refreshed)
	}
}

func TestResolve_FailureKeepsPriorCache(t *testing.T) {
	lister := &mockLister{spaces: map[string]string{"quran": "sp-q"}}
	clock := newClock()
	reg := New(lister, nil, time.Minute, nil, WithClock(clock.Now))

	if mapping := reg.Resolve(context.Background()); mapping[domain.SpaceQuran] != "sp-q" {
		t.Fatalf("unexpected mapping: %v", mapping)
	}

	clock.Advance(2 * time.Minute)
	lister.err = errors.New("upstream down")
	mapping := reg.Resolve(context.Background())
	if mapping[domain.SpaceQuran] != "sp-q" {
		t.Errorf("stale cache not served after refresh failure: %v", mapping)
	}

	// Next resolve past TTL re-attempts the refresh.
	lister.err = nil
	lister.spaces = map[string]string{"quran": "sp-new"}
	clock.Advance(2 * time.Minute)
	if mapping := reg.Resolve(context.Background()); mapping[domain.SpaceQuran] != "sp-new" {
		t.Errorf("refresh not re-attempted: %v", mapping)
	}
}

func TestResolve_FailureWithEmptyCache(t *testing.T) {
	lister := &mockLister{err: errors.New("upstream down")}
	reg := New(lister, nil, time.Minute, nil)

	mapping := reg.Resolve(context.Background())
	if len(mapping) != 0 {
		t.Errorf("expected empty mapping, got %v", mapping)
	}
}

// blockingLister blocks its second ListSpaces call until released.
type blockingLister struct {
	spaces  map[string]string
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (m *blockingLister) ListSpaces(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	m.calls++
	calls := m.calls
	m.mu.Unlock()

	if calls > 1 {
		close(m.started)
		<-m.release
	}
	return m.spaces, nil
}

func TestResolve_ValidCacheNotBlockedByRefresh(t *testing.T) {
	lister := &blockingLister{
		spaces:  map[string]string{"quran": "sp-q"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	clock := newClock()
	reg := New(lister, nil, time.Minute, nil, WithClock(clock.Now))

	// Populate the cache, then expire it and start a refresh that parks
	// inside the upstream call.
	if mapping := reg.Resolve(context.Background()); mapping[domain.SpaceQuran] != "sp-q" {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
	clock.Advance(2 * time.Minute)

	refreshed := make(chan map[domain.SpaceType]string, 1)
	go func() { refreshed <- reg.Resolve(context.Background()) }()
	<-lister.started

	// Rewind within TTL: the snapshot is valid again, so this reader must
	// return without waiting for the parked refresh.
	clock.Advance(-90 * time.Second)
	resolved := make(chan map[domain.SpaceType]string, 1)
	go func() { resolved <- reg.Resolve(context.Background()) }()

	select {
	case mapping := <-resolved:
		if mapping[domain.SpaceQuran] != "sp-q" {
			t.Errorf("unexpected mapping: %v", mapping)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("resolve with a valid cache blocked behind an in-flight refresh")
	}

	close(lister.release)
	if mapping := <-refreshed; mapping[domain.SpaceQuran] != "sp-q" {
		t.Errorf("unexpected refreshed mapping: %v", mapping)
	}
}

func TestResolve_OverridesWin(t *testing.T) {
	lister := &mockLister{spaces: map[string]string{
		"quran":  "sp-q",
		"tafsir": "sp-t",
	}}
	overrides := map[domain.SpaceType]string{domain.SpaceQuran: "override-q"}
	reg := New(lister, overrides, time.Minute, nil)

	mapping := reg.Resolve(context.Background())
	if mapping[domain.SpaceQuran] != "override-q" {
		t.Errorf("override did not win: %v", mapping)
	}
	if mapping[domain.SpaceTafsir] != "sp-t" {
		t.Errorf("listed mapping lost: %v", mapping)
	}
}

func TestResolve_FullOverridesBypassRefresh(t *testing.T) {
	lister := &mockLister{}
	overrides := make(map[domain.SpaceType]string)
	for _, st := range domain.AllSpaceTypes() {
		overrides[st] = "id-" + st.String()
	}
	reg := New(lister, overrides, time.Minute, nil)

	mapping := reg.Resolve(context.Background())
	if lister.calls != 0 {
		t.Errorf("full overrides must bypass refresh, got %d calls", lister.calls)
	}
	if len(mapping) != len(domain.AllSpaceTypes()) {
		t.Errorf("unexpected mapping size: %v", mapping)
	}
}
