package versioning

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

// pagedFetcher serves scripted pages per section, keyed by page number.
type pagedFetcher struct {
	mu    sync.Mutex
	pages map[Section]map[int][]HistoryItem
	calls int
}

func (f *pagedFetcher) FetchSection(ctx context.Context, section Section, q SectionQuery) (SectionPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	items := f.pages[section][q.Page]
	return SectionPage{Items: items, TotalElements: int64(len(items))}, nil
}

func makeItems(section Section, registerPrefix string, n int) []HistoryItem {
	items := make([]HistoryItem, n)
	for i := range items {
		items[i] = HistoryItem{
			RegisterID: fmt.Sprintf("%s-%d", registerPrefix, i),
			ChangedBy:  "juan@example.com",
			ChangedAt:  fmt.Sprintf("2023-10-%02dT10:00:00Z", i+1),
			Operation:  OpUpdateBasicInfo,
			Section:    section,
		}
	}
	return items
}

func TestSession_LoadMoreAppendsWithoutLoss(t *testing.T) {
	pageSize := 3
	f := &pagedFetcher{pages: map[Section]map[int][]HistoryItem{
		SectionBasicInfo: {
			0: makeItems(SectionBasicInfo, "p0", pageSize),
			1: makeItems(SectionBasicInfo, "p1", 2),
		},
		SectionCaregiver:         {},
		SectionResearchVariables: {},
	}}

	sess := NewSession(f, SectionQuery{PatientID: 12345, Size: pageSize}, zerolog.Nop())

	state := sess.LoadInitial(context.Background(), "")
	if len(state.Groups) != pageSize {
		t.Fatalf("expected %d groups after page 0, got %d", pageSize, len(state.Groups))
	}
	if !state.HasMore {
		t.Fatal("expected hasMore after a full page")
	}

	state = sess.LoadMore(context.Background(), "")
	if len(state.Groups) != pageSize+2 {
		t.Fatalf("expected %d groups after load more, got %d", pageSize+2, len(state.Groups))
	}
	if state.Page != 1 {
		t.Errorf("expected page=1, got %d", state.Page)
	}
	if state.HasMore {
		t.Error("expected hasMore=false after a short page")
	}
}

func TestSession_HasMoreHeuristic(t *testing.T) {
	pageSize := 3
	f := &pagedFetcher{pages: map[Section]map[int][]HistoryItem{
		SectionBasicInfo: {0: makeItems(SectionBasicInfo, "b", 1)},
		// Only the caregiver page is full; that alone keeps hasMore true.
		SectionCaregiver:         {0: makeItems(SectionCaregiver, "c", pageSize)},
		SectionResearchVariables: {},
	}}

	sess := NewSession(f, SectionQuery{PatientID: 12345, Size: pageSize}, zerolog.Nop())
	state := sess.LoadInitial(context.Background(), "")
	if !state.HasMore {
		t.Error("expected hasMore=true when any section filled its page")
	}
}

func TestSession_LoadMoreWithoutMoreIsNoOp(t *testing.T) {
	f := &pagedFetcher{pages: map[Section]map[int][]HistoryItem{
		SectionBasicInfo:         {0: makeItems(SectionBasicInfo, "b", 1)},
		SectionCaregiver:         {},
		SectionResearchVariables: {},
	}}

	sess := NewSession(f, SectionQuery{PatientID: 12345, Size: 3}, zerolog.Nop())
	sess.LoadInitial(context.Background(), "")

	before := f.calls
	state := sess.LoadMore(context.Background(), "")
	if f.calls != before {
		t.Error("load more must not fetch when hasMore is false")
	}
	if state.Page != 0 {
		t.Errorf("expected page to stay 0, got %d", state.Page)
	}
}

// switchableFetcher returns old or new items depending on its mode, and can
// block old-mode calls until released.
type switchableFetcher struct {
	mode    atomic.Bool // false=old, true=new
	block   chan struct{}
	started chan struct{}
	once    sync.Once
}

func (f *switchableFetcher) FetchSection(ctx context.Context, section Section, q SectionQuery) (SectionPage, error) {
	if section != SectionBasicInfo {
		return SectionPage{}, nil
	}
	if !f.mode.Load() {
		f.once.Do(func() { close(f.started) })
		<-f.block
		return SectionPage{Items: []HistoryItem{
			{RegisterID: "stale", ChangedAt: "2023-10-01T10:00:00Z", Operation: OpUpdateBasicInfo, Section: SectionBasicInfo},
		}}, nil
	}
	return SectionPage{Items: []HistoryItem{
		{RegisterID: "fresh", ChangedAt: "2023-10-02T10:00:00Z", Operation: OpUpdateBasicInfo, Section: SectionBasicInfo},
	}}, nil
}

func TestSession_StaleBatchDiscarded(t *testing.T) {
	f := &switchableFetcher{
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	sess := NewSession(f, SectionQuery{PatientID: 12345, Size: 10}, zerolog.Nop())

	firstDone := make(chan SessionState)
	go func() {
		firstDone <- sess.LoadInitial(context.Background(), "")
	}()
	<-f.started

	// A second search supersedes the one still in flight.
	f.mode.Store(true)
	state := sess.LoadInitial(context.Background(), "")
	if len(state.Groups) != 1 || state.Groups[0].RegisterID != "fresh" {
		t.Fatalf("expected fresh results, got %+v", state.Groups)
	}

	close(f.block)
	<-firstDone

	// The stale batch must not have overwritten the accumulators.
	final := sess.snapshot()
	if len(final.Groups) != 1 || final.Groups[0].RegisterID != "fresh" {
		t.Fatalf("stale batch overwrote newer results: %+v", final.Groups)
	}
}

// gatedFetcher blocks every call until released, counting page requests.
type gatedFetcher struct {
	block   chan struct{}
	started chan struct{}
	once    sync.Once
	fetches atomic.Int32
}

func (f *gatedFetcher) FetchSection(ctx context.Context, section Section, q SectionQuery) (SectionPage, error) {
	if section != SectionBasicInfo {
		return SectionPage{}, nil
	}
	f.once.Do(func() { close(f.started) })
	<-f.block
	f.fetches.Add(1)
	return SectionPage{Items: makeItems(SectionBasicInfo, fmt.Sprintf("page%d", q.Page), 2)}, nil
}

func TestSession_ConcurrentLoadMoreIsNoOp(t *testing.T) {
	f := &gatedFetcher{block: make(chan struct{}), started: make(chan struct{})}
	sess := NewSession(f, SectionQuery{PatientID: 12345, Size: 2}, zerolog.Nop())

	go close(f.block)
	sess.LoadInitial(context.Background(), "")

	// Re-gate and start a load-more that stays in flight.
	f.block = make(chan struct{})
	f.started = make(chan struct{})
	f.once = sync.Once{}
	before := f.fetches.Load()

	moreDone := make(chan SessionState)
	go func() {
		moreDone <- sess.LoadMore(context.Background(), "")
	}()
	<-f.started

	// A second load-more while one is in flight must not fetch.
	state := sess.LoadMore(context.Background(), "")
	if state.Page != 0 {
		t.Errorf("expected concurrent load-more to be a no-op, page=%d", state.Page)
	}

	close(f.block)
	final := <-moreDone
	if final.Page != 1 {
		t.Errorf("expected page=1 after the in-flight load settled, got %d", final.Page)
	}
	if got := f.fetches.Load() - before; got != 1 {
		t.Errorf("expected exactly 1 fetch for the load-more, got %d", got)
	}
}
