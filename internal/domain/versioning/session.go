package versioning

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/clinres/console/pkg/pagination"
)

// Session accumulates the fetched history of one (patient, layer, user)
// combination across incremental loads.
//
// Every fetch batch carries a monotonic token; results from a batch that is
// no longer the latest are discarded, so a slow page-0 response can never
// overwrite the accumulators of a newer search.
type Session struct {
	mu sync.Mutex

	query   SectionQuery
	fetcher SectionFetcher
	log     zerolog.Logger

	// per-section accumulators, indexed by sectionOrder
	accumulators [3][]HistoryItem
	totals       [3]int64

	currentPage int
	hasMore     bool
	loading     bool
	batch       uint64

	groups          []*VersionGroup
	patient         PatientInfo
	sectionMessages []string
	allFailed       bool
}

// NewSession creates an empty session for the given query. Page and Size in
// the query act as the fixed page size; the session tracks the page cursor
// itself.
func NewSession(fetcher SectionFetcher, q SectionQuery, log zerolog.Logger) *Session {
	return &Session{query: q, fetcher: fetcher, log: log}
}

// SessionState is an immutable snapshot of a session after a load settles.
type SessionState struct {
	Groups          []*VersionGroup
	Patient         PatientInfo
	Page            int
	HasMore         bool
	SectionMessages []string
	AllFailed       bool
}

// LoadInitial replaces all three accumulators with page 0 and rebuilds the
// groups. A new initial load supersedes any batch still in flight.
func (s *Session) LoadInitial(ctx context.Context, externalName string) SessionState {
	s.mu.Lock()
	s.batch++
	token := s.batch
	s.loading = true
	q := s.query
	q.Page = 0
	s.mu.Unlock()

	res := FetchAll(ctx, s.fetcher, q, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.batch {
		// A newer batch was issued while this one was in flight.
		return s.snapshotLocked()
	}
	s.loading = false

	for i := range sectionOrder {
		s.accumulators[i] = res.Pages[i].Items
		s.totals[i] = res.Pages[i].TotalElements
	}
	s.currentPage = 0
	s.rebuildLocked(res, externalName)
	return s.snapshotLocked()
}

// LoadMore appends the next page to each accumulator and re-aggregates.
// It is a no-op while another load is in flight or when no section
// reported a full page on the previous fetch.
func (s *Session) LoadMore(ctx context.Context, externalName string) SessionState {
	s.mu.Lock()
	if s.loading || !s.hasMore {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	s.batch++
	token := s.batch
	s.loading = true
	q := s.query
	q.Page = s.currentPage + 1
	s.mu.Unlock()

	res := FetchAll(ctx, s.fetcher, q, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.batch {
		return s.snapshotLocked()
	}
	s.loading = false

	// Append without dedup: the backend never re-returns a seen item
	// across pages.
	for i := range sectionOrder {
		s.accumulators[i] = append(s.accumulators[i], res.Pages[i].Items...)
		if res.Pages[i].TotalElements > 0 {
			s.totals[i] = res.Pages[i].TotalElements
		}
	}
	s.currentPage = q.Page
	s.rebuildLocked(res, externalName)
	return s.snapshotLocked()
}

// rebuildLocked re-runs full aggregation over the current accumulators and
// recomputes hasMore from the just-fetched pages. Caller holds s.mu.
func (s *Session) rebuildLocked(res FetchResult, externalName string) {
	combined := make([]HistoryItem, 0,
		len(s.accumulators[0])+len(s.accumulators[1])+len(s.accumulators[2]))
	for i := range sectionOrder {
		combined = append(combined, s.accumulators[i]...)
	}

	s.groups = Aggregate(combined)
	s.patient = ExtractPatientInfo(combined, s.query.PatientID, externalName)
	s.sectionMessages = res.SectionMessages
	s.allFailed = res.AllFailed

	// "Page was full" heuristic: any section that filled its page may
	// have more. Approximate, but the combined view has no authoritative
	// total.
	page := pagination.Params{Page: s.currentPage, Size: s.query.Size}
	s.hasMore = false
	for i := range sectionOrder {
		if page.PageFull(len(res.Pages[i].Items)) {
			s.hasMore = true
			break
		}
	}
}

// snapshot returns the session state for callers that do not hold s.mu.
func (s *Session) snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() SessionState {
	groups := make([]*VersionGroup, len(s.groups))
	copy(groups, s.groups)
	msgs := make([]string, len(s.sectionMessages))
	copy(msgs, s.sectionMessages)
	return SessionState{
		Groups:          groups,
		Patient:         s.patient,
		Page:            s.currentPage,
		HasMore:         s.hasMore,
		SectionMessages: msgs,
		AllFailed:       s.allFailed,
	}
}

// SectionTotal returns the upstream-reported total for one section.
func (s *Session) SectionTotal(section Section) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sec := range sectionOrder {
		if sec == section {
			return s.totals[i]
		}
	}
	return 0
}
