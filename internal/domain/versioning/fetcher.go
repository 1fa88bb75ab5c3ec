package versioning

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/clinres/console/internal/platform/registersapi"
)

// SectionQuery identifies one page of one patient's history. The research
// variables section additionally requires the research layer and the
// requesting user's email; the other two ignore those fields.
type SectionQuery struct {
	PatientID       int64
	ResearchLayerID string
	UserEmail       string
	Page            int
	Size            int
}

// SectionPage is one fetched page plus the upstream's total for that
// section.
type SectionPage struct {
	Items         []HistoryItem
	TotalElements int64
}

// SectionFetcher retrieves one page of history for one section.
//
// Implementations degrade gracefully: missing required inputs yield an
// empty page with no error, so one misconfigured section never blocks its
// siblings.
type SectionFetcher interface {
	FetchSection(ctx context.Context, section Section, q SectionQuery) (SectionPage, error)
}

// RegistersFetcher fetches history pages from the registers backend.
type RegistersFetcher struct {
	client *registersapi.Client
}

func NewRegistersFetcher(client *registersapi.Client) *RegistersFetcher {
	return &RegistersFetcher{client: client}
}

func (f *RegistersFetcher) FetchSection(ctx context.Context, section Section, q SectionQuery) (SectionPage, error) {
	if q.PatientID <= 0 {
		return SectionPage{}, nil
	}

	pq := registersapi.PageQuery{Page: q.Page, Size: q.Size}

	var (
		page *registersapi.Page
		err  error
	)
	switch section {
	case SectionBasicInfo:
		page, err = f.client.BasicInfoHistory(ctx, q.PatientID, pq)
	case SectionCaregiver:
		page, err = f.client.CaregiverHistory(ctx, q.PatientID, pq)
	case SectionResearchVariables:
		if q.ResearchLayerID == "" || q.UserEmail == "" {
			return SectionPage{}, nil
		}
		page, err = f.client.ResearchVariableHistory(ctx, q.PatientID, q.ResearchLayerID, q.UserEmail, pq)
	default:
		return SectionPage{}, nil
	}
	if err != nil {
		return SectionPage{}, err
	}

	items := make([]HistoryItem, 0, len(page.Items))
	for _, r := range page.Items {
		items = append(items, tagRecord(r, section))
	}
	return SectionPage{Items: items, TotalElements: page.TotalElements}, nil
}

// tagRecord converts a wire record into a tagged history item. The
// section is determined by which endpoint produced the record; the wire
// payload matching that section becomes the item's payload.
func tagRecord(r registersapi.Record, section Section) HistoryItem {
	item := HistoryItem{
		ID:         r.ID,
		RegisterID: r.RegisterID,
		ChangedBy:  r.ChangedBy,
		ChangedAt:  r.ChangedAt,
		Operation:  r.Operation,
		PatientID:  r.PatientIdentificationNumber,
		Section:    section,
	}
	switch section {
	case SectionBasicInfo:
		item.Payload = r.PatientBasicInfo
	case SectionCaregiver:
		item.Payload = r.CaregiverInfo
	case SectionResearchVariables:
		item.Payload = r.ResearchLayerGroup
	}
	return item
}

// FetchResult holds the three settled section pages of one batch. A
// section that failed carries an empty page and a user-facing message; the
// other sections are unaffected.
type FetchResult struct {
	Pages           [3]SectionPage
	SectionMessages []string
	AllFailed       bool
}

var sectionOrder = [3]Section{SectionBasicInfo, SectionCaregiver, SectionResearchVariables}

// FetchAll issues the three section fetches concurrently and waits for all
// of them to settle. Transport errors are logged and swallowed per section
// so the join always succeeds.
func FetchAll(ctx context.Context, fetcher SectionFetcher, q SectionQuery, log zerolog.Logger) FetchResult {
	var pages [3]SectionPage
	var errs [3]error

	var g errgroup.Group
	for i, section := range sectionOrder {
		i, section := i, section
		g.Go(func() error {
			page, err := fetcher.FetchSection(ctx, section, q)
			if err != nil {
				log.Warn().
					Err(err).
					Str("section", section.String()).
					Int64("patient_id", q.PatientID).
					Int("page", q.Page).
					Msg("section history fetch failed")
				errs[i] = err
				return nil
			}
			pages[i] = page
			return nil
		})
	}
	_ = g.Wait()

	res := FetchResult{Pages: pages}
	failed := 0
	for i, section := range sectionOrder {
		if errs[i] != nil {
			failed++
			res.SectionMessages = append(res.SectionMessages,
				"No se pudo cargar la sección "+section.Label())
		}
	}
	res.AllFailed = failed == len(sectionOrder)
	return res
}
