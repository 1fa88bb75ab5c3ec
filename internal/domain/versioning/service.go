package versioning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinres/console/internal/platform/auth"
)

// ExportPermission is the named permission checked before serving a CSV
// export.
const ExportPermission = "export_history"

// ErrExportNotPermitted is returned when the permission check denies the
// export, including when the check itself times out or errors.
var ErrExportNotPermitted = errors.New("export not permitted")

// allFailedMessage is the single generic message shown when every section
// fetch of a batch failed.
const allFailedMessage = "No se pudo cargar el historial completo"

// Service owns the history sessions and runs loads, filters, and exports
// over them.
type Service struct {
	fetcher  SectionFetcher
	perm     auth.PermissionChecker
	pageSize int
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

type sessionKey struct {
	patientID int64
	layerID   string
	userEmail string
}

func NewService(fetcher SectionFetcher, perm auth.PermissionChecker, pageSize int, log zerolog.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		perm:     perm,
		pageSize: pageSize,
		log:      log.With().Str("component", "versioning").Logger(),
		sessions: make(map[sessionKey]*Session),
	}
}

// LoadRequest identifies whose history to load and how to reduce it.
type LoadRequest struct {
	PatientID       int64
	ResearchLayerID string
	UserEmail       string
	DisplayName     string
	Filter          FilterState
}

// LoadResult is the filtered view of a session after a load settles.
type LoadResult struct {
	Patient         PatientInfo     `json:"patient"`
	Versions        []*VersionGroup `json:"versions"`
	Stats           Stats           `json:"stats"`
	Page            int             `json:"page"`
	HasMore         bool            `json:"hasMore"`
	SectionMessages []string        `json:"sectionMessages,omitempty"`
}

func (s *Service) validate(req LoadRequest) error {
	if req.PatientID <= 0 {
		return fmt.Errorf("patient id must be a positive integer")
	}
	return nil
}

// Load runs a fresh page-0 load, replacing any prior session state for the
// same patient, layer, and user.
func (s *Service) Load(ctx context.Context, req LoadRequest) (*LoadResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	sess := s.session(req)
	state := sess.LoadInitial(ctx, req.DisplayName)
	return s.view(state, req.Filter), nil
}

// LoadMore extends the session with the next page. Without a prior Load it
// behaves like one.
func (s *Service) LoadMore(ctx context.Context, req LoadRequest) (*LoadResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	sess, existed := s.lookup(req)
	var state SessionState
	if !existed {
		state = sess.LoadInitial(ctx, req.DisplayName)
	} else {
		state = sess.LoadMore(ctx, req.DisplayName)
	}
	return s.view(state, req.Filter), nil
}

// ExportRequest selects what to serialize. A non-empty Selection restricts
// the export to the named groups and switches the filename prefix.
type ExportRequest struct {
	LoadRequest
	Selection []SelectionKey
}

// SelectionKey names one version group.
type SelectionKey struct {
	RegisterID string
	ChangedAt  string
}

// Export serializes the current filtered view (or an explicit selection of
// it) to CSV. The permission check degrades to denial on any failure.
func (s *Service) Export(ctx context.Context, req ExportRequest) (filename, csv string, err error) {
	if err := s.validate(req.LoadRequest); err != nil {
		return "", "", err
	}
	if s.perm != nil && !s.perm.HasPermission(ctx, req.UserEmail, ExportPermission) {
		return "", "", ErrExportNotPermitted
	}

	sess, existed := s.lookup(req.LoadRequest)
	var state SessionState
	if !existed {
		state = sess.LoadInitial(ctx, req.DisplayName)
	} else {
		state = sess.snapshot()
	}

	filtered, _ := ApplyFilters(state.Groups, req.Filter)

	groups := filtered
	if len(req.Selection) > 0 {
		wanted := make(map[versionKey]bool, len(req.Selection))
		for _, k := range req.Selection {
			wanted[versionKey{registerID: k.RegisterID, changedAt: k.ChangedAt}] = true
		}
		groups = groups[:0:0]
		for _, g := range filtered {
			if wanted[versionKey{registerID: g.RegisterID, changedAt: g.ChangedAt}] {
				groups = append(groups, g)
			}
		}
	}

	return ExportFilename(len(req.Selection) > 0, time.Now()), ExportCSV(groups), nil
}

func (s *Service) view(state SessionState, f FilterState) *LoadResult {
	filtered, stats := ApplyFilters(state.Groups, f)
	msgs := state.SectionMessages
	if state.AllFailed {
		msgs = []string{allFailedMessage}
	}
	return &LoadResult{
		Patient:         state.Patient,
		Versions:        filtered,
		Stats:           stats,
		Page:            state.Page,
		HasMore:         state.HasMore,
		SectionMessages: msgs,
	}
}

// session returns the session for the request, creating it if absent.
func (s *Service) session(req LoadRequest) *Session {
	sess, _ := s.lookup(req)
	return sess
}

func (s *Service) lookup(req LoadRequest) (*Session, bool) {
	key := sessionKey{patientID: req.PatientID, layerID: req.ResearchLayerID, userEmail: req.UserEmail}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = NewSession(s.fetcher, SectionQuery{
			PatientID:       req.PatientID,
			ResearchLayerID: req.ResearchLayerID,
			UserEmail:       req.UserEmail,
			Size:            s.pageSize,
		}, s.log)
		s.sessions[key] = sess
	}
	return sess, ok
}
