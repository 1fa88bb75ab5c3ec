// Package registersapi is the HTTP client for the upstream registers
// backend, which owns the change-history streams for patient records.
package registersapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Record is one change-history entry as returned by the upstream. At most
// one of the three payload fields is populated, depending on which section
// endpoint produced the record.
type Record struct {
	ID                          string         `json:"id"`
	RegisterID                  string         `json:"registerId"`
	ChangedBy                   string         `json:"changedBy"`
	ChangedAt                   string         `json:"changedAt"`
	Operation                   string         `json:"operation"`
	PatientIdentificationNumber int64          `json:"patientIdentificationNumber"`
	PatientBasicInfo            map[string]any `json:"isPatientBasicInfo,omitempty"`
	CaregiverInfo               map[string]any `json:"isCaregiverInfo,omitempty"`
	ResearchLayerGroup          map[string]any `json:"isResearchLayerGroup,omitempty"`
}

// Page is one page of history records plus the upstream's total count.
type Page struct {
	Items         []Record
	TotalElements int64
}

// PageQuery carries the paging parameters forwarded to the upstream.
type PageQuery struct {
	Page          int
	Size          int
	Sort          string
	SortDirection string
}

// Client talks to the registers backend. It owns its http.Client so the
// configured timeout applies to every upstream call.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a client for the registers backend at baseURL.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "registersapi").Logger(),
	}
}

// upstream page envelope. Some deployments return the item array under
// "data", others under "content"; the first non-empty array wins.
type pageEnvelope struct {
	Data          []Record `json:"data"`
	Content       []Record `json:"content"`
	TotalElements int64    `json:"totalElements"`
}

// BasicInfoHistory fetches one page of basic-info change records.
func (c *Client) BasicInfoHistory(ctx context.Context, patientID int64, q PageQuery) (*Page, error) {
	params := q.values()
	params.Set("patientIdentificationNumber", strconv.FormatInt(patientID, 10))
	return c.getPage(ctx, "/api/registers/history/basicInfo", params)
}

// CaregiverHistory fetches one page of caregiver change records.
func (c *Client) CaregiverHistory(ctx context.Context, patientID int64, q PageQuery) (*Page, error) {
	params := q.values()
	params.Set("patientIdentificationNumber", strconv.FormatInt(patientID, 10))
	return c.getPage(ctx, "/api/registers/history/caregiver", params)
}

// ResearchVariableHistory fetches one page of research-variable change
// records. The upstream scopes this stream to a research layer and the
// requesting user, so both identifiers are required.
func (c *Client) ResearchVariableHistory(ctx context.Context, patientID int64, researchLayerID, userEmail string, q PageQuery) (*Page, error) {
	params := q.values()
	params.Set("patientIdentificationNumber", strconv.FormatInt(patientID, 10))
	params.Set("researchLayerId", researchLayerID)
	params.Set("userEmail", userEmail)
	return c.getPage(ctx, "/api/registers/history/researchLayer", params)
}

func (q PageQuery) values() url.Values {
	sort := q.Sort
	if sort == "" {
		sort = "changedAt"
	}
	dir := q.SortDirection
	if dir == "" {
		dir = "DESC"
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	v.Set("sort", sort)
	v.Set("sortDirection", dir)
	return v
}

func (c *Client) getPage(ctx context.Context, path string, params url.Values) (*Page, error) {
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registers api request: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("upstream history fetch")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registers api returned status %d for %s", resp.StatusCode, path)
	}

	var env pageEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode registers api response: %w", err)
	}

	items := env.Data
	if len(items) == 0 {
		items = env.Content
	}
	return &Page{Items: items, TotalElements: env.TotalElements}, nil
}
