package versioning

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinres/console/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/versioning", auth.RequireRole(auth.RoleDoctor, auth.RoleResearcher))
	g.GET("/:patientId", h.Load)
	g.GET("/:patientId/more", h.LoadMore)
	g.GET("/:patientId/export", h.Export)
}

// Load runs a fresh history search for a patient and returns the filtered
// version groups with patient info, stats, and paging state.
func (h *Handler) Load(c echo.Context) error {
	req, err := h.loadRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Load(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

// LoadMore extends the current session by one page.
func (h *Handler) LoadMore(c echo.Context) error {
	req, err := h.loadRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.LoadMore(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

// Export streams the filtered (or explicitly selected) groups as a CSV
// download.
func (h *Handler) Export(c echo.Context) error {
	req, err := h.loadRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	exportReq := ExportRequest{LoadRequest: req}
	for _, sel := range c.QueryParams()["selected"] {
		registerID, changedAt, ok := strings.Cut(sel, "|")
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid selection: expected registerId|changedAt")
		}
		exportReq.Selection = append(exportReq.Selection, SelectionKey{
			RegisterID: registerID,
			ChangedAt:  changedAt,
		})
	}

	filename, csv, err := h.svc.Export(c.Request().Context(), exportReq)
	if err != nil {
		if errors.Is(err, ErrExportNotPermitted) {
			return echo.NewHTTPError(http.StatusForbidden, "export not permitted")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

func (h *Handler) loadRequest(c echo.Context) (LoadRequest, error) {
	patientID, err := strconv.ParseInt(c.Param("patientId"), 10, 64)
	if err != nil || patientID <= 0 {
		return LoadRequest{}, errors.New("patientId must be a positive integer")
	}

	req := LoadRequest{
		PatientID:       patientID,
		ResearchLayerID: c.QueryParam("researchLayerId"),
		UserEmail:       auth.UserEmailFromContext(c.Request().Context()),
		DisplayName:     c.QueryParam("displayName"),
		Filter:          parseFilter(c),
	}
	return req, nil
}

// parseFilter reads the filter state from query parameters. Absent
// parameters fall back to the defaults: all sections on, no operation
// restriction, no search.
func parseFilter(c echo.Context) FilterState {
	f := DefaultFilter()

	if raw := c.QueryParam("sections"); raw != "" {
		f.BasicInfo, f.Caregiver, f.ResearchVariables = false, false, false
		for _, s := range strings.Split(raw, ",") {
			switch strings.TrimSpace(s) {
			case "basic_info":
				f.BasicInfo = true
			case "caregiver":
				f.Caregiver = true
			case "research_variables":
				f.ResearchVariables = true
			case "none":
				// explicit all-off marker; flags stay false
			}
		}
	}

	if raw := c.QueryParam("operations"); raw != "" {
		f.Operations = make(map[string]bool)
		for _, op := range strings.Split(raw, ",") {
			if op = strings.TrimSpace(op); op != "" {
				f.Operations[op] = true
			}
		}
	}

	f.SearchText = c.QueryParam("search")
	return f
}
