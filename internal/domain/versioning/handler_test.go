package versioning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinres/console/internal/platform/auth"
)

func newTestHandler(f SectionFetcher, perm auth.PermissionChecker) *Handler {
	return NewHandler(NewService(f, perm, 10, zerolog.Nop()))
}

func versioningContext(t *testing.T, target, patientID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx := context.WithValue(req.Context(), auth.UserEmailKey, "ana@console.local")
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("patientId")
	c.SetParamValues(patientID)
	return c, rec
}

func TestHandler_Load_InvalidPatientID(t *testing.T) {
	f := &fakeFetcher{}
	h := newTestHandler(f, allowAll{})

	for _, bad := range []string{"abc", "-1", "0", ""} {
		c, _ := versioningContext(t, "/api/v1/versioning/"+bad, bad)
		err := h.Load(c)
		if err == nil {
			t.Fatalf("expected error for patientId=%q", bad)
		}
		httpErr, ok := err.(*echo.HTTPError)
		if !ok {
			t.Fatalf("expected echo.HTTPError, got %T", err)
		}
		if httpErr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for patientId=%q, got %d", bad, httpErr.Code)
		}
	}
	if f.calls != 0 {
		t.Error("invalid input must not reach the upstream")
	}
}

func TestHandler_Load_OK(t *testing.T) {
	f := &fakeFetcher{items: map[Section][]HistoryItem{
		SectionBasicInfo: {
			basicItem("r1", "2023-10-01T10:00:00Z", OpRegisterCreated, map[string]any{"name": "Juan Pérez"}),
		},
	}}
	h := newTestHandler(f, allowAll{})

	c, rec := versioningContext(t, "/api/v1/versioning/12345?researchLayerId=layer-1", "12345")
	if err := h.Load(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var res LoadResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(res.Versions) != 1 {
		t.Errorf("expected 1 version, got %d", len(res.Versions))
	}
	if res.Patient.Name != "Juan Pérez" {
		t.Errorf("unexpected patient name %s", res.Patient.Name)
	}
}

func TestHandler_Load_FilterParams(t *testing.T) {
	f := &fakeFetcher{items: map[Section][]HistoryItem{
		SectionBasicInfo: {basicItem("r1", "2023-10-01T10:00:00Z", OpUpdateBasicInfo, nil)},
		SectionCaregiver: {caregiverItem("r2", "2023-10-02T10:00:00Z", OpUpdateCaregiver, nil)},
	}}
	h := newTestHandler(f, allowAll{})

	c, rec := versioningContext(t, "/api/v1/versioning/12345?sections=caregiver", "12345")
	if err := h.Load(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res LoadResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(res.Versions) != 1 || !res.Versions[0].HasCaregiverInfo {
		t.Errorf("expected the caregiver group only, got %+v", res.Versions)
	}
}

func TestHandler_Load_ZeroSections(t *testing.T) {
	f := &fakeFetcher{items: map[Section][]HistoryItem{
		SectionBasicInfo: {basicItem("r1", "2023-10-01T10:00:00Z", OpUpdateBasicInfo, nil)},
	}}
	h := newTestHandler(f, allowAll{})

	c, rec := versioningContext(t, "/api/v1/versioning/12345?sections=none", "12345")
	if err := h.Load(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res LoadResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(res.Versions) != 0 {
		t.Errorf("expected no versions with all sections off, got %d", len(res.Versions))
	}
}

func TestHandler_Export_CSVDownload(t *testing.T) {
	f := &fakeFetcher{items: map[Section][]HistoryItem{
		SectionBasicInfo: {basicItem("r1", "2023-10-01T10:00:00Z", OpUpdateBasicInfo, nil)},
	}}
	h := newTestHandler(f, allowAll{})

	c, rec := versioningContext(t, "/api/v1/versioning/12345/export", "12345")
	if err := h.Export(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	disposition := rec.Header().Get(echo.HeaderContentDisposition)
	if !strings.Contains(disposition, "historial-completo-") {
		t.Errorf("unexpected content disposition: %s", disposition)
	}
	if !strings.HasPrefix(rec.Body.String(), `"Fecha","Operación","Autor","Secciones","Register ID"`) {
		t.Errorf("unexpected CSV body: %s", rec.Body.String())
	}
}

func TestHandler_Export_Forbidden(t *testing.T) {
	h := newTestHandler(&fakeFetcher{}, denyAll{})

	c, _ := versioningContext(t, "/api/v1/versioning/12345/export", "12345")
	err := h.Export(c)
	if err == nil {
		t.Fatal("expected error for denied export")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestHandler_Export_InvalidSelection(t *testing.T) {
	h := newTestHandler(&fakeFetcher{}, allowAll{})

	c, _ := versioningContext(t, "/api/v1/versioning/12345/export?selected=missing-separator", "12345")
	err := h.Export(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}
