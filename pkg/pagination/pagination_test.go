package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(ctxWithQuery(""))
	if p.Page != 0 {
		t.Errorf("expected page 0, got %d", p.Page)
	}
	if p.Size != DefaultSize {
		t.Errorf("expected size %d, got %d", DefaultSize, p.Size)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p := FromContext(ctxWithQuery("page=3&size=15"))
	if p.Page != 3 {
		t.Errorf("expected page 3, got %d", p.Page)
	}
	if p.Size != 15 {
		t.Errorf("expected size 15, got %d", p.Size)
	}
}

func TestFromContext_ClampsSize(t *testing.T) {
	p := FromContext(ctxWithQuery("size=1000"))
	if p.Size != MaxSize {
		t.Errorf("expected size clamped to %d, got %d", MaxSize, p.Size)
	}
}

func TestFromContext_NegativePage(t *testing.T) {
	p := FromContext(ctxWithQuery("page=-2"))
	if p.Page != 0 {
		t.Errorf("expected page 0, got %d", p.Page)
	}
}

func TestParams_Offset(t *testing.T) {
	p := Params{Page: 2, Size: 25}
	if p.Offset() != 50 {
		t.Errorf("expected offset 50, got %d", p.Offset())
	}
}

func TestParams_PageFull(t *testing.T) {
	p := Params{Page: 0, Size: 10}
	if !p.PageFull(10) {
		t.Error("expected a 10-item page of size 10 to report full")
	}
	if p.PageFull(9) {
		t.Error("expected a 9-item page of size 10 to report not full")
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 45, 0, 20)
	if !r.HasMore {
		t.Error("expected has_more true for 45 total at page 0 size 20")
	}
	r = NewResponse(nil, 45, 2, 20)
	if r.HasMore {
		t.Error("expected has_more false for 45 total at page 2 size 20")
	}
}
