package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page int
	Size int
}

// FromContext extracts pagination parameters from the echo context.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 0 {
		page = 0
	}

	size, _ := strconv.Atoi(c.QueryParam("size"))
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	return Params{Page: page, Size: size}
}

// Offset returns the row offset for SQL queries.
func (p Params) Offset() int {
	return p.Page * p.Size
}

// PageFull reports whether a fetched page of n items filled the requested
// size. Callers use it as a "there may be more" heuristic when no
// authoritative total is available.
func (p Params) PageFull(n int) bool {
	return n == p.Size
}

// Response wraps a paginated API response.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	Size    int         `json:"size"`
	HasMore bool        `json:"has_more"`
}

func NewResponse(data interface{}, total, page, size int) *Response {
	return &Response{
		Data:    data,
		Total:   total,
		Page:    page,
		Size:    size,
		HasMore: (page+1)*size < total,
	}
}
