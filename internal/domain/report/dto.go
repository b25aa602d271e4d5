package report

import (
	"math"
	"strconv"
	"strings"
	"time"

	xerrors "campuscafe-reports/internal/pkg/errors"
	"campuscafe-reports/internal/pkg/validator"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 100
)

var structValidator = validator.New()

// DateRange is an inclusive [From, To] window over sale dates.
type DateRange struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to" validate:"required,gtefield=From"`
}

// Pagination holds validated page/limit values.
type Pagination struct {
	Page  int `json:"page" validate:"min=1"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt when page*limit does not fit in an int, which still lands past
// the last row.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// ProductListFilters binds the products report query string.
type ProductListFilters struct {
	Page  string `form:"page"`
	Limit string `form:"limit"`
	Query string `form:"q"`
}

// CustomerListFilters binds the customers report query string.
type CustomerListFilters struct {
	Page  string `form:"page"`
	Limit string `form:"limit"`
}

// SalesRangeQuery binds the daily sales query string.
type SalesRangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// NewDateRange validates an already-parsed window.
func NewDateRange(from, to time.Time) (DateRange, error) {
	dr := DateRange{From: from, To: to}
	if v := structValidator.Violations(dr); len(v) > 0 {
		return DateRange{}, xerrors.NewValidationError("", v)
	}
	return dr, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseDate accepts RFC 3339 timestamps and plain ISO dates.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDateBounds parses raw from/to strings, reporting every missing or
// malformed bound. Ordering is left to NewDateRange.
func ParseDateBounds(fromRaw, toRaw string) (from, to time.Time, err error) {
	var violations []string
	from, fromOK := parseBound("from", fromRaw, &violations)
	to, toOK := parseBound("to", toRaw, &violations)
	if !fromOK || !toOK {
		return time.Time{}, time.Time{}, xerrors.NewValidationError("", violations)
	}
	return from, to, nil
}

func parseBound(name, raw string, violations *[]string) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		*violations = append(*violations, name+" is required")
		return time.Time{}, false
	}
	t, ok := ParseDate(raw)
	if !ok {
		*violations = append(*violations, name+" must be a valid ISO date")
	}
	return t, ok
}

// NewPagination validates page and limit.
func NewPagination(page, limit int) (Pagination, error) {
	p := Pagination{Page: page, Limit: limit}
	if v := structValidator.Violations(p); len(v) > 0 {
		return Pagination{}, xerrors.NewValidationError("", v)
	}
	return p, nil
}

// ParsePageParams applies defaults to absent values and rejects present
// values that are not integers. Range checks are left to NewPagination.
func ParsePageParams(pageRaw, limitRaw string) (page, limit int, err error) {
	var violations []string
	page = parseIntParam("page", pageRaw, DefaultPage, &violations)
	limit = parseIntParam("limit", limitRaw, DefaultLimit, &violations)
	if len(violations) > 0 {
		return 0, 0, xerrors.NewValidationError("", violations)
	}
	return page, limit, nil
}

func parseIntParam(name, raw string, fallback int, violations *[]string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*violations = append(*violations, name+" must be an integer")
		return fallback
	}
	return n
}

// LikePattern turns a free-text filter into an ILIKE pattern.
// ok is false when the filter is empty after trimming.
func LikePattern(filter string) (pattern string, ok bool) {
	if strings.TrimSpace(filter) == "" {
		return "", false
	}
	return "%" + filter + "%", true
}
