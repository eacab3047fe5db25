package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nurpe/licitaciones-portal/internal/model"
	"github.com/nurpe/licitaciones-portal/internal/region"
)

var (
	ErrInvalidFilter = errors.New("invalid filter")
	ErrUnknownField  = errors.New("unknown filter field")
)

const dateLayout = "2006-01-02"

// ApplyField validates raw and stores it in the matching field of f.
// An empty value clears the field.
func ApplyField(f *model.FilterState, field model.FilterField, raw string) error {
	raw = strings.TrimSpace(raw)
	switch field {
	case model.FilterRegion:
		if raw == "" {
			f.Region = ""
			return nil
		}
		r, ok := region.Resolve(raw)
		if !ok {
			return fmt.Errorf("%w: region %q", ErrInvalidFilter, raw)
		}
		f.Region = r.Code
	case model.FilterStatus:
		if raw == "" {
			f.Status = model.StatusUnknown
			return nil
		}
		status := model.ParseStatus(raw)
		if status == model.StatusUnknown {
			return fmt.Errorf("%w: estado %q", ErrInvalidFilter, raw)
		}
		f.Status = status
	case model.FilterDateFrom, model.FilterDateTo:
		if raw != "" {
			if _, err := time.Parse(dateLayout, raw); err != nil {
				return fmt.Errorf("%w: %s %q", ErrInvalidFilter, field, raw)
			}
		}
		if field == model.FilterDateFrom {
			f.DateFrom = raw
		} else {
			f.DateTo = raw
		}
	case model.FilterSearch:
		f.Search = raw
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// FieldValue renders a filter field the way a form input expects it.
func FieldValue(f model.FilterState, field model.FilterField) string {
	switch field {
	case model.FilterRegion:
		return string(f.Region)
	case model.FilterStatus:
		return string(f.Status)
	case model.FilterDateFrom:
		return f.DateFrom
	case model.FilterDateTo:
		return f.DateTo
	case model.FilterSearch:
		return f.Search
	default:
		return ""
	}
}

var Fields = []model.FilterField{
	model.FilterRegion,
	model.FilterStatus,
	model.FilterDateFrom,
	model.FilterDateTo,
	model.FilterSearch,
}

// matches is the client-side search over the fetched page: a
// case-insensitive substring of title, responsible party, region or status.
func matches(t model.Tender, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, field := range []string{t.Title, t.Responsible, t.RegionName, t.StatusText} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
