package tenderapi

import (
	"net/url"
	"strconv"
	"strings"
)

// Query mirrors the /licitaciones query string. Empty fields are omitted.
type Query struct {
	Region   string
	Status   string
	DateFrom string
	DateTo   string
	Page     int
	Limit    int
	Search   string
}

func (q Query) Values() url.Values {
	values := url.Values{}
	add := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			values.Set(key, value)
		}
	}
	add("region", q.Region)
	add("estado", q.Status)
	add("fechaInicio", q.DateFrom)
	add("fechaFin", q.DateTo)
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	add("search", q.Search)
	return values
}
