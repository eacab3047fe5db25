package tenderapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

type apiEnvelope interface {
	message() string
}

type envelope struct {
	Success *bool  `json:"success"`
	Err     string `json:"error"`
	Message string `json:"message"`
}

func (e *envelope) message() string {
	if e.Err != "" {
		return e.Err
	}
	return e.Message
}

// check treats a missing success flag as success; only an explicit false
// is a failure.
func (e *envelope) check() error {
	if e.Success != nil && !*e.Success {
		msg := e.message()
		if msg == "" {
			msg = "Error desconocido"
		}
		return &APIError{Message: msg}
	}
	return nil
}

type listEnvelope struct {
	envelope
	Data       []rawRecord `json:"data"`
	Total      flexNumber  `json:"total"`
	Pagination *struct {
		Total flexNumber `json:"total"`
	} `json:"pagination"`
	Statistics *statisticsPayload `json:"estadisticas"`
}

// total resolves the result count: total, pagination.total,
// estadisticas.total, then the size of the page itself.
func (e *listEnvelope) total(pageLen int) int {
	if n := e.Total.Int(); n > 0 {
		return n
	}
	if e.Pagination != nil {
		if n := e.Pagination.Total.Int(); n > 0 {
			return n
		}
	}
	if e.Statistics != nil {
		if n := e.Statistics.Total.Int(); n > 0 {
			return n
		}
	}
	return pageLen
}

type detailEnvelope struct {
	envelope
	Data rawRecord `json:"data"`
}

type statisticsEnvelope struct {
	envelope
	Data *statisticsPayload `json:"data"`
}

type statisticsPayload struct {
	Total         flexNumber            `json:"total"`
	TotalTenders  flexNumber            `json:"totalLicitaciones"`
	OpenTenders   flexNumber            `json:"licitacionesAbiertas"`
	Organisms     flexNumber            `json:"organismos"`
	TotalAmount   flexNumber            `json:"montoTotal"`
	RegionSummary map[string]flexNumber `json:"resumenPorRegion"`
	LastUpdated   string                `json:"fechaUltimaActualizacion"`
}

func (p *statisticsPayload) toModel() model.Statistics {
	stats := model.Statistics{
		TotalTenders: p.TotalTenders.Int(),
		OpenTenders:  p.OpenTenders.Int(),
		Organisms:    p.Organisms.Int(),
		TotalAmount:  p.TotalAmount.Float(),
	}
	if stats.TotalTenders == 0 {
		stats.TotalTenders = p.Total.Int()
	}
	if len(p.RegionSummary) > 0 {
		stats.RegionSummary = make(map[string]int, len(p.RegionSummary))
		for name, count := range p.RegionSummary {
			stats.RegionSummary[name] = count.Int()
		}
	}
	if ts, ok := parseDate(p.LastUpdated); ok {
		stats.LastUpdated = &ts
	}
	return stats
}

// flexNumber accepts numbers, numeric strings and null.
type flexNumber struct {
	value float64
	ok    bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if v, ok := parseAmount(s); ok {
			n.value, n.ok = v, true
		}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	n.value, n.ok = v, true
	return nil
}

func (n flexNumber) Int() int       { return int(n.value) }
func (n flexNumber) Float() float64 { return n.value }
func (n flexNumber) Valid() bool    { return n.ok }

// rawRecord keeps a backend record undecoded so field aliases can be
// resolved one by one.
type rawRecord map[string]json.RawMessage

// str returns the first non-empty alias rendered as text.
func (r rawRecord) str(keys ...string) string {
	for _, key := range keys {
		raw, ok := r[key]
		if !ok {
			continue
		}
		if s := rawText(raw); s != "" {
			return s
		}
	}
	return ""
}

func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	if raw[0] == '{' || raw[0] == '[' {
		return ""
	}
	return string(raw)
}
