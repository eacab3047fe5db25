package model

import (
	"strings"
	"unicode"
)

type Status string

const (
	StatusUnknown    Status = ""
	StatusPublicada  Status = "PUBLICADA"
	StatusAbierta    Status = "ABIERTA"
	StatusCerrada    Status = "CERRADA"
	StatusAdjudicada Status = "ADJUDICADA"
	StatusDesierta   Status = "DESIERTA"
	StatusRevocada   Status = "REVOCADA"
	StatusSuspendida Status = "SUSPENDIDA"
)

// Statuses lists the values offered in the dashboard status filter.
var Statuses = []Status{
	StatusPublicada,
	StatusCerrada,
	StatusAdjudicada,
	StatusDesierta,
	StatusRevocada,
	StatusSuspendida,
}

// statusPrecedence decides which keyword wins when a status text carries
// more than one, e.g. "Publicada Abierta" or "Cerrada - Adjudicada".
var statusPrecedence = []struct {
	word   string
	status Status
}{
	{"adjudicada", StatusAdjudicada},
	{"desierta", StatusDesierta},
	{"revocada", StatusRevocada},
	{"suspendida", StatusSuspendida},
	{"cerrada", StatusCerrada},
	{"abierta", StatusAbierta},
	{"publicada", StatusPublicada},
}

// Mercado Público numeric state codes.
var statusCodes = map[string]Status{
	"5":  StatusPublicada,
	"6":  StatusCerrada,
	"7":  StatusDesierta,
	"8":  StatusAdjudicada,
	"18": StatusRevocada,
	"19": StatusSuspendida,
}

// ParseStatus classifies a free-text status by whole-word keyword. Words
// that merely contain a keyword ("reabiertas") do not match.
func ParseStatus(raw string) Status {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StatusUnknown
	}
	if status, ok := statusCodes[raw]; ok {
		return status
	}

	words := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	present := make(map[string]struct{}, len(words))
	for _, word := range words {
		present[word] = struct{}{}
	}
	for _, candidate := range statusPrecedence {
		if _, ok := present[candidate.word]; ok {
			return candidate.status
		}
	}
	return StatusUnknown
}

// IsOpen reports whether tenders in this state still accept offers.
func (s Status) IsOpen() bool {
	return s == StatusPublicada || s == StatusAbierta
}

func (s Status) Label() string {
	switch s {
	case StatusPublicada:
		return "Publicada"
	case StatusAbierta:
		return "Abierta"
	case StatusCerrada:
		return "Cerrada"
	case StatusAdjudicada:
		return "Adjudicada"
	case StatusDesierta:
		return "Desierta"
	case StatusRevocada:
		return "Revocada"
	case StatusSuspendida:
		return "Suspendida"
	default:
		return "Desconocido"
	}
}
