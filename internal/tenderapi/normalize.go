package tenderapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nurpe/licitaciones-portal/internal/model"
	"github.com/nurpe/licitaciones-portal/internal/region"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Values the backend uses for "no data".
var placeholders = map[string]struct{}{
	"":                {},
	"n/a":             {},
	"na":              {},
	"no disponible":   {},
	"no especificada": {},
	"no especificado": {},
	"null":            {},
	"undefined":       {},
	"-":               {},
}

func isPlaceholder(s string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

func normalizeTender(r rawRecord) model.Tender {
	t := model.Tender{
		ID:          r.str("id", "codigo", "CodigoExterno", "codigoExterno"),
		Title:       r.str("nombre", "titulo", "Nombre"),
		Description: clean(r.str("descripcion", "Descripcion")),
		Responsible: clean(r.str("responsable", "Responsable")),
		Organism:    clean(r.str("organismo", "empresa_solicitante", "NombreOrganismo")),
		RegionName:  clean(r.str("region", "Region", "regionUnidad")),
		StatusText:  clean(r.str("estado", "Estado")),

		SourceURL:         cleanURL(r.str("urlLicitacion", "url_original", "url")),
		AttachmentsURL:    cleanURL(r.str("urlAdjuntos")),
		AltAttachmentsURL: cleanURL(r.str("linkAdjuntos")),
		ExternalURL:       cleanURL(r.str("link")),
	}
	if t.Title == "" {
		t.Title = "Sin título"
	}
	t.Region = region.CodeOf(t.RegionName)
	if reg, ok := region.ByCode(t.Region); ok && t.RegionName == "" {
		t.RegionName = reg.Name
	}
	t.Status = model.ParseStatus(t.StatusText)

	t.Amount, t.AmountText = r.amount("Monto", "monto", "montoEstimado", "MontoEstimado")

	dates := []struct {
		dst  **time.Time
		keys []string
	}{
		{&t.PublishedAt, []string{"fechaPublicacion", "fecha_publicacion"}},
		{&t.ClosesAt, []string{"fechaCierre", "fecha_cierre"}},
		{&t.AwardedAt, []string{"fechaAdjudicacion", "fecha_adjudicacion"}},
		{&t.QuestionsStart, []string{"fechaInicioPreguntas"}},
		{&t.QuestionsEnd, []string{"fechaFinPreguntas"}},
		{&t.AnswersPublished, []string{"fechaPublicacionRespuestas"}},
		{&t.SiteVisit, []string{"fechaVisitaTerreno"}},
		{&t.ExtractedAt, []string{"fechaExtraccion", "fecha_extraccion"}},
	}
	for _, d := range dates {
		raw := r.str(d.keys...)
		if isPlaceholder(raw) {
			continue
		}
		if ts, ok := parseDate(raw); ok {
			*d.dst = &ts
			continue
		}
		if t.RawDates == nil {
			t.RawDates = make(map[string]string)
		}
		t.RawDates[d.keys[0]] = raw
	}

	t.Criteria = parseCriteria(r["criteriosEvaluacion"])
	return t
}

func parseCriteria(raw json.RawMessage) []model.Criterion {
	if len(raw) == 0 {
		return nil
	}
	var items []rawRecord
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]model.Criterion, 0, len(items))
	for _, item := range items {
		name := item.str("item", "nombre", "criterio")
		if name == "" {
			continue
		}
		weighting := item.str("ponderacion", "peso")
		if weighting != "" && !strings.HasSuffix(weighting, "%") {
			if _, err := strconv.ParseFloat(weighting, 64); err == nil {
				weighting += "%"
			}
		}
		out = append(out, model.Criterion{Item: name, Weighting: weighting})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if isPlaceholder(raw) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// amount resolves the first non-empty alias. JSON numbers are taken as is;
// quoted values go through parseAmount. Unparseable text is kept verbatim.
func (r rawRecord) amount(keys ...string) (*float64, string) {
	for _, key := range keys {
		raw := bytes.TrimSpace(r[key])
		text := rawText(raw)
		if text == "" {
			continue
		}
		if isPlaceholder(text) {
			return nil, ""
		}
		if raw[0] != '"' {
			if v, err := strconv.ParseFloat(text, 64); err == nil && finite(v) {
				return &v, ""
			}
			return nil, text
		}
		if v, ok := parseAmount(text); ok {
			return &v, ""
		}
		return nil, text
	}
	return nil, ""
}

// parseAmount reads plain numbers and Chilean formatted amounts such as
// "$ 1.234.567" or "1.234,50". NaN and infinities are rejected.
func parseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "CLP")
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && strings.Count(s, ".") <= 1 && !looksLikeThousands(s) {
		return v, finite(v)
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// looksLikeThousands reports "1.234" style values, where the dot groups
// thousands rather than marking decimals.
func looksLikeThousands(s string) bool {
	dot := strings.IndexByte(s, '.')
	return dot > 0 && len(s)-dot-1 == 3 && !strings.ContainsAny(s, ",eE")
}

func clean(s string) string {
	if isPlaceholder(s) {
		return ""
	}
	return s
}

func cleanURL(s string) string {
	s = clean(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return ""
	}
	return s
}
