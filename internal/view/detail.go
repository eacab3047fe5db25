package view

import (
	"time"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

type LabeledValue struct {
	Label string
	Value string
}

type Link struct {
	Label string
	URL   string
	Kind  string
}

// Detail is the single view-model behind the detail page, the modal
// fragment and the PDF sheet. Optional sections are empty when the
// record carries no data for them.
type Detail struct {
	ID          string
	Title       string
	Status      string
	StatusClass string
	Responsible string
	Organism    string
	Region      string
	Amount      string
	Published   string
	Closes      string
	Awarded     string
	Extracted   string

	DaysUntilClose *int
	Urgency        string

	Description string
	ExtraDates  []LabeledValue
	Criteria    []model.Criterion
	Links       []Link

	AttachmentName string
	Partial        bool
}

func NewDetail(t model.Tender, now time.Time) Detail {
	d := Detail{
		ID:          t.ID,
		Title:       t.Title,
		Status:      StatusText(t),
		StatusClass: StatusClass(t.Status),
		Responsible: orPlaceholder(t.Responsible),
		Organism:    orPlaceholder(firstNonEmpty(t.Organism, t.Responsible)),
		Region:      orPlaceholder(t.RegionName),
		Amount:      Currency(t.Amount, t.AmountText),
		Published:   dateOrRaw(t, t.PublishedAt, "fechaPublicacion"),
		Closes:      dateOrRaw(t, t.ClosesAt, "fechaCierre"),
		Awarded:     dateOrRaw(t, t.AwardedAt, "fechaAdjudicacion"),
		Extracted:   dateOrRaw(t, t.ExtractedAt, "fechaExtraccion"),
		Description: t.Description,
		Criteria:    t.Criteria,
	}
	d.DaysUntilClose = DaysUntil(t.ClosesAt, now)
	d.Urgency = Urgency(d.DaysUntilClose)

	extra := []struct {
		label string
		at    *time.Time
		key   string
	}{
		{"Inicio Preguntas", t.QuestionsStart, "fechaInicioPreguntas"},
		{"Fin Preguntas", t.QuestionsEnd, "fechaFinPreguntas"},
		{"Publicación Respuestas", t.AnswersPublished, "fechaPublicacionRespuestas"},
		{"Visita a Terreno", t.SiteVisit, "fechaVisitaTerreno"},
		{"Fecha Extracción", t.ExtractedAt, "fechaExtraccion"},
	}
	for _, e := range extra {
		if e.at == nil && t.RawDates[e.key] == "" {
			continue
		}
		d.ExtraDates = append(d.ExtraDates, LabeledValue{Label: e.label, Value: dateOrRaw(t, e.at, e.key)})
	}

	if t.SourceURL != "" {
		d.Links = append(d.Links, Link{Label: "Ver Licitación Original", URL: t.SourceURL, Kind: "source"})
	}
	if t.AttachmentsURL != "" {
		d.Links = append(d.Links, Link{Label: "Ver Adjuntos", URL: t.AttachmentsURL, Kind: "attachment"})
		d.AttachmentName = AttachmentFileName(t.AttachmentsURL)
	}
	if t.AltAttachmentsURL != "" && t.AltAttachmentsURL != t.AttachmentsURL && IsValidAttachmentLink(t.AltAttachmentsURL) {
		d.Links = append(d.Links, Link{Label: "Ver Adjuntos (Alternativo)", URL: t.AltAttachmentsURL, Kind: "attachment"})
		if d.AttachmentName == "" {
			d.AttachmentName = AttachmentFileName(t.AltAttachmentsURL)
		}
	}
	if t.ExternalURL != "" && t.ExternalURL != t.SourceURL {
		d.Links = append(d.Links, Link{Label: "Enlace Externo", URL: t.ExternalURL, Kind: "external"})
	}
	return d
}

func (d Detail) HasExtraDates() bool { return len(d.ExtraDates) > 0 }
func (d Detail) HasCriteria() bool   { return len(d.Criteria) > 0 }

func dateOrRaw(t model.Tender, at *time.Time, key string) string {
	if at != nil {
		return DateTime(at)
	}
	if raw := t.RawDates[key]; raw != "" {
		return raw
	}
	return NotAvailable
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Row is one line of the dashboard table and of the exports.
type Row struct {
	ID            string
	Title         string
	Responsible   string
	Amount        string
	Region        string
	Status        string
	StatusClass   string
	Published     string
	SourceURL     string
	AttachmentURL string
}

func NewRow(t model.Tender) Row {
	attachment := t.AttachmentsURL
	if attachment == "" && IsValidAttachmentLink(t.AltAttachmentsURL) {
		attachment = t.AltAttachmentsURL
	}
	return Row{
		ID:            t.ID,
		Title:         t.Title,
		Responsible:   t.Responsible,
		Amount:        Currency(t.Amount, t.AmountText),
		Region:        t.RegionName,
		Status:        StatusText(t),
		StatusClass:   StatusClass(t.Status),
		Published:     Date(t.PublishedAt),
		SourceURL:     firstNonEmpty(t.SourceURL, t.ExternalURL),
		AttachmentURL: attachment,
	}
}

func NewRows(tenders []model.Tender) []Row {
	rows := make([]Row, 0, len(tenders))
	for _, t := range tenders {
		rows = append(rows, NewRow(t))
	}
	return rows
}
