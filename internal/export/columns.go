package export

import (
	"strconv"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

// Headers are shared by every tabular export.
var Headers = []string{
	"ID",
	"Nombre",
	"Responsable",
	"Monto",
	"Región",
	"Estado",
	"Fecha Publicación",
	"URL Licitación",
	"URL Adjuntos",
}

// record flattens a tender into the export columns. Values stay close to
// what the backend sent so spreadsheets can re-parse them.
func record(t model.Tender) []string {
	return []string{
		t.ID,
		t.Title,
		t.Responsible,
		amount(t),
		t.RegionName,
		status(t),
		published(t),
		t.SourceURL,
		attachments(t),
	}
}

func amount(t model.Tender) string {
	if t.Amount != nil {
		return strconv.FormatFloat(*t.Amount, 'f', -1, 64)
	}
	return t.AmountText
}

func status(t model.Tender) string {
	if t.StatusText != "" {
		return t.StatusText
	}
	return t.Status.Label()
}

func published(t model.Tender) string {
	if t.PublishedAt != nil {
		return t.PublishedAt.Format("2006-01-02")
	}
	return t.RawDates["fechaPublicacion"]
}

func attachments(t model.Tender) string {
	if t.AttachmentsURL != "" {
		return t.AttachmentsURL
	}
	return t.AltAttachmentsURL
}
