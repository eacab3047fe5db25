package view

import (
	"fmt"
	"math"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

const NotAvailable = "No disponible"

var printer = message.NewPrinter(language.MustParse("es-CL"))

var months = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Currency formats a CLP amount without decimals, e.g. "$1.500.000".
func Currency(amount *float64, text string) string {
	if amount == nil {
		if text != "" {
			return text
		}
		return "No especificado"
	}
	return "$" + printer.Sprintf("%d", int64(math.Round(*amount)))
}

func Number(n int) string {
	return printer.Sprintf("%d", n)
}

func Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	return t.Format("02-01-2006")
}

func DateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("02-01-2006")
	}
	return t.Format("02-01-2006 15:04")
}

// LongDate renders "9 de marzo de 2025".
func LongDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}

// DaysUntil rounds up to whole days; nil when there is no closing date.
func DaysUntil(closes *time.Time, now time.Time) *int {
	if closes == nil || closes.IsZero() {
		return nil
	}
	days := int(math.Ceil(closes.Sub(now).Hours() / 24))
	return &days
}

func Urgency(days *int) string {
	switch {
	case days == nil:
		return ""
	case *days <= 7:
		return "danger"
	case *days <= 30:
		return "warning"
	default:
		return "ok"
	}
}

// ClosingLabel phrases the countdown to the closing date.
func ClosingLabel(days *int) string {
	switch {
	case days == nil:
		return ""
	case *days < 0:
		return "Cerrada hace " + pluralDays(-*days)
	case *days == 0:
		return "Cierra hoy"
	default:
		return "Cierra en " + pluralDays(*days)
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 día"
	}
	return fmt.Sprintf("%d días", n)
}

func StatusClass(s model.Status) string {
	switch s {
	case model.StatusPublicada, model.StatusAbierta:
		return "status-open"
	case model.StatusCerrada:
		return "status-closed"
	case model.StatusAdjudicada:
		return "status-awarded"
	case model.StatusDesierta:
		return "status-void"
	case model.StatusRevocada, model.StatusSuspendida:
		return "status-halted"
	default:
		return "status-unknown"
	}
}

// StatusText prefers the backend wording and falls back to the enum label.
func StatusText(t model.Tender) string {
	if t.StatusText != "" {
		return t.StatusText
	}
	return t.Status.Label()
}

// IsValidAttachmentLink accepts Mercado Público attachment pages and other
// links that clearly point at documents.
func IsValidAttachmentLink(link string) bool {
	link = strings.TrimSpace(link)
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return false
	}
	if strings.Contains(link, "mercadopublico.cl") && strings.Contains(link, "Attachment") {
		return true
	}
	lower := strings.ToLower(link)
	return strings.Contains(lower, "attachment") ||
		strings.Contains(lower, "adjunto") ||
		strings.Contains(lower, "documento")
}

// AttachmentFileName derives a download name from the link. Mercado Público
// serves every document through ViewAttachment.aspx, so its "enc" parameter
// names the file; other links use the path's file name when it has an
// extension.
func AttachmentFileName(link string) string {
	const generic = "Adjunto"
	if !IsValidAttachmentLink(link) {
		return generic
	}
	u, err := url.Parse(link)
	if err != nil {
		return generic
	}
	name := path.Base(u.Path)
	if enc := u.Query().Get("enc"); enc != "" && (strings.EqualFold(path.Ext(name), ".aspx") || !strings.Contains(name, ".")) {
		if len(enc) > 8 {
			enc = enc[:8]
		}
		return generic + "_" + enc
	}
	if strings.Contains(name, ".") {
		return name
	}
	return generic
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
