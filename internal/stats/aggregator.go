package stats

import (
	"time"

	"github.com/nurpe/licitaciones-portal/internal/model"
	"github.com/nurpe/licitaciones-portal/internal/region"
)

// Aggregate derives the dashboard summary. A non-empty server summary is
// used as-is; otherwise counts come from the locally held tenders, which
// may be a filtered page and need not agree with the server.
func Aggregate(tenders []model.Tender, server *model.Statistics, now time.Time) model.Summary {
	if !server.IsEmpty() {
		return fromServer(server, now)
	}
	return fromTenders(tenders, now)
}

func fromServer(server *model.Statistics, now time.Time) model.Summary {
	summary := model.Summary{
		TotalCount:     server.TotalTenders,
		OpenCount:      server.OpenTenders,
		Organisms:      server.Organisms,
		TotalAmount:    server.TotalAmount,
		CountsByRegion: make(map[model.RegionCode]int, len(server.RegionSummary)),
		CountsByStatus: map[model.Status]int{},
		LastUpdated:    now,
		FromServer:     true,
	}
	if server.LastUpdated != nil {
		summary.LastUpdated = *server.LastUpdated
	}
	for name, count := range server.RegionSummary {
		summary.CountsByRegion[region.CodeOf(name)] += count
	}
	return summary
}

func fromTenders(tenders []model.Tender, now time.Time) model.Summary {
	summary := model.Summary{
		TotalCount:     len(tenders),
		CountsByRegion: make(map[model.RegionCode]int),
		CountsByStatus: make(map[model.Status]int),
		LastUpdated:    now,
	}
	organisms := make(map[string]struct{})

	for _, t := range tenders {
		code := t.Region
		if code == "" {
			code = region.CodeOf(t.RegionName)
		}
		summary.CountsByRegion[code]++

		status := t.Status
		if status == model.StatusUnknown {
			status = model.ParseStatus(t.StatusText)
		}
		summary.CountsByStatus[status]++
		if status.IsOpen() {
			summary.OpenCount++
		}

		if t.Amount != nil {
			summary.TotalAmount += *t.Amount
		}
		if org := organismOf(t); org != "" {
			organisms[org] = struct{}{}
		}
	}
	summary.Organisms = len(organisms)
	return summary
}

func organismOf(t model.Tender) string {
	if t.Organism != "" {
		return t.Organism
	}
	return t.Responsible
}
