package mapview

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/nurpe/licitaciones-portal/internal/model"
	"github.com/nurpe/licitaciones-portal/internal/region"
)

const (
	strokeIdle   = "#9ca3af"
	strokeActive = "#1d4ed8"
	labelMaxLen  = 12
)

type Cell struct {
	Code        model.RegionCode `json:"code"`
	Name        string           `json:"name"`
	Label       string           `json:"-"`
	Count       int              `json:"count"`
	Bucket      Bucket           `json:"-"`
	Fill        string           `json:"fill"`
	Stroke      string           `json:"-"`
	StrokeWidth int              `json:"-"`
	LabelColor  string           `json:"-"`
	Path        string           `json:"-"`
	Points      []model.Point    `json:"-"`
	LabelAt     model.Point      `json:"-"`
	Center      model.LatLng     `json:"-"`
	Href        string           `json:"href"`
	Hovered     bool             `json:"hovered"`
	Selected    bool             `json:"selected"`
}

type LegendEntry struct {
	Fill  string
	Label string
}

type View struct {
	Width   int
	Height  int
	Cells   []Cell
	Legend  []LegendEntry
	Hovered *Cell
}

// Map holds the transient hover and selection state of the region map.
// Hover never fires the callback; Select fires it once per call.
type Map struct {
	regions  []model.Region
	summary  model.Summary
	onSelect func(name string)
	hovered  model.RegionCode
	selected model.RegionCode
}

func NewMap(regions []model.Region, summary model.Summary, onSelect func(name string)) *Map {
	return &Map{regions: regions, summary: summary, onSelect: onSelect}
}

func (m *Map) Hover(code model.RegionCode) {
	m.hovered = code
}

func (m *Map) Select(code model.RegionCode) bool {
	for _, r := range m.regions {
		if r.Code != code {
			continue
		}
		m.selected = code
		if m.onSelect != nil {
			m.onSelect(r.Name)
		}
		return true
	}
	return false
}

func (m *Map) Selected() model.RegionCode {
	return m.selected
}

func (m *Map) View() View {
	view := View{
		Width:  region.ViewWidth,
		Height: region.ViewHeight,
		Cells:  make([]Cell, 0, len(m.regions)),
	}
	for _, b := range allBuckets {
		view.Legend = append(view.Legend, LegendEntry{Fill: b.Fill(), Label: b.Legend()})
	}

	for _, r := range m.regions {
		count := m.summary.RegionCount(r.Code)
		bucket := BucketFor(count)
		cell := Cell{
			Code:        r.Code,
			Name:        r.Name,
			Label:       truncateLabel(r.Name),
			Count:       count,
			Bucket:      bucket,
			Fill:        bucket.Fill(),
			Stroke:      strokeIdle,
			StrokeWidth: 1,
			LabelColor:  bucket.LabelColor(),
			Path:        svgPath(r.Geometry.Points),
			Points:      r.Geometry.Points,
			LabelAt:     r.Geometry.Label,
			Center:      r.Center,
			Href:        "/dashboard/" + url.PathEscape(string(r.Code)),
			Hovered:     r.Code == m.hovered,
			Selected:    r.Code == m.selected,
		}
		if cell.Hovered || cell.Selected {
			cell.Stroke = strokeActive
			cell.StrokeWidth = 2
		}
		view.Cells = append(view.Cells, cell)
	}

	for i := range view.Cells {
		if view.Cells[i].Hovered {
			view.Hovered = &view.Cells[i]
			break
		}
	}
	return view
}

func truncateLabel(name string) string {
	if utf8.RuneCountInString(name) <= labelMaxLen {
		return name
	}
	runes := []rune(name)
	return string(runes[:labelMaxLen-2]) + "..."
}

func svgPath(points []model.Point) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		fmt.Fprintf(&b, "%g %g", p.X, p.Y)
	}
	b.WriteString(" Z")
	return b.String()
}
