package mapview

import (
	"html/template"
	"io"
)

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 {{.Width}} {{.Height}}" class="chile-map" role="img" aria-label="Mapa de licitaciones por región">
<rect x="0" y="0" width="{{.Width}}" height="{{.Height}}" fill="#eff6ff"/>
{{- range .Cells}}
<a href="{{.Href}}" class="region{{if .Selected}} selected{{end}}{{if .Hovered}} hovered{{end}}" data-region="{{.Code}}" data-bucket="{{.Bucket}}">
<title>{{.Name}}: {{.Count}} licitaciones</title>
<path d="{{.Path}}" fill="{{.Fill}}" stroke="{{.Stroke}}" stroke-width="{{.StrokeWidth}}"/>
<text x="{{.LabelAt.X}}" y="{{.LabelAt.Y}}" text-anchor="middle" dominant-baseline="middle" font-size="7" fill="{{.LabelColor}}">{{.Label}}</text>
{{- if gt .Count 0}}
<circle cx="{{badgeX .}}" cy="{{badgeY .}}" r="6" fill="#dc2626"/>
<text x="{{badgeX .}}" y="{{badgeY .}}" text-anchor="middle" dominant-baseline="middle" font-size="6" font-weight="bold" fill="#ffffff">{{.Count}}</text>
{{- end}}
</a>
{{- end}}
</svg>
`

// VectorStrategy renders the regions as SVG shapes linking to the
// region's dashboard.
type VectorStrategy struct {
	tpl *template.Template
}

func NewVectorStrategy() *VectorStrategy {
	tpl := template.Must(template.New("map.svg").Funcs(template.FuncMap{
		"badgeX": func(c Cell) float64 { return maxX(c) - 8 },
		"badgeY": func(c Cell) float64 { return minY(c) + 8 },
	}).Parse(svgTemplate))
	return &VectorStrategy{tpl: tpl}
}

func (s *VectorStrategy) Name() string        { return "vector" }
func (s *VectorStrategy) ContentType() string { return "image/svg+xml; charset=utf-8" }

func (s *VectorStrategy) Render(w io.Writer, v View) error {
	return s.tpl.Execute(w, v)
}

func maxX(c Cell) float64 {
	out := 0.0
	for _, p := range c.Points {
		if p.X > out {
			out = p.X
		}
	}
	return out
}

func minY(c Cell) float64 {
	if len(c.Points) == 0 {
		return 0
	}
	out := c.Points[0].Y
	for _, p := range c.Points[1:] {
		if p.Y < out {
			out = p.Y
		}
	}
	return out
}
