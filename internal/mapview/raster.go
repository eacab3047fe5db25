package mapview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	defaultRasterScale = 2
	MaxRasterScale     = 4
)

// RasterStrategy draws the map into a PNG, for contexts that cannot embed
// SVG (mail digests, chat previews).
type RasterStrategy struct {
	scale int
}

func NewRasterStrategy(scale int) *RasterStrategy {
	if scale <= 0 {
		scale = defaultRasterScale
	}
	scale = min(scale, MaxRasterScale)
	return &RasterStrategy{scale: scale}
}

func (s *RasterStrategy) Name() string        { return "raster" }
func (s *RasterStrategy) ContentType() string { return "image/png" }

func (s *RasterStrategy) Render(w io.Writer, v View) error {
	width, height := v.Width*s.scale, v.Height*s.scale
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(mustHex("#eff6ff")), image.Point{}, draw.Src)

	scale := float32(s.scale)
	for _, cell := range v.Cells {
		if len(cell.Points) < 3 {
			continue
		}
		// Outline first, then the fill inset by the stroke width.
		s.fillPolygon(img, cell, scale, mustHex(cell.Stroke), 0)
		s.fillPolygon(img, cell, scale, mustHex(cell.Fill), float32(cell.StrokeWidth))
		s.drawLabel(img, cell)
	}
	return png.Encode(w, img)
}

func (s *RasterStrategy) fillPolygon(img *image.RGBA, cell Cell, scale float32, fill color.Color, inset float32) {
	bounds := img.Bounds()
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())

	cx, cy := centroid(cell)
	for i, p := range cell.Points {
		x, y := float32(p.X)*scale, float32(p.Y)*scale
		if inset > 0 {
			x, y = shrinkToward(x, y, float32(cx)*scale, float32(cy)*scale, inset)
		}
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	z.Draw(img, bounds, image.NewUniform(fill), image.Point{})
}

func (s *RasterStrategy) drawLabel(img *image.RGBA, cell Cell) {
	text := cell.Label
	if cell.Count > 0 {
		text = fmt.Sprintf("%s (%d)", cell.Label, cell.Count)
	}
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(mustHex(cell.LabelColor)),
		Face: face,
	}
	textWidth := drawer.MeasureString(text).Round()
	x := int(cell.LabelAt.X)*s.scale - textWidth/2
	y := int(cell.LabelAt.Y)*s.scale + face.Ascent/2
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(text)
}

func centroid(cell Cell) (float64, float64) {
	var sx, sy float64
	for _, p := range cell.Points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(cell.Points))
	return sx / n, sy / n
}

func shrinkToward(x, y, cx, cy, by float32) (float32, float32) {
	dx, dy := cx-x, cy-y
	switch {
	case dx > by:
		x += by
	case dx < -by:
		x -= by
	}
	switch {
	case dy > by:
		y += by
	case dy < -by:
		y -= by
	}
	return x, y
}

func mustHex(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGBA{A: 0xff}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
