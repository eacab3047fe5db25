package mapview

import (
	"fmt"
	"io"
	"strings"
)

// Strategy renders a map view in one output format.
type Strategy interface {
	Name() string
	ContentType() string
	Render(w io.Writer, v View) error
}

type Options struct {
	ProviderAPIKey string
	RasterScale    int
}

func StrategyFor(name string, opts Options) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "vector", "svg":
		return NewVectorStrategy(), nil
	case "provider", "json", "markers":
		return NewProviderStrategy(opts.ProviderAPIKey), nil
	case "raster", "png", "image":
		return NewRasterStrategy(opts.RasterScale), nil
	default:
		return nil, fmt.Errorf("unknown map renderer %q", name)
	}
}
