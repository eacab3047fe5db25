package mapview

import (
	"encoding/json"
	"io"
)

// Centre of continental Chile and the zoom that fits all regions.
const (
	providerCenterLat = -35.6751
	providerCenterLng = -71.5430
	providerZoom      = 5
)

type providerMarker struct {
	Cell
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Bucket string  `json:"bucket"`
}

type providerPayload struct {
	Provider string           `json:"provider"`
	APIKey   string           `json:"apiKey,omitempty"`
	Center   [2]float64       `json:"center"`
	Zoom     int              `json:"zoom"`
	Markers  []providerMarker `json:"markers"`
}

// ProviderStrategy emits a marker feed for an external map widget; the
// geometry stays on the provider side and only region centres are sent.
type ProviderStrategy struct {
	apiKey string
}

func NewProviderStrategy(apiKey string) *ProviderStrategy {
	return &ProviderStrategy{apiKey: apiKey}
}

func (s *ProviderStrategy) Name() string        { return "provider" }
func (s *ProviderStrategy) ContentType() string { return "application/json; charset=utf-8" }

func (s *ProviderStrategy) Render(w io.Writer, v View) error {
	payload := providerPayload{
		Provider: "google",
		APIKey:   s.apiKey,
		Center:   [2]float64{providerCenterLat, providerCenterLng},
		Zoom:     providerZoom,
		Markers:  make([]providerMarker, 0, len(v.Cells)),
	}
	for _, cell := range v.Cells {
		payload.Markers = append(payload.Markers, providerMarker{
			Cell:   cell,
			Lat:    cell.Center.Lat,
			Lng:    cell.Center.Lng,
			Bucket: cell.Bucket.String(),
		})
	}
	return json.NewEncoder(w).Encode(payload)
}
