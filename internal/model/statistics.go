package model

import "time"

// Statistics is the aggregate payload served by the remote /estadisticas
// endpoint. RegionSummary is keyed by the backend's region spelling.
type Statistics struct {
	TotalTenders  int
	OpenTenders   int
	Organisms     int
	TotalAmount   float64
	RegionSummary map[string]int
	LastUpdated   *time.Time
}

func (s *Statistics) IsEmpty() bool {
	if s == nil {
		return true
	}
	return s.TotalTenders == 0 && len(s.RegionSummary) == 0
}

type Summary struct {
	TotalCount     int                `json:"totalLicitaciones"`
	OpenCount      int                `json:"licitacionesAbiertas"`
	Organisms      int                `json:"organismos"`
	TotalAmount    float64            `json:"montoTotal"`
	CountsByRegion map[RegionCode]int `json:"porRegion"`
	CountsByStatus map[Status]int     `json:"porEstado"`
	LastUpdated    time.Time          `json:"fechaUltimaActualizacion"`
	FromServer     bool               `json:"desdeServidor"`
}

func (s Summary) RegionCount(code RegionCode) int {
	return s.CountsByRegion[code]
}
