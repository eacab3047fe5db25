package model

import "time"

type Criterion struct {
	Item      string `json:"item"`
	Weighting string `json:"ponderacion"`
}

type Tender struct {
	ID          string `json:"id"`
	Title       string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
	Responsible string `json:"responsable"`
	Organism    string `json:"organismo,omitempty"`

	Amount     *float64 `json:"monto,omitempty"`
	AmountText string   `json:"montoTexto,omitempty"`

	RegionName string     `json:"region"`
	Region     RegionCode `json:"regionCodigo"`
	StatusText string     `json:"estado"`
	Status     Status     `json:"estadoCodigo"`

	PublishedAt      *time.Time `json:"fechaPublicacion,omitempty"`
	ClosesAt         *time.Time `json:"fechaCierre,omitempty"`
	AwardedAt        *time.Time `json:"fechaAdjudicacion,omitempty"`
	QuestionsStart   *time.Time `json:"fechaInicioPreguntas,omitempty"`
	QuestionsEnd     *time.Time `json:"fechaFinPreguntas,omitempty"`
	AnswersPublished *time.Time `json:"fechaPublicacionRespuestas,omitempty"`
	SiteVisit        *time.Time `json:"fechaVisitaTerreno,omitempty"`
	ExtractedAt      *time.Time `json:"fechaExtraccion,omitempty"`

	// Raw date strings the backend sent but that could not be parsed.
	RawDates map[string]string `json:"fechasTexto,omitempty"`

	Criteria []Criterion `json:"criteriosEvaluacion,omitempty"`

	SourceURL         string `json:"urlLicitacion,omitempty"`
	AttachmentsURL    string `json:"urlAdjuntos,omitempty"`
	AltAttachmentsURL string `json:"linkAdjuntos,omitempty"`
	ExternalURL       string `json:"link,omitempty"`
}
