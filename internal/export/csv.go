package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

const (
	CSVFileName   = "licitaciones.csv"
	ExcelFileName = "licitaciones.xlsx"
)

// WriteCSV writes the header and one row per tender.
func WriteCSV(w io.Writer, tenders []model.Tender) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range tenders {
		if err := cw.Write(record(t)); err != nil {
			return fmt.Errorf("write csv row %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
