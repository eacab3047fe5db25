package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/licitaciones-portal/internal/model"
	"github.com/nurpe/licitaciones-portal/internal/view"
)

func samplePage() []model.Tender {
	amount := 1500000.0
	published := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	return []model.Tender{
		{
			ID:             "1057-12-LE25",
			Title:          "Reparación de veredas",
			Responsible:    "Municipalidad de Temuco",
			Amount:         &amount,
			RegionName:     "Araucanía",
			StatusText:     "Publicada",
			Status:         model.StatusPublicada,
			PublishedAt:    &published,
			SourceURL:      "https://www.mercadopublico.cl/ficha?id=1057-12-LE25",
			AttachmentsURL: "https://www.mercadopublico.cl/Attachment/ViewAttachment.aspx?enc=abc",
		},
		{
			ID:          "2201-4-L125",
			Title:       "Compra de insumos",
			Responsible: "Hospital Regional",
			AmountText:  "a convenir",
			RegionName:  "Región de Los Lagos",
			Status:      model.StatusCerrada,
			RawDates:    map[string]string{"fechaPublicacion": "sin fecha"},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, samplePage()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d; want header + 2", len(rows))
	}
	if rows[0][4] != "Región" || rows[0][6] != "Fecha Publicación" {
		t.Fatalf("header=%v", rows[0])
	}
	if rows[1][3] != "1500000" || rows[1][6] != "2025-03-09" {
		t.Fatalf("row1=%v", rows[1])
	}
	if rows[2][3] != "a convenir" || rows[2][5] != "Cerrada" || rows[2][6] != "sin fecha" {
		t.Fatalf("row2=%v", rows[2])
	}
}

func TestWriteCSV_EmptyPageWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, _ := csv.NewReader(&buf).ReadAll()
	if len(rows) != 1 {
		t.Fatalf("rows=%d; want 1", len(rows))
	}
}

func TestExcelMatchesCSV(t *testing.T) {
	page := samplePage()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, page); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	csvRows, _ := csv.NewReader(&buf).ReadAll()

	data, err := NewExcelGenerator().Generate(page)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	xlsxRows, err := f.GetRows("Licitaciones")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(xlsxRows) != len(csvRows) {
		t.Fatalf("xlsx rows=%d csv rows=%d", len(xlsxRows), len(csvRows))
	}
	for i := range csvRows {
		for j := range csvRows[i] {
			var got string
			if j < len(xlsxRows[i]) {
				got = xlsxRows[i][j]
			}
			if got != csvRows[i][j] {
				t.Fatalf("cell (%d,%d): xlsx=%q csv=%q", i, j, got, csvRows[i][j])
			}
		}
	}
}

func TestPDFGenerator(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	d := view.NewDetail(samplePage()[0], now)
	data, err := NewPDFGenerator().Generate(d)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}
