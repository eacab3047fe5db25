package export

import (
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

const sheetName = "Licitaciones"

type ExcelGenerator struct{}

func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

func (g *ExcelGenerator) Generate(tenders []model.Tender) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	set := func(col, row int, value interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = file.SetCellValue(sheetName, cell, value)
	}

	for i, header := range Headers {
		set(i+1, 1, header)
	}
	for i, t := range tenders {
		for j, value := range record(t) {
			set(j+1, i+2, value)
		}
	}

	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = file.SetCellStyle(sheetName, "A1", "I1", style)
	}
	_ = file.SetColWidth(sheetName, "A", "A", 18)
	_ = file.SetColWidth(sheetName, "B", "B", 50)
	_ = file.SetColWidth(sheetName, "C", "C", 32)
	_ = file.SetColWidth(sheetName, "D", "G", 16)
	_ = file.SetColWidth(sheetName, "H", "I", 40)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
