package export

import (
	"fmt"
	"io"
	"time"

	"github.com/tealeg/xlsx"
)

// TimelineRow is one antibiotic course in the spreadsheet export.
type TimelineRow struct {
	PatientName string
	Leito       string
	Drug        string
	Dose        string
	Route       string
	StartDate   time.Time
	EndDate     *time.Time
	CurrentDay  int
	Status      string
}

// WriteTimelineXLSX writes the antibiotic timeline as an xlsx workbook.
func WriteTimelineXLSX(w io.Writer, rows []TimelineRow) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Antibióticos")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, title := range []string{"Paciente", "Leito", "Antibiótico", "Dose", "Via", "Início", "Término", "Dia", "Status"} {
		cell := header.AddCell()
		cell.Value = title
		cell.GetStyle().Font.Bold = true
	}

	for _, tr := range rows {
		row := sheet.AddRow()
		row.AddCell().Value = tr.PatientName
		row.AddCell().Value = tr.Leito
		row.AddCell().Value = tr.Drug
		row.AddCell().Value = tr.Dose
		row.AddCell().Value = tr.Route
		row.AddCell().Value = tr.StartDate.Format("02/01/2006")
		end := ""
		if tr.EndDate != nil {
			end = tr.EndDate.Format("02/01/2006")
		}
		row.AddCell().Value = end
		row.AddCell().SetInt(tr.CurrentDay)
		row.AddCell().Value = tr.Status
	}

	return file.Write(w)
}
