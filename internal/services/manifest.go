package services

import (
	"bytes"
	"fmt"
	"strconv"

	"hajjumrahflow/internal/utils"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"
)

var manifestHeaders = []string{"#", "Full Name", "Passport Number", "Nationality", "Date of Birth"}

func manifestFilename(m Manifest, ext string) string {
	return fmt.Sprintf("manifest_%s.%s", utils.SafeFilenamePart(m.Trip.Name), ext)
}

func manifestRows(m Manifest) [][]string {
	rows := make([][]string, 0, len(m.Passengers))
	for i, c := range m.Passengers {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.FullName,
			c.PassportNumber,
			c.Nationality,
			utils.FormatDate(c.DateOfBirth),
		})
	}
	return rows
}

func buildManifestPDF(m Manifest) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Passenger Manifest", false)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Passenger Manifest: "+m.Trip.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Departure: %s    Return: %s",
		utils.FormatDateTime(m.Trip.DepartureDate), utils.FormatDateTime(m.Trip.ReturnDate)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	widths := []float64{10, 70, 40, 35, 35}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range manifestHeaders {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range manifestRows(m) {
		for i, v := range row {
			align := "L"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 7, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(m.Passengers) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "No passengers booked for this trip.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), manifestFilename(m, "pdf"), nil
}

func buildManifestXLSX(m Manifest) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Manifest"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}

	header := make([]any, len(manifestHeaders))
	for i, h := range manifestHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", err
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", bold); err != nil {
		return nil, "", err
	}

	for i, row := range manifestRows(m) {
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		vals[0] = i + 1
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return nil, "", err
		}
	}
	_ = f.SetColWidth(sheet, "B", "B", 30)
	_ = f.SetColWidth(sheet, "C", "E", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), manifestFilename(m, "xlsx"), nil
}
