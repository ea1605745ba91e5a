package service

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tieubaoca/sheetchat-be/types"
)

// SpreadsheetConverter turns a spreadsheet file into a single markdown blob.
// Each sheet becomes a heading followed by a markdown table with the header
// row preserved. The output feeds the markdown chunker, which keeps table
// rows intact.
type SpreadsheetConverter struct{}

func NewSpreadsheetConverter() *SpreadsheetConverter {
	return &SpreadsheetConverter{}
}

// Convert reads the spreadsheet at filePath and renders it as markdown.
// Only reads the file; no other side effects.
func (c *SpreadsheetConverter) Convert(filePath string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".xlsx":
		return c.convertExcel(filePath)
	case ".csv":
		return c.convertCSV(filePath)
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", types.ErrConversion, ext)
	}
}

func (c *SpreadsheetConverter) convertExcel(filePath string) (string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrConversion, err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("%w: reading sheet %q: %v", types.ErrConversion, sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		sb.WriteString("## " + sheet + "\n\n")
		sb.WriteString(renderMarkdownTable(rows))
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: no extractable sheets in %s", types.ErrConversion, filepath.Base(filePath))
	}
	return sb.String(), nil
}

func (c *SpreadsheetConverter) convertCSV(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrConversion, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrConversion, err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: empty file %s", types.ErrConversion, filepath.Base(filePath))
	}

	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	var sb strings.Builder
	sb.WriteString("## " + name + "\n\n")
	sb.WriteString(renderMarkdownTable(rows))
	sb.WriteString("\n")
	return sb.String(), nil
}

// renderMarkdownTable renders rows as a markdown table. The first row is the
// header. Ragged rows are padded to the widest row so every line has the
// same column count.
func renderMarkdownTable(rows [][]string) string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		width = 1
	}

	var sb strings.Builder
	for i, row := range rows {
		sb.WriteString("|")
		for col := 0; col < width; col++ {
			cell := ""
			if col < len(row) {
				cell = escapeCell(row[col])
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
		}
	}
	return sb.String()
}

// escapeCell keeps cell content on a single table line.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
