package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tieubaoca/sheetchat-be/types"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvert_CSV(t *testing.T) {
	path := writeTempCSV(t, "sales.csv", "Month,Revenue\nJan,100\nFeb,120\n")

	converter := NewSpreadsheetConverter()
	markdown, err := converter.Convert(path)
	require.NoError(t, err)

	assert.Contains(t, markdown, "## sales\n")
	assert.Contains(t, markdown, "| Month | Revenue |")
	assert.Contains(t, markdown, "| --- | --- |")
	assert.Contains(t, markdown, "| Jan | 100 |")
	assert.Contains(t, markdown, "| Feb | 120 |")
}

func TestConvert_CSVRaggedRowsArePadded(t *testing.T) {
	path := writeTempCSV(t, "ragged.csv", "A,B,C\n1\n2,3\n")

	converter := NewSpreadsheetConverter()
	markdown, err := converter.Convert(path)
	require.NoError(t, err)

	assert.Contains(t, markdown, "| 1 |  |  |")
	assert.Contains(t, markdown, "| 2 | 3 |  |")
}

func TestConvert_CSVEscapesPipes(t *testing.T) {
	path := writeTempCSV(t, "pipes.csv", "Name,Note\nWidget,\"a|b\"\n")

	converter := NewSpreadsheetConverter()
	markdown, err := converter.Convert(path)
	require.NoError(t, err)

	assert.Contains(t, markdown, `a\|b`)
}

func TestConvert_Xlsx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Revenue"))
	require.NoError(t, f.SetSheetRow("Revenue", "A1", &[]interface{}{"Month", "Total"}))
	require.NoError(t, f.SetSheetRow("Revenue", "A2", &[]interface{}{"Jan", 100}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	converter := NewSpreadsheetConverter()
	markdown, err := converter.Convert(path)
	require.NoError(t, err)

	assert.Contains(t, markdown, "## Revenue\n")
	assert.Contains(t, markdown, "| Month | Total |")
	assert.Contains(t, markdown, "| Jan | 100 |")
}

func TestConvert_UnsupportedExtension(t *testing.T) {
	converter := NewSpreadsheetConverter()
	_, err := converter.Convert("notes.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConversion)
}

func TestConvert_MissingFile(t *testing.T) {
	converter := NewSpreadsheetConverter()
	_, err := converter.Convert(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConversion)
}

func TestConvert_OutputFeedsChunkerLosslessly(t *testing.T) {
	path := writeTempCSV(t, "sales.csv", "Month,Revenue\nJan,100\n")

	converter := NewSpreadsheetConverter()
	markdown, err := converter.Convert(path)
	require.NoError(t, err)

	chunks, err := NewMarkdownChunker().Split(markdown, "sales.csv")
	require.NoError(t, err)

	var rebuilt string
	for _, chunk := range chunks {
		rebuilt += chunk.Text
	}
	assert.Equal(t, markdown, rebuilt)
}
