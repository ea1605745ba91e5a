package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/sheetchat-be/types"
)

const sampleMarkdown = `## Sheet1

| Month | Revenue |
| --- | --- |
| Jan | 100 |
| Feb | 120 |

## Sheet2

| Item | Cost |
| --- | --- |
| Rent | 40 |
`

func TestSplit_ReconstructsInput(t *testing.T) {
	chunker := NewMarkdownChunker()
	chunks, err := chunker.Split(sampleMarkdown, "sales.xlsx")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var sb strings.Builder
	for _, chunk := range chunks {
		sb.WriteString(chunk.Text)
	}
	assert.Equal(t, sampleMarkdown, sb.String())
}

func TestSplit_SplitsAtHeadings(t *testing.T) {
	chunker := NewMarkdownChunker()
	chunks, err := chunker.Split(sampleMarkdown, "sales.xlsx")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "Sheet1", chunks[0].Metadata.Section)
	assert.Equal(t, "Sheet2", chunks[1].Metadata.Section)
	assert.Equal(t, "sales.xlsx", chunks[0].Metadata.Source)
	assert.True(t, strings.HasPrefix(chunks[1].Text, "## Sheet2"))
}

func TestSplit_NeverSplitsTableRows(t *testing.T) {
	chunker := NewMarkdownChunker()
	chunks, err := chunker.Split(sampleMarkdown, "sales.xlsx")
	require.NoError(t, err)

	for _, chunk := range chunks {
		for _, line := range strings.Split(strings.TrimRight(chunk.Text, "\n"), "\n") {
			if strings.HasPrefix(line, "|") {
				assert.True(t, strings.HasSuffix(line, "|"), "row cut mid-line: %q", line)
			}
		}
	}
}

func TestSplit_SeparatesTablesUnderOneHeading(t *testing.T) {
	input := "## Data\n\n| A |\n| --- |\n| 1 |\n\n| B |\n| --- |\n| 2 |\n"

	chunker := NewMarkdownChunker()
	chunks, err := chunker.Split(input, "data.csv")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Contains(t, chunks[0].Text, "| A |")
	assert.NotContains(t, chunks[0].Text, "| B |")
	assert.Contains(t, chunks[1].Text, "| B |")
	assert.Equal(t, "Data", chunks[1].Metadata.Section)
	assert.Equal(t, input, chunks[0].Text+chunks[1].Text)
}

func TestSplit_Deterministic(t *testing.T) {
	chunker := NewMarkdownChunker()
	first, err := chunker.Split(sampleMarkdown, "sales.xlsx")
	require.NoError(t, err)
	second, err := chunker.Split(sampleMarkdown, "sales.xlsx")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplit_IndicesAreSequential(t *testing.T) {
	chunker := NewMarkdownChunker()
	chunks, err := chunker.Split(sampleMarkdown, "sales.xlsx")
	require.NoError(t, err)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	chunker := NewMarkdownChunker()
	_, err := chunker.Split("", "empty.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrChunking)
}
