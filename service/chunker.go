package service

import (
	"fmt"
	"strings"

	"github.com/tieubaoca/sheetchat-be/types"
)

// MarkdownChunker splits converted markdown into retrieval-sized chunks at
// structural boundaries: before each heading line and between separate
// tables. A table row is never divided because splits only ever fall on
// those boundaries. Chunks are exact substrings of the input, so their
// in-order concatenation reproduces the input byte for byte.
type MarkdownChunker struct{}

func NewMarkdownChunker() *MarkdownChunker {
	return &MarkdownChunker{}
}

// Split breaks text into ordered chunks. Deterministic: the same input
// always yields the same chunk sequence.
func (c *MarkdownChunker) Split(text, source string) ([]types.Chunk, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", types.ErrChunking)
	}

	var chunks []types.Chunk
	var cur strings.Builder
	section := ""
	curSection := ""
	inTable := false
	tableEndedInChunk := false

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		chunks = append(chunks, types.Chunk{
			Text:  cur.String(),
			Index: len(chunks),
			Metadata: types.ChunkMetadata{
				Section: curSection,
				Source:  source,
			},
		})
		cur.Reset()
		tableEndedInChunk = false
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		switch {
		case isHeadingLine(line):
			flush()
			section = headingText(line)
			inTable = false
		case isTableLine(line):
			if !inTable && tableEndedInChunk {
				// A second table under the same heading starts its own chunk.
				flush()
			}
			inTable = true
		default:
			if inTable {
				tableEndedInChunk = true
			}
			inTable = false
		}
		if cur.Len() == 0 {
			curSection = section
		}
		cur.WriteString(line)
	}
	flush()

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks produced", types.ErrChunking)
	}
	return chunks, nil
}

func isHeadingLine(line string) bool {
	return strings.HasPrefix(strings.TrimRight(line, "\r\n"), "#")
}

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimRight(line, "\r\n"), "|")
}

func headingText(line string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimRight(line, "\r\n"), "# "))
}
