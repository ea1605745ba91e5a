package handler

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPreviewExcerpt_ShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "## sales\n", previewExcerpt("## sales\n"))
}

func TestPreviewExcerpt_CapsAtLimit(t *testing.T) {
	long := strings.Repeat("a", previewLimit+100)
	got := previewExcerpt(long)
	assert.Len(t, got, previewLimit)
}

func TestPreviewExcerpt_NeverSplitsRunes(t *testing.T) {
	// A multi-byte rune straddling the limit is dropped whole.
	input := strings.Repeat("a", previewLimit-1) + "日本語"
	got := previewExcerpt(input)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", previewLimit-1), got)
}
