package service

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStream plays back a fixed fragment sequence, then finalErr (io.EOF by
// default).
type stubStream struct {
	frags    []string
	pos      int
	finalErr error
	closed   bool
}

func (s *stubStream) Recv() (string, error) {
	if s.pos >= len(s.frags) {
		if s.finalErr != nil {
			return "", s.finalErr
		}
		return "", io.EOF
	}
	frag := s.frags[s.pos]
	s.pos++
	return frag, nil
}

func (s *stubStream) Close() error {
	s.closed = true
	return nil
}

func drainFilter(t *testing.T, frags []string) string {
	t.Helper()
	filter := NewThinkFilter(&stubStream{frags: frags})
	var out string
	for {
		frag, err := filter.Recv()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out += frag
	}
}

func TestThinkFilter_MarkersSplitAcrossFragments(t *testing.T) {
	out := drainFilter(t, []string{"<th", "ink>hidden</thi", "nk>visible"})
	assert.Equal(t, "visible", out)
}

func TestThinkFilter_PassThrough(t *testing.T) {
	out := drainFilter(t, []string{"plain ", "answer"})
	assert.Equal(t, "plain answer", out)
}

func TestThinkFilter_StripsInlineBlock(t *testing.T) {
	out := drainFilter(t, []string{"<think>step by step</think>$60"})
	assert.Equal(t, "$60", out)
}

func TestThinkFilter_MultipleBlocks(t *testing.T) {
	out := drainFilter(t, []string{"<think>a</think>one ", "<think>b</think>two"})
	assert.Equal(t, "one two", out)
}

func TestThinkFilter_UnclosedBlockDiscarded(t *testing.T) {
	out := drainFilter(t, []string{"before <think>never closed"})
	assert.Equal(t, "before ", out)
}

func TestThinkFilter_PartialOpenAtEOFIsLiteral(t *testing.T) {
	// "<th" never completes into a marker, so it is real output.
	out := drainFilter(t, []string{"answer <th"})
	assert.Equal(t, "answer <th", out)
}

func TestThinkFilter_FalseAlarmPartialMarker(t *testing.T) {
	out := drainFilter(t, []string{"a <t", "errible answer"})
	assert.Equal(t, "a <terrible answer", out)
}

func TestThinkFilter_SourceError(t *testing.T) {
	wantErr := errors.New("stream broke")
	filter := NewThinkFilter(&stubStream{frags: []string{"ok "}, finalErr: wantErr})

	frag, err := filter.Recv()
	require.NoError(t, err)
	assert.Equal(t, "ok ", frag)

	_, err = filter.Recv()
	assert.ErrorIs(t, err, wantErr)
}

func TestThinkFilter_EOFIsSticky(t *testing.T) {
	filter := NewThinkFilter(&stubStream{frags: []string{"done"}})
	frag, err := filter.Recv()
	require.NoError(t, err)
	assert.Equal(t, "done", frag)

	_, err = filter.Recv()
	assert.Equal(t, io.EOF, err)
	_, err = filter.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestThinkFilter_ClosePropagates(t *testing.T) {
	src := &stubStream{}
	filter := NewThinkFilter(src)
	require.NoError(t, filter.Close())
	assert.True(t, src.closed)
}
