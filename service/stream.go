package service

import (
	"io"
	"strings"

	"github.com/tieubaoca/sheetchat-be/types"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// ThinkFilter wraps a TokenStream and strips reasoning markup: everything
// between <think> and </think>, markers included, never reaches the caller.
// Markers may arrive split across fragments, so open/closed state and any
// partially-matched marker are carried between Recv calls.
type ThinkFilter struct {
	src     types.TokenStream
	inThink bool
	carry   string
	done    bool
}

func NewThinkFilter(src types.TokenStream) *ThinkFilter {
	return &ThinkFilter{src: src}
}

// Recv returns the next visible fragment. It keeps pulling from the source
// until visible text is available, the source is exhausted, or it fails.
func (f *ThinkFilter) Recv() (string, error) {
	if f.done {
		return "", io.EOF
	}
	for {
		frag, err := f.src.Recv()
		if err == io.EOF {
			f.done = true
			// A held-back partial open marker outside a think block turned
			// out to be literal text. An unclosed think block is discarded.
			if !f.inThink && f.carry != "" {
				out := f.carry
				f.carry = ""
				return out, nil
			}
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
		if out := f.filter(frag); out != "" {
			return out, nil
		}
	}
}

func (f *ThinkFilter) Close() error {
	return f.src.Close()
}

func (f *ThinkFilter) filter(frag string) string {
	data := f.carry + frag
	f.carry = ""

	var out strings.Builder
	for data != "" {
		if f.inThink {
			if i := strings.Index(data, thinkClose); i >= 0 {
				data = data[i+len(thinkClose):]
				f.inThink = false
				continue
			}
			f.carry = partialMarkerSuffix(data, thinkClose)
			data = ""
			continue
		}
		if i := strings.Index(data, thinkOpen); i >= 0 {
			out.WriteString(data[:i])
			data = data[i+len(thinkOpen):]
			f.inThink = true
			continue
		}
		tail := partialMarkerSuffix(data, thinkOpen)
		out.WriteString(data[:len(data)-len(tail)])
		f.carry = tail
		data = ""
	}
	return out.String()
}

// partialMarkerSuffix returns the longest suffix of data that is a proper
// prefix of marker, i.e. text that might become a marker once the next
// fragment arrives.
func partialMarkerSuffix(data, marker string) string {
	max := len(marker) - 1
	if len(data) < max {
		max = len(data)
	}
	for k := max; k > 0; k-- {
		if strings.HasPrefix(marker, data[len(data)-k:]) {
			return data[len(data)-k:]
		}
	}
	return ""
}
