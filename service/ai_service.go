package service

import (
	"context"

	"github.com/tieubaoca/sheetchat-be/types"
)

// AIService produces a streamed completion for a rendered prompt.
type AIService interface {
	GenerateStream(ctx context.Context, prompt string) (types.TokenStream, error)
}
