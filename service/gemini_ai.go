package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tieubaoca/sheetchat-be/types"
)

// GeminiService streams completions from the Gemini API. Alternative to
// OpenAIService, selected by the provider config.
type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiService(ctx context.Context, apiKey, modelName string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (s *GeminiService) GenerateStream(ctx context.Context, prompt string) (types.TokenStream, error) {
	iter := s.model.GenerateContentStream(ctx, genai.Text(prompt))
	return &geminiTokenStream{iter: iter}, nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}

type geminiTokenStream struct {
	iter *genai.GenerateContentResponseIterator
}

func (s *geminiTokenStream) Recv() (string, error) {
	resp, err := s.iter.Next()
	if err == iterator.Done {
		return "", io.EOF
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String(), nil
}

func (s *geminiTokenStream) Close() error {
	return nil
}
