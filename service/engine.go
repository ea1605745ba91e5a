package service

import (
	"context"
	"strings"

	"github.com/tieubaoca/sheetchat-be/database"
	"github.com/tieubaoca/sheetchat-be/types"
)

// qaPromptTemplate must stay byte-for-byte identical to the reference
// deployment; the "I don't know!" convention is a prompt-level contract, not
// enforced in code.
const qaPromptTemplate = `Context information is below.
---------------------
{context_str}
---------------------
Given the context information above I want you to think step by step to
answer the query in a highly precise and crisp manner focused on the
final answer, incase case you don't know the answer say 'I don't know!'.
Query: {query_str}
Answer:`

// QueryEngine binds one document's vector index to the embedding provider,
// the generation model and the instruction template. Engines are owned by
// the cache entry that created them.
type QueryEngine struct {
	index    database.Index
	embedder Embedder
	ai       AIService
	topK     int
}

func NewQueryEngine(index database.Index, embedder Embedder, ai AIService, topK int) *QueryEngine {
	if topK <= 0 {
		topK = 2
	}
	return &QueryEngine{
		index:    index,
		embedder: embedder,
		ai:       ai,
		topK:     topK,
	}
}

// Ask embeds the query, retrieves the top-K chunks, renders the prompt and
// submits it for streamed generation. The returned stream is already
// wrapped in the reasoning filter.
func (e *QueryEngine) Ask(ctx context.Context, query string) (types.TokenStream, error) {
	queryVector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	retrieved, err := e.index.Retrieve(ctx, queryVector, e.topK)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, len(retrieved))
	for i, r := range retrieved {
		contexts[i] = r.Chunk.Text
	}

	prompt := renderPrompt(strings.Join(contexts, "\n\n"), query)
	stream, err := e.ai.GenerateStream(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return NewThinkFilter(stream), nil
}

// renderPrompt substitutes the placeholders verbatim; no escaping that
// would alter content.
func renderPrompt(contextStr, queryStr string) string {
	prompt := strings.ReplaceAll(qaPromptTemplate, "{context_str}", contextStr)
	return strings.ReplaceAll(prompt, "{query_str}", queryStr)
}
