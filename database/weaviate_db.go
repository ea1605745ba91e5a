package database

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/tieubaoca/sheetchat-be/config"
	"github.com/tieubaoca/sheetchat-be/types"
)

const BATCH_SIZE = 200

// WeaviateStore is the optional index backend: one Weaviate class per
// document key, vectors supplied at insert time, retrieval via nearVector.
// The class is recreated on every build; it offloads similarity compute to
// the server, it is not persistence.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(cfg config.VectorStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}
	return &WeaviateStore{client: client}, nil
}

// classNameForKey maps a document key to a valid Weaviate class name:
// uppercase start, alphanumeric only.
func classNameForKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("SheetDoc%x", sum[:6])
}

func chunkClassObject(name string) *models.Class {
	return &models.Class{
		Class: name,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "section", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
		},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
}

func (s *WeaviateStore) Build(ctx context.Context, key string, chunks []types.Chunk, vectors [][]float32) (Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	className := classNameForKey(key)

	// An earlier process may have left the class behind; replace it.
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}
	for _, class := range schema.Classes {
		if class.Class == className {
			if err := s.client.Schema().ClassDeleter().WithClassName(className).Do(ctx); err != nil {
				return nil, fmt.Errorf("failed to delete class %s: %v", className, err)
			}
			break
		}
	}
	if err := s.client.Schema().ClassCreator().WithClass(chunkClassObject(className)).Do(ctx); err != nil {
		return nil, fmt.Errorf("failed to create class %s: %v", className, err)
	}

	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class: className,
				Properties: map[string]interface{}{
					"content":    chunks[j].Text,
					"section":    chunks[j].Metadata.Section,
					"source":     chunks[j].Metadata.Source,
					"chunkIndex": chunks[j].Index,
				},
				Vector: vectors[j],
			})
		}
		if _, err := batcher.Do(ctx); err != nil {
			return nil, fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
		log.Printf("Inserted batch %d-%d of %d chunks", i, end, total)
	}

	return &weaviateIndex{client: s.client, className: className}, nil
}

func (s *WeaviateStore) Drop(ctx context.Context, key string) error {
	return s.client.Schema().ClassDeleter().WithClassName(classNameForKey(key)).Do(ctx)
}

type weaviateIndex struct {
	client    *weaviate.Client
	className string
}

// Retrieve scores results with Weaviate's certainty, (1+cosine)/2, a
// monotonic transform of cosine similarity.
func (idx *weaviateIndex) Retrieve(ctx context.Context, queryVector []float32, k int) ([]types.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "section"},
		{Name: "source"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}
	nearVector := idx.client.GraphQL().NearVectorArgBuilder().
		WithVector(queryVector)

	result, err := idx.client.GraphQL().Get().
		WithClassName(idx.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %v", err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("retrieval failed: %v", result.Errors[0].Message)
	}

	var results []types.ScoredChunk
	get, _ := result.Data["Get"].(map[string]interface{})
	if data, ok := get[idx.className].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			score := math.NaN()
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				if certainty, ok := additional["certainty"].(float64); ok {
					score = certainty
				}
			}
			if math.IsNaN(score) || math.IsInf(score, 0) {
				continue
			}
			results = append(results, types.ScoredChunk{
				Chunk: types.Chunk{
					Text:  parseString(obj["content"]),
					Index: int(parseFloat(obj["chunkIndex"])),
					Metadata: types.ChunkMetadata{
						Section: parseString(obj["section"]),
						Source:  parseString(obj["source"]),
					},
				},
				Score: score,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Helper functions
func parseString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func parseFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}
