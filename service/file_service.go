package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tieubaoca/sheetchat-be/database"
	"github.com/tieubaoca/sheetchat-be/types"
	"github.com/tieubaoca/sheetchat-be/utils"
)

// FileService handles spreadsheet ingestion: it stores the uploaded file in
// a session-scoped location, converts and chunks it, embeds the chunks and
// builds the query engine through the cache. A failed build caches nothing;
// no partially-indexed document is ever queryable.
type FileService struct {
	uploadDir string
	converter *SpreadsheetConverter
	chunker   *MarkdownChunker
	embedder  Embedder
	ai        AIService
	builder   database.IndexBuilder
	cache     *EngineCache
	topK      int

	mu   sync.Mutex
	docs map[string]*storedDocument
}

type storedDocument struct {
	doc    types.Document
	chunks int
}

// IngestResult describes a processed document.
type IngestResult struct {
	Document types.Document
	Chunks   int
	Engine   *QueryEngine
}

func NewFileService(
	uploadDir string,
	converter *SpreadsheetConverter,
	chunker *MarkdownChunker,
	embedder Embedder,
	ai AIService,
	builder database.IndexBuilder,
	cache *EngineCache,
	topK int,
) *FileService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		panic(err)
	}
	return &FileService{
		uploadDir: uploadDir,
		converter: converter,
		chunker:   chunker,
		embedder:  embedder,
		ai:        ai,
		builder:   builder,
		cache:     cache,
		topK:      topK,
		docs:      make(map[string]*storedDocument),
	}
}

// Upload saves the uploaded bytes and ingests the document for the session.
func (s *FileService) Upload(ctx context.Context, sessionID, filename string, src io.Reader) (*IngestResult, error) {
	if err := checkExtension(filename); err != nil {
		return nil, err
	}
	path, err := utils.SaveUploadedFile(s.uploadDir, sessionID, filename, src)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, sessionID, filename, path)
}

// IngestPath ingests a spreadsheet already on disk (CLI use).
func (s *FileService) IngestPath(ctx context.Context, sessionID, path string) (*IngestResult, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}
	return s.ingest(ctx, sessionID, filepath.Base(path), path)
}

func (s *FileService) ingest(ctx context.Context, sessionID, filename, path string) (*IngestResult, error) {
	key := types.DocumentKey(sessionID, filename)

	engine, err := s.cache.GetOrBuild(key, func() (*QueryEngine, error) {
		return s.build(ctx, key, sessionID, filename, path)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	stored := s.docs[key]
	s.mu.Unlock()
	if stored == nil {
		// The cache hit predates this process knowing the document; rebuild
		// the record from the file on disk.
		markdown, convErr := s.converter.Convert(path)
		if convErr != nil {
			return nil, convErr
		}
		stored = &storedDocument{
			doc: types.Document{
				Key:      key,
				Session:  sessionID,
				Filename: filename,
				Path:     path,
				Markdown: markdown,
			},
		}
		s.mu.Lock()
		s.docs[key] = stored
		s.mu.Unlock()
	}

	return &IngestResult{
		Document: stored.doc,
		Chunks:   stored.chunks,
		Engine:   engine,
	}, nil
}

// build runs the full ingestion pipeline. An error at any stage aborts the
// whole build and nothing is recorded.
func (s *FileService) build(ctx context.Context, key, sessionID, filename, path string) (*QueryEngine, error) {
	markdown, err := s.converter.Convert(path)
	if err != nil {
		return nil, err
	}

	chunks, err := s.chunker.Split(markdown, filename)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	index, err := s.builder.Build(ctx, key, chunks, vectors)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.docs[key] = &storedDocument{
		doc: types.Document{
			Key:      key,
			Session:  sessionID,
			Filename: filename,
			Path:     path,
			Markdown: markdown,
		},
		chunks: len(chunks),
	}
	s.mu.Unlock()

	return NewQueryEngine(index, s.embedder, s.ai, s.topK), nil
}

// Document returns the ingested document for a cache key.
func (s *FileService) Document(key string) (*types.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.docs[key]
	if !ok {
		return nil, false
	}
	doc := stored.doc
	return &doc, true
}

// RemoveSession forgets the session's documents and uploaded files.
func (s *FileService) RemoveSession(sessionID string) {
	prefix := sessionID + "-"
	s.mu.Lock()
	for key := range s.docs {
		if strings.HasPrefix(key, prefix) {
			delete(s.docs, key)
		}
	}
	s.mu.Unlock()
	utils.RemoveSessionFiles(s.uploadDir, sessionID)
}

func checkExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".xlsx" && ext != ".csv" {
		return fmt.Errorf("%w: unsupported file type: %s", types.ErrConversion, ext)
	}
	return nil
}
