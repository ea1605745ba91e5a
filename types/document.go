package types

// Document represents one uploaded spreadsheet within a session.
type Document struct {
	Key      string // session id + "-" + original filename
	Session  string // owning session id
	Filename string // original filename
	Path     string // temporary location of the uploaded bytes
	Markdown string // converted markdown text
}

// Chunk is a contiguous span of a converted document's markdown text.
// Chunks for one document are ordered; concatenating their text in Index
// order reproduces the converted document exactly.
type Chunk struct {
	Text     string        // The raw text content
	Index    int           // Sequence position in the document
	Metadata ChunkMetadata // Associated metadata for the chunk
}

// ChunkMetadata contains structural metadata for a chunk.
type ChunkMetadata struct {
	Section string // Nearest preceding markdown heading, if any
	Source  string // Original filename the chunk came from
}

// ScoredChunk pairs a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// DocumentKey derives the cache identity of an uploaded document. The key is
// stable across repeated uploads of the same filename within a session; two
// different files with the same name in one session collide and share a
// cache entry.
func DocumentKey(sessionID, filename string) string {
	return sessionID + "-" + filename
}
