package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored records.
// It is generated using content-based hashing, so identical content
// always produces the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Speaker identifies the author of a conversation turn.
type Speaker int

const (
	// SpeakerUser represents the human user.
	SpeakerUser Speaker = iota + 1
	// SpeakerAssistant represents the assistant.
	SpeakerAssistant
)

// TranscriptSource is one unit of raw spoken content after acquisition.
// It is created at ingestion start, is immutable, and is discarded once
// it has been chunked.
type TranscriptSource struct {
	SourceID  string // unique source identifier, dedup key
	OriginRef string // origin reference, e.g. video or episode id/URL
	Text      string // full raw transcript text
	Language  string // BCP 47 language tag
}

// Chunk is a contiguous substring of a TranscriptSource.
//
// For chunk size s and overlap o, chunk i starts at i*(s-o); the final
// chunk may be shorter than s. The union of chunk spans covers the
// source text with no gaps.
type Chunk struct {
	SourceID string
	Seq      int // sequence index within the source
	Start    int // start character offset in the source text
	End      int // end character offset (exclusive)
	Text     string
}

// EmbeddingRecord is a Chunk plus its embedding vector and metadata.
// Records are created once at ingestion, never mutated, and removed
// only by an index-wide reset. The vector dimension is constant across
// the whole knowledge index.
type EmbeddingRecord struct {
	Id        ID
	SourceID  string
	Seq       int
	OriginRef string
	Language  string
	Text      string
	Vector    []float32
}

// RecordID derives the content-based ID for a chunk of a source.
// Keyed by (sourceID, seq) so re-inserting the same chunk overwrites
// the same key instead of duplicating it.
func RecordID(sourceID string, seq int) ID {
	return IDFromContent(sourceID + ":" + strconv.Itoa(seq))
}

// ConversationTurn is one message in a session.
type ConversationTurn struct {
	Speaker   Speaker
	Text      string
	Timestamp time.Time
}

// Session holds the metadata for one conversation. Turns are stored
// separately, keyed by the session identifier and a sequence number.
type Session struct {
	SessionID    string
	CreatedAt    time.Time
	LastActivity time.Time
	TurnCount    int
}

// SearchResult is one retrieval candidate with its similarity score.
type SearchResult struct {
	Record *EmbeddingRecord
	Score  float32
}
