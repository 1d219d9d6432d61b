package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/cadenza-ai/mentor/core"
)

// Key prefixes for different data types
const (
	knowledgeRecordPrefix = "knorec"
	knowledgeSourcePrefix = "knosrc"
	knowledgeDimKey       = "knodim"
	sessionRecordPrefix   = "sesrec"
	sessionTurnPrefix     = "sestrn"
)

// makeRecordKey generates a key for an embedding record by ID.
func makeRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", knowledgeRecordPrefix, id))
}

// makeSourceKey generates a key for the source existence index.
func makeSourceKey(sourceID string) []byte {
	return []byte(knowledgeSourcePrefix + ":" + sourceID)
}

// makeTurnKey generates a composite key for a session turn.
// Format: prefix:hash(sessionID):seq
// The session ID is hashed to a fixed width so variable-length IDs cannot
// produce overlapping per-session prefixes.
func makeTurnKey(sessionID string, seq uint64) []byte {
	prefix := sessionTurnPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for session hash + 8 bytes for seq
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(sessionID)))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makePartialTurnKey generates a partial key covering all turns of a session.
// Format: prefix:hash(sessionID)
func makePartialTurnKey(sessionID string) []byte {
	prefix := sessionTurnPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for session hash
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(sessionID)))
	return buf
}

// makeSessionKey generates a key for a session by ID.
func makeSessionKey(sessionID string) []byte {
	return []byte(sessionRecordPrefix + ":" + sessionID)
}
