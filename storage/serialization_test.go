package storage

import (
	"testing"
	"time"

	"github.com/cadenza-ai/mentor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalEmbeddingRecord(t *testing.T) {
	record := &core.EmbeddingRecord{
		Id:        core.RecordID("ep-001", 3),
		SourceID:  "ep-001",
		Seq:       3,
		OriginRef: "https://example.com/watch?v=abc123",
		Language:  "en",
		Text:      "Leadership is earned through consistency, not claimed through titles.",
		Vector:    []float32{0.25, -0.5, 0.75, 1.0},
	}

	decoded, err := UnmarshalEmbeddingRecord(MarshalEmbeddingRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestUnmarshalEmbeddingRecord_Truncated(t *testing.T) {
	record := &core.EmbeddingRecord{
		Id:       core.ID(7),
		SourceID: "ep-002",
		Text:     "some text",
		Vector:   []float32{0.1, 0.2},
	}
	data := MarshalEmbeddingRecord(record)

	_, err := UnmarshalEmbeddingRecord(data[:len(data)/2])
	assert.Error(t, err)
}

func TestUnmarshalEmbeddingRecord_CorruptVectorLength(t *testing.T) {
	record := &core.EmbeddingRecord{
		Id:       core.ID(7),
		SourceID: "ep-002",
		Text:     "some text",
	}
	// With an empty vector the final byte of the encoding is the vector
	// length varint; rewrite it to simulate a corrupted badger value.
	data := MarshalEmbeddingRecord(record)

	negative := append([]byte(nil), data[:len(data)-1]...)
	negative = append(negative, 0x01) // zigzag encoding of -1

	_, err := UnmarshalEmbeddingRecord(negative)
	assert.ErrorIs(t, err, core.ErrInvalidVectorLength)

	oversized := append([]byte(nil), data[:len(data)-1]...)
	oversized = append(oversized, 0x80, 0x80, 0x80, 0x80, 0x02) // 2^28 elements

	_, err = UnmarshalEmbeddingRecord(oversized)
	assert.ErrorIs(t, err, core.ErrInvalidVectorLength)
}

func TestMarshalUnmarshalSession(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	session := &core.Session{
		SessionID:    "b2f1c5ce-9e4f-4d27-9a51-0f3a8f2a1c11",
		CreatedAt:    now,
		LastActivity: now.Add(5 * time.Minute),
		TurnCount:    4,
	}

	decoded, err := UnmarshalSession(MarshalSession(session))
	require.NoError(t, err)
	assert.Equal(t, session, decoded)
}

func TestMarshalUnmarshalConversationTurn(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	turn := &core.ConversationTurn{
		Speaker:   core.SpeakerUser,
		Text:      "How do I give hard feedback?",
		Timestamp: now,
	}

	decoded, err := UnmarshalConversationTurn(MarshalConversationTurn(turn))
	require.NoError(t, err)
	assert.Equal(t, turn, decoded)
}
