package core

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types persisted in the knowledge index and the
// session log. Timestamps are encoded as Unix microseconds.

// IDMUS serializes core.ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// EmbeddingRecordMUS serializes EmbeddingRecord values.
var EmbeddingRecordMUS = embeddingRecordMUS{}

type embeddingRecordMUS struct{}

func (s embeddingRecordMUS) Marshal(v EmbeddingRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.SourceID, bs[n:])
	n += varint.Int.Marshal(v.Seq, bs[n:])
	n += ord.String.Marshal(v.OriginRef, bs[n:])
	n += ord.String.Marshal(v.Language, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	return
}

func (s embeddingRecordMUS) Unmarshal(bs []byte) (v EmbeddingRecord, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.SourceID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Seq, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.OriginRef, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Language, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (s embeddingRecordMUS) Size(v EmbeddingRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.SourceID)
	size += varint.Int.Size(v.Seq)
	size += ord.String.Size(v.OriginRef)
	size += ord.String.Size(v.Language)
	size += ord.String.Size(v.Text)
	size += sizeVector(v.Vector)
	return
}

func (s embeddingRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// ConversationTurnMUS serializes ConversationTurn values.
var ConversationTurnMUS = conversationTurnMUS{}

type conversationTurnMUS struct{}

func (s conversationTurnMUS) Marshal(v ConversationTurn, bs []byte) (n int) {
	n = varint.Int.Marshal(int(v.Speaker), bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int64.Marshal(v.Timestamp.UnixMicro(), bs[n:])
	return
}

func (s conversationTurnMUS) Unmarshal(bs []byte) (v ConversationTurn, n int, err error) {
	var n1 int
	var speaker int
	if speaker, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	v.Speaker = Speaker(speaker)
	if v.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.Timestamp = time.UnixMicro(micros).UTC()
	return
}

func (s conversationTurnMUS) Size(v ConversationTurn) (size int) {
	size = varint.Int.Size(int(v.Speaker))
	size += ord.String.Size(v.Text)
	size += varint.Int64.Size(v.Timestamp.UnixMicro())
	return
}

func (s conversationTurnMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// SessionMUS serializes Session metadata values.
var SessionMUS = sessionMUS{}

type sessionMUS struct{}

func (s sessionMUS) Marshal(v Session, bs []byte) (n int) {
	n = ord.String.Marshal(v.SessionID, bs)
	n += varint.Int64.Marshal(v.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(v.LastActivity.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(v.TurnCount, bs[n:])
	return
}

func (s sessionMUS) Unmarshal(bs []byte) (v Session, n int, err error) {
	var n1 int
	if v.SessionID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.CreatedAt = time.UnixMicro(micros).UTC()
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.LastActivity = time.UnixMicro(micros).UTC()
	if v.TurnCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (s sessionMUS) Size(v Session) (size int) {
	size = ord.String.Size(v.SessionID)
	size += varint.Int64.Size(v.CreatedAt.UnixMicro())
	size += varint.Int64.Size(v.LastActivity.UnixMicro())
	size += varint.Int.Size(v.TurnCount)
	return
}

func (s sessionMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length == 0 {
		return
	}
	// Elements are fixed 4-byte floats. A length the remaining buffer
	// cannot hold means the value is corrupt; check before allocating.
	if length < 0 || length > (len(bs)-n)/4 {
		return nil, n, fmt.Errorf("%w: %d", ErrInvalidVectorLength, length)
	}
	v = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		if v[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return nil, n, err
		}
		n += n1
	}
	return
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}
