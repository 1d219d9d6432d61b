package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateSource(t *testing.T) {
	tests := []struct {
		name    string
		source  *TranscriptSource
		wantErr error
	}{
		{
			name: "valid source",
			source: &TranscriptSource{
				SourceID:  "video-123",
				OriginRef: "https://example.com/watch?v=123",
				Text:      "leadership is a practice",
				Language:  "en",
			},
			wantErr: nil,
		},
		{
			name: "valid source without optional metadata",
			source: &TranscriptSource{
				SourceID: "video-123",
				Text:     "leadership is a practice",
			},
			wantErr: nil,
		},
		{
			name:    "nil source",
			source:  nil,
			wantErr: ErrInvalidSource,
		},
		{
			name: "empty source id",
			source: &TranscriptSource{
				Text: "leadership is a practice",
			},
			wantErr: ErrEmptySourceID,
		},
		{
			name: "empty text",
			source: &TranscriptSource{
				SourceID: "video-123",
			},
			wantErr: ErrEmptyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSource(tt.source)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSource() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSource() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRecord(t *testing.T) {
	valid := func() *EmbeddingRecord {
		return &EmbeddingRecord{
			Id:       RecordID("video-123", 0),
			SourceID: "video-123",
			Seq:      0,
			Text:     "chunk text",
			Vector:   []float32{0.1, 0.2, 0.3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*EmbeddingRecord)
		wantErr error
	}{
		{name: "valid record", mutate: func(r *EmbeddingRecord) {}, wantErr: nil},
		{name: "empty source id", mutate: func(r *EmbeddingRecord) { r.SourceID = "" }, wantErr: ErrEmptySourceID},
		{name: "empty text", mutate: func(r *EmbeddingRecord) { r.Text = "" }, wantErr: ErrEmptyText},
		{name: "empty vector", mutate: func(r *EmbeddingRecord) { r.Vector = nil }, wantErr: ErrEmptyVector},
		{name: "negative seq", mutate: func(r *EmbeddingRecord) { r.Seq = -1 }, wantErr: ErrInvalidRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := valid()
			tt.mutate(record)
			err := ValidateRecord(record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRecord() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateRecord(nil); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("ValidateRecord(nil) error = %v, want %v", err, ErrInvalidRecord)
	}
}

func TestValidateTurn(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		turn    *ConversationTurn
		wantErr error
	}{
		{
			name:    "valid user turn",
			turn:    &ConversationTurn{Speaker: SpeakerUser, Text: "hello", Timestamp: validTime},
			wantErr: nil,
		},
		{
			name:    "valid assistant turn",
			turn:    &ConversationTurn{Speaker: SpeakerAssistant, Text: "hi there", Timestamp: validTime},
			wantErr: nil,
		},
		{
			name:    "nil turn",
			turn:    nil,
			wantErr: ErrInvalidTurn,
		},
		{
			name:    "empty text",
			turn:    &ConversationTurn{Speaker: SpeakerUser, Timestamp: validTime},
			wantErr: ErrEmptyText,
		},
		{
			name:    "invalid speaker",
			turn:    &ConversationTurn{Speaker: Speaker(99), Text: "hello", Timestamp: validTime},
			wantErr: ErrInvalidSpeaker,
		},
		{
			name:    "future timestamp",
			turn:    &ConversationTurn{Speaker: SpeakerUser, Text: "hello", Timestamp: futureTime},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTurn(tt.turn)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTurn() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTurn() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSpeaker(t *testing.T) {
	if err := ValidateSpeaker(SpeakerUser); err != nil {
		t.Errorf("ValidateSpeaker(SpeakerUser) = %v", err)
	}
	if err := ValidateSpeaker(SpeakerAssistant); err != nil {
		t.Errorf("ValidateSpeaker(SpeakerAssistant) = %v", err)
	}
	if err := ValidateSpeaker(Speaker(0)); err == nil {
		t.Error("ValidateSpeaker(0) expected error")
	}
}
