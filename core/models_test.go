package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestRecordID(t *testing.T) {
	// Deterministic per (source, seq)
	if RecordID("video-a", 0) != RecordID("video-a", 0) {
		t.Error("RecordID() not deterministic for same source and seq")
	}

	// Distinct across seq and source
	if RecordID("video-a", 0) == RecordID("video-a", 1) {
		t.Error("RecordID() collided across sequence indexes")
	}
	if RecordID("video-a", 0) == RecordID("video-b", 0) {
		t.Error("RecordID() collided across sources")
	}

	// The separator prevents ambiguity between source id and seq digits
	if RecordID("video-a1", 0) == RecordID("video-a", 10) {
		t.Error("RecordID() ambiguous between source suffix and seq")
	}
}
