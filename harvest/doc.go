// Package harvest acquires transcripts for knowledge sources.
//
// A Fetcher turns a source reference into a transcript. The package ships
// two HTTP-backed fetchers, CaptionClient for published caption tracks and
// TranscriberClient for speech-recognized audio, plus a Chain that tries
// fetchers in order and falls through on ErrNotAvailable. Captions are
// preferred because they are cheap; transcription is the last resort.
package harvest
