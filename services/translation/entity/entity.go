package entity

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoTranslation     = fmt.Errorf("%w: no translation candidates", ErrMalformedResponse)
	ErrRunNotFound       = errors.New("run not found")
)

// Alternative is one candidate transcript of a segment.
type Alternative struct {
	Transcript string  `json:"transcript" yaml:"transcript"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Segment is one unit of recognized speech. Alternatives are ranked, best first.
type Segment struct {
	Alternatives []Alternative `json:"alternatives" yaml:"alternatives"`
	Final        bool          `json:"final" yaml:"final"`
}

type Transcription struct {
	AudioFile   string    `json:"audio_file" yaml:"audio_file"`
	ContentType string    `json:"content_type" yaml:"content_type"`
	Segments    []Segment `json:"segments" yaml:"segments"`
	Text        string    `json:"text" yaml:"text"`
}

type Translation struct {
	ModelID        string `json:"model_id" yaml:"model_id"`
	Text           string `json:"text" yaml:"text"`
	WordCount      int    `json:"word_count" yaml:"word_count"`
	CharacterCount int    `json:"character_count" yaml:"character_count"`
}

// TranslationResult is what a translation provider returns: candidates in
// ranked order plus the billing counters reported by the service.
type TranslationResult struct {
	Candidates     []string
	WordCount      int
	CharacterCount int
}

type Language struct {
	Code string `json:"language" yaml:"language"`
	Name string `json:"name" yaml:"name"`
}

type Run struct {
	ID            string        `json:"id" yaml:"id"`
	Transcription Transcription `json:"transcription" yaml:"transcription"`
	Translation   Translation   `json:"translation" yaml:"translation"`
	Languages     []Language    `json:"languages,omitempty" yaml:"languages,omitempty"`
	StartedAt     time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time     `json:"finished_at" yaml:"finished_at"`
}

// JoinTranscript joins the first alternative of every segment with a single
// space, in segment order. No segments gives "".
func JoinTranscript(segments []Segment) (string, error) {
	parts := make([]string, 0, len(segments))
	for i, seg := range segments {
		if len(seg.Alternatives) == 0 {
			return "", fmt.Errorf("%w: segment %d has no alternatives", ErrMalformedResponse, i)
		}
		parts = append(parts, seg.Alternatives[0].Transcript)
	}
	return strings.Join(parts, " "), nil
}

// Audio is an audio payload submitted whole to a transcription provider.
type Audio struct {
	Name        string
	ContentType string
	Data        io.Reader
}
