// Package provider adapts the remote service clients to the transcription and
// translation capabilities the usecase depends on.
package provider

import (
	"context"
	"math"
	"path/filepath"
	"strings"

	"github.com/xilidan/s2t-translator/clients/speechtotext"
	"github.com/xilidan/s2t-translator/clients/translator"
	"github.com/xilidan/s2t-translator/clients/whisper"
	"github.com/xilidan/s2t-translator/services/translation/entity"
)

type SpeechToText struct {
	client *speechtotext.Client
}

func NewSpeechToText(client *speechtotext.Client) *SpeechToText {
	return &SpeechToText{client: client}
}

func (p *SpeechToText) Transcribe(ctx context.Context, audio entity.Audio) ([]entity.Segment, error) {
	resp, err := p.client.Recognize(ctx, audio.Data, audio.ContentType)
	if err != nil {
		return nil, err
	}

	segments := make([]entity.Segment, 0, len(resp.Results))
	for _, r := range resp.Results {
		alts := make([]entity.Alternative, 0, len(r.Alternatives))
		for _, a := range r.Alternatives {
			alts = append(alts, entity.Alternative{Transcript: a.Transcript, Confidence: a.Confidence})
		}
		segments = append(segments, entity.Segment{Alternatives: alts, Final: r.Final})
	}
	return segments, nil
}

// Whisper maps each returned segment to a segment with one alternative whose
// confidence is exp(avg_logprob).
type Whisper struct {
	client *whisper.Client
}

func NewWhisper(client *whisper.Client) *Whisper {
	return &Whisper{client: client}
}

func (p *Whisper) Transcribe(ctx context.Context, audio entity.Audio) ([]entity.Segment, error) {
	resp, err := p.client.Transcribe(ctx, audio.Data, filepath.Base(audio.Name))
	if err != nil {
		return nil, err
	}

	segments := make([]entity.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, entity.Segment{
			Final: true,
			Alternatives: []entity.Alternative{{
				Transcript: strings.TrimSpace(s.Text),
				Confidence: math.Exp(s.AvgLogprob),
			}},
		})
	}
	return segments, nil
}

type LanguageTranslator struct {
	client *translator.Client
}

func NewLanguageTranslator(client *translator.Client) *LanguageTranslator {
	return &LanguageTranslator{client: client}
}

func (p *LanguageTranslator) Translate(ctx context.Context, text, modelID string) (*entity.TranslationResult, error) {
	resp, err := p.client.Translate(ctx, text, modelID)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(resp.Translations))
	for _, t := range resp.Translations {
		candidates = append(candidates, t.Translation)
	}
	return &entity.TranslationResult{
		Candidates:     candidates,
		WordCount:      resp.WordCount,
		CharacterCount: resp.CharacterCount,
	}, nil
}

func (p *LanguageTranslator) IdentifiableLanguages(ctx context.Context) ([]entity.Language, error) {
	langs, err := p.client.ListIdentifiableLanguages(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]entity.Language, 0, len(langs))
	for _, l := range langs {
		out = append(out, entity.Language{Code: l.Language, Name: l.Name})
	}
	return out, nil
}
