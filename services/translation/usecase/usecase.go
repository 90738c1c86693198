package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xilidan/s2t-translator/pkg/gen"
	"github.com/xilidan/s2t-translator/pkg/logger"
	"github.com/xilidan/s2t-translator/services/translation/consts"
	"github.com/xilidan/s2t-translator/services/translation/entity"
	"github.com/xilidan/s2t-translator/services/translation/storage"
)

// Transcriber submits audio to a remote speech recognizer and returns its
// segments in order, each with ranked alternatives.
type Transcriber interface {
	Transcribe(ctx context.Context, audio entity.Audio) ([]entity.Segment, error)
}

// Translator submits text to a remote translation service.
type Translator interface {
	Translate(ctx context.Context, text, modelID string) (*entity.TranslationResult, error)
	IdentifiableLanguages(ctx context.Context) ([]entity.Language, error)
}

type Usecase interface {
	// Transcribe reads audioFile and returns the joined transcript.
	Transcribe(ctx context.Context, audioFile string) (*entity.Transcription, error)
	TranscribeAudio(ctx context.Context, audio entity.Audio) (*entity.Transcription, error)
	// Translate translates text from source to target language.
	Translate(ctx context.Context, text, source, target string) (*entity.Translation, error)
	TranslateModel(ctx context.Context, text string, model entity.ModelID) (*entity.Translation, error)
	Languages(ctx context.Context) ([]entity.Language, error)
	// Run transcribes audioFile and translates the transcript with the configured model.
	Run(ctx context.Context, audioFile string) (*entity.Run, error)
	RunAudio(ctx context.Context, audio entity.Audio) (*entity.Run, error)
	GetRun(ctx context.Context, id string) (*entity.Run, error)
	ListRuns(ctx context.Context) ([]*entity.Run, error)
}

type Options struct {
	Model entity.ModelID
	// ContentType overrides detection from the file extension.
	ContentType string
	// ListLanguages makes Run fetch the identifiable languages.
	ListLanguages bool
}

type usecase struct {
	transcriber Transcriber
	translator  Translator
	storage     storage.Storage
	ids         gen.IDGenerator
	opts        Options
}

func New(transcriber Transcriber, translator Translator, storage storage.Storage, ids gen.IDGenerator, opts Options) Usecase {
	return &usecase{
		transcriber: transcriber,
		translator:  translator,
		storage:     storage,
		ids:         ids,
		opts:        opts,
	}
}

func (u *usecase) Transcribe(ctx context.Context, audioFile string) (*entity.Transcription, error) {
	f, err := os.Open(audioFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	return u.TranscribeAudio(ctx, entity.Audio{
		Name:        audioFile,
		ContentType: u.contentType(audioFile),
		Data:        f,
	})
}

func (u *usecase) TranscribeAudio(ctx context.Context, audio entity.Audio) (*entity.Transcription, error) {
	log := logger.FromContext(ctx)
	if audio.ContentType == "" {
		audio.ContentType = u.contentType(audio.Name)
	}

	log.Info("recognizing audio",
		slog.String("file", audio.Name),
		slog.String("content_type", audio.ContentType))
	segments, err := u.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	text, err := entity.JoinTranscript(segments)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	log.Info("done", slog.Int("segments", len(segments)), slog.Int("text_length", len(text)))

	return &entity.Transcription{
		AudioFile:   audio.Name,
		ContentType: audio.ContentType,
		Segments:    segments,
		Text:        text,
	}, nil
}

func (u *usecase) Translate(ctx context.Context, text, source, target string) (*entity.Translation, error) {
	model, err := entity.NewModelID(source, target)
	if err != nil {
		return nil, err
	}
	return u.TranslateModel(ctx, text, model)
}

func (u *usecase) TranslateModel(ctx context.Context, text string, model entity.ModelID) (*entity.Translation, error) {
	log := logger.FromContext(ctx)
	modelID := model.String()

	log.Info("translating text", slog.String("model_id", modelID))
	result, err := u.translator.Translate(ctx, text, modelID)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("translation failed: %w", entity.ErrNoTranslation)
	}
	log.Info("done", slog.Int("word_count", result.WordCount))

	return &entity.Translation{
		ModelID:        modelID,
		Text:           result.Candidates[0],
		WordCount:      result.WordCount,
		CharacterCount: result.CharacterCount,
	}, nil
}

func (u *usecase) Languages(ctx context.Context) ([]entity.Language, error) {
	languages, err := u.translator.IdentifiableLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	return languages, nil
}

func (u *usecase) Run(ctx context.Context, audioFile string) (*entity.Run, error) {
	return u.run(ctx, func(ctx context.Context) (*entity.Transcription, error) {
		return u.Transcribe(ctx, audioFile)
	})
}

func (u *usecase) RunAudio(ctx context.Context, audio entity.Audio) (*entity.Run, error) {
	return u.run(ctx, func(ctx context.Context) (*entity.Transcription, error) {
		return u.TranscribeAudio(ctx, audio)
	})
}

// run executes the stages strictly in order; any failure ends the run and
// nothing is stored. An empty transcript is still sent to the translator.
func (u *usecase) run(ctx context.Context, transcribe func(context.Context) (*entity.Transcription, error)) (*entity.Run, error) {
	run := &entity.Run{
		ID:        u.ids.Next(),
		StartedAt: time.Now(),
	}
	ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(slog.String("run_id", run.ID)))

	transcription, err := transcribe(ctx)
	if err != nil {
		return nil, err
	}
	run.Transcription = *transcription

	if u.opts.ListLanguages {
		languages, err := u.Languages(ctx)
		if err != nil {
			return nil, err
		}
		run.Languages = languages
	}

	translation, err := u.TranslateModel(ctx, transcription.Text, u.opts.Model)
	if err != nil {
		return nil, err
	}
	run.Translation = *translation
	run.FinishedAt = time.Now()

	if err := u.storage.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	return run, nil
}

func (u *usecase) GetRun(ctx context.Context, id string) (*entity.Run, error) {
	return u.storage.GetRun(ctx, id)
}

func (u *usecase) ListRuns(ctx context.Context) ([]*entity.Run, error) {
	return u.storage.ListRuns(ctx)
}

func (u *usecase) contentType(name string) string {
	if u.opts.ContentType != "" {
		return u.opts.ContentType
	}
	if ct, ok := consts.ContentTypeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return consts.DefaultContentType
}
