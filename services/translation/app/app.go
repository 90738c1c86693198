package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xilidan/s2t-translator/clients"
	"github.com/xilidan/s2t-translator/clients/iam"
	"github.com/xilidan/s2t-translator/clients/speechtotext"
	"github.com/xilidan/s2t-translator/clients/translator"
	"github.com/xilidan/s2t-translator/clients/whisper"
	config "github.com/xilidan/s2t-translator/config/translator"
	"github.com/xilidan/s2t-translator/pkg/gen"
	"github.com/xilidan/s2t-translator/services/translation/consts"
	"github.com/xilidan/s2t-translator/services/translation/provider"
	"github.com/xilidan/s2t-translator/services/translation/storage"
	"github.com/xilidan/s2t-translator/services/translation/usecase"
)

// NewUsecase builds the remote clients described by cfg and wires them into
// the pipeline. Each IBM service gets its own IAM authenticator since the
// API keys differ.
func NewUsecase(ctx context.Context, cfg *config.Config, log *slog.Logger) (usecase.Usecase, error) {
	model, err := cfg.Model()
	if err != nil {
		return nil, err
	}
	base := clients.HTTPClient(cfg.Timeout)

	var transcriber usecase.Transcriber
	switch cfg.Backend {
	case consts.BackendWatson:
		auth := iam.New(cfg.SpeechToText.APIKey, cfg.IAMURL, base, log)
		client := speechtotext.New(cfg.SpeechToText.URL, cfg.SpeechToText.Model, auth.Client(ctx, base), log)
		transcriber = provider.NewSpeechToText(client)
	case consts.BackendWhisper:
		client := whisper.New(cfg.Whisper.APIKey, cfg.Whisper.BaseURL, cfg.Whisper.Model, base, log)
		transcriber = provider.NewWhisper(client)
	default:
		return nil, fmt.Errorf("unknown transcription backend %q", cfg.Backend)
	}

	ltAuth := iam.New(cfg.Translator.APIKey, cfg.IAMURL, base, log)
	lt := translator.New(cfg.Translator.URL, cfg.Translator.Version, ltAuth.Client(ctx, base), log)

	log.Debug("pipeline configured",
		slog.String("backend", cfg.Backend),
		slog.String("model_id", model.String()),
		slog.Bool("list_languages", cfg.ListLanguages))

	return usecase.New(transcriber, provider.NewLanguageTranslator(lt), storage.New(), gen.UUID(), usecase.Options{
		Model:         model,
		ContentType:   cfg.SpeechToText.ContentType,
		ListLanguages: cfg.ListLanguages,
	}), nil
}
