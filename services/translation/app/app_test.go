package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	config "github.com/xilidan/s2t-translator/config/translator"
	"github.com/xilidan/s2t-translator/services/translation/entity"
)

func newRemote(t *testing.T) (*httptest.Server, *atomic.Int32, *atomic.Int32) {
	t.Helper()
	var watsonCalls, whisperCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /identity/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"access_token":"token-%s","expires_in":3600}`, r.FormValue("apikey"))
	})
	mux.HandleFunc("POST /stt/v1/recognize", func(w http.ResponseWriter, r *http.Request) {
		watsonCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer token-s2t-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"results":[{"final":true,"alternatives":[{"transcript":"hello watson","confidence":0.9}]}]}`)
	})
	mux.HandleFunc("POST /openai/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		whisperCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"text":"hello whisper","segments":[{"id":0,"text":" hello whisper","avg_logprob":0}]}`)
	})
	mux.HandleFunc("POST /lt/v3/translate", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-lt-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"translations":[{"translation":"halo"}],"word_count":2,"character_count":13}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &watsonCalls, &whisperCalls
}

func newConfig(srvURL, backend string) *config.Config {
	return &config.Config{
		SpeechToText: config.SpeechToTextConfig{APIKey: "s2t-key", URL: srvURL + "/stt"},
		Translator:   config.TranslatorConfig{APIKey: "lt-key", URL: srvURL + "/lt", Version: "2018-05-01", ModelID: "en-id"},
		Whisper:      config.WhisperConfig{APIKey: "sk-test", BaseURL: srvURL + "/openai/v1", Model: "whisper-1"},
		IAMURL:       srvURL,
		Backend:      backend,
		Timeout:      5 * time.Second,
		Output:       "text",
	}
}

func TestNewUsecaseBackends(t *testing.T) {
	tests := []struct {
		backend     string
		wantText    string
		wantWatson  int32
		wantWhisper int32
	}{
		{backend: "watson", wantText: "hello watson", wantWatson: 1},
		{backend: "whisper", wantText: "hello whisper", wantWhisper: 1},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			srv, watsonCalls, whisperCalls := newRemote(t)
			log := slog.New(slog.NewTextHandler(io.Discard, nil))

			usc, err := NewUsecase(context.Background(), newConfig(srv.URL, tt.backend), log)
			if err != nil {
				t.Fatalf("NewUsecase: %v", err)
			}

			run, err := usc.RunAudio(context.Background(), entity.Audio{Name: "talk.mp3", Data: strings.NewReader("ID3")})
			if err != nil {
				t.Fatalf("RunAudio: %v", err)
			}
			if run.Transcription.Text != tt.wantText {
				t.Errorf("transcript = %q, want %q", run.Transcription.Text, tt.wantText)
			}
			if run.Translation.Text != "halo" || run.Translation.ModelID != "en-id" {
				t.Errorf("translation = %+v", run.Translation)
			}
			if got := watsonCalls.Load(); got != tt.wantWatson {
				t.Errorf("watson calls = %d, want %d", got, tt.wantWatson)
			}
			if got := whisperCalls.Load(); got != tt.wantWhisper {
				t.Errorf("whisper calls = %d, want %d", got, tt.wantWhisper)
			}
		})
	}
}

func TestNewUsecaseErrors(t *testing.T) {
	cfg := newConfig("http://127.0.0.1:0", "sphinx")
	if _, err := NewUsecase(context.Background(), cfg, slog.Default()); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg = newConfig("http://127.0.0.1:0", "watson")
	cfg.Translator.ModelID = "english"
	if _, err := NewUsecase(context.Background(), cfg, slog.Default()); err == nil {
		t.Error("expected error for invalid model id")
	}
}
