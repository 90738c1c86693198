package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/xilidan/s2t-translator/clients"
)

const serviceName = "whisper"

// Client transcribes audio through the OpenAI audio transcriptions endpoint.
type Client struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

// New returns a client. An empty baseURL uses the public OpenAI API, an empty
// model uses whisper-1.
func New(apiKey, baseURL, model string, httpClient *http.Client, log *slog.Logger) *Client {
	if model == "" {
		model = openai.Whisper1
	}
	if log == nil {
		log = slog.Default()
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	log.Debug("creating whisper client",
		slog.String("base_url", cfg.BaseURL),
		slog.String("model", model))

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}
}

// Transcribe uploads audio as filename and asks for verbose JSON so segment
// boundaries are kept.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string) (*openai.AudioResponse, error) {
	c.log.Info("sending audio to whisper",
		slog.String("file", filename),
		slog.String("model", c.model))

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: filename,
		Reader:   audio,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &clients.APIError{
				Service:    serviceName,
				StatusCode: apiErr.HTTPStatusCode,
				Message:    apiErr.Message,
			}
		}
		return nil, fmt.Errorf("failed to create transcription: %w", err)
	}
	c.log.Debug("whisper response decoded", slog.Int("segments_count", len(resp.Segments)))

	return &resp, nil
}
