package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/xilidan/s2t-translator/clients"
)

const serviceName = "language-translator"

// Client talks to the language translator v3 API.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	log        *slog.Logger
}

type TranslateRequest struct {
	Text    []string `json:"text"`
	ModelID string   `json:"model_id"`
}

type TranslateResponse struct {
	Translations   []Translation `json:"translations"`
	WordCount      int           `json:"word_count"`
	CharacterCount int           `json:"character_count"`
}

type Translation struct {
	Translation string `json:"translation"`
}

type Language struct {
	Language string `json:"language"`
	Name     string `json:"name"`
}

type identifiableLanguagesResponse struct {
	Languages []Language `json:"languages"`
}

// New returns a client for serviceURL pinned to the given API version date.
func New(serviceURL, version string, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = clients.HTTPClient(0)
	}
	if log == nil {
		log = slog.Default()
	}
	log.Debug("creating language translator client",
		slog.String("service_url", serviceURL),
		slog.String("version", version))
	return &Client{
		baseURL:    strings.TrimRight(serviceURL, "/"),
		version:    version,
		httpClient: httpClient,
		log:        log,
	}
}

// Translate submits text unchanged with the given model id.
func (c *Client) Translate(ctx context.Context, text, modelID string) (*TranslateResponse, error) {
	c.log.Info("Translate called",
		slog.String("model_id", modelID),
		slog.Int("text_length", len(text)))

	body, err := json.Marshal(TranslateRequest{Text: []string{text}, ModelID: modelID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal translate request: %w", err)
	}

	var result TranslateResponse
	if err := c.do(ctx, http.MethodPost, "/v3/translate", bytes.NewReader(body), &result); err != nil {
		return nil, err
	}
	c.log.Debug("translate response decoded",
		slog.Int("translations_count", len(result.Translations)),
		slog.Int("word_count", result.WordCount))

	return &result, nil
}

// ListIdentifiableLanguages returns the languages the service can identify.
func (c *Client) ListIdentifiableLanguages(ctx context.Context) ([]Language, error) {
	c.log.Debug("ListIdentifiableLanguages called")

	var result identifiableLanguagesResponse
	if err := c.do(ctx, http.MethodGet, "/v3/identifiable_languages", nil, &result); err != nil {
		return nil, err
	}
	c.log.Debug("identifiable languages decoded", slog.Int("languages_count", len(result.Languages)))

	return result.Languages, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, dest any) error {
	endpoint := c.baseURL + path + "?" + url.Values{"version": {c.version}}.Encode()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("HTTP request failed",
			slog.String("error", err.Error()),
			slog.String("url", endpoint))
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debug("response received", slog.Int("status_code", resp.StatusCode))

	if err := clients.CheckResponse(serviceName, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
