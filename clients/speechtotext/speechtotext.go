package speechtotext

import (
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

const serviceName = "speech-to-text"

// Client talks to the speech-to-text recognize endpoint. The http.Client is
// expected to authenticate requests (see iam.Authenticator.Client).
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

type RecognizeResponse struct {
	Results     []Result `json:"results"`
	ResultIndex int      `json:"result_index"`
}

type Result struct {
	Final        bool          `json:"final"`
	Alternatives []Alternative `json:"alternatives"`
}

type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// New returns a client for serviceURL. An empty model lets the service use its default.
func New(serviceURL, model string, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = clients.HTTPClient(0)
	}
	if log == nil {
		log = slog.Default()
	}
	log.Debug("creating speech-to-text client",
		slog.String("service_url", serviceURL),
		slog.String("model", model))
	return &Client{
		baseURL:    strings.TrimRight(serviceURL, "/"),
		model:      model,
		httpClient: httpClient,
		log:        log,
	}
}

// Recognize sends the whole audio stream in a single request.
func (c *Client) Recognize(ctx context.Context, audio io.Reader, contentType string) (*RecognizeResponse, error) {
	endpoint := c.baseURL + "/v1/recognize"
	if c.model != "" {
		endpoint += "?" + url.Values{"model": {c.model}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, audio)
	if err != nil {
		return nil, fmt.Errorf("failed to create recognize request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	c.log.Info("sending audio to speech-to-text",
		slog.String("url", endpoint),
		slog.String("content_type", contentType))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("recognize request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to send recognize request: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debug("response received", slog.Int("status_code", resp.StatusCode))

	if err := clients.CheckResponse(serviceName, resp); err != nil {
		return nil, err
	}

	var result RecognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode recognize response: %w", err)
	}
	c.log.Debug("recognize response decoded", slog.Int("results_count", len(result.Results)))

	return &result, nil
}
