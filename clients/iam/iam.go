package iam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/xilidan/s2t-translator/clients"
	"github.com/xilidan/s2t-translator/pkg/jwt"
)

const (
	DefaultURL = "https://iam.cloud.ibm.com"

	grantType   = "urn:ibm:params:oauth:grant-type:apikey"
	serviceName = "iam"

	// Tokens are refreshed this long before they expire.
	expiryDelta = time.Minute
)

var ErrEmptyToken = errors.New("iam: response has no access_token")

// Authenticator exchanges an API key for bearer tokens.
type Authenticator struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	now        func() time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Expiration  int64  `json:"expiration"`
}

func New(apiKey, baseURL string, httpClient *http.Client, log *slog.Logger) *Authenticator {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if httpClient == nil {
		httpClient = clients.HTTPClient(0)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
		now:        time.Now,
	}
}

// RequestToken performs one API key exchange.
func (a *Authenticator) RequestToken(ctx context.Context) (*oauth2.Token, error) {
	form := url.Values{
		"grant_type":    {grantType},
		"apikey":        {a.apiKey},
		"response_type": {"cloud_iam"},
	}

	endpoint := a.baseURL + "/identity/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	a.log.Debug("requesting iam token", slog.String("url", endpoint))
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request iam token: %w", err)
	}
	defer resp.Body.Close()

	if err := clients.CheckResponse(serviceName, resp); err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode iam token: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, ErrEmptyToken
	}

	token := &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Expiry:      a.expiry(tr),
	}
	a.log.Debug("iam token issued", slog.Time("expiry", token.Expiry))
	return token, nil
}

func (a *Authenticator) expiry(tr tokenResponse) time.Time {
	switch {
	case tr.Expiration > 0:
		return time.Unix(tr.Expiration, 0)
	case tr.ExpiresIn > 0:
		return a.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	exp, err := jwt.ExpiresAt(tr.AccessToken)
	if err != nil {
		// zero expiry: oauth2 treats the token as never expiring
		a.log.Warn("iam token expiry unknown", slog.String("error", err.Error()))
		return time.Time{}
	}
	return exp
}

// TokenSource returns a caching source that only calls IAM again when the
// current token is about to expire.
func (a *Authenticator) TokenSource(ctx context.Context) oauth2.TokenSource {
	return oauth2.ReuseTokenSourceWithExpiry(nil, &tokenSource{ctx: ctx, auth: a}, expiryDelta)
}

// Client wraps base so every request carries a bearer token.
func (a *Authenticator) Client(ctx context.Context, base *http.Client) *http.Client {
	if base == nil {
		base = clients.HTTPClient(0)
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: a.TokenSource(ctx),
			Base:   base.Transport,
		},
		Timeout: base.Timeout,
	}
}

type tokenSource struct {
	ctx  context.Context
	auth *Authenticator
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	return s.auth.RequestToken(s.ctx)
}
