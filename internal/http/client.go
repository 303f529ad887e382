package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/brendan.keane/rdmctl/internal/config"
	"github.com/brendan.keane/rdmctl/internal/credentials"
	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/logger"
	lambdahttp "github.com/brendan.keane/rdmctl/pkg/http"
	"github.com/rs/zerolog"
)

// Client is the authenticated JSON transport. Credentials are looked up on
// every request so that a rotated token is picked up between items.
type Client struct {
	logger         zerolog.Logger
	httpClient     HTTPClientProvider
	credentials    credentials.Store
	profile        string
	requestBuilder *RequestBuilder
}

// NewClient creates a client backed by a Lambda-aware http.Client that
// enforces the configured timeout.
func NewClient(logger zerolog.Logger, cfg *config.Config, store credentials.Store) *Client {
	return NewClientWithDependencies(logger, lambdahttp.NewClient(cfg.Timeout), store, cfg)
}

// NewClientWithDependencies creates a client with an injected HTTP client
func NewClientWithDependencies(logger zerolog.Logger, httpClient HTTPClientProvider, store credentials.Store, cfg *config.Config) *Client {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Client{
		logger:         logger.With().Str("component", "http_client").Logger(),
		httpClient:     httpClient,
		credentials:    store,
		profile:        cfg.ProfileName(),
		requestBuilder: NewRequestBuilder(logger, cfg),
	}
}

// Request implements JSONTransport
func (c *Client) Request(ctx context.Context, method, targetURL string, body any) (json.RawMessage, error) {
	reqLogger := logger.ForRequest(c.logger, method, targetURL)

	creds, err := c.credentials.GetCredentials(ctx, c.profile)
	if err != nil {
		return nil, err
	}

	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	req, err := c.requestBuilder.Build(ctx, method, targetURL, payload, creds.AccessToken)
	if err != nil {
		reqLogger.Error().Err(err).Msg("failed to build HTTP request")
		return nil, err
	}

	reqLogger.Debug().
		Str("authorization", redactAuthorization(req.Header.Get("Authorization"))).
		Msg("sending request")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		reqLogger.Debug().
			Err(err).
			Dur("duration", duration).
			Msg("HTTP request failed")

		wrapped := errors.Wrap(err, errors.ErrorTypeNetwork, "HTTP request failed").
			WithContext("url", targetURL).
			WithContext("duration", duration.String())
		if stderrors.Is(err, context.DeadlineExceeded) {
			wrapped.WithContext("timeout", true)
		}
		return nil, wrapped
	}
	defer resp.Body.Close()

	reqLogger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("HTTP request completed")

	return c.handleResponse(resp, method, targetURL)
}

// encodeBody marshals a request body; raw JSON is sent as is
func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to encode request body")
		}
		return data, nil
	}
}
