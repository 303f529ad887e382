package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	internalconfig "github.com/brendan.keane/rdmctl/internal/config"
	"github.com/brendan.keane/rdmctl/internal/errors"
	lambdahttp "github.com/brendan.keane/rdmctl/pkg/http"
	"github.com/rs/zerolog"
)

// UserAgent is sent with every request
const UserAgent = "rdmctl"

// RequestBuilder builds HTTP requests with authentication and headers
type RequestBuilder struct {
	logger zerolog.Logger
	config *internalconfig.Config
}

// NewRequestBuilder creates a new request builder
func NewRequestBuilder(logger zerolog.Logger, cfg *internalconfig.Config) *RequestBuilder {
	if cfg == nil {
		cfg = internalconfig.NewConfig()
	}
	return &RequestBuilder{
		logger: logger.With().Str("component", "request_builder").Logger(),
		config: cfg,
	}
}

// Build creates a JSON request carrying the bearer token and, when enabled,
// an AWS SigV4 signature.
func (b *RequestBuilder) Build(ctx context.Context, method, targetURL string, body []byte, token string) (*http.Request, error) {
	logger := b.logger.With().
		Str("method", method).
		Str("target_url", targetURL).
		Logger()

	var requestBody io.Reader
	if body != nil {
		requestBody = bytes.NewReader(body)
		logger.Debug().
			Int("body_length", len(body)).
			Msg("request body added")
	}

	req, err := http.NewRequestWithContext(ctx, method, targetURL, requestBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to create HTTP request").
			WithContext("method", method).
			WithContext("url", targetURL)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if err := b.applySigning(ctx, req, body); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeAuth, "failed to apply authentication")
	}

	return req, nil
}

// applySigning adds a SigV4 signature when configured. lambda:// URLs are
// invoked through the Lambda API and are never signed here.
func (b *RequestBuilder) applySigning(ctx context.Context, req *http.Request, body []byte) error {
	if !b.config.SigV4Enabled {
		return nil
	}

	if req.URL.Scheme == lambdahttp.LambdaScheme {
		b.logger.Debug().Msg("lambda URL detected, skipping SigV4")
		return nil
	}

	return b.applySigV4(ctx, req, body)
}

// applySigV4 applies AWS SigV4 signing to the request
func (b *RequestBuilder) applySigV4(ctx context.Context, req *http.Request, body []byte) error {
	service := b.config.SigV4Service

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to load AWS configuration").
			WithContext("suggestion", "ensure AWS credentials are configured")
	}

	region := cfg.Region
	if region == "" {
		return errors.New(errors.ErrorTypeAuth, "AWS region not configured").
			WithContext("suggestion", "set AWS_REGION or AWS_DEFAULT_REGION environment variable")
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to retrieve AWS credentials").
			WithContext("suggestion", "check AWS credential configuration")
	}

	// SigV4 signs the Authorization header itself, so the bearer token
	// moves to a header the API gateway forwards untouched.
	if bearer := req.Header.Get("Authorization"); bearer != "" {
		req.Header.Del("Authorization")
		req.Header.Set("X-Rdm-Authorization", bearer)
	}

	err = v4.NewSigner().SignHTTP(ctx, creds, req, payloadHash(body), service, region, time.Now())
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to sign request with SigV4").
			WithContext("service", service).
			WithContext("region", region)
	}

	b.logger.Debug().
		Str("service", service).
		Str("region", region).
		Msg("SigV4 signature applied")

	return nil
}

func payloadHash(body []byte) string {
	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}

// redactAuthorization masks the token for debug logs
func redactAuthorization(value string) string {
	if value == "" {
		return ""
	}
	scheme, _, found := strings.Cut(value, " ")
	if !found {
		return "***"
	}
	return scheme + " ***"
}
