// Package http provides an http.RoundTripper that can reach InvenioRDM
// deployments hosted behind AWS Lambda.
//
// Base URLs of the form
//
//	lambda://<function-name>/api
//
// are invoked directly with an API Gateway v2 HTTP proxy event; every other
// scheme goes through the wrapped transport unchanged.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaScheme is the URL scheme routed to Lambda Invoke
const LambdaScheme = "lambda"

// Invoker is the subset of the Lambda API used by Transport
type Invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Transport implements http.RoundTripper with Lambda support.
// AWS configuration is only loaded the first time a lambda:// URL is used.
type Transport struct {
	Base http.RoundTripper

	once    sync.Once
	invoker Invoker
	initErr error
}

// NewTransport wraps base; nil means http.DefaultTransport
func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base}
}

// NewTransportWithInvoker uses the given invoker instead of loading AWS config
func NewTransportWithInvoker(base http.RoundTripper, invoker Invoker) *Transport {
	t := NewTransport(base)
	t.invoker = invoker
	t.once.Do(func() {})
	return t
}

// NewClient returns an http.Client with Lambda support and the given timeout
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: NewTransport(nil),
		Timeout:   timeout,
	}
}

// RoundTrip implements the http.RoundTripper interface
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme == LambdaScheme {
		return t.roundTripLambda(req)
	}
	return t.Base.RoundTrip(req)
}

func (t *Transport) lambdaInvoker(ctx context.Context) (Invoker, error) {
	t.once.Do(func() {
		var cfg aws.Config
		cfg, t.initErr = config.LoadDefaultConfig(ctx)
		if t.initErr != nil {
			t.initErr = fmt.Errorf("loading AWS config: %w", t.initErr)
			return
		}
		t.invoker = lambda.NewFromConfig(cfg)
	})
	return t.invoker, t.initErr
}
