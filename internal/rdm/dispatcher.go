package rdm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/brendan.keane/rdmctl/internal/credentials"
	"github.com/brendan.keane/rdmctl/internal/errors"
	rdmhttp "github.com/brendan.keane/rdmctl/internal/http"
	"github.com/rs/zerolog"
)

// Transport issues one authenticated request and returns the JSON body
type Transport interface {
	Request(ctx context.Context, method, url string, body any) (json.RawMessage, error)
}

// Dispatcher maps a Request to exactly one HTTP call and shapes the result.
// It holds no per-item state.
type Dispatcher struct {
	logger      zerolog.Logger
	transport   Transport
	credentials credentials.Store
	profile     string
}

// NewDispatcher creates a dispatcher; profile names the credentials to use
func NewDispatcher(logger zerolog.Logger, transport Transport, store credentials.Store, profile string) *Dispatcher {
	if profile == "" {
		profile = credentials.DefaultProfile
	}
	return &Dispatcher{
		logger:      logger.With().Str("component", "dispatcher").Logger(),
		transport:   transport,
		credentials: store,
		profile:     profile,
	}
}

// Dispatch executes req. List operations return the hit array after
// truncation; delete and ping return synthetic documents.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (json.RawMessage, error) {
	base, err := d.baseURL(ctx)
	if err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("operation", req.Key().String()).
		Msg("dispatching")

	switch r := req.(type) {
	case PingRequest:
		if _, err := d.transport.Request(ctx, http.MethodGet, rdmhttp.JoinURL(base, "/ping"), nil); err != nil {
			return nil, err
		}
		return PingResult(), nil

	case GetRecordRequest:
		url := rdmhttp.JoinURL(base, recordPath(r.ID))
		return d.call(ctx, http.MethodGet, url, nil, "get record "+r.ID)

	case ListRecordsRequest:
		params := rdmhttp.NewQueryParams()
		params.Set("q", r.Filters.Query)
		params.Set("sort", r.Filters.Sort)
		params.Set("page", optionalInt(r.Filters.Page))
		params.Set("f", r.Filters.LanguageFilter)
		if !r.Pagination.ReturnAll {
			params.Set("size", r.Pagination.Limit)
		}

		url := rdmhttp.BuildURLWithParams(base, "/records", params)
		resp, err := d.call(ctx, http.MethodGet, url, nil, "get records")
		if err != nil {
			return nil, err
		}
		return ApplyPagination(resp, r.Pagination), nil

	case CreateRecordRequest:
		url := rdmhttp.JoinURL(base, "/records")
		return d.call(ctx, http.MethodPost, url, r.Body, "create record")

	case UpdateRecordRequest:
		url := rdmhttp.JoinURL(base, recordPath(r.ID))
		return d.call(ctx, http.MethodPut, url, r.Body, "update record "+r.ID)

	case DeleteRecordRequest:
		url := rdmhttp.JoinURL(base, recordPath(r.ID))
		if _, err := d.call(ctx, http.MethodDelete, url, nil, "delete record "+r.ID); err != nil {
			return nil, err
		}
		return DeleteResult(r.ID), nil

	case GetCommunityRequest:
		url := rdmhttp.JoinURL(base, communityPath(r.Slug))
		return d.call(ctx, http.MethodGet, url, nil, "get community "+r.Slug)

	case ListCommunitiesRequest:
		params := rdmhttp.NewQueryParams()
		params.Set("q", r.Filters.Query)
		params.Set("sort", r.Filters.Sort)
		if !r.Pagination.ReturnAll {
			params.Set("size", r.Pagination.Limit)
		}

		url := rdmhttp.BuildURLWithParams(base, "/communities", params)
		resp, err := d.call(ctx, http.MethodGet, url, nil, "get communities")
		if err != nil {
			return nil, err
		}
		return ApplyPagination(resp, r.Pagination), nil

	case ListCommunityRecordsRequest:
		sort := r.Filters.Sort
		if sort == "" {
			sort = "newest"
		}
		size := r.Pagination.Limit
		if r.Pagination.ReturnAll || size == 0 {
			size = DefaultCommunityRecordsLimit
		}

		params := rdmhttp.NewQueryParams()
		params.Set("l", "list")
		params.Set("p", 1)
		params.Set("q", r.Filters.Query)
		params.Set("sort", sort)
		params.Set("s", size)

		url := rdmhttp.BuildURLWithParams(base, communityPath(r.Slug)+"/records", params)
		resp, err := d.call(ctx, http.MethodGet, url, nil, fmt.Sprintf("get community %s records", r.Slug))
		if err != nil {
			return nil, err
		}
		return ApplyPagination(resp, r.Pagination), nil

	default:
		return nil, unsupported(req.Key())
	}
}

// call performs one request and annotates failures with the action and URL
func (d *Dispatcher) call(ctx context.Context, method, url string, body any, action string) (json.RawMessage, error) {
	resp, err := d.transport.Request(ctx, method, url, body)
	if err != nil {
		d.logger.Debug().
			Err(err).
			Str("action", action).
			Str("url", url).
			Msg("request failed")
		return nil, errors.Annotate(err, action, url)
	}
	return resp, nil
}

// baseURL reads credentials fresh on every call
func (d *Dispatcher) baseURL(ctx context.Context) (string, error) {
	creds, err := d.credentials.GetCredentials(ctx, d.profile)
	if err != nil {
		return "", err
	}

	base := rdmhttp.APIBaseURL(creds.BaseURL)
	if base == "" {
		return "", errors.New(errors.ErrorTypeAuth, "base URL is not configured").
			WithContext("profile", d.profile)
	}
	return base, nil
}

func recordPath(id string) string {
	return "/records/" + rdmhttp.PathEscape(id)
}

func communityPath(slug string) string {
	return "/communities/" + rdmhttp.PathEscape(slug)
}

func optionalInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
