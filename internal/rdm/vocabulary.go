package rdm

import (
	"context"
	"net/http"

	"github.com/brendan.keane/rdmctl/internal/errors"
	rdmhttp "github.com/brendan.keane/rdmctl/internal/http"
	"github.com/tidwall/gjson"
)

// Option is a selectable vocabulary entry
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ResourceTypes lists /vocabularies/resourcetypes as name/value options.
// The English title is used as name, falling back to the id.
func (d *Dispatcher) ResourceTypes(ctx context.Context) ([]Option, error) {
	const path = "/vocabularies/resourcetypes"

	base, err := d.baseURL(ctx)
	if err != nil {
		return nil, err
	}
	url := rdmhttp.JoinURL(base, path)

	resp, err := d.transport.Request(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeAPI, "Failed to load resource types from %s", path).
			WithContext("url", url)
	}

	var options []Option
	gjson.GetBytes(resp, hitsPath).ForEach(func(_, hit gjson.Result) bool {
		id := hit.Get("id").String()
		if id == "" {
			return true
		}
		name := hit.Get("title.en").String()
		if name == "" {
			name = id
		}
		options = append(options, Option{Name: name, Value: id})
		return true
	})

	d.logger.Debug().Int("resource_types", len(options)).Msg("resource types loaded")

	return options, nil
}

// VerifyCredentials issues the smallest authenticated search to check
// that the base URL and token are accepted.
func (d *Dispatcher) VerifyCredentials(ctx context.Context) error {
	base, err := d.baseURL(ctx)
	if err != nil {
		return err
	}

	params := rdmhttp.NewQueryParams()
	params.Set("size", 1)
	url := rdmhttp.BuildURLWithParams(base, "/records", params)

	if _, err := d.call(ctx, http.MethodGet, url, nil, "verify credentials"); err != nil {
		return err
	}
	return nil
}
