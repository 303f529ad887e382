package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/tidwall/gjson"
)

// handleResponse reads the body and turns non-2xx statuses into API errors
func (c *Client) handleResponse(resp *http.Response, method, targetURL string) (json.RawMessage, error) {
	logger := c.logger.With().
		Int("status", resp.StatusCode).
		Str("content_type", resp.Header.Get("Content-Type")).
		Logger()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read response body")
		return nil, errors.Wrap(err, errors.ErrorTypeNetwork, "failed to read response body").
			WithContext("url", targetURL)
	}

	logger.Debug().
		Int("body_length", len(body)).
		Msg("response body read")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body, method, targetURL)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	if !json.Valid(body) {
		// /ping answers with a plain "OK"
		if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
			text, _ := json.Marshal(string(body))
			return text, nil
		}
		return nil, errors.New(errors.ErrorTypeAPI, "response is not valid JSON").
			WithContext("url", targetURL).
			WithContext(errors.ContextStatusCode, resp.StatusCode).
			WithContext("content_type", resp.Header.Get("Content-Type"))
	}

	return json.RawMessage(body), nil
}

// statusError builds an API error from an InvenioRDM error document:
// {"status": 400, "message": "...", "errors": [{"field": "...", "messages": [...]}]}
func statusError(status int, body []byte, method, targetURL string) *errors.RDMError {
	message := http.StatusText(status)
	if message == "" {
		message = fmt.Sprintf("status %d", status)
	}

	var fieldErrors []string
	if gjson.ValidBytes(body) {
		doc := gjson.ParseBytes(body)
		if m := doc.Get("message"); m.Exists() && m.String() != "" {
			message = m.String()
		}
		doc.Get("errors").ForEach(func(_, item gjson.Result) bool {
			field := item.Get("field").String()
			msgs := make([]string, 0)
			item.Get("messages").ForEach(func(_, m gjson.Result) bool {
				msgs = append(msgs, m.String())
				return true
			})
			fieldErrors = append(fieldErrors, strings.TrimSpace(field+": "+strings.Join(msgs, "; ")))
			return true
		})
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		message = text
	}

	rErr := errors.New(errors.ErrorTypeAPI, message).
		WithContext(errors.ContextStatusCode, status).
		WithContext("method", method).
		WithContext("url", targetURL)
	if len(fieldErrors) > 0 {
		rErr.WithContext("field_errors", fieldErrors)
	}

	return rErr
}
