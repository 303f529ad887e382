// Package batch loads multi-item jobs from YAML files.
//
// A job names one resource/operation pair and lists the per-item
// parameters:
//
//	resource: record
//	operation: get
//	continue_on_fail: true
//	defaults:
//	  limit: 5
//	items:
//	  - recordId: abc123
//	  - recordId: def456
package batch

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"gopkg.in/yaml.v3"
)

// Job is one batch file
type Job struct {
	Resource       string           `yaml:"resource"`
	Operation      string           `yaml:"operation,omitempty"`
	ContinueOnFail *bool            `yaml:"continue_on_fail,omitempty"`
	Defaults       map[string]any   `yaml:"defaults,omitempty"`
	Items          []map[string]any `yaml:"items,omitempty"`
}

// Load reads and parses a job file; "-" reads stdin
func Load(path string) (*Job, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read batch file").
			WithContext("path", path)
	}

	job, err := Parse(data)
	if err != nil {
		if rErr, ok := errors.As(err); ok {
			rErr.WithContext("path", path)
		}
		return nil, err
	}
	return job, nil
}

// Parse decodes a job. Unknown top-level keys are rejected.
func Parse(data []byte) (*Job, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var job Job
	if err := decoder.Decode(&job); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrorTypeValidation, "batch file is empty")
		}
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid batch file")
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks the pair against the operation table
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Resource) == "" {
		return errors.New(errors.ErrorTypeValidation, "resource is required").
			WithContext("field", "resource")
	}

	key := j.Key()
	if !rdm.IsSupported(key) {
		return errors.Newf(errors.ErrorTypeValidation, "the operation %q is not supported for resource %q", key.Operation, key.Resource).
			WithContext("field", "operation")
	}

	for i, item := range j.Items {
		for _, reserved := range []string{rdm.ParamResource, rdm.ParamOperation} {
			if _, ok := item[reserved]; ok {
				return errors.Newf(errors.ErrorTypeValidation, "items may not set %q", reserved).
					WithContext("item_index", i)
			}
		}
	}
	return nil
}

// Key returns the resource/operation pair
func (j *Job) Key() rdm.Key {
	if rdm.ResourceKind(j.Resource) == rdm.ResourcePing {
		return rdm.Key{Resource: rdm.ResourcePing, Operation: rdm.OperationPing}
	}
	return rdm.Key{Resource: rdm.ResourceKind(j.Resource), Operation: rdm.OperationKind(j.Operation)}
}

// ContinueOnFailOr returns the file's setting or fallback when unset
func (j *Job) ContinueOnFailOr(fallback bool) bool {
	if j.ContinueOnFail == nil {
		return fallback
	}
	return *j.ContinueOnFail
}

// Source exposes the job as runner input. A job without items runs once
// with the defaults.
func (j *Job) Source() *rdm.StaticSource {
	shared := rdm.Params{}
	for k, v := range j.Defaults {
		shared[k] = v
	}
	shared[rdm.ParamResource] = j.Resource
	shared[rdm.ParamOperation] = j.Operation

	items := make([]rdm.Params, 0, len(j.Items))
	for _, item := range j.Items {
		items = append(items, rdm.Params(item))
	}
	if len(items) == 0 {
		items = append(items, rdm.Params{})
	}

	return &rdm.StaticSource{Shared: shared, Items: items}
}
