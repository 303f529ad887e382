package rdm

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Parameter names read from a ParameterSource
const (
	ParamResource         = "resource"
	ParamOperation        = "operation"
	ParamRecordID         = "recordId"
	ParamRecordData       = "recordData"
	ParamCommunityID      = "communityId"
	ParamReturnAll        = "returnAll"
	ParamLimit            = "limit"
	ParamAdditionalFields = "additionalFields"
)

// ParameterSource supplies loosely typed parameter values per input item.
// Values are requested in a fixed order for each (resource, operation) pair.
type ParameterSource interface {
	ItemCount() int
	Parameter(name string, itemIndex int) (any, error)
}

// Resolver reads parameters for one item and produces a validated Request
type Resolver struct {
	validate *validator.Validate
}

// NewResolver creates a resolver
func NewResolver() *Resolver {
	return &Resolver{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ResolveKey reads the resource and operation once, from item 0
func (r *Resolver) ResolveKey(source ParameterSource) (Key, error) {
	resource, err := r.readString(source, ParamResource, 0)
	if err != nil {
		return Key{}, err
	}

	if ResourceKind(resource) == ResourcePing {
		return Key{ResourcePing, OperationPing}, nil
	}

	operation, err := r.readString(source, ParamOperation, 0)
	if err != nil {
		return Key{}, err
	}

	key := Key{Resource: ResourceKind(resource), Operation: OperationKind(operation)}
	if !IsSupported(key) {
		return Key{}, unsupported(key)
	}

	return key, nil
}

// Resolve reads the parameters required by key for the given item
func (r *Resolver) Resolve(source ParameterSource, key Key, itemIndex int) (Request, error) {
	var req Request
	var err error

	switch key {
	case Key{ResourcePing, OperationPing}:
		req = PingRequest{}

	case Key{ResourceRecord, OperationGet}:
		var id string
		if id, err = r.readIdentifier(source, ParamRecordID, itemIndex); err == nil {
			req = GetRecordRequest{ID: id}
		}

	case Key{ResourceRecord, OperationDelete}:
		var id string
		if id, err = r.readIdentifier(source, ParamRecordID, itemIndex); err == nil {
			req = DeleteRecordRequest{ID: id}
		}

	case Key{ResourceRecord, OperationGetMany}:
		var p Pagination
		var f Filters
		if p, f, err = r.readListing(source, itemIndex, DefaultLimit); err == nil {
			req = ListRecordsRequest{Pagination: p, Filters: f}
		}

	case Key{ResourceCommunity, OperationGetMany}:
		var p Pagination
		var f Filters
		if p, f, err = r.readListing(source, itemIndex, DefaultLimit); err == nil {
			req = ListCommunitiesRequest{Pagination: p, Filters: f}
		}

	case Key{ResourceRecord, OperationCreate}:
		var body json.RawMessage
		if body, err = r.readRecordData(source, itemIndex); err == nil {
			req = CreateRecordRequest{Body: body}
		}

	case Key{ResourceRecord, OperationUpdate}:
		var id string
		var body json.RawMessage
		if id, err = r.readIdentifier(source, ParamRecordID, itemIndex); err != nil {
			break
		}
		if body, err = r.readRecordData(source, itemIndex); err == nil {
			req = UpdateRecordRequest{ID: id, Body: body}
		}

	case Key{ResourceCommunity, OperationGet}:
		var slug string
		if slug, err = r.readIdentifier(source, ParamCommunityID, itemIndex); err == nil {
			req = GetCommunityRequest{Slug: slug}
		}

	case Key{ResourceCommunity, OperationGetRecords}:
		var slug string
		var p Pagination
		var f Filters
		if slug, err = r.readIdentifier(source, ParamCommunityID, itemIndex); err != nil {
			break
		}
		if p, f, err = r.readListing(source, itemIndex, DefaultCommunityRecordsLimit); err == nil {
			req = ListCommunityRecordsRequest{Slug: slug, Pagination: p, Filters: f}
		}

	default:
		return nil, unsupported(key)
	}

	if err != nil {
		return nil, err
	}

	if err := r.Validate(req); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks struct constraints of a request built outside the resolver
func (r *Resolver) Validate(req Request) error {
	if err := r.validate.Struct(req); err != nil {
		return validationFailure(err).WithContext("operation", req.Key().String())
	}

	if p, ok := pagination(req); ok && !p.ReturnAll && p.Limit == 0 {
		return errors.New(errors.ErrorTypeValidation, "limit must be between 1 and 1000").
			WithContext("field", ParamLimit).
			WithContext("operation", req.Key().String())
	}

	return nil
}

func (r *Resolver) readListing(source ParameterSource, itemIndex, defaultLimit int) (Pagination, Filters, error) {
	var p Pagination
	var f Filters

	returnAll, err := source.Parameter(ParamReturnAll, itemIndex)
	if err != nil {
		return p, f, parameterError(err, ParamReturnAll, itemIndex)
	}
	if err := decode(returnAll, &p.ReturnAll); err != nil {
		return p, f, decodeError(err, ParamReturnAll, returnAll)
	}

	if !p.ReturnAll {
		limit, err := source.Parameter(ParamLimit, itemIndex)
		if err != nil {
			return p, f, parameterError(err, ParamLimit, itemIndex)
		}
		p.Limit = defaultLimit
		if !isBlank(limit) {
			if err := decode(limit, &p.Limit); err != nil {
				return p, f, decodeError(err, ParamLimit, limit)
			}
			if p.Limit < 1 || p.Limit > MaxLimit {
				return p, f, errors.New(errors.ErrorTypeValidation, "limit must be between 1 and 1000").
					WithContext("field", ParamLimit).
					WithContext("value", p.Limit)
			}
		}
	}

	fields, err := source.Parameter(ParamAdditionalFields, itemIndex)
	if err != nil {
		return p, f, parameterError(err, ParamAdditionalFields, itemIndex)
	}
	if !isBlank(fields) {
		if err := decode(fields, &f); err != nil {
			return p, f, decodeError(err, ParamAdditionalFields, fields)
		}
	}

	return p, f, nil
}

func (r *Resolver) readIdentifier(source ParameterSource, name string, itemIndex int) (string, error) {
	id, err := r.readString(source, name, itemIndex)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(id) == "" {
		return "", errors.Newf(errors.ErrorTypeValidation, "%s is required", name).
			WithContext("field", name).
			WithContext("item_index", itemIndex)
	}
	return strings.TrimSpace(id), nil
}

func (r *Resolver) readString(source ParameterSource, name string, itemIndex int) (string, error) {
	value, err := source.Parameter(name, itemIndex)
	if err != nil {
		return "", parameterError(err, name, itemIndex)
	}
	if value == nil {
		return "", nil
	}

	var s string
	if err := decode(value, &s); err != nil {
		return "", decodeError(err, name, value)
	}
	return s, nil
}

// readRecordData accepts JSON text or an already structured document
func (r *Resolver) readRecordData(source ParameterSource, itemIndex int) (json.RawMessage, error) {
	value, err := source.Parameter(ParamRecordData, itemIndex)
	if err != nil {
		return nil, parameterError(err, ParamRecordData, itemIndex)
	}

	invalid := func(cause error) error {
		rErr := errors.New(errors.ErrorTypeValidation, "Invalid JSON in Record Data field").
			WithContext("item_index", itemIndex)
		if cause != nil {
			rErr.Cause = cause
		}
		return rErr
	}

	switch v := value.(type) {
	case nil:
		return nil, invalid(nil)
	case string:
		if !json.Valid([]byte(v)) {
			return nil, invalid(nil)
		}
		return json.RawMessage(strings.TrimSpace(v)), nil
	case []byte:
		if !json.Valid(v) {
			return nil, invalid(nil)
		}
		return json.RawMessage(v), nil
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, invalid(nil)
		}
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, invalid(err)
		}
		return data, nil
	}
}

// decode converts loosely typed host values ("25", 25.0, "true") into target
func decode(input any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func isBlank(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(value) == ""
	default:
		return false
	}
}

func pagination(req Request) (Pagination, bool) {
	switch r := req.(type) {
	case ListRecordsRequest:
		return r.Pagination, true
	case ListCommunitiesRequest:
		return r.Pagination, true
	case ListCommunityRecordsRequest:
		return r.Pagination, true
	default:
		return Pagination{}, false
	}
}

// validationFailure converts the first validator field error into a
// validation error named after the parameter it came from
func validationFailure(err error) *errors.RDMError {
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.New(errors.ErrorTypeValidation, fieldMessage(fe)).
			WithContext("field", fieldName(fe)).
			WithContext("value", fe.Value())
	}
	return errors.Wrap(err, errors.ErrorTypeValidation, "invalid request")
}

// fieldName maps struct fields back to parameter names
func fieldName(fe validator.FieldError) string {
	switch fe.StructNamespace() {
	case "GetRecordRequest.ID", "UpdateRecordRequest.ID", "DeleteRecordRequest.ID":
		return ParamRecordID
	case "GetCommunityRequest.Slug", "ListCommunityRecordsRequest.Slug":
		return ParamCommunityID
	case "CreateRecordRequest.Body", "UpdateRecordRequest.Body":
		return ParamRecordData
	}

	switch fe.StructField() {
	case "Limit":
		return ParamLimit
	case "Sort":
		return "sort"
	case "Page":
		return "page"
	case "Title":
		return "title"
	case "PublicationDate":
		return "publication_date"
	case "Name", "Type":
		return "creator " + strings.ToLower(fe.StructField())
	case "ID":
		return "resource_type"
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "datetime":
		return "must be a date formatted as YYYY-MM-DD"
	default:
		return fmt.Sprintf("failed on '%s'", fe.Tag())
	}
}

func parameterError(err error, name string, itemIndex int) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.Wrapf(err, errors.ErrorTypeValidation, "could not read parameter %q", name).
		WithContext("field", name).
		WithContext("item_index", itemIndex)
}

func decodeError(err error, name string, value any) error {
	return errors.Wrap(err, errors.ErrorTypeValidation, fmt.Sprintf("unexpected value %v", value)).
		WithContext("field", name)
}

func unsupported(key Key) error {
	return errors.Newf(errors.ErrorTypeValidation, "the operation %q is not supported for resource %q", key.Operation, key.Resource).
		WithContext("resource", string(key.Resource)).
		WithContext("operation", string(key.Operation))
}
