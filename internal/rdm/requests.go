// Package rdm turns (resource, operation, parameters) tuples into calls
// against an InvenioRDM REST API and flattens the responses into items.
package rdm

import (
	"encoding/json"
	"fmt"
)

// ResourceKind is the noun an operation acts on
type ResourceKind string

const (
	ResourceRecord    ResourceKind = "record"
	ResourceCommunity ResourceKind = "community"
	ResourcePing      ResourceKind = "ping"
)

// OperationKind is the verb applied to a resource
type OperationKind string

const (
	OperationGet        OperationKind = "get"
	OperationGetMany    OperationKind = "getMany"
	OperationGetRecords OperationKind = "getRecords"
	OperationCreate     OperationKind = "create"
	OperationUpdate     OperationKind = "update"
	OperationDelete     OperationKind = "delete"
	OperationPing       OperationKind = "ping"
)

// Default page sizes when returnAll is off
const (
	DefaultLimit                 = 50
	DefaultCommunityRecordsLimit = 10
	MaxLimit                     = 1000
)

// Key identifies a supported (resource, operation) pair
type Key struct {
	Resource  ResourceKind
	Operation OperationKind
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Resource, k.Operation)
}

// Request is a resolved, validated intent for one input item.
// The set of implementations is closed.
type Request interface {
	Key() Key
	isRequest()
}

// Pagination controls how many hits are kept
type Pagination struct {
	ReturnAll bool `mapstructure:"returnAll"`
	Limit     int  `mapstructure:"limit" validate:"omitempty,min=1,max=1000"`
}

// Filters are the optional query fields of list operations
type Filters struct {
	Query          string `mapstructure:"q"`
	Sort           string `mapstructure:"sort" validate:"omitempty,oneof=bestmatch newest oldest mostrecent mostviewed mostdownloaded updated-desc updated-asc"`
	Page           int    `mapstructure:"page" validate:"omitempty,min=1"`
	LanguageFilter string `mapstructure:"f"`
}

type PingRequest struct{}

type GetRecordRequest struct {
	ID string `validate:"required"`
}

type ListRecordsRequest struct {
	Pagination Pagination
	Filters    Filters
}

type CreateRecordRequest struct {
	Body json.RawMessage `validate:"required"`
}

type UpdateRecordRequest struct {
	ID   string          `validate:"required"`
	Body json.RawMessage `validate:"required"`
}

type DeleteRecordRequest struct {
	ID string `validate:"required"`
}

type GetCommunityRequest struct {
	Slug string `validate:"required"`
}

type ListCommunitiesRequest struct {
	Pagination Pagination
	Filters    Filters
}

type ListCommunityRecordsRequest struct {
	Slug       string `validate:"required"`
	Pagination Pagination
	Filters    Filters
}

func (PingRequest) Key() Key         { return Key{ResourcePing, OperationPing} }
func (GetRecordRequest) Key() Key    { return Key{ResourceRecord, OperationGet} }
func (ListRecordsRequest) Key() Key  { return Key{ResourceRecord, OperationGetMany} }
func (CreateRecordRequest) Key() Key { return Key{ResourceRecord, OperationCreate} }
func (UpdateRecordRequest) Key() Key { return Key{ResourceRecord, OperationUpdate} }
func (DeleteRecordRequest) Key() Key { return Key{ResourceRecord, OperationDelete} }
func (GetCommunityRequest) Key() Key { return Key{ResourceCommunity, OperationGet} }
func (ListCommunitiesRequest) Key() Key {
	return Key{ResourceCommunity, OperationGetMany}
}
func (ListCommunityRecordsRequest) Key() Key {
	return Key{ResourceCommunity, OperationGetRecords}
}

func (PingRequest) isRequest()                 {}
func (GetRecordRequest) isRequest()            {}
func (ListRecordsRequest) isRequest()          {}
func (CreateRecordRequest) isRequest()         {}
func (UpdateRecordRequest) isRequest()         {}
func (DeleteRecordRequest) isRequest()         {}
func (GetCommunityRequest) isRequest()         {}
func (ListCommunitiesRequest) isRequest()      {}
func (ListCommunityRecordsRequest) isRequest() {}

// OutputItem is one emitted JSON document and the input item it came from
type OutputItem struct {
	JSON       json.RawMessage `json:"json"`
	PairedItem int             `json:"pairedItem"`
}
