package rdm

import (
	"net/http"
)

// Operation describes one supported (resource, operation) pair
type Operation struct {
	Key         Key
	Method      string
	Path        string
	Query       []string
	Body        bool
	Parameters  []string
	Description string
}

// Operations is the dispatch table in display order
var Operations = []Operation{
	{
		Key:         Key{ResourcePing, OperationPing},
		Method:      http.MethodGet,
		Path:        "/ping",
		Description: "Check that the API is reachable",
	},
	{
		Key:         Key{ResourceRecord, OperationGet},
		Method:      http.MethodGet,
		Path:        "/records/{id}",
		Parameters:  []string{ParamRecordID},
		Description: "Get a published record",
	},
	{
		Key:         Key{ResourceRecord, OperationGetMany},
		Method:      http.MethodGet,
		Path:        "/records",
		Query:       []string{"q", "sort", "page", "f", "size"},
		Parameters:  []string{ParamReturnAll, ParamLimit, ParamAdditionalFields},
		Description: "Search published records",
	},
	{
		Key:         Key{ResourceRecord, OperationCreate},
		Method:      http.MethodPost,
		Path:        "/records",
		Body:        true,
		Parameters:  []string{ParamRecordData},
		Description: "Create a draft record",
	},
	{
		Key:         Key{ResourceRecord, OperationUpdate},
		Method:      http.MethodPut,
		Path:        "/records/{id}",
		Body:        true,
		Parameters:  []string{ParamRecordID, ParamRecordData},
		Description: "Replace a record's metadata",
	},
	{
		Key:         Key{ResourceRecord, OperationDelete},
		Method:      http.MethodDelete,
		Path:        "/records/{id}",
		Parameters:  []string{ParamRecordID},
		Description: "Delete a record",
	},
	{
		Key:         Key{ResourceCommunity, OperationGet},
		Method:      http.MethodGet,
		Path:        "/communities/{slug}",
		Parameters:  []string{ParamCommunityID},
		Description: "Get a community",
	},
	{
		Key:         Key{ResourceCommunity, OperationGetMany},
		Method:      http.MethodGet,
		Path:        "/communities",
		Query:       []string{"q", "sort", "size"},
		Parameters:  []string{ParamReturnAll, ParamLimit, ParamAdditionalFields},
		Description: "Search communities",
	},
	{
		Key:         Key{ResourceCommunity, OperationGetRecords},
		Method:      http.MethodGet,
		Path:        "/communities/{slug}/records",
		Query:       []string{"l", "p", "q", "sort", "s"},
		Parameters:  []string{ParamCommunityID, ParamReturnAll, ParamLimit, ParamAdditionalFields},
		Description: "List the records of a community",
	},
}

// IsSupported reports whether key is in the dispatch table
func IsSupported(key Key) bool {
	_, ok := LookupOperation(key)
	return ok
}

// LookupOperation returns the table entry for key
func LookupOperation(key Key) (Operation, bool) {
	for _, op := range Operations {
		if op.Key == key {
			return op, true
		}
	}
	return Operation{}, false
}
