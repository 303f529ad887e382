package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/brendan.keane/rdmctl/internal/config"
	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/brendan.keane/rdmctl/internal/testutil"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestServer(t *testing.T, cfg *config.Config, transport *testutil.MockTransport) *Server {
	t.Helper()
	store := testutil.NewMockCredentialStore(testutil.TestBaseURL)
	dispatcher := rdm.NewDispatcher(zerolog.Nop(), transport, store, "")

	s, err := NewServer(zerolog.Nop(), cfg, dispatcher)
	require.NoError(t, err)
	return s
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func handlerFor(t *testing.T, s *Server, name string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.Helper()
	for _, tool := range s.tools() {
		if tool.definition.Name == name {
			return tool.handler
		}
	}
	t.Fatalf("tool %q not registered", name)
	return nil
}

func listTools(t *testing.T, s *Server) gjson.Result {
	t.Helper()
	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	return gjson.GetBytes(data, "result.tools")
}

func TestNewServer_RequiresBackend(t *testing.T) {
	_, err := NewServer(zerolog.Nop(), config.NewConfig(), nil)
	testutil.AssertErrorType(t, err, errors.ErrorTypeMCP, "nil backend")
}

func TestToolName(t *testing.T) {
	tests := []struct {
		key  rdm.Key
		want string
	}{
		{rdm.Key{Resource: rdm.ResourcePing, Operation: rdm.OperationPing}, "ping"},
		{rdm.Key{Resource: rdm.ResourceRecord, Operation: rdm.OperationGet}, "record_get"},
		{rdm.Key{Resource: rdm.ResourceRecord, Operation: rdm.OperationGetMany}, "record_get_many"},
		{rdm.Key{Resource: rdm.ResourceCommunity, Operation: rdm.OperationGetRecords}, "community_get_records"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ToolName(tt.key))
		})
	}
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t, testutil.NewConfigBuilder().Build(), testutil.NewMockTransport())

	tools := listTools(t, s)
	var names []string
	for _, tool := range tools.Array() {
		names = append(names, tool.Get("name").String())
	}

	testutil.AssertSliceEqual(t, names, []string{
		"community_get",
		"community_get_many",
		"community_get_records",
		"ping",
		"record_create",
		"record_delete",
		"record_get",
		"record_get_many",
		"record_update",
		"resource_types",
	}, "tool names")

	get := tools.Get(`#(name=="record_get")`)
	assert.Equal(t, []any{"recordId"}, get.Get("inputSchema.required").Value())
	assert.True(t, get.Get("inputSchema.properties.jq").Exists())
	assert.True(t, get.Get("annotations.readOnlyHint").Bool())

	del := tools.Get(`#(name=="record_delete")`)
	assert.True(t, del.Get("annotations.destructiveHint").Bool())

	many := tools.Get(`#(name=="community_get_records")`)
	assert.Equal(t, "boolean", many.Get("inputSchema.properties.returnAll.type").String())
	assert.Equal(t, "object", many.Get("inputSchema.properties.additionalFields.type").String())
	assert.False(t, tools.Get(`#(name=="ping").inputSchema.properties.items`).Exists())
}

func TestToolsList_ReadOnly(t *testing.T) {
	s := newTestServer(t, testutil.NewConfigBuilder().WithReadOnlyMCP().Build(), testutil.NewMockTransport())

	for _, tool := range listTools(t, s).Array() {
		name := tool.Get("name").String()
		assert.NotContains(t, []string{"record_create", "record_update", "record_delete"}, name)
	}
}

func TestRecordGet(t *testing.T) {
	transport := testutil.NewMockTransport(testutil.RecordJSON)
	s := newTestServer(t, testutil.NewConfigBuilder().Build(), transport)

	result, err := handlerFor(t, s, "record_get")(context.Background(), callRequest("record_get", map[string]any{
		"recordId": "abc123",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	testutil.AssertJSONPath(t, []byte(text), "0.id", "abc123", "record id")
	assert.Equal(t, testutil.TestBaseURL+"/records/abc123", transport.LastCall().URL)
}

func TestRecordGetMany_WithJQ(t *testing.T) {
	transport := testutil.NewMockTransport(testutil.Hits(5))
	s := newTestServer(t, testutil.NewConfigBuilder().Build(), transport)

	result, err := handlerFor(t, s, "record_get_many")(context.Background(), callRequest("record_get_many", map[string]any{
		"limit": float64(2),
		"jq":    ".metadata.title",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	testutil.AssertJSONEqual(t, []byte(resultText(t, result)), `["Record 1","Record 2"]`, "filtered titles")
	assert.Equal(t, testutil.TestBaseURL+"/records?size=2", transport.LastCall().URL)
}

func TestRecordGet_Items(t *testing.T) {
	transport := testutil.NewMockTransport(`{"id":"a"}`, `{"id":"b"}`)
	s := newTestServer(t, testutil.NewConfigBuilder().Build(), transport)

	result, err := handlerFor(t, s, "record_get")(context.Background(), callRequest("record_get", map[string]any{
		"items": []any{
			map[string]any{"recordId": "a"},
			map[string]any{"recordId": "b"},
		},
	}))
	require.NoError(t, err)

	testutil.AssertJSONEqual(t, []byte(resultText(t, result)), `[{"id":"a"},{"id":"b"}]`, "one result per item")
	require.Len(t, transport.Calls, 2)
}

func TestRecordGet_Failure(t *testing.T) {
	transport := testutil.NewMockTransport().ThenError(errors.New(errors.ErrorTypeAPI, "The persistent identifier does not exist.").
		WithContext("status_code", 404))
	s := newTestServer(t, testutil.NewConfigBuilder().Build(), transport)

	result, err := handlerFor(t, s, "record_get")(context.Background(), callRequest("record_get", map[string]any{
		"recordId": "missing",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Failed to get record missing")
	assert.Contains(t, resultText(t, result), "(HTTP 404)")
}

func TestRecordGet_ContinueOnFail(t *testing.T) {
	transport := testutil.NewMockTransport().ThenError(errors.New(errors.ErrorTypeNetwork, "connection reset"))
	s := newTestServer(t, testutil.NewConfigBuilder().WithContinueOnFail().Build(), transport)

	result, err := handlerFor(t, s, "record_get")(context.Background(), callRequest("record_get", map[string]any{
		"recordId": "x",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	testutil.AssertJSONPath(t, []byte(resultText(t, result)), "0.error",
		"Failed to get record x. URL: "+testutil.TestBaseURL+"/records/x: connection reset", "error item")
}

func TestRecordGet_MissingID(t *testing.T) {
	transport := testutil.NewMockTransport()
	s := newTestServer(t, testutil.NewConfigBuilder().Build(), transport)

	result, err := handlerFor(t, s, "record_get")(context.Background(), callRequest("record_get", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "recordId is required")
	assert.Empty(t, transport.Calls)
}

func TestInvalidJQ(t *testing.T) {
	s := newTestServer(t, testutil.NewConfigBuilder().Build(), testutil.NewMockTransport(testutil.RecordJSON))

	result, err := handlerFor(t, s, "record_get")(context.Background(), callRequest("record_get", map[string]any{
		"recordId": "abc123",
		"jq":       ".[",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Invalid jq")
}

func TestPing(t *testing.T) {
	transport := testutil.NewMockTransport(`"OK"`)
	s := newTestServer(t, testutil.NewConfigBuilder().Build(), transport)

	result, err := handlerFor(t, s, "ping")(context.Background(), callRequest("ping", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	testutil.AssertJSONPath(t, []byte(resultText(t, result)), "0.message", "OK", "ping result")
}

func TestResourceTypes(t *testing.T) {
	s := newTestServer(t, testutil.NewConfigBuilder().Build(), testutil.NewMockTransport(testutil.ResourceTypesJSON))

	result, err := handlerFor(t, s, "resource_types")(context.Background(), callRequest("resource_types", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := []byte(resultText(t, result))
	testutil.AssertJSONPath(t, text, "0.value", "publication-article", "first option")
	testutil.AssertJSONPath(t, text, "2.name", "software", "id fallback")
}

func TestToolSource(t *testing.T) {
	key := rdm.Key{Resource: rdm.ResourceCommunity, Operation: rdm.OperationGetRecords}

	source, expression, err := toolSource(key, map[string]any{
		"communityId": "front_matter",
		"operation":   "delete",
		"jq":          ".id",
		"items": []any{
			map[string]any{"limit": 3},
			map[string]any{"communityId": "other", "resource": "record"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ".id", expression)
	assert.Equal(t, 2, source.ItemCount())

	v, err := source.Parameter(rdm.ParamOperation, 0)
	require.NoError(t, err)
	assert.Equal(t, "getRecords", v)

	v, err = source.Parameter(rdm.ParamResource, 1)
	require.NoError(t, err)
	assert.Equal(t, "community", v)

	v, err = source.Parameter(rdm.ParamCommunityID, 0)
	require.NoError(t, err)
	assert.Equal(t, "front_matter", v)

	v, err = source.Parameter(rdm.ParamCommunityID, 1)
	require.NoError(t, err)
	assert.Equal(t, "other", v)
}

func TestToolSource_Errors(t *testing.T) {
	key := rdm.Key{Resource: rdm.ResourceRecord, Operation: rdm.OperationGet}

	tests := []struct {
		name string
		args map[string]any
	}{
		{"jq not a string", map[string]any{"jq": 3}},
		{"items not an array", map[string]any{"items": "a"}},
		{"item not an object", map[string]any{"items": []any{"a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := toolSource(key, tt.args)
			testutil.AssertErrorType(t, err, errors.ErrorTypeValidation, tt.name)
		})
	}
}
