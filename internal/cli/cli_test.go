package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brendan.keane/rdmctl/internal/config"
	"github.com/brendan.keane/rdmctl/internal/credentials"
	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/brendan.keane/rdmctl/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type memoryProfiles struct {
	saved   map[string]credentials.Credentials
	deleted []string
}

func (m *memoryProfiles) Save(ctx context.Context, name string, creds credentials.Credentials) error {
	if m.saved == nil {
		m.saved = map[string]credentials.Credentials{}
	}
	m.saved[name] = creds
	return nil
}

func (m *memoryProfiles) Delete(ctx context.Context, name string) error {
	m.deleted = append(m.deleted, name)
	return nil
}

func newRoot(h *Handler) *cobra.Command {
	root := &cobra.Command{Use: "rdmctl", SilenceUsage: true, SilenceErrors: true}
	config.AddFlags(root.PersistentFlags())
	root.AddCommand(
		NewRecordCommand(h),
		NewCommunityCommand(h),
		NewPingCommand(h),
		NewResourceTypesCommand(h),
		NewOperationsCommand(h),
		NewBatchCommand(h),
		NewLoginCommand(h),
		NewLogoutCommand(h),
	)
	return root
}

// execute runs rdmctl against server and returns stdout
func execute(t *testing.T, server *testutil.FakeRDM, opts []HandlerOption, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	opts = append([]HandlerOption{WithOutput(&out), WithHTTPClient(server.Server.Client())}, opts...)
	root := newRoot(NewHandler(zerolog.Nop(), opts...))

	root.SetArgs(append([]string{
		"--base-url", server.BaseURL(),
		"--token", server.Token,
		"--credentials", "env",
	}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecordGet(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	server.AddRecord("abc123", testutil.RecordJSON)

	out, err := execute(t, server, nil, "record", "get", "abc123")
	require.NoError(t, err)

	testutil.AssertJSONPath(t, []byte(out), "0.metadata.title", "Test Record", "record title")
	testutil.AssertHeaderSet(t, server.Requests()[0], "Authorization", "Bearer secret", "bearer token")
}

func TestRecordGet_MultipleIDs(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	server.AddRecord("a", `{"id":"a"}`)

	_, err := execute(t, server, nil, "record", "get", "a", "missing")
	testutil.AssertErrorType(t, err, errors.ErrorTypeAPI, "second id is missing")
	assert.Contains(t, err.Error(), "Failed to get record missing")

	out, err := execute(t, server, nil, "--continue-on-fail", "record", "get", "a", "missing")
	require.NoError(t, err)
	testutil.AssertJSONPath(t, []byte(out), "0.id", "a", "first item")
	assert.True(t, gjson.Get(out, "1.error").Exists(), "second item is an error item: %s", out)
}

func TestRecordList(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	for _, id := range []string{"r1", "r2", "r3"} {
		server.AddRecord(id, `{"id":"`+id+`"}`)
	}

	out, err := execute(t, server, nil, "-o", "jsonl", "record", "list", "--limit", "2", "--query", "climate", "--sort", "oldest")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)

	req := server.Requests()[0]
	testutil.AssertQueryParam(t, req, "q", "climate", "query")
	testutil.AssertQueryParam(t, req, "sort", "oldest", "sort")
	testutil.AssertQueryParam(t, req, "size", "2", "size")
}

func TestRecordList_JQ(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	server.AddRecord("r1", `{"id":"r1","metadata":{"title":"One"}}`)
	server.AddRecord("r2", `{"id":"r2","metadata":{"title":"Two"}}`)

	out, err := execute(t, server, nil, "--jq", ".metadata.title", "record", "list")
	require.NoError(t, err)
	testutil.AssertJSONEqual(t, []byte(out), `["One","Two"]`, "titles")
}

func TestRecordList_InvalidJQSendsNothing(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")

	_, err := execute(t, server, nil, "--jq", ".[", "record", "list")
	testutil.AssertErrorType(t, err, errors.ErrorTypeValidation, "invalid jq")
	assert.Empty(t, server.Requests())
}

func TestRecordCreate_FromFlags(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")

	out, err := execute(t, server, nil, "record", "create",
		"--title", "Field Notes",
		"--creator", "Doe, Jane",
		"--creator", "Example Institute",
		"--resource-type", "dataset",
		"--publication-date", "2024-05-01",
	)
	require.NoError(t, err)

	doc := []byte(out)
	testutil.AssertJSONPath(t, doc, "0.id", "new-1", "created id")
	testutil.AssertJSONPath(t, doc, "0.metadata.creators.0.person_or_org.family_name", "Doe", "person creator")
	testutil.AssertJSONPath(t, doc, "0.metadata.creators.1.person_or_org.type", "organizational", "organisation creator")
	testutil.AssertJSONPath(t, doc, "0.metadata.resource_type.id", "dataset", "resource type")
}

func TestRecordCreate_FromDataFile(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(path, []byte(testutil.ValidRecordData), 0o600))

	out, err := execute(t, server, nil, "record", "create", "--data", "@"+path)
	require.NoError(t, err)
	testutil.AssertJSONPath(t, []byte(out), "0.metadata.title", "Example Record", "title from file")
}

func TestRecordCreate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"nothing", []string{}, "either --data or --title is required"},
		{"mixed", []string{"--data", "{}", "--title", "x"}, "--data cannot be combined with --title"},
		{"bad date", []string{"--title", "x", "--publication-date", "May 2024"}, "must be a date formatted as YYYY-MM-DD"},
		{"bad json", []string{"--data", "{ nope"}, "Invalid JSON in Record Data field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewFakeRDM(t, "secret")
			_, err := execute(t, server, nil, append([]string{"record", "create"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Empty(t, server.Requests(), "no request for invalid input")
		})
	}
}

func TestRecordUpdateAndDelete(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	server.AddRecord("abc123", testutil.RecordJSON)

	out, err := execute(t, server, nil, "record", "update", "abc123", "--title", "Renamed")
	require.NoError(t, err)
	testutil.AssertJSONPath(t, []byte(out), "0.metadata.title", "Renamed", "updated title")

	out, err = execute(t, server, nil, "record", "delete", "abc123")
	require.NoError(t, err)
	testutil.AssertJSONEqual(t, []byte(out), `[{"success":true,"id":"abc123"}]`, "delete result")
}

func TestCommunityCommands(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")

	out, err := execute(t, server, nil, "community", "get", "front_matter")
	require.NoError(t, err)
	testutil.AssertJSONPath(t, []byte(out), "0.slug", "front_matter", "community slug")

	out, err = execute(t, server, nil, "community", "list", "--limit", "2")
	require.NoError(t, err)
	assert.Len(t, gjson.Get(out, "@this").Array(), 2)

	out, err = execute(t, server, nil, "community", "records", "front_matter", "--all")
	require.NoError(t, err)
	assert.Len(t, gjson.Get(out, "@this").Array(), 10)

	last := server.Requests()[len(server.Requests())-1]
	assert.Equal(t, "l=list&p=1&sort=newest&s=10", last.URL.RawQuery)
}

func TestPing(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")

	out, err := execute(t, server, nil, "ping")
	require.NoError(t, err)
	testutil.AssertJSONEqual(t, []byte(out), `[{"message":"OK"}]`, "ping")
}

func TestResourceTypes(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")

	out, err := execute(t, server, nil, "resource-types")
	require.NoError(t, err)
	testutil.AssertJSONPath(t, []byte(out), "1.value", "dataset", "second option")

	out, err = execute(t, server, nil, "-o", "table", "resource-types")
	require.NoError(t, err)
	assert.Contains(t, out, "Journal article")
	assert.Contains(t, out, "software")
}

func TestOperations(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")

	out, err := execute(t, server, nil, "operations")
	require.NoError(t, err)
	assert.Contains(t, out, "getRecords")
	assert.Contains(t, out, "/communities/{slug}/records")
	assert.Empty(t, server.Requests())
}

func TestBatch(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	server.AddRecord("a", `{"id":"a"}`)

	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
resource: record
operation: get
continue_on_fail: true
items:
  - recordId: a
  - recordId: gone
`), 0o600))

	out, err := execute(t, server, nil, "batch", "-f", path)
	require.NoError(t, err)
	testutil.AssertJSONPath(t, []byte(out), "0.id", "a", "first item")
	assert.Contains(t, gjson.Get(out, "1.error").String(), "Failed to get record gone")
}

func TestLogin(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	profiles := &memoryProfiles{}

	out, err := execute(t, server, []HandlerOption{WithProfileStore(profiles)}, "--profile", "sandbox", "login")
	require.NoError(t, err)
	assert.Contains(t, out, `profile "sandbox"`)

	assert.Equal(t, credentials.Credentials{BaseURL: server.BaseURL(), AccessToken: "secret"}, profiles.saved["sandbox"])
	assert.Equal(t, "/api/records", server.Requests()[0].URL.Path)
	testutil.AssertQueryParam(t, server.Requests()[0], "size", "1", "verification search")
}

func TestLogin_RejectedToken(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	profiles := &memoryProfiles{}

	var out bytes.Buffer
	root := newRoot(NewHandler(zerolog.Nop(),
		WithOutput(&out),
		WithHTTPClient(server.Server.Client()),
		WithProfileStore(profiles),
	))
	root.SetArgs([]string{"--base-url", server.BaseURL(), "--token", "wrong", "--credentials", "env", "login"})

	err := root.ExecuteContext(context.Background())
	testutil.AssertErrorContains(t, err, "Failed to verify credentials", "rejected token")
	assert.Empty(t, profiles.saved)
}

func TestLogout(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	profiles := &memoryProfiles{}

	_, err := execute(t, server, []HandlerOption{WithProfileStore(profiles)}, "logout")
	require.NoError(t, err)
	assert.Equal(t, []string{credentials.DefaultProfile}, profiles.deleted)
}

func TestConfigFromContext(t *testing.T) {
	cfg := testutil.NewConfigBuilder().WithOutput("jsonl").Build()
	cmd := &cobra.Command{}
	cmd.SetContext(config.WithConfig(context.Background(), cfg))

	got, err := NewHandler(zerolog.Nop()).Config(cmd)
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestHandler_RunWithContextConfig(t *testing.T) {
	server := testutil.NewFakeRDM(t, "secret")
	server.AddRecord("abc123", testutil.RecordJSON)

	cfg := testutil.NewConfigBuilder().
		WithBaseURL(server.BaseURL()).
		WithToken("secret").
		WithJQ(".id").
		Build()
	cmd := &cobra.Command{}
	cmd.SetContext(config.WithConfig(context.Background(), cfg))

	var out bytes.Buffer
	h := NewHandler(zerolog.Nop(), WithOutput(&out), WithHTTPClient(server.Server.Client()))
	err := h.Run(cmd, rdm.NewSingleSource(rdm.Params{
		rdm.ParamResource:  "record",
		rdm.ParamOperation: "get",
		rdm.ParamRecordID:  "abc123",
	}))
	require.NoError(t, err)

	testutil.AssertJSONEqual(t, out.Bytes(), `["abc123"]`, "filtered output")
	testutil.AssertCallCount(t, len(server.Requests()), 1, "fake server")
}

func TestMCPHandler_Command(t *testing.T) {
	cmd := NewMCPHandler(zerolog.Nop(), NewHandler(zerolog.Nop())).Command()
	assert.Equal(t, "mcp", cmd.Name())
	assert.NotNil(t, cmd.Flags().Lookup("read-only"))
	assert.NotNil(t, cmd.Flags().Lookup("description"))
}
