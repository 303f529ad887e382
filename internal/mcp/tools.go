package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/logger"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Arguments handled by the server itself rather than the resolver
const (
	argJQ    = "jq"
	argItems = "items"
)

type tool struct {
	definition mcp.Tool
	handler    server.ToolHandlerFunc
}

// parameterSchemas describes resolver parameters as JSON schema properties
var parameterSchemas = map[string]map[string]interface{}{
	rdm.ParamRecordID: {
		"type":        "string",
		"description": "Record identifier, e.g. abcd-1234",
	},
	rdm.ParamCommunityID: {
		"type":        "string",
		"description": "Community slug, e.g. front_matter",
	},
	rdm.ParamRecordData: {
		"type":        "string",
		"description": `Record JSON: {"metadata":{"title":...,"creators":[{"person_or_org":{"type":"personal","name":"Family, Given"}}],"resource_type":{"id":...},"publication_date":"YYYY-MM-DD"}}`,
	},
	rdm.ParamReturnAll: {
		"type":        "boolean",
		"description": "Return every hit the server sends instead of truncating to limit",
		"default":     false,
	},
	rdm.ParamLimit: {
		"type":        "integer",
		"description": "Maximum number of results (1-1000)",
		"minimum":     1,
		"maximum":     rdm.MaxLimit,
	},
	rdm.ParamAdditionalFields: {
		"type":        "object",
		"description": "Optional search fields",
		"properties": map[string]interface{}{
			"q":    map[string]interface{}{"type": "string", "description": "Search query"},
			"sort": map[string]interface{}{"type": "string", "description": "bestmatch, newest, oldest, mostrecent, mostviewed, mostdownloaded, updated-desc or updated-asc"},
			"page": map[string]interface{}{"type": "integer", "description": "Page number (records only)"},
			"f":    map[string]interface{}{"type": "string", "description": "Language filter (records only)"},
		},
	},
}

// requiredParameters must be present in every call
var requiredParameters = map[string]bool{
	rdm.ParamRecordID:    true,
	rdm.ParamCommunityID: true,
	rdm.ParamRecordData:  true,
}

// ToolName maps a pair to its tool name, e.g. community/getRecords to
// community_get_records
func ToolName(key rdm.Key) string {
	if key.Resource == rdm.ResourcePing {
		return "ping"
	}

	var b strings.Builder
	for _, r := range string(key.Operation) {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return string(key.Resource) + "_" + b.String()
}

func isMutating(op rdm.Operation) bool {
	return op.Method != "GET"
}

func boolPtr(b bool) *bool {
	return &b
}

// tools builds one tool per operation plus the vocabulary lookup
func (s *Server) tools() []tool {
	var tools []tool

	for _, op := range rdm.Operations {
		if s.config.MCP.ReadOnly && isMutating(op) {
			continue
		}
		tools = append(tools, tool{
			definition: operationTool(op),
			handler:    s.operationHandler(op),
		})
	}

	tools = append(tools, tool{
		definition: mcp.Tool{
			Name:        "resource_types",
			Description: "List the resource type identifiers accepted in metadata.resource_type.id",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
			},
			Annotations: mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)},
		},
		handler: s.handleResourceTypes,
	})

	return tools
}

func operationTool(op rdm.Operation) mcp.Tool {
	properties := map[string]interface{}{}
	var required []string

	for _, name := range op.Parameters {
		properties[name] = parameterSchemas[name]
		if requiredParameters[name] {
			required = append(required, name)
		}
	}

	properties[argJQ] = map[string]interface{}{
		"type":        "string",
		"description": "jq expression applied to each result to reduce the response, e.g. {id, title: .metadata.title}",
	}
	if op.Key.Resource != rdm.ResourcePing {
		properties[argItems] = map[string]interface{}{
			"type":        "array",
			"description": "Run the operation once per element; each element overrides the top-level arguments",
			"items":       map[string]interface{}{"type": "object"},
		}
	}

	description := fmt.Sprintf("%s (%s %s)", op.Description, op.Method, op.Path)

	return mcp.Tool{
		Name:        ToolName(op.Key),
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
		Annotations: mcp.ToolAnnotation{
			ReadOnlyHint:    boolPtr(!isMutating(op)),
			DestructiveHint: boolPtr(op.Key.Operation == rdm.OperationDelete),
		},
	}
}

// operationHandler runs the operation through the same runner as the CLI
func (s *Server) operationHandler(op rdm.Operation) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		toolLogger := logger.ForMCP(s.logger, ToolName(op.Key))

		args := request.GetArguments()
		source, expression, err := toolSource(op.Key, args)
		if err != nil {
			toolLogger.Warn().Err(err).Msg("invalid tool arguments")
			return mcp.NewToolResultError(errors.UserMessage(err)), nil
		}

		toolLogger.Debug().
			Int("items", source.ItemCount()).
			Str("jq", expression).
			Msg("executing tool call")

		runner := rdm.NewRunner(s.logger, s.backend, rdm.WithContinueOnFail(s.config.ContinueOnFail))
		items, err := runner.Run(ctx, source)
		if err != nil {
			event := toolLogger.Debug().Err(err)
			if index, ok := errors.ItemIndex(err); ok {
				event = event.Int("item_index", index)
			}
			event.Msg("tool call failed")
			return mcp.NewToolResultError(errors.UserMessage(err)), nil
		}

		result, err := filterItems(ctx, items, expression)
		if err != nil {
			return mcp.NewToolResultError(errors.UserMessage(err)), nil
		}

		toolLogger.Debug().
			Interface("meta", result.Meta).
			Msg("tool call completed")

		return mcp.NewToolResultText(result.Content), nil
	}
}

func (s *Server) handleResourceTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	options, err := s.backend.ResourceTypes(ctx)
	if err != nil {
		toolLogger := logger.ForMCP(s.logger, "resource_types")
		toolLogger.Debug().Err(err).Msg("tool call failed")
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	data, err := json.MarshalIndent(options, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode resource types: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolSource turns tool arguments into runner input. Top-level arguments
// are shared by every element of the optional items array.
func toolSource(key rdm.Key, args map[string]any) (*rdm.StaticSource, string, error) {
	shared := rdm.Params{}
	var expression string
	var items []rdm.Params

	for name, value := range args {
		switch name {
		case argJQ:
			s, ok := value.(string)
			if !ok && value != nil {
				return nil, "", errors.New(errors.ErrorTypeValidation, "jq must be a string").
					WithContext("field", argJQ)
			}
			expression = s
		case argItems:
			list, ok := value.([]any)
			if !ok {
				return nil, "", errors.New(errors.ErrorTypeValidation, "items must be an array of objects").
					WithContext("field", argItems)
			}
			for i, element := range list {
				params, ok := element.(map[string]any)
				if !ok {
					return nil, "", errors.Newf(errors.ErrorTypeValidation, "items[%d] must be an object", i).
						WithContext("field", argItems)
				}
				items = append(items, rdm.Params(params))
			}
		case rdm.ParamResource, rdm.ParamOperation:
			// fixed by the tool
		default:
			shared[name] = value
		}
	}

	shared[rdm.ParamResource] = string(key.Resource)
	shared[rdm.ParamOperation] = string(key.Operation)

	if len(items) == 0 {
		items = []rdm.Params{{}}
	}
	for _, item := range items {
		delete(item, rdm.ParamResource)
		delete(item, rdm.ParamOperation)
	}

	return &rdm.StaticSource{Shared: shared, Items: items}, expression, nil
}
