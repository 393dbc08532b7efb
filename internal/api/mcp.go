package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/prefs/internal/prefs"
)

var kindNames = []string{"String", "Int", "Float", "DateTime"}

// NewMCPServer creates an MCP server exposing the store as tools and the
// full export as a resource.
func NewMCPServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"prefs",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("prefs: typed application settings with defaults and reset."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_prefs",
			mcp.WithDescription("List all setting keys in insertion order."),
		),
		mcpListPrefs(deps),
	)

	s.AddTool(
		mcp.NewTool("get_pref",
			mcp.WithDescription("Read one setting with its type and registered default."),
			mcp.WithString("key", mcp.Description("Setting key"), mcp.Required()),
		),
		mcpGetPref(deps),
	)

	s.AddTool(
		mcp.NewTool("set_pref",
			mcp.WithDescription("Store a setting value."),
			mcp.WithString("key", mcp.Description("Setting key"), mcp.Required()),
			mcp.WithString("value", mcp.Description("Value as text"), mcp.Required()),
			mcp.WithString("type", mcp.Description("Value type (default String)"), mcp.Enum(kindNames...)),
		),
		mcpSetPref(deps),
	)

	s.AddTool(
		mcp.NewTool("delete_pref",
			mcp.WithDescription("Delete a setting together with its default."),
			mcp.WithString("key", mcp.Description("Setting key"), mcp.Required()),
		),
		mcpDeletePref(deps),
	)

	s.AddTool(
		mcp.NewTool("register_default",
			mcp.WithDescription("Register the value a setting returns to on reset."),
			mcp.WithString("key", mcp.Description("Setting key"), mcp.Required()),
			mcp.WithString("value", mcp.Description("Default value as text"), mcp.Required()),
			mcp.WithString("type", mcp.Description("Type used to validate the value (default String)"), mcp.Enum(kindNames...)),
		),
		mcpRegisterDefault(deps),
	)

	s.AddTool(
		mcp.NewTool("reset_prefs",
			mcp.WithDescription("Reset one setting, or all settings when key is omitted, to registered defaults."),
			mcp.WithString("key", mcp.Description("Setting key; omit to reset everything")),
		),
		mcpResetPrefs(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"prefs://all",
			"All settings",
			mcp.WithResourceDescription("Every setting with its type and default, as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceAll(deps),
	)

	return s
}

func mcpListPrefs(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keys, err := deps.Store.ListKeys()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list keys: %v", err)), nil
		}
		if keys == nil {
			keys = []string{}
		}
		return mcpJSON(keys)
	}
}

func mcpGetPref(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("key")
		if err != nil {
			return mcpError("key is required"), nil
		}

		ok, err := deps.Store.Has(key)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to read %q: %v", key, err)), nil
		}
		if !ok {
			return mcpError(fmt.Sprintf("pref %q not found", key)), nil
		}

		rec, err := loadRecord(deps.Store, key)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to read %q: %v", key, err)), nil
		}
		return mcpJSON(rec)
	}
}

func mcpSetPref(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, v, errResult := mcpKeyValue(req)
		if errResult != nil {
			return errResult, nil
		}
		if err := deps.Store.SaveTyped(key, v); err != nil {
			return mcpError(fmt.Sprintf("failed to save %q: %v", key, err)), nil
		}
		return mcpText(fmt.Sprintf("Set %s = %s (%s)", key, v, v.Kind())), nil
	}
}

func mcpDeletePref(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("key")
		if err != nil {
			return mcpError("key is required"), nil
		}
		if err := deps.Store.Delete(key); err != nil {
			return mcpError(fmt.Sprintf("failed to delete %q: %v", key, err)), nil
		}
		return mcpText(fmt.Sprintf("Deleted %s", key)), nil
	}
}

func mcpRegisterDefault(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, v, errResult := mcpKeyValue(req)
		if errResult != nil {
			return errResult, nil
		}
		if err := deps.Store.RegisterDefault(key, v); err != nil {
			return mcpError(fmt.Sprintf("failed to register default for %q: %v", key, err)), nil
		}
		return mcpText(fmt.Sprintf("Default for %s = %s", key, v)), nil
	}
}

func mcpResetPrefs(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key := req.GetString("key", "")
		if key == "" {
			n, err := deps.Store.ResetAll()
			if err != nil {
				return mcpError(fmt.Sprintf("failed to reset: %v", err)), nil
			}
			return mcpText(fmt.Sprintf("Reset %d prefs to defaults", n)), nil
		}

		ok, err := deps.Store.ResetOne(key)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to reset %q: %v", key, err)), nil
		}
		if !ok {
			return mcpText(fmt.Sprintf("No default registered for %s", key)), nil
		}
		return mcpText(fmt.Sprintf("Reset %s to default", key)), nil
	}
}

func mcpResourceAll(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		records, err := deps.Store.Export()
		if err != nil {
			return nil, fmt.Errorf("failed to export prefs: %w", err)
		}

		b, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal prefs: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

// mcpKeyValue reads the key, value and optional type arguments.
func mcpKeyValue(req mcp.CallToolRequest) (string, prefs.Value, *mcp.CallToolResult) {
	key, err := req.RequireString("key")
	if err != nil {
		return "", prefs.Value{}, mcpError("key is required")
	}
	text, err := req.RequireString("value")
	if err != nil {
		return "", prefs.Value{}, mcpError("value is required")
	}
	kind, err := prefs.KindFromName(req.GetString("type", "String"))
	if err != nil {
		return "", prefs.Value{}, mcpError(err.Error())
	}
	v, err := prefs.ParseStrict(kind, text)
	if err != nil {
		return "", prefs.Value{}, mcpError(err.Error())
	}
	return key, v, nil
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
