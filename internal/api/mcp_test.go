package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/prefs/internal/prefs"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) (Deps, *prefs.Locked) {
	t.Helper()
	store := newTestStore(t)
	return Deps{Store: store, Token: testToken}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tests ---

func TestNewMCPServer(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	if NewMCPServer(deps) == nil {
		t.Fatal("NewMCPServer returned nil")
	}
}

func TestMCPTool_SetAndGet(t *testing.T) {
	deps, store := newTestMCPDeps(t)

	result, err := mcpSetPref(deps)(context.Background(), makeCallToolRequest("set_pref", map[string]interface{}{
		"key":   "retries",
		"value": "3",
		"type":  "Int",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}
	if v, _ := store.Get("retries"); !v.Equal(prefs.Int(3)) {
		t.Fatalf("stored = %v", v)
	}

	result, err = mcpGetPref(deps)(context.Background(), makeCallToolRequest("get_pref", map[string]interface{}{
		"key": "retries",
	}))
	if err != nil || result.IsError {
		t.Fatalf("get_pref failed: %v", err)
	}
	var rec prefs.Record
	if err := json.Unmarshal([]byte(toolText(t, result)), &rec); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !rec.Value.Equal(prefs.Int(3)) {
		t.Errorf("record value = %v", rec.Value)
	}
}

func TestMCPTool_SetDefaultsToString(t *testing.T) {
	deps, store := newTestMCPDeps(t)

	result, _ := mcpSetPref(deps)(context.Background(), makeCallToolRequest("set_pref", map[string]interface{}{
		"key":   "name",
		"value": "42",
	}))
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}
	if v, _ := store.Get("name"); !v.Equal(prefs.String("42")) {
		t.Errorf("stored = %v (%s), want String 42", v, v.Kind())
	}
}

func TestMCPTool_SetInvalidValue(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	result, err := mcpSetPref(deps)(context.Background(), makeCallToolRequest("set_pref", map[string]interface{}{
		"key":   "retries",
		"value": "many",
		"type":  "Int",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for invalid integer")
	}
}

func TestMCPTool_MissingKey(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	result, _ := mcpGetPref(deps)(context.Background(), makeCallToolRequest("get_pref", map[string]interface{}{}))
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(toolText(t, result), "key is required") {
		t.Errorf("text = %q", toolText(t, result))
	}

	result, _ = mcpGetPref(deps)(context.Background(), makeCallToolRequest("get_pref", map[string]interface{}{"key": "nope"}))
	if !result.IsError {
		t.Fatal("expected not-found error result")
	}
}

func TestMCPTool_DefaultAndReset(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	store.SaveTyped("k", prefs.Int(99))

	result, _ := mcpRegisterDefault(deps)(context.Background(), makeCallToolRequest("register_default", map[string]interface{}{
		"key":   "k",
		"value": "10",
		"type":  "Int",
	}))
	if result.IsError {
		t.Fatalf("register_default: %s", toolText(t, result))
	}

	result, _ = mcpResetPrefs(deps)(context.Background(), makeCallToolRequest("reset_prefs", map[string]interface{}{"key": "k"}))
	if result.IsError {
		t.Fatalf("reset_prefs: %s", toolText(t, result))
	}
	if v, _ := store.Get("k"); !v.Equal(prefs.Int(10)) {
		t.Errorf("k = %v, want 10", v)
	}

	store.SaveTyped("k", prefs.Int(50))
	result, _ = mcpResetPrefs(deps)(context.Background(), makeCallToolRequest("reset_prefs", map[string]interface{}{}))
	if got := toolText(t, result); got != "Reset 1 prefs to defaults" {
		t.Errorf("text = %q", got)
	}
}

func TestMCPTool_ListAndDelete(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	store.SaveTyped("a", prefs.Int(1))
	store.SaveTyped("b", prefs.Int(2))

	result, _ := mcpDeletePref(deps)(context.Background(), makeCallToolRequest("delete_pref", map[string]interface{}{"key": "a"}))
	if result.IsError {
		t.Fatalf("delete_pref: %s", toolText(t, result))
	}

	result, _ = mcpListPrefs(deps)(context.Background(), makeCallToolRequest("list_prefs", nil))
	var keys []string
	if err := json.Unmarshal([]byte(toolText(t, result)), &keys); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(keys) != 1 || keys[0] != "b" {
		t.Errorf("keys = %v", keys)
	}
}

func TestMCPResource_All(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	store.SaveTyped("a", prefs.String("x"))

	contents, err := mcpResourceAll(deps)(context.Background(), makeReadResourceRequest("prefs://all"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	var records []prefs.Record
	if err := json.Unmarshal([]byte(tc.Text), &records); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 || records[0].Key != "a" {
		t.Errorf("records = %+v", records)
	}
}
