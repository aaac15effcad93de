package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"md2confluence/internal/converter"
)

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestTools(t *testing.T) *Tools {
	t.Helper()
	return NewTools(newTestService(t, converter.DefaultOptions()), nil)
}

func call(t *testing.T, h handler, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestConvertMarkdownTool(t *testing.T) {
	tools := newTestTools(t)

	res := call(t, tools.ConvertMarkdown, map[string]any{
		"markdown": "Use `x` and ~~old~~",
		"theme":    "RDark",
	})
	assert.False(t, res.IsError)
	assert.Equal(t, "Use {{x}} and -old-\n", resultText(t, res))
}

func TestConvertMarkdownToolEmpty(t *testing.T) {
	tools := newTestTools(t)

	res := call(t, tools.ConvertMarkdown, map[string]any{"markdown": ""})
	assert.False(t, res.IsError)
	assert.Equal(t, "", resultText(t, res))
}

func TestConvertMarkdownToolMissingArgument(t *testing.T) {
	tools := newTestTools(t)

	res := call(t, tools.ConvertMarkdown, map[string]any{})
	assert.True(t, res.IsError)
}

func TestListTemplatesTool(t *testing.T) {
	tools := newTestTools(t)

	res := call(t, tools.ListTemplates, nil)
	assert.False(t, res.IsError)

	var list []map[string]string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &list))
	require.Len(t, list, 4)
	assert.Equal(t, "basic-doc", list[0]["id"])
	assert.Contains(t, list[0], "name")
	assert.Contains(t, list[0], "description")
}

func TestGetTemplateTool(t *testing.T) {
	tools := newTestTools(t)

	res := call(t, tools.GetTemplate, map[string]any{"templateId": "meeting-note"})
	assert.False(t, res.IsError)

	var detail TemplateDetail
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &detail))
	assert.Equal(t, "meeting-note", detail.ID)
	assert.NotEmpty(t, detail.Content)
}

func TestGetTemplateToolNotFound(t *testing.T) {
	tools := newTestTools(t)

	res := call(t, tools.GetTemplate, map[string]any{"templateId": "nope"})
	assert.True(t, res.IsError)
	assert.Equal(t, "template not found: nope", resultText(t, res))
}

func TestConvertTemplateTool(t *testing.T) {
	tools := newTestTools(t)

	res := call(t, tools.ConvertTemplate, map[string]any{
		"templateId": "table-doc",
		"theme":      "Confluence",
	})
	assert.False(t, res.IsError)

	var converted map[string]string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &converted))
	assert.Equal(t, "table-doc", converted["id"])
	assert.Equal(t, "Table document", converted["name"])
	assert.Contains(t, converted["confluenceMarkup"], "|| ")
}

func TestConvertTemplateToolNotFound(t *testing.T) {
	tools := newTestTools(t)

	res := call(t, tools.ConvertTemplate, map[string]any{"templateId": "nope"})
	assert.True(t, res.IsError)
	assert.Equal(t, "template not found: nope", resultText(t, res))
}

func TestNewServer(t *testing.T) {
	s := NewServer(newTestService(t, converter.DefaultOptions()), "md2confluence", "test", nil)
	assert.NotNil(t, s)
}
