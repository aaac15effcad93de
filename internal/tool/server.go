package tool

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"md2confluence/internal/logger"
)

const themeDescription = "Code block theme (DJango, Emacs, FadeToGrey, Midnight, RDark, Eclipse, Confluence). Omit for no theme."

const templateIDDescription = "Template id (basic-doc, table-doc, api-doc, meeting-note)"

// Tools adapts a Service to MCP tool handlers.
type Tools struct {
	svc *Service
	log *logger.Logger
}

// NewTools creates the MCP handlers for svc.
func NewTools(svc *Service, log *logger.Logger) *Tools {
	if log == nil {
		log = logger.Discard()
	}
	return &Tools{svc: svc, log: log}
}

// NewServer creates an MCP server exposing the convert and template tools.
func NewServer(svc *Service, name, version string, log *logger.Logger) *server.MCPServer {
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	NewTools(svc, log).Register(s)
	return s
}

// Register adds every tool to s.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("convertMarkdown",
		mcp.WithDescription("Converts Markdown text to Confluence wiki markup. "+
			"Supports headings, bold, italic, strikethrough, code blocks, links, images, quotes, lists and tables."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown text to convert")),
		mcp.WithString("theme", mcp.Description(themeDescription)),
	), t.ConvertMarkdown)

	s.AddTool(mcp.NewTool("listTemplates",
		mcp.WithDescription("Lists the available Markdown document templates."),
	), t.ListTemplates)

	s.AddTool(mcp.NewTool("getTemplate",
		mcp.WithDescription("Returns the Markdown content of a document template."),
		mcp.WithString("templateId", mcp.Required(), mcp.Description(templateIDDescription)),
	), t.GetTemplate)

	s.AddTool(mcp.NewTool("convertTemplate",
		mcp.WithDescription("Converts a document template to Confluence wiki markup."),
		mcp.WithString("templateId", mcp.Required(), mcp.Description(templateIDDescription)),
		mcp.WithString("theme", mcp.Description(themeDescription)),
	), t.ConvertTemplate)
}

// ConvertMarkdown handles the convertMarkdown tool.
func (t *Tools) ConvertMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	theme := req.GetString("theme", "")
	t.log.ToolCalled("convertMarkdown", "theme", theme)

	out, err := t.svc.ConvertMarkdown(markdown, theme)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

// ListTemplates handles the listTemplates tool.
func (t *Tools) ListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.log.ToolCalled("listTemplates")
	return jsonResult(t.svc.ListTemplates())
}

// GetTemplate handles the getTemplate tool.
func (t *Tools) GetTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("templateId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t.log.ToolCalled("getTemplate", "id", id)

	detail, err := t.svc.GetTemplate(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

// ConvertTemplate handles the convertTemplate tool.
func (t *Tools) ConvertTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("templateId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	theme := req.GetString("theme", "")
	t.log.ToolCalled("convertTemplate", "id", id, "theme", theme)

	converted, err := t.svc.ConvertTemplate(id, theme)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(converted)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio serves s over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
