// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes propdesk CRM tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/propdesk/internal/apperr"
	"github.com/starford/propdesk/internal/crmservice"
	"github.com/starford/propdesk/internal/models"
	"github.com/starford/propdesk/internal/report"
)

// LeadFormatURI is the resource holding LeadFormatContract.
const LeadFormatURI = "propdesk://lead-format"

// Server wraps the MCP server with propdesk tools.
type Server struct {
	mcp *server.MCPServer
	svc *crmservice.Service
}

func enumOf[T ~string](values []T) mcp.PropertyOption {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return mcp.Enum(out...)
}

// New creates a new MCP server with all propdesk tools registered.
func New(svc *crmservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"propdesk",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_leads",
		mcp.WithDescription("List leads, optionally filtered by a case-insensitive search on name, email or phone and by status."),
		mcp.WithString("search", mcp.Description("Substring to match against name, email or phone")),
		mcp.WithString("status", mcp.Description("Status filter; 'all' or empty for every status"),
			enumOf(append([]models.LeadStatus{report.StatusAll}, models.LeadStatuses...))),
	), s.listLeads)

	s.mcp.AddTool(mcp.NewTool("search_leads",
		mcp.WithDescription("Full-text search through lead names, contact details, notes and message history."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchLeads)

	s.mcp.AddTool(mcp.NewTool("get_lead",
		mcp.WithDescription("Read one lead including its communication history."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Lead id")),
	), s.getLead)

	s.mcp.AddTool(mcp.NewTool("create_lead",
		mcp.WithDescription("Create a new lead. Read the contract first via the get_lead_contract tool "+
			"or the "+LeadFormatURI+" resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Full name")),
		mcp.WithString("email", mcp.Description("Email address")),
		mcp.WithString("phone", mcp.Description("Phone number")),
		mcp.WithString("location", mcp.Description("Preferred location")),
		mcp.WithNumber("budget", mcp.Description("Budget in rupees, non-negative")),
		mcp.WithString("source", mcp.Description("Lead source"), enumOf(models.LeadSources)),
		mcp.WithString("status", mcp.Description("Pipeline status"), enumOf(models.LeadStatuses)),
		mcp.WithString("property_type", mcp.Description("Wanted property type"), enumOf(models.PropertyTypes)),
		mcp.WithString("assigned_agent", mcp.Description("Agent id")),
		mcp.WithString("notes", mcp.Description("Free-text notes")),
	), s.createLead)

	s.mcp.AddTool(mcp.NewTool("update_lead_status",
		mcp.WithDescription("Move a lead to another pipeline status."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Lead id")),
		mcp.WithString("status", mcp.Required(), mcp.Description("New status"), enumOf(models.LeadStatuses)),
	), s.updateLeadStatus)

	s.mcp.AddTool(mcp.NewTool("log_communication",
		mcp.WithDescription("Append a call note or an inbound/outbound message to a lead's history."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Lead id")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Channel"), enumOf(models.ChannelTypes)),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message text or call summary")),
		mcp.WithString("direction", mcp.Description("Defaults to outbound"), mcp.Enum(string(models.DirectionInbound), string(models.DirectionOutbound))),
	), s.logCommunication)

	s.mcp.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send an outbound WhatsApp, email or SMS message to a lead through the composer."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Lead id")),
		mcp.WithString("channel", mcp.Required(), mcp.Description("Channel"), mcp.Enum(string(models.ChannelWhatsApp), string(models.ChannelEmail), string(models.ChannelSMS))),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message text")),
	), s.sendMessage)

	s.mcp.AddTool(mcp.NewTool("list_message_templates",
		mcp.WithDescription("Quick message templates to start a send_message text from."),
	), s.listMessageTemplates)

	s.mcp.AddTool(mcp.NewTool("recent_communications",
		mcp.WithDescription("Leads that have message history, each with its message count and latest messages."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of leads (default 5)")),
		mcp.WithNumber("per_lead", mcp.Description("Latest messages shown per lead (default 2)")),
	), s.recentCommunications)

	s.mcp.AddTool(mcp.NewTool("dashboard_stats",
		mcp.WithDescription("Headline figures: total leads, new leads, conversions, revenue and conversion rate."),
	), s.dashboardStats)

	s.mcp.AddTool(mcp.NewTool("export_leads_csv",
		mcp.WithDescription("Export leads as CSV, with the same filters as list_leads."),
		mcp.WithString("search", mcp.Description("Substring to match against name, email or phone")),
		mcp.WithString("status", mcp.Description("Status filter; 'all' or empty for every status")),
	), s.exportLeadsCSV)

	s.mcp.AddTool(mcp.NewTool("import_leads_csv",
		mcp.WithDescription("Import leads from CSV with a header row. Pass the CSV inline or as a URL "+
			"(http, https or a data: URI)."),
		mcp.WithString("csv", mcp.Description("CSV text")),
		mcp.WithString("url", mcp.Description("Location of the CSV file")),
	), s.importLeadsCSV)

	s.mcp.AddTool(mcp.NewTool("get_lead_contract",
		mcp.WithDescription("Returns the propdesk lead format contract. "+
			"Call this before creating or importing leads to ensure correct structure."),
	), s.getLeadContract)

	// Resource: lead format contract.
	s.mcp.AddResource(
		mcp.NewResource(LeadFormatURI, "Lead Format Contract",
			mcp.WithResourceDescription("Lead fields, enums, pipeline and CSV layout."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLeadFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func filterArgs(req mcp.CallToolRequest) report.Filter {
	return report.Filter{Search: req.GetString("search", ""), Status: req.GetString("status", "")}
}

func (s *Server) listLeads(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListLeads(ctx, filterArgs(req))), nil
}

func (s *Server) searchLeads(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.SearchLeads(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getLead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := s.svc.GetLead(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(l), nil
}

func (s *Server) createLead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l := models.Lead{
		Name:          strings.TrimSpace(name),
		Email:         req.GetString("email", ""),
		Phone:         req.GetString("phone", ""),
		Location:      req.GetString("location", ""),
		Budget:        req.GetFloat("budget", 0),
		Source:        models.LeadSource(req.GetString("source", "")),
		Status:        models.LeadStatus(req.GetString("status", "")),
		PropertyType:  models.PropertyType(req.GetString("property_type", "")),
		AssignedAgent: req.GetString("assigned_agent", ""),
		Notes:         req.GetString("notes", ""),
	}
	switch {
	case l.Budget < 0:
		return mcp.NewToolResultError("budget must be non-negative"), nil
	case l.Source != "" && !l.Source.Valid():
		return mcp.NewToolResultError("unknown source: " + string(l.Source)), nil
	case l.Status != "" && !l.Status.Valid():
		return mcp.NewToolResultError("unknown status: " + string(l.Status)), nil
	case l.PropertyType != "" && !l.PropertyType.Valid():
		return mcp.NewToolResultError("unknown property type: " + string(l.PropertyType)), nil
	}
	created, err := s.svc.CreateLead(ctx, l)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(created), nil
}

func (s *Server) updateLeadStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := s.svc.UpdateLeadStatus(ctx, id, models.LeadStatus(status))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(l), nil
}

func (s *Server) logCommunication(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(msg) == "" {
		return mcp.NewToolResultError("message is empty"), nil
	}
	l, err := s.svc.LogCommunication(ctx, id, models.Communication{
		Type:      models.ChannelType(typ),
		Message:   msg,
		Direction: models.Direction(req.GetString("direction", "")),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(l), nil
}

func (s *Server) sendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	channel, err := req.RequireString("channel")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.SendMessage(ctx, id, models.ChannelType(channel), msg)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(c), nil
}

func (s *Server) listMessageTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.MessageTemplates(ctx)), nil
}

func (s *Server) recentCommunications(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.RecentCommunications(ctx, req.GetInt("limit", 5), req.GetInt("per_lead", 2))), nil
}

func (s *Server) dashboardStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Stats(ctx)), nil
}

func (s *Server) exportLeadsCSV(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, content := s.svc.ExportCSV(ctx, filterArgs(req))
	return mcp.NewToolResultText(content), nil
}

func (s *Server) getLeadContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LeadFormatContract), nil
}

func (s *Server) readLeadFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      LeadFormatURI,
			MIMEType: "text/markdown",
			Text:     LeadFormatContract,
		},
	}, nil
}
