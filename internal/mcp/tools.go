package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// tool adapts a handler method to the SDK's typed tool signature. Errors
// surface to the client as tool results with IsError set.
func tool[In, Out any](fn func(context.Context, In) (Out, error)) sdkmcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
		out, err := fn(ctx, in)
		return nil, out, err
	}
}

func registerTools(server *sdkmcp.Server, h *Handler) {
	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a pending project with an ADL number, municipality and estimated beneficiaries",
	}, tool(h.CreateProject))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List project cards, optionally filtered by ADL/municipality query, status or municipality",
	}, tool(h.ListProjects))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a stored project with its resolved ADL, missing post fields and any open editor draft",
	}, tool(h.GetProject))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project permanently, discarding unsaved editor changes",
	}, tool(h.DeleteProject))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_project_expanded",
		Description: "Record whether a project card is expanded in the list view",
	}, tool(h.SetExpanded))

	// Editing (auto-saved after the debounce period)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_pre_details",
		Description: "Merge a patch into the pre-implementation details draft; saved automatically",
	}, tool(h.EditPreDetails))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_post_details",
		Description: "Merge a patch into the post-implementation details draft; completion status is inferred on save",
	}, tool(h.EditPostDetails))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_cost_inputs",
		Description: "Set beneficiaries, days and salary per day for a phase; labor, PPE, insurance and total are derived",
	}, tool(h.SetCostInputs))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_status",
		Description: "Set the project status manually (Pending or Completed)",
	}, tool(h.SetStatus))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_nature",
		Description: "Set the name and nature of the project from the post-implementation view",
	}, tool(h.SetNature))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "flush_edits",
		Description: "Save pending edits for a project immediately",
	}, tool(h.FlushEdits))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "close_editor",
		Description: "Save pending edits and close the project's editor",
	}, tool(h.CloseEditor))

	// Portfolio
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_stats",
		Description: "Get portfolio totals: projects, completed, ongoing, beneficiaries and female share",
	}, tool(h.GetStats))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_report",
		Description: "Get the print report for one project, or the all-projects report when project_id is omitted",
	}, tool(h.GetReport))

	// Profile
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_profile",
		Description: "Get the coordinator profile and its initials",
	}, tool(h.GetProfile))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "save_profile",
		Description: "Replace the coordinator profile",
	}, tool(h.SaveProfile))

	// Exports
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_projects",
		Description: "Export projects as json, xlsx or single-project csv; inline or published to the export sink",
	}, tool(h.ExportProjects))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_exports",
		Description: "List exports previously published to the export sink",
	}, tool(h.ListExports))
}
