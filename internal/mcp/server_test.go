package mcp_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/tupadhub/tupadhub/internal/autosave"
	"github.com/tupadhub/tupadhub/internal/domain/project"
	"github.com/tupadhub/tupadhub/internal/mcp"
	"github.com/tupadhub/tupadhub/internal/testserver"
)

func createProject(t *testing.T, session *sdkmcp.ClientSession, adl, municipality string, beneficiaries int) project.Project {
	t.Helper()
	var p project.Project
	testserver.Call(t, session, "create_project", map[string]any{
		"adl":           adl,
		"municipality":  municipality,
		"beneficiaries": beneficiaries,
	}, &p)
	require.NotEmpty(t, p.ID)
	return p
}

func completePostPatch() map[string]any {
	return map[string]any{
		"documentTracking": map[string]any{"dateReceivedPost": "2024-03-01", "dateSubmittedRO": "2024-03-05"},
		"verification": map[string]any{
			"totalBeneficiariesActual": 10,
			"totalFemaleActual":        4,
			"noOfDaysOfWork":           5,
			"periodStart":              "2024-02-01",
			"periodEnd":                "2024-02-05",
		},
		"cost":           map[string]any{"salaryPerDay": 400},
		"implementation": map[string]any{"paymentReleasedDate": "2024-03-10"},
	}
}

func TestServerInfoAndTools(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)

	info := session.InitializeResult()
	require.NotNil(t, info)
	require.Equal(t, mcp.Name, info.ServerInfo.Name)
	require.Equal(t, mcp.Version, info.ServerInfo.Version)
	require.NotEmpty(t, info.Instructions)

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, name := range []string{
		"create_project", "list_projects", "get_project", "delete_project", "set_project_expanded",
		"edit_pre_details", "edit_post_details", "set_cost_inputs", "set_status", "set_nature",
		"flush_edits", "close_editor", "get_stats", "get_report", "get_profile", "save_profile",
		"export_projects", "list_exports",
	} {
		require.True(t, names[name], "missing tool %s", name)
	}
}

func TestDocResources(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)
	ctx := context.Background()

	resources, err := session.ListResources(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, resources.Resources)

	res, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "tupad://docs/index"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "list_projects")
}

func TestCreateListAndGet(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)

	first := createProject(t, session, "2024-001", "Tagum", 10)
	createProject(t, session, "2024-002", "Panabo", 20)
	require.Equal(t, project.StatusPending, first.Status)

	var all mcp.ProjectListResponse
	testserver.Call(t, session, "list_projects", nil, &all)
	require.Len(t, all.Projects, 2)
	require.Equal(t, []string{"Panabo", "Tagum"}, all.Municipalities)

	var filtered mcp.ProjectListResponse
	testserver.Call(t, session, "list_projects", map[string]any{"query": "tag"}, &filtered)
	require.Len(t, filtered.Projects, 1)
	require.Equal(t, "2024-001", filtered.Projects[0].ADL)

	var detail mcp.ProjectDetailResponse
	testserver.Call(t, session, "get_project", map[string]any{"id": first.ID}, &detail)
	require.Equal(t, "2024-001", detail.ResolvedADL)
	require.Len(t, detail.MissingPostFields, 8)
	require.Nil(t, detail.Editor)
}

func TestCreateRejectsMissingFields(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)

	result := testserver.CallRaw(t, session, "create_project", map[string]any{"adl": " ", "municipality": "Tagum"})
	require.True(t, result.IsError)
	require.Contains(t, testserver.ResultText(result), "INVALID_INPUT")
}

func TestUnknownProject(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)

	for _, name := range []string{"get_project", "delete_project", "flush_edits"} {
		result := testserver.CallRaw(t, session, name, map[string]any{"id": "missing"})
		require.True(t, result.IsError, name)
		require.Contains(t, testserver.ResultText(result), "PROJECT_NOT_FOUND", name)
	}

	result := testserver.CallRaw(t, session, "edit_pre_details", map[string]any{"id": "missing", "patch": map[string]any{}})
	require.True(t, result.IsError)
	require.Contains(t, testserver.ResultText(result), "PROJECT_NOT_FOUND")
}

func TestEditsAreBufferedUntilFlush(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)
	p := createProject(t, session, "2024-001", "Tagum", 10)

	var draft autosave.Draft
	testserver.Call(t, session, "edit_pre_details", map[string]any{
		"id":    p.ID,
		"patch": map[string]any{"implementation": map[string]any{"remarks": "orientation done"}},
	}, &draft)
	require.True(t, draft.Pending)
	require.Equal(t, "orientation done", draft.Pre.Implementation.Remarks)

	stored, err := ts.Projects.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Nil(t, stored.PreDetails.Implementation)

	var detail mcp.ProjectDetailResponse
	testserver.Call(t, session, "get_project", map[string]any{"id": p.ID}, &detail)
	require.NotNil(t, detail.Editor)
	require.True(t, detail.Editor.Pending)

	var flushed project.Project
	testserver.Call(t, session, "flush_edits", map[string]any{"id": p.ID}, &flushed)
	require.Equal(t, "orientation done", flushed.PreDetails.Implementation.Remarks)
}

func TestRejectsUnknownPatchFields(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)
	p := createProject(t, session, "2024-001", "Tagum", 10)

	result := testserver.CallRaw(t, session, "edit_post_details", map[string]any{
		"id":    p.ID,
		"patch": map[string]any{"verification": map[string]any{"bogus": 1}},
	})
	require.True(t, result.IsError)
	require.Contains(t, testserver.ResultText(result), "INVALID_PATCH")
}

func TestPostCompletionFlow(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)
	p := createProject(t, session, "2024-001", "Tagum", 10)

	testserver.Call(t, session, "edit_post_details", map[string]any{"id": p.ID, "patch": completePostPatch()}, nil)

	var draft autosave.Draft
	testserver.Call(t, session, "set_cost_inputs", map[string]any{
		"id": p.ID, "phase": "post", "beneficiaries": 10, "days": 5, "salaryPerDay": 400,
	}, &draft)

	var saved project.Project
	testserver.Call(t, session, "close_editor", map[string]any{"id": p.ID}, &saved)
	require.Equal(t, project.StatusCompleted, saved.Status)
	require.Equal(t, project.SourceInferred, saved.StatusSource)
	require.InDelta(t, 20000, *saved.PostDetails.Cost.LaborCost, 0.001)
	require.InDelta(t, 2500, *saved.PostDetails.Cost.PPE, 0.001)
	require.InDelta(t, 500, *saved.PostDetails.Cost.Insurance, 0.001)
	require.InDelta(t, 23000, *saved.PostDetails.Cost.Total, 0.001)

	var stats project.Stats
	testserver.Call(t, session, "get_stats", nil, &stats)
	require.Equal(t, project.Stats{Total: 1, Completed: 1, TotalBeneficiaries: 10, TotalFemale: 4, FemalePct: 40}, stats)

	_, open := ts.Editor.Lookup(p.ID)
	require.False(t, open)
}

func TestManualStatusAndNature(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)
	p := createProject(t, session, "2024-001", "Tagum", 10)

	testserver.Call(t, session, "set_status", map[string]any{"id": p.ID, "status": "Completed"}, nil)
	testserver.Call(t, session, "set_nature", map[string]any{"id": p.ID, "nature": "Canal clearing"}, nil)

	var saved project.Project
	testserver.Call(t, session, "flush_edits", map[string]any{"id": p.ID}, &saved)
	require.Equal(t, project.StatusCompleted, saved.Status)
	require.Equal(t, project.SourceManual, saved.StatusSource)
	require.Equal(t, "Canal clearing", saved.NatureOfProject)
	require.Equal(t, "Canal clearing", saved.PreDetails.ProjectInformation.NameNature)

	result := testserver.CallRaw(t, session, "set_status", map[string]any{"id": p.ID, "status": "Archived"})
	require.True(t, result.IsError)
	require.Contains(t, testserver.ResultText(result), "INVALID_INPUT")

	result = testserver.CallRaw(t, session, "set_cost_inputs", map[string]any{"id": p.ID, "phase": "during"})
	require.True(t, result.IsError)
	require.Contains(t, testserver.ResultText(result), "unknown phase")
}

func TestDeleteDiscardsPendingEdits(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)
	p := createProject(t, session, "2024-001", "Tagum", 10)

	testserver.Call(t, session, "set_nature", map[string]any{"id": p.ID, "nature": "Canal clearing"}, nil)
	testserver.Call(t, session, "set_project_expanded", map[string]any{"id": p.ID, "expanded": true}, nil)

	var deleted mcp.DeleteResponse
	testserver.Call(t, session, "delete_project", map[string]any{"id": p.ID}, &deleted)
	require.True(t, deleted.Deleted)

	_, open := ts.Editor.Lookup(p.ID)
	require.False(t, open)
	require.Empty(t, ts.Projects.All(context.Background()))
}

func TestProfileRoundTrip(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)

	var empty mcp.ProfileResponse
	testserver.Call(t, session, "get_profile", nil, &empty)
	require.Equal(t, "U", empty.Initials)

	var saved mcp.ProfileResponse
	testserver.Call(t, session, "save_profile", map[string]any{
		"fullName":     "Maria Clara Santos",
		"position":     "TUPAD Coordinator",
		"municipality": "Tagum",
	}, &saved)
	require.Equal(t, "MC", saved.Initials)

	var loaded mcp.ProfileResponse
	testserver.Call(t, session, "get_profile", nil, &loaded)
	require.Equal(t, "Maria Clara Santos", loaded.Profile.FullName)

	result := testserver.CallRaw(t, session, "save_profile", map[string]any{"avatarUrl": "ftp://example.com/a.png"})
	require.True(t, result.IsError)
	require.Contains(t, testserver.ResultText(result), "INVALID_INPUT")
}

func TestExports(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)
	p := createProject(t, session, "2024/001", "Tagum", 10)

	var inline mcp.ExportResponse
	testserver.Call(t, session, "export_projects", map[string]any{"format": "json"}, &inline)
	require.Equal(t, "tupad-projects.json", inline.Name)
	require.Contains(t, inline.Content, `"adl": "2024/001"`)

	var csv mcp.ExportResponse
	testserver.Call(t, session, "export_projects", map[string]any{"format": "csv", "project_id": p.ID}, &csv)
	require.True(t, strings.HasPrefix(csv.Content, "\ufeffADL No.;"))

	var xlsx mcp.ExportResponse
	testserver.Call(t, session, "export_projects", map[string]any{"format": "xlsx"}, &xlsx)
	require.Equal(t, "base64", xlsx.Encoding)
	data, err := base64.StdEncoding.DecodeString(xlsx.Content)
	require.NoError(t, err)
	require.Equal(t, "PK", string(data[:2]))

	result := testserver.CallRaw(t, session, "export_projects", map[string]any{"format": "csv"})
	require.True(t, result.IsError)
	require.Contains(t, testserver.ResultText(result), "EXPORT_PROJECT_REQUIRED")

	result = testserver.CallRaw(t, session, "export_projects", map[string]any{"format": "pdf"})
	require.True(t, result.IsError)
	require.Contains(t, testserver.ResultText(result), "EXPORT_UNKNOWN_FORMAT")

	var published mcp.ExportResponse
	testserver.Call(t, session, "export_projects", map[string]any{"format": "json", "publish": true}, &published)
	require.NotNil(t, published.Published)
	require.True(t, strings.HasPrefix(published.Published.Key, "exports/"))
	require.True(t, strings.HasSuffix(published.Name, "tupad-projects.json"))

	var listed mcp.PublishedResponse
	testserver.Call(t, session, "list_exports", nil, &listed)
	require.Len(t, listed.Exports, 1)
	require.Equal(t, published.Published.Key, listed.Exports[0].Key)
}

func TestReports(t *testing.T) {
	ts := testserver.New(t)
	session := ts.Connect(t)
	p := createProject(t, session, "2024-001", "Tagum", 10)
	createProject(t, session, "2024-002", "Panabo", 5)

	var single mcp.ReportResponse
	testserver.Call(t, session, "get_report", map[string]any{"project_id": p.ID}, &single)
	require.NotNil(t, single.Project)
	require.Nil(t, single.Portfolio)
	require.Equal(t, "2024-001", single.Project.ADL)

	var portfolio mcp.ReportResponse
	testserver.Call(t, session, "get_report", nil, &portfolio)
	require.NotNil(t, portfolio.Portfolio)
	require.Len(t, portfolio.Portfolio.Projects, 2)
	require.Equal(t, 2, portfolio.Portfolio.Stats.Total)
}
