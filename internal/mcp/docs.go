package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `tupad tracks short-term employment projects through two phases: pre-implementation and post-implementation.

Core concepts:
- Project: ADL number, municipality, estimated beneficiaries, status (Pending or Completed) and the two detail records.
- Editor: each project being edited has a draft. Edits are merged into the draft and saved automatically once no edit has arrived for the debounce period.
- Derived cost: when salary per day is recorded, labor cost = beneficiaries x days x salary, PPE = 250 x beneficiaries, insurance = 50 x beneficiaries, total = their sum.
- Completion: saving post details marks the project Completed when every required post field is present. A status set by hand is kept.

Workflow:
1) Orient with list_projects and get_stats.
2) Open a project with get_project; missingPostFields lists what blocks completion.
3) Edit with edit_pre_details / edit_post_details / set_cost_inputs / set_status / set_nature.
4) Call flush_edits or close_editor when a save must be visible right away.
5) Produce output with get_report or export_projects.

Docs:
- tupad://docs/index
- tupad://docs/fields
- tupad://docs/workflows/editing
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "tupad://docs/index",
		Name:        "docs_index",
		Title:       "tupad docs index",
		Description: "Entry point: what the tools do and which doc to read next.",
		Content: `# tupad: Agent Docs Index

## Quick start

1. ` + "`list_projects`" + ` to find a project (query matches ADL or municipality).
2. ` + "`get_project`" + ` to see stored details, the resolved ADL and missing post fields.
3. Edit with ` + "`edit_pre_details`" + ` or ` + "`edit_post_details`" + `. Patches use the stored field names.
4. ` + "`flush_edits`" + ` when the next read must see the change.
5. ` + "`export_projects`" + ` or ` + "`get_report`" + ` for output.

## Docs

- ` + "`tupad://docs/fields`" + ` field names of the pre and post detail records.
- ` + "`tupad://docs/workflows/editing`" + ` auto-save, cost derivation and status rules.

## Limitations

- CSV exports cover one project; use json or xlsx for the whole portfolio.
- Publishing exports needs a configured sink (filesystem directory or S3 bucket).
`,
	},
	{
		URI:         "tupad://docs/fields",
		Name:        "docs_fields",
		Title:       "Detail record fields",
		Description: "Patch field names for edit_pre_details and edit_post_details.",
		Content: `# Detail record fields

## Pre-implementation (edit_pre_details)

- documentTracking: dateReceivedRO, adlNumber, ntpNumber, dateSubmittedRO, noticeToProceedDate
- projectInformation: nameNature, proponent, location, totalBeneficiaries, totalFemale, noOfDays
- projectCost: salaryPerDay, laborCost, ppe, insurance, total
- implementation: orientationDate, paymentDate, remarks

## Post-implementation (edit_post_details)

- documentTracking: adlNumber, dateReceivedPost, dateSubmittedRO
- verification: totalBeneficiariesActual, totalFemaleActual, noOfDaysOfWork, periodStart, periodEnd
- cost: salaryPerDay, laborCost, ppe, insurance, total
- implementation: paymentReleasedDate, remarks

Derived cost fields are overwritten on save while salaryPerDay is recorded.

Example patch:

    {"verification": {"totalBeneficiariesActual": 20, "periodStart": "2024-05-01"}}

Dates are stored as entered (YYYY-MM-DD). Numbers are optional; 0 counts as recorded.
`,
	},
	{
		URI:         "tupad://docs/workflows/editing",
		Name:        "docs_workflow_editing",
		Title:       "Editing and auto-save",
		Description: "How drafts are saved, how costs are derived and how status is inferred.",
		Content: `# Editing and auto-save

## Drafts

Every edit replaces the pending save with a new one due after the debounce period.
A burst of edits produces one write. ` + "`close_editor`" + ` saves and closes,
` + "`delete_project`" + ` discards unsaved changes.

## Costs

` + "`set_cost_inputs`" + ` takes beneficiaries, days and salary per day for a phase.
With salary recorded, labor, PPE, insurance and total are recomputed on save.
Pre cost uses the pre beneficiaries, falling back to the project estimate.

## Status

- A post save marks the project Completed when all required post fields are present.
- A Completed that was inferred returns to Pending if a required field is cleared.
- ` + "`set_status`" + ` Completed is never reverted automatically.
- ` + "`set_status`" + ` Pending holds until the next post details edit.

## Nature and ADL

` + "`set_nature`" + ` also updates the pre nameNature field. The ADL shown everywhere
is post adlNumber, else pre adlNumber, else the project ADL.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
