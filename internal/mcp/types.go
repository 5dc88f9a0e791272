package mcp

import (
	"time"

	"github.com/tupadhub/tupadhub/internal/autosave"
	"github.com/tupadhub/tupadhub/internal/blob"
	"github.com/tupadhub/tupadhub/internal/domain/profile"
	"github.com/tupadhub/tupadhub/internal/domain/project"
	"github.com/tupadhub/tupadhub/internal/export"
)

type CreateProjectParams struct {
	ADL           string `json:"adl" jsonschema:"ADL number of the project"`
	Municipality  string `json:"municipality" jsonschema:"municipality where the project runs"`
	Beneficiaries int    `json:"beneficiaries,omitempty" jsonschema:"estimated number of beneficiaries"`
}

type ListProjectsParams struct {
	Query        string         `json:"query,omitempty" jsonschema:"case-insensitive match on ADL or municipality"`
	Status       project.Status `json:"status,omitempty" jsonschema:"Pending or Completed"`
	Municipality string         `json:"municipality,omitempty" jsonschema:"exact municipality filter"`
}

type ProjectIDParams struct {
	ID string `json:"id" jsonschema:"project id"`
}

type SetExpandedParams struct {
	ID       string `json:"id" jsonschema:"project id"`
	Expanded bool   `json:"expanded" jsonschema:"whether the list card is expanded"`
}

type EditDetailsParams struct {
	ID    string         `json:"id" jsonschema:"project id"`
	Patch map[string]any `json:"patch" jsonschema:"JSON merge patch over the phase details, using the stored camelCase field names"`
}

type SetCostInputsParams struct {
	ID            string   `json:"id" jsonschema:"project id"`
	Phase         string   `json:"phase" jsonschema:"pre or post"`
	Beneficiaries *int     `json:"beneficiaries,omitempty" jsonschema:"total beneficiaries"`
	Days          *int     `json:"days,omitempty" jsonschema:"number of working days"`
	SalaryPerDay  *float64 `json:"salaryPerDay,omitempty" jsonschema:"daily salary per beneficiary"`
}

type SetStatusParams struct {
	ID     string         `json:"id" jsonschema:"project id"`
	Status project.Status `json:"status" jsonschema:"Pending or Completed"`
}

type SetNatureParams struct {
	ID     string `json:"id" jsonschema:"project id"`
	Nature string `json:"nature" jsonschema:"name and nature of the project"`
}

type ExportParams struct {
	Format    string `json:"format" jsonschema:"json, csv or xlsx"`
	ProjectID string `json:"project_id,omitempty" jsonschema:"single project to export (required for csv)"`
	Publish   bool   `json:"publish,omitempty" jsonschema:"write the export to the configured sink instead of returning it"`
}

type ReportParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"project to report on; omit for the all-projects report"`
}

type SaveProfileParams struct {
	FullName      string `json:"fullName,omitempty" jsonschema:"coordinator full name"`
	Position      string `json:"position,omitempty"`
	Municipality  string `json:"municipality,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
	AvatarURL     string `json:"avatarUrl,omitempty" jsonschema:"http(s) URL or data:image/ URI"`
	CoverURL      string `json:"coverUrl,omitempty" jsonschema:"http(s) URL or data:image/ URI"`
}

type EmptyParams struct{}

type ProjectListResponse struct {
	Projects       []project.ProjectSummary `json:"projects"`
	Municipalities []string                 `json:"municipalities"`
}

type ProjectDetailResponse struct {
	Project           project.Project `json:"project"`
	ResolvedADL       string          `json:"resolvedAdl"`
	ResolvedNature    string          `json:"resolvedNature,omitempty"`
	MissingPostFields []string        `json:"missingPostFields"`
	Editor            *autosave.Draft `json:"editor,omitempty"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type ExpandedResponse struct {
	ID       string `json:"id"`
	Expanded bool   `json:"expanded"`
}

type ProfileResponse struct {
	Profile  profile.Profile `json:"profile"`
	Initials string          `json:"initials"`
}

// ExportObject is a published export as reported to clients.
type ExportObject struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	ContentType  string `json:"contentType,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
	URL          string `json:"url,omitempty"`
}

func newExportObject(info blob.Info) ExportObject {
	obj := ExportObject{Key: info.Key, Size: info.Size, ContentType: info.ContentType, URL: info.URL}
	if !info.LastModified.IsZero() {
		obj.LastModified = info.LastModified.UTC().Format(time.RFC3339)
	}
	return obj
}

type ExportResponse struct {
	Name        string        `json:"name"`
	ContentType string        `json:"contentType"`
	Encoding    string        `json:"encoding,omitempty"`
	Content     string        `json:"content,omitempty"`
	Published   *ExportObject `json:"published,omitempty"`
}

type PublishedResponse struct {
	Exports []ExportObject `json:"exports"`
}

type ReportResponse struct {
	Project   *export.ProjectReport   `json:"project,omitempty"`
	Portfolio *export.PortfolioReport `json:"portfolio,omitempty"`
}
