package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/tupadhub/tupadhub/internal/autosave"
	"github.com/tupadhub/tupadhub/internal/domain/profile"
	"github.com/tupadhub/tupadhub/internal/domain/project"
	"github.com/tupadhub/tupadhub/internal/export"
)

// Handler implements the tool operations over the domain services.
type Handler struct {
	projects *project.Service
	profiles *profile.Service
	editor   *autosave.Reconciler
	exports  *export.Service
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		projects: services.Projects,
		profiles: services.Profiles,
		editor:   services.Editor,
		exports:  services.Exports,
	}
}

func (h *Handler) CreateProject(ctx context.Context, req CreateProjectParams) (project.Project, error) {
	p, err := h.projects.Create(ctx, project.CreateRequest{
		ADL:           req.ADL,
		Municipality:  req.Municipality,
		Beneficiaries: req.Beneficiaries,
	})
	if err != nil {
		return project.Project{}, mapError(err)
	}
	return *p, nil
}

func (h *Handler) ListProjects(ctx context.Context, req ListProjectsParams) (ProjectListResponse, error) {
	if req.Status != "" && !req.Status.Valid() {
		return ProjectListResponse{}, mapError(fmt.Errorf("%w: status %q", project.ErrInvalidInput, req.Status))
	}
	summaries := h.projects.Summaries(ctx, project.ListOptions{
		Query:        req.Query,
		Status:       req.Status,
		Municipality: req.Municipality,
	})
	if summaries == nil {
		summaries = []project.ProjectSummary{}
	}
	municipalities := h.projects.Municipalities(ctx)
	if municipalities == nil {
		municipalities = []string{}
	}
	return ProjectListResponse{Projects: summaries, Municipalities: municipalities}, nil
}

func (h *Handler) GetProject(ctx context.Context, req ProjectIDParams) (ProjectDetailResponse, error) {
	p, err := h.projects.Get(ctx, req.ID)
	if err != nil {
		return ProjectDetailResponse{}, mapError(err)
	}
	resp := ProjectDetailResponse{
		Project:           *p,
		ResolvedADL:       project.ResolveADL(*p),
		ResolvedNature:    project.ResolveNature(*p),
		MissingPostFields: project.MissingPostFields(p.PostDetails),
	}
	if resp.MissingPostFields == nil {
		resp.MissingPostFields = []string{}
	}
	if sess, ok := h.editor.Lookup(req.ID); ok {
		draft := sess.Draft()
		resp.Editor = &draft
	}
	return resp, nil
}

func (h *Handler) DeleteProject(ctx context.Context, req ProjectIDParams) (DeleteResponse, error) {
	// A pending commit must not resurrect the project after removal.
	h.editor.Discard(req.ID)
	if err := h.projects.Delete(ctx, req.ID); err != nil {
		return DeleteResponse{}, mapError(err)
	}
	return DeleteResponse{ID: req.ID, Deleted: true}, nil
}

func (h *Handler) SetExpanded(ctx context.Context, req SetExpandedParams) (ExpandedResponse, error) {
	if err := h.projects.SetExpanded(ctx, req.ID, req.Expanded); err != nil {
		return ExpandedResponse{}, mapError(err)
	}
	return ExpandedResponse{ID: req.ID, Expanded: req.Expanded}, nil
}

func (h *Handler) EditPreDetails(ctx context.Context, req EditDetailsParams) (autosave.Draft, error) {
	patch, err := encodePatch(req.Patch)
	if err != nil {
		return autosave.Draft{}, mapError(err)
	}
	return h.edit(ctx, req.ID, func(s *autosave.Session) error { return s.MergePre(patch) })
}

func (h *Handler) EditPostDetails(ctx context.Context, req EditDetailsParams) (autosave.Draft, error) {
	patch, err := encodePatch(req.Patch)
	if err != nil {
		return autosave.Draft{}, mapError(err)
	}
	return h.edit(ctx, req.ID, func(s *autosave.Session) error { return s.MergePost(patch) })
}

func (h *Handler) SetCostInputs(ctx context.Context, req SetCostInputsParams) (autosave.Draft, error) {
	in := project.CostInputs{
		Beneficiaries: req.Beneficiaries,
		Days:          req.Days,
		SalaryPerDay:  req.SalaryPerDay,
	}
	switch strings.ToLower(strings.TrimSpace(req.Phase)) {
	case autosave.PhasePre:
		return h.edit(ctx, req.ID, func(s *autosave.Session) error { return s.SetPreCost(in) })
	case autosave.PhasePost:
		return h.edit(ctx, req.ID, func(s *autosave.Session) error { return s.SetPostCost(in) })
	default:
		return autosave.Draft{}, &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("unknown phase %q", req.Phase), RecoveryHint: "Use pre or post"}
	}
}

func (h *Handler) SetStatus(ctx context.Context, req SetStatusParams) (autosave.Draft, error) {
	return h.edit(ctx, req.ID, func(s *autosave.Session) error { return s.SetStatus(req.Status) })
}

func (h *Handler) SetNature(ctx context.Context, req SetNatureParams) (autosave.Draft, error) {
	return h.edit(ctx, req.ID, func(s *autosave.Session) error { return s.SetNature(req.Nature) })
}

func (h *Handler) FlushEdits(ctx context.Context, req ProjectIDParams) (project.Project, error) {
	sess, ok := h.editor.Lookup(req.ID)
	if !ok {
		return h.storedProject(ctx, req.ID)
	}
	p, err := sess.Flush(ctx)
	if errors.Is(err, autosave.ErrSessionClosed) {
		return h.storedProject(ctx, req.ID)
	}
	if err != nil {
		return project.Project{}, mapError(err)
	}
	return *p, nil
}

func (h *Handler) CloseEditor(ctx context.Context, req ProjectIDParams) (project.Project, error) {
	sess, ok := h.editor.Lookup(req.ID)
	if !ok {
		return h.storedProject(ctx, req.ID)
	}
	p, err := sess.Close(ctx)
	if errors.Is(err, autosave.ErrSessionClosed) {
		return h.storedProject(ctx, req.ID)
	}
	if err != nil {
		return project.Project{}, mapError(err)
	}
	return *p, nil
}

func (h *Handler) GetStats(ctx context.Context, _ EmptyParams) (project.Stats, error) {
	return h.projects.Stats(ctx), nil
}

func (h *Handler) GetProfile(ctx context.Context, _ EmptyParams) (ProfileResponse, error) {
	p := h.profiles.Get(ctx)
	return ProfileResponse{Profile: p, Initials: profile.Initials(p.FullName)}, nil
}

func (h *Handler) SaveProfile(ctx context.Context, req SaveProfileParams) (ProfileResponse, error) {
	p, err := h.profiles.Save(ctx, profile.Profile{
		FullName:      req.FullName,
		Position:      req.Position,
		Municipality:  req.Municipality,
		ContactNumber: req.ContactNumber,
		AvatarURL:     req.AvatarURL,
		CoverURL:      req.CoverURL,
	})
	if err != nil {
		return ProfileResponse{}, mapError(err)
	}
	return ProfileResponse{Profile: p, Initials: profile.Initials(p.FullName)}, nil
}

func (h *Handler) ExportProjects(ctx context.Context, req ExportParams) (ExportResponse, error) {
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return ExportResponse{}, mapError(err)
	}

	if req.Publish {
		info, err := h.exports.Publish(ctx, format, req.ProjectID)
		if err != nil {
			return ExportResponse{}, mapError(err)
		}
		obj := newExportObject(info)
		return ExportResponse{
			Name:        path.Base(info.Key),
			ContentType: format.ContentType(),
			Published:   &obj,
		}, nil
	}

	doc, err := h.exports.Render(ctx, format, req.ProjectID)
	if err != nil {
		return ExportResponse{}, mapError(err)
	}
	resp := ExportResponse{Name: doc.Name, ContentType: doc.ContentType}
	if format == export.FormatXLSX {
		resp.Encoding = "base64"
		resp.Content = base64.StdEncoding.EncodeToString(doc.Body)
	} else {
		resp.Content = string(doc.Body)
	}
	return resp, nil
}

func (h *Handler) ListExports(ctx context.Context, _ EmptyParams) (PublishedResponse, error) {
	infos, err := h.exports.Published(ctx)
	if err != nil {
		return PublishedResponse{}, mapError(err)
	}
	resp := PublishedResponse{Exports: make([]ExportObject, 0, len(infos))}
	for _, info := range infos {
		resp.Exports = append(resp.Exports, newExportObject(info))
	}
	return resp, nil
}

func (h *Handler) GetReport(ctx context.Context, req ReportParams) (ReportResponse, error) {
	if req.ProjectID == "" {
		portfolio := export.Portfolio(h.projects.All(ctx))
		return ReportResponse{Portfolio: &portfolio}, nil
	}
	p, err := h.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return ReportResponse{}, mapError(err)
	}
	report := export.Report(*p)
	return ReportResponse{Project: &report}, nil
}

// edit applies fn to the project's editor, reopening it once if it closed
// between lookup and edit.
func (h *Handler) edit(ctx context.Context, id string, fn func(*autosave.Session) error) (autosave.Draft, error) {
	for attempt := 0; ; attempt++ {
		sess, err := h.editor.Open(ctx, id)
		if err != nil {
			return autosave.Draft{}, mapError(err)
		}
		err = fn(sess)
		if errors.Is(err, autosave.ErrSessionClosed) && attempt == 0 {
			continue
		}
		if err != nil {
			return autosave.Draft{}, mapError(err)
		}
		return sess.Draft(), nil
	}
}

func (h *Handler) storedProject(ctx context.Context, id string) (project.Project, error) {
	p, err := h.projects.Get(ctx, id)
	if err != nil {
		return project.Project{}, mapError(err)
	}
	return *p, nil
}

func encodePatch(patch map[string]any) ([]byte, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: patch is required", autosave.ErrInvalidPatch)
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", autosave.ErrInvalidPatch, err)
	}
	return data, nil
}
