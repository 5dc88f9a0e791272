package project

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Service handles project operations.
type Service struct {
	repo   Repository
	logger *slog.Logger

	// mu serializes read-modify-write cycles over the collection.
	mu sync.Mutex
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ADL           string
	Municipality  string
	Beneficiaries int
}

// ListOptions filters project listings.
type ListOptions struct {
	// Query matches ADL or municipality, case-insensitively.
	Query        string
	Status       Status
	Municipality string
}

// Create adds a new pending project with empty pre and post details.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	adl := strings.TrimSpace(req.ADL)
	municipality := strings.TrimSpace(req.Municipality)
	if adl == "" || municipality == "" || req.Beneficiaries < 0 {
		return nil, ErrInvalidInput
	}

	proj := Project{
		ID:            uuid.NewString(),
		ADL:           adl,
		Municipality:  municipality,
		Beneficiaries: req.Beneficiaries,
		Status:        StatusPending,
		PreDetails:    &PreDetails{},
		PostDetails:   &PostDetails{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.repo.All(ctx)
	all = append(all, proj)
	s.repo.ReplaceAll(ctx, all)

	s.logger.Info("project created", "id", proj.ID, "adl", proj.ADL)
	return &proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	for _, p := range s.repo.All(ctx) {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrProjectNotFound
}

// All returns the full collection in insertion order.
func (s *Service) All(ctx context.Context) []Project {
	return s.repo.All(ctx)
}

// List returns the projects matching opts.
func (s *Service) List(ctx context.Context, opts ListOptions) []Project {
	query := strings.ToLower(strings.TrimSpace(opts.Query))
	var out []Project
	for _, p := range s.repo.All(ctx) {
		if opts.Status != "" && p.EffectiveStatus() != opts.Status {
			continue
		}
		if opts.Municipality != "" && !strings.EqualFold(p.Municipality, opts.Municipality) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.ADL), query) &&
			!strings.Contains(strings.ToLower(p.Municipality), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Municipalities returns the distinct municipalities, sorted.
func (s *Service) Municipalities(ctx context.Context) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.repo.All(ctx) {
		if _, ok := seen[p.Municipality]; ok {
			continue
		}
		seen[p.Municipality] = struct{}{}
		out = append(out, p.Municipality)
	}
	slices.Sort(out)
	return out
}

// Summaries returns list-card views for the projects matching opts.
func (s *Service) Summaries(ctx context.Context, opts ListOptions) []ProjectSummary {
	open := s.repo.OpenMap(ctx)
	projects := s.List(ctx, opts)
	out := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, Summarize(p, open[p.ID]))
	}
	return out
}

// Summarize builds the list-card view of one project.
func Summarize(p Project, expanded bool) ProjectSummary {
	pre := p.PreDetails.Tracking()
	return ProjectSummary{
		ID:                     p.ID,
		ADL:                    ResolveADL(p),
		Municipality:           p.Municipality,
		Nature:                 ResolveNature(p),
		Status:                 p.EffectiveStatus(),
		EstimatedBeneficiaries: Int(ResolveEstimatedBeneficiaries(p)),
		ActualBeneficiaries:    p.PostDetails.Verified().TotalBeneficiariesActual,
		Female:                 ResolveFemale(p),
		NTPNumber:              pre.NTPNumber,
		NTPDate:                pre.NoticeToProceedDate,
		Period:                 ResolvePeriod(p),
		PreSubmitted:           pre.DateSubmittedRO,
		PostSubmitted:          p.PostDetails.Tracking().DateSubmittedRO,
		Expanded:               expanded,
	}
}

// Update applies fn to one project and writes the collection back. Other
// projects are carried through untouched. The project ID cannot change.
func (s *Service) Update(ctx context.Context, id string, fn func(*Project) error) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.repo.All(ctx)
	idx := slices.IndexFunc(all, func(p Project) bool { return p.ID == id })
	if idx < 0 {
		return nil, ErrProjectNotFound
	}

	updated := all[idx].Clone()
	if err := fn(&updated); err != nil {
		return nil, err
	}
	updated.ID = id
	all[idx] = updated
	s.repo.ReplaceAll(ctx, all)

	return &updated, nil
}

// Delete removes a project permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.repo.All(ctx)
	n := len(all)
	kept := slices.DeleteFunc(all, func(p Project) bool { return p.ID == id })
	if len(kept) == n {
		return ErrProjectNotFound
	}
	s.repo.ReplaceAll(ctx, kept)

	open := s.repo.OpenMap(ctx)
	if _, ok := open[id]; ok {
		delete(open, id)
		s.repo.ReplaceOpenMap(ctx, open)
	}

	s.logger.Info("project deleted", "id", id)
	return nil
}

// SetExpanded records the list-view expansion state of a project.
func (s *Service) SetExpanded(ctx context.Context, id string, expanded bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	open := s.repo.OpenMap(ctx)
	if open == nil {
		open = make(map[string]bool)
	}
	open[id] = expanded
	s.repo.ReplaceOpenMap(ctx, open)
	return nil
}

// Stats computes portfolio statistics over the current collection.
func (s *Service) Stats(ctx context.Context) Stats {
	return ComputeStats(s.repo.All(ctx))
}
