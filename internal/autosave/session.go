package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/tupadhub/tupadhub/internal/domain/project"
)

// Commit phases.
const (
	PhasePre  = "pre"
	PhasePost = "post"
)

// Draft is a snapshot of a session's local state.
type Draft struct {
	ProjectID string               `json:"projectId"`
	Pre       *project.PreDetails  `json:"preDetails"`
	Post      *project.PostDetails `json:"postDetails"`
	Status    project.Status       `json:"status"`
	Nature    string               `json:"nature"`
	Pending   bool                 `json:"pending"`
}

// Session is the editor state of one project. All edits are buffered in the
// draft and committed once no edit has arrived for the debounce period.
type Session struct {
	r   *Reconciler
	id  string
	ctx context.Context

	mu     sync.Mutex
	pre    *project.PreDetails
	post   *project.PostDetails
	status project.Status
	nature string

	preDirty    bool
	postDirty   bool
	statusDirty bool
	natureDirty bool

	// seq orders edits so a manual Pending holds until a later post edit.
	seq       uint64
	statusSeq uint64
	postSeq   uint64

	gen    uint64
	timer  Timer
	closed bool
}

func newSession(r *Reconciler, ctx context.Context, p project.Project) *Session {
	s := &Session{r: r, id: p.ID, ctx: ctx}
	s.load(p)
	return s
}

func (s *Session) load(p project.Project) {
	s.pre = p.PreDetails.Clone()
	if s.pre == nil {
		s.pre = &project.PreDetails{}
	}
	s.post = p.PostDetails.Clone()
	if s.post == nil {
		s.post = &project.PostDetails{}
	}
	s.status = p.EffectiveStatus()
	s.nature = project.ResolveNature(p)
}

// ProjectID returns the id of the project being edited.
func (s *Session) ProjectID() string {
	return s.id
}

// Draft returns a copy of the current local state.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Draft{
		ProjectID: s.id,
		Pre:       s.pre.Clone(),
		Post:      s.post.Clone(),
		Status:    s.status,
		Nature:    s.nature,
		Pending:   s.pending(),
	}
}

// EditPre applies fn to the pre-implementation draft.
func (s *Session) EditPre(fn func(*project.PreDetails)) error {
	return s.edit(func() error {
		fn(s.pre)
		s.preDirty = true
		return nil
	})
}

// EditPost applies fn to the post-implementation draft.
func (s *Session) EditPost(fn func(*project.PostDetails)) error {
	return s.edit(func() error {
		fn(s.post)
		s.postDirty = true
		s.postSeq = s.seq
		return nil
	})
}

// MergePre merges a JSON object into the pre-implementation draft. Fields
// absent from the patch are kept; null clears a field or group.
func (s *Session) MergePre(patch []byte) error {
	return s.edit(func() error {
		next := s.pre.Clone()
		if err := decodePatch(patch, next); err != nil {
			return err
		}
		s.pre = next
		s.preDirty = true
		return nil
	})
}

// MergePost merges a JSON object into the post-implementation draft.
func (s *Session) MergePost(patch []byte) error {
	return s.edit(func() error {
		next := s.post.Clone()
		if err := decodePatch(patch, next); err != nil {
			return err
		}
		s.post = next
		s.postDirty = true
		s.postSeq = s.seq
		return nil
	})
}

// SetPreCost records estimated cost inputs. Derived amounts are filled in
// on commit.
func (s *Session) SetPreCost(in project.CostInputs) error {
	if err := validateCostInputs(in); err != nil {
		return err
	}
	return s.EditPre(func(pre *project.PreDetails) {
		if in.Beneficiaries != nil || in.Days != nil {
			if pre.ProjectInformation == nil {
				pre.ProjectInformation = &project.ProjectInformation{}
			}
			if in.Beneficiaries != nil {
				pre.ProjectInformation.TotalBeneficiaries = project.Int(*in.Beneficiaries)
			}
			if in.Days != nil {
				pre.ProjectInformation.NoOfDays = project.Int(*in.Days)
			}
		}
		if in.SalaryPerDay != nil {
			if pre.ProjectCost == nil {
				pre.ProjectCost = &project.Cost{}
			}
			pre.ProjectCost.SalaryPerDay = project.Float(*in.SalaryPerDay)
		}
	})
}

// SetPostCost records actual cost inputs.
func (s *Session) SetPostCost(in project.CostInputs) error {
	if err := validateCostInputs(in); err != nil {
		return err
	}
	return s.EditPost(func(post *project.PostDetails) {
		if in.Beneficiaries != nil || in.Days != nil {
			if post.Verification == nil {
				post.Verification = &project.Verification{}
			}
			if in.Beneficiaries != nil {
				post.Verification.TotalBeneficiariesActual = project.Int(*in.Beneficiaries)
			}
			if in.Days != nil {
				post.Verification.NoOfDaysOfWork = project.Int(*in.Days)
			}
		}
		if in.SalaryPerDay != nil {
			if post.Cost == nil {
				post.Cost = &project.Cost{}
			}
			post.Cost.SalaryPerDay = project.Float(*in.SalaryPerDay)
		}
	})
}

// SetStatus manually sets the project status.
func (s *Session) SetStatus(status project.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", project.ErrInvalidInput, status)
	}
	return s.edit(func() error {
		s.status = status
		s.statusDirty = true
		s.statusSeq = s.seq
		return nil
	})
}

// SetNature edits the nature of the project from the post view. On commit
// it also becomes the pre-phase name and nature.
func (s *Session) SetNature(nature string) error {
	return s.edit(func() error {
		s.nature = nature
		s.natureDirty = true
		return nil
	})
}

// Flush commits pending edits now and returns the stored project.
func (s *Session) Flush(ctx context.Context) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.flushLocked(ctx)
}

// Close flushes pending edits and ends the session.
func (s *Session) Close(ctx context.Context) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	p, err := s.flushLocked(ctx)
	s.closed = true
	s.r.forget(s)
	return p, err
}

// Discard cancels any pending commit and ends the session without writing.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.stopTimer()
	s.clearDirty()
	s.closed = true
	s.r.forget(s)
	s.r.logger.Debug("editor discarded", "project_id", s.id)
}

func (s *Session) edit(apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.seq++
	if err := apply(); err != nil {
		return err
	}
	s.schedule()
	return nil
}

// schedule replaces the pending ticket. Callers hold s.mu.
func (s *Session) schedule() {
	if s.stopTimer() {
		s.r.recorder.Superseded()
	}
	s.gen++
	gen := s.gen
	s.timer = s.r.clock.AfterFunc(s.r.debounce, func() { s.fire(gen) })
}

func (s *Session) stopTimer() bool {
	if s.timer == nil {
		return false
	}
	stopped := s.timer.Stop()
	s.timer = nil
	return stopped
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer edit, a flush, or teardown superseded this ticket.
	if s.closed || gen != s.gen || !s.pending() {
		return
	}
	s.timer = nil
	if _, err := s.commit(s.ctx); err != nil {
		s.r.logger.Warn("auto-save commit failed", "project_id", s.id, "error", err)
	}
}

func (s *Session) flushLocked(ctx context.Context) (*project.Project, error) {
	s.stopTimer()
	if !s.pending() {
		return s.r.projects.Get(ctx, s.id)
	}
	return s.commit(ctx)
}

func (s *Session) pending() bool {
	return s.preDirty || s.postDirty || s.statusDirty || s.natureDirty
}

func (s *Session) clearDirty() {
	s.preDirty, s.postDirty, s.statusDirty, s.natureDirty = false, false, false, false
}

// commit writes the draft in one collection update. Callers hold s.mu.
func (s *Session) commit(ctx context.Context) (*project.Project, error) {
	phase := PhasePre
	if s.postDirty || s.natureDirty {
		phase = PhasePost
	}

	updated, err := s.r.projects.Update(ctx, s.id, func(p *project.Project) error {
		if phase == PhasePost {
			s.applyPost(p)
		} else {
			s.applyPre(p)
		}
		return nil
	})
	s.clearDirty()
	if err != nil {
		return nil, fmt.Errorf("committing %s details: %w", phase, err)
	}

	// Keep the draft in step with cascaded fields such as status and nature.
	s.load(*updated)
	s.r.recorder.Commit(phase)
	s.r.logger.Debug("auto-save committed", "project_id", s.id, "phase", phase, "status", updated.Status)
	return updated, nil
}

func (s *Session) applyPre(p *project.Project) {
	pre := s.pre.Clone()
	recomputePreCost(pre, p.Beneficiaries)
	p.PreDetails = pre

	if s.statusDirty {
		p.Status = s.status
		p.StatusSource = project.SourceManual
	}
	if n := strings.TrimSpace(pre.Info().NameNature); n != "" {
		p.NatureOfProject = n
	}
	p.ADL = project.ResolveADL(*p)
}

func (s *Session) applyPost(p *project.Project) {
	pre := s.pre.Clone()
	post := s.post.Clone()
	recomputePreCost(pre, p.Beneficiaries)
	recomputePostCost(post)

	if n := strings.TrimSpace(s.nature); s.natureDirty && n != "" {
		if pre.ProjectInformation == nil {
			pre.ProjectInformation = &project.ProjectInformation{}
		}
		pre.ProjectInformation.NameNature = n
	}
	p.PreDetails = pre
	p.PostDetails = post

	if s.statusDirty {
		p.Status = s.status
		p.StatusSource = project.SourceManual
	}
	if n := strings.TrimSpace(pre.Info().NameNature); n != "" {
		p.NatureOfProject = n
	}

	complete := project.IsPostComplete(post)
	switch {
	case complete && p.EffectiveStatus() != project.StatusCompleted:
		// A manual Pending holds until post details are edited after it.
		if p.StatusSource != project.SourceManual || s.postSeq > s.statusSeq {
			p.Status = project.StatusCompleted
			p.StatusSource = project.SourceInferred
		}
	case !complete && p.Status == project.StatusCompleted && p.StatusSource == project.SourceInferred:
		p.Status = project.StatusPending
	}

	p.ADL = project.ResolveADL(*p)
}

func recomputePreCost(pre *project.PreDetails, fallbackBeneficiaries int) {
	info := pre.Info()
	beneficiaries := fallbackBeneficiaries
	if info.TotalBeneficiaries != nil {
		beneficiaries = *info.TotalBeneficiaries
	}
	days := 0
	if info.NoOfDays != nil {
		days = *info.NoOfDays
	}
	pre.ProjectCost = deriveCost(pre.ProjectCost, beneficiaries, days)
}

func recomputePostCost(post *project.PostDetails) {
	v := post.Verified()
	beneficiaries, days := 0, 0
	if v.TotalBeneficiariesActual != nil {
		beneficiaries = *v.TotalBeneficiariesActual
	}
	if v.NoOfDaysOfWork != nil {
		days = *v.NoOfDaysOfWork
	}
	post.Cost = deriveCost(post.Cost, beneficiaries, days)
}

// deriveCost rebuilds the derived fields of a cost group from its inputs,
// discarding whatever derived values it carried. A missing salary counts as
// zero and stays missing. A nil group means no cost was recorded.
func deriveCost(c *project.Cost, beneficiaries, days int) *project.Cost {
	if c == nil {
		return nil
	}
	salary := 0.0
	if c.SalaryPerDay != nil {
		salary = *c.SalaryPerDay
	}
	out := project.ComputeCost(beneficiaries, days, salary).Group(salary)
	if c.SalaryPerDay == nil {
		out.SalaryPerDay = nil
	}
	return out
}

func validateCostInputs(in project.CostInputs) error {
	if (in.Beneficiaries != nil && *in.Beneficiaries < 0) ||
		(in.Days != nil && *in.Days < 0) ||
		(in.SalaryPerDay != nil && *in.SalaryPerDay < 0) {
		return fmt.Errorf("%w: cost inputs must be non-negative", project.ErrInvalidInput)
	}
	return nil
}

func decodePatch(patch []byte, into any) error {
	trimmed := bytes.TrimSpace(patch)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: expected a JSON object", ErrInvalidPatch)
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return nil
}
