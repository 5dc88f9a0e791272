package store

import (
	"context"

	"github.com/tupadhub/tupadhub/internal/domain/profile"
	"github.com/tupadhub/tupadhub/internal/domain/project"
)

var (
	_ project.Repository = (*Projects)(nil)
	_ profile.Repository = (*Profiles)(nil)
)

// Projects implements project.Repository over the store.
type Projects struct {
	store *Store
}

// NewProjects creates a project repository backed by s.
func NewProjects(s *Store) *Projects {
	return &Projects{store: s}
}

func (r *Projects) All(ctx context.Context) []project.Project {
	return Get(ctx, r.store, KeyProjects, []project.Project{})
}

func (r *Projects) ReplaceAll(ctx context.Context, projects []project.Project) {
	if projects == nil {
		projects = []project.Project{}
	}
	Set(ctx, r.store, KeyProjects, projects)
}

func (r *Projects) OpenMap(ctx context.Context) map[string]bool {
	open := Get(ctx, r.store, KeyProjectsOpenMap, map[string]bool{})
	if open == nil {
		return map[string]bool{}
	}
	return open
}

func (r *Projects) ReplaceOpenMap(ctx context.Context, open map[string]bool) {
	Set(ctx, r.store, KeyProjectsOpenMap, open)
}

// Profiles implements profile.Repository over the store.
type Profiles struct {
	store *Store
}

// NewProfiles creates a profile repository backed by s.
func NewProfiles(s *Store) *Profiles {
	return &Profiles{store: s}
}

func (r *Profiles) Load(ctx context.Context) profile.Profile {
	return Get(ctx, r.store, KeyProfile, profile.Profile{})
}

func (r *Profiles) Save(ctx context.Context, p profile.Profile) {
	Set(ctx, r.store, KeyProfile, p)
}
