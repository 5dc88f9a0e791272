package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tupadhub/tupadhub/internal/domain/profile"
	"github.com/tupadhub/tupadhub/internal/domain/project"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) All(ctx context.Context) []project.Project {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		// Hand out a copy, as the real store decodes a fresh value per read.
		out := make([]project.Project, len(list))
		for i, p := range list {
			out[i] = p.Clone()
		}
		return out
	}
	return nil
}

func (m *ProjectRepository) ReplaceAll(ctx context.Context, projects []project.Project) {
	m.Called(ctx, projects)
}

func (m *ProjectRepository) OpenMap(ctx context.Context) map[string]bool {
	args := m.Called(ctx)
	if open, ok := args.Get(0).(map[string]bool); ok {
		out := make(map[string]bool, len(open))
		for k, v := range open {
			out[k] = v
		}
		return out
	}
	return nil
}

func (m *ProjectRepository) ReplaceOpenMap(ctx context.Context, open map[string]bool) {
	m.Called(ctx, open)
}

// ProfileRepository is a mock for profile.Repository.
type ProfileRepository struct {
	mock.Mock
}

func (m *ProfileRepository) Load(ctx context.Context) profile.Profile {
	args := m.Called(ctx)
	return args.Get(0).(profile.Profile)
}

func (m *ProfileRepository) Save(ctx context.Context, p profile.Profile) {
	m.Called(ctx, p)
}
