package project_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tupadhub/tupadhub/internal/domain/project"
	"github.com/tupadhub/tupadhub/internal/repository/mocks"
)

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("All", ctx).Return([]project.Project{{ID: "existing", ADL: "2023-009"}})
	repo.On("ReplaceAll", ctx, mock.MatchedBy(func(list []project.Project) bool {
		return len(list) == 2 && list[0].ID == "existing" && list[1].ADL == "2024-001"
	})).Return()

	svc := project.NewService(repo, nil)
	proj, err := svc.Create(ctx, project.CreateRequest{ADL: " 2024-001 ", Municipality: "Sample Town ", Beneficiaries: 10})
	require.NoError(t, err)
	require.NotEmpty(t, proj.ID)
	require.Equal(t, "2024-001", proj.ADL)
	require.Equal(t, "Sample Town", proj.Municipality)
	require.Equal(t, 10, proj.Beneficiaries)
	require.Equal(t, project.StatusPending, proj.Status)
	require.NotNil(t, proj.PreDetails)
	require.NotNil(t, proj.PostDetails)
	repo.AssertExpectations(t)
}

func TestProjectService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	svc := project.NewService(repo, nil)

	for _, req := range []project.CreateRequest{
		{ADL: "", Municipality: "Town"},
		{ADL: "2024-001", Municipality: "  "},
		{ADL: "2024-001", Municipality: "Town", Beneficiaries: -1},
	} {
		_, err := svc.Create(ctx, req)
		require.ErrorIs(t, err, project.ErrInvalidInput)
	}
	repo.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
}

func TestProjectService_GetNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("All", ctx).Return([]project.Project{{ID: "a"}})

	svc := project.NewService(repo, nil)
	_, err := svc.Get(ctx, "missing")
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	got, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "a", got.ID)
}

func TestProjectService_UpdateIsolatesOtherProjects(t *testing.T) {
	ctx := context.Background()
	before := []project.Project{
		{ID: "a", ADL: "A", Municipality: "Alpha", PreDetails: &project.PreDetails{}},
		{ID: "b", ADL: "B", Municipality: "Beta", PreDetails: &project.PreDetails{
			ProjectInformation: &project.ProjectInformation{TotalBeneficiaries: project.Int(7)},
		}},
	}

	var written []project.Project
	repo := &mocks.ProjectRepository{}
	repo.On("All", ctx).Return(before)
	repo.On("ReplaceAll", ctx, mock.Anything).Run(func(args mock.Arguments) {
		written = args.Get(1).([]project.Project)
	}).Return()

	svc := project.NewService(repo, nil)
	updated, err := svc.Update(ctx, "a", func(p *project.Project) error {
		p.ID = "hijacked"
		p.PreDetails.ProjectInformation = &project.ProjectInformation{Proponent: "Barangay 1"}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "a", updated.ID)
	require.Len(t, written, 2)
	require.Equal(t, "Barangay 1", written[0].PreDetails.Info().Proponent)
	require.Equal(t, before[1], written[1])
}

func TestProjectService_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("All", ctx).Return([]project.Project{{ID: "a"}})

	svc := project.NewService(repo, nil)
	_, err := svc.Update(ctx, "missing", func(*project.Project) error { return nil })
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	boom := errors.New("boom")
	_, err = svc.Update(ctx, "a", func(*project.Project) error { return boom })
	require.ErrorIs(t, err, boom)
	repo.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("All", ctx).Return([]project.Project{{ID: "a"}, {ID: "b"}})
	repo.On("ReplaceAll", ctx, []project.Project{{ID: "b"}}).Return()
	repo.On("OpenMap", ctx).Return(map[string]bool{"a": true, "b": false})
	repo.On("ReplaceOpenMap", ctx, map[string]bool{"b": false}).Return()

	svc := project.NewService(repo, nil)
	require.NoError(t, svc.Delete(ctx, "a"))
	require.ErrorIs(t, svc.Delete(ctx, "zzz"), project.ErrProjectNotFound)
	repo.AssertExpectations(t)
}

func TestProjectService_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("All", ctx).Return([]project.Project{
		{ID: "1", ADL: "2024-001", Municipality: "Sample Town", Status: project.StatusPending},
		{ID: "2", ADL: "2024-002", Municipality: "Riverside", Status: project.StatusCompleted},
		{ID: "3", ADL: "2023-100", Municipality: "sample town"},
	})

	svc := project.NewService(repo, nil)
	require.Len(t, svc.List(ctx, project.ListOptions{}), 3)
	require.Len(t, svc.List(ctx, project.ListOptions{Query: "SAMPLE"}), 2)
	require.Len(t, svc.List(ctx, project.ListOptions{Query: "2024"}), 2)
	require.Len(t, svc.List(ctx, project.ListOptions{Status: project.StatusPending}), 2)
	require.Len(t, svc.List(ctx, project.ListOptions{Municipality: "Sample Town", Status: project.StatusCompleted}), 0)
	require.Equal(t, []string{"Riverside", "Sample Town", "sample town"}, svc.Municipalities(ctx))
}

func TestProjectService_SummariesAndExpanded(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("All", ctx).Return([]project.Project{{
		ID:            "1",
		ADL:           "2024-001",
		Municipality:  "Sample Town",
		Beneficiaries: 10,
		PreDetails: &project.PreDetails{DocumentTracking: &project.PreDocumentTracking{
			ADLNumber: "2024-001-A",
			NTPNumber: "NTP-7",
		}},
	}})
	repo.On("OpenMap", ctx).Return(map[string]bool{"1": true})
	repo.On("ReplaceOpenMap", ctx, map[string]bool{"1": false}).Return()

	svc := project.NewService(repo, nil)
	summaries := svc.Summaries(ctx, project.ListOptions{})
	require.Len(t, summaries, 1)
	require.Equal(t, "2024-001-A", summaries[0].ADL)
	require.Equal(t, "NTP-7", summaries[0].NTPNumber)
	require.Equal(t, 10, *summaries[0].EstimatedBeneficiaries)
	require.Nil(t, summaries[0].ActualBeneficiaries)
	require.Equal(t, project.StatusPending, summaries[0].Status)
	require.True(t, summaries[0].Expanded)

	require.NoError(t, svc.SetExpanded(ctx, "1", false))
	require.ErrorIs(t, svc.SetExpanded(ctx, "2", true), project.ErrProjectNotFound)
	repo.AssertExpectations(t)
}
