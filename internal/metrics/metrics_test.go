package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/tupadhub/tupadhub/internal/domain/project"
)

func TestStoreAndAutosaveCounters(t *testing.T) {
	m := New()

	m.StoreWrite("projects", true)
	m.StoreWrite("projects", true)
	m.StoreWrite("profile", false)
	m.ExternalChange("projects")
	m.Commit("post")
	m.Superseded()
	m.Superseded()

	require.Equal(t, 2.0, testutil.ToFloat64(m.storeWrites.WithLabelValues("projects", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.storeWrites.WithLabelValues("profile", "failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.externalChanges.WithLabelValues("projects")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.commits.WithLabelValues("post")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.superseded))
}

func TestTrackPortfolio(t *testing.T) {
	m := New()
	calls := 0
	track := m.TrackPortfolio("projects", func() project.Stats {
		calls++
		return project.Stats{Total: 3, Completed: 1, Ongoing: 2, TotalBeneficiaries: 40, TotalFemale: 10, FemalePct: 25}
	})

	track("profile")
	require.Zero(t, calls)

	track("projects")
	require.Equal(t, 1, calls)
	require.Equal(t, 1.0, testutil.ToFloat64(m.projects.WithLabelValues("Completed")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.projects.WithLabelValues("Pending")))
	require.Equal(t, 40.0, testutil.ToFloat64(m.beneficiaries))
	require.Equal(t, 25.0, testutil.ToFloat64(m.femalePct))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Commit("pre")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `tupad_autosave_commits_total{phase="pre"} 1`)
}
