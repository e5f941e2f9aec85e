package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/ifrs17-reporting/internal/errors"
	"github.com/ifrs17-reporting/internal/ifrs17"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../ifrs17/testdata/ifrs17_sample_data.json"

func newFixtureService(t *testing.T) (*ReportingService, *ifrs17.Store) {
	t.Helper()
	store := ifrs17.NewFileStore(fixturePath, quietLogger())
	return NewReportingService(store, quietLogger()), store
}

func TestReportingService_Views(t *testing.T) {
	svc, store := newFixtureService(t)
	ctx := context.Background()

	meta, err := svc.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Life", "Health", "Motor"}, meta.Portfolios)
	assert.True(t, store.Cached())

	summary, err := svc.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, summary.ContractsCount)

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary.InsuranceLiability, dash.Summary.InsuranceLiability)

	liability, err := svc.LiabilityTrend(ctx)
	require.NoError(t, err)
	assert.Equal(t, dash.LiabilityTrend, liability)

	csm, err := svc.CSMTrend(ctx)
	require.NoError(t, err)
	assert.Equal(t, dash.CSMTrend, csm)

	rows, err := svc.PortfolioComparison(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	lrec, err := svc.LiabilityReconciliation(ctx)
	require.NoError(t, err)
	assert.Len(t, lrec.Rows, 5)

	crec, err := svc.CSMReconciliation(ctx)
	require.NoError(t, err)
	assert.Len(t, crec.Rows, 5)

	cohort := 2022
	slice, err := svc.Data(ctx, ifrs17.SliceFilter{Portfolio: "Life", CohortYear: &cohort})
	require.NoError(t, err)
	assert.Contains(t, slice, ifrs17.CollectionContracts)
}

func TestReportingService_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ifrs17.json")
	write := func(doc string) {
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	}
	write(`{"contracts":[{"contract_id":"C1","portfolio":"Life","cohort_year":2021}]}`)

	store := ifrs17.NewFileStore(path, quietLogger())
	svc := NewReportingService(store, quietLogger())
	ctx := context.Background()

	summary, err := svc.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ContractsCount)

	write(`{
		"contracts":[
			{"contract_id":"C1","portfolio":"Life","cohort_year":2021},
			{"contract_id":"C2","portfolio":"Life","cohort_year":2022}
		],
		"liability_movements":[{"portfolio":"Life","cohort_year":2021,"closing_balance":500}]
	}`)

	// Cached until reloaded.
	summary, err = svc.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ContractsCount)

	result, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Contracts)
	assert.Equal(t, 1, result.LiabilityMovements)
	assert.Equal(t, 0, result.CSMMovements)
	assert.False(t, result.ReloadedAt.IsZero())

	summary, err = svc.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ContractsCount)
}

func TestReportingService_ReloadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ifrs17.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"contracts":[]}`), 0o600))

	store := ifrs17.NewFileStore(path, quietLogger())
	svc := NewReportingService(store, quietLogger())
	ctx := context.Background()

	_, err := svc.Metadata(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	_, err = svc.Reload(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsDataUnavailable(err))
	assert.False(t, store.Cached())

	_, err = svc.Dashboard(ctx)
	assert.True(t, apperrors.IsDataUnavailable(err))
	assert.Equal(t, 503, apperrors.GetHTTPStatusCode(err))
}
