package ifrs17

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMetadata(t *testing.T) {
	meta := BuildMetadata(loadSample(t))

	require.NotNil(t, meta.ReportingDate)
	assert.Equal(t, "2024-12-31", *meta.ReportingDate)
	assert.Equal(t, "EUR", *meta.Currency)
	assert.Equal(t, []string{"Life", "Health", "Motor"}, meta.Portfolios)

	empty := BuildMetadata(parse(t, `{}`))
	assert.Nil(t, empty.Currency)
	assert.NotNil(t, empty.Portfolios)
	assert.Empty(t, empty.Portfolios)
}

func TestBuildSummary_Sample(t *testing.T) {
	sum := BuildSummary(loadSample(t))

	assert.Equal(t, 23660.0, sum.InsuranceLiability)
	assert.Equal(t, 18000.0, sum.InsuranceLiabilityOpening)
	require.NotNil(t, sum.LiabilityTrendPct)
	assert.Equal(t, 31.4, *sum.LiabilityTrendPct)
	assert.Equal(t, 750.0, sum.ReinsuranceAsset)
	assert.Equal(t, 4440.0, sum.ClosingCSM)
	require.NotNil(t, sum.CSMTrendPct)
	assert.Equal(t, 26.9, *sum.CSMTrendPct)
	assert.Equal(t, 4350.0, sum.GrossPremium)
	assert.Equal(t, 4020.0, sum.NetPremium)
	assert.Equal(t, 1550.0, sum.ClaimsIncurred)
	require.NotNil(t, sum.LossRatioPct)
	assert.Equal(t, 38.6, *sum.LossRatioPct)
	assert.Equal(t, 6, sum.ContractsCount)
	assert.Equal(t, 430.0, sum.InsuranceRevenueCSMRelease)
	assert.Equal(t, 250.0, sum.AcquisitionCostsTotal)
	assert.Equal(t, 1150.0, sum.ClaimsPaid)
	assert.Equal(t, 150.0, sum.ClaimsOutstandingReserve)

	assert.Equal(t, []string{"Life", "Health", "Motor"}, sum.Portfolios)
	require.Len(t, sum.ByPortfolio, 3)
	life, ok := sum.ByPortfolio.Lookup("Life")
	require.True(t, ok)
	assert.Equal(t, 2, life.Count)
	_, ok = sum.ByPortfolio.Lookup("Property")
	assert.False(t, ok)
}

func TestBuildSummary_ZeroBases(t *testing.T) {
	sum := BuildSummary(parse(t, `{
		"contracts": [{"contract_id": 1, "portfolio": "Life", "cohort_year": 2024}],
		"claims": [{"contract_id": 1, "incurred_amount": 40}],
		"liability_movements": [{"portfolio": "Life", "cohort_year": 2024, "closing_balance": 100}],
		"csm_movements": [{"portfolio": "Life", "cohort_year": 2024, "closing_csm": 10}]
	}`))

	assert.Nil(t, sum.LossRatioPct)
	assert.Nil(t, sum.LiabilityTrendPct)
	assert.Nil(t, sum.CSMTrendPct)
	assert.Equal(t, []string{"Life"}, sum.Portfolios)
}

func TestBuildSummary_MetadataOrderWithUnknownPortfolio(t *testing.T) {
	sum := BuildSummary(parse(t, `{
		"metadata": {"portfolios": ["Motor", "Life", "Motor"]},
		"contracts": [{"contract_id": 1, "portfolio": "Life", "cohort_year": 2024}]
	}`))

	assert.Equal(t, []string{"Motor", "Life", "Motor"}, sum.Portfolios)
	require.Len(t, sum.ByPortfolio, 2)
	assert.Equal(t, "Motor", sum.ByPortfolio[0].Portfolio)
	assert.Equal(t, PortfolioTotals{}, sum.ByPortfolio[0].Totals)
	assert.Equal(t, 1, sum.ByPortfolio[1].Totals.Count)
}

func TestSummaryJSON_KeepsPortfolioOrder(t *testing.T) {
	sum := BuildSummary(loadSample(t))

	data, err := json.Marshal(sum)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t,
		`{"Life":{"premium":2000,"claims":300,"liability":13500,"csm":2650,"count":2,"opening":10000},`+
			`"Health":{"premium":1000,"claims":450,"liability":6420,"csm":1150,"count":2,"opening":5000},`+
			`"Motor":{"premium":1000,"claims":700,"liability":3740,"csm":640,"count":1,"opening":3000}}`,
		string(raw["by_portfolio"]))

	var decoded Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sum.ByPortfolio, decoded.ByPortfolio)
}

func TestBuildLiabilityTrend(t *testing.T) {
	trend := BuildLiabilityTrend(parse(t, `{
		"liability_movements": [
			{"portfolio": "Life", "cohort_year": 2021, "closing_balance": 200},
			{"portfolio": "Health", "cohort_year": 2021, "closing_balance": 300}
		]
	}`))

	assert.Equal(t, []string{"2021"}, trend.Labels)
	assert.Equal(t, []float64{500}, trend.Values)
}

func TestBuildTrends_Sample(t *testing.T) {
	snap := loadSample(t)

	liability := BuildLiabilityTrend(snap)
	assert.Equal(t, []string{"2022", "2023"}, liability.Labels)
	assert.Equal(t, []float64{15850, 7810}, liability.Values)

	csm := BuildCSMTrend(snap)
	assert.Equal(t, []string{"2022", "2023"}, csm.Labels)
	assert.Equal(t, []float64{2720, 1720}, csm.Values)
}

func TestBuildTrends_SortsAndSkipsMissingYears(t *testing.T) {
	trend := BuildCSMTrend(parse(t, `{
		"csm_movements": [
			{"portfolio": "Life", "cohort_year": 2024, "closing_csm": 1},
			{"portfolio": "Life", "cohort_year": 2019, "closing_csm": 2},
			{"portfolio": "Motor", "cohort_year": 2024, "closing_csm": 3}
		]
	}`))

	assert.Equal(t, []string{"2019", "2024"}, trend.Labels)
	assert.Equal(t, []float64{2, 4}, trend.Values)

	empty := BuildLiabilityTrend(parse(t, `{}`))
	assert.NotNil(t, empty.Labels)
	assert.Empty(t, empty.Labels)
	assert.Len(t, empty.Values, 0)
}

func TestBuildPortfolioComparison(t *testing.T) {
	rows := BuildPortfolioComparison(parse(t, `{
		"contracts": [
			{"contract_id": 1, "portfolio": "Life", "cohort_year": 2022},
			{"contract_id": 2, "portfolio": "Health", "cohort_year": 2022}
		],
		"premiums": [
			{"contract_id": 1, "gross_premium": 100},
			{"contract_id": 2, "gross_premium": 50}
		]
	}`))

	require.Len(t, rows, 2)
	assert.Equal(t, "Life", rows[0].Portfolio)
	assert.Equal(t, 100.0, rows[0].GrossPremium)
	assert.Equal(t, "Health", rows[1].Portfolio)
	assert.Equal(t, 50.0, rows[1].GrossPremium)
}

func TestBuildPortfolioComparison_Sample(t *testing.T) {
	rows := BuildPortfolioComparison(loadSample(t))

	require.Len(t, rows, 3)
	want := []struct {
		portfolio string
		contracts int
		lossRatio float64
		liability float64
		csm       float64
	}{
		{"Life", 2, 15, 13500, 2650},
		{"Health", 2, 45, 6420, 1150},
		{"Motor", 1, 70, 3740, 640},
	}
	for i, w := range want {
		assert.Equal(t, w.portfolio, rows[i].Portfolio)
		assert.Equal(t, w.contracts, rows[i].Contracts)
		require.NotNil(t, rows[i].LossRatioPct)
		assert.Equal(t, w.lossRatio, *rows[i].LossRatioPct)
		assert.Equal(t, w.liability, rows[i].ClosingLiability)
		assert.Equal(t, w.csm, rows[i].ClosingCSM)
	}
}

func TestBuildPortfolioComparison_ZeroPremium(t *testing.T) {
	rows := BuildPortfolioComparison(parse(t, `{
		"contracts": [{"contract_id": 1, "portfolio": "Life", "cohort_year": 2022}],
		"claims": [{"contract_id": 1, "incurred_amount": 25}]
	}`))

	require.Len(t, rows, 1)
	assert.Equal(t, 25.0, rows[0].Claims)
	assert.Nil(t, rows[0].LossRatioPct)
}

func TestBuildDashboard(t *testing.T) {
	snap := loadSample(t)
	dash := BuildDashboard(snap)

	assert.Equal(t, BuildSummary(snap), dash.Summary)
	assert.Equal(t, BuildLiabilityTrend(snap), dash.LiabilityTrend)
	assert.Equal(t, BuildCSMTrend(snap), dash.CSMTrend)
	assert.Equal(t, BuildPortfolioComparison(snap), dash.PortfolioComparison)

	data, err := json.Marshal(dash)
	require.NoError(t, err)
	var shape map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &shape))
	assert.ElementsMatch(t, []string{"summary", "liability_trend", "csm_trend", "portfolio_comparison"}, keys(shape))
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
