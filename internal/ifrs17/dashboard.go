package ifrs17

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// MetadataView is the reporting metadata as exposed to callers.
type MetadataView struct {
	ReportingDate *string  `json:"reporting_date"`
	Currency      *string  `json:"currency"`
	Portfolios    []string `json:"portfolios"`
	Description   *string  `json:"description"`
}

// BuildMetadata returns the snapshot's metadata. Portfolios is never nil.
func BuildMetadata(s *Snapshot) *MetadataView {
	portfolios := s.Metadata.Portfolios
	if portfolios == nil {
		portfolios = []string{}
	}
	return &MetadataView{
		ReportingDate: s.Metadata.ReportingDate,
		Currency:      s.Metadata.Currency,
		Portfolios:    portfolios,
		Description:   s.Metadata.Description,
	}
}

// PortfolioEntry is one portfolio's rollup in display order.
type PortfolioEntry struct {
	Portfolio string
	Totals    PortfolioTotals
}

// PortfolioBreakdown is an ordered mapping from portfolio name to totals.
// It encodes as a JSON object whose keys keep display order.
type PortfolioBreakdown []PortfolioEntry

// MarshalJSON writes the entries as an ordered JSON object.
func (b PortfolioBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Portfolio)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Totals)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object back into entries. Key order follows the
// document.
func (b *PortfolioBreakdown) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var out PortfolioBreakdown
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		var totals PortfolioTotals
		if err := dec.Decode(&totals); err != nil {
			return err
		}
		out = append(out, PortfolioEntry{Portfolio: tok.(string), Totals: totals})
	}
	*b = out
	return nil
}

// Lookup returns the totals for portfolio.
func (b PortfolioBreakdown) Lookup(portfolio string) (PortfolioTotals, bool) {
	for _, e := range b {
		if e.Portfolio == portfolio {
			return e.Totals, true
		}
	}
	return PortfolioTotals{}, false
}

// Summary holds the headline dashboard figures.
type Summary struct {
	InsuranceLiability         float64            `json:"insurance_liability"`
	InsuranceLiabilityOpening  float64            `json:"insurance_liability_opening"`
	LiabilityTrendPct          *float64           `json:"liability_trend_pct"`
	ReinsuranceAsset           float64            `json:"reinsurance_asset"`
	ClosingCSM                 float64            `json:"closing_csm"`
	CSMTrendPct                *float64           `json:"csm_trend_pct"`
	GrossPremium               float64            `json:"gross_premium"`
	NetPremium                 float64            `json:"net_premium"`
	ClaimsIncurred             float64            `json:"claims_incurred"`
	LossRatioPct               *float64           `json:"loss_ratio_pct"`
	ContractsCount             int                `json:"contracts_count"`
	InsuranceRevenueCSMRelease float64            `json:"insurance_revenue_csm_release"`
	AcquisitionCostsTotal      float64            `json:"acquisition_costs_total"`
	ClaimsPaid                 float64            `json:"claims_paid"`
	ClaimsOutstandingReserve   float64            `json:"claims_outstanding_reserve"`
	ByPortfolio                PortfolioBreakdown `json:"by_portfolio"`
	Portfolios                 []string           `json:"portfolios"`
}

// BuildSummary computes the dashboard summary.
func BuildSummary(s *Snapshot) *Summary {
	sum := &Summary{ContractsCount: len(s.Contracts)}

	var csmOpening float64
	for _, r := range s.LiabilityMovements {
		sum.InsuranceLiability += r.ClosingBalance
		sum.InsuranceLiabilityOpening += r.OpeningBalance
	}
	for _, r := range s.CSMMovements {
		sum.ClosingCSM += r.ClosingCSM
		csmOpening += r.OpeningCSM
		sum.InsuranceRevenueCSMRelease += r.CSMReleaseToPL
	}
	for _, r := range s.Premiums {
		sum.GrossPremium += r.GrossPremium
		sum.NetPremium += r.NetPremium
	}
	for _, r := range s.Claims {
		sum.ClaimsIncurred += r.IncurredAmount
		sum.ClaimsPaid += r.PaidAmount
		sum.ClaimsOutstandingReserve += r.OutstandingReserve
	}
	for _, r := range s.AcquisitionCosts {
		sum.AcquisitionCostsTotal += r.Total
	}
	for _, r := range s.Reinsurance {
		sum.ReinsuranceAsset += r.ReinsuranceAssetBalance
	}

	sum.LossRatioPct = RatioPct(sum.ClaimsIncurred, sum.NetPremium)
	sum.LiabilityTrendPct = TrendPct(sum.InsuranceLiability, sum.InsuranceLiabilityOpening)
	sum.CSMTrendPct = TrendPct(sum.ClosingCSM, csmOpening)

	agg := AggregateByPortfolio(s)
	sum.Portfolios = displayOrder(s, agg)
	sum.ByPortfolio = make(PortfolioBreakdown, 0, len(sum.Portfolios))
	seen := make(map[string]bool, len(sum.Portfolios))
	for _, p := range sum.Portfolios {
		if seen[p] {
			continue
		}
		seen[p] = true
		sum.ByPortfolio = append(sum.ByPortfolio, PortfolioEntry{Portfolio: p, Totals: agg.Get(p)})
	}

	return sum
}

// displayOrder is metadata.portfolios, or the aggregator's discovery order
// when metadata lists none.
func displayOrder(s *Snapshot, agg *PortfolioAggregate) []string {
	src := s.Metadata.Portfolios
	if len(src) == 0 {
		src = agg.Order
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// TrendSeries is a chart series keyed by cohort year. Labels and Values are
// index-aligned.
type TrendSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// BuildLiabilityTrend sums closing liability per cohort year across all portfolios.
func BuildLiabilityTrend(s *Snapshot) *TrendSeries {
	byYear := make(map[int]float64)
	for _, r := range s.LiabilityMovements {
		byYear[r.CohortYear] += r.ClosingBalance
	}
	return cohortSeries(byYear)
}

// BuildCSMTrend sums closing CSM per cohort year across all portfolios.
func BuildCSMTrend(s *Snapshot) *TrendSeries {
	byYear := make(map[int]float64)
	for _, r := range s.CSMMovements {
		byYear[r.CohortYear] += r.ClosingCSM
	}
	return cohortSeries(byYear)
}

func cohortSeries(byYear map[int]float64) *TrendSeries {
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	series := &TrendSeries{
		Labels: make([]string, len(years)),
		Values: make([]float64, len(years)),
	}
	for i, y := range years {
		series.Labels[i] = strconv.Itoa(y)
		series.Values[i] = byYear[y]
	}
	return series
}

// ComparisonRow is one line of the portfolio comparison table.
type ComparisonRow struct {
	Portfolio        string   `json:"portfolio"`
	Contracts        int      `json:"contracts"`
	GrossPremium     float64  `json:"gross_premium"`
	Claims           float64  `json:"claims"`
	LossRatioPct     *float64 `json:"loss_ratio_pct"`
	ClosingLiability float64  `json:"closing_liability"`
	ClosingCSM       float64  `json:"closing_csm"`
}

// BuildPortfolioComparison produces one row per portfolio in summary order.
func BuildPortfolioComparison(s *Snapshot) []ComparisonRow {
	return comparisonFromSummary(BuildSummary(s))
}

func comparisonFromSummary(sum *Summary) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(sum.Portfolios))
	for _, p := range sum.Portfolios {
		t, _ := sum.ByPortfolio.Lookup(p)
		rows = append(rows, ComparisonRow{
			Portfolio:        p,
			Contracts:        t.Count,
			GrossPremium:     t.Premium,
			Claims:           t.Claims,
			LossRatioPct:     RatioPct(t.Claims, t.Premium),
			ClosingLiability: t.Liability,
			ClosingCSM:       t.CSM,
		})
	}
	return rows
}

// Dashboard bundles every dashboard view computed from one snapshot.
type Dashboard struct {
	Summary             *Summary        `json:"summary"`
	LiabilityTrend      *TrendSeries    `json:"liability_trend"`
	CSMTrend            *TrendSeries    `json:"csm_trend"`
	PortfolioComparison []ComparisonRow `json:"portfolio_comparison"`
}

// BuildDashboard computes all dashboard views.
func BuildDashboard(s *Snapshot) *Dashboard {
	sum := BuildSummary(s)
	return &Dashboard{
		Summary:             sum,
		LiabilityTrend:      BuildLiabilityTrend(s),
		CSMTrend:            BuildCSMTrend(s),
		PortfolioComparison: comparisonFromSummary(sum),
	}
}
