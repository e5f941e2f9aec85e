package ifrs17

// PortfolioTotals is the per-portfolio rollup used by the dashboard.
type PortfolioTotals struct {
	Premium   float64 `json:"premium"`
	Claims    float64 `json:"claims"`
	Liability float64 `json:"liability"`
	CSM       float64 `json:"csm"`
	Count     int     `json:"count"`
	Opening   float64 `json:"opening"`
}

// PortfolioAggregate holds the rollups of every known portfolio.
// Order lists the portfolios in discovery order.
type PortfolioAggregate struct {
	Order   []string
	Buckets map[string]*PortfolioTotals
}

// Get returns the totals for portfolio, or zero totals if it is unknown.
func (a *PortfolioAggregate) Get(portfolio string) PortfolioTotals {
	if b, ok := a.Buckets[portfolio]; ok {
		return *b
	}
	return PortfolioTotals{}
}

func (a *PortfolioAggregate) ensure(portfolio string) {
	if _, ok := a.Buckets[portfolio]; ok {
		return
	}
	a.Buckets[portfolio] = &PortfolioTotals{}
	a.Order = append(a.Order, portfolio)
}

// AggregateByPortfolio rolls contracts, premiums, claims and movements up to
// portfolio level.
//
// The portfolio universe is every portfolio referenced by a contract, or the
// metadata portfolios when there are no contracts. Premiums and claims join
// through contract_id; movements are already portfolio-tagged. Rows that
// resolve to a portfolio outside the universe are dropped.
func AggregateByPortfolio(s *Snapshot) *PortfolioAggregate {
	agg := &PortfolioAggregate{Buckets: make(map[string]*PortfolioTotals)}

	if len(s.Contracts) == 0 {
		for _, p := range s.Metadata.Portfolios {
			agg.ensure(p)
		}
	}

	byID := make(map[ContractID]*Contract, len(s.Contracts))
	for i := range s.Contracts {
		c := &s.Contracts[i]
		agg.ensure(c.Portfolio)
		agg.Buckets[c.Portfolio].Count++
		byID[c.ContractID] = c
	}

	for _, r := range s.Premiums {
		if b := agg.bucketForContract(byID, r.ContractID); b != nil {
			b.Premium += r.GrossPremium
		}
	}
	for _, r := range s.Claims {
		if b := agg.bucketForContract(byID, r.ContractID); b != nil {
			b.Claims += r.IncurredAmount
		}
	}
	for _, r := range s.LiabilityMovements {
		if b, ok := agg.Buckets[r.Portfolio]; ok {
			b.Liability += r.ClosingBalance
			b.Opening += r.OpeningBalance
		}
	}
	for _, r := range s.CSMMovements {
		if b, ok := agg.Buckets[r.Portfolio]; ok {
			b.CSM += r.ClosingCSM
		}
	}

	return agg
}

func (a *PortfolioAggregate) bucketForContract(byID map[ContractID]*Contract, id ContractID) *PortfolioTotals {
	c, ok := byID[id]
	if !ok {
		return nil
	}
	return a.Buckets[c.Portfolio]
}
