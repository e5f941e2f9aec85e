package ifrs17

// LiabilityRow is one portfolio/cohort line of the liability reconciliation.
type LiabilityRow struct {
	Portfolio          string  `json:"portfolio"`
	CohortYear         int     `json:"cohort_year"`
	OpeningBalance     float64 `json:"opening_balance"`
	NewContracts       float64 `json:"new_contracts"`
	PremiumsReceived   float64 `json:"premiums_received"`
	ClaimsIncurred     float64 `json:"claims_incurred"`
	CSMRelease         float64 `json:"csm_release"`
	ExperienceVariance float64 `json:"experience_variance"`
	ClosingBalance     float64 `json:"closing_balance"`
}

// LiabilityTotals are the column sums of a liability reconciliation.
type LiabilityTotals struct {
	OpeningBalance     float64 `json:"opening_balance"`
	NewContracts       float64 `json:"new_contracts"`
	PremiumsReceived   float64 `json:"premiums_received"`
	ClaimsIncurred     float64 `json:"claims_incurred"`
	CSMRelease         float64 `json:"csm_release"`
	ExperienceVariance float64 `json:"experience_variance"`
	ClosingBalance     float64 `json:"closing_balance"`
}

func (t *LiabilityTotals) add(r LiabilityRow) {
	t.OpeningBalance += r.OpeningBalance
	t.NewContracts += r.NewContracts
	t.PremiumsReceived += r.PremiumsReceived
	t.ClaimsIncurred += r.ClaimsIncurred
	t.CSMRelease += r.CSMRelease
	t.ExperienceVariance += r.ExperienceVariance
	t.ClosingBalance += r.ClosingBalance
}

// LiabilityReconciliation is the opening-to-closing liability table.
type LiabilityReconciliation struct {
	Rows   []LiabilityRow  `json:"rows"`
	Totals LiabilityTotals `json:"totals"`
}

// BuildLiabilityReconciliation projects every liability movement into a row,
// in input order, and sums the rows column by column. The roll-forward
// identity is reported as found in the source, never corrected.
func BuildLiabilityReconciliation(s *Snapshot) *LiabilityReconciliation {
	rec := &LiabilityReconciliation{Rows: make([]LiabilityRow, 0, len(s.LiabilityMovements))}
	for _, m := range s.LiabilityMovements {
		row := LiabilityRow{
			Portfolio:          m.Portfolio,
			CohortYear:         m.CohortYear,
			OpeningBalance:     m.OpeningBalance,
			NewContracts:       m.NewContracts,
			PremiumsReceived:   m.PremiumsReceived,
			ClaimsIncurred:     m.ClaimsIncurred,
			CSMRelease:         m.CSMRelease,
			ExperienceVariance: m.ExperienceVariance,
			ClosingBalance:     m.ClosingBalance,
		}
		rec.Rows = append(rec.Rows, row)
		rec.Totals.add(row)
	}
	return rec
}

// CSMRow is one portfolio/cohort line of the CSM reconciliation.
type CSMRow struct {
	Portfolio          string  `json:"portfolio"`
	CohortYear         int     `json:"cohort_year"`
	OpeningCSM         float64 `json:"opening_csm"`
	InitialRecognition float64 `json:"initial_recognition"`
	ChangesInEstimates float64 `json:"changes_in_estimates"`
	CSMReleaseToPL     float64 `json:"csm_release_to_pl"`
	ClosingCSM         float64 `json:"closing_csm"`
}

// CSMTotals are the column sums of a CSM reconciliation.
type CSMTotals struct {
	OpeningCSM         float64 `json:"opening_csm"`
	InitialRecognition float64 `json:"initial_recognition"`
	ChangesInEstimates float64 `json:"changes_in_estimates"`
	CSMReleaseToPL     float64 `json:"csm_release_to_pl"`
	ClosingCSM         float64 `json:"closing_csm"`
}

func (t *CSMTotals) add(r CSMRow) {
	t.OpeningCSM += r.OpeningCSM
	t.InitialRecognition += r.InitialRecognition
	t.ChangesInEstimates += r.ChangesInEstimates
	t.CSMReleaseToPL += r.CSMReleaseToPL
	t.ClosingCSM += r.ClosingCSM
}

// CSMReconciliation is the opening-to-closing CSM table. Insurance revenue
// recognised from CSM equals the CSM released to profit or loss.
type CSMReconciliation struct {
	Rows                           []CSMRow  `json:"rows"`
	Totals                         CSMTotals `json:"totals"`
	InsuranceRevenueFromCSMRelease float64   `json:"insurance_revenue_from_csm_release"`
}

// BuildCSMReconciliation projects every CSM movement into a row and sums them.
func BuildCSMReconciliation(s *Snapshot) *CSMReconciliation {
	rec := &CSMReconciliation{Rows: make([]CSMRow, 0, len(s.CSMMovements))}
	for _, m := range s.CSMMovements {
		row := CSMRow{
			Portfolio:          m.Portfolio,
			CohortYear:         m.CohortYear,
			OpeningCSM:         m.OpeningCSM,
			InitialRecognition: m.InitialRecognition,
			ChangesInEstimates: m.ChangesInEstimates,
			CSMReleaseToPL:     m.CSMReleaseToPL,
			ClosingCSM:         m.ClosingCSM,
		}
		rec.Rows = append(rec.Rows, row)
		rec.Totals.add(row)
	}
	rec.InsuranceRevenueFromCSMRelease = rec.Totals.CSMReleaseToPL
	return rec
}
