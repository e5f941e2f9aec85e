package ifrs17

import (
	"encoding/json"
	"fmt"
)

// SliceFilter selects raw data by portfolio and/or cohort year. An empty
// Portfolio and a nil CohortYear mean "no filter" on that dimension.
type SliceFilter struct {
	Portfolio  string
	CohortYear *int
}

// IsZero reports whether the filter selects everything.
func (f SliceFilter) IsZero() bool {
	return f.Portfolio == "" && f.CohortYear == nil
}

// DataSlice maps collection names to their JSON-encoded contents.
type DataSlice map[string]json.RawMessage

type contractSet map[ContractID]struct{}

func (c contractSet) has(id *ContractID) bool {
	if id == nil {
		return false
	}
	_, ok := c[*id]
	return ok
}

// slicePredicate decides whether a record survives the filter.
type slicePredicate func(t recordTags, f SliceFilter, ids contractSet) bool

func byContract(t recordTags, _ SliceFilter, ids contractSet) bool {
	return ids.has(t.ContractID)
}

func byPortfolioAndCohort(t recordTags, f SliceFilter, _ contractSet) bool {
	return matchPortfolio(t, f) && matchCohort(t, f)
}

func byPortfolio(t recordTags, f SliceFilter, _ contractSet) bool {
	return matchPortfolio(t, f)
}

func byCohort(t recordTags, f SliceFilter, _ contractSet) bool {
	return matchCohort(t, f)
}

func passThrough(recordTags, SliceFilter, contractSet) bool {
	return true
}

func matchPortfolio(t recordTags, f SliceFilter) bool {
	return f.Portfolio == "" || (t.Portfolio != nil && *t.Portfolio == f.Portfolio)
}

func matchCohort(t recordTags, f SliceFilter) bool {
	return f.CohortYear == nil || (t.CohortYear != nil && *t.CohortYear == *f.CohortYear)
}

// sliceRules declares how each collection follows a filter. Contract-granular
// collections join through contract_id; movement rows carry their own
// portfolio and cohort tags; reference data is filtered on the one tag it
// is keyed by, or not at all.
var sliceRules = []struct {
	collection string
	keep       slicePredicate
}{
	{CollectionContracts, byContract},
	{CollectionPremiums, byContract},
	{CollectionClaims, byContract},
	{CollectionAcquisitionCosts, byContract},
	{CollectionReinsurance, byContract},
	{CollectionLiabilityMovements, byPortfolioAndCohort},
	{CollectionCSMMovements, byPortfolioAndCohort},
	{CollectionAssumptions, byPortfolio},
	{CollectionClaimsDevelopment, byCohort},
	{CollectionDiscountRates, passThrough},
}

// BuildDataSlice returns the raw data selected by f. With no filter it is the
// document exactly as read; otherwise it holds metadata plus every known
// collection reduced per sliceRules.
func BuildDataSlice(s *Snapshot, f SliceFilter) (DataSlice, error) {
	if f.IsZero() {
		return DataSlice(s.Document()), nil
	}

	ids := matchingContracts(s, f)

	out := make(DataSlice, len(sliceRules)+1)
	if meta, ok := s.document[CollectionMetadata]; ok {
		out[CollectionMetadata] = meta
	} else {
		out[CollectionMetadata] = json.RawMessage("null")
	}

	for _, rule := range sliceRules {
		kept := make([]json.RawMessage, 0)
		for _, r := range s.collections[rule.collection] {
			if rule.keep(r.tags, f, ids) {
				kept = append(kept, r.raw)
			}
		}
		encoded, err := json.Marshal(kept)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", rule.collection, err)
		}
		out[rule.collection] = encoded
	}

	return out, nil
}

// matchingContracts is the set of contracts in the filtered portfolio
// intersected with the contracts in the filtered cohort year.
func matchingContracts(s *Snapshot, f SliceFilter) contractSet {
	ids := make(contractSet)
	for _, r := range s.collections[CollectionContracts] {
		if r.tags.ContractID == nil {
			continue
		}
		if matchPortfolio(r.tags, f) && matchCohort(r.tags, f) {
			ids[*r.tags.ContractID] = struct{}{}
		}
	}
	return ids
}
