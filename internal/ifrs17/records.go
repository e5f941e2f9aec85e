// Package ifrs17 implements the IFRS 17 aggregation and reconciliation engine.
//
// The engine works on a single immutable Snapshot of the source document. Every
// operation is a pure function of that snapshot; the Store owns loading and caching.
package ifrs17

import (
	"encoding/json"
	"fmt"
)

// Collection names as they appear at the top level of the source document.
const (
	CollectionMetadata           = "metadata"
	CollectionContracts          = "contracts"
	CollectionPremiums           = "premiums"
	CollectionClaims             = "claims"
	CollectionAcquisitionCosts   = "acquisition_costs"
	CollectionReinsurance        = "reinsurance"
	CollectionAssumptions        = "assumptions"
	CollectionDiscountRates      = "discount_rates"
	CollectionLiabilityMovements = "liability_movements"
	CollectionCSMMovements       = "csm_movements"
	CollectionClaimsDevelopment  = "claims_development"
)

// recordCollections lists every array-valued collection the engine understands.
var recordCollections = []string{
	CollectionContracts,
	CollectionPremiums,
	CollectionClaims,
	CollectionAcquisitionCosts,
	CollectionReinsurance,
	CollectionAssumptions,
	CollectionDiscountRates,
	CollectionLiabilityMovements,
	CollectionCSMMovements,
	CollectionClaimsDevelopment,
}

// ContractID identifies a contract. Source documents carry it either as a
// JSON string or as a JSON number. The kind is part of the identity: 1 and
// "1" name different contracts.
type ContractID struct {
	Value   string
	Numeric bool
}

// String returns the identifier as it appears in the document.
func (id ContractID) String() string {
	return id.Value
}

// UnmarshalJSON accepts string and numeric identifiers.
func (id *ContractID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ContractID{Value: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid contract_id %s: %w", string(b), err)
	}
	*id = ContractID{Value: n.String(), Numeric: true}
	return nil
}

// Metadata describes the reporting snapshot.
type Metadata struct {
	ReportingDate *string  `json:"reporting_date"`
	Currency      *string  `json:"currency"`
	Portfolios    []string `json:"portfolios"`
	Description   *string  `json:"description"`
}

// Contract is the anchor entity every contract-level collection joins to.
type Contract struct {
	ContractID ContractID `json:"contract_id"`
	Portfolio  string     `json:"portfolio"`
	CohortYear int        `json:"cohort_year"`
}

// Premium is a premium booking against a contract.
type Premium struct {
	ContractID   ContractID `json:"contract_id"`
	GrossPremium float64    `json:"gross_premium"`
	NetPremium   float64    `json:"net_premium"`
}

// Claim is a claim booking against a contract.
type Claim struct {
	ContractID         ContractID `json:"contract_id"`
	IncurredAmount     float64    `json:"incurred_amount"`
	PaidAmount         float64    `json:"paid_amount"`
	OutstandingReserve float64    `json:"outstanding_reserve"`
}

// AcquisitionCost is an insurance acquisition cash flow against a contract.
type AcquisitionCost struct {
	ContractID ContractID `json:"contract_id"`
	Total      float64    `json:"total"`
}

// Reinsurance is a reinsurance asset position against a contract.
type Reinsurance struct {
	ContractID              ContractID `json:"contract_id"`
	ReinsuranceAssetBalance float64    `json:"reinsurance_asset_balance"`
}

// LiabilityMovement is the roll-forward of the insurance contract liability
// of one portfolio/cohort group.
type LiabilityMovement struct {
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

// CSMMovement is the roll-forward of the contractual service margin of one
// portfolio/cohort group.
type CSMMovement struct {
	Portfolio          string  `json:"portfolio"`
	CohortYear         int     `json:"cohort_year"`
	OpeningCSM         float64 `json:"opening_csm"`
	InitialRecognition float64 `json:"initial_recognition"`
	ChangesInEstimates float64 `json:"changes_in_estimates"`
	CSMReleaseToPL     float64 `json:"csm_release_to_pl"`
	ClosingCSM         float64 `json:"closing_csm"`
}

// recordTags are the join/filter keys any record may carry.
type recordTags struct {
	ContractID *ContractID `json:"contract_id"`
	Portfolio  *string     `json:"portfolio"`
	CohortYear *int        `json:"cohort_year"`
}

// taggedRecord keeps a record's original bytes next to its tags so that data
// slices can return records exactly as they were read.
type taggedRecord struct {
	tags recordTags
	raw  json.RawMessage
}

// Snapshot is one immutable, fully decoded copy of the source document.
// Numeric fields that are absent or null decode to zero.
type Snapshot struct {
	Metadata           Metadata
	Contracts          []Contract
	Premiums           []Premium
	Claims             []Claim
	AcquisitionCosts   []AcquisitionCost
	Reinsurance        []Reinsurance
	LiabilityMovements []LiabilityMovement
	CSMMovements       []CSMMovement

	document    map[string]json.RawMessage
	collections map[string][]taggedRecord
}

// ParseSnapshot decodes a source document.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var document map[string]json.RawMessage
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot document: %w", err)
	}
	if document == nil {
		document = make(map[string]json.RawMessage)
	}

	s := &Snapshot{
		document:    document,
		collections: make(map[string][]taggedRecord, len(recordCollections)),
	}

	if raw, ok := document[CollectionMetadata]; ok {
		if err := json.Unmarshal(raw, &s.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", CollectionMetadata, err)
		}
	}

	elements := make(map[string][]json.RawMessage, len(recordCollections))
	for _, name := range recordCollections {
		raw, ok := document[name]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		tagged := make([]taggedRecord, len(items))
		for i, item := range items {
			if err := json.Unmarshal(item, &tagged[i].tags); err != nil {
				return nil, fmt.Errorf("failed to decode %s[%d]: %w", name, i, err)
			}
			tagged[i].raw = item
		}
		elements[name] = items
		s.collections[name] = tagged
	}

	var err error
	if s.Contracts, err = decodeRecords[Contract](CollectionContracts, elements); err != nil {
		return nil, err
	}
	if s.Premiums, err = decodeRecords[Premium](CollectionPremiums, elements); err != nil {
		return nil, err
	}
	if s.Claims, err = decodeRecords[Claim](CollectionClaims, elements); err != nil {
		return nil, err
	}
	if s.AcquisitionCosts, err = decodeRecords[AcquisitionCost](CollectionAcquisitionCosts, elements); err != nil {
		return nil, err
	}
	if s.Reinsurance, err = decodeRecords[Reinsurance](CollectionReinsurance, elements); err != nil {
		return nil, err
	}
	if s.LiabilityMovements, err = decodeRecords[LiabilityMovement](CollectionLiabilityMovements, elements); err != nil {
		return nil, err
	}
	if s.CSMMovements, err = decodeRecords[CSMMovement](CollectionCSMMovements, elements); err != nil {
		return nil, err
	}

	return s, nil
}

func decodeRecords[T any](name string, elements map[string][]json.RawMessage) ([]T, error) {
	items := elements[name]
	out := make([]T, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &out[i]); err != nil {
			return nil, fmt.Errorf("failed to decode %s[%d]: %w", name, i, err)
		}
	}
	return out, nil
}

// Document returns the top-level members of the source document as read.
// The returned map is a copy; the raw values are shared and must not be modified.
func (s *Snapshot) Document() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(s.document))
	for k, v := range s.document {
		out[k] = v
	}
	return out
}
