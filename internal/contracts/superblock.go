package contracts

import "time"

// SuperBlockAlignment selects how component date lists are merged
type SuperBlockAlignment string

const (
	AlignIntersection   SuperBlockAlignment = "intersection"
	AlignUnion          SuperBlockAlignment = "union"
	AlignEarliestCommon SuperBlockAlignment = "earliest-common"
	AlignLatestCommon   SuperBlockAlignment = "latest-common"
)

// Valid reports whether a is a known alignment strategy
func (a SuperBlockAlignment) Valid() bool {
	switch a {
	case AlignIntersection, AlignUnion, AlignEarliestCommon, AlignLatestCommon:
		return true
	}
	return false
}

// CombinedEquityPoint is one aligned date of a super-block merge
type CombinedEquityPoint struct {
	Date                 time.Time          `json:"date"`
	CombinedAccountValue float64            `json:"combined_account_value"`
	ComponentValues      map[string]float64 `json:"component_values"`
	CombinedReturn       float64            `json:"combined_return"` // day-over-day, fraction
	CombinedMarginReq    float64            `json:"combined_margin_req"`
}

// ComponentStats pairs a component with its own statistics
type ComponentStats struct {
	Name       string         `json:"name"`
	EntryCount int            `json:"entry_count"`
	StartDate  time.Time      `json:"start_date"`
	EndDate    time.Time      `json:"end_date"`
	Stats      PortfolioStats `json:"stats"`
}

// SuperBlockData is the result of combining several components into one curve
type SuperBlockData struct {
	Name            string                `json:"name"`
	Alignment       SuperBlockAlignment   `json:"alignment"`
	CombinedCurve   []CombinedEquityPoint `json:"combined_curve"`
	CombinedEntries []EquityCurveEntry    `json:"combined_entries"`
	CombinedStats   PortfolioStats        `json:"combined_stats"`
	ComponentStats  []ComponentStats      `json:"component_stats"`
	Warnings        []string              `json:"warnings"`
	StartDate       time.Time             `json:"start_date"`
	EndDate         time.Time             `json:"end_date"`
}
