package superblock

import (
	"fmt"
	"sort"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// dateAxis is the outcome of aligning component date lists
type dateAxis struct {
	dates    []string
	warnings []string
	fatal    error
}

// alignDates applies the alignment strategy to per-component sorted day keys
func alignDates(dateLists [][]string, strategy contracts.SuperBlockAlignment) dateAxis {
	union, common := unionAndIntersection(dateLists)

	var axis dateAxis
	switch strategy {
	case contracts.AlignIntersection:
		axis.dates = common
		switch {
		case len(common) == 0:
			axis.warnings = append(axis.warnings, "no overlapping dates between components")
			axis.fatal = ErrNoOverlap
		case len(common)*2 < len(union):
			axis.warnings = append(axis.warnings, fmt.Sprintf(
				"limited overlap: %d common dates out of %d total (%.0f%%)",
				len(common), len(union), 100*float64(len(common))/float64(len(union))))
		}

	case contracts.AlignUnion:
		axis.dates = union
		if missing := len(union) - len(common); missing > 0 {
			axis.warnings = append(axis.warnings, fmt.Sprintf(
				"%d of %d dates are missing in at least one component and will be forward-filled",
				missing, len(union)))
		}
		if len(union) == 0 {
			axis.fatal = ErrNoOverlap
		}

	case contracts.AlignEarliestCommon:
		if len(common) == 0 {
			axis.warnings = append(axis.warnings, "no common start date found")
			axis.fatal = ErrNoCommonStart
			break
		}
		start := common[0]
		for _, d := range union {
			if d >= start {
				axis.dates = append(axis.dates, d)
			}
		}

	case contracts.AlignLatestCommon:
		if len(common) == 0 {
			axis.warnings = append(axis.warnings, "no common end date found")
			axis.fatal = ErrNoCommonEnd
			break
		}
		end := common[len(common)-1]
		for _, d := range union {
			if d <= end {
				axis.dates = append(axis.dates, d)
			}
		}

	default:
		axis.fatal = fmt.Errorf("%w: %q", ErrUnknownAlign, strategy)
	}

	return axis
}

// unionAndIntersection returns both sets sorted ascending
func unionAndIntersection(dateLists [][]string) (union, common []string) {
	counts := make(map[string]int)
	for _, dates := range dateLists {
		for _, d := range dates {
			counts[d]++
		}
	}

	union = make([]string, 0, len(counts))
	common = make([]string, 0)
	for d, n := range counts {
		union = append(union, d)
		if n == len(dateLists) {
			common = append(common, d)
		}
	}
	sort.Strings(union)
	sort.Strings(common)
	return union, common
}
