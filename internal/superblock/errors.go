package superblock

import "errors"

// Fatal combination errors. Every other degenerate input is reported as a warning.
var (
	ErrNoComponents   = errors.New("superblock: no components")
	ErrNoOverlap      = errors.New("superblock: components share no dates")
	ErrNoCommonStart  = errors.New("superblock: no common start date")
	ErrNoCommonEnd    = errors.New("superblock: no common end date")
	ErrNoCompleteDate = errors.New("superblock: no date is covered by every component")
	ErrUnknownAlign   = errors.New("superblock: unknown alignment strategy")
)

// IsFatal reports whether err is one of the combination sentinels
func IsFatal(err error) bool {
	for _, target := range []error{ErrNoComponents, ErrNoOverlap, ErrNoCommonStart, ErrNoCommonEnd, ErrNoCompleteDate, ErrUnknownAlign} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
