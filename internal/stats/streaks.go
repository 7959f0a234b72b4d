package stats

// StreakResult is the outcome of one win/loss streak scan
type StreakResult struct {
	WinDistribution  map[int]int // streak length → count
	LossDistribution map[int]int
	MaxWinStreak     int
	MaxLossStreak    int
	AvgWinStreak     float64 // closed streaks, final flush included
	AvgLossStreak    float64
	CurrentStreak    int // +n active win streak, -n active loss streak, 0 none
}

// AnalyzeStreaks scans daily returns in order.
//
// A positive return extends the win streak and closes an open loss streak; a negative
// return mirrors that. A zero return closes both streaks and starts neither. This zero
// policy is deliberate and kept even though treating flat days as neutral would be
// an equally valid convention.
func AnalyzeStreaks(returns []float64) StreakResult {
	result := StreakResult{
		WinDistribution:  make(map[int]int),
		LossDistribution: make(map[int]int),
	}

	var (
		curWin, curLoss       int
		winClosed, lossClosed int
		winTotal, lossTotal   int
	)

	flushWin := func() {
		if curWin > 0 {
			result.WinDistribution[curWin]++
			winClosed++
			winTotal += curWin
			curWin = 0
		}
	}
	flushLoss := func() {
		if curLoss > 0 {
			result.LossDistribution[curLoss]++
			lossClosed++
			lossTotal += curLoss
			curLoss = 0
		}
	}

	for _, r := range returns {
		switch {
		case r > 0:
			flushLoss()
			curWin++
			if curWin > result.MaxWinStreak {
				result.MaxWinStreak = curWin
			}
		case r < 0:
			flushWin()
			curLoss++
			if curLoss > result.MaxLossStreak {
				result.MaxLossStreak = curLoss
			}
		default:
			flushWin()
			flushLoss()
		}
	}

	switch {
	case curWin > 0:
		result.CurrentStreak = curWin
	case curLoss > 0:
		result.CurrentStreak = -curLoss
	}

	flushWin()
	flushLoss()

	if winClosed > 0 {
		result.AvgWinStreak = float64(winTotal) / float64(winClosed)
	}
	if lossClosed > 0 {
		result.AvgLossStreak = float64(lossTotal) / float64(lossClosed)
	}

	return result
}
