package metrics

// Streak is a run of same-sign trades: summed P&L and trade count.
type Streak struct {
	PL    float64 `json:"pl"`
	Count int     `json:"count"`
}

// computeStreaks finds the best win streak (highest summed P&L) and the worst loss
// streak (lowest summed P&L). Magnitude decides, not run length.
// A positive value extends the win run and flushes the loss run; negative is symmetric.
// Zero values neither extend nor break a run. Both runs are flushed after the last value.
func computeStreaks(values []float64) (maxWin, maxLoss Streak) {
	var win, loss Streak

	flushWin := func() {
		if win.PL > maxWin.PL {
			maxWin = win
		}
		win = Streak{}
	}
	flushLoss := func() {
		if loss.PL < maxLoss.PL {
			maxLoss = loss
		}
		loss = Streak{}
	}

	for _, v := range values {
		switch {
		case v > 0:
			win.PL += v
			win.Count++
			flushLoss()
		case v < 0:
			loss.PL += v
			loss.Count++
			flushWin()
		}
	}
	flushWin()
	flushLoss()

	return maxWin, maxLoss
}
