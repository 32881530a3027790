package reporting

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RenderCSV renders strategy metric rows as CSV.
func RenderCSV(rows []StrategyMetricRow) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"name", "total_trades", "total_pl", "profitability", "profit_factor",
		"avg_return", "total_charges", "max_drawdown", "max_drawdown_percent",
		"max_win_streak", "max_loss_streak",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, m := range rows {
		rec := []string{
			m.Name,
			strconv.Itoa(m.TotalTrades),
			formatFloat(m.TotalPL),
			formatFloat(m.Profitability),
			m.ProfitFactorText,
			formatFloat(m.AvgReturn),
			formatFloat(m.TotalCharges),
			formatFloat(m.MaxDrawdown),
			formatFloat(m.MaxDrawdownPercent),
			strconv.Itoa(m.MaxWinStreak),
			strconv.Itoa(m.MaxLossStreak),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}
