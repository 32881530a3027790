package reporting

import (
	"fmt"
	"strings"
	"time"

	"pnl-dashboard/internal/format"
)

var monthHeaders = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# P&L Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Strategies: %d | P&L: %s | Window: %d weeks\n\n", r.StrategyCount, r.PLType, r.WindowWeeks))

	// Strategy Metrics
	sb.WriteString("## Strategy Metrics\n\n")
	if len(r.StrategyMetrics) > 0 {
		sb.WriteString("| Strategy | Trades | Total P&L | Win % | Profit Factor | Avg Return | Max DD | Max DD % | Charges |\n")
		sb.WriteString("|----------|--------|-----------|-------|---------------|------------|--------|----------|---------|\n")
		for _, m := range r.StrategyMetrics {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
				m.Name, m.TotalTrades,
				format.Currency(m.TotalPL), format.Percent(m.Profitability), m.ProfitFactorText,
				format.Currency(m.AvgReturn), format.Currency(m.MaxDrawdown),
				format.Percent(m.MaxDrawdownPercent), format.Currency(m.TotalCharges)))
		}
	} else {
		sb.WriteString("No strategy metrics available.\n")
	}
	sb.WriteString("\n")

	for _, s := range r.Strategies {
		renderSection(&sb, s)
	}

	return sb.String()
}

func renderSection(sb *strings.Builder, s StrategySection) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", s.Name))

	// Data Summary
	ds := s.DataSummary
	sb.WriteString("### Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	if ds.Rows > 0 {
		sb.WriteString(fmt.Sprintf("| Rows | %d |\n", ds.Rows))
		sb.WriteString(fmt.Sprintf("| Skipped Rows | %d |\n", ds.SkippedRows))
	}
	sb.WriteString(fmt.Sprintf("| Trades | %d |\n", ds.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Capital | %s |\n", format.Currency(ds.Capital)))
	if ds.TotalTrades > 0 {
		sb.WriteString(fmt.Sprintf("| Period | %s to %s |\n", format.ShortDate(ds.DateRangeStart), format.ShortDate(ds.DateRangeEnd)))
		sb.WriteString(fmt.Sprintf("| Months | %d |\n", ds.Months))
		sb.WriteString(fmt.Sprintf("| Trades / Month | %s |\n", format.Number(ds.AvgTradesPerMonth)))
	}
	sb.WriteString(fmt.Sprintf("| Weeks | %d |\n", ds.Weeks))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("### Data Quality\n\n")
	sb.WriteString("| Check | Threshold | Actual | Status |\n")
	sb.WriteString("|-------|-----------|--------|--------|\n")
	for _, check := range s.DataQuality.SufficiencyChecks {
		status := "FAIL"
		if check.Pass {
			status = "PASS"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", check.Name, check.Threshold, check.Actual, status))
	}
	sb.WriteString("\n")
	if !s.DataQuality.AllChecksPassed {
		sb.WriteString("**Some checks failed.** Treat forecasts and window figures as low confidence.\n\n")
	}

	// Best / Worst
	sb.WriteString("### Best / Worst Window\n\n")
	if s.BestWorst != nil {
		sb.WriteString(fmt.Sprintf("- Best: %s starting week %d\n", format.Currency(s.BestWorst.Best), s.BestWorst.BestStart))
		sb.WriteString(fmt.Sprintf("- Worst: %s starting week %d\n", format.Currency(s.BestWorst.Worst), s.BestWorst.WorstStart))
	} else {
		sb.WriteString("Not enough weeks for the window.\n")
	}
	sb.WriteString("\n")

	// Forecast
	sb.WriteString("### Forecast\n\n")
	if len(s.Forecast) > 0 {
		sb.WriteString("| Horizon | Trades | Worst | Base | Best |\n")
		sb.WriteString("|---------|--------|-------|------|------|\n")
		for _, p := range s.Forecast {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s |\n",
				p.Horizon, p.ExpectedTrades,
				format.Currency(p.WorstCase), format.Currency(p.BaseCase), format.Currency(p.BestCase)))
		}
	} else {
		sb.WriteString("No forecast available.\n")
	}
	sb.WriteString("\n")

	// Monthly Returns
	sb.WriteString("### Monthly Returns\n\n")
	if len(s.Monthly) > 0 {
		sb.WriteString("| Year | " + strings.Join(monthHeaders, " | ") + " | Total |\n")
		sb.WriteString("|------|" + strings.Repeat("-----|", 12) + "-------|\n")
		for _, row := range s.Monthly {
			cells := make([]string, 12)
			for m, v := range row.Months {
				cells[m] = "-"
				if v != nil {
					cells[m] = format.Currency(*v)
				}
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n", row.Year, strings.Join(cells, " | "), format.Currency(row.Total)))
		}
	} else {
		sb.WriteString("No monthly data available.\n")
	}
	sb.WriteString("\n")
}
