package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"PortfolioArena/internal/refresh"
	"PortfolioArena/internal/report"
)

// FormatLeaderboard renders the ranked agents.
func FormatLeaderboard(board []report.Standing, asOf time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏆 <b>Portfolio Arena</b> | %s\n\n", asOf.Format("2006-01-02")))
	if len(board) == 0 {
		b.WriteString("No agents yet.")
		return b.String()
	}
	for _, s := range board {
		b.WriteString(fmt.Sprintf("%s <b>%s</b>  $%s  (%s)\n",
			medal(s.Rank), html.EscapeString(s.Name), money(s.CurrentValue), signedPct(s.TotalReturn)))
	}
	return b.String()
}

// FormatPerformance renders the KPI card of one agent.
func FormatPerformance(name string, p *report.Performance) string {
	k := p.KPIs
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s since %s\n\n", html.EscapeString(name), p.Timeframe, p.Start))
	b.WriteString(fmt.Sprintf("Value: $%s\n", money(k.CurrentValue)))
	b.WriteString(fmt.Sprintf("Total return: %s\n", signedPct(k.TotalReturn)))
	b.WriteString(fmt.Sprintf("Annualized: %s\n\n", signedPct(k.AnnualizedReturn)))

	b.WriteString("<b>Risk</b>\n")
	b.WriteString(fmt.Sprintf("  Sharpe: %.2f | Sortino: %.2f\n", k.SharpeRatio, k.SortinoRatio))
	b.WriteString(fmt.Sprintf("  Volatility: %.1f%% | Max DD: %.1f%%\n", k.Volatility, k.MaxDrawdown))
	b.WriteString(fmt.Sprintf("  Alpha: %+.2f | Beta: %.2f (vs %s)\n\n", k.Alpha, k.Beta, p.Benchmark))

	b.WriteString("<b>Days</b>\n")
	b.WriteString(fmt.Sprintf("  Win rate: %.0f%%\n", k.WinRate))
	b.WriteString(fmt.Sprintf("  Best: %s | Worst: %s\n", signedPct(k.BestDay), signedPct(k.WorstDay)))

	if n := len(p.BenchmarkSnapshots); n > 0 {
		bench := p.BenchmarkSnapshots[n-1].TotalValue
		b.WriteString(fmt.Sprintf("\n%s over the same window: $%s\n", p.Benchmark, money(bench)))
	}
	return b.String()
}

// FormatSyncReport summarizes a refresh run.
func FormatSyncReport(r *refresh.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔄 <b>Price sync</b> | %d new rows in %s\n",
		r.TotalInserted, r.Duration().Round(time.Second)))

	tickers := make([]string, 0, len(r.Tickers))
	for t, n := range r.Tickers {
		if n > 0 {
			tickers = append(tickers, t)
		}
	}
	sort.Strings(tickers)
	if len(tickers) > 0 {
		parts := make([]string, len(tickers))
		for i, t := range tickers {
			parts[i] = fmt.Sprintf("%s+%d", t, r.Tickers[t])
		}
		b.WriteString(strings.Join(parts, " ") + "\n")
	}
	for _, a := range r.Agents {
		b.WriteString(fmt.Sprintf("  %s: %d new snapshots\n", a.AgentID, a.Inserted))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /leaderboard\n" +
		"• /agent &lt;id&gt; [1W|1M|3M|6M|1Y|YTD|ALL]\n" +
		"• /sync"
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

func signedPct(v float64) string { return fmt.Sprintf("%+.2f%%", v) }

// money formats v with thousands separators and no cents.
func money(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
