package reporting

import (
	"fmt"
	"strings"
	"time"

	"bnb-arb-agent/internal/domain"
)

// statusOrder fixes the rendering order of the status table.
var statusOrder = []domain.ExecutionStatus{
	domain.StatusSuccess,
	domain.StatusPartial,
	domain.StatusFailed,
	domain.StatusPreflightFailed,
	domain.StatusBlockedBreaker,
	domain.StatusDisabled,
}

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Trade Ledger Audit\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.WindowSize > 0 {
		sb.WriteString(fmt.Sprintf("Window: last %d attempts\n\n", r.WindowSize))
	} else {
		sb.WriteString("Window: full ledger\n\n")
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Attempts | %d |\n", r.Summary.TotalAttempts))
	sb.WriteString(fmt.Sprintf("| Success Rate | %.1f%% |\n", r.Summary.SuccessRate*100))
	sb.WriteString(fmt.Sprintf("| Breaker Blocks | %d |\n", r.Summary.BreakerBlocks))
	sb.WriteString(fmt.Sprintf("| Preflight Rejects | %d |\n", r.Summary.PreflightRejects))
	sb.WriteString("\n")

	sb.WriteString("### Attempts by Status\n\n")
	sb.WriteString("| Status | Count |\n")
	sb.WriteString("|--------|-------|\n")
	for _, status := range statusOrder {
		if count, ok := r.Summary.ByStatus[status]; ok {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", status, count))
		}
	}
	sb.WriteString("\n")

	if len(r.TokenBreakdown) > 0 {
		sb.WriteString("## Per-Token Breakdown\n\n")
		sb.WriteString("| Token | Attempts | Success | Partial | Failed | Avg Confidence | Avg Profit Est |\n")
		sb.WriteString("|-------|----------|---------|---------|--------|----------------|----------------|\n")
		for _, row := range r.TokenBreakdown {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %.1f | %.2f%% |\n",
				row.Token, row.Attempts, row.Successes, row.Partials, row.Failures,
				row.AvgConfidence, row.AvgProfitPct*100))
		}
		sb.WriteString("\n")
	}

	if len(r.StuckCapital) > 0 {
		sb.WriteString("## Stuck Capital (PARTIAL attempts)\n\n")
		sb.WriteString("Capital from these attempts is parked in the target token and needs manual recovery.\n\n")
		sb.WriteString("| Attempt | Token | Amount | Buy Tx | Executed At |\n")
		sb.WriteString("|---------|-------|--------|--------|-------------|\n")
		for _, row := range r.StuckCapital {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.4f | %s | %s |\n",
				shortID(row.AttemptID), row.Token, row.Amount, shortID(row.BuyTxHash),
				row.ExecutedAt.Format(time.RFC3339)))
		}
		sb.WriteString("\n")
	}

	if len(r.RecentAttempts) > 0 {
		sb.WriteString("## Recent Attempts\n\n")
		sb.WriteString("| Attempt | Token | Direction | Status | Confidence | Profit Est | Executed At |\n")
		sb.WriteString("|---------|-------|-----------|--------|------------|------------|-------------|\n")
		for _, row := range r.RecentAttempts {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %.2f%% | %s |\n",
				shortID(row.AttemptID), row.Token, row.Direction, row.Status,
				row.Confidence, row.ProfitPct*100, row.ExecutedAt.Format(time.RFC3339)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// shortID keeps tables readable; full ids live in the CSV export.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
