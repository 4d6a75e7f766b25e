package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderCSV renders the recent-attempts window as a CSV string with full ids.
func RenderCSV(rows []AttemptRow) string {
	var sb strings.Builder

	sb.WriteString("attempt_id,token,direction,status,confidence,profit_estimate_pct,executed_at\n")

	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%d,%.6f,%s\n",
			row.AttemptID,
			row.Token,
			row.Direction,
			row.Status,
			row.Confidence,
			row.ProfitPct,
			row.ExecutedAt.Format(time.RFC3339),
		))
	}

	return sb.String()
}
