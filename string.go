package dietz

import (
	"fmt"
	"strings"
	"time"
)

// String renders the derived values for diagnostics, one per line.
func (md *ModifiedDietz[T]) String() string {
	var b strings.Builder
	b.WriteString("NetCashFlowMap:\n")
	for _, on := range md.dates {
		fmt.Fprintf(&b, "%s %.2f\n", on.Format(DatetimeFormat), float64(md.net[on]))
	}
	fmt.Fprintf(&b, "mv.start %.0f\n", float64(md.marketValue.Start))
	fmt.Fprintf(&b, "mv.end %.0f\n", float64(md.marketValue.End))
	fmt.Fprintf(&b, "netCashflowTotal %.0f\n", float64(md.netTotal))
	fmt.Fprintf(&b, "gainOrLoss %.0f\n", float64(md.gainOrLoss))
	fmt.Fprintf(&b, "adjustedNetCashflow %.0f\n", float64(md.adjustedNet))
	fmt.Fprintf(&b, "averageCapital %.0f\n", float64(md.averageCapital))
	fmt.Fprintf(&b, "period=%s\n", md.period)
	fmt.Fprintf(&b, "adjustedPeriod=%s\n", md.adjustedPeriod)
	dates := make([]string, len(md.dates))
	for i, on := range md.dates {
		dates[i] = on.Format(time.RFC3339)
	}
	fmt.Fprintf(&b, "dates=[%s]\n", strings.Join(dates, " "))
	fmt.Fprintf(&b, "performance %.1f%%", 100*float64(md.performance))
	return b.String()
}
