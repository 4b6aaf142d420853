package renderer

import (
	"fmt"

	"github.com/etnz/dietz"
)

// Report is the data of a Modified Dietz report, ready to be rendered.
type Report struct {
	Start               string        `json:"start"`
	End                 string        `json:"end"`
	AdjustedStart       string        `json:"adjustedStart,omitempty"`
	AdjustedEnd         string        `json:"adjustedEnd,omitempty"`
	StartValue          Money         `json:"startValue"`
	EndValue            Money         `json:"endValue"`
	NetCashflow         Money         `json:"netCashflow"`
	AdjustedNetCashflow Money         `json:"adjustedNetCashflow"`
	GainOrLoss          Money         `json:"gainOrLoss"`
	AverageCapital      Money         `json:"averageCapital"`
	Performance         dietz.Percent `json:"performance"`
	Cashflows           []Cashflow    `json:"cashflows,omitempty"`
	Ignored             int           `json:"ignored,omitempty"`
}

// Cashflow is a single net cash flow line of a report.
type Cashflow struct {
	Date   string `json:"date"`
	Amount Money  `json:"amount"`
	Weight string `json:"weight"`
}

// NewReport collects the values of md into a Report, amounts being in 'currency'.
func NewReport[T dietz.Float](md *dietz.ModifiedDietz[T], currency string) *Report {
	period, adjusted := md.Period(), md.AdjustedPeriod()
	mv := md.MarketValue()
	r := &Report{
		Start:               period.Start.Format(dietz.DatetimeFormat),
		End:                 period.End.Format(dietz.DatetimeFormat),
		StartValue:          M(mv.Start, currency),
		EndValue:            M(mv.End, currency),
		NetCashflow:         M(md.NetCashflowTotal(), currency),
		AdjustedNetCashflow: M(md.AdjustedNetCashflow(), currency),
		GainOrLoss:          M(md.GainOrLoss(), currency),
		AverageCapital:      M(md.AverageCapital(), currency),
		Performance:         dietz.PercentOf(md.Performance()),
		Ignored:             len(md.RawCashflowMap()) - len(md.NetCashflowMap()),
	}
	if !adjusted.Equal(period) {
		r.AdjustedStart = adjusted.Start.Format(dietz.DatetimeFormat)
		r.AdjustedEnd = adjusted.End.Format(dietz.DatetimeFormat)
	}
	net := md.NetCashflowMap()
	for _, on := range md.OrderedCashflowDates() {
		r.Cashflows = append(r.Cashflows, Cashflow{
			Date:   on.Format(dietz.DatetimeFormat),
			Amount: M(net[on], currency),
			Weight: fmt.Sprintf("%.4f", float64(md.Weight(on))),
		})
	}
	return r
}
