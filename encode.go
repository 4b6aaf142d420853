package dietz

import "encoding/json"

func (p Period) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("start", jsonInstant(p.Start))
	w.Append("end", jsonInstant(p.End))
	return w.MarshalJSON()
}

func (m MarketValueDelta[T]) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Float("start", float64(m.Start))
	w.Float("end", float64(m.End))
	return w.MarshalJSON()
}

// MarshalJSON writes the inputs and every derived value, net cash flows in
// date order with their weight.
func (md *ModifiedDietz[T]) MarshalJSON() ([]byte, error) {
	type flow struct {
		Date   jsonInstant `json:"date"`
		Amount jsonFloat   `json:"amount"`
		Weight jsonFloat   `json:"weight"`
	}
	flows := make([]flow, 0, len(md.dates))
	for _, on := range md.dates {
		flows = append(flows, flow{
			Date:   jsonInstant(on),
			Amount: jsonFloat(md.net[on]),
			Weight: jsonFloat(md.Weight(on)),
		})
	}

	var w jsonObjectWriter
	w.Append("period", md.period)
	w.Append("marketValue", md.marketValue)
	w.Float("epsilon", float64(md.epsilon))
	w.Append("netCashflows", flows)
	w.Float("netCashflowTotal", float64(md.netTotal))
	w.Append("adjustedPeriod", md.adjustedPeriod)
	w.Float("adjustedNetCashflow", float64(md.adjustedNet))
	w.Float("gainOrLoss", float64(md.gainOrLoss))
	w.Float("averageCapital", float64(md.averageCapital))
	w.Float("performance", float64(md.performance))
	return w.MarshalJSON()
}

var (
	_ json.Marshaler = Period{}
	_ json.Marshaler = (*ModifiedDietz[float64])(nil)
)
