package dietz

import (
	"slices"
	"time"
)

// DefaultEpsilon is the magnitude at or below which a cash flow is ignored.
const DefaultEpsilon = 0.0001

// Float is the set of floating-point types the engine can compute with.
type Float interface {
	~float32 | ~float64
}

// MarketValueDelta holds the market values at the start and at the end of a
// period, in a single currency.
type MarketValueDelta[T Float] struct {
	Start, End T
}

// CashflowMap maps the instant of an external cash flow to its signed amount.
// Contributions are positive, withdrawals are negative.
//
// The engine keys its maps by UTC instants: keys that denote the same instant
// in different locations are merged and their amounts summed.
type CashflowMap[T Float] map[time.Time]T

// Option configures the construction of a ModifiedDietz.
type Option[T Float] func(*ModifiedDietz[T])

// WithEpsilon sets the threshold below which cash flows are treated as absent.
// It must be within [0, 1].
func WithEpsilon[T Float](epsilon T) Option[T] {
	return func(md *ModifiedDietz[T]) { md.epsilon = epsilon }
}

// ModifiedDietz computes the Modified Dietz rate of return over a period.
//
// All values are derived once in the constructor: an instance is immutable
// and can be read concurrently.
type ModifiedDietz[T Float] struct {
	// inputs
	period      Period
	marketValue MarketValueDelta[T]
	raw         CashflowMap[T]
	epsilon     T

	// derived
	net            CashflowMap[T]
	dates          []time.Time
	netTotal       T
	adjustedPeriod Period
	adjustedNet    T
	gainOrLoss     T
	averageCapital T
	performance    T
}

// New returns a ModifiedDietz for the period, the market values at its
// boundaries, and the raw cash flows (nil means none). The cash flows are
// copied with their instants in UTC.
//
// It fails with ErrInvalidPeriod if the period does not end strictly after
// it starts, and with ErrInvalidEpsilon if the epsilon is outside [0, 1].
func New[T Float](period Period, marketValue MarketValueDelta[T], rawCashflowMap CashflowMap[T], opts ...Option[T]) (*ModifiedDietz[T], error) {
	md := &ModifiedDietz[T]{
		period:      period,
		marketValue: marketValue,
		raw:         make(CashflowMap[T], len(rawCashflowMap)),
		epsilon:     DefaultEpsilon,
	}
	for _, opt := range opts {
		opt(md)
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if err := validateEpsilon(md.epsilon); err != nil {
		return nil, err
	}
	for on, amount := range rawCashflowMap {
		on = on.UTC()
		md.raw[on] += amount
	}
	md.derive()
	return md, nil
}

// NewFromValues is like New but takes the start and end market values directly.
func NewFromValues[T Float](period Period, startValue, endValue T, cashflowMap CashflowMap[T], opts ...Option[T]) (*ModifiedDietz[T], error) {
	return New(period, MarketValueDelta[T]{Start: startValue, End: endValue}, cashflowMap, opts...)
}

// derive computes every derived value, each from the previous ones.
func (md *ModifiedDietz[T]) derive() {
	md.net = md.filter()

	md.dates = make([]time.Time, 0, len(md.net))
	for on := range md.net {
		md.dates = append(md.dates, on)
	}
	slices.SortFunc(md.dates, func(a, b time.Time) int { return a.Compare(b) })

	for _, on := range md.dates {
		md.netTotal += md.net[on]
	}

	md.adjustedPeriod = md.adjust()

	// summing in date order keeps the result independent of map iteration.
	for _, on := range md.dates {
		md.adjustedNet += md.net[on] * md.Weight(on)
	}

	md.gainOrLoss = md.marketValue.End - md.marketValue.Start - md.netTotal
	md.averageCapital = md.marketValue.Start + md.adjustedNet
	md.performance = md.gainOrLoss / md.averageCapital
}

// filter keeps the flows within (start, end] whose magnitude exceeds epsilon.
func (md *ModifiedDietz[T]) filter() CashflowMap[T] {
	net := make(CashflowMap[T])
	for on, amount := range md.raw {
		if md.period.Contains(on) && md.epsilon < abs(amount) {
			net[on] = amount
		}
	}
	return net
}

// adjust moves the start (resp. end) of the period to the first (resp. last)
// net cash flow when the starting (resp. ending) market value is zero.
func (md *ModifiedDietz[T]) adjust() Period {
	adjusted := md.period
	if len(md.dates) == 0 {
		return adjusted
	}
	if md.marketValue.Start == 0 {
		adjusted.Start = md.dates[0]
	}
	if md.marketValue.End == 0 {
		adjusted.End = md.dates[len(md.dates)-1]
	}
	return adjusted
}

// Weight returns the fraction of the adjusted period remaining after 'on':
// 1 at the adjusted start, 0 at the adjusted end.
//
// A zero length adjusted period yields NaN or ±Inf.
func (md *ModifiedDietz[T]) Weight(on time.Time) T {
	duration := seconds(md.adjustedPeriod.Start, md.adjustedPeriod.End)
	elapsed := seconds(md.adjustedPeriod.Start, on)
	return T((duration - elapsed) / duration)
}

// Period returns the measurement period.
func (md *ModifiedDietz[T]) Period() Period { return md.period }

// MarketValue returns the market values at the period boundaries.
func (md *ModifiedDietz[T]) MarketValue() MarketValueDelta[T] { return md.marketValue }

// RawCashflowMap returns a copy of the cash flows as supplied.
func (md *ModifiedDietz[T]) RawCashflowMap() CashflowMap[T] { return clone(md.raw) }

// Epsilon returns the threshold used to discard negligible cash flows.
func (md *ModifiedDietz[T]) Epsilon() T { return md.epsilon }

// NetCashflowMap returns a copy of the cash flows retained for the calculation.
func (md *ModifiedDietz[T]) NetCashflowMap() CashflowMap[T] { return clone(md.net) }

// OrderedCashflowDates returns the dates of the net cash flows in ascending order.
func (md *ModifiedDietz[T]) OrderedCashflowDates() []time.Time { return slices.Clone(md.dates) }

// NetCashflowTotal is the net external flow (F) over the period.
func (md *ModifiedDietz[T]) NetCashflowTotal() T { return md.netTotal }

// AdjustedPeriod is the period actually used to weight the cash flows.
func (md *ModifiedDietz[T]) AdjustedPeriod() Period { return md.adjustedPeriod }

// AdjustedNetCashflow is the sum of each net cash flow times its weight,
// also known as the total time-weighted cash flow.
func (md *ModifiedDietz[T]) AdjustedNetCashflow() T { return md.adjustedNet }

// GainOrLoss is the change in market value not explained by cash flows.
func (md *ModifiedDietz[T]) GainOrLoss() T { return md.gainOrLoss }

// AverageCapital approximates the capital at work during the period.
func (md *ModifiedDietz[T]) AverageCapital() T { return md.averageCapital }

// Performance is the rate of return (R) over the period.
//
// It is NaN or ±Inf when the average capital is zero.
func (md *ModifiedDietz[T]) Performance() T { return md.performance }

func abs[T Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func clone[T Float](m CashflowMap[T]) CashflowMap[T] {
	c := make(CashflowMap[T], len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// seconds returns b-a in seconds without going through time.Duration, which
// overflows after about 292 years.
func seconds(a, b time.Time) float64 {
	return float64(b.Unix()-a.Unix()) + float64(b.Nanosecond()-a.Nanosecond())/1e9
}
