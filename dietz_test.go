package dietz

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// june is the period used by most tests: 29 days.
var june = Period{
	Start: MustParseInstant("2020-06-01T12:00:00Z"),
	End:   MustParseInstant("2020-06-30T12:00:00Z"),
}

func mustNew(t *testing.T, p Period, start, end float64, flows CashflowMap[float64], opts ...Option[float64]) *ModifiedDietz[float64] {
	t.Helper()
	md, err := NewFromValues(p, start, end, flows, opts...)
	require.NoError(t, err)
	return md
}

func TestNew_InvalidPeriod(t *testing.T) {
	beg := MustParseInstant("2020-06-01T12:00:00Z")
	tests := []struct {
		name   string
		period Period
	}{
		{"empty", Period{Start: beg, End: beg}},
		{"reversed", Period{Start: beg, End: beg.Add(-time.Second)}},
		{"zero", Period{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := New(tt.period, MarketValueDelta[float64]{Start: 100, End: 100}, nil)
			require.ErrorIs(t, err, ErrInvalidPeriod)
			assert.Nil(t, md)
		})
	}
}

func TestNew_InvalidEpsilon(t *testing.T) {
	for _, eps := range []float64{-0.0001, 1.01, math.NaN(), math.Inf(1)} {
		md, err := NewFromValues(june, 100, 100, nil, WithEpsilon(eps))
		require.ErrorIs(t, err, ErrInvalidEpsilon, "epsilon %v", eps)
		assert.Nil(t, md)
	}
	for _, eps := range []float64{0, 0.5, 1} {
		md, err := NewFromValues(june, 100, 100, nil, WithEpsilon(eps))
		require.NoError(t, err, "epsilon %v", eps)
		assert.Equal(t, eps, md.Epsilon())
	}
}

func TestNew_InvalidPeriodWinsOverEpsilon(t *testing.T) {
	_, err := NewFromValues(Period{}, 100, 100, nil, WithEpsilon(2.0))
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestNew_Defaults(t *testing.T) {
	md := mustNew(t, june, 100, 100, nil)
	assert.Equal(t, DefaultEpsilon, md.Epsilon())
	assert.Empty(t, md.RawCashflowMap())
	assert.Empty(t, md.NetCashflowMap())
	assert.Empty(t, md.OrderedCashflowDates())
	assert.True(t, md.AdjustedPeriod().Equal(june))
}

func TestPerformance(t *testing.T) {
	tests := []struct {
		name        string
		start, end  float64
		flows       CashflowMap[float64]
		netTotal    float64
		adjustedNet float64
		want        float64
	}{
		{
			name:  "no change",
			start: 100, end: 100,
			want: 0,
		},
		{
			name:  "no transaction",
			start: 100, end: 200,
			want: 1.0,
		},
		{
			name:  "flow at exact start is ignored",
			start: 100, end: 200,
			flows: CashflowMap[float64]{MustParseInstant("2020-06-01T12:00:00Z"): 100},
			want:  1.0,
		},
		{
			name:  "flow one second after start",
			start: 100, end: 200,
			flows:       CashflowMap[float64]{MustParseInstant("2020-06-01T12:00:01Z"): 100},
			netTotal:    100,
			adjustedNet: 100,
			want:        0,
		},
		{
			name:  "flow midway",
			start: 100, end: 200,
			flows:       CashflowMap[float64]{MustParseInstant("2020-06-15T12:00:00Z"): 100},
			netTotal:    100,
			adjustedNet: 100 * 15.0 / 29,
			want:        0,
		},
		{
			name:  "flow at end",
			start: 100, end: 200,
			flows:    CashflowMap[float64]{MustParseInstant("2020-06-30T12:00:00Z"): 100},
			netTotal: 100,
			want:     0,
		},
		{
			name:  "positive return, withdrawal at half time",
			start: 105, end: 100,
			flows:       CashflowMap[float64]{MustParseInstant("2020-06-16T00:00:00Z"): -10},
			netTotal:    -10,
			adjustedNet: -5,
			want:        0.05,
		},
		{
			name:  "negative return, withdrawal at half time",
			start: 105, end: 90,
			flows:       CashflowMap[float64]{MustParseInstant("2020-06-16T00:00:00Z"): -10},
			netTotal:    -10,
			adjustedNet: -5,
			want:        -0.05,
		},
		{
			name:  "two transactions",
			start: 100 * 215, end: 90 * 190,
			flows: CashflowMap[float64]{
				MustParseInstant("2020-06-07T12:00:00Z"): -1095,
				MustParseInstant("2020-06-13T12:00:00Z"): +350,
			},
			netTotal:    -1095 + 350,
			adjustedNet: -663.28,
			want:        -0.175,
		},
		{
			name:  "flow after end is ignored",
			start: 100, end: 100,
			flows: CashflowMap[float64]{MustParseInstant("2020-06-30T12:00:01Z"): 1},
			want:  0,
		},
		{
			name:  "zero amount is ignored",
			start: 100, end: 100,
			flows: CashflowMap[float64]{MustParseInstant("2020-06-30T12:00:00Z"): 0},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := mustNew(t, june, tt.start, tt.end, tt.flows)
			assert.InDelta(t, tt.netTotal, md.NetCashflowTotal(), 1e-9)
			assert.InDelta(t, tt.adjustedNet, md.AdjustedNetCashflow(), 0.01)
			assert.InDelta(t, tt.want, md.Performance(), 0.001)
		})
	}
}

func TestPerformance_Float32(t *testing.T) {
	md, err := NewFromValues[float32](june, 105, 100, CashflowMap[float32]{
		MustParseInstant("2020-06-16T00:00:00Z"): -10,
	})
	require.NoError(t, err)
	assert.Equal(t, float32(-10), md.NetCashflowTotal())
	assert.InDelta(t, -5, md.AdjustedNetCashflow(), 0.01)
	assert.InDelta(t, 0.05, md.Performance(), 0.001)
}

func TestLiquidation(t *testing.T) {
	tests := []struct {
		name         string
		start, end   string
		transactedAt string
	}{
		{"near start", "2020-10-01T19:00:00Z", "2020-11-01T19:00:00Z", "2020-10-01T21:00:00Z"},
		{"halfway", "2020-09-01T19:00:00Z", "2020-10-01T19:00:00Z", "2020-09-15T19:00:00Z"},
		{"near end", "2020-10-01T19:00:00Z", "2020-11-01T19:00:00Z", "2020-11-01T17:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period := Period{Start: MustParseInstant(tt.start), End: MustParseInstant(tt.end)}
			md := mustNew(t, period, 30000, 0, CashflowMap[float64]{
				MustParseInstant(tt.transactedAt): 0,      // sell security for cash
				period.End:                        -33000, // always flow out at end of period
			})
			assert.Equal(t, 3000.0, md.GainOrLoss())
			assert.Equal(t, 30000.0, md.AverageCapital())
			assert.InDelta(t, 0.1, md.Performance(), 0.001)
			assert.Len(t, md.NetCashflowMap(), 1)
			assert.True(t, md.AdjustedPeriod().Equal(period))
		})
	}
}

func TestNetCashflowMap_Filter(t *testing.T) {
	start, end := june.Start, june.End
	raw := CashflowMap[float64]{
		start:                     10,   // start is excluded
		start.Add(-time.Hour):     10,   // before
		start.Add(time.Second):    10,   // kept
		end:                       -10,  // end is included
		end.Add(time.Nanosecond):  10,   // after
		start.Add(24 * time.Hour): 0.5,  // exactly epsilon
		start.Add(48 * time.Hour): -0.5, // exactly epsilon
		start.Add(72 * time.Hour): 0.51, // kept
	}
	md := mustNew(t, june, 100, 100, raw, WithEpsilon(0.5))

	want := CashflowMap[float64]{
		start.Add(time.Second):    10,
		start.Add(72 * time.Hour): 0.51,
		end:                       -10,
	}
	require.Equal(t, "", cmp.Diff(want, md.NetCashflowMap()))
	require.Equal(t, "", cmp.Diff(raw, md.RawCashflowMap()))
	require.Equal(t, "", cmp.Diff(
		[]time.Time{start.Add(time.Second), start.Add(72 * time.Hour), end},
		md.OrderedCashflowDates(),
	))
	assert.InDelta(t, 0.51, md.NetCashflowTotal(), 1e-9)
}

func TestNetCashflowMap_NonFinite(t *testing.T) {
	mid := MustParseInstant("2020-06-16T00:00:00Z")
	md := mustNew(t, june, 100, 100, CashflowMap[float64]{mid: math.NaN()})
	assert.Empty(t, md.NetCashflowMap(), "NaN is never above epsilon")

	md = mustNew(t, june, 100, 100, CashflowMap[float64]{mid: math.Inf(1)})
	assert.Len(t, md.NetCashflowMap(), 1)
	assert.True(t, math.IsInf(md.NetCashflowTotal(), 1))
	assert.True(t, math.IsNaN(md.Performance()))
}

func TestWeight(t *testing.T) {
	start := MustParseInstant("2021-01-01T00:00:00Z")
	period := Period{Start: start, End: start.Add(2 * time.Hour)}
	md := mustNew(t, period, 100, 100, nil)

	assert.Equal(t, 1.0, md.Weight(start))
	assert.Equal(t, 0.5, md.Weight(start.Add(time.Hour)))
	assert.Equal(t, 0.0, md.Weight(period.End))
	assert.Equal(t, 0.25, md.Weight(start.Add(90*time.Minute)))
}

func TestWeight_LongPeriod(t *testing.T) {
	// longer than what time.Duration can hold.
	period := Period{
		Start: time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	mid := time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC)
	md := mustNew(t, period, 100, 100, CashflowMap[float64]{mid: 10})
	assert.InDelta(t, 0.5, md.Weight(mid), 0.001)
	assert.InDelta(t, 5, md.AdjustedNetCashflow(), 0.01)
}

func TestAdjustedPeriod(t *testing.T) {
	first := MustParseInstant("2020-06-11T12:00:00Z")
	last := MustParseInstant("2020-06-21T12:00:00Z")
	flows := CashflowMap[float64]{first: 100, last: -50}

	tests := []struct {
		name       string
		start, end float64
		want       Period
	}{
		{"both values", 10, 10, june},
		{"funded during period", 0, 10, Period{Start: first, End: june.End}},
		{"liquidated during period", 10, 0, Period{Start: june.Start, End: last}},
		{"opened and closed during period", 0, 0, Period{Start: first, End: last}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := mustNew(t, june, tt.start, tt.end, flows)
			got := md.AdjustedPeriod()
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}

func TestFundedDuringPeriod(t *testing.T) {
	funded := MustParseInstant("2020-06-11T12:00:00Z")
	md := mustNew(t, june, 0, 110, CashflowMap[float64]{funded: 100})

	assert.Equal(t, 1.0, md.Weight(funded))
	assert.Equal(t, 100.0, md.AdjustedNetCashflow())
	assert.Equal(t, 10.0, md.GainOrLoss())
	assert.Equal(t, 100.0, md.AverageCapital())
	assert.InDelta(t, 0.1, md.Performance(), 1e-9)
}

// With a zero starting value and no net cash flow, the period is not
// adjusted and the average capital is zero.
func TestZeroStartWithoutCashflow(t *testing.T) {
	md := mustNew(t, june, 0, 100, nil)
	assert.True(t, md.AdjustedPeriod().Equal(june))
	assert.Equal(t, 0.0, md.AverageCapital())
	assert.True(t, math.IsInf(md.Performance(), 1))

	md = mustNew(t, june, 0, -100, nil)
	assert.True(t, math.IsInf(md.Performance(), -1))

	md = mustNew(t, june, 0, 0, CashflowMap[float64]{june.End.Add(time.Hour): 100})
	assert.True(t, md.AdjustedPeriod().Equal(june))
	assert.True(t, math.IsNaN(md.Performance()))
}

func TestCollapsedAdjustedPeriod(t *testing.T) {
	on := MustParseInstant("2020-06-16T00:00:00Z")
	md := mustNew(t, june, 0, 0, CashflowMap[float64]{on: 100})
	assert.True(t, md.AdjustedPeriod().Equal(Period{Start: on, End: on}))
	assert.True(t, math.IsNaN(md.AdjustedNetCashflow()))
	assert.Equal(t, -100.0, md.GainOrLoss())
	assert.True(t, math.IsNaN(md.Performance()))
}

func TestNoFlowUnchangedValue(t *testing.T) {
	for _, v := range []float64{1, 100, 1e9, -50} {
		md := mustNew(t, june, v, v, CashflowMap[float64]{june.Start: 10, june.End.Add(time.Second): 10})
		assert.Equal(t, 0.0, md.NetCashflowTotal())
		assert.Equal(t, 0.0, md.Performance(), "value %v", v)
	}
}

func TestOffsettingFlowsUnchangedValue(t *testing.T) {
	flows := CashflowMap[float64]{
		MustParseInstant("2020-06-05T00:00:00Z"): 10,
		MustParseInstant("2020-06-20T00:00:00Z"): -10,
	}
	for _, v := range []float64{1, 100, 1e9, -50} {
		md := mustNew(t, june, v, v, flows)
		require.Len(t, md.NetCashflowMap(), 2)
		assert.Equal(t, 0.0, md.NetCashflowTotal())
		assert.NotZero(t, md.AdjustedNetCashflow())
		assert.Equal(t, 0.0, md.GainOrLoss())
		assert.Equal(t, 0.0, md.Performance(), "value %v", v)
	}
}

func TestImmutable(t *testing.T) {
	mid := MustParseInstant("2020-06-16T00:00:00Z")
	raw := CashflowMap[float64]{mid: -10}
	md := mustNew(t, june, 105, 100, raw)

	raw[mid] = 1000
	md.NetCashflowMap()[mid] = 1000
	md.RawCashflowMap()[mid] = 1000
	md.OrderedCashflowDates()[0] = time.Time{}

	assert.Equal(t, -10.0, md.RawCashflowMap()[mid])
	assert.Equal(t, -10.0, md.NetCashflowMap()[mid])
	assert.True(t, md.OrderedCashflowDates()[0].Equal(mid))
	assert.InDelta(t, 0.05, md.Performance(), 0.001)
}

func TestConcurrentReads(t *testing.T) {
	md := mustNew(t, june, 105, 100, CashflowMap[float64]{MustParseInstant("2020-06-16T00:00:00Z"): -10})
	var wg sync.WaitGroup
	results := make([]float64, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = md.OrderedCashflowDates()
			_ = md.NetCashflowMap()
			results[i] = md.Performance()
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, md.Performance(), r)
	}
}

func TestNewFromValues(t *testing.T) {
	flows := CashflowMap[float64]{MustParseInstant("2020-06-16T00:00:00Z"): -10.0}
	a, err := NewFromValues(june, 105, 100, flows)
	require.NoError(t, err)
	b, err := New(june, MarketValueDelta[float64]{Start: 105, End: 100}, flows)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Performance(), b.Performance())
	assert.InDelta(t, 0.05, a.Performance(), 0.001)
}

func TestNew_SameInstantInTwoLocations(t *testing.T) {
	mid := MustParseInstant("2020-06-16T00:00:00Z")
	cest := time.FixedZone("CEST", 2*60*60)

	md := mustNew(t, june, 105, 100, CashflowMap[float64]{mid: -4, mid.In(cest): -6})
	assert.Equal(t, CashflowMap[float64]{mid: -10}, md.RawCashflowMap())
	assert.Equal(t, []time.Time{mid}, md.OrderedCashflowDates())
	assert.InDelta(t, 0.05, md.Performance(), 1e-9)

	merged := mustNew(t, june, 105, 100, CashflowMap[float64]{mid: -10})
	assert.True(t, md.Equal(merged))
	assert.Equal(t, merged.Hash(), md.Hash())
}
