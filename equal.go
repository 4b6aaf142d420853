package dietz

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether md and other share the same period, market values and
// raw cash flows. Epsilon and the derived values are not compared: two
// engines differing only by epsilon are equal.
func (md *ModifiedDietz[T]) Equal(other *ModifiedDietz[T]) bool {
	if md == nil || other == nil {
		return md == other
	}
	if !md.period.Equal(other.period) || md.marketValue != other.marketValue {
		return false
	}
	a, b := instants(md.raw), instants(other.raw)
	if len(a) != len(b) {
		return false
	}
	for on, amount := range a {
		if v, ok := b[on]; !ok || v != amount {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal.
func (md *ModifiedDietz[T]) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		d.Write(buf[:])
	}
	writeTime := func(t time.Time) {
		write(uint64(t.Unix()))
		write(uint64(t.Nanosecond()))
	}

	writeTime(md.period.Start)
	writeTime(md.period.End)
	write(floatBits(md.marketValue.Start))
	write(floatBits(md.marketValue.End))

	// map entries are combined with a commutative sum.
	var entries uint64
	flows := instants(md.raw)
	for on, amount := range flows {
		var e [24]byte
		binary.LittleEndian.PutUint64(e[0:], uint64(on.sec))
		binary.LittleEndian.PutUint64(e[8:], uint64(on.nsec))
		binary.LittleEndian.PutUint64(e[16:], floatBits(amount))
		entries += xxhash.Sum64(e[:])
	}
	write(uint64(len(flows)))
	write(entries)
	return d.Sum64()
}

// instant identifies a point in time regardless of its location.
type instant struct {
	sec  int64
	nsec int
}

func instants[T Float](m CashflowMap[T]) map[instant]T {
	res := make(map[instant]T, len(m))
	for on, amount := range m {
		res[instant{on.Unix(), on.Nanosecond()}] = amount
	}
	return res
}

// floatBits returns the bits of v with -0 folded onto 0, since they compare equal.
func floatBits[T Float](v T) uint64 {
	f := float64(v)
	if f == 0 {
		f = 0
	}
	return math.Float64bits(f)
}
