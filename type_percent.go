package dietz

import (
	"fmt"
	"math"
)

// Percent is a rate expressed in percent: 5 means 5%.
type Percent float64

// PercentOf converts a ratio (0.05) into a Percent (5%).
func PercentOf[T Float](ratio T) Percent { return Percent(100 * float64(ratio)) }

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	if math.IsNaN(float64(p)) || math.IsNaN(float64(q)) || math.IsInf(float64(p), 0) || math.IsInf(float64(q), 0) {
		return p == q
	}
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}
