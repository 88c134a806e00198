package scheduler

import "github.com/ItsNotGoodName/riverbar/internal/block"

func gcd(a, b uint) uint {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Period returns the greatest common divisor of the nonzero block intervals.
// It is 0 when no block is periodic.
func Period(blocks block.Set) uint {
	// gcd(x, 0) == x
	var period uint
	for _, b := range blocks.All() {
		if b.Periodic() {
			period = gcd(period, b.Interval)
		}
	}
	return period
}
