package utils

import "time"

// Overlaps reports whether two half-open date ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back stays, where one check_out equals
// the next check_in, do not overlap: same-day room turnover is allowed.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Nights returns the number of whole days between check-in and check-out.
// Callers must have validated checkOut > checkIn; the result for an
// inverted range is negative.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}
