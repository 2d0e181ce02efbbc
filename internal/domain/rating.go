package domain

// RoundRating returns the mean of count ratings summing to sum, rounded half
// up to one decimal place. It returns 0 when count is 0.
//
// The rounding is done on integers (tenths = (20*sum + count) / (2*count)) so
// means that land exactly on .x5, such as 17/4 = 4.25, always round up to
// 4.3 instead of depending on the binary representation of the float.
func RoundRating(sum, count int64) float64 {
	if count <= 0 || sum <= 0 {
		return 0
	}
	tenths := (20*sum + count) / (2 * count)
	return float64(tenths) / 10
}
