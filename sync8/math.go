package sync8

import "math"

func dbToPower(db float64) float64 {
	return math.Pow(10, db/10)
}

func log10(x float64) float64 {
	if x <= 0 {
		return -24
	}
	return math.Log10(x)
}
