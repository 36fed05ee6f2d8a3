package endpoint

import "math"

// DBToScalar converts a decibel level to a linear scalar
func DBToScalar(db float64) float64 {
	return math.Pow(10, db/20)
}

// ScalarToDB converts a linear scalar to a decibel level
func ScalarToDB(scalar float64) float64 {
	return 20 * math.Log10(scalar)
}

// validScalar reports whether v is a usable master volume
func validScalar(v float64) bool {
	return !math.IsNaN(v) && v >= 0.0 && v <= 1.0
}
