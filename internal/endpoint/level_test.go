package endpoint

import (
	"math"
	"testing"
)

func TestScalarDecibelRoundTrip(t *testing.T) {
	for i := 1; i <= 100; i++ {
		v := float64(i) / 100
		got := DBToScalar(ScalarToDB(v))
		if math.Abs(got-v) > 1e-9 {
			t.Errorf("round trip of %f gave %f", v, got)
		}
	}
}

func TestDBToScalar(t *testing.T) {
	tests := []struct {
		name string
		db   float64
		want float64
	}{
		{"unity", 0, 1},
		{"minus 20 dB", -20, 0.1},
		{"minus 6 dB", -6, 0.501187},
		{"mean of -6 and -3", -4.5, 0.595662},
		{"plus 20 dB", 20, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DBToScalar(tt.db)
			if math.Abs(got-tt.want) > 1e-5 {
				t.Errorf("DBToScalar(%f) = %f, want %f", tt.db, got, tt.want)
			}
		})
	}
}

func TestScalarToDBOfZeroIsNegativeInfinity(t *testing.T) {
	if got := ScalarToDB(0); !math.IsInf(got, -1) {
		t.Errorf("ScalarToDB(0) = %f, want -Inf", got)
	}
}

func TestValidScalar(t *testing.T) {
	tests := []struct {
		v    float64
		want bool
	}{
		{0, true},
		{0.5, true},
		{1, true},
		{-0.01, false},
		{1.01, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}

	for _, tt := range tests {
		if got := validScalar(tt.v); got != tt.want {
			t.Errorf("validScalar(%f) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
