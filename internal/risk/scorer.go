package risk

import (
	"math"

	"github.com/strokewatch/platform/internal/record"
)

// Factor weights. They sum to 1.0, so a snapshot that saturates every
// sub-score yields exactly 100.
const (
	weightAge          = 0.15
	weightHypertension = 0.20
	weightHeartDisease = 0.20
	weightGlucose      = 0.15
	weightBMI          = 0.15
	weightSmoking      = 0.15
)

// Normal clinical ranges used for normalization
const (
	glucoseNormalLow  = 70.0
	glucoseNormalHigh = 125.0
	bmiNormalLow      = 18.5
	bmiNormalHigh     = 30.0
)

// Factor is one weighted component of a risk score, with its normalized
// sub-score in [0,100].
type Factor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Value  float64 `json:"value"`
}

// Score maps a snapshot to a stroke-risk score in [0,100], rounded to
// two decimal places. The score is a weighted sum of independently
// normalized sub-scores; a missing glucose or BMI value skips that term
// entirely rather than contributing zero input.
func Score(s *record.Snapshot) float64 {
	total := 0.0
	for _, f := range Factors(s) {
		total += f.Value * f.Weight
	}
	return round2(total)
}

// Factors returns the per-factor breakdown behind Score. Skipped terms
// (missing glucose or BMI) are omitted.
func Factors(s *record.Snapshot) []Factor {
	factors := []Factor{
		{Name: "age", Weight: weightAge, Value: ageScore(s.Age)},
		{Name: "hypertension", Weight: weightHypertension, Value: boolScore(s.Hypertension)},
		{Name: "heart_disease", Weight: weightHeartDisease, Value: boolScore(s.HeartDisease)},
	}

	if s.AvgGlucoseLevel != nil {
		factors = append(factors, Factor{Name: "glucose", Weight: weightGlucose, Value: glucoseScore(*s.AvgGlucoseLevel)})
	}
	if s.BMI != nil {
		factors = append(factors, Factor{Name: "bmi", Weight: weightBMI, Value: bmiScore(*s.BMI)})
	}

	factors = append(factors, Factor{Name: "smoking", Weight: weightSmoking, Value: smokingScore(s.SmokingStatus)})
	return factors
}

func ageScore(age int) float64 {
	return math.Min(float64(age)/100*100, 100)
}

func boolScore(present bool) float64 {
	if present {
		return 100
	}
	return 0
}

func glucoseScore(glucose float64) float64 {
	switch {
	case glucose > glucoseNormalHigh:
		return math.Min((glucose-glucoseNormalHigh)/175*100, 100)
	case glucose < glucoseNormalLow:
		return math.Min((glucoseNormalLow-glucose)/glucoseNormalLow*100, 100)
	default:
		return 0
	}
}

func bmiScore(bmi float64) float64 {
	switch {
	case bmi > bmiNormalHigh:
		return math.Min((bmi-bmiNormalHigh)/20*100, 100)
	case bmi < bmiNormalLow:
		return math.Min((bmiNormalLow-bmi)/bmiNormalLow*100, 100)
	default:
		return 0
	}
}

func smokingScore(status record.SmokingStatus) float64 {
	switch status {
	case record.SmokingSmokes:
		return 100
	case record.SmokingFormerly:
		return 50
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
