package insurance

import (
	"math"
	"sort"
	"strings"
)

// Estimates below this floor are clamped; the model never returns a negative
// or implausibly small cost.
const costFloor = 1000.0

// coefficientTable holds the fixed linear-model constants. Northeast is the
// reference region and contributes no offset.
type coefficientTable struct {
	intercept       float64
	age             float64
	sexMale         float64
	bmi             float64
	children        float64
	smokerYes       float64
	regionNorthwest float64
	regionSoutheast float64
	regionSouthwest float64
}

// Constants derived from analysis of a standard insurance charges dataset.
// Smoking is by far the strongest predictor.
var defaultCoefficients = coefficientTable{
	intercept:       -11938.54,
	age:             256.85,
	sexMale:         -131.31,
	bmi:             339.19,
	children:        475.50,
	smokerYes:       23848.53,
	regionNorthwest: -352.96,
	regionSoutheast: -1035.02,
	regionSouthwest: -960.05,
}

// Input holds the six demographic and health attributes of one estimate.
// Range validation (age 18-100, bmi 10-60) happens at the request edge.
type Input struct {
	Age      int
	Sex      string // male | female
	BMI      float64
	Children int
	Smoker   string // yes | no
	Region   string // northeast | northwest | southeast | southwest
}

// Factor is one entry of the feature-importance table.
type Factor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Estimator computes insurance cost estimates from the fixed coefficient
// table. It is pure and safe for concurrent use; construct it once at
// process start.
type Estimator struct {
	coeffs coefficientTable
}

// NewEstimator returns an Estimator over the fixed coefficient table.
func NewEstimator() *Estimator {
	return &Estimator{coeffs: defaultCoefficients}
}

// Estimate computes the yearly insurance cost for the given attributes.
// Identical inputs always produce the identical value, clamped to the floor
// and rounded to 2 decimal places.
func (e *Estimator) Estimate(in Input) float64 {
	cost := e.coeffs.intercept +
		float64(in.Age)*e.coeffs.age +
		in.BMI*e.coeffs.bmi +
		float64(in.Children)*e.coeffs.children

	if strings.EqualFold(in.Sex, "male") {
		cost += e.coeffs.sexMale
	}
	if strings.EqualFold(in.Smoker, "yes") {
		cost += e.coeffs.smokerYes
	}

	switch strings.ToLower(in.Region) {
	case "northwest":
		cost += e.coeffs.regionNorthwest
	case "southeast":
		cost += e.coeffs.regionSoutheast
	case "southwest":
		cost += e.coeffs.regionSouthwest
	}

	if cost < costFloor {
		cost = costFloor
	}
	return math.Round(cost*100) / 100
}

// FeatureImportance returns the coefficients' absolute magnitudes ranked
// descending, the three region weights collapsed to their mean. Ties keep
// the underlying table order.
func (e *Estimator) FeatureImportance() []Factor {
	regionMean := (math.Abs(e.coeffs.regionNorthwest) +
		math.Abs(e.coeffs.regionSoutheast) +
		math.Abs(e.coeffs.regionSouthwest)) / 3

	factors := []Factor{
		{Name: "Smoking Status", Weight: math.Abs(e.coeffs.smokerYes)},
		{Name: "BMI", Weight: math.Abs(e.coeffs.bmi)},
		{Name: "Age", Weight: math.Abs(e.coeffs.age)},
		{Name: "Number of Children", Weight: math.Abs(e.coeffs.children)},
		{Name: "Region", Weight: regionMean},
		{Name: "Sex", Weight: math.Abs(e.coeffs.sexMale)},
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Weight > factors[j].Weight
	})
	return factors
}

// RiskFactor is a user-facing explanation of what drives an estimate up.
type RiskFactor struct {
	Factor         string `json:"factor"`
	Impact         string `json:"impact"`
	Recommendation string `json:"recommendation"`
}

// RiskFactors lists the notable cost drivers present in the input.
func RiskFactors(in Input) []RiskFactor {
	var risks []RiskFactor

	if strings.EqualFold(in.Smoker, "yes") {
		risks = append(risks, RiskFactor{
			Factor:         "Smoking",
			Impact:         "Very High",
			Recommendation: "Quitting smoking can significantly reduce insurance costs",
		})
	}

	if in.BMI > 30 {
		risks = append(risks, RiskFactor{
			Factor:         "High BMI",
			Impact:         "High",
			Recommendation: "Maintaining a healthy weight can lower costs",
		})
	} else if in.BMI > 25 {
		risks = append(risks, RiskFactor{
			Factor:         "Overweight BMI",
			Impact:         "Moderate",
			Recommendation: "Consider weight management for better rates",
		})
	}

	if in.Age > 50 {
		risks = append(risks, RiskFactor{
			Factor:         "Age",
			Impact:         "Moderate",
			Recommendation: "Regular health checkups are important",
		})
	}

	return risks
}
