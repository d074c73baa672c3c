package models

// GradeScale maps raw 2..5 scores to GPA points. Exactly one row is
// meant to be active school-wide; the repository materialises this
// default when none exists.
type GradeScale struct {
	ID     int64   `db:"id" json:"id"`
	Name   string  `db:"name" json:"name"`
	P2     float64 `db:"p2" json:"p2"`
	P3     float64 `db:"p3" json:"p3"`
	P4     float64 `db:"p4" json:"p4"`
	P5     float64 `db:"p5" json:"p5"`
	Active bool    `db:"active" json:"active"`
}

// DefaultGradeScale mirrors the field defaults of the legacy system.
func DefaultGradeScale() GradeScale {
	return GradeScale{Name: "Default", P2: 0.00, P3: 2.50, P4: 3.50, P5: 5.00, Active: true}
}

// PointFor maps an integer score to GPA points. Unknown scores map to 0.
func (s GradeScale) PointFor(score int) float64 {
	switch score {
	case 2:
		return s.P2
	case 3:
		return s.P3
	case 4:
		return s.P4
	case 5:
		return s.P5
	default:
		return 0
	}
}

// GPAConfig holds category weights for the point-weighted strategy
// (sum of weights is expected to be close to 1.0).
type GPAConfig struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	WeightDaily float64 `db:"weight_daily" json:"weight_daily"`
	WeightExam  float64 `db:"weight_exam" json:"weight_exam"`
	WeightFinal float64 `db:"weight_final" json:"weight_final"`
	Active      bool    `db:"active" json:"active"`
}

// DefaultGPAConfig mirrors the field defaults of the legacy system.
func DefaultGPAConfig() GPAConfig {
	return GPAConfig{Name: "Default", WeightDaily: 0.50, WeightExam: 0.30, WeightFinal: 0.20, Active: true}
}

// GradingPolicy bundles the active scale and weights; it is loaded once
// at the edge and passed into aggregation explicitly rather than looked
// up inside the computation.
type GradingPolicy struct {
	Scale   GradeScale `json:"scale"`
	Weights GPAConfig  `json:"weights"`
}
