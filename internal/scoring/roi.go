package scoring

import (
	"fmt"
	"math"

	"funnelworks/internal/model"
)

// ROIConfig holds the constants of the ROI formula
type ROIConfig struct {
	TargetConversion float64 `yaml:"target_conversion"` // percent
	Investment       float64 `yaml:"investment"`        // dollars
}

// DefaultROIConfig returns the stock constants
func DefaultROIConfig() ROIConfig {
	return ROIConfig{
		TargetConversion: 67,
		Investment:       3000,
	}
}

// NotRecoverable labels a payback that never happens
const NotRecoverable = "not recoverable"

// ValidateROIInputs requires every input to be strictly positive and finite.
// There is no fixed upper bound; CalculateROI rejects inputs whose results overflow.
func ValidateROIInputs(in model.ROIInputs) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"currentRevenue", in.CurrentRevenue},
		{"currentConversion", in.CurrentConversion},
		{"trafficVolume", in.TrafficVolume},
		{"averageValue", in.AverageValue},
	}
	for _, f := range fields {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s", ErrInvalidInputs, f.name)
		}
	}
	return nil
}

// CalculateROI evaluates the closed-form projection.
// Payback is only defined when the monthly increase is positive.
func CalculateROI(cfg ROIConfig, in model.ROIInputs) (*model.ROIResult, error) {
	if err := ValidateROIInputs(in); err != nil {
		return nil, err
	}
	if cfg.Investment <= 0 || cfg.TargetConversion <= 0 {
		return nil, fmt.Errorf("invalid ROI config: target=%v investment=%v", cfg.TargetConversion, cfg.Investment)
	}

	current := in.TrafficVolume * in.CurrentConversion / 100 * in.AverageValue
	projected := in.TrafficVolume * cfg.TargetConversion / 100 * in.AverageValue
	monthly := projected - current
	annual := monthly * 12

	res := &model.ROIResult{
		CurrentMonthlyRevenue:   current,
		ProjectedMonthlyRevenue: projected,
		MonthlyIncrease:         monthly,
		AnnualIncrease:          annual,
		ROIPercent:              (annual - cfg.Investment) / cfg.Investment * 100,
		TargetConversion:        cfg.TargetConversion,
		Investment:              cfg.Investment,
		PaybackLabel:            NotRecoverable,
	}
	if monthly > 0 {
		months := cfg.Investment / monthly
		res.PaybackMonths = &months
		res.Recoverable = true
		res.PaybackLabel = PaybackLabel(months)
	}
	if err := checkFinite(res); err != nil {
		return nil, err
	}
	return res, nil
}

// checkFinite rejects inputs whose products overflow float64
func checkFinite(res *model.ROIResult) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"currentMonthlyRevenue", res.CurrentMonthlyRevenue},
		{"projectedMonthlyRevenue", res.ProjectedMonthlyRevenue},
		{"monthlyIncrease", res.MonthlyIncrease},
		{"annualIncrease", res.AnnualIncrease},
		{"roiPercent", res.ROIPercent},
	}
	if res.PaybackMonths != nil {
		fields = append(fields, struct {
			name  string
			value float64
		}{"paybackMonths", *res.PaybackMonths})
	}
	for _, f := range fields {
		if math.IsInf(f.value, 0) || math.IsNaN(f.value) {
			return fmt.Errorf("%w: %s overflows", ErrInvalidInputs, f.name)
		}
	}
	return nil
}

// PaybackLabel renders a payback period: days under one month, else months to one decimal.
func PaybackLabel(months float64) string {
	if months < 1 {
		return fmt.Sprintf("%d days", int(math.Round(months*30)))
	}
	return fmt.Sprintf("%.1f months", months)
}
