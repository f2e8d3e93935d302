package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelworks/internal/model"
)

func quizAnswers(values ...int) map[string]model.Answer {
	answers := make(map[string]model.Answer, len(values))
	for i, v := range values {
		step := ConstellationSteps[i]
		answers[step.ID] = model.Answer{StepID: step.ID, Value: v, Tag: step.Options[v-1].Tag}
	}
	return answers
}

func TestLevelForBoundaries(t *testing.T) {
	cases := map[int]string{
		7:  "Dim Star",
		14: "Dim Star",
		15: "Glowing Ember",
		21: "Glowing Ember",
		22: "Bright Constellation",
		28: "Bright Constellation",
		29: "Master Constellation",
		35: "Master Constellation",
	}
	for score, want := range cases {
		assert.Equal(t, want, LevelFor(score).Name, "score %d", score)
	}
}

func TestScoreQuiz(t *testing.T) {
	res, err := ScoreQuiz(ConstellationSteps, quizAnswers(1, 2, 3, 4, 5, 1, 2))
	require.NoError(t, err)

	assert.Equal(t, 18, res.Score)
	assert.Equal(t, 35, res.MaxScore)
	assert.Equal(t, "Glowing Ember", res.Level)
	want := []string{
		"Your funnel lacks psychological foundation",
		"Surface-level psychological understanding",
		"Good urgency implementation",
		"Authority-based social validation",
		"Master-level objection alchemy",
		"Feature-focused, not value-focused",
		"Minimal optimization effort",
	}
	if diff := cmp.Diff(want, res.Insights); diff != "" {
		t.Errorf("insights mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreQuizAllMax(t *testing.T) {
	res, err := ScoreQuiz(ConstellationSteps, quizAnswers(5, 5, 5, 5, 5, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, 35, res.Score)
	assert.Equal(t, "Master Constellation", res.Level)
}

func TestScoreQuizRejectsIncompleteAnswers(t *testing.T) {
	answers := quizAnswers(3, 3, 3)
	_, err := ScoreQuiz(ConstellationSteps, answers)
	assert.ErrorIs(t, err, ErrMissingAnswer)

	answers = quizAnswers(3, 3, 3, 3, 3, 3, 3)
	answers["social_proof"] = model.Answer{StepID: "social_proof", Value: 9}
	_, err = ScoreQuiz(ConstellationSteps, answers)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func diagnosticAnswers(sevs ...model.Severity) map[string]model.Answer {
	answers := make(map[string]model.Answer, len(sevs))
	for i, sev := range sevs {
		step := AlchemySteps[i]
		for _, opt := range step.Options {
			if opt.Severity == sev {
				answers[step.ID] = model.Answer{StepID: step.ID, Value: opt.Value, Tag: opt.Tag, Severity: sev}
			}
		}
	}
	return answers
}

func TestScoreDiagnosticHealthRules(t *testing.T) {
	const (
		none     = model.SeverityNone
		minor    = model.SeverityMinor
		major    = model.SeverityMajor
		critical = model.SeverityCritical
	)
	cases := []struct {
		name   string
		sevs   []model.Severity
		health string
		score  int
	}{
		{"all clear", []model.Severity{none, none, none, none, none}, "Well-Optimized", 25},
		{"two minor", []model.Severity{minor, minor, none, none, none}, "Well-Optimized", 21},
		{"three minor", []model.Severity{minor, minor, minor, none, none}, "Needs Optimization", 19},
		{"one major", []model.Severity{major, none, none, none, none}, "Needs Optimization", 22},
		{"two major", []model.Severity{major, major, none, none, none}, "Major Issues", 19},
		{"critical beats everything", []model.Severity{critical, major, major, minor, minor}, "Critical Condition", 11},
		{"all critical", []model.Severity{critical, critical, critical, critical, critical}, "Critical Condition", 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ScoreDiagnostic(AlchemySteps, diagnosticAnswers(tc.sevs...))
			require.NoError(t, err)
			assert.Equal(t, tc.health, res.Health)
			assert.Equal(t, tc.score, res.TotalScore)
			assert.Equal(t, 25, res.MaxScore)
			assert.Len(t, res.Leaks, 5)
		})
	}
}

func TestScoreDiagnosticLeakDetails(t *testing.T) {
	res, err := ScoreDiagnostic(AlchemySteps, diagnosticAnswers(
		model.SeverityCritical, model.SeverityNone, model.SeverityMajor, model.SeverityMinor, model.SeverityNone))
	require.NoError(t, err)

	assert.Equal(t, 1, res.CriticalCount)
	assert.Equal(t, 1, res.MajorCount)
	assert.Equal(t, 1, res.MinorCount)

	want := model.LeakResult{
		StepID:    "traffic_source",
		Area:      "Traffic Source Quality",
		Severity:  model.SeverityCritical,
		Diagnosis: "Critical traffic quality leak - wrong people seeing your offer",
		Impact:    "35-70% conversion loss - massive revenue hemorrhaging",
		Fix:       "Complete traffic audit and rebuild acquisition funnel",
	}
	if diff := cmp.Diff(want, res.Leaks[0]); diff != "" {
		t.Errorf("leak mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Continue current approach - it's working well", res.Leaks[1].Fix)
	assert.Equal(t, "Implement comprehensive trust architecture", res.Leaks[2].Fix)
}

func TestFixFallback(t *testing.T) {
	assert.Equal(t, "Professional funnel optimization needed", Fix("Checkout Flow", model.SeverityMajor))
	assert.Equal(t, "Professional funnel optimization needed", Fix("Trust & Credibility Signals", model.Severity("severe")))
	assert.Equal(t, "Continue current approach - it's working well", Fix("Checkout Flow", model.SeverityNone))
}

func TestScoreDiagnosticRejectsUnknownSeverity(t *testing.T) {
	answers := diagnosticAnswers(model.SeverityNone, model.SeverityNone, model.SeverityNone, model.SeverityNone, model.SeverityNone)
	answers["trust_credibility"] = model.Answer{StepID: "trust_credibility", Severity: "severe"}
	_, err := ScoreDiagnostic(AlchemySteps, answers)
	assert.ErrorIs(t, err, ErrUnknownSeverity)
}

func TestCalculateROI(t *testing.T) {
	res, err := CalculateROI(DefaultROIConfig(), model.ROIInputs{
		CurrentRevenue:    10000,
		CurrentConversion: 2,
		TrafficVolume:     1000,
		AverageValue:      100,
	})
	require.NoError(t, err)

	assert.InDelta(t, 2000, res.CurrentMonthlyRevenue, 1e-9)
	assert.InDelta(t, 67000, res.ProjectedMonthlyRevenue, 1e-9)
	assert.InDelta(t, 65000, res.MonthlyIncrease, 1e-9)
	assert.InDelta(t, 780000, res.AnnualIncrease, 1e-9)
	assert.InDelta(t, 25900, res.ROIPercent, 1e-9)
	require.NotNil(t, res.PaybackMonths)
	assert.InDelta(t, 3000.0/65000.0, *res.PaybackMonths, 1e-12)
	assert.True(t, res.Recoverable)
	assert.Equal(t, "1 days", res.PaybackLabel)
}

func TestCalculateROINotRecoverable(t *testing.T) {
	for _, conv := range []float64{67, 80} {
		res, err := CalculateROI(DefaultROIConfig(), model.ROIInputs{
			CurrentRevenue:    5000,
			CurrentConversion: conv,
			TrafficVolume:     500,
			AverageValue:      40,
		})
		require.NoError(t, err)
		assert.Nil(t, res.PaybackMonths, "conversion %v", conv)
		assert.False(t, res.Recoverable)
		assert.Equal(t, NotRecoverable, res.PaybackLabel)
		assert.LessOrEqual(t, res.MonthlyIncrease, 0.0)
	}
}

func TestCalculateROIRejectsNonPositiveInputs(t *testing.T) {
	base := model.ROIInputs{CurrentRevenue: 1, CurrentConversion: 1, TrafficVolume: 1, AverageValue: 1}

	zeroRevenue := base
	zeroRevenue.CurrentRevenue = 0
	negTraffic := base
	negTraffic.TrafficVolume = -5

	for _, in := range []model.ROIInputs{zeroRevenue, negTraffic} {
		_, err := CalculateROI(DefaultROIConfig(), in)
		assert.ErrorIs(t, err, ErrInvalidInputs)
	}
}

func TestCalculateROIScenarios(t *testing.T) {
	cases := []struct {
		name      string
		in        model.ROIInputs
		current   float64
		projected float64
		monthly   float64
		annual    float64
		roi       float64
		payback   float64
	}{
		{
			name:      "agency with 23 percent conversion",
			in:        model.ROIInputs{CurrentRevenue: 50000, CurrentConversion: 23, TrafficVolume: 2000, AverageValue: 2500},
			current:   1150000,
			projected: 3350000,
			monthly:   2200000,
			annual:    26400000,
			roi:       879900,
			payback:   3000.0 / 2200000.0,
		},
		{
			name:      "small shop",
			in:        model.ROIInputs{CurrentRevenue: 10000, CurrentConversion: 2, TrafficVolume: 1000, AverageValue: 100},
			current:   2000,
			projected: 67000,
			monthly:   65000,
			annual:    780000,
			roi:       25900,
			payback:   3000.0 / 65000.0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := CalculateROI(DefaultROIConfig(), tc.in)
			require.NoError(t, err)
			assert.InDelta(t, tc.current, res.CurrentMonthlyRevenue, 1e-6)
			assert.InDelta(t, tc.projected, res.ProjectedMonthlyRevenue, 1e-6)
			assert.InDelta(t, tc.monthly, res.MonthlyIncrease, 1e-6)
			assert.InDelta(t, tc.annual, res.AnnualIncrease, 1e-6)
			assert.InDelta(t, tc.roi, res.ROIPercent, 1e-6)
			require.NotNil(t, res.PaybackMonths)
			assert.InDelta(t, tc.payback, *res.PaybackMonths, 1e-6)

			again, err := CalculateROI(DefaultROIConfig(), tc.in)
			require.NoError(t, err)
			if diff := cmp.Diff(res, again); diff != "" {
				t.Errorf("repeated calculation differs (-first +second):\n%s", diff)
			}
		})
	}
}

func TestCalculateROIRejectsOverflow(t *testing.T) {
	cases := []model.ROIInputs{
		{CurrentRevenue: 1, CurrentConversion: 1, TrafficVolume: 1e300, AverageValue: 1e300},
		{CurrentRevenue: 1, CurrentConversion: 80, TrafficVolume: 1e200, AverageValue: 1e200},
		{CurrentRevenue: 1, CurrentConversion: 1, TrafficVolume: 1e307, AverageValue: 100},
	}
	for _, in := range cases {
		res, err := CalculateROI(DefaultROIConfig(), in)
		assert.ErrorIs(t, err, ErrInvalidInputs, "inputs %+v", in)
		assert.Nil(t, res)
	}
}

func TestPaybackLabel(t *testing.T) {
	assert.Equal(t, "15 days", PaybackLabel(0.5))
	assert.Equal(t, "1.0 months", PaybackLabel(1))
	assert.Equal(t, "2.5 months", PaybackLabel(2.5))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$65,000", FormatCurrency(65000))
	assert.Equal(t, "$0", FormatCurrency(0.2))
	assert.Equal(t, "-$1,235", FormatCurrency(-1234.6))
	assert.Equal(t, "$1,234,568", FormatCurrency(1234567.8))
	assert.Equal(t, "25,900", FormatPercent(25900.2))
}
