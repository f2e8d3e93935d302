package model

import "time"

// Answer records the option chosen for a step. Keyed by step id, so re-answering overwrites.
type Answer struct {
	StepID      string    `json:"stepId" bson:"stepId"`
	OptionIndex int       `json:"optionIndex" bson:"optionIndex"`
	Value       int       `json:"value" bson:"value"`
	Tag         string    `json:"tag" bson:"tag"`
	Severity    Severity  `json:"severity,omitempty" bson:"severity,omitempty"`
	AnsweredAt  time.Time `json:"answeredAt" bson:"answeredAt"`
}

// AnswerRequest is the request body for answering the current step
type AnswerRequest struct {
	StepID      string `json:"stepId"`
	OptionIndex int    `json:"optionIndex"`
}

// ROIInputs are the numeric inputs of the ROI calculator
type ROIInputs struct {
	CurrentRevenue    float64 `json:"currentRevenue" bson:"currentRevenue"` // validated, not used by the formula
	CurrentConversion float64 `json:"currentConversion" bson:"currentConversion"`
	TrafficVolume     float64 `json:"trafficVolume" bson:"trafficVolume"`
	AverageValue      float64 `json:"averageValue" bson:"averageValue"`
}
