package model

import "time"

// Lead is the contact captured by the gate. Email is required, phone optional.
type Lead struct {
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// LeadRequest is the request body for the lead gate
type LeadRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// LeadRecord is the completion handed to the lead collaborator
type LeadRecord struct {
	ID          string            `json:"id" bson:"_id"`
	SessionID   string            `json:"sessionId" bson:"sessionId"`
	ToolID      ToolID            `json:"toolId" bson:"toolId"`
	Email       string            `json:"email" bson:"email"`
	EmailDomain string            `json:"emailDomain" bson:"emailDomain"`
	Phone       string            `json:"phone,omitempty" bson:"phone,omitempty"`
	Result      *Result           `json:"result" bson:"result"`
	StepTags    map[string]string `json:"stepTags" bson:"stepTags"` // step id -> insight or diagnosis
	CompletedAt time.Time         `json:"completedAt" bson:"completedAt"`
}
