package service

import (
	"context"
	"strings"

	"funnelworks/internal/cta"
	"funnelworks/internal/model"
)

// CTAService dispatches SMS call-to-actions, optionally prefilled from a session result
type CTAService struct {
	dispatcher  *cta.Dispatcher
	toolSvc     *ToolService
	contactName string
}

// NewCTAService creates a new CTA service
func NewCTAService(dispatcher *cta.Dispatcher, toolSvc *ToolService, contactName string) *CTAService {
	return &CTAService{
		dispatcher:  dispatcher,
		toolSvc:     toolSvc,
		contactName: contactName,
	}
}

// Dispatch handles a free-standing CTA press
func (s *CTAService) Dispatch(req cta.Request) *cta.Dispatch {
	return s.dispatcher.Dispatch(req)
}

// Preview resolves a free-standing CTA without recording a press
func (s *CTAService) Preview(req cta.Request) *cta.Dispatch {
	return s.dispatcher.Preview(req)
}

// DispatchForSession prefills the message from the session's result.
// An explicit template or customization in req wins over the derived one.
func (s *CTAService) DispatchForSession(ctx context.Context, id string, req cta.Request) (*cta.Dispatch, error) {
	sess, err := s.toolSvc.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.dispatcher.Dispatch(s.sessionRequest(sess, req)), nil
}

// PreviewForSession resolves the session CTA without recording a press
func (s *CTAService) PreviewForSession(sess *model.ToolSession, userAgent string) *cta.Dispatch {
	return s.dispatcher.Preview(s.sessionRequest(sess, cta.Request{UserAgent: userAgent}))
}

// ContactName is the name the result messages address
func (s *CTAService) ContactName() string {
	return s.contactName
}

func (s *CTAService) sessionRequest(sess *model.ToolSession, req cta.Request) cta.Request {
	if strings.TrimSpace(req.Template) == "" && sess.Result != nil {
		req.Template = cta.ResultTemplate(sess.Result.Kind)
	}
	custom := cta.ResultCustomization(sess.Result, sess.Lead, s.contactName)
	for k, v := range cta.NormalizeKeys(req.Customization) {
		custom[k] = v
	}
	req.Customization = custom
	req.DistinctID = sess.ID
	if req.Context == "" {
		req.Context = string(sess.ToolID) + "_results"
	}
	return req
}

// ResultSession returns a session that has reached results, or ErrSessionNotFound
func (s *CTAService) ResultSession(ctx context.Context, id string) (*model.ToolSession, error) {
	sess, err := s.toolSvc.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.State != model.StateShowingResults || sess.Result == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}
