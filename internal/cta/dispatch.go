package cta

import (
	"strings"

	"go.uber.org/zap"

	"funnelworks/internal/analytics"
)

// Mode is how an SMS call-to-action is delivered
type Mode string

const (
	ModeDeepLink Mode = "deep_link"
	ModeFallback Mode = "fallback"
)

// Request describes one CTA press
type Request struct {
	DistinctID    string            `json:"distinctId,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	Template      string            `json:"message,omitempty"`
	Customization map[string]string `json:"customization,omitempty"`
	Context       string            `json:"context,omitempty"`
	UserAgent     string            `json:"-"`
}

// Dispatch is the outcome: a deep link for phones, or the fallback surface
type Dispatch struct {
	Mode         Mode   `json:"mode"`
	Link         string `json:"link,omitempty"`
	Phone        string `json:"phone"`
	DisplayPhone string `json:"displayPhone"`
	Message      string `json:"message"`
	Platform     string `json:"platform"`
	Reason       string `json:"reason,omitempty"`
}

// Dispatcher turns CTA presses into sms: links or a desktop fallback
type Dispatcher struct {
	phone          string
	defaultMessage string
	funnel         *analytics.Funnel
	logger         *zap.Logger
}

// NewDispatcher creates a dispatcher with a default destination phone
func NewDispatcher(phone, defaultMessage string, funnel *analytics.Funnel, logger *zap.Logger) *Dispatcher {
	if phone == "" {
		phone = DefaultPhone
	}
	if defaultMessage == "" {
		defaultMessage = DefaultMessage
	}
	return &Dispatcher{
		phone:          phone,
		defaultMessage: defaultMessage,
		funnel:         funnel,
		logger:         logger,
	}
}

func (d *Dispatcher) prepare(req Request) *Dispatch {
	phone := req.Phone
	if strings.TrimSpace(phone) == "" {
		phone = d.phone
	}
	tpl := req.Template
	if strings.TrimSpace(tpl) == "" {
		tpl = d.defaultMessage
	}
	return &Dispatch{
		Mode:         ModeFallback,
		Phone:        phone,
		DisplayPhone: FormatPhone(phone),
		Message:      Render(tpl, req.Customization),
		Platform:     Platform(req.UserAgent),
	}
}

// Preview resolves a request like Dispatch but emits no events.
// Pages use it to render links ahead of a press.
func (d *Dispatcher) Preview(req Request) *Dispatch {
	out := d.prepare(req)
	if !IsMobile(req.UserAgent) {
		out.Reason = "desktop"
		return out
	}
	if link, err := SMSLink(out.Phone, out.Message, req.UserAgent); err == nil {
		out.Mode = ModeDeepLink
		out.Link = link
	} else {
		out.Reason = err.Error()
	}
	return out
}

// Dispatch renders the message and chooses the delivery mode.
// Build failures on mobile degrade to the fallback and are reported, never returned.
func (d *Dispatcher) Dispatch(req Request) *Dispatch {
	out := d.prepare(req)
	mobile := IsMobile(req.UserAgent)
	platform := out.Platform
	phone, msg := out.Phone, out.Message

	d.funnel.SMSButtonClicked(req.DistinctID, msg, req.Context, mobile)

	if !mobile {
		out.Reason = "desktop"
		d.funnel.DesktopFallbackShown(req.DistinctID)
		return out
	}

	link, err := SMSLink(phone, msg, req.UserAgent)
	if err != nil {
		d.logger.Warn("sms link build failed", zap.String("platform", platform), zap.Error(err))
		d.funnel.ErrorOccurred(req.DistinctID, err, "sms_dispatch")
		d.funnel.SMSLaunched(req.DistinctID, false, platform, req.UserAgent)
		d.funnel.DesktopFallbackShown(req.DistinctID)
		out.Reason = err.Error()
		return out
	}

	out.Mode = ModeDeepLink
	out.Link = link
	d.funnel.SMSLaunched(req.DistinctID, true, platform, req.UserAgent)
	return out
}
