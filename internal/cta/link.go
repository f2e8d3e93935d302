package cta

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var ErrNoDigits = errors.New("phone number has no digits")

var (
	mobileUA  = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)
	iosUA     = regexp.MustCompile(`(?i)iphone|ipad|ipod`)
	androidUA = regexp.MustCompile(`(?i)android`)
)

// IsMobile reports whether the user agent belongs to a phone or tablet
func IsMobile(userAgent string) bool {
	return mobileUA.MatchString(userAgent)
}

// IsIOS reports whether the user agent is an iPhone, iPad or iPod
func IsIOS(userAgent string) bool {
	return iosUA.MatchString(userAgent)
}

// Platform classifies a user agent for analytics
func Platform(userAgent string) string {
	switch {
	case IsIOS(userAgent):
		return "ios"
	case androidUA.MatchString(userAgent):
		return "android"
	case IsMobile(userAgent):
		return "mobile"
	default:
		return "desktop"
	}
}

// Digits strips everything but 0-9 from a phone number
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EncodeBody percent-encodes an SMS body, spaces as %20
func EncodeBody(body string) string {
	return strings.ReplaceAll(url.QueryEscape(body), "+", "%20")
}

// SMSLink builds an sms: URI. iOS expects "&body=", everyone else "?body=".
func SMSLink(phone, body, userAgent string) (string, error) {
	digits := Digits(phone)
	if digits == "" {
		return "", ErrNoDigits
	}
	sep := "?"
	if IsIOS(userAgent) {
		sep = "&"
	}
	return "sms:" + digits + sep + "body=" + EncodeBody(body), nil
}

// FormatPhone renders US numbers for display; anything else is returned unchanged.
func FormatPhone(phone string) string {
	d := Digits(phone)
	switch {
	case len(d) == 11 && d[0] == '1':
		return "+1 (" + d[1:4] + ") " + d[4:7] + "-" + d[7:]
	case len(d) == 10:
		return "(" + d[0:3] + ") " + d[3:6] + "-" + d[6:]
	default:
		return phone
	}
}
