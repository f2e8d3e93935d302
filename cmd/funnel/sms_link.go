package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"funnelworks/internal/analytics"
	"funnelworks/internal/cta"
)

var (
	smsPhone     string
	smsMessage   string
	smsUserAgent string
	smsTokens    map[string]string
)

// smsLinkCmd previews the sms: link a visitor's phone would open
var smsLinkCmd = &cobra.Command{
	Use:   "sms-link",
	Short: "Render an SMS call-to-action link",
	Long: `Renders a message template and prints the deep link for a user agent.

Example:
  funnel sms-link --message "Hi [NAME]" --set NAME=Sam --ua iphone`,
	RunE: runSMSLink,
}

var userAgents = map[string]string{
	"iphone":  "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
	"android": "Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile",
	"desktop": "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
}

func init() {
	smsLinkCmd.Flags().StringVar(&smsPhone, "phone", "", "Destination number (default from config)")
	smsLinkCmd.Flags().StringVar(&smsMessage, "message", "", "Message template (default from config)")
	smsLinkCmd.Flags().StringVar(&smsUserAgent, "ua", "iphone", "iphone, android, desktop or a raw User-Agent")
	smsLinkCmd.Flags().StringToStringVar(&smsTokens, "set", nil, "Template tokens, e.g. NAME=Sam")
}

func runSMSLink(cmd *cobra.Command, args []string) error {
	ua, ok := userAgents[smsUserAgent]
	if !ok {
		ua = smsUserAgent
	}

	dispatcher := cta.NewDispatcher(cfg.CTA.Phone, cfg.CTA.DefaultMessage, analytics.NewFunnel(analytics.Nop{}, nil), logger)
	d := dispatcher.Preview(cta.Request{
		Phone:         smsPhone,
		Template:      smsMessage,
		Customization: smsTokens,
		UserAgent:     ua,
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Platform: %s\n", d.Platform)
	fmt.Fprintf(out, "Message:  %s\n", d.Message)
	if d.Mode == cta.ModeDeepLink {
		fmt.Fprintf(out, "Link:     %s\n", d.Link)
		return nil
	}
	logger.Debug("no deep link", zap.String("reason", d.Reason))
	fmt.Fprintf(out, "Fallback: text %s manually (%s)\n", d.DisplayPhone, d.Reason)
	return nil
}
