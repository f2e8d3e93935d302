package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelworks/internal/model"
)

// resetFlags clears package-level flag state shared by rootCmd across tests.
func resetFlags() {
	roiInputs = model.ROIInputs{}
	roiJSON = false
	smsPhone, smsMessage, smsUserAgent = "", "", "iphone"
	smsTokens = nil
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestROICommand(t *testing.T) {
	out := execute(t, "roi", "--revenue", "10000", "--conversion", "2", "--traffic", "5000", "--value", "100")
	assert.Contains(t, out, "Monthly increase:          $325,000")
	assert.Contains(t, out, "Annual increase:           $3,900,000")
	assert.Contains(t, out, "Payback:                   0 days")
}

func TestROICommandRejectsMissingInputs(t *testing.T) {
	resetFlags()
	rootCmd.SetArgs([]string{"roi", "--revenue", "1", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	assert.Error(t, rootCmd.Execute())
}

func TestSMSLinkCommand(t *testing.T) {
	out := execute(t, "sms-link", "--message", "Hi [NAME]", "--set", "NAME=Sam", "--ua", "android")
	assert.Contains(t, out, "Platform: android")
	assert.Contains(t, out, "Message:  Hi Sam")
	assert.Contains(t, out, "Link:     sms:16176428741?body=Hi%20Sam")

	out = execute(t, "sms-link", "--ua", "desktop", "--set", "NAME=Sam")
	assert.Contains(t, out, "Fallback: text +1 (617) 642-8741 manually (desktop)")
}
