// Package device classifies the calling client from its environment.
package device

import (
	"regexp"

	"conversion-analytics/internal/model"
)

var mobilePattern = regexp.MustCompile(`(?i)Mobile|Android|iPhone|iPad|iPod`)

// IsMobile reports whether the raw user-agent string looks like a phone or tablet.
func IsMobile(userAgent string) bool {
	return mobilePattern.MatchString(userAgent)
}

// Detect captures the device info recorded on a new session.
func Detect(env model.Environment) model.DeviceInfo {
	return model.DeviceInfo{
		UserAgent:        env.UserAgent,
		ScreenResolution: env.ScreenResolution(),
		IsMobile:         IsMobile(env.UserAgent),
	}
}
