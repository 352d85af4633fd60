package model

import (
	"fmt"
	"time"
)

// DeviceInfo is captured once when a session starts.
type DeviceInfo struct {
	UserAgent        string `json:"userAgent"`
	ScreenResolution string `json:"screenResolution,omitempty"`
	IsMobile         bool   `json:"isMobile"`
}

// Location is reserved for an external geo-resolution collaborator.
type Location struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// UserSession is one visit. EndTime is nil while the session is open.
type UserSession struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	StartTime  time.Time         `json:"startTime"`
	EndTime    *time.Time        `json:"endTime,omitempty"`
	Events     []ConversionEvent `json:"events"`
	DeviceInfo DeviceInfo        `json:"deviceInfo"`
	Location   *Location         `json:"location,omitempty"`
}

// Open reports whether the session has not been closed yet.
func (s UserSession) Open() bool {
	return s.EndTime == nil
}

// Duration returns EndTime-StartTime for closed sessions and false otherwise.
func (s UserSession) Duration() (time.Duration, bool) {
	if s.EndTime == nil {
		return 0, false
	}
	return s.EndTime.Sub(s.StartTime), true
}

// Environment describes the calling client when a session starts.
type Environment struct {
	UserAgent    string
	ScreenWidth  int
	ScreenHeight int
	Path         string
}

// ScreenResolution formats the screen size as WIDTHxHEIGHT, or "" when unknown.
func (e Environment) ScreenResolution() string {
	if e.ScreenWidth <= 0 || e.ScreenHeight <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", e.ScreenWidth, e.ScreenHeight)
}

// SessionRequest is the payload for opening a session over HTTP.
type SessionRequest struct {
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	Path         string `json:"path"`
}

// ScrollRequest carries one scroll sample in percent.
type ScrollRequest struct {
	Percent float64 `json:"percent"`
}
