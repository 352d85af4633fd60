package model

import "time"

// Window names a fixed aggregation range.
type Window string

const (
	WindowAll    Window = "all"
	Window7Days  Window = "7d"
	Window30Days Window = "30d"
)

// Windows lists the windows every snapshot is computed over.
var Windows = []Window{WindowAll, Window7Days, Window30Days}

// Span returns how far back the window reaches; zero means unbounded.
func (w Window) Span() time.Duration {
	switch w {
	case Window7Days:
		return 7 * 24 * time.Hour
	case Window30Days:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Valid reports whether w is a known window.
func (w Window) Valid() bool {
	switch w {
	case WindowAll, Window7Days, Window30Days:
		return true
	default:
		return false
	}
}

// FunnelRates holds the named conversion rates, in percent.
type FunnelRates struct {
	ChatOpenRate        float64 `json:"chatOpenRate"`
	TicketCreationRate  float64 `json:"ticketCreationRate"`
	PopupConversionRate float64 `json:"popupConversionRate"`
	ContactFormRate     float64 `json:"contactFormRate"`
}

// WindowMetrics aggregates the event log over one window.
type WindowMetrics struct {
	Window       Window            `json:"window"`
	Start        *time.Time        `json:"start,omitempty"`
	TotalEvents  int               `json:"totalEvents"`
	EventsByType map[EventType]int `json:"eventsByType"`
	Rates        FunnelRates       `json:"rates"`
}

// SessionStats summarizes the session registry.
type SessionStats struct {
	TotalSessions      int     `json:"totalSessions"`
	ActiveSessions     int     `json:"activeSessions"`
	AvgSessionDuration float64 `json:"avgSessionDuration"`
}

// DeviceBreakdown splits sessions by device class, in percent.
type DeviceBreakdown struct {
	Mobile  float64 `json:"mobile"`
	Desktop float64 `json:"desktop"`
}

// ConversionMetrics is the read-side snapshot. Errors lists sections that
// could not be computed; the remaining sections are still valid.
type ConversionMetrics struct {
	GeneratedAt   time.Time         `json:"generatedAt"`
	TotalEvents   int               `json:"totalEvents"`
	RecentEvents  int               `json:"recentEvents"`
	MonthlyEvents int               `json:"monthlyEvents"`
	Rates         FunnelRates       `json:"rates"`
	EventsByType  map[EventType]int `json:"eventsByType"`
	Windows       []WindowMetrics   `json:"windows"`
	Sessions      SessionStats      `json:"sessions"`
	DeviceStats   DeviceBreakdown   `json:"deviceStats"`
	Errors        []string          `json:"errors,omitempty"`
}

// Window returns the metrics of the named window.
func (m ConversionMetrics) Window(w Window) (WindowMetrics, bool) {
	for _, wm := range m.Windows {
		if wm.Window == w {
			return wm, true
		}
	}
	return WindowMetrics{}, false
}

// MetricsResponse is returned to clients for single-window metrics queries.
type MetricsResponse struct {
	Meta     MetricsMeta     `json:"meta"`
	Data     WindowMetrics   `json:"data"`
	Sessions SessionStats    `json:"sessions"`
	Devices  DeviceBreakdown `json:"devices"`
	Errors   []string        `json:"errors,omitempty"`
}

// MetricsMeta contains metadata about the metrics query.
type MetricsMeta struct {
	Window Window        `json:"window"`
	Period MetricsPeriod `json:"period"`
}

// MetricsPeriod captures the time window.
type MetricsPeriod struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end"`
}
