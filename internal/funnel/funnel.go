// Package funnel computes conversion rates and session aggregates over a
// snapshot of the event log and session registry. Nothing here mutates its
// input.
package funnel

import (
	"time"

	"conversion-analytics/internal/model"
)

// Funnel is an ordered pair of event types whose count ratio is reported.
type Funnel struct {
	Trigger    model.EventType
	Conversion model.EventType
}

var (
	ChatOpen        = Funnel{Trigger: model.EventPageView, Conversion: model.EventChatOpen}
	TicketCreation  = Funnel{Trigger: model.EventChatOpen, Conversion: model.EventTicketCreated}
	PopupConversion = Funnel{Trigger: model.EventPopupOpen, Conversion: model.EventPopupSubmit}
	// ContactForm compares contact_form with itself, so it reads 100 whenever
	// any contact form was sent in the window and 0 otherwise.
	ContactForm = Funnel{Trigger: model.EventContactForm, Conversion: model.EventContactForm}
)

// ConversionRate returns conversions per trigger as a percentage. The ratio
// is taken over raw counts with no per-user matching. No triggers yields 0;
// the result is capped at 100.
func ConversionRate(trigger, conversion model.EventType, events []model.ConversionEvent) float64 {
	var triggers, conversions int
	for _, e := range events {
		if e.Type == trigger {
			triggers++
		}
		if e.Type == conversion {
			conversions++
		}
	}
	return percent(conversions, triggers)
}

// Rates computes every named funnel over events.
func Rates(events []model.ConversionEvent) model.FunnelRates {
	counts := EventsByType(events)
	rate := func(f Funnel) float64 {
		return percent(counts[f.Conversion], counts[f.Trigger])
	}
	return model.FunnelRates{
		ChatOpenRate:        rate(ChatOpen),
		TicketCreationRate:  rate(TicketCreation),
		PopupConversionRate: rate(PopupConversion),
		ContactFormRate:     rate(ContactForm),
	}
}

// EventsByType counts events per type. Types with no events are absent.
func EventsByType(events []model.ConversionEvent) map[model.EventType]int {
	counts := make(map[model.EventType]int)
	for _, e := range events {
		counts[e.Type]++
	}
	return counts
}

// Since returns the events with Timestamp at or after start, in log order.
func Since(events []model.ConversionEvent, start time.Time) []model.ConversionEvent {
	out := make([]model.ConversionEvent, 0, len(events))
	for _, e := range events {
		if !e.Timestamp.Before(start) {
			out = append(out, e)
		}
	}
	return out
}

// AverageSessionDurationMinutes averages EndTime-StartTime over closed
// sessions. Open sessions are ignored; no closed sessions yields 0.
func AverageSessionDurationMinutes(sessions []model.UserSession) float64 {
	var total time.Duration
	closed := 0
	for _, s := range sessions {
		d, ok := s.Duration()
		if !ok {
			continue
		}
		total += d
		closed++
	}
	if closed == 0 {
		return 0
	}
	return total.Minutes() / float64(closed)
}

// Breakdown returns the share of mobile and desktop sessions.
func Breakdown(sessions []model.UserSession) model.DeviceBreakdown {
	if len(sessions) == 0 {
		return model.DeviceBreakdown{}
	}
	mobile := 0
	for _, s := range sessions {
		if s.DeviceInfo.IsMobile {
			mobile++
		}
	}
	return model.DeviceBreakdown{
		Mobile:  percent(mobile, len(sessions)),
		Desktop: percent(len(sessions)-mobile, len(sessions)),
	}
}

// Sessions summarizes the registry.
func Sessions(sessions []model.UserSession) model.SessionStats {
	active := 0
	for _, s := range sessions {
		if s.Open() {
			active++
		}
	}
	return model.SessionStats{
		TotalSessions:      len(sessions),
		ActiveSessions:     active,
		AvgSessionDuration: AverageSessionDurationMinutes(sessions),
	}
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	p := float64(part) / float64(whole) * 100
	if p > 100 {
		return 100
	}
	return p
}
