package service

import (
	"time"
	"unicode/utf8"

	"conversion-analytics/internal/model"
)

// Producers are the typed helpers used by the site's widgets. Each records
// the moment it was raised under "timestamp".
type Producers interface {
	TrackChatOpen()
	TrackChatMessage(message string)
	TrackTicketCreated(ticketID, category string)
	TrackPopupOpen()
	TrackPopupSubmit(email, phone string)
	TrackContactForm(email, phone, message string)
	TrackCookieAccept()
	TrackServiceClick(service string)
}

func (s *analyticsService) TrackChatOpen() {
	s.TrackEvent(model.EventChatOpen, s.stamped(nil))
}

// TrackChatMessage records the message length only, never its text.
func (s *analyticsService) TrackChatMessage(message string) {
	s.TrackEvent(model.EventChatMessage, s.stamped(map[string]any{
		"messageLength": utf8.RuneCountInString(message),
	}))
}

func (s *analyticsService) TrackTicketCreated(ticketID, category string) {
	s.TrackEvent(model.EventTicketCreated, s.stamped(map[string]any{
		"ticketId": ticketID,
		"category": category,
	}))
}

func (s *analyticsService) TrackPopupOpen() {
	s.TrackEvent(model.EventPopupOpen, s.stamped(nil))
}

func (s *analyticsService) TrackPopupSubmit(email, phone string) {
	s.TrackEvent(model.EventPopupSubmit, s.stamped(map[string]any{
		"hasEmail": email != "",
		"hasPhone": phone != "",
	}))
}

func (s *analyticsService) TrackContactForm(email, phone, message string) {
	s.TrackEvent(model.EventContactForm, s.stamped(map[string]any{
		"hasEmail":      email != "",
		"hasPhone":      phone != "",
		"messageLength": utf8.RuneCountInString(message),
	}))
}

func (s *analyticsService) TrackCookieAccept() {
	s.TrackEvent(model.EventCookieAccept, s.stamped(nil))
}

func (s *analyticsService) TrackServiceClick(service string) {
	s.TrackEvent(model.EventServiceClick, s.stamped(map[string]any{
		"service": service,
	}))
}

func (s *analyticsService) stamped(data map[string]any) map[string]any {
	if data == nil {
		data = make(map[string]any, 1)
	}
	data["timestamp"] = s.now().UTC().Format(time.RFC3339)
	return data
}
