package model

import (
	"time"
)

// EventType is one of the closed set of behavioral event kinds.
type EventType string

const (
	EventPageView      EventType = "page_view"
	EventChatOpen      EventType = "chat_open"
	EventChatMessage   EventType = "chat_message"
	EventTicketCreated EventType = "ticket_created"
	EventPopupOpen     EventType = "popup_open"
	EventPopupSubmit   EventType = "popup_submit"
	EventContactForm   EventType = "contact_form"
	EventCookieAccept  EventType = "cookie_accept"
	EventServiceClick  EventType = "service_click"
	EventScrollDepth   EventType = "scroll_depth"
)

// EventTypes lists every known event type in declaration order.
var EventTypes = []EventType{
	EventPageView,
	EventChatOpen,
	EventChatMessage,
	EventTicketCreated,
	EventPopupOpen,
	EventPopupSubmit,
	EventContactForm,
	EventCookieAccept,
	EventServiceClick,
	EventScrollDepth,
}

// Valid reports whether t belongs to the known event types.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EventRequest represents incoming event payload.
type EventRequest struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// ConversionEvent is a single typed fact about visitor behavior. It is never
// mutated after creation.
//
// Expected data keys per type:
//
//	page_view      path
//	chat_open      timestamp
//	chat_message   messageLength, timestamp
//	ticket_created ticketId, category, timestamp
//	popup_open     timestamp
//	popup_submit   hasEmail, hasPhone, timestamp
//	contact_form   hasEmail, hasPhone, messageLength, timestamp
//	cookie_accept  timestamp
//	service_click  service, timestamp
//	scroll_depth   depth
type ConversionEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	UserID    string         `json:"userId"`
	SessionID string         `json:"sessionId"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}
