package mockservice

import (
	"context"

	"conversion-analytics/internal/model"
	"conversion-analytics/internal/service"

	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

var _ service.AnalyticsService = &Service{}

func (m *Service) StartSession() model.UserSession {
	return m.Called().Get(0).(model.UserSession)
}

func (m *Service) StartSessionFrom(env model.Environment) model.UserSession {
	return m.Called(env).Get(0).(model.UserSession)
}

func (m *Service) EndSession() {
	m.Called()
}

func (m *Service) CurrentSession() (model.UserSession, bool) {
	args := m.Called()
	return args.Get(0).(model.UserSession), args.Bool(1)
}

func (m *Service) TrackEvent(eventType model.EventType, data map[string]any) {
	m.Called(eventType, data)
}

func (m *Service) Scroll(percent float64) {
	m.Called(percent)
}

func (m *Service) Mount() func() {
	return m.Called().Get(0).(func())
}

func (m *Service) ConversionMetrics(ctx context.Context) model.ConversionMetrics {
	return m.Called(ctx).Get(0).(model.ConversionMetrics)
}

func (m *Service) WindowMetrics(ctx context.Context, window model.Window) (model.MetricsResponse, error) {
	args := m.Called(ctx, window)
	return args.Get(0).(model.MetricsResponse), args.Error(1)
}

func (m *Service) Shutdown() {
	m.Called()
}

func (m *Service) TrackChatOpen() {
	m.Called()
}

func (m *Service) TrackChatMessage(message string) {
	m.Called(message)
}

func (m *Service) TrackTicketCreated(ticketID, category string) {
	m.Called(ticketID, category)
}

func (m *Service) TrackPopupOpen() {
	m.Called()
}

func (m *Service) TrackPopupSubmit(email, phone string) {
	m.Called(email, phone)
}

func (m *Service) TrackContactForm(email, phone, message string) {
	m.Called(email, phone, message)
}

func (m *Service) TrackCookieAccept() {
	m.Called()
}

func (m *Service) TrackServiceClick(name string) {
	m.Called(name)
}
