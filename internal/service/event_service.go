package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"conversion-analytics/internal/device"
	"conversion-analytics/internal/funnel"
	"conversion-analytics/internal/identity"
	"conversion-analytics/internal/model"
	"conversion-analytics/internal/scroll"
	"conversion-analytics/internal/store"
)

// ValidationError represents user input issues.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AnalyticsService is the entry point used by every producer and by the
// dashboard. Write operations never fail and never block on the sink.
type AnalyticsService interface {
	Producers

	StartSession() model.UserSession
	StartSessionFrom(env model.Environment) model.UserSession
	EndSession()
	CurrentSession() (model.UserSession, bool)

	TrackEvent(eventType model.EventType, data map[string]any)
	Scroll(percent float64)
	Mount() (release func())

	ConversionMetrics(ctx context.Context) model.ConversionMetrics
	WindowMetrics(ctx context.Context, window model.Window) (model.MetricsResponse, error)

	Shutdown()
}

// analyticsService owns one client's session lifecycle over a shared store.
type analyticsService struct {
	store    *store.Store
	identity *identity.Resolver
	worker   BatchEventWorker
	engine   *funnel.Engine
	env      model.Environment
	now      func() time.Time
	logger   zerolog.Logger

	// lifecycle serializes session start, end and self-healing.
	lifecycle sync.Mutex

	scrollMu       sync.Mutex
	scroller       *scroll.Detector
	scrollerSessID string

	shutdown sync.Once
}

// NewAnalyticsService constructs an analyticsService. env describes the
// client used for sessions started without an explicit environment.
func NewAnalyticsService(st *store.Store, resolver *identity.Resolver, worker BatchEventWorker, env model.Environment, logger zerolog.Logger) AnalyticsService {
	s := &analyticsService{
		store:    st,
		identity: resolver,
		worker:   worker,
		env:      env,
		now:      time.Now,
		logger:   logger.With().Str("component", "analytics").Logger(),
	}
	s.engine = funnel.NewEngine(st, logger, funnel.WithClock(func() time.Time { return s.now() }))
	return s
}

// StartSession opens a new session for the default environment.
func (s *analyticsService) StartSession() model.UserSession {
	return s.StartSessionFrom(s.env)
}

// StartSessionFrom always opens a new session, even when one is already open
// for this visit, and records its page_view.
func (s *analyticsService) StartSessionFrom(env model.Environment) model.UserSession {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	return s.startLocked(env)
}

func (s *analyticsService) startLocked(env model.Environment) model.UserSession {
	session := model.UserSession{
		ID:         identity.NewSessionID(),
		UserID:     s.identity.UserID(),
		StartTime:  s.now(),
		DeviceInfo: device.Detect(env),
	}
	s.store.RegisterSession(session)
	s.identity.SetSessionID(session.ID)
	sessionsStartedTotal.Inc()

	s.logger.Debug().
		Str("session_id", session.ID).
		Str("user_id", session.UserID).
		Bool("mobile", session.DeviceInfo.IsMobile).
		Msg("session started")

	// Appended to the new session directly so a broken visit store cannot
	// send page_view through self-healing again.
	s.record(s.newEvent(session, model.EventPageView, map[string]any{"path": env.Path}))

	if stored, ok := s.store.Session(session.ID); ok {
		return stored
	}
	return session
}

// EndSession closes the current visit's session. Without one it does nothing.
func (s *analyticsService) EndSession() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	id, ok := s.identity.SessionID()
	if !ok {
		return
	}
	if s.store.CloseSession(id, s.now()) {
		sessionsEndedTotal.Inc()
		s.logger.Debug().Str("session_id", id).Msg("session ended")
	}
	s.identity.ClearSessionID()
	s.detachScroll(id)
}

// CurrentSession returns the open session of the current visit.
func (s *analyticsService) CurrentSession() (model.UserSession, bool) {
	id, ok := s.identity.SessionID()
	if !ok {
		return model.UserSession{}, false
	}
	session, ok := s.store.Session(id)
	if !ok || !session.Open() {
		return model.UserSession{}, false
	}
	return session, true
}

// TrackEvent records an event in the current session, opening one first if
// needed. Unknown types are dropped and counted.
func (s *analyticsService) TrackEvent(eventType model.EventType, data map[string]any) {
	if !eventType.Valid() {
		eventsRejectedTotal.Inc()
		s.logger.Warn().Str("type", string(eventType)).Msg("unknown event type dropped")
		return
	}

	session := s.currentOrStart()
	s.record(s.newEvent(session, eventType, data))
}

// Scroll feeds one scroll sample, in percent, to the current session's
// milestone detector.
func (s *analyticsService) Scroll(percent float64) {
	// The detector is bound under lifecycle so EndSession cannot close the
	// session in between. A detector detached afterwards ignores the sample.
	s.lifecycle.Lock()
	session, ok := s.CurrentSession()
	if !ok {
		session = s.startLocked(s.env)
	}
	detector := s.detectorFor(session)
	s.lifecycle.Unlock()

	detector.Observe(percent)
}

// Mount starts a session and attaches its scroll detector. The returned
// release ends that session; calling it more than once is a no-op.
func (s *analyticsService) Mount() (release func()) {
	s.lifecycle.Lock()
	s.detectorFor(s.startLocked(s.env))
	s.lifecycle.Unlock()

	var once sync.Once
	return func() {
		once.Do(s.EndSession)
	}
}

// ConversionMetrics returns the full metrics snapshot.
func (s *analyticsService) ConversionMetrics(ctx context.Context) model.ConversionMetrics {
	return s.engine.Metrics(ctx)
}

// WindowMetrics narrows the snapshot to one window.
func (s *analyticsService) WindowMetrics(ctx context.Context, window model.Window) (model.MetricsResponse, error) {
	if !window.Valid() {
		return model.MetricsResponse{}, &ValidationError{Message: "unsupported window"}
	}

	metrics := s.engine.Metrics(ctx)
	data, ok := metrics.Window(window)
	if !ok {
		data = model.WindowMetrics{Window: window, EventsByType: map[model.EventType]int{}}
	}

	resp := model.MetricsResponse{
		Meta: model.MetricsMeta{
			Window: window,
			Period: model.MetricsPeriod{
				End: metrics.GeneratedAt.UTC().Format(time.RFC3339),
			},
		},
		Data:     data,
		Sessions: metrics.Sessions,
		Devices:  metrics.DeviceStats,
		Errors:   metrics.Errors,
	}
	if data.Start != nil {
		resp.Meta.Period.Start = data.Start.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

// Shutdown ends the current session and drains the sink.
func (s *analyticsService) Shutdown() {
	s.shutdown.Do(func() {
		s.EndSession()
		s.worker.Shutdown()
	})
}

// ParseWindow validates a window name supplied by a client.
func ParseWindow(raw string) (model.Window, error) {
	w := model.Window(raw)
	if !w.Valid() {
		return "", &ValidationError{Message: "window must be one of all, 7d, 30d"}
	}
	return w, nil
}

func (s *analyticsService) currentOrStart() model.UserSession {
	if session, ok := s.CurrentSession(); ok {
		return session
	}

	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	// Another caller may have healed the visit while we waited.
	if session, ok := s.CurrentSession(); ok {
		return session
	}
	s.logger.Debug().Msg("no active session, starting one")
	return s.startLocked(s.env)
}

func (s *analyticsService) newEvent(session model.UserSession, eventType model.EventType, data map[string]any) model.ConversionEvent {
	return model.ConversionEvent{
		ID:        identity.NewEventID(),
		Type:      eventType,
		UserID:    session.UserID,
		SessionID: session.ID,
		Timestamp: s.now(),
		Data:      store.CloneData(data),
	}
}

func (s *analyticsService) record(event model.ConversionEvent) {
	if err := s.store.Append(event); err != nil {
		s.logger.Error().Err(err).Str("session_id", event.SessionID).Str("type", string(event.Type)).Msg("append failed")
		return
	}
	eventsTrackedTotal.WithLabelValues(string(event.Type)).Inc()
	s.worker.Enqueue(event)
}

// detectorFor returns the detector bound to session, replacing one left over
// from an earlier session.
func (s *analyticsService) detectorFor(session model.UserSession) *scroll.Detector {
	s.scrollMu.Lock()
	defer s.scrollMu.Unlock()

	if s.scroller != nil && s.scrollerSessID == session.ID {
		return s.scroller
	}
	if s.scroller != nil {
		s.scroller.Detach()
	}
	s.scroller = scroll.NewDetector(func(depth int) {
		s.record(s.newEvent(session, model.EventScrollDepth, map[string]any{"depth": depth}))
	})
	s.scrollerSessID = session.ID
	return s.scroller
}

func (s *analyticsService) detachScroll(sessionID string) {
	s.scrollMu.Lock()
	defer s.scrollMu.Unlock()

	if s.scroller != nil && s.scrollerSessID == sessionID {
		s.scroller.Detach()
		s.scroller = nil
		s.scrollerSessID = ""
	}
}
