package funnel

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"conversion-analytics/internal/model"
	"conversion-analytics/internal/pkg/async"
	"conversion-analytics/internal/store"
)

// Source provides the consistent view the engine aggregates over.
type Source interface {
	Snapshot() store.Snapshot
}

const (
	sectionSessions = "sessions"
	sectionDevices  = "devices"
)

// Engine composes the pure aggregations into the metrics snapshot.
type Engine struct {
	source Source
	pool   *async.Pool
	now    func() time.Time
	logger zerolog.Logger
}

type EngineOption func(*Engine)

// WithClock overrides the clock used to place window starts.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(source Source, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		source: source,
		pool:   async.NewPool(len(model.Windows) + 2),
		now:    time.Now,
		logger: logger.With().Str("component", "funnel").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Metrics computes every section from one snapshot. A section that fails is
// named in Errors and left at its zero value; the other sections are kept.
func (e *Engine) Metrics(ctx context.Context) model.ConversionMetrics {
	snap := e.source.Snapshot()
	now := e.now()

	tasks := make([]async.Task, 0, len(model.Windows)+2)
	for _, w := range model.Windows {
		tasks = append(tasks, async.Task{
			Name:    string(w),
			Execute: func() (any, error) { return ComputeWindow(w, snap.Events, now), nil },
		})
	}
	tasks = append(tasks,
		async.Task{
			Name:    sectionSessions,
			Execute: func() (any, error) { return Sessions(snap.Sessions), nil },
		},
		async.Task{
			Name:    sectionDevices,
			Execute: func() (any, error) { return Breakdown(snap.Sessions), nil },
		},
	)

	return e.assemble(now, e.pool.Execute(ctx, tasks))
}

func (e *Engine) assemble(now time.Time, results map[string]async.Result) model.ConversionMetrics {
	out := model.ConversionMetrics{
		GeneratedAt:  now,
		EventsByType: map[model.EventType]int{},
		Windows:      make([]model.WindowMetrics, 0, len(model.Windows)),
	}

	for _, w := range model.Windows {
		wm, err := sectionResult[model.WindowMetrics](results, string(w))
		if err != nil {
			out.Errors = append(out.Errors, err.Error())
			e.logger.Error().Err(err).Str("window", string(w)).Msg("window aggregation failed")
			continue
		}
		out.Windows = append(out.Windows, wm)

		switch w {
		case model.WindowAll:
			out.TotalEvents = wm.TotalEvents
		case model.Window7Days:
			out.RecentEvents = wm.TotalEvents
			out.Rates = wm.Rates
			out.EventsByType = wm.EventsByType
		case model.Window30Days:
			out.MonthlyEvents = wm.TotalEvents
		}
	}

	if stats, err := sectionResult[model.SessionStats](results, sectionSessions); err != nil {
		out.Errors = append(out.Errors, err.Error())
		e.logger.Error().Err(err).Msg("session aggregation failed")
	} else {
		out.Sessions = stats
	}

	if devices, err := sectionResult[model.DeviceBreakdown](results, sectionDevices); err != nil {
		out.Errors = append(out.Errors, err.Error())
		e.logger.Error().Err(err).Msg("device aggregation failed")
	} else {
		out.DeviceStats = devices
	}

	sort.Strings(out.Errors)
	return out
}

// ComputeWindow aggregates the events that fall inside w as seen at now.
func ComputeWindow(w model.Window, events []model.ConversionEvent, now time.Time) model.WindowMetrics {
	wm := model.WindowMetrics{Window: w}
	if span := w.Span(); span > 0 {
		start := now.Add(-span)
		wm.Start = &start
		events = Since(events, start)
	}
	wm.TotalEvents = len(events)
	wm.EventsByType = EventsByType(events)
	wm.Rates = Rates(events)
	return wm
}

func sectionResult[T any](results map[string]async.Result, name string) (T, error) {
	var zero T
	res, ok := results[name]
	if !ok {
		return zero, fmt.Errorf("%s: not computed", name)
	}
	if res.Err != nil {
		return zero, fmt.Errorf("%s: %w", name, res.Err)
	}
	v, ok := res.Data.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result %T", name, res.Data)
	}
	return v, nil
}
