package repository

import (
	"context"

	"github.com/rs/zerolog"

	"conversion-analytics/internal/model"
)

type logRepository struct {
	logger zerolog.Logger
}

// NewLogRepository returns a sink that writes each event as a log line. It is
// used when no ClickHouse address is configured.
func NewLogRepository(logger zerolog.Logger) EventRepository {
	return &logRepository{logger: logger.With().Str("component", "log_sink").Logger()}
}

func (r *logRepository) Create(_ context.Context, event model.ConversionEvent) error {
	r.logger.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Str("user_id", event.UserID).
		Str("session_id", event.SessionID).
		Time("ts", event.Timestamp).
		Interface("data", event.Data).
		Msg("conversion event")
	return nil
}

func (r *logRepository) CreateBatch(ctx context.Context, events []model.ConversionEvent) error {
	for _, event := range events {
		if err := r.Create(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
