package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"

	"conversion-analytics/internal/model"
)

// EventRepository is the external sink the engine writes recorded events to.
type EventRepository interface {
	// Create inserts a single event.
	Create(ctx context.Context, event model.ConversionEvent) error

	// CreateBatch inserts multiple events in one ClickHouse batch.
	CreateBatch(ctx context.Context, events []model.ConversionEvent) error
}

type eventRepository struct {
	conn clickhouse.Conn
}

// NewEventRepository creates an EventRepository backed by ClickHouse.
func NewEventRepository(conn clickhouse.Conn) EventRepository {
	return &eventRepository{conn: conn}
}

const insertEventQuery = `INSERT INTO conversion_events (id, type, user_id, session_id, ts, data)`

const insertEventValuesQuery = insertEventQuery + ` VALUES (?, ?, ?, ?, ?, ?)`

func (r *eventRepository) Create(ctx context.Context, event model.ConversionEvent) error {
	data, err := marshalData(event.Data)
	if err != nil {
		return err
	}

	if err := r.conn.Exec(ctx, insertEventValuesQuery,
		event.ID,
		string(event.Type),
		event.UserID,
		event.SessionID,
		event.Timestamp,
		data,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepository) CreateBatch(ctx context.Context, events []model.ConversionEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertEventQuery)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, event := range events {
		data, err := marshalData(event.Data)
		if err != nil {
			_ = batch.Abort()
			return err
		}

		if err := batch.Append(
			event.ID,
			string(event.Type),
			event.UserID,
			event.SessionID,
			event.Timestamp,
			data,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// marshalData encodes the free-form payload as a JSON string column.
func marshalData(data map[string]any) (string, error) {
	if len(data) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}
	return string(b), nil
}
