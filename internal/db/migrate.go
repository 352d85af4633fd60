package db

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
)

const createConversionEventsTable = `
CREATE TABLE IF NOT EXISTS conversion_events
(
	id          String,
	type        LowCardinality(String),
	user_id     String,
	session_id  String,
	ts          DateTime64(3, 'UTC'),
	data        String DEFAULT '{}',
	ingested_at DateTime DEFAULT now()
)
ENGINE = ReplacingMergeTree
PARTITION BY toYYYYMM(ts)
ORDER BY (type, ts, session_id, id)
SETTINGS index_granularity = 8192;
`

// RunMigrations ensures required tables exist. This keeps the service
// self-contained without an external migration step.
func RunMigrations(ctx context.Context, conn clickhouse.Conn) error {
	if err := conn.Exec(ctx, createConversionEventsTable); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
