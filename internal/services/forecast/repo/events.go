package repo

import (
	"context"
	"time"

	perr "takt/internal/platform/errors"
	"takt/internal/platform/store"
)

// Events is the read surface over the raw production event stream
// the stream is written by the excluded ingestion pipeline; the engine
// only counts accepted events inside explicit windows
type Events interface {
	// AcceptedCounts returns accepted event counts per part for a line
	// within the half open window [from, to)
	AcceptedCounts(ctx context.Context, lineID string, from, to time.Time) (map[string]int64, error)
}

// chEvents implements Events over the ClickHouse seam
type chEvents struct{ db store.Clickhouse }

// NewCH wires the ClickHouse seam to the event reader
func NewCH(db store.Clickhouse) Events { return &chEvents{db: db} }

func (e *chEvents) AcceptedCounts(ctx context.Context, lineID string, from, to time.Time) (map[string]int64, error) {
	if e.db == nil {
		return nil, perr.Unavailablef("event store not configured")
	}
	const sql = `
SELECT part_no, count() AS hits
FROM production_events
WHERE line_id = ?
AND accepted = 1
AND ts >= ?
AND ts < ?
GROUP BY part_no
`
	rows, err := e.db.Query(ctx, sql, lineID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var part string
		var hits uint64
		if err := rows.Scan(&part, &hits); err != nil {
			return nil, err
		}
		out[part] = int64(hits)
	}
	return out, rows.Err()
}
