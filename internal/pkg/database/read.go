package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/remihome/remi-card/internal/pkg/model"
)

// GetSamples returns history readings for one entity inside a time window,
// newest first. Callers size the window from hours_to_show.
func (db *Database) GetSamples(ctx context.Context, entityID string, from, to time.Time) (model.Samples, error) {
	const query = `
	SELECT id, time_stamp, entity_id, value, unit_of_measurement
	FROM Sample
	WHERE entity_id = $1 AND time_stamp BETWEEN $2 AND $3
	ORDER BY time_stamp DESC;
	`

	rows, err := db.conn.Query(ctx, query, entityID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSamples(rows)
}

func scanSamples(rows pgx.Rows) (model.Samples, error) {
	var samples model.Samples
	for rows.Next() {
		var sample model.Sample
		if err := rows.Scan(&sample.ID, &sample.TimeStamp, &sample.EntityID, &sample.Value, &sample.Unit); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	if err := rows.Err(); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return samples, nil
		}
		return nil, err
	}

	return samples, nil
}

// LoadCardConfig returns the stored configuration document for a device, or
// (nil, nil) when none was saved yet.
func (db *Database) LoadCardConfig(ctx context.Context, deviceID string) ([]byte, error) {
	const query = `SELECT config FROM CardConfig WHERE device_id = $1;`

	var configJSON []byte
	if err := db.conn.QueryRow(ctx, query, deviceID).Scan(&configJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return configJSON, nil
}
