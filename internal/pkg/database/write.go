package database

import (
	"context"
	"time"

	"github.com/remihome/remi-card/internal/pkg/model"
)

// WriteSample appends one history reading for the temperature graph.
func (db *Database) WriteSample(ctx context.Context, sample model.Sample) error {
	const insertSQL = `
	INSERT INTO Sample (time_stamp, entity_id, value, unit_of_measurement)
	VALUES ($1, $2, $3, $4)
	`
	if _, err := db.conn.Exec(ctx, insertSQL, sample.TimeStamp, sample.EntityID, sample.Value, sample.Unit); err != nil {
		return err
	}
	return nil
}

// PublishStatus makes the database a status sink alongside mqtt: every status
// change lands in the Status table.
func (db *Database) PublishStatus(ctx context.Context, status model.CardStatus) error {
	const insertSQL = `
	INSERT INTO Status (time_stamp, device_id, status_line, face, available)
	VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := db.conn.Exec(ctx, insertSQL, time.Now(), status.DeviceID, status.StatusLine, status.Face, status.Available); err != nil {
		return err
	}
	return nil
}

func (db *Database) RegisterDevice(device *model.Device) error {
	_, err := db.conn.Exec(context.Background(), `
		INSERT INTO Device (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;`, device.ID, device.Name)
	if err != nil {
		return err
	}
	return nil
}

// SaveCardConfig persists the editor's merged configuration document.
func (db *Database) SaveCardConfig(ctx context.Context, deviceID string, configJSON []byte) error {
	const upsertSQL = `
	INSERT INTO CardConfig (device_id, config, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (device_id) DO UPDATE SET config = EXCLUDED.config, updated_at = EXCLUDED.updated_at;
	`
	if _, err := db.conn.Exec(ctx, upsertSQL, deviceID, configJSON, time.Now()); err != nil {
		return err
	}
	return nil
}
