package database

import (
	"context"
	"time"
)

// Cleanup removes history and status rows older than a week; the graph never
// looks back further than hours_to_show anyway.
func (db *Database) Cleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -8)
	if _, err := db.conn.Exec(ctx, "DELETE FROM Sample WHERE time_stamp < $1", cutoff); err != nil {
		return err
	}
	if _, err := db.conn.Exec(ctx, "DELETE FROM Status WHERE time_stamp < $1", cutoff); err != nil {
		return err
	}
	return nil
}
