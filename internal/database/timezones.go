package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetUserTimezone stores the IANA time zone name for userID, replacing any previous value
func (db *DB) SetUserTimezone(ctx context.Context, userID, timeZone string) error {
	query := `
	INSERT INTO user_timezones (user_id, time_zone, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(user_id)
	DO UPDATE SET
		time_zone = excluded.time_zone,
		updated_at = CURRENT_TIMESTAMP
	`

	if _, err := db.conn.ExecContext(ctx, query, userID, timeZone); err != nil {
		return fmt.Errorf("failed to store user timezone: %w", err)
	}
	return nil
}

// GetUserTimezone returns the stored time zone name for userID, or "" if none is set
func (db *DB) GetUserTimezone(ctx context.Context, userID string) (string, error) {
	var timeZone string
	err := db.conn.QueryRowContext(ctx, `SELECT time_zone FROM user_timezones WHERE user_id = ?`, userID).Scan(&timeZone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get user timezone: %w", err)
	}
	return timeZone, nil
}

// DeleteUserTimezone forgets the time zone for userID
func (db *DB) DeleteUserTimezone(ctx context.Context, userID string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM user_timezones WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete user timezone: %w", err)
	}
	return nil
}
