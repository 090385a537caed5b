package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EmojiRecord tracks one emoji uploaded to a cache guild
type EmojiRecord struct {
	EmojiID     string
	GuildID     string
	LastFetched time.Time
}

// UserEmojiBinding maps a user to the emoji that represents them
type UserEmojiBinding struct {
	UserID  string
	EmojiID string
}

// EmojiRecord returns the record for emojiID, or nil if it is not cached
func (t *Tx) EmojiRecord(ctx context.Context, emojiID string) (*EmojiRecord, error) {
	row := t.tx.QueryRowContext(ctx, `
	SELECT emoji_id, guild_id, last_fetched
	FROM emoji_records
	WHERE emoji_id = ?
	`, emojiID)

	rec, err := scanEmojiRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get emoji record: %w", err)
	}
	return rec, nil
}

// OldestEmojiRecord returns the least recently fetched record, or nil when the
// table is empty. Ties fall back to insertion order.
func (t *Tx) OldestEmojiRecord(ctx context.Context) (*EmojiRecord, error) {
	row := t.tx.QueryRowContext(ctx, `
	SELECT emoji_id, guild_id, last_fetched
	FROM emoji_records
	ORDER BY last_fetched ASC, rowid ASC
	LIMIT 1
	`)

	rec, err := scanEmojiRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get oldest emoji record: %w", err)
	}
	return rec, nil
}

// EmojiRecords lists every record, oldest first
func (t *Tx) EmojiRecords(ctx context.Context) ([]EmojiRecord, error) {
	rows, err := t.tx.QueryContext(ctx, `
	SELECT emoji_id, guild_id, last_fetched
	FROM emoji_records
	ORDER BY last_fetched ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query emoji records: %w", err)
	}
	defer rows.Close()

	var records []EmojiRecord
	for rows.Next() {
		rec, err := scanEmojiRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan emoji record: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating emoji records: %w", err)
	}
	return records, nil
}

// CountEmojiRecords returns the number of cached emoji
func (t *Tx) CountEmojiRecords(ctx context.Context) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM emoji_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count emoji records: %w", err)
	}
	return n, nil
}

// InsertEmojiRecord stores a freshly uploaded emoji
func (t *Tx) InsertEmojiRecord(ctx context.Context, emojiID, guildID string, fetchedAt time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
	INSERT INTO emoji_records (emoji_id, guild_id, last_fetched)
	VALUES (?, ?, ?)
	`, emojiID, guildID, fetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert emoji record: %w", err)
	}
	return nil
}

// TouchEmojiRecord bumps last_fetched for emojiID
func (t *Tx) TouchEmojiRecord(ctx context.Context, emojiID string, fetchedAt time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
	UPDATE emoji_records SET last_fetched = ? WHERE emoji_id = ?
	`, fetchedAt.UTC(), emojiID)
	if err != nil {
		return fmt.Errorf("failed to update emoji record: %w", err)
	}
	return nil
}

// DeleteEmojiRecord removes the record for emojiID and any user binding that
// points at it. It reports whether a record existed.
func (t *Tx) DeleteEmojiRecord(ctx context.Context, emojiID string) (bool, error) {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM user_emoji WHERE emoji_id = ?`, emojiID); err != nil {
		return false, fmt.Errorf("failed to delete user emoji binding: %w", err)
	}

	result, err := t.tx.ExecContext(ctx, `DELETE FROM emoji_records WHERE emoji_id = ?`, emojiID)
	if err != nil {
		return false, fmt.Errorf("failed to delete emoji record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// UserEmoji returns the emoji ID bound to userID, or "" if there is none
func (t *Tx) UserEmoji(ctx context.Context, userID string) (string, error) {
	var emojiID string
	err := t.tx.QueryRowContext(ctx, `SELECT emoji_id FROM user_emoji WHERE user_id = ?`, userID).Scan(&emojiID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get user emoji: %w", err)
	}
	return emojiID, nil
}

// UpsertUserEmoji binds userID to emojiID, replacing any previous binding
func (t *Tx) UpsertUserEmoji(ctx context.Context, userID, emojiID string) error {
	_, err := t.tx.ExecContext(ctx, `
	INSERT INTO user_emoji (user_id, emoji_id)
	VALUES (?, ?)
	ON CONFLICT(user_id)
	DO UPDATE SET emoji_id = excluded.emoji_id
	`, userID, emojiID)
	if err != nil {
		return fmt.Errorf("failed to store user emoji: %w", err)
	}
	return nil
}

// DeleteUserEmoji drops the binding for userID, if any
func (t *Tx) DeleteUserEmoji(ctx context.Context, userID string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM user_emoji WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete user emoji: %w", err)
	}
	return nil
}

// CountUserEmoji returns the number of user bindings
func (t *Tx) CountUserEmoji(ctx context.Context) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_emoji").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count user emoji: %w", err)
	}
	return n, nil
}

// UserEmojiBindings lists every user binding
func (t *Tx) UserEmojiBindings(ctx context.Context) ([]UserEmojiBinding, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT user_id, emoji_id FROM user_emoji ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user emoji: %w", err)
	}
	defer rows.Close()

	var bindings []UserEmojiBinding
	for rows.Next() {
		var b UserEmojiBinding
		if err := rows.Scan(&b.UserID, &b.EmojiID); err != nil {
			return nil, fmt.Errorf("failed to scan user emoji: %w", err)
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user emoji: %w", err)
	}
	return bindings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmojiRecord(row rowScanner) (*EmojiRecord, error) {
	var rec EmojiRecord
	if err := row.Scan(&rec.EmojiID, &rec.GuildID, &rec.LastFetched); err != nil {
		return nil, err
	}
	return &rec, nil
}
