package emojicache

import (
	"errors"
	"fmt"
)

var (
	// ErrNotCached means no record exists for the requested emoji
	ErrNotCached = errors.New("emoji not in cache")

	// ErrDesynced means the record existed but the emoji is gone from its
	// guild. The record has been purged; callers should recreate, not retry.
	ErrDesynced = errors.New("cached emoji was deleted")

	// ErrInconsistent means every pool guild is full and nothing can be
	// evicted, so slot accounting and the records have diverged.
	ErrInconsistent = errors.New("emoji cache simultaneously empty and full")

	// ErrNoPool means no pool guilds are configured
	ErrNoPool = errors.New("no emoji pool guilds configured")

	// ErrPartial matches any *PartialError
	ErrPartial = errors.New("emoji uploaded but not recorded")
)

// PartialError is returned when an emoji was uploaded to a guild but storing
// its record failed. The emoji is left orphaned until the next sweep.
type PartialError struct {
	GuildID string
	EmojiID string
	Err     error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("emoji %s uploaded to guild %s but not recorded: %v", e.EmojiID, e.GuildID, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

func (e *PartialError) Is(target error) bool { return target == ErrPartial }

// isCacheError reports whether err is one of the cache's own outcomes, whose
// side effects (purged records, evictions) must still be committed.
func isCacheError(err error) bool {
	return errors.Is(err, ErrNotCached) || errors.Is(err, ErrDesynced) || errors.Is(err, ErrInconsistent)
}
