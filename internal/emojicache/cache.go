// Package emojicache keeps user avatars (and other images) available as custom
// emoji, spread across a pool of guilds whose only job is to host them.
//
// Every uploaded emoji has a record with the time it was last fetched. New
// uploads go to a guild chosen at random, weighted by free slots; when the
// whole pool is full the least recently fetched emoji is evicted first.
package emojicache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"ditto/internal/avatar"
	"ditto/internal/config"
	"ditto/internal/database"
)

// Cache is the emoji slot allocator and read-through cache
type Cache struct {
	db     *database.DB
	host   Host
	logger *log.Logger

	pool         []config.EmojiGuild
	leaveFree    int
	notFound     *discordgo.Emoji
	sweepOrphans bool

	// uploads throttles emoji creation. It is waited on before a transaction
	// opens so readers never queue behind it.
	uploads *rate.Limiter

	// renderAvatar produces the PNG uploaded for a user's avatar emoji
	renderAvatar func(ctx context.Context, u *discordgo.User) ([]byte, error)
	now          func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a Cache over the pool guilds configured in cfg
func New(cfg *config.Config, db *database.DB, host Host) (*Cache, error) {
	pool, err := cfg.GetEmojiGuilds()
	if err != nil {
		return nil, err
	}

	leaveFree := cfg.GetEmojiLeaveFree()
	if leaveFree < 0 {
		leaveFree = 0
	}

	perMinute := cfg.GetEmojiCreateRatePerMinute()
	if perMinute <= 0 {
		perMinute = 1
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}

	return &Cache{
		db:           db,
		host:         host,
		logger:       cfg.Logger.WithPrefix("emojicache"),
		pool:         pool,
		leaveFree:    leaveFree,
		notFound:     ParseEmoji(cfg.GetEmojiNotFound()),
		sweepOrphans: cfg.GetEmojiSweepOrphans(),
		uploads:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		renderAvatar: func(ctx context.Context, u *discordgo.User) ([]byte, error) {
			return avatar.Render(ctx, httpClient, u)
		},
		now: time.Now,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}, nil
}

// NotFound returns the placeholder emoji used when nothing can be resolved
func (c *Cache) NotFound() *discordgo.Emoji {
	return c.notFound
}

// cacheTx is a store transaction that remembers whether it deleted emoji
// from their guilds.
type cacheTx struct {
	*database.Tx
	evicted bool
}

// withTx runs fn in a transaction. The cache's own error outcomes still
// commit, so purges made on the way are not lost. Any failure after an
// eviction commits too, since the evicted emoji is already gone remotely.
func (c *Cache) withTx(ctx context.Context, fn func(tx *cacheTx) error) error {
	var kept error
	err := c.db.WithTx(ctx, func(tx *database.Tx) error {
		ct := &cacheTx{Tx: tx}
		err := fn(ct)
		if err != nil && (isCacheError(err) || ct.evicted) {
			kept = err
			return nil
		}
		return err
	})
	if err != nil {
		if kept != nil {
			return errors.Join(kept, err)
		}
		return err
	}
	return kept
}

// waitUpload blocks until the upload throttle allows another emoji
func (c *Cache) waitUpload(ctx context.Context) error {
	if err := c.uploads.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for upload slot: %w", err)
	}
	return nil
}

// CreateEmoji uploads image as a new emoji named name to a pool guild and
// records it. If the upload succeeds but the record cannot be stored the
// error is a *PartialError.
func (c *Cache) CreateEmoji(ctx context.Context, name string, image []byte) (*discordgo.Emoji, error) {
	if err := c.waitUpload(ctx); err != nil {
		return nil, err
	}

	var created *discordgo.Emoji
	var guildID string

	err := c.withTx(ctx, func(tx *cacheTx) error {
		var err error
		created, guildID, err = c.createEmoji(ctx, tx, name, image)
		return err
	})
	if err != nil {
		return nil, partial(created, guildID, err)
	}
	return created, nil
}

// CreateUserEmoji uploads u's round avatar and binds it to u. Callers should
// check FetchUserEmoji first; this always creates a new emoji.
func (c *Cache) CreateUserEmoji(ctx context.Context, u *discordgo.User) (*discordgo.Emoji, error) {
	image, err := c.renderAvatar(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to render avatar for %s: %w", u.ID, err)
	}
	if err := c.waitUpload(ctx); err != nil {
		return nil, err
	}

	var created *discordgo.Emoji
	var guildID string

	err = c.withTx(ctx, func(tx *cacheTx) error {
		var err error
		created, guildID, err = c.createUserEmoji(ctx, tx, u, image)
		return err
	})
	if err != nil {
		return nil, partial(created, guildID, err)
	}
	return created, nil
}

// FetchEmoji returns the live emoji for emojiID and marks it as recently
// used. An empty emojiID returns the placeholder without touching the store.
func (c *Cache) FetchEmoji(ctx context.Context, emojiID string) (*discordgo.Emoji, error) {
	if emojiID == "" {
		return c.notFound, nil
	}

	var emoji *discordgo.Emoji
	err := c.withTx(ctx, func(tx *cacheTx) error {
		var err error
		emoji, err = c.fetchEmoji(ctx, tx, emojiID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return emoji, nil
}

// FetchUserEmoji returns the avatar emoji for u, creating it when u has none
// or when the bound emoji was deleted behind the cache's back. A nil user
// yields the placeholder.
func (c *Cache) FetchUserEmoji(ctx context.Context, u *discordgo.User) (*discordgo.Emoji, error) {
	if u == nil {
		return c.FetchEmoji(ctx, "")
	}

	var emoji *discordgo.Emoji
	err := c.withTx(ctx, func(tx *cacheTx) error {
		var err error
		emoji, err = c.boundEmoji(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	if emoji != nil {
		return emoji, nil
	}

	// Rendering and throttling happen with no transaction open
	image, err := c.renderAvatar(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to render avatar for %s: %w", u.ID, err)
	}
	if err := c.waitUpload(ctx); err != nil {
		return nil, err
	}

	var created *discordgo.Emoji
	var guildID string

	err = c.withTx(ctx, func(tx *cacheTx) error {
		// A concurrent call may have bound an emoji in the meantime
		bound, err := c.boundEmoji(ctx, tx, u)
		if err != nil || bound != nil {
			emoji = bound
			return err
		}

		created, guildID, err = c.createUserEmoji(ctx, tx, u, image)
		emoji = created
		return err
	})
	if err != nil {
		return nil, partial(created, guildID, err)
	}
	return emoji, nil
}

// boundEmoji resolves the emoji bound to u. It returns nil when u has no
// usable binding, dropping a binding whose emoji is gone.
func (c *Cache) boundEmoji(ctx context.Context, tx *cacheTx, u *discordgo.User) (*discordgo.Emoji, error) {
	emojiID, err := tx.UserEmoji(ctx, u.ID)
	if err != nil || emojiID == "" {
		return nil, err
	}

	emoji, err := c.fetchEmoji(ctx, tx, emojiID)
	switch {
	case err == nil:
		return emoji, nil
	case errors.Is(err, ErrDesynced), errors.Is(err, ErrNotCached):
		c.logger.Warn("dropping stale user emoji binding", "user", u.ID, "emoji", emojiID, "err", err)
		return nil, tx.DeleteUserEmoji(ctx, u.ID)
	default:
		return nil, err
	}
}

// DeleteEmoji removes a cached emoji from its guild and drops its record and
// any user binding to it. It fails with ErrNotCached if there is no record.
func (c *Cache) DeleteEmoji(ctx context.Context, emojiID string) error {
	return c.withTx(ctx, func(tx *cacheTx) error {
		rec, err := tx.EmojiRecord(ctx, emojiID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%w: %s", ErrNotCached, emojiID)
		}

		return c.evict(ctx, tx, *rec)
	})
}

func (c *Cache) createEmoji(ctx context.Context, tx *cacheTx, name string, image []byte) (*discordgo.Emoji, string, error) {
	guild, err := c.selectGuild(ctx, tx)
	if err != nil {
		return nil, "", err
	}

	emoji, err := c.host.CreateEmoji(ctx, guild.ID, name, image)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create emoji in guild %s: %w", guild.ID, err)
	}

	if err := tx.InsertEmojiRecord(ctx, emoji.ID, guild.ID, c.now()); err != nil {
		return emoji, guild.ID, err
	}

	c.logger.Debug("created emoji", "emoji", emoji.ID, "name", name, "guild", guild.ID)
	return emoji, guild.ID, nil
}

func (c *Cache) createUserEmoji(ctx context.Context, tx *cacheTx, u *discordgo.User, image []byte) (*discordgo.Emoji, string, error) {
	emoji, guildID, err := c.createEmoji(ctx, tx, EmojiName(u), image)
	if err != nil {
		return emoji, guildID, err
	}

	if err := tx.UpsertUserEmoji(ctx, u.ID, emoji.ID); err != nil {
		return emoji, guildID, err
	}
	return emoji, guildID, nil
}

func (c *Cache) fetchEmoji(ctx context.Context, tx *cacheTx, emojiID string) (*discordgo.Emoji, error) {
	rec, err := tx.EmojiRecord(ctx, emojiID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, emojiID)
	}

	// Recency is bumped before the liveness check so a concurrent eviction
	// never picks an emoji that is being fetched.
	if err := tx.TouchEmojiRecord(ctx, emojiID, c.now()); err != nil {
		return nil, err
	}

	emoji, err := c.host.Emoji(ctx, rec.GuildID, emojiID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve emoji %s: %w", emojiID, err)
	}
	if emoji == nil {
		if _, err := tx.DeleteEmojiRecord(ctx, emojiID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrDesynced, emojiID)
	}
	return emoji, nil
}

// evict deletes an emoji and its record. Both halves tolerate the emoji or
// record already being gone, so two callers evicting the same record is fine.
func (c *Cache) evict(ctx context.Context, tx *cacheTx, rec database.EmojiRecord) error {
	if err := c.host.DeleteEmoji(ctx, rec.GuildID, rec.EmojiID); err != nil {
		return fmt.Errorf("failed to delete emoji %s from guild %s: %w", rec.EmojiID, rec.GuildID, err)
	}
	tx.evicted = true

	if _, err := tx.DeleteEmojiRecord(ctx, rec.EmojiID); err != nil {
		return err
	}

	c.logger.Debug("evicted emoji", "emoji", rec.EmojiID, "guild", rec.GuildID, "last_fetched", rec.LastFetched)
	return nil
}

// partial upgrades err to a *PartialError when an emoji had already been
// uploaded before the failure.
func partial(created *discordgo.Emoji, guildID string, err error) error {
	if created == nil {
		return err
	}
	return &PartialError{GuildID: guildID, EmojiID: created.ID, Err: err}
}
