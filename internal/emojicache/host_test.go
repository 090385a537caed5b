package emojicache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakeHost is an in-memory Host. Each guild holds an ordered emoji list and
// a fixed limit.
type fakeHost struct {
	mu      sync.Mutex
	guilds  map[string][]*discordgo.Emoji
	limits  map[string]int
	nextID  int
	created []string // guild IDs that received uploads, in order
	deleted []string // emoji IDs deleted, in order

	createErr error
	listErr   map[string]error

	lookups int                   // calls to Emoji
	onList  func(guildID string) // runs before a guild is listed, outside the lock
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		guilds:  make(map[string][]*discordgo.Emoji),
		limits:  make(map[string]int),
		listErr: make(map[string]error),
	}
}

func (h *fakeHost) addGuild(id string, limit int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.limits[id] = limit
	if _, ok := h.guilds[id]; !ok {
		h.guilds[id] = nil
	}
}

// seed puts an emoji straight into a guild without going through the cache
func (h *fakeHost) seed(guildID, emojiID string, animated bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.guilds[guildID] = append(h.guilds[guildID], &discordgo.Emoji{ID: emojiID, Name: "e" + emojiID, Animated: animated})
}

// vanish deletes an emoji behind the cache's back
func (h *fakeHost) vanish(emojiID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for gid, emojis := range h.guilds {
		for i, e := range emojis {
			if e.ID == emojiID {
				h.guilds[gid] = append(emojis[:i:i], emojis[i+1:]...)
				return
			}
		}
	}
}

func (h *fakeHost) has(emojiID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, emojis := range h.guilds {
		for _, e := range emojis {
			if e.ID == emojiID {
				return true
			}
		}
	}
	return false
}

func (h *fakeHost) Emojis(_ context.Context, guildID string) ([]*discordgo.Emoji, error) {
	if h.onList != nil {
		h.onList(guildID)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.listErr[guildID]; err != nil {
		return nil, err
	}
	emojis, ok := h.guilds[guildID]
	if !ok {
		return nil, fmt.Errorf("unknown guild %s", guildID)
	}
	return append([]*discordgo.Emoji(nil), emojis...), nil
}

func (h *fakeHost) EmojiLimit(_ context.Context, guildID string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	limit, ok := h.limits[guildID]
	if !ok {
		return 0, fmt.Errorf("unknown guild %s", guildID)
	}
	return limit, nil
}

func (h *fakeHost) CreateEmoji(_ context.Context, guildID, name string, image []byte) (*discordgo.Emoji, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.createErr != nil {
		return nil, h.createErr
	}
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}
	static := 0
	for _, e := range h.guilds[guildID] {
		if !e.Animated {
			static++
		}
	}
	if static >= h.limits[guildID] {
		return nil, fmt.Errorf("guild %s is full", guildID)
	}

	h.nextID++
	e := &discordgo.Emoji{ID: fmt.Sprintf("new%d", h.nextID), Name: name}
	h.guilds[guildID] = append(h.guilds[guildID], e)
	h.created = append(h.created, guildID)
	return e, nil
}

func (h *fakeHost) Emoji(_ context.Context, guildID, emojiID string) (*discordgo.Emoji, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lookups++
	for _, e := range h.guilds[guildID] {
		if e.ID == emojiID {
			return e, nil
		}
	}
	return nil, nil
}

func (h *fakeHost) DeleteEmoji(_ context.Context, guildID, emojiID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	emojis := h.guilds[guildID]
	for i, e := range emojis {
		if e.ID == emojiID {
			h.guilds[guildID] = append(emojis[:i:i], emojis[i+1:]...)
			h.deleted = append(h.deleted, emojiID)
			return nil
		}
	}
	return nil
}
