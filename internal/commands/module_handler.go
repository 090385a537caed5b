package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"ditto/internal/commands/modules/emojicache"
	"ditto/internal/commands/modules/help"
	"ditto/internal/commands/modules/info"
	"ditto/internal/commands/modules/ping"
	"ditto/internal/commands/modules/time"
	"ditto/internal/commands/modules/timezone"
	"ditto/internal/commands/types"
	internalConfig "ditto/internal/config"
	"ditto/internal/database"
	cache "ditto/internal/emojicache"
)

// ModuleHandler manages command modules and routes interactions.
//
// The emojicache module is also reached from outside the command system:
// the `ditto emoji sweep` CLI runs its service directly.
type ModuleHandler struct {
	commands map[string]*types.Command
	modules  map[string]types.CommandModule
	config   *internalConfig.Config
	db       *database.DB
	deps     *types.Dependencies
}

// NewModuleHandler opens the database, builds the emoji cache on top of the
// session and registers every command module.
func NewModuleHandler(cfg *internalConfig.Config, session *discordgo.Session) (*ModuleHandler, error) {
	db, err := database.NewDB(cfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	host := cache.NewDiscordHost(session)
	emojiCache, err := cache.New(cfg, db, host)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize emoji cache: %w", err)
	}

	h := &ModuleHandler{
		commands: make(map[string]*types.Command),
		modules:  make(map[string]types.CommandModule),
		config:   cfg,
		db:       db,
		deps: &types.Dependencies{
			Config:     cfg,
			DB:         db,
			EmojiCache: emojiCache,
			Session:    nil, // Set later
		},
	}

	h.registerModules()

	return h, nil
}

// registerModules registers all command modules
func (h *ModuleHandler) registerModules() {
	modules := []struct {
		name   string
		module types.CommandModule
	}{
		{"ping", ping.New()},
		{"help", help.New()},
		{"time", time.New(h.deps)},
		{"timezone", timezone.New(h.deps)},
		{"info", info.New(h.deps)},
		{"emojicache", emojicache.New(h.deps)},
	}

	for _, m := range modules {
		m.module.Register(h.commands, h.deps)
		h.modules[m.name] = m.module
	}
}

// GetModule returns a module by name for callers outside the command system.
//
// Example usage:
//
//	ecMod, ok := handler.GetModule("emojicache").(*emojicache.Module)
func (h *ModuleHandler) GetModule(name string) types.CommandModule {
	return h.modules[name]
}

// GetDB returns the database instance
func (h *ModuleHandler) GetDB() *database.DB {
	return h.db
}

// GetEmojiCache returns the shared emoji cache
func (h *ModuleHandler) GetEmojiCache() *cache.Cache {
	return h.deps.EmojiCache
}

// Commands returns the registered commands keyed by name
func (h *ModuleHandler) Commands() map[string]*types.Command {
	return h.commands
}

// Close releases the database
func (h *ModuleHandler) Close() error {
	return h.db.Close()
}

// RegisterCommands registers all slash commands with Discord
func (h *ModuleHandler) RegisterCommands(s *discordgo.Session) error {
	existingCommands, err := s.ApplicationCommands(s.State.User.ID, "")
	if err != nil {
		h.config.Logger.Warnf("Error fetching existing commands: %v", err)
		return err
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, ec := range existingCommands {
		existingByName[ec.Name] = ec
	}

	for _, c := range h.commands {
		if c.Development {
			// Unregister development commands if they exist
			if existing := existingByName[c.ApplicationCommand.Name]; existing != nil {
				if err := s.ApplicationCommandDelete(s.State.User.ID, "", existing.ID); err != nil {
					h.config.Logger.Warnf("Error deleting command %s: %v", c.ApplicationCommand.Name, err)
				} else {
					h.config.Logger.Infof("Unregistered command: %s", c.ApplicationCommand.Name)
				}
			}
			continue
		}

		if existing := existingByName[c.ApplicationCommand.Name]; existing != nil {
			cmd, err := s.ApplicationCommandEdit(s.State.User.ID, "", existing.ID, c.ApplicationCommand)
			if err != nil {
				return err
			}
			c.ApplicationCommand.ID = cmd.ID
			h.config.Logger.Infof("Updated command: %s", cmd.Name)
		} else {
			cmd, err := s.ApplicationCommandCreate(s.State.User.ID, "", c.ApplicationCommand)
			if err != nil {
				return err
			}
			c.ApplicationCommand.ID = cmd.ID
			h.config.Logger.Infof("Registered command: %s", cmd.Name)
		}
	}

	return nil
}

// HandleInteraction routes slash command interactions to appropriate handlers
func (h *ModuleHandler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	commandName := i.ApplicationCommandData().Name
	if commandName == "" {
		return
	}

	if cmd, exists := h.commands[commandName]; exists {
		cmd.HandlerFunc(s, i)
	}
}

// HandleAutocomplete routes autocomplete requests to appropriate module handlers
func (h *ModuleHandler) HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Only the timezone module offers autocomplete
	if tzMod, ok := h.GetModule("timezone").(*timezone.Module); ok {
		tzMod.HandleAutocomplete(s, i)
	}
}

// UnregisterCommands removes all registered commands
func (h *ModuleHandler) UnregisterCommands(s *discordgo.Session) {
	existingCommands, err := s.ApplicationCommands(s.State.User.ID, "")
	if err != nil {
		h.config.Logger.Warnf("Error fetching existing commands: %v", err)
		return
	}

	for _, existingCmd := range existingCommands {
		if _, exists := h.commands[existingCmd.Name]; exists {
			err := s.ApplicationCommandDelete(s.State.User.ID, "", existingCmd.ID)
			if err != nil {
				h.config.Logger.Warnf("Error deleting command %s: %v", existingCmd.Name, err)
			} else {
				h.config.Logger.Infof("Unregistered command: %s", existingCmd.Name)
			}
		}
	}
}

// InitializeModuleServices hydrates services with the Discord session.
// Called after the Discord session is established.
func (h *ModuleHandler) InitializeModuleServices(s *discordgo.Session) error {
	// Update dependencies with session
	h.deps.Session = s

	// Hydrate services for all modules with the Discord session
	for name, module := range h.modules {
		if service := module.Service(); service != nil {
			if err := service.HydrateServiceDiscordSession(s); err != nil {
				return fmt.Errorf("failed to hydrate %s service with Discord session: %w", name, err)
			}
		}
	}

	return nil
}

// RegisterModuleSchedulers registers recurring tasks from all modules with the scheduler.
// Called after services are initialized.
func (h *ModuleHandler) RegisterModuleSchedulers(scheduler interface {
	RegisterFunc(spec, name string, fn func() error) error
}) {
	for _, module := range h.modules {
		service := module.Service()
		if service == nil {
			continue
		}

		for _, job := range service.ScheduledFuncs() {
			if err := scheduler.RegisterFunc(job.Schedule, job.Name, job.Fn); err != nil {
				h.config.Logger.Errorf("Failed to register scheduled task %s: %v", job.Name, err)
			}
		}
	}
}
