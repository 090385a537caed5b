package bot

import (
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"ditto/internal/commands"
	"ditto/internal/config"
	"ditto/internal/scheduler"
)

// Bot represents the Discord bot
type Bot struct {
	session              *discordgo.Session
	config               *config.Config
	commandModuleHandler *commands.ModuleHandler
	scheduler            *scheduler.Scheduler
	ready                atomic.Bool // guards interaction handling until startup completes
}

// New creates a new Bot instance
func New(cfg *config.Config) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.GetBotToken())
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	// Create modular command handler; this also opens the database and the emoji cache
	handler, err := commands.NewModuleHandler(cfg, session)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		session:              session,
		config:               cfg,
		commandModuleHandler: handler,
		scheduler:            scheduler.NewScheduler(cfg.Logger.WithPrefix("scheduler")),
	}

	// Guild state is enough for /info; members are fetched over REST when needed
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildEmojis

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onInteractionCreate)

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start() error {
	defer func() {
		if err := b.commandModuleHandler.Close(); err != nil {
			b.config.Logger.Warn("error closing database", "err", err)
		}
	}()

	// Open connection
	err := b.session.Open()
	if err != nil {
		return fmt.Errorf("error opening Discord connection: %w", err)
	}
	defer func() {
		if err := b.session.Close(); err != nil {
			b.config.Logger.Warn("error closing Discord session", "err", err)
		}
	}()

	// Set bot status to "initializing"
	if err := b.session.UpdateGameStatus(0, "Transforming..."); err != nil {
		b.config.Logger.Warn("error updating bot status", "err", err)
	}

	// Register slash commands
	if err := b.commandModuleHandler.RegisterCommands(b.session); err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}

	// Initialize module services that need the Discord session
	if err := b.commandModuleHandler.InitializeModuleServices(b.session); err != nil {
		return fmt.Errorf("error initializing module services: %w", err)
	}

	// Register module schedulers (modules declare their own recurring tasks)
	b.commandModuleHandler.RegisterModuleSchedulers(b.scheduler)

	// Register config log rotation (not part of a module)
	if err := b.scheduler.RegisterFunc("@daily", "log-rotation", b.config.RotateLogs); err != nil {
		b.config.Logger.Errorf("Failed to register log rotation: %v", err)
	}

	// Refresh the status every hour
	if err := b.scheduler.RegisterFunc("@hourly", "status", func() error {
		return b.session.UpdateGameStatus(0, randomStatus())
	}); err != nil {
		b.config.Logger.Errorf("Failed to register status rotation: %v", err)
	}

	b.scheduler.Start()
	defer b.scheduler.Stop()

	if err := b.session.UpdateGameStatus(0, randomStatus()); err != nil {
		b.config.Logger.Warn("error updating bot status", "err", err)
	}

	// Signal readiness after all initialization steps complete.
	b.ready.Store(true)
	b.config.Logger.Info("Initialization complete; interactions enabled")
	b.config.Logger.Info("ditto is now running. Press CTRL+C to exit.")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	// Cleanup: Unregister commands, optionally
	if os.Getenv("UNREGISTER_COMMANDS") == "true" {
		b.commandModuleHandler.UnregisterCommands(b.session)
	}

	return nil
}

// onReady handles the ready event
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.config.Logger.Infof("Bot received ready signal! Logged in as: %s", r.User.String())

	pool, err := b.config.GetEmojiGuilds()
	if err != nil {
		return
	}
	joined := make(map[string]bool, len(r.Guilds))
	for _, g := range r.Guilds {
		joined[g.ID] = true
	}
	for _, g := range pool {
		if !joined[g.ID] {
			b.config.Logger.Warn("bot is not a member of emoji pool guild", "guild", g.ID)
		}
	}
}

func randomStatus() string {
	statuses := []string{
		"Use /info to look around",
		"Set your /timezone",
		"Transforming into emoji...",
		"Counting free emoji slots...",
		"Pretending to be a bot",
	}

	return statuses[rand.IntN(len(statuses))]
}

// onInteractionCreate handles slash command interactions
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Initialization guard: reject interactions until startup has completed.
	if !b.ready.Load() {
		switch i.Type {
		case discordgo.InteractionApplicationCommandAutocomplete:
			// Autocomplete must return an autocomplete result type, empty list is fine while starting up.
			_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionApplicationCommandAutocompleteResult,
				Data: &discordgo.InteractionResponseData{Choices: []*discordgo.ApplicationCommandOptionChoice{}},
			})
		case discordgo.InteractionPing:
			_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
		default:
			_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content: "⏳ Bot is starting up, try again in a few seconds.",
					Flags:   discordgo.MessageFlagsEphemeral,
				},
			})
		}
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.commandModuleHandler.HandleInteraction(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.commandModuleHandler.HandleAutocomplete(s, i)
	}
}
