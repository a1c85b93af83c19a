package bot

import (
	"context"
	"sync"
	"time"

	"github.com/clanhall/gatekeeper/internal/bot/guild"
	"github.com/clanhall/gatekeeper/internal/bot/verify"
	"github.com/clanhall/gatekeeper/internal/setup/config"
	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"go.uber.org/zap"
)

// requestTTL bounds how long an unreviewed request stays in memory.
const requestTTL = 7 * 24 * time.Hour

// Bot owns the gateway client and the verification lifecycle controller.
// The controller only exists once the ready signal has arrived and the
// guild context has been resolved.
type Bot struct {
	cfg    *config.Config
	client bot.Client
	logger *zap.Logger
	store  *verify.RequestStore

	mu         sync.RWMutex
	controller *verify.Controller
}

// New configures the Discord client with the gateway intents and event
// listeners the bot needs. The guild context is resolved later, on ready.
func New(cfg *config.Config, logger *zap.Logger) (*Bot, error) {
	b := &Bot{
		cfg:    cfg,
		logger: logger,
		store:  verify.NewRequestStore(requestTTL),
	}

	client, err := disgo.New(cfg.Bot.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMembers,
				gateway.IntentGuildMessages,
				gateway.IntentMessageContent,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnReady:                b.handleReady,
			OnComponentInteraction: b.handleComponentInteraction,
			OnModalSubmit:          b.handleModalSubmit,
		}),
	)
	if err != nil {
		return nil, err
	}

	b.client = client

	return b, nil
}

// Start opens the gateway connection and begins receiving events.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")
	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the gateway connection.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)
}

// handleReady resolves the guild context, wires the controller and makes
// sure the verification prompt exists. Failing to resolve the context is a
// startup failure and ends the process.
func (b *Bot) handleReady(event *events.Ready) {
	ctx := context.Background()

	b.logger.Info("Logged in", zap.String("username", event.User.Username))

	guildCtx, err := guild.Resolve(ctx, b.client.Rest(), &b.cfg.Bot, b.logger)
	if err != nil {
		b.logger.Fatal("Failed to resolve guild context", zap.Error(err))
	}

	mutator := guild.NewMutator(b.client.Rest(), guildCtx.GuildID, b.logger)
	controller := verify.NewController(guildCtx, mutator, b.store, b.client.Rest(), b.logger)

	b.mu.Lock()
	b.controller = controller
	b.mu.Unlock()

	if err := controller.EnsurePrompt(ctx); err != nil {
		b.logger.Error("Failed to ensure verification prompt", zap.Error(err))
	}
}

// handleComponentInteraction processes button presses in a goroutine so the
// listener never blocks the gateway reader.
func (b *Bot) handleComponentInteraction(event *events.ComponentInteractionCreate) {
	go func() {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in component interaction handler", zap.Any("panic", r))
			}

			b.logger.Debug("Component interaction handled",
				zap.String("custom_id", event.Data.CustomID()),
				zap.Duration("duration", time.Since(start)))
		}()

		controller := b.getController()
		if controller == nil {
			b.logger.Debug("Dropping interaction received before ready")
			return
		}

		controller.HandleComponent(context.Background(), event)
	}()
}

// handleModalSubmit processes form submissions the same way.
func (b *Bot) handleModalSubmit(event *events.ModalSubmitInteractionCreate) {
	go func() {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in modal submit handler", zap.Any("panic", r))
			}

			b.logger.Debug("Modal submit handled",
				zap.String("custom_id", event.Data.CustomID),
				zap.Duration("duration", time.Since(start)))
		}()

		controller := b.getController()
		if controller == nil {
			b.logger.Debug("Dropping modal submit received before ready")
			return
		}

		controller.HandleModal(context.Background(), event)
	}()
}

func (b *Bot) getController() *verify.Controller {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.controller
}
