package guild

import (
	"context"
	"errors"
	"fmt"

	"github.com/clanhall/gatekeeper/internal/setup/config"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

var ErrChannelUnresolved = errors.New("required channel could not be resolved")

// Channel is a resolved reference to a configured guild channel.
type Channel struct {
	ID   snowflake.ID
	Name string
}

// Context holds the references resolved after authentication: the guild, the
// moderator member and every configured channel, keyed by symbolic name.
type Context struct {
	GuildID     snowflake.ID
	GuildName   string
	ModeratorID snowflake.ID
	MemberRole  string
	GuestRole   string
	Channels    map[string]Channel
}

// Resolve fetches the configured guild, moderator and channels. A guild or
// moderator fetch failure is fatal. Individual channel failures are logged
// and skipped, but the bot cannot run without the two required channels.
func Resolve(ctx context.Context, api API, cfg *config.BotConfig, logger *zap.Logger) (*Context, error) {
	guildID := snowflake.ID(cfg.Guild.ID)

	g, err := api.GetGuild(guildID, false, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %d: %w", cfg.Guild.ID, err)
	}

	moderator, err := api.GetMember(guildID, snowflake.ID(cfg.Guild.ModeratorID), rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch moderator %d: %w", cfg.Guild.ModeratorID, err)
	}

	channels := make(map[string]Channel, len(cfg.Channels))

	for name, channelID := range cfg.Channels {
		ch, err := api.GetChannel(snowflake.ID(channelID), rest.WithCtx(ctx))
		if err != nil {
			logger.Error("Failed to fetch channel",
				zap.String("name", name),
				zap.Uint64("channel_id", channelID),
				zap.Error(err))

			continue
		}

		channels[name] = Channel{ID: ch.ID(), Name: ch.Name()}
	}

	for _, required := range []string{config.ChannelVerification, config.ChannelPendingReview} {
		if _, ok := channels[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrChannelUnresolved, required)
		}
	}

	logger.Info("Resolved guild context",
		zap.String("guild", g.Name),
		zap.String("moderator", moderator.User.Username),
		zap.Int("channels", len(channels)))

	return &Context{
		GuildID:     guildID,
		GuildName:   g.Name,
		ModeratorID: moderator.User.ID,
		MemberRole:  cfg.Guild.MemberRole,
		GuestRole:   cfg.Guild.GuestRole,
		Channels:    channels,
	}, nil
}

// Verification returns the public verification channel.
func (c *Context) Verification() Channel {
	return c.Channels[config.ChannelVerification]
}

// PendingReview returns the moderator review channel.
func (c *Context) PendingReview() Channel {
	return c.Channels[config.ChannelPendingReview]
}
