package verify

import (
	"context"
	"fmt"

	"github.com/clanhall/gatekeeper/internal/bot/constants"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"go.uber.org/zap"
)

const promptBody = "You will be asked to state your IGN and add a screenshot showing " +
	"both your character sheet and your clubs tab.\n\n" +
	"Only verified members can:\n" +
	"- Post in trade channels\n" +
	"- Participate in giveaways"

// EnsurePrompt posts the verification prompt to the verification channel
// unless one of the most recent messages already carries it. The check and
// the send are not atomic; this runs once at startup, so a duplicate would
// need two near-simultaneous startups.
func (c *Controller) EnsurePrompt(ctx context.Context) error {
	channel := c.guild.Verification()

	messages, err := c.channels.GetMessages(channel.ID, 0, 0, 0, constants.PromptScanLimit, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch verification channel history: %w", err)
	}

	for _, message := range messages {
		if len(message.Embeds) > 0 && message.Embeds[0].Title == constants.VerifyPromptTitle {
			c.logger.Debug("Verification prompt already present",
				zap.Uint64("message_id", uint64(message.ID)))

			return nil
		}
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(constants.VerifyPromptTitle).
		SetDescription(promptBody).
		SetColor(constants.VerifyPromptColor).
		Build()

	_, err = c.channels.CreateMessage(channel.ID,
		discord.NewMessageCreateBuilder().
			SetEmbeds(embed).
			AddActionRow(
				discord.NewPrimaryButton("Verify Membership", constants.MemberVerificationButtonID),
				discord.NewSecondaryButton("Non-Member Access", constants.NonMemberVerificationButtonID),
			).
			Build(),
		rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to send verification prompt: %w", err)
	}

	c.logger.Info("Verification prompt posted", zap.Uint64("channel_id", uint64(channel.ID)))

	return nil
}
