package verify

import (
	"context"
	"strings"
	"time"

	"github.com/clanhall/gatekeeper/internal/bot/constants"
	"github.com/clanhall/gatekeeper/internal/bot/guild"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// Controller drives the verification request lifecycle. It classifies
// interaction events by their custom ID and decides which mutations and
// responses follow. All collaborators are injected at construction.
type Controller struct {
	guild    *guild.Context
	mutator  Mutator
	store    *RequestStore
	channels ChannelAPI
	logger   *zap.Logger
}

// NewController creates a lifecycle controller for the given guild context.
func NewController(
	guildCtx *guild.Context, mutator Mutator, store *RequestStore, channels ChannelAPI, logger *zap.Logger,
) *Controller {
	return &Controller{
		guild:    guildCtx,
		mutator:  mutator,
		store:    store,
		channels: channels,
		logger:   logger.Named("verify"),
	}
}

// HandleComponent routes a button press by its custom ID. Unknown IDs are
// ignored.
func (c *Controller) HandleComponent(ctx context.Context, event *events.ComponentInteractionCreate) {
	switch event.Data.CustomID() {
	case constants.NonMemberVerificationButtonID:
		c.GrantGuestAccess(ctx, event)
	case constants.MemberVerificationButtonID:
		c.OpenVerificationModal(event)
	case constants.AcceptMembershipButtonID:
		c.AcceptRequest(ctx, event, event.Message)
	case constants.DenyMembershipButtonID:
		c.DenyRequest(event, event.Message.ID)
	default:
		c.logger.Debug("Ignoring unknown component", zap.String("custom_id", event.Data.CustomID()))
	}
}

// HandleModal routes a form submission by its custom ID.
func (c *Controller) HandleModal(ctx context.Context, event *events.ModalSubmitInteractionCreate) {
	if event.Data.CustomID != constants.VerificationModalID {
		c.logger.Debug("Ignoring unknown modal", zap.String("custom_id", event.Data.CustomID))
		return
	}

	username := event.Data.Text(constants.UsernameInputID)
	link := event.Data.Text(constants.ScreenshotInputID)

	c.SubmitVerification(ctx, event, username, link)
}

// GrantGuestAccess assigns the guest role to the pressing user and confirms
// privately. No pending request is created.
func (c *Controller) GrantGuestAccess(ctx context.Context, event Responder) {
	userID := event.User().ID

	out := c.mutator.AssignRole(ctx, userID, c.guild.GuestRole)
	c.logger.Info(out.Message, zap.Uint64("user_id", uint64(userID)))

	content := "You have been given the Guest role."
	if !out.OK {
		content = out.Message
	}

	c.replyEphemeral(event, content)
}

// OpenVerificationModal shows the two-field input form. No role mutation
// happens until the form comes back.
func (c *Controller) OpenVerificationModal(event ModalResponder) {
	modal := discord.NewModalCreateBuilder().
		SetCustomID(constants.VerificationModalID).
		SetTitle("Membership Verification").
		AddActionRow(
			discord.NewTextInput(constants.UsernameInputID, discord.TextInputStyleShort, "In-Game Username").
				WithRequired(true),
		).
		AddActionRow(
			discord.NewTextInput(constants.ScreenshotInputID, discord.TextInputStyleShort, "Screenshot Link").
				WithPlaceholder("Direct link to a screenshot showing your IGN and the club page.").
				WithRequired(true),
		).
		Build()

	if err := event.Modal(modal); err != nil {
		c.logger.Error("Failed to show verification modal", zap.Error(err))
	}
}

// SubmitVerification moves a request into pending review: it posts the
// review message, records the request, assigns the temporary guest role and
// replies privately to the submitter. The role assignment runs even when the
// review post could not be created, and the submitter is told so.
func (c *Controller) SubmitVerification(ctx context.Context, event Responder, username, link string) {
	userID := event.User().ID

	embed := discord.NewEmbedBuilder().
		SetTitle(constants.ReviewRequestTitle).
		SetDescription(reviewDescription(userID, username, link)).
		SetColor(constants.ReviewRequestColor).
		Build()

	message, err := c.channels.CreateMessage(c.guild.PendingReview().ID,
		discord.NewMessageCreateBuilder().
			SetEmbeds(embed).
			AddActionRow(
				discord.NewSuccessButton("Accept", constants.AcceptMembershipButtonID),
				discord.NewDangerButton("Deny", constants.DenyMembershipButtonID),
			).
			Build(),
		rest.WithCtx(ctx))

	forwarded := err == nil
	if forwarded {
		c.store.Set(message.ID, Request{
			UserID:    userID,
			Username:  username,
			Link:      link,
			CreatedAt: time.Now(),
		})

		c.logger.Info("Verification request forwarded",
			zap.Uint64("user_id", uint64(userID)),
			zap.String("username", username))
	} else {
		c.logger.Error("Failed to send pending review post",
			zap.Uint64("user_id", uint64(userID)),
			zap.Error(err))
	}

	out := c.mutator.AssignRole(ctx, userID, c.guild.GuestRole)
	c.logger.Info(out.Message, zap.Uint64("user_id", uint64(userID)))

	content := "Your verification request has been forwarded. " +
		"You have been given a temporary Guest role while it is being processed."
	if !forwarded {
		content = "Your verification request could not be forwarded. Please try again later."
	}

	c.replyEphemeral(event, content)
}

// AcceptRequest finalizes a request: member role on, guest role off,
// nickname set to the claimed username, and the review post edited to its
// terminal state. Partial failures are not rolled back; they are logged and
// surfaced in the terminal message.
func (c *Controller) AcceptRequest(ctx context.Context, event Responder, message discord.Message) {
	request, ok := c.store.Get(message.ID)
	if !ok {
		// No live record, recover the request from the message text.
		request = requestFromMessage(message)
		if request.UserID == 0 {
			c.logger.Warn("Could not recover request from review post",
				zap.Uint64("message_id", uint64(message.ID)))
		}
	}

	outcomes := []guild.Outcome{
		c.mutator.AssignRole(ctx, request.UserID, c.guild.MemberRole),
		c.mutator.RemoveRole(ctx, request.UserID, c.guild.GuestRole),
		c.mutator.SetNickname(ctx, request.UserID, request.Username),
	}

	var failures []string

	for _, out := range outcomes {
		c.logger.Info(out.Message, zap.Uint64("user_id", uint64(request.UserID)))

		if !out.OK {
			failures = append(failures, out.Message)
		}
	}

	content := "User was verified."
	if len(failures) > 0 {
		content += "\nSome steps did not complete: " + strings.Join(failures, " ")
	}

	c.finalize(event, message.ID, content)
}

// DenyRequest edits the review post to its terminal denied state. No role
// changes.
func (c *Controller) DenyRequest(event Responder, messageID snowflake.ID) {
	c.finalize(event, messageID, "Verification request denied.")
}

// finalize strips the action buttons, replaces the content and drops the
// pending record.
func (c *Controller) finalize(event Responder, messageID snowflake.ID, content string) {
	update := discord.NewMessageUpdateBuilder().
		SetContent(content).
		ClearContainerComponents().
		Build()

	if err := event.UpdateMessage(update); err != nil {
		c.logger.Error("Failed to update review post",
			zap.Uint64("message_id", uint64(messageID)),
			zap.Error(err))

		return
	}

	c.store.Delete(messageID)
}

func (c *Controller) replyEphemeral(event Responder, content string) {
	err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build())
	if err != nil {
		c.logger.Error("Failed to reply to interaction", zap.Error(err))
	}
}
