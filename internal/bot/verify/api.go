package verify

import (
	"context"

	"github.com/clanhall/gatekeeper/internal/bot/guild"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// ChannelAPI is the slice of the Discord REST surface the controller uses to
// read and write channel messages.
type ChannelAPI interface {
	GetMessages(channelID snowflake.ID, around snowflake.ID, before snowflake.ID, after snowflake.ID, limit int, opts ...rest.RequestOpt) ([]discord.Message, error)
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// Mutator is the role/nickname capability the controller drives. Satisfied
// by guild.Mutator; fakes stand in for it in tests.
type Mutator interface {
	AssignRole(ctx context.Context, memberID snowflake.ID, roleName string) guild.Outcome
	RemoveRole(ctx context.Context, memberID snowflake.ID, roleName string) guild.Outcome
	SetNickname(ctx context.Context, memberID snowflake.ID, nickname string) guild.Outcome
}

// Responder extracts the shared response surface of the interaction events
// the controller answers: who triggered it, reply with a new message, or
// edit the message the interaction came from.
type Responder interface {
	User() discord.User
	CreateMessage(messageCreate discord.MessageCreate, opts ...rest.RequestOpt) error
	UpdateMessage(messageUpdate discord.MessageUpdate, opts ...rest.RequestOpt) error
}

// ModalResponder additionally can answer with an input form. Only component
// interactions support this.
type ModalResponder interface {
	Responder
	Modal(modalCreate discord.ModalCreate, opts ...rest.RequestOpt) error
}

// Compile-time checks that the real collaborators satisfy the interfaces.
var (
	_ ChannelAPI     = (rest.Rest)(nil)
	_ Mutator        = (*guild.Mutator)(nil)
	_ ModalResponder = (*events.ComponentInteractionCreate)(nil)
	_ Responder      = (*events.ModalSubmitInteractionCreate)(nil)
)
