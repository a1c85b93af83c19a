package verify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clanhall/gatekeeper/internal/bot/constants"
	"github.com/clanhall/gatekeeper/internal/bot/guild"
	"github.com/clanhall/gatekeeper/internal/bot/verify"
	"github.com/clanhall/gatekeeper/internal/setup/config"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	verifyChannelID  = snowflake.ID(500)
	pendingChannelID = snowflake.ID(501)
)

// mutation records a single call against the fake mutator.
type mutation struct {
	op       string
	memberID snowflake.ID
	arg      string
}

type fakeMutator struct {
	calls []mutation
	fail  map[string]guild.Outcome
}

func (f *fakeMutator) outcome(op string, ok string) guild.Outcome {
	if out, exists := f.fail[op]; exists {
		return out
	}

	return guild.Outcome{OK: true, Message: ok}
}

func (f *fakeMutator) AssignRole(_ context.Context, memberID snowflake.ID, roleName string) guild.Outcome {
	f.calls = append(f.calls, mutation{op: "assign", memberID: memberID, arg: roleName})
	return f.outcome("assign", "Assigned the "+roleName+" role.")
}

func (f *fakeMutator) RemoveRole(_ context.Context, memberID snowflake.ID, roleName string) guild.Outcome {
	f.calls = append(f.calls, mutation{op: "remove", memberID: memberID, arg: roleName})
	return f.outcome("remove", "Removed the "+roleName+" role.")
}

func (f *fakeMutator) SetNickname(_ context.Context, memberID snowflake.ID, nickname string) guild.Outcome {
	f.calls = append(f.calls, mutation{op: "nickname", memberID: memberID, arg: nickname})
	return f.outcome("nickname", "Gave the nickname "+nickname+".")
}

type sentMessage struct {
	channelID snowflake.ID
	message   discord.MessageCreate
}

type fakeChannels struct {
	history    []discord.Message
	historyErr error
	createErr  error
	sent       []sentMessage
	nextID     snowflake.ID
}

func (f *fakeChannels) GetMessages(
	_ snowflake.ID, _ snowflake.ID, _ snowflake.ID, _ snowflake.ID, _ int, _ ...rest.RequestOpt,
) ([]discord.Message, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}

	return f.history, nil
}

func (f *fakeChannels) CreateMessage(
	channelID snowflake.ID, message discord.MessageCreate, _ ...rest.RequestOpt,
) (*discord.Message, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.sent = append(f.sent, sentMessage{channelID: channelID, message: message})
	f.nextID++

	return &discord.Message{ID: f.nextID, Embeds: message.Embeds}, nil
}

type fakeEvent struct {
	user      discord.User
	created   []discord.MessageCreate
	updated   []discord.MessageUpdate
	modals    []discord.ModalCreate
	updateErr error
}

func (f *fakeEvent) User() discord.User { return f.user }

func (f *fakeEvent) CreateMessage(message discord.MessageCreate, _ ...rest.RequestOpt) error {
	f.created = append(f.created, message)
	return nil
}

func (f *fakeEvent) UpdateMessage(message discord.MessageUpdate, _ ...rest.RequestOpt) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	f.updated = append(f.updated, message)

	return nil
}

func (f *fakeEvent) Modal(modal discord.ModalCreate, _ ...rest.RequestOpt) error {
	f.modals = append(f.modals, modal)
	return nil
}

type testHarness struct {
	controller *verify.Controller
	mutator    *fakeMutator
	channels   *fakeChannels
	store      *verify.RequestStore
}

func newHarness() *testHarness {
	mutator := &fakeMutator{}
	channels := &fakeChannels{}
	store := verify.NewRequestStore(time.Hour)

	guildCtx := &guild.Context{
		GuildID:    1000,
		MemberRole: "Member",
		GuestRole:  "Guest",
		Channels: map[string]guild.Channel{
			config.ChannelVerification:  {ID: verifyChannelID, Name: "verify-here"},
			config.ChannelPendingReview: {ID: pendingChannelID, Name: "pending"},
		},
	}

	return &testHarness{
		controller: verify.NewController(guildCtx, mutator, store, channels, zap.NewNop()),
		mutator:    mutator,
		channels:   channels,
		store:      store,
	}
}

func TestGrantGuestAccess(t *testing.T) {
	t.Parallel()

	h := newHarness()
	event := &fakeEvent{user: discord.User{ID: 42}}

	h.controller.GrantGuestAccess(context.Background(), event)

	require.Equal(t, []mutation{{op: "assign", memberID: 42, arg: "Guest"}}, h.mutator.calls)
	assert.Empty(t, event.updated, "guest path must not edit any message")
	require.Len(t, event.created, 1)
	assert.NotZero(t, event.created[0].Flags&discord.MessageFlagEphemeral)
}

func TestOpenVerificationModal(t *testing.T) {
	t.Parallel()

	h := newHarness()
	event := &fakeEvent{user: discord.User{ID: 42}}

	h.controller.OpenVerificationModal(event)

	require.Len(t, event.modals, 1)
	assert.Equal(t, constants.VerificationModalID, event.modals[0].CustomID)
	assert.Empty(t, h.mutator.calls, "opening the form must not mutate roles")
}

func TestSubmitVerification(t *testing.T) {
	t.Parallel()

	h := newHarness()
	event := &fakeEvent{user: discord.User{ID: 99}}

	h.controller.SubmitVerification(context.Background(), event, "Bob", "http://y")

	// Exactly one review post in the pending channel carrying both values.
	require.Len(t, h.channels.sent, 1)
	assert.Equal(t, pendingChannelID, h.channels.sent[0].channelID)

	require.Len(t, h.channels.sent[0].message.Embeds, 1)
	description := h.channels.sent[0].message.Embeds[0].Description
	assert.Contains(t, description, "<@99>")
	assert.Contains(t, description, "**Bob**")
	assert.Contains(t, description, "http://y")

	// One guest assignment and one ephemeral reply.
	require.Equal(t, []mutation{{op: "assign", memberID: 99, arg: "Guest"}}, h.mutator.calls)
	require.Len(t, event.created, 1)
	assert.NotZero(t, event.created[0].Flags&discord.MessageFlagEphemeral)

	// The request is recorded under the review message ID.
	request, exists := h.store.Get(h.channels.nextID)
	require.True(t, exists)
	assert.Equal(t, snowflake.ID(99), request.UserID)
	assert.Equal(t, "Bob", request.Username)
}

func TestSubmitVerificationPostFailure(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.channels.createErr = errors.New("boom")
	event := &fakeEvent{user: discord.User{ID: 99}}

	h.controller.SubmitVerification(context.Background(), event, "Bob", "http://y")

	// The guest role assignment must not be silently skipped.
	require.Equal(t, []mutation{{op: "assign", memberID: 99, arg: "Guest"}}, h.mutator.calls)
	require.Len(t, event.created, 1)
	assert.Contains(t, event.created[0].Content, "could not be forwarded")
}

func TestAcceptRequest(t *testing.T) {
	t.Parallel()

	h := newHarness()

	// Produce a pending request the way a modal submission would.
	submitEvent := &fakeEvent{user: discord.User{ID: 99}}
	h.controller.SubmitVerification(context.Background(), submitEvent, "Bob", "http://y")

	reviewMessage := discord.Message{
		ID:     h.channels.nextID,
		Embeds: h.channels.sent[0].message.Embeds,
	}

	acceptEvent := &fakeEvent{user: discord.User{ID: 1}}
	h.controller.AcceptRequest(context.Background(), acceptEvent, reviewMessage)

	want := []mutation{
		{op: "assign", memberID: 99, arg: "Guest"},
		{op: "assign", memberID: 99, arg: "Member"},
		{op: "remove", memberID: 99, arg: "Guest"},
		{op: "nickname", memberID: 99, arg: "Bob"},
	}
	assert.Equal(t, want, h.mutator.calls)

	// Terminal edit with all action triggers stripped.
	require.Len(t, acceptEvent.updated, 1)
	update := acceptEvent.updated[0]
	require.NotNil(t, update.Content)
	assert.Contains(t, *update.Content, "User was verified.")
	require.NotNil(t, update.Components)
	assert.Empty(t, *update.Components)

	// The pending record is gone.
	_, exists := h.store.Get(reviewMessage.ID)
	assert.False(t, exists)
}

func TestAcceptRequestRecoversFromMessageText(t *testing.T) {
	t.Parallel()

	h := newHarness()

	// Nothing in the store, as if the process restarted since submission.
	reviewMessage := discord.Message{
		ID: 77,
		Embeds: []discord.Embed{{
			Title:       constants.ReviewRequestTitle,
			Description: "<@123> asked to be verified as **Alice**\n[Submitted Link](http://x)",
		}},
	}

	event := &fakeEvent{user: discord.User{ID: 1}}
	h.controller.AcceptRequest(context.Background(), event, reviewMessage)

	want := []mutation{
		{op: "assign", memberID: 123, arg: "Member"},
		{op: "remove", memberID: 123, arg: "Guest"},
		{op: "nickname", memberID: 123, arg: "Alice"},
	}
	assert.Equal(t, want, h.mutator.calls)
}

func TestAcceptRequestSurfacesPartialFailure(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.mutator.fail = map[string]guild.Outcome{
		"nickname": {Reason: guild.ReasonMemberNotFound, Message: "User 123 not found."},
	}

	reviewMessage := discord.Message{
		ID: 78,
		Embeds: []discord.Embed{{
			Description: "<@123> asked to be verified as **Alice**\n[Submitted Link](http://x)",
		}},
	}

	event := &fakeEvent{user: discord.User{ID: 1}}
	h.controller.AcceptRequest(context.Background(), event, reviewMessage)

	require.Len(t, event.updated, 1)
	require.NotNil(t, event.updated[0].Content)
	assert.Contains(t, *event.updated[0].Content, "User 123 not found.")
}

func TestDenyRequest(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.store.Set(55, verify.Request{UserID: 99, Username: "Bob"})

	event := &fakeEvent{user: discord.User{ID: 1}}
	h.controller.DenyRequest(event, 55)

	assert.Empty(t, h.mutator.calls, "deny must not touch roles")

	require.Len(t, event.updated, 1)
	update := event.updated[0]
	require.NotNil(t, update.Components)
	assert.Empty(t, *update.Components)

	_, exists := h.store.Get(55)
	assert.False(t, exists)
}

func TestEnsurePrompt(t *testing.T) {
	t.Parallel()

	t.Run("posts a prompt when none exists", func(t *testing.T) {
		t.Parallel()

		h := newHarness()
		h.channels.history = []discord.Message{
			{Embeds: []discord.Embed{{Title: "Something else"}}},
			{},
		}

		require.NoError(t, h.controller.EnsurePrompt(context.Background()))

		require.Len(t, h.channels.sent, 1)
		assert.Equal(t, verifyChannelID, h.channels.sent[0].channelID)
		require.Len(t, h.channels.sent[0].message.Embeds, 1)
		assert.Equal(t, constants.VerifyPromptTitle, h.channels.sent[0].message.Embeds[0].Title)
	})

	t.Run("does nothing when the prompt is present", func(t *testing.T) {
		t.Parallel()

		h := newHarness()
		h.channels.history = []discord.Message{
			{Embeds: []discord.Embed{{Title: constants.VerifyPromptTitle}}},
		}

		require.NoError(t, h.controller.EnsurePrompt(context.Background()))
		assert.Empty(t, h.channels.sent)
	})

	t.Run("propagates history fetch failures", func(t *testing.T) {
		t.Parallel()

		h := newHarness()
		h.channels.historyErr = errors.New("boom")

		assert.Error(t, h.controller.EnsurePrompt(context.Background()))
	})
}
