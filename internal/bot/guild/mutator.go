package guild

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

const genericFailureMessage = "Unable to process your request."

// Mutator performs role and nickname mutations against a single guild.
// Every method is safe to call redundantly and never returns a Go error;
// platform failures are logged and reported as a generic failure outcome.
type Mutator struct {
	api     API
	guildID snowflake.ID
	logger  *zap.Logger
}

// NewMutator creates a mutator for the given guild.
func NewMutator(api API, guildID snowflake.ID, logger *zap.Logger) *Mutator {
	return &Mutator{
		api:     api,
		guildID: guildID,
		logger:  logger.Named("mutator"),
	}
}

// AssignRole adds the named role to the member. Adding a role the member
// already holds still reports success.
func (m *Mutator) AssignRole(ctx context.Context, memberID snowflake.ID, roleName string) Outcome {
	if _, out := m.member(ctx, memberID); out != nil {
		return *out
	}

	role, out := m.role(ctx, roleName)
	if out != nil {
		return *out
	}

	if err := m.api.AddMemberRole(m.guildID, memberID, role.ID, rest.WithCtx(ctx)); err != nil {
		m.logger.Error("Failed to assign role",
			zap.Uint64("member_id", uint64(memberID)),
			zap.String("role_name", roleName),
			zap.Error(err))

		return failure(ReasonPlatformError, genericFailureMessage)
	}

	return success(fmt.Sprintf("Assigned the %s role.", roleName))
}

// RemoveRole removes the named role from the member. A member who lacks the
// role is reported as a distinct non-success outcome without any mutation.
func (m *Mutator) RemoveRole(ctx context.Context, memberID snowflake.ID, roleName string) Outcome {
	member, out := m.member(ctx, memberID)
	if out != nil {
		return *out
	}

	role, out := m.role(ctx, roleName)
	if out != nil {
		return *out
	}

	if !hasRole(member, role.ID) {
		return failure(ReasonMissingRole, fmt.Sprintf("User does not have %s role.", roleName))
	}

	if err := m.api.RemoveMemberRole(m.guildID, memberID, role.ID, rest.WithCtx(ctx)); err != nil {
		m.logger.Error("Failed to remove role",
			zap.Uint64("member_id", uint64(memberID)),
			zap.String("role_name", roleName),
			zap.Error(err))

		return failure(ReasonPlatformError, genericFailureMessage)
	}

	return success(fmt.Sprintf("Removed the %s role.", roleName))
}

// SetNickname sets the member's guild nickname.
func (m *Mutator) SetNickname(ctx context.Context, memberID snowflake.ID, nickname string) Outcome {
	if _, out := m.member(ctx, memberID); out != nil {
		return *out
	}

	if _, err := m.api.UpdateMember(m.guildID, memberID, discord.MemberUpdate{Nick: &nickname}, rest.WithCtx(ctx)); err != nil {
		m.logger.Error("Failed to set nickname",
			zap.Uint64("member_id", uint64(memberID)),
			zap.String("nickname", nickname),
			zap.Error(err))

		return failure(ReasonPlatformError, genericFailureMessage)
	}

	return success(fmt.Sprintf("Gave the nickname %s.", nickname))
}

// member fetches the guild member, translating a missing member into a soft
// outcome. The second return value is nil when the fetch succeeded.
func (m *Mutator) member(ctx context.Context, memberID snowflake.ID) (*discord.Member, *Outcome) {
	member, err := m.api.GetMember(m.guildID, memberID, rest.WithCtx(ctx))
	if err != nil {
		if isNotFound(err) {
			out := failure(ReasonMemberNotFound, fmt.Sprintf("User %s not found.", memberID))
			return nil, &out
		}

		m.logger.Error("Failed to fetch member",
			zap.Uint64("member_id", uint64(memberID)),
			zap.Error(err))

		out := failure(ReasonPlatformError, genericFailureMessage)

		return nil, &out
	}

	return member, nil
}

// role resolves a role by name from the guild role list.
func (m *Mutator) role(ctx context.Context, roleName string) (*discord.Role, *Outcome) {
	roles, err := m.api.GetRoles(m.guildID, rest.WithCtx(ctx))
	if err != nil {
		m.logger.Error("Failed to fetch guild roles",
			zap.String("role_name", roleName),
			zap.Error(err))

		out := failure(ReasonPlatformError, genericFailureMessage)

		return nil, &out
	}

	for i := range roles {
		if roles[i].Name == roleName {
			return &roles[i], nil
		}
	}

	out := failure(ReasonRoleNotFound, fmt.Sprintf("Role %s not found.", roleName))

	return nil, &out
}

func hasRole(member *discord.Member, roleID snowflake.ID) bool {
	for _, id := range member.RoleIDs {
		if id == roleID {
			return true
		}
	}

	return false
}

// isNotFound reports whether the REST error is a 404 from the platform.
func isNotFound(err error) bool {
	var restErr *rest.Error
	if errors.As(err, &restErr) {
		return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
	}

	return false
}
