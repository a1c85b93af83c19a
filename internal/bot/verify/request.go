package verify

import (
	"fmt"
	"regexp"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

var (
	mentionPattern = regexp.MustCompile(`<@(\d+)>`)
	boldPattern    = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// reviewDescription renders a pending request as the review post body.
// ParseReview must be able to recover the user ID and username from it.
func reviewDescription(userID snowflake.ID, username, link string) string {
	return fmt.Sprintf("<@%s> asked to be verified as **%s**\n[Submitted Link](%s)", userID, username, link)
}

// ParseReview recovers the requesting user ID and claimed username from a
// review post body: the ID from the mention, the username from the first
// bold span. A failed match yields the zero value for that field, which
// flows into member-not-found outcomes downstream.
func ParseReview(description string) (snowflake.ID, string) {
	var userID snowflake.ID

	if m := mentionPattern.FindStringSubmatch(description); m != nil {
		if id, err := snowflake.Parse(m[1]); err == nil {
			userID = id
		}
	}

	var username string
	if m := boldPattern.FindStringSubmatch(description); m != nil {
		username = m[1]
	}

	return userID, username
}

// requestFromMessage rebuilds a request from the review message itself,
// used when the in-memory record is gone (e.g. after a restart).
func requestFromMessage(message discord.Message) Request {
	if len(message.Embeds) == 0 {
		return Request{}
	}

	userID, username := ParseReview(message.Embeds[0].Description)

	return Request{UserID: userID, Username: username}
}
