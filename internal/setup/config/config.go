package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound = errors.New("could not find bot.toml in any config path")
	ErrMissingToken       = errors.New("config is missing a bot token")
	ErrMissingGuildID     = errors.New("config is missing a guild id")
	ErrMissingModeratorID = errors.New("config is missing a moderator id")
	ErrMissingChannel     = errors.New("config is missing a required channel")
)

// Channel names the bot requires in the channel map.
const (
	ChannelVerification  = "verification"
	ChannelPendingReview = "pending_review"
)

// Config represents the entire application configuration.
type Config struct {
	Bot   BotConfig `koanf:"bot"`
	Debug Debug     `koanf:"debug"`
}

// BotConfig contains Discord bot specific configuration.
type BotConfig struct {
	// Discord bot token for authentication.
	Token string `koanf:"token"`
	// Guild the bot operates in.
	Guild GuildConfig `koanf:"guild"`
	// Symbolic channel names mapped to channel IDs.
	Channels map[string]uint64 `koanf:"channels"`
}

// GuildConfig contains the guild, moderator and role configuration.
type GuildConfig struct {
	// ID of the guild the bot serves.
	ID uint64 `koanf:"id"`
	// User ID of the moderator reviewing requests.
	ModeratorID uint64 `koanf:"moderator_id"`
	// Name of the role granted to verified members.
	MemberRole string `koanf:"member_role"`
	// Name of the temporary role granted while a request is pending.
	GuestRole string `koanf:"guest_role"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
}

// LoadConfig loads bot.toml from the known config paths.
// It returns the config and the directory the file was found in.
func LoadConfig(extraPaths ...string) (*Config, string, error) {
	k := koanf.New(".")

	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths, explicit paths first
	configPaths := append(extraPaths,
		".gatekeeper",
		homeDir+"/.gatekeeper/config",
		"/etc/gatekeeper/config",
		"/app/config",
		"config",
		".",
	)

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/bot.toml", path)
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}

	if usedConfigPath == "" {
		return nil, "", ErrConfigFileNotFound
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// applyDefaults fills in values the config file may omit.
func (c *Config) applyDefaults() {
	if c.Bot.Guild.MemberRole == "" {
		c.Bot.Guild.MemberRole = "Member"
	}

	if c.Bot.Guild.GuestRole == "" {
		c.Bot.Guild.GuestRole = "Guest"
	}

	if c.Debug.LogLevel == "" {
		c.Debug.LogLevel = "info"
	}

	if c.Debug.MaxLogsToKeep == 0 {
		c.Debug.MaxLogsToKeep = 10
	}
}

// Validate checks that every key the bot cannot run without is present.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return ErrMissingToken
	}

	if c.Bot.Guild.ID == 0 {
		return ErrMissingGuildID
	}

	if c.Bot.Guild.ModeratorID == 0 {
		return ErrMissingModeratorID
	}

	for _, name := range []string{ChannelVerification, ChannelPendingReview} {
		if c.Bot.Channels[name] == 0 {
			return fmt.Errorf("%w: %s", ErrMissingChannel, name)
		}
	}

	return nil
}
