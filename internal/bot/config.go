package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Maximum number of cards in one review session
	ReviewSessionSize int
	// How long an idle review session is kept before it is dropped
	SessionTimeout time.Duration
	// Number of related words returned by /find
	RelatedWordsLimit int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		ReviewSessionSize: 20,
		SessionTimeout:    30 * time.Minute,
		RelatedWordsLimit: 3,
	}
}
