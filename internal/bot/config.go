package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of words listed by /queue and considered for the next question
	QueueLimit int
	// Poll timeout for the Telegram update loop, in seconds
	UpdateTimeout int
	// Quality recorded for a correct and a wrong multiple choice answer
	ChoiceCorrectQuality int
	ChoiceWrongQuality   int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		QueueLimit:           10,
		UpdateTimeout:        60,
		ChoiceCorrectQuality: 4,
		ChoiceWrongQuality:   1,
	}
}
