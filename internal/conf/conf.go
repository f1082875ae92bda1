package conf

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration
type Config struct {
	// Slack source configuration
	Slack SlackConfig

	// WhatsApp destination configuration
	WhatsApp WhatsAppConfig

	// Cooldown gate configuration
	Cooldown CooldownConfig

	// Polling configuration
	Poll PollConfig

	// Watermark persistence (optional)
	Watermark WatermarkConfig

	// Digest rewriting (optional)
	Digest DigestConfig

	// Debug mode
	Debug bool
}

// SlackConfig contains Slack source configuration
type SlackConfig struct {
	UserToken   string // xoxp- user token used for polling
	ForwardSelf bool   // forward messages sent by the token owner
}

// WhatsAppConfig contains WhatsApp Cloud API configuration
type WhatsAppConfig struct {
	Token         string
	PhoneNumberID string
	DestNumbers   []string
	TemplateName  string
	TemplateLang  string
}

// CooldownConfig contains per-conversation cooldown settings
type CooldownConfig struct {
	Duration       time.Duration
	SummaryEnabled bool
}

// PollConfig contains poll loop settings
type PollConfig struct {
	Interval      time.Duration
	PageSize      int
	SeenRetention time.Duration
}

// WatermarkConfig contains watermark persistence settings
type WatermarkConfig struct {
	DBPath string // empty disables persistence
}

// DigestConfig contains digest rewriter settings
type DigestConfig struct {
	APIKey  string // empty disables rewriting
	BaseURL string
	Model   string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cooldown := 120 * time.Second
	if val := os.Getenv("COOLDOWN_MS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			cooldown = time.Duration(parsed) * time.Millisecond
		}
	}

	pollInterval := 5 * time.Second
	if val := os.Getenv("POLL_INTERVAL_MS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			pollInterval = time.Duration(parsed) * time.Millisecond
		}
	}

	pageSize := 200
	if val := os.Getenv("POLL_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}

	seenRetention := 24 * time.Hour
	if val := os.Getenv("SEEN_RETENTION_HOURS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			seenRetention = time.Duration(parsed) * time.Hour
		}
	}

	templateName := os.Getenv("TEMPLATE_NAME")
	if templateName == "" {
		templateName = "hello_world"
	}
	templateLang := os.Getenv("TEMPLATE_LANG")
	if templateLang == "" {
		templateLang = "en_US"
	}

	var destNumbers []string
	for _, n := range strings.Split(os.Getenv("DEST_NUMBERS"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			destNumbers = append(destNumbers, n)
		}
	}

	return &Config{
		Slack: SlackConfig{
			UserToken:   os.Getenv("SLACK_USER_TOKEN"),
			ForwardSelf: os.Getenv("FORWARD_OUTGOING") == "true",
		},
		WhatsApp: WhatsAppConfig{
			Token:         os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("PHONE_NUMBER_ID"),
			DestNumbers:   destNumbers,
			TemplateName:  templateName,
			TemplateLang:  templateLang,
		},
		Cooldown: CooldownConfig{
			Duration:       cooldown,
			SummaryEnabled: os.Getenv("COOLDOWN_SUMMARY") != "false",
		},
		Poll: PollConfig{
			Interval:      pollInterval,
			PageSize:      pageSize,
			SeenRetention: seenRetention,
		},
		Watermark: WatermarkConfig{
			DBPath: os.Getenv("WATERMARK_DB_PATH"),
		},
		Digest: DigestConfig{
			APIKey:  os.Getenv("DIGEST_API_KEY"),
			BaseURL: os.Getenv("DIGEST_BASE_URL"),
			Model:   os.Getenv("DIGEST_MODEL"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Slack.UserToken == "" {
		return &ConfigError{Field: "SLACK_USER_TOKEN", Message: "required"}
	}
	if !strings.HasPrefix(c.Slack.UserToken, "xoxp-") {
		return &ConfigError{Field: "SLACK_USER_TOKEN", Message: "must be a user token (xoxp-)"}
	}
	if c.WhatsApp.Token == "" {
		return &ConfigError{Field: "WHATSAPP_TOKEN", Message: "required"}
	}
	if c.WhatsApp.PhoneNumberID == "" {
		return &ConfigError{Field: "PHONE_NUMBER_ID", Message: "required"}
	}
	if len(c.WhatsApp.DestNumbers) == 0 {
		return &ConfigError{Field: "DEST_NUMBERS", Message: "at least one destination number required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
