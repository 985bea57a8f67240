package types

// AppConfig contains the application configuration loaded from the YAML config
// file. It is served through the hot-reloading config manager so secret
// rotation and Slack settings take effect without a restart.
type AppConfig struct {
	// AdminSecret must match the X-Admin-Secret header on privileged requests.
	AdminSecret string          `json:"admin_secret" yaml:"admin_secret"`
	Slack       SlackConfig     `json:"slack" yaml:"slack"`
	ReportRate  RateLimitConfig `json:"report_rate" yaml:"report_rate"`
}

// SlackConfig defines where outage notifications are posted. Reporting is
// disabled when Channel is empty.
type SlackConfig struct {
	Channel string `json:"channel" yaml:"channel"`
	// BaseURL is the public URL of this service, used to build outage links in
	// Slack messages.
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// RateLimitConfig bounds how often a single client may submit outage reports.
type RateLimitConfig struct {
	PerMinute int `json:"per_minute" yaml:"per_minute"`
	Burst     int `json:"burst" yaml:"burst"`
}

// WithDefaults returns a copy of the config with unset rate limit knobs
// replaced by their defaults.
func (c AppConfig) WithDefaults() AppConfig {
	if c.ReportRate.PerMinute <= 0 {
		c.ReportRate.PerMinute = 30
	}
	if c.ReportRate.Burst <= 0 {
		c.ReportRate.Burst = 10
	}
	return c
}
