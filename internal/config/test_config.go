package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	def := defaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Path:    ":memory:", // tests open their own temp stores
			Timeout: 1 * time.Second,
		},
		Source: SourceConfig{
			Provider:           ProviderNewsAPI,
			Endpoint:           "http://127.0.0.1:0/v2/everything",
			GoogleNewsEndpoint: "http://127.0.0.1:0/rss/search",
			APIKey:             "test-key",
			HTTPTimeout:        5 * time.Second,
			UserAgent:          "desh-test/1.0",
			DefaultRetryAfter:  time.Millisecond,
		},
		Filter: def.Filter,
		UI:     def.UI,
		Media:  def.Media,
		Keys:   def.Keys,
		Log:    LogConfig{Level: "off"},
	}
}
