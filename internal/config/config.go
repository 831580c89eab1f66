package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/pders01/desh/internal/news"
	"github.com/pders01/desh/internal/validation"
	"github.com/spf13/viper"
)

const (
	ProviderNewsAPI    = "newsapi"
	ProviderGoogleNews = "googlenews"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Filter   FilterConfig   `mapstructure:"filter"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type SourceConfig struct {
	Provider           string        `mapstructure:"provider"`
	Endpoint           string        `mapstructure:"endpoint"`
	GoogleNewsEndpoint string        `mapstructure:"googlenews_endpoint"`
	APIKey             string        `mapstructure:"api_key"`
	PageSize           int           `mapstructure:"page_size"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`
	UserAgent          string        `mapstructure:"user_agent"`
	MaxRetries         int           `mapstructure:"max_retries"`
	DefaultRetryAfter  time.Duration `mapstructure:"default_retry_after"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
}

// FilterConfig holds the filter a session starts with.
type FilterConfig struct {
	Language string `mapstructure:"language"`
	Category string `mapstructure:"category"`
	Region   string `mapstructure:"region"`
	// Remember restores the last used filter from the database on startup.
	Remember bool `mapstructure:"remember"`
}

type UIConfig struct {
	Colors     UIColors   `mapstructure:"colors"`
	Card       CardConfig `mapstructure:"card"`
	Breakpoint int        `mapstructure:"breakpoint"`
	DateFormat string     `mapstructure:"date_format"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type CardConfig struct {
	MaxDescriptionLength int `mapstructure:"max_description_length"`
	WordWrapMaxWidth     int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth     int `mapstructure:"word_wrap_min_width"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux"`
	Windows       MediaPlayers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type MediaPlayers struct {
	Browser []string `mapstructure:"browser"`
	Image   []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit           string `mapstructure:"quit"`
	Search         string `mapstructure:"search"`
	Refresh        string `mapstructure:"refresh"`
	ToggleLanguage string `mapstructure:"toggle_language"`
	Region         string `mapstructure:"region"`
	Menu           string `mapstructure:"menu"`
	Open           string `mapstructure:"open"`
	OpenImage      string `mapstructure:"open_image"`
	Back           string `mapstructure:"back"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".desh.db")
	searchIndexPath := filepath.Join(homeDir, ".desh", "index.bleve")
	def := news.DefaultFilter()

	return &Config{
		Database: DatabaseConfig{
			Path:        dbPath,
			Timeout:     1 * time.Second,
			SearchIndex: searchIndexPath,
		},
		Source: SourceConfig{
			Provider:           ProviderNewsAPI,
			Endpoint:           "https://newsapi.org/v2/everything",
			GoogleNewsEndpoint: "https://news.google.com/rss/search",
			HTTPTimeout:        30 * time.Second,
			UserAgent:          "desh/1.0 (https://github.com/pders01/desh)",
			MaxRetries:         0,
			DefaultRetryAfter:  10 * time.Second,
			CacheTTL:           0,
		},
		Filter: FilterConfig{
			Language: string(def.Language),
			Category: string(def.Category),
			Region:   def.Region,
			Remember: false,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF9933",
				Secondary:  "#138808",
				Accent:     "#4ECDC4",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Card: CardConfig{
				MaxDescriptionLength: 150,
				WordWrapMaxWidth:     120,
				WordWrapMinWidth:     40,
			},
			Breakpoint: 80,
			DateFormat: "2 Jan 2006, 3:04 PM",
		},
		Media: MediaConfig{
			Darwin: MediaPlayers{
				Browser: []string{"open"},
				Image:   []string{"preview", "open"},
			},
			Linux: MediaPlayers{
				Browser: []string{"xdg-open", "sensible-browser", "firefox"},
				Image:   []string{"sxiv", "feh", "eog", "xdg-open"},
			},
			Windows: MediaPlayers{
				Browser: []string{"start"},
				Image:   []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:           "q",
				Search:         "s",
				Refresh:        "r",
				ToggleLanguage: "l",
				Region:         "g",
				Menu:           "t",
				Open:           "o",
				OpenImage:      "p",
				Back:           "esc",
			},
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// flatten walks a config struct and collects its leaves keyed by their
// dotted mapstructure path, e.g. "source.http_timeout".
func flatten(prefix string, v reflect.Value, out map[string]interface{}) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		fv := v.Field(i)
		if fv.Kind() == reflect.Struct {
			flatten(key, fv, out)
			continue
		}
		out[key] = fv.Interface()
	}
}

func leaves(cfg *Config) map[string]interface{} {
	out := make(map[string]interface{})
	flatten("", reflect.ValueOf(*cfg), out)
	return out
}

// setDefaults registers every leaf key so that environment overrides apply
// to nested settings.
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range leaves(cfg) {
		v.SetDefault(key, value)
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "desh")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// NEWS_API_KEY is the conventional name used by NewsAPI tooling.
	if err := v.BindEnv("source.api_key", "DESH_SOURCE_API_KEY", "NEWS_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// Validate checks values that would otherwise fail late, inside the UI.
func (c *Config) Validate() error {
	switch c.Source.Provider {
	case ProviderNewsAPI, ProviderGoogleNews:
	default:
		return fmt.Errorf("source.provider: unknown provider %q", c.Source.Provider)
	}

	v := validation.NewPermissiveURLValidator()
	if _, err := v.ValidateAndNormalize(c.Source.Endpoint); err != nil {
		return fmt.Errorf("source.endpoint: %w", err)
	}
	if c.Source.Provider == ProviderGoogleNews {
		if _, err := v.ValidateAndNormalize(c.Source.GoogleNewsEndpoint); err != nil {
			return fmt.Errorf("source.googlenews_endpoint: %w", err)
		}
	}
	if c.Source.MaxRetries < 0 {
		return fmt.Errorf("source.max_retries must not be negative")
	}
	if c.Source.PageSize < 0 || c.Source.PageSize > 100 {
		return fmt.Errorf("source.page_size must be between 0 and 100")
	}

	if _, err := c.InitialFilter(); err != nil {
		return err
	}
	return nil
}

// InitialFilter parses the [filter] section.
func (c *Config) InitialFilter() (news.Filter, error) {
	f := news.DefaultFilter()
	if c.Filter.Language != "" {
		l, err := news.ParseLanguage(c.Filter.Language)
		if err != nil {
			return f, fmt.Errorf("filter.language: %w", err)
		}
		f.Language = l
	}
	if c.Filter.Category != "" {
		cat, err := news.ParseCategory(c.Filter.Category)
		if err != nil {
			return f, fmt.Errorf("filter.category: %w", err)
		}
		f.Category = cat
	}
	r, err := news.ParseRegion(c.Filter.Region)
	if err != nil {
		return f, fmt.Errorf("filter.region: %w", err)
	}
	f.Region = r
	return f, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	for key, value := range leaves(config) {
		switch val := value.(type) {
		case time.Duration:
			// Durations as strings for TOML readability
			v.Set(key, val.String())
		case string:
			if key == "source.api_key" && val == "" {
				continue
			}
			v.Set(key, val)
		default:
			v.Set(key, val)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
