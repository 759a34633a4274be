package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"FeedEngager/internal/domain"
)

const (
	configPathEnv  = "FEED_ENGAGER_CONFIG"
	storagePathEnv = "FEED_ENGAGER_DB"
	generationKey  = "GENERATION_API_KEY"
	generationURL  = "GENERATION_ENDPOINT"
	webhookURLEnv  = "PROGRESS_WEBHOOK_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Storage    StorageConfig    `yaml:"storage"`
	Generation GenerationConfig `yaml:"generation"`
	Progress   ProgressConfig   `yaml:"progress"`
	Engine     EngineConfig     `yaml:"engine"`
	Groups     []GroupConfig    `yaml:"groups"`
}

// LoggingConfig controls the console logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig describes where dedup records live.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// GenerationConfig defines how to contact the AI backend.
type GenerationConfig struct {
	Endpoint      string `yaml:"endpoint"`
	APIKey        string `yaml:"apiKey"`
	Style         string `yaml:"style"`
	EnrichContext *bool  `yaml:"enrichContext"`
	Variations    int    `yaml:"variations"`
}

// ProgressConfig wires the optional external observer.
type ProgressConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
}

// EngineConfig holds the default run parameters; groups may override the
// pacing and cap per run.
type EngineConfig struct {
	MaxItems                 int      `yaml:"maxItems"`
	ActionDelaySeconds       int      `yaml:"actionDelaySeconds"`
	AuthorRecencyWindowHours int      `yaml:"authorRecencyWindowHours"`
	MaxAgeHours              float64  `yaml:"maxAgeHours"`
	SkipPromoted             *bool    `yaml:"skipPromoted"`
	SkipCompanyAuthors       *bool    `yaml:"skipCompanyAuthors"`
	SkipFriendActivity       *bool    `yaml:"skipFriendActivity"`
	Blacklist                []string `yaml:"blacklist"`
	RetentionDays            int      `yaml:"retentionDays"`
}

// GroupConfig describes one engagement group with its source mode.
type GroupConfig struct {
	Name               string            `yaml:"name"`
	Mode               string            `yaml:"mode"`
	Options            map[string]string `yaml:"options"`
	MaxItems           *int              `yaml:"maxItems"`
	ActionDelaySeconds *int              `yaml:"actionDelaySeconds"`
}

// RunConfigFor snapshots the engine defaults merged with one group's
// overrides into an immutable run config.
func (c Config) RunConfigFor(group GroupConfig) domain.RunConfig {
	engine := c.Engine

	maxItems := engine.MaxItems
	if group.MaxItems != nil {
		maxItems = *group.MaxItems
	}
	delaySeconds := engine.ActionDelaySeconds
	if group.ActionDelaySeconds != nil {
		delaySeconds = *group.ActionDelaySeconds
	}

	variations := c.Generation.Variations
	if variations < 1 {
		variations = 1
	}

	return domain.RunConfig{
		MaxItems:            maxItems,
		ActionDelay:         time.Duration(delaySeconds) * time.Second,
		AuthorRecencyWindow: time.Duration(engine.AuthorRecencyWindowHours) * time.Hour,
		SkipPromoted:        boolOr(engine.SkipPromoted, true),
		SkipCompanyAuthors:  boolOr(engine.SkipCompanyAuthors, true),
		SkipFriendActivity:  boolOr(engine.SkipFriendActivity, true),
		Blacklist:           engine.Blacklist,
		MaxAgeHours:         engine.MaxAgeHours,
		Style:               c.Generation.Style,
		EnrichContext:       boolOr(c.Generation.EnrichContext, false),
		Variations:          variations,
		RecordRetention:     time.Duration(engine.RetentionDays) * 24 * time.Hour,
	}
}

func boolOr(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(storagePathEnv); v != "" {
		c.Storage.Path = v
	}

	if v := os.Getenv(generationURL); v != "" {
		c.Generation.Endpoint = v
	}

	if v := os.Getenv(generationKey); v != "" {
		c.Generation.APIKey = v
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Progress.WebhookURL = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Storage.Path != "" {
		base.Storage = override.Storage
	}

	if override.Generation.Endpoint != "" {
		base.Generation.Endpoint = override.Generation.Endpoint
	}
	if override.Generation.APIKey != "" {
		base.Generation.APIKey = override.Generation.APIKey
	}
	if override.Generation.Style != "" {
		base.Generation.Style = override.Generation.Style
	}
	if override.Generation.Variations != 0 {
		base.Generation.Variations = override.Generation.Variations
	}
	if override.Generation.EnrichContext != nil {
		base.Generation.EnrichContext = override.Generation.EnrichContext
	}

	if override.Progress.WebhookURL != "" {
		base.Progress.WebhookURL = override.Progress.WebhookURL
	}

	base.Engine = mergeEngine(base.Engine, override.Engine)

	if len(override.Groups) > 0 {
		base.Groups = override.Groups
	}

	return base
}

func mergeEngine(base, override EngineConfig) EngineConfig {
	if override.MaxItems != 0 {
		base.MaxItems = override.MaxItems
	}
	if override.ActionDelaySeconds != 0 {
		base.ActionDelaySeconds = override.ActionDelaySeconds
	}
	if override.AuthorRecencyWindowHours != 0 {
		base.AuthorRecencyWindowHours = override.AuthorRecencyWindowHours
	}
	if override.MaxAgeHours != 0 {
		base.MaxAgeHours = override.MaxAgeHours
	}
	if override.SkipPromoted != nil {
		base.SkipPromoted = override.SkipPromoted
	}
	if override.SkipCompanyAuthors != nil {
		base.SkipCompanyAuthors = override.SkipCompanyAuthors
	}
	if override.SkipFriendActivity != nil {
		base.SkipFriendActivity = override.SkipFriendActivity
	}
	if len(override.Blacklist) > 0 {
		base.Blacklist = override.Blacklist
	}
	if override.RetentionDays != 0 {
		base.RetentionDays = override.RetentionDays
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{Path: "feedengager.db"},
		Generation: GenerationConfig{
			Endpoint:   "https://api.example.org/v1/generate",
			Style:      "friendly, specific, one short paragraph",
			Variations: 1,
		},
		Engine: EngineConfig{
			MaxItems:                 10,
			ActionDelaySeconds:       45,
			AuthorRecencyWindowHours: 24,
			MaxAgeHours:              72,
			RetentionDays:            365,
		},
		Groups: []GroupConfig{
			{
				Name: "main-feed",
				Mode: "snapshot",
				Options: map[string]string{
					"url": "http://localhost:8480/feed-snapshot",
				},
			},
		},
	}
}
