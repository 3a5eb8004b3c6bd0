package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"

	defaultMaxTextLength        = 10000
	defaultRefinementThreshold  = 3.0
	defaultQuickThreshold       = 8.0
	defaultGenerationTimeoutSec = 120
	defaultDetectionTimeoutSec  = 30
	defaultResultCacheTTLMin    = 30
	defaultMaxStyleExamples     = 5
	defaultMaxFlaggedStage2     = 20

	defaultRequestsPerMinute = 10
	defaultRequestsPerHour   = 100
)

// Load reads and validates the YAML config file at path.
func Load(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(cfg)

	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("config %s: dsn is required", path)
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, fmt.Errorf("config %s: redis_url is required", path)
	}

	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = defaultEnv
	}

	p := &cfg.Pipeline
	if p.MaxTextLength <= 0 {
		p.MaxTextLength = defaultMaxTextLength
	}
	if p.RefinementThreshold <= 0 {
		p.RefinementThreshold = defaultRefinementThreshold
	}
	if p.QuickThreshold <= 0 {
		p.QuickThreshold = defaultQuickThreshold
	}
	if p.GenerationTimeoutSeconds <= 0 {
		p.GenerationTimeoutSeconds = defaultGenerationTimeoutSec
	}
	if p.DetectionTimeoutSeconds <= 0 {
		p.DetectionTimeoutSeconds = defaultDetectionTimeoutSec
	}
	if p.ResultCacheTTLMinutes <= 0 {
		p.ResultCacheTTLMinutes = defaultResultCacheTTLMin
	}
	if p.MaxStyleExamples <= 0 {
		p.MaxStyleExamples = defaultMaxStyleExamples
	}
	if p.MaxFlaggedSentencesStage2 <= 0 {
		p.MaxFlaggedSentencesStage2 = defaultMaxFlaggedStage2
	}

	l := &cfg.Limits
	if l.RequestsPerMinute <= 0 {
		l.RequestsPerMinute = defaultRequestsPerMinute
	}
	if l.RequestsPerHour <= 0 {
		l.RequestsPerHour = defaultRequestsPerHour
	}

	for i := range cfg.Detectors {
		d := &cfg.Detectors[i]
		if d.TimeoutSeconds <= 0 {
			d.TimeoutSeconds = p.DetectionTimeoutSeconds
		}
		if strings.TrimSpace(d.Name) == "" {
			d.Name = strings.ToLower(strings.TrimSpace(d.Type))
		}
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.ToLower(strings.TrimSpace(c.Env)) != "production"
}
