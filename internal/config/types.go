package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int              `yaml:"port"`
	DSN            string           `yaml:"dsn"` // MySQL DSN
	RedisURL       string           `yaml:"redis_url"`
	Env            string           `yaml:"env"` // "development" | "production"
	AllowedOrigins []string         `yaml:"allowed_origins"`
	JWTSecret      string           `yaml:"jwt_secret"`
	AI             AIConfig         `yaml:"ai"`
	Detectors      []DetectorConfig `yaml:"detectors"`
	Pipeline       PipelineConfig   `yaml:"pipeline"`
	Limits         LimitsConfig     `yaml:"limits"`
}

// AIConfig lists the configured text-generation providers.
type AIConfig struct {
	Providers []AIProvider `yaml:"providers"`
}

// AIProvider describes one text-generation backend.
type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // OpenAI | OpenAI-Compatible | Anthropic
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// DetectorConfig describes one AI-content detection vendor.
type DetectorConfig struct {
	Name           string `yaml:"name"`
	Type           string `yaml:"type"` // gptzero | sapling | winston
	APIKey         string `yaml:"api_key"`
	Endpoint       string `yaml:"endpoint,omitempty"`
	Enabled        bool   `yaml:"enabled"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PipelineConfig tunes the humanization pipeline.
type PipelineConfig struct {
	MaxTextLength             int     `yaml:"max_text_length"`
	RefinementThreshold       float64 `yaml:"refinement_threshold"`
	QuickThreshold            float64 `yaml:"quick_threshold"`
	GenerationTimeoutSeconds  int     `yaml:"generation_timeout_seconds"`
	DetectionTimeoutSeconds   int     `yaml:"detection_timeout_seconds"`
	ResultCacheTTLMinutes     int     `yaml:"result_cache_ttl_minutes"`
	MaxStyleExamples          int     `yaml:"max_style_examples"`
	MaxFlaggedSentencesStage2 int     `yaml:"max_flagged_sentences_stage2"`
}

// LimitsConfig holds the tier-independent request rate ceilings.
type LimitsConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerHour   int `yaml:"requests_per_hour"`
}
