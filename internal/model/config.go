package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Template  TemplateSetup   `yaml:"template" mapstructure:"template"`
	Defaults  CountDefaults   `yaml:"defaults" mapstructure:"defaults"`
	Service   ServiceConfig   `yaml:"service" mapstructure:"service"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// SourceConfig selects the tabular data source
type SourceConfig struct {
	ID              string        `yaml:"id" mapstructure:"id"`                             // Sheet ID or file path
	Range           string        `yaml:"range" mapstructure:"range"`                       // e.g. "Sheet1!A1:B100"
	Kind            string        `yaml:"kind" mapstructure:"kind"`                         // auto, sheets, file, url
	APIKey          string        `yaml:"api_key,omitempty" mapstructure:"api_key"`         // Sheets API key
	CredentialsFile string        `yaml:"credentials_file,omitempty" mapstructure:"credentials_file"`
	FailurePolicy   string        `yaml:"failure_policy" mapstructure:"failure_policy"`     // surface, swallow
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	StatePath       string        `yaml:"state_path,omitempty" mapstructure:"state_path"`   // persisted source id
	RespectRobots   bool          `yaml:"respect_robots" mapstructure:"respect_robots"`     // url sources only
}

// TemplateSetup describes the sentence template and its slots
type TemplateSetup struct {
	String    string       `yaml:"string" mapstructure:"string"`
	ClassName string       `yaml:"class_name" mapstructure:"class_name"`
	Slots     []SlotConfig `yaml:"slots" mapstructure:"slots"`
}

// SlotConfig declares one template placeholder and its value kind
type SlotConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Kind string `yaml:"kind" mapstructure:"kind"` // string, double, int
}

// CountDefaults are used when a count input is malformed
type CountDefaults struct {
	Truths uint32 `yaml:"truths" mapstructure:"truths"`
	Lies   uint32 `yaml:"lies" mapstructure:"lies"`
}

// ServiceConfig configures the generation service client
type ServiceConfig struct {
	Transport         string        `yaml:"transport" mapstructure:"transport"` // grpc, http, local, llm
	Endpoint          string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure          bool          `yaml:"insecure" mapstructure:"insecure"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	ListenAddr        string        `yaml:"listen_addr" mapstructure:"listen_addr"` // serve command
}

// CacheConfig controls caching of fetched source values
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
}

// EngineConfig tunes the in-process generation engine
type EngineConfig struct {
	MaxRetries    int  `yaml:"max_retries" mapstructure:"max_retries"`
	EnsureNotTrue bool `yaml:"ensure_not_true" mapstructure:"ensure_not_true"`
	RandomOrder   bool `yaml:"random_order" mapstructure:"random_order"`
}

// LLMConfig configures the optional LLM lie fabricator
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig controls console output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Color   bool `yaml:"color" mapstructure:"color"`
}

// TelemetryConfig controls tracing
type TelemetryConfig struct {
	Trace       bool   `yaml:"trace" mapstructure:"trace"`
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
}

// DefaultTemplate is the statement template used when none is configured
const DefaultTemplate = "On {date}, I solved the 3x3x3 Rubik's Cube in exactly {time}."

// DefaultClassName is the generation strategy paired with DefaultTemplate
const DefaultClassName = "CubingStatementGenerator"

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Range:         "Sheet1!A1:B",
			Kind:          "auto",
			FailurePolicy: "surface",
			Timeout:       30 * time.Second,
		},
		Template: TemplateSetup{
			String:    DefaultTemplate,
			ClassName: DefaultClassName,
			Slots: []SlotConfig{
				{Name: "date", Kind: "string"},
				{Name: "time", Kind: "double"},
			},
		},
		Defaults: CountDefaults{
			Truths: 1,
			Lies:   0,
		},
		Service: ServiceConfig{
			Transport:         "local",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			BurstSize:         4,
			ListenAddr:        ":50051",
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 5 * time.Minute,
			DiskTTL:   1 * time.Hour,
		},
		Engine: EngineConfig{
			MaxRetries:    10,
			EnsureNotTrue: true,
			RandomOrder:   false,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 200,
		},
		Output: OutputConfig{
			Color: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "truthslies",
		},
	}
}
