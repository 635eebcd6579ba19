package config

// Config represents the main project configuration (memodesk.yaml)
type Config struct {
	Name    string        `yaml:"name" json:"name"`
	Version string        `yaml:"version" json:"version"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Hooks   HooksConfig   `yaml:"hooks" json:"hooks"`
}

// StorageConfig configures the memo store
type StorageConfig struct {
	Driver  string `yaml:"driver" json:"driver"`                         // sqlite3, sqlite, memory
	DataDir string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"` // empty = user config dir
	File    string `yaml:"file" json:"file"`                             // database file name inside DataDir
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text, json
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// MetricsConfig configures operation metrics export
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`           // JSONL file
	MaxBytes int64  `yaml:"max_bytes,omitempty" json:"max_bytes,omitempty"` // rotate past this size, 0 = never
}

// HooksConfig configures lifecycle event hooks.
type HooksConfig struct {
	Enabled bool         `yaml:"enabled" json:"enabled"`
	Hooks   []HookConfig `yaml:"hooks" json:"hooks"`
}

// HookConfig defines a single hook.
type HookConfig struct {
	Name     string   `yaml:"name" json:"name"`
	Type     string   `yaml:"type" json:"type"`                           // shell, webhook, log
	Events   []string `yaml:"events" json:"events"`                       // event types to match
	Blocking bool     `yaml:"blocking" json:"blocking"`                   // shell and webhook only
	Command  string   `yaml:"command,omitempty" json:"command,omitempty"` // for shell hooks
	URL      string   `yaml:"url,omitempty" json:"url,omitempty"`         // for webhook hooks
	Level    string   `yaml:"level,omitempty" json:"level,omitempty"`     // for log hooks (debug, info, warn)
	Timeout  string   `yaml:"timeout,omitempty" json:"timeout,omitempty"` // shell and webhook, Go duration, default 10s
	Retries  int      `yaml:"retries,omitempty" json:"retries,omitempty"` // webhook redeliveries on 429, 5xx and network errors
}
