package config

// Config represents the core Polemica configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	AI       AIConfig       `mapstructure:"ai"`
}

// DatabaseConfig configures the SQLite graph store
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the Polemica sync gateway
type ServerConfig struct {
	Port           *int     `mapstructure:"port"` // Server port: nil = default 3001, 0 is invalid (omit for default)
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AIConfig configures the enrichment service client
type AIConfig struct {
	BaseURL                string  `mapstructure:"base_url"`                 // Enrichment service endpoint (e.g., "http://127.0.0.1:8000")
	QuestionTimeoutSeconds int     `mapstructure:"question_timeout_seconds"` // Question/summary timeout (default: 15)
	EvidenceTimeoutSeconds int     `mapstructure:"evidence_timeout_seconds"` // Evidence retrieval timeout (default: 30, retrieval is allowed to be slower)
	RequestsPerMinute      float64 `mapstructure:"requests_per_minute"`      // Outbound rate limit (default: 30)
	Burst                  int     `mapstructure:"burst"`                    // Rate limiter burst (default: 5)
}

// Server port constants
const (
	DefaultServerPort  = 3001 // Matches the original gateway port
	FallbackServerPort = 3101 // Used when the default is taken
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
