package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "polemica.db")

	// Server defaults
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	// AI enrichment defaults
	v.SetDefault("ai.base_url", "http://127.0.0.1:8000")
	v.SetDefault("ai.question_timeout_seconds", 15) // Question/summary generation
	v.SetDefault("ai.evidence_timeout_seconds", 30) // Evidence search involves external lookups
	v.SetDefault("ai.requests_per_minute", 30.0)
	v.SetDefault("ai.burst", 5)
}
