package config

import "time"

// recoveryWarmupDefault matches the facade's own documented default (spec
// §4.7): arbitrary, but long enough that a just-completed upload doesn't
// get needlessly re-scanned.
const recoveryWarmupDefault = 20 * time.Second

// ApplyDefaults fills in zero-valued fields with sensible defaults, the
// way the teacher's own ApplyDefaults walks each sub-config in turn.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyDatabaseDefaults(&cfg.Database)
	applyEngineDefaults(&cfg.Engine)
	applyCloudDefaults(&cfg.Cloud)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Path == "" {
		cfg.Path = "/tmp/storageengine/uploads.db"
	}
}

func applyEngineDefaults(cfg *EngineConfig) {
	if cfg.MinChunkSize == 0 {
		cfg.MinChunkSize = 5 << 20 // 5 MiB
	}
	if cfg.RecoveryWarmup == 0 {
		cfg.RecoveryWarmup = recoveryWarmupDefault
	}
	if cfg.RecoveryLimit == 0 {
		cfg.RecoveryLimit = 100
	}
	if cfg.AppRoot == "" {
		cfg.AppRoot = "/tmp/storageengine/cache"
	}
}

func applyCloudDefaults(cfg *CloudConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
}

// GetDefaultConfig returns a Config with all defaults applied, useful
// for generating a sample config file or as a fallback when none exists.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Database.Path = ":memory:"
	cfg.Cloud.Bucket = "storageengine-uploads"
	return cfg
}
