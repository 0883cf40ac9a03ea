// Package config loads and validates the YAML configuration surface
// for a chord node process, grounded on the teacher's referenced
// internal/node/config package (cmd/node/main.go: config.LoadConfig,
// cfg.ValidateConfig, cfg.LogConfig) — rebuilt here since that package
// itself was not part of the retrieval pack, using the same
// gopkg.in/yaml.v3 library the teacher's go.mod carries.
package config

import (
	"fmt"
	"os"
	"time"

	"chordring/internal/logger"

	"gopkg.in/yaml.v3"
)

// Config is the root of a node's YAML configuration file.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Chord     ChordConfig     `yaml:"chord"`
	Logger    LoggerConfig    `yaml:"logger"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

// NodeConfig describes where this process listens and how it
// advertises itself to peers.
type NodeConfig struct {
	Bind string `yaml:"bind"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// ID is parsed from the YAML file as a string but nothing reads it:
	// the node's identifier is always derived by hashing Address(), and
	// this field does not override it.
	ID string `yaml:"id"`
}

// Address returns the advertised host:port this node is reachable at.
func (n NodeConfig) Address() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

// ChordConfig is the engine's enumerated configuration surface (spec §6).
type ChordConfig struct {
	FingerCount              uint          `yaml:"finger_count"`
	SuccessorListSize        int           `yaml:"successor_list_size"`
	StabilizeInterval        time.Duration `yaml:"stabilize_interval"`
	PredecessorCheckInterval time.Duration `yaml:"predecessor_check_interval"`
	FixFingersInterval       time.Duration `yaml:"fix_fingers_interval"`
	RPCTimeout               time.Duration `yaml:"rpc_timeout"`
}

// LoggerConfig controls the zap + lumberjack logging stack.
type LoggerConfig struct {
	Active     bool   `yaml:"active"`
	Level      string `yaml:"level"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

// TracingConfig selects whether spans are emitted and where.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "otlp" dials Endpoint via otlptracegrpc; anything else prints to stdout
	Endpoint string `yaml:"endpoint"` // otlp collector endpoint, when Exporter == "otlp"
}

// BootstrapConfig selects how a node discovers its first peer.
type BootstrapConfig struct {
	Mode    string        `yaml:"mode"` // "static" or "route53"
	Peers   []string      `yaml:"peers"`
	Route53 Route53Config `yaml:"route53"`
}

// Route53Config addresses the AWS hosted zone used for DNS-based peer
// discovery and self-registration.
type Route53Config struct {
	HostedZoneID string        `yaml:"hosted_zone_id"`
	RecordName   string        `yaml:"record_name"`
	TTL          int64         `yaml:"ttl"`
	Region       string        `yaml:"region"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns a Config populated with the spec's §6 defaults.
func Default() Config {
	return Config{
		Node: NodeConfig{Bind: "0.0.0.0", Host: "127.0.0.1", Port: 7946},
		Chord: ChordConfig{
			FingerCount:              64,
			SuccessorListSize:        3,
			StabilizeInterval:        time.Second,
			PredecessorCheckInterval: time.Second,
			FixFingersInterval:       500 * time.Millisecond,
			RPCTimeout:               2 * time.Second,
		},
		Logger: LoggerConfig{
			Active:     true,
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Bootstrap: BootstrapConfig{Mode: "static"},
	}
}

// LoadConfig reads and parses a YAML config file at path, layering it
// over Default().
func LoadConfig(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// ValidateConfig rejects configurations the engine cannot safely run
// with.
func (c Config) ValidateConfig() error {
	if c.Node.Port <= 0 || c.Node.Port > 65535 {
		return fmt.Errorf("node.port %d out of range", c.Node.Port)
	}
	if c.Chord.FingerCount == 0 || c.Chord.FingerCount > 64 {
		return fmt.Errorf("chord.finger_count %d out of range (1..64)", c.Chord.FingerCount)
	}
	if c.Chord.SuccessorListSize < 1 {
		return fmt.Errorf("chord.successor_list_size must be >= 1")
	}
	switch c.Bootstrap.Mode {
	case "static":
		if len(c.Bootstrap.Peers) == 0 {
			return fmt.Errorf("bootstrap.mode static requires at least one peer, or an empty list to create a new ring")
		}
	case "route53":
		if c.Bootstrap.Route53.HostedZoneID == "" || c.Bootstrap.Route53.RecordName == "" {
			return fmt.Errorf("bootstrap.mode route53 requires hosted_zone_id and record_name")
		}
	default:
		return fmt.Errorf("unsupported bootstrap.mode %q", c.Bootstrap.Mode)
	}
	return nil
}

// LogConfig emits the resolved configuration at startup, the way the
// teacher's cfg.LogConfig does before any node state is constructed.
func (c Config) LogConfig(lgr logger.Logger) {
	lgr.Info("configuration loaded",
		logger.F("node_address", c.Node.Address()),
		logger.F("finger_count", c.Chord.FingerCount),
		logger.F("successor_list_size", c.Chord.SuccessorListSize),
		logger.F("stabilize_interval", c.Chord.StabilizeInterval.String()),
		logger.F("predecessor_check_interval", c.Chord.PredecessorCheckInterval.String()),
		logger.F("fix_fingers_interval", c.Chord.FixFingersInterval.String()),
		logger.F("rpc_timeout", c.Chord.RPCTimeout.String()),
		logger.F("bootstrap_mode", c.Bootstrap.Mode),
		logger.F("tracing_enabled", c.Telemetry.Tracing.Enabled))
}
