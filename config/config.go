// Package config defines how a trajectory marker session is configured.
package config

import (
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.viam.com/utils"
)

// EnvPrefix prefixes every environment variable read by Load, e.g. WAYPOINTS_WEB_BIND_ADDRESS.
const EnvPrefix = "WAYPOINTS"

// DefaultBindAddress is the address the web transport listens on when none is configured.
const DefaultBindAddress = "localhost:8090"

// Config is the configuration of one session.
type Config struct {
	// Frame is the reference frame of the marker and the trajectory.
	Frame         string  `json:"frame" mapstructure:"frame"`
	PublishRateHz float64 `json:"publish_rate_hz" mapstructure:"publish_rate_hz"`
	// MoveDuration is given to the plan and move arm commands.
	MoveDuration time.Duration `json:"move_duration" mapstructure:"move_duration"`
	// SequenceMoveDuration is given to each waypoint during playback.
	SequenceMoveDuration time.Duration `json:"sequence_move_duration" mapstructure:"sequence_move_duration"`
	HeadDuration         time.Duration `json:"head_duration" mapstructure:"head_duration"`
	Debug                bool          `json:"debug" mapstructure:"debug"`
	// LogFile, if set, also writes logs to a rotated file.
	LogFile string `json:"log_file" mapstructure:"log_file"`

	Web     WebConfig     `json:"web" mapstructure:"web"`
	Archive ArchiveConfig `json:"archive" mapstructure:"archive"`
	Sim     SimConfig     `json:"sim" mapstructure:"sim"`
}

// WebConfig configures the HTTP marker transport.
type WebConfig struct {
	BindAddress string `json:"bind_address" mapstructure:"bind_address"`
}

// ArchiveConfig configures the published trajectory archive. An empty path disables it.
type ArchiveConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// SimConfig configures the simulated robot.
type SimConfig struct {
	// Reach is how far from its shoulder each simulated gripper can reach, in meters.
	Reach float64 `json:"reach" mapstructure:"reach"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("frame", "/base_link")
	v.SetDefault("publish_rate_hz", 5.0)
	v.SetDefault("move_duration", 2*time.Second)
	v.SetDefault("sequence_move_duration", time.Second)
	v.SetDefault("head_duration", time.Second)
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")
	v.SetDefault("web.bind_address", DefaultBindAddress)
	v.SetDefault("archive.path", "")
	v.SetDefault("sim.reach", 0.85)
}

// Load reads the config file at path, if any, and the environment on top of the defaults. The
// result has been validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %q", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PublishPeriod is the time between visualization publishes.
func (c *Config) PublishPeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.PublishRateHz)
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.Frame == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "frame")
	}
	if c.PublishRateHz <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("publish_rate_hz must be positive, got %v", c.PublishRateHz))
	}
	for name, d := range map[string]time.Duration{
		"move_duration":          c.MoveDuration,
		"sequence_move_duration": c.SequenceMoveDuration,
		"head_duration":          c.HeadDuration,
	} {
		if d <= 0 {
			return utils.NewConfigValidationError(path, errors.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if err := c.Web.Validate(joinPath(path, "web")); err != nil {
		return err
	}
	return c.Sim.Validate(joinPath(path, "sim"))
}

// Validate ensures all parts of the config are valid.
func (c *WebConfig) Validate(path string) error {
	if c.BindAddress == "" {
		c.BindAddress = DefaultBindAddress
	}
	if _, _, err := net.SplitHostPort(c.BindAddress); err != nil {
		return utils.NewConfigValidationError(path, errors.Wrap(err, "error validating bind_address"))
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (c *SimConfig) Validate(path string) error {
	if c.Reach <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("reach must be positive, got %v", c.Reach))
	}
	return nil
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
