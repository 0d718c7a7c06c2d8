package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Frame, test.ShouldEqual, "/base_link")
	test.That(t, cfg.PublishRateHz, test.ShouldEqual, 5.0)
	test.That(t, cfg.PublishPeriod(), test.ShouldEqual, 200*time.Millisecond)
	test.That(t, cfg.MoveDuration, test.ShouldEqual, 2*time.Second)
	test.That(t, cfg.SequenceMoveDuration, test.ShouldEqual, time.Second)
	test.That(t, cfg.HeadDuration, test.ShouldEqual, time.Second)
	test.That(t, cfg.Debug, test.ShouldBeFalse)
	test.That(t, cfg.LogFile, test.ShouldBeEmpty)
	test.That(t, cfg.Web.BindAddress, test.ShouldEqual, DefaultBindAddress)
	test.That(t, cfg.Archive.Path, test.ShouldBeEmpty)
	test.That(t, cfg.Sim.Reach, test.ShouldEqual, 0.85)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waypoints.json")
	contents := `{
		"frame": "/torso_lift_link",
		"publish_rate_hz": 10,
		"move_duration": "3s",
		"web": {"bind_address": "0.0.0.0:9000"},
		"archive": {"path": "trajectories.db"}
	}`
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	t.Setenv("WAYPOINTS_SIM_REACH", "1.2")
	t.Setenv("WAYPOINTS_DEBUG", "true")
	t.Setenv("WAYPOINTS_LOG_FILE", "/var/log/waypoints.log")

	cfg, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Frame, test.ShouldEqual, "/torso_lift_link")
	test.That(t, cfg.PublishPeriod(), test.ShouldEqual, 100*time.Millisecond)
	test.That(t, cfg.MoveDuration, test.ShouldEqual, 3*time.Second)
	test.That(t, cfg.SequenceMoveDuration, test.ShouldEqual, time.Second)
	test.That(t, cfg.Web.BindAddress, test.ShouldEqual, "0.0.0.0:9000")
	test.That(t, cfg.Archive.Path, test.ShouldEqual, "trajectories.db")
	test.That(t, cfg.Sim.Reach, test.ShouldEqual, 1.2)
	test.That(t, cfg.Debug, test.ShouldBeTrue)
	test.That(t, cfg.LogFile, test.ShouldEqual, "/var/log/waypoints.log")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "reading config file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Frame:                "/base_link",
			PublishRateHz:        5,
			MoveDuration:         time.Second,
			SequenceMoveDuration: time.Second,
			HeadDuration:         time.Second,
			Sim:                  SimConfig{Reach: 1},
		}
	}

	cfg := valid()
	test.That(t, cfg.Validate("cfg"), test.ShouldBeNil)
	test.That(t, cfg.Web.BindAddress, test.ShouldEqual, DefaultBindAddress)

	for _, tc := range []struct {
		name   string
		mutate func(*Config)
		errStr string
	}{
		{"frame", func(c *Config) { c.Frame = "" }, `"frame" is required`},
		{"rate", func(c *Config) { c.PublishRateHz = 0 }, "publish_rate_hz must be positive"},
		{"head", func(c *Config) { c.HeadDuration = -time.Second }, "head_duration must be positive"},
		{"bind", func(c *Config) { c.Web.BindAddress = "nope" }, "bind_address"},
		{"reach", func(c *Config) { c.Sim.Reach = 0 }, "reach must be positive"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate("cfg")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errStr)
		})
	}
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("WAYPOINTS_PUBLISH_RATE_HZ", "0")
	_, err := Load("")
	test.That(t, err, test.ShouldNotBeNil)
}
