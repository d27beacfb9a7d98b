// Package config defines the supervisor's configuration: the two-tier
// service table, session geometry, bootstrap paths, and logging. Values
// come from defaults, an optional YAML file, and BOSUN_* environment
// overrides, in that order of increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/tridentos/bosun/internal/registry"
)

// Config represents the complete bosun configuration
type Config struct {
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Session   SessionConfig   `mapstructure:"session"`
	Env       EnvConfig       `mapstructure:"env"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Services  ServicesConfig  `mapstructure:"services"`
}

// SchedulerConfig controls the boot sequence timing
type SchedulerConfig struct {
	// SettleDelaySeconds is the pause between the priority tier and the
	// standard tier, long enough for priority services to reach a
	// minimally-usable state before contending for CPU and I/O
	SettleDelaySeconds int `mapstructure:"settle_delay_seconds"`
}

// SettleDelay returns the settle delay as a time.Duration
func (c *SchedulerConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelaySeconds) * time.Second
}

// SessionConfig controls the tmux sessions services run in
type SessionConfig struct {
	// Socket is the tmux socket name all service sessions live on
	Socket string `mapstructure:"socket"`
	// Width is the width of each session's pane in columns
	Width int `mapstructure:"width"`
	// Height is the height of each session's pane in rows
	Height int `mapstructure:"height"`
	// HistoryLimit is the number of lines of scrollback kept per session
	HistoryLimit int `mapstructure:"history_limit"`
}

// EnvConfig controls which variables propagate into service sessions
type EnvConfig struct {
	// Prefix selects the variables published into every session.
	// Everything else in the host environment is withheld
	Prefix string `mapstructure:"prefix"`
}

// BootstrapConfig holds the filesystem paths the bootstrap steps consume
type BootstrapConfig struct {
	// DockerSocket is the bind-mounted Docker daemon socket
	DockerSocket string `mapstructure:"docker_socket"`
	// ConfigDir is the vehicle configuration directory; the derived
	// hardware identifier is written here
	ConfigDir string `mapstructure:"config_dir"`
	// HostResolv is the host-provided resolver file
	HostResolv string `mapstructure:"host_resolv"`
	// LocalResolv is the container-local resolver file replaced by a
	// symlink to HostResolv
	LocalResolv string `mapstructure:"local_resolv"`
}

// LoggingConfig controls structured logging behavior
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Dir is the directory the JSON log file is written to.
	// Empty means stderr
	Dir string `mapstructure:"dir"`
}

// ServiceEntry is one (name, command) pair in the service table
type ServiceEntry struct {
	Name    string `mapstructure:"name"`
	Command string `mapstructure:"command"`
}

// ServicesConfig is the declarative two-tier service table. Order within
// each list is launch order
type ServicesConfig struct {
	Priority []ServiceEntry `mapstructure:"priority"`
	Standard []ServiceEntry `mapstructure:"standard"`
}

// ServiceSpecs converts the table into registry specs, priority tier first.
func (s *ServicesConfig) ServiceSpecs() []registry.ServiceSpec {
	specs := make([]registry.ServiceSpec, 0, len(s.Priority)+len(s.Standard))
	for _, e := range s.Priority {
		specs = append(specs, registry.ServiceSpec{Name: e.Name, Command: e.Command, Tier: registry.TierPriority})
	}
	for _, e := range s.Standard {
		specs = append(specs, registry.ServiceSpec{Name: e.Name, Command: e.Command, Tier: registry.TierStandard})
	}
	return specs
}

// Default returns a Config with the standard vehicle fleet and sensible
// defaults for everything else.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			SettleDelaySeconds: 45,
		},
		Session: SessionConfig{
			Socket:       "bosun",
			Width:        200,
			Height:       50,
			HistoryLimit: 50000,
		},
		Env: EnvConfig{
			Prefix: "MAV_",
		},
		Bootstrap: BootstrapConfig{
			DockerSocket: "/var/run/docker.sock",
			ConfigDir:    "/etc/vehicle",
			HostResolv:   "/etc/resolv.conf.host",
			LocalResolv:  "/etc/resolv.conf",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "", // stderr
		},
		Services: ServicesConfig{
			Priority: []ServiceEntry{
				{Name: "mavlink-router", Command: "mavlink-routerd -e 192.168.2.1:14550"},
				{Name: "video", Command: "camera-managerd --rtsp-port 8554 --verbose"},
				{Name: "cable-guy", Command: "cable-guyd"},
			},
			Standard: []ServiceEntry{
				{Name: "terminal", Command: "ttyd -p 8088 bash"},
				{Name: "wifi", Command: "wifi-managerd --socket /tmp/wifi.sock"},
				{Name: "beacon", Command: "beacond --announce"},
				{Name: "helper", Command: "helperd"},
			},
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("scheduler.settle_delay_seconds", defaults.Scheduler.SettleDelaySeconds)

	viper.SetDefault("session.socket", defaults.Session.Socket)
	viper.SetDefault("session.width", defaults.Session.Width)
	viper.SetDefault("session.height", defaults.Session.Height)
	viper.SetDefault("session.history_limit", defaults.Session.HistoryLimit)

	viper.SetDefault("env.prefix", defaults.Env.Prefix)

	viper.SetDefault("bootstrap.docker_socket", defaults.Bootstrap.DockerSocket)
	viper.SetDefault("bootstrap.config_dir", defaults.Bootstrap.ConfigDir)
	viper.SetDefault("bootstrap.host_resolv", defaults.Bootstrap.HostResolv)
	viper.SetDefault("bootstrap.local_resolv", defaults.Bootstrap.LocalResolv)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	viper.SetDefault("services.priority", entryMaps(defaults.Services.Priority))
	viper.SetDefault("services.standard", entryMaps(defaults.Services.Standard))
}

// entryMaps converts service entries to the generic form viper stores
// defaults in, so a config file can override the whole list.
func entryMaps(entries []ServiceEntry) []map[string]string {
	out := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]string{"name": e.Name, "command": e.Command})
	}
	return out
}

// Load reads the configuration from viper into a Config struct and
// validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bosun")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bosun"
	}
	return filepath.Join(home, ".config", "bosun")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
