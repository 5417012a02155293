// Package util provides common utilities for fingerpulse.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Terminals
	TerminalIPs  []string `mapstructure:"terminal_ips"`
	TerminalPort int      `mapstructure:"terminal_port"`
	CommKey      int      `mapstructure:"comm_key"`

	// Sync behaviour
	TargetYear        int           `mapstructure:"target_year"` // 0 means no filter
	SyncInterval      time.Duration `mapstructure:"sync_interval"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`

	// Timeouts. The probe is a cheap TCP pre-flight; protocol reads get a
	// materially longer deadline since bulk transfers can be slow.
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`

	// Simulation mode: no device I/O, connectivity tests report every
	// terminal as simulated-online. Resolved once at startup.
	SimulationMode bool `mapstructure:"simulation_mode"`

	// Attendance store
	StoreDriver string `mapstructure:"store_driver"` // sqlite or postgres
	PostgresDSN string `mapstructure:"postgres_dsn"`

	// Presentation defaults for sync results
	ShiftIn       string `mapstructure:"shift_in"`
	ShiftOut      string `mapstructure:"shift_out"`
	LateThreshold string `mapstructure:"late_threshold"`

	// Report settings
	ReportOutputDir string `mapstructure:"report_output_dir"`

	// Web server
	WebPort int `mapstructure:"web_port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".fingerpulse")

	return &Config{
		DataDir:  dataDir,
		LogLevel: "info",
		LogFile:  filepath.Join(dataDir, "fingerpulse.log"),

		TerminalIPs:  []string{},
		TerminalPort: 4370,
		CommKey:      0,

		TargetYear:        0,
		SyncInterval:      5 * time.Minute,
		HeartbeatInterval: 1 * time.Minute,

		ProbeTimeout:   2 * time.Second,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    10 * time.Second,

		SimulationMode: false,

		StoreDriver: "sqlite",

		ShiftIn:       "08:00",
		ShiftOut:      "17:00",
		LateThreshold: "08:05",

		ReportOutputDir: filepath.Join(dataDir, "reports"),
		WebPort:         3001,
	}
}

// LoadConfig loads configuration from file and environment.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	// Ensure config directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	// Store credentials live in .env next to the binary, like the rest of
	// the deployment. Missing file is fine.
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(cfg.DataDir)
	viper.AddConfigPath(".")

	// Set defaults in viper
	viper.SetDefault("data_dir", cfg.DataDir)
	viper.SetDefault("log_level", cfg.LogLevel)
	viper.SetDefault("terminal_ips", cfg.TerminalIPs)
	viper.SetDefault("terminal_port", cfg.TerminalPort)
	viper.SetDefault("comm_key", cfg.CommKey)
	viper.SetDefault("target_year", cfg.TargetYear)
	viper.SetDefault("sync_interval", cfg.SyncInterval)
	viper.SetDefault("heartbeat_interval", cfg.HeartbeatInterval)
	viper.SetDefault("probe_timeout", cfg.ProbeTimeout)
	viper.SetDefault("connect_timeout", cfg.ConnectTimeout)
	viper.SetDefault("read_timeout", cfg.ReadTimeout)
	viper.SetDefault("simulation_mode", cfg.SimulationMode)
	viper.SetDefault("store_driver", cfg.StoreDriver)
	viper.SetDefault("shift_in", cfg.ShiftIn)
	viper.SetDefault("shift_out", cfg.ShiftOut)
	viper.SetDefault("late_threshold", cfg.LateThreshold)
	viper.SetDefault("web_port", cfg.WebPort)

	viper.BindEnv("postgres_dsn", "POSTGRES_DSN")
	viper.BindEnv("simulation_mode", "FINGERPULSE_SIMULATION")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Foundational configuration is checked once here, never per request.
	if cfg.StoreDriver == "postgres" && cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("store_driver is postgres but POSTGRES_DSN is not set")
	}

	return cfg, nil
}

// Endpoints builds terminal endpoints from the configured IP list.
func (c *Config) Endpoints() []string {
	return c.TerminalIPs
}

// EnsureDir ensures a directory exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}
