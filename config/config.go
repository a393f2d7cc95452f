// Package config holds AluVM's deployment-tunable settings: execution
// ceilings, which ISA extensions are enabled, and debugger/display/API
// surface preferences. Every numeric default here is a policy choice left
// open by the core specification, not a core invariant — bank widths, slot
// counts, and opcode semantics are fixed in package vm and never configurable.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the top-level AluVM configuration record.
type Config struct {
	// Execution settings
	Execution struct {
		ComplexityCeiling uint64 `toml:"complexity_ceiling"`
		JumpBudget        uint16 `toml:"jump_budget"`
		CallStackDepth    uint16 `toml:"call_stack_depth"`
		DefaultEntry      uint16 `toml:"default_entry"`
		EnableTrace       bool   `toml:"enable_trace"`
		EnableStats       bool   `toml:"enable_stats"`
	} `toml:"execution"`

	// ISAExtensions toggles optional instruction families beyond the core
	// ten (spec §4.4.9's curve family is the one shipped as an extension).
	ISAExtensions struct {
		Secp256k1  bool `toml:"secp256k1"`
		Curve25519 bool `toml:"curve25519"`
	} `toml:"isa_extensions"`

	// Debugger settings
	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowRegisters bool `toml:"show_registers"`
		ShowStack     bool `toml:"show_stack"`
	} `toml:"debugger"`

	// Display settings
	Display struct {
		ColorOutput  bool   `toml:"color_output"`
		BytesPerLine int    `toml:"bytes_per_line"`
		NumberFormat string `toml:"number_format"` // hex, dec
	} `toml:"display"`

	// API settings (introspection websocket server, see package api)
	API struct {
		ListenAddr string `toml:"listen_addr"`
		Enabled    bool   `toml:"enabled"`
	} `toml:"api"`

	// Trace settings
	Trace struct {
		OutputFile string `toml:"output_file"`
		MaxEntries int    `toml:"max_entries"`
	} `toml:"trace"`
}

// DefaultConfig returns a configuration with conservative defaults: a
// complexity ceiling of 2^24, and a jump budget and call-stack depth of
// 2^16-1 (the largest uint16 value).
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.ComplexityCeiling = 1 << 24
	cfg.Execution.JumpBudget = 1<<16 - 1
	cfg.Execution.CallStackDepth = 1<<16 - 1
	cfg.Execution.DefaultEntry = 0
	cfg.Execution.EnableTrace = false
	cfg.Execution.EnableStats = false

	cfg.ISAExtensions.Secp256k1 = true
	cfg.ISAExtensions.Curve25519 = false

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.ShowStack = true

	cfg.Display.ColorOutput = true
	cfg.Display.BytesPerLine = 16
	cfg.Display.NumberFormat = "hex"

	cfg.API.ListenAddr = "127.0.0.1:7878"
	cfg.API.Enabled = false

	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.MaxEntries = 100000

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "aluvm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "aluvm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "aluvm", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "aluvm", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, falling back to
// defaults if it doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
