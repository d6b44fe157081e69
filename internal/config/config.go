// Package config loads client settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/quilclient/quilclient/amount"
	"github.com/quilclient/quilclient/internal/logging"
)

// Environment variables that override file values.
const (
	EnvNodeURI       = "QUILCLIENT_NODE_URI"
	EnvLogLevel      = "QUILCLIENT_LOG_LEVEL"
	EnvUnitsPerToken = "QUILCLIENT_UNITS_PER_TOKEN"
)

// Config is the resolved client configuration.
type Config struct {
	Node    NodeConfig
	Token   TokenConfig
	Log     LogConfig
	Storage StorageConfig
}

type NodeConfig struct {
	URI         string
	DialTimeout time.Duration
	CallTimeout time.Duration
	MaxMsgBytes int
}

type TokenConfig struct {
	UnitsPerToken uint64
}

type LogConfig struct {
	Level string
}

type StorageConfig struct {
	// FrameCASDir, when set, also stores downloaded frames in a local CAS.
	FrameCASDir string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Node: NodeConfig{
			DialTimeout: 10 * time.Second,
			CallTimeout: 60 * time.Second,
			MaxMsgBytes: 25 * 1024 * 1024,
		},
		Token: TokenConfig{UnitsPerToken: amount.DefaultUnitsPerToken},
		Log:   LogConfig{Level: logging.DefaultLevel},
	}
}

// Scale returns the configured amount scale.
func (c Config) Scale() (amount.Scale, error) {
	return amount.NewScale(c.Token.UnitsPerToken)
}

type fileConfig struct {
	Node struct {
		URI         string `toml:"uri"`
		DialTimeout string `toml:"dial_timeout"`
		CallTimeout string `toml:"call_timeout"`
		MaxMsgBytes int    `toml:"max_msg_bytes"`
	} `toml:"node"`
	Token struct {
		UnitsPerToken uint64 `toml:"units_per_token"`
	} `toml:"token"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
	Storage struct {
		FrameCASDir string `toml:"frame_cas_dir"`
	} `toml:"storage"`
}

// Load resolves the configuration: defaults, then path (if not empty), then
// the environment looked up through getenv.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.mergeEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %s", undecoded[0])
	}

	if meta.IsDefined("node", "uri") {
		c.Node.URI = strings.TrimSpace(raw.Node.URI)
	}
	if meta.IsDefined("node", "dial_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Node.DialTimeout))
		if err != nil {
			return fmt.Errorf("parse node.dial_timeout: %w", err)
		}
		c.Node.DialTimeout = d
	}
	if meta.IsDefined("node", "call_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Node.CallTimeout))
		if err != nil {
			return fmt.Errorf("parse node.call_timeout: %w", err)
		}
		c.Node.CallTimeout = d
	}
	if meta.IsDefined("node", "max_msg_bytes") {
		c.Node.MaxMsgBytes = raw.Node.MaxMsgBytes
	}
	if meta.IsDefined("token", "units_per_token") {
		c.Token.UnitsPerToken = raw.Token.UnitsPerToken
	}
	if meta.IsDefined("log", "level") {
		c.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("storage", "frame_cas_dir") {
		c.Storage.FrameCASDir = strings.TrimSpace(raw.Storage.FrameCASDir)
	}
	return nil
}

func (c *Config) mergeEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvNodeURI)); v != "" {
		c.Node.URI = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvUnitsPerToken)); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvUnitsPerToken, err)
		}
		c.Token.UnitsPerToken = n
	}
	return nil
}

// Validate checks every value and names the offending key.
func (c Config) Validate() error {
	var errs []error
	if c.Node.DialTimeout < 0 {
		errs = append(errs, errors.New("node.dial_timeout must not be negative"))
	}
	if c.Node.CallTimeout < 0 {
		errs = append(errs, errors.New("node.call_timeout must not be negative"))
	}
	if c.Node.MaxMsgBytes < 0 {
		errs = append(errs, errors.New("node.max_msg_bytes must not be negative"))
	}
	if c.Token.UnitsPerToken == 0 {
		errs = append(errs, errors.New("token.units_per_token must be positive"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}
