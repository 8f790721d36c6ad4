// Package config resolves kbc settings from defaults, an optional YAML
// file, KBC_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pbaille/kbc/internal/logging"
	"github.com/pbaille/kbc/internal/render"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys, as used in the config file and (upper-cased, KBC_ prefixed) in the environment.
const (
	KeyAPIURL   = "api_url"
	KeyTimeout  = "timeout"
	KeyDB       = "db"
	KeyLogLevel = "log_level"
	KeyOutput   = "output"
	KeyOffline  = "offline"
)

const (
	EnvPrefix      = "KBC"
	DefaultAPIURL  = "http://localhost:37238"
	DefaultTimeout = 30 * time.Second
	dirName        = ".kbc"
	configName     = "config"
	snapshotFile   = "snapshot.db"
)

// Config is the resolved client configuration
type Config struct {
	APIURL   string
	Timeout  time.Duration
	DBPath   string
	LogLevel string
	Output   render.Format
	Offline  bool

	// File is the config file that was read, empty when none was found.
	File string
}

// Dir is where kbc keeps its config file and snapshot
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// SetDefaults registers the built-in values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyDB, filepath.Join(Dir(), snapshotFile))
	v.SetDefault(KeyLogLevel, logging.DefaultLevel)
	v.SetDefault(KeyOutput, string(render.FormatTable))
	v.SetDefault(KeyOffline, false)
}

// flagNames maps each key to the command-line flag that overrides it
var flagNames = map[string]string{
	KeyAPIURL:   "api-url",
	KeyTimeout:  "timeout",
	KeyLogLevel: "log-level",
	KeyOutput:   "output",
	KeyDB:       "db",
	KeyOffline:  "offline",
}

// BindFlags makes the flags in fs override every other source, but only
// when they were set on the command line
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagNames {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("bind config: no --%s flag", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind config: %w", err)
		}
	}
	return nil
}

// Load reads configuration into v and returns the validated result.
// file may be empty, in which case config.yaml is looked up in Dir and
// its absence is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	format, err := render.ParseFormat(v.GetString(KeyOutput))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:   strings.TrimRight(v.GetString(KeyAPIURL), "/"),
		Timeout:  v.GetDuration(KeyTimeout),
		DBPath:   v.GetString(KeyDB),
		LogLevel: v.GetString(KeyLogLevel),
		Output:   format,
		Offline:  v.GetBool(KeyOffline),
		File:     v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field is usable
func (c Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("invalid configuration: api url cannot be empty")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid configuration: api url must be an http:// or https:// url, got %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid configuration: timeout must be positive, got %v", c.Timeout)
	}
	if _, err := logging.Parse(c.LogLevel); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Offline && c.DBPath == "" {
		return errors.New("invalid configuration: offline mode needs a snapshot db path")
	}
	return nil
}
