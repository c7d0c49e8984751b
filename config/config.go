package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "FARMCONNECT"
	configFileEnvName = envPrefix + "_CONFIG_FILE"
	configName        = "farmconnect"

	FallbackBaseURL  = "http://localhost:8000/api/v1"
	DefaultUserAgent = "farmconnect-cli"
)

// BuildBaseURL is the API base URL baked in at build time:
//
//	go build -ldflags "-X github.com/zibot/farmconnect/config.BuildBaseURL=https://api.example.com/api/v1"
var BuildBaseURL string

const (
	flagConfig   = "config"
	flagBaseURL  = "base-url"
	flagLogLevel = "log-level"
)

type tlsFiles struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

type api struct {
	BaseURL   string   `mapstructure:"base_url"`
	UserAgent string   `mapstructure:"user_agent"`
	TLS       tlsFiles `mapstructure:"tls"`
}

type shell struct {
	HistoryFile string `mapstructure:"history_file"`
}

type Config struct {
	LogLevel slog.Level `mapstructure:"log_level"`
	API      api        `mapstructure:"api"`
	Shell    shell      `mapstructure:"shell"`
}

// DefaultBaseURL is BuildBaseURL when set, else FallbackBaseURL.
func DefaultBaseURL() string {
	if BuildBaseURL != "" {
		return BuildBaseURL
	}
	return FallbackBaseURL
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "config file (default is $XDG_CONFIG_HOME/farmconnect/farmconnect.yaml)")
	fs.String(flagBaseURL, "", "marketplace API base url")
	fs.String(flagLogLevel, "", "log level: debug, info, warn or error")
}

// Load reads the configuration. Sources by precedence: flags, FARMCONNECT_*
// environment (a .env file in the working directory included), config file,
// defaults. A missing default config file is not an error.
func Load(flags *pflag.FlagSet) (Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "warn")
	v.SetDefault("api.base_url", DefaultBaseURL())
	v.SetDefault("api.user_agent", DefaultUserAgent)
	v.SetDefault("api.tls.ca_file", "")
	v.SetDefault("api.tls.cert_file", "")
	v.SetDefault("api.tls.key_file", "")
	v.SetDefault("shell.history_file", defaultHistoryFile())

	if flags != nil {
		bindings := map[string]string{
			"api.base_url": flagBaseURL,
			"log_level":    flagLogLevel,
		}
		for key, name := range bindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("%s: %w", op, err)
				}
			}
		}
	}

	if err := readConfigFile(v, configFilepath(flags)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL()
	}
	return cfg, nil
}

func configFilepath(flags *pflag.FlagSet) string {
	if flags != nil {
		if p, err := flags.GetString(flagConfig); err == nil && p != "" {
			return p
		}
	}
	return os.Getenv(configFileEnvName)
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, configName))
	}
	v.AddConfigPath(".")

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

func defaultHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configName, "history")
}

func (c Config) Print(w io.Writer) {
	template := `
	General:
	LogLevel=%q

	API:
	BaseURL=%q
	UserAgent=%q
	TLS.CAFile=%q
	TLS.CertFile=%q
	TLS.KeyFile=%q

	Shell:
	HistoryFile=%q

`
	fmt.Fprintln(w, "Loaded config:")
	fmt.Fprintf(w,
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.API.BaseURL,
		c.API.UserAgent,
		c.API.TLS.CAFile,
		c.API.TLS.CertFile,
		c.API.TLS.KeyFile,
		c.Shell.HistoryFile,
	)
}
