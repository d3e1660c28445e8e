// Package config loads graphchat settings from defaults, an optional
// config.yaml, a .env file and GRAPHCHAT_* environment variables, in
// increasing order of precedence. Command-line flags are applied on top by
// the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "GRAPHCHAT"

type Config struct {
	BackendURL string        `mapstructure:"backend_url" validate:"required,http_url"`
	HTTP       HTTPConfig    `mapstructure:"http"`
	Upload     UploadConfig  `mapstructure:"upload"`
	Session    SessionConfig `mapstructure:"session"`
	Log        LogConfig     `mapstructure:"log"`
	Export     ExportConfig  `mapstructure:"export"`
	Mock       MockConfig    `mapstructure:"mock"`
}

type HTTPConfig struct {
	// Timeout of zero waits indefinitely.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0s"`
}

type UploadConfig struct {
	Extension string `mapstructure:"extension" validate:"required,startswith=."`
}

type SessionConfig struct {
	File string `mapstructure:"file"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type MockConfig struct {
	Port       int           `mapstructure:"port" validate:"min=1,max=65535"`
	SessionTTL time.Duration `mapstructure:"session_ttl" validate:"gte=0s"`
}

// Dir returns the graphchat configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "graphchat"), nil
}

// Load reads the configuration. An empty path looks for config.yaml in
// Dir and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	dir, _ := Dir()
	v := viper.New()
	setDefaults(v, dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if dir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("backend_url", "http://localhost:8000")
	v.SetDefault("http.timeout", time.Duration(0))
	v.SetDefault("upload.extension", ".dump")
	v.SetDefault("session.file", joinIf(dir, "session.json"))
	v.SetDefault("log.level", "off")
	v.SetDefault("log.file", joinIf(dir, "graphchat.log"))
	v.SetDefault("export.dir", ".")
	v.SetDefault("mock.port", 8000)
	v.SetDefault("mock.session_ttl", 24*time.Hour)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})
	return v
}

// Validate checks values that would otherwise fail later and obscurely.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		msgs = append(msgs, fmt.Sprintf("%s fails %s (got %v)", key, fe.ActualTag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func joinIf(dir, name string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}
