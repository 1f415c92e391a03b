package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"gitlet/shared/utils"
)

const (
	FileName  = "config.toml"
	EnvPrefix = "GITLET_"
)

type Config struct {
	LogLevel      string     `koanf:"log_level" toml:"log_level,omitempty"`         // debug, info, warn, error
	DefaultBranch string     `koanf:"default_branch" toml:"default_branch,omitempty"`
	Objects       Objects    `koanf:"objects" toml:"objects,omitempty"`
	Repository    Repository `koanf:"repository" toml:"repository"`
}

type Objects struct {
	CacheSize       int `koanf:"cache_size" toml:"cache_size,omitempty"`
	CompressMinSize int `koanf:"compress_min_size" toml:"compress_min_size,omitempty"`
	CompressLevel   int `koanf:"compress_level" toml:"compress_level,omitempty"`
}

type Repository struct {
	ID      string `koanf:"id" toml:"id"`
	Created string `koanf:"created" toml:"created"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"log_level":                 "warn",
		"default_branch":            "master",
		"objects.cache_size":        256,
		"objects.compress_min_size": 1024,
		"objects.compress_level":    2,
	}
}

// Default returns the built-in configuration without consulting any file
// or the environment.
func Default() *Config {
	cfg, err := load(nil, false)
	if err != nil {
		// defaults alone always decode
		panic(err)
	}
	return cfg
}

// UserPath is the per-user config file shared by every repository.
func UserPath() string {
	return filepath.Join(xdg.ConfigHome, "gitlet", FileName)
}

// Load layers defaults, the user file, the repository file found in
// gitletDir and GITLET_* environment variables, later layers winning.
// gitletDir may be empty when no repository exists yet.
func Load(gitletDir string) (*Config, error) {
	files := []string{UserPath()}
	if gitletDir != "" {
		files = append(files, filepath.Join(gitletDir, FileName))
	}
	return load(files, true)
}

func load(files []string, withEnv bool) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if withEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("loading env vars: %w", err)
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DefaultBranch == "" {
		return fmt.Errorf("default_branch must not be empty")
	}
	if c.Objects.CacheSize <= 0 {
		return fmt.Errorf("objects.cache_size must be positive, got %d", c.Objects.CacheSize)
	}
	if c.Objects.CompressLevel < 1 || c.Objects.CompressLevel > 4 {
		return fmt.Errorf("objects.compress_level must be between 1 and 4, got %d", c.Objects.CompressLevel)
	}
	return nil
}

// WriteRepoFile records a fresh repository identity in gitletDir. Only the
// identity is written; every other key keeps following the layered defaults.
func WriteRepoFile(gitletDir string, now time.Time) (*Repository, error) {
	repo := Repository{
		ID:      uuid.NewString(),
		Created: now.UTC().Format(time.RFC3339),
	}
	data, err := gotoml.Marshal(struct {
		Repository Repository `toml:"repository"`
	}{repo})
	if err != nil {
		return nil, fmt.Errorf("encoding repository config: %w", err)
	}
	if err := utils.SafeWrite(filepath.Join(gitletDir, FileName), data, 0644); err != nil {
		return nil, fmt.Errorf("writing repository config: %w", err)
	}
	return &repo, nil
}
