// Package configload resolves toolbelt configuration from, in order of
// precedence: environment variables, an optional YAML config file, the
// persisted user data store, and built-in defaults.
package configload

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"toolbelt/internal/domain"
	"toolbelt/internal/infra/userdata"
)

// Config is the resolved runtime configuration.
type Config struct {
	APIKey               string `mapstructure:"apiKey"`
	BaseURL              string `mapstructure:"baseURL"`
	EntityID             string `mapstructure:"entityID"`
	CacheDir             string `mapstructure:"cacheDir"`
	OutputDir            string `mapstructure:"outputDir"`
	OutputInFile         bool   `mapstructure:"outputInFile"`
	RemoteTimeoutSeconds int    `mapstructure:"remoteTimeoutSeconds"`
	MetricsListenAddress string `mapstructure:"metricsListenAddress"`
}

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.Named("configload")}
}

func newRuntimeViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setRuntimeDefaults(v)
	return v
}

func setRuntimeDefaults(v *viper.Viper) {
	v.SetDefault("baseURL", domain.DefaultBaseURL)
	v.SetDefault("entityID", domain.DefaultEntityID)
	v.SetDefault("cacheDir", defaultCacheDir())
	v.SetDefault("outputInFile", false)
	v.SetDefault("remoteTimeoutSeconds", domain.DefaultRemoteTimeoutSeconds)
	v.SetDefault("metricsListenAddress", domain.DefaultMetricsListenAddress)
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return domain.DefaultCacheDirName
	}
	return filepath.Join(home, domain.DefaultCacheDirName)
}

// Load resolves configuration. path may be empty; the user data store under
// the resolved cache dir fills in whatever the file and environment leave
// unset.
func (l *Loader) Load(path string) (Config, error) {
	v := newRuntimeViper()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	l.applyEnv(&cfg)
	l.applyUserData(&cfg)

	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(cfg.CacheDir, domain.DefaultOutputDirName)
	}
	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) {
	for env, target := range map[string]*string{
		domain.EnvAPIKey:   &cfg.APIKey,
		domain.EnvBaseURL:  &cfg.BaseURL,
		domain.EnvEntityID: &cfg.EntityID,
		domain.EnvCacheDir: &cfg.CacheDir,
	} {
		if value := os.Getenv(env); value != "" {
			*target = value
		}
	}
}

// applyUserData backfills the API key, base URL and entity id from the
// persisted store when neither the file nor the environment supplied them.
// A missing or unreadable store is not an error.
func (l *Loader) applyUserData(cfg *Config) {
	path := filepath.Join(cfg.CacheDir, domain.DefaultUserDataFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return
	}
	store, err := userdata.OpenStore(path)
	if err != nil {
		l.logger.Debug("open user data store failed", zap.String("path", path), zap.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	data, err := store.Load()
	if err != nil {
		l.logger.Debug("read user data failed", zap.Error(err))
		return
	}
	if cfg.APIKey == "" {
		cfg.APIKey = data.APIKey
	}
	if cfg.BaseURL == domain.DefaultBaseURL && data.BaseURL != "" {
		cfg.BaseURL = data.BaseURL
	}
	if cfg.EntityID == domain.DefaultEntityID && data.EntityID != "" {
		cfg.EntityID = data.EntityID
	}
}
