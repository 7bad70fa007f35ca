package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/shelf/internal/server"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "SHELF"
)

// Config keys.
const (
	cfgKeyBackend           = "backend"
	cfgKeyDataDir           = "data_dir"
	cfgKeyListenAddr        = "listen_addr"
	cfgKeyDebug             = "debug"
	cfgKeyLogLevel          = "log_level"
	cfgKeyLogFile           = "log_file"
	cfgKeyUploadDir         = "upload_dir"
	cfgKeyUploadPrefix      = "upload_prefix"
	cfgKeyMaxUploadMB       = "max_upload_mb"
	cfgKeyAllowedExtensions = "allowed_extensions"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend           string   `yaml:"backend"`
	DataDir           string   `yaml:"data_dir,omitempty"`
	ListenAddr        string   `yaml:"listen_addr"`
	LogLevel          string   `yaml:"log_level"`
	UploadDir         string   `yaml:"upload_dir"`
	UploadPrefix      string   `yaml:"upload_prefix"`
	MaxUploadMB       int      `yaml:"max_upload_mb"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

const configHeader = `# shelf configuration
# Every key can be overridden with a SHELF_<KEY> environment variable.
# backend: auto (database if projects.db exists, else projects.json), json, or sqlite.

`

func defaultConfigFile() configFile {
	return configFile{
		Backend:           types.BackendAuto,
		ListenAddr:        server.DefaultAddr,
		LogLevel:          "info",
		UploadDir:         types.DefaultUploadDir,
		UploadPrefix:      types.DefaultUploadPrefix,
		MaxUploadMB:       types.DefaultMaxUploadBytes >> 20,
		AllowedExtensions: append([]string(nil), types.DefaultAllowedExtensions...),
	}
}

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default config.yaml on first run. Environment variables
// prefixed with SHELF_ override file values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	def := defaultConfigFile()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyListenAddr, def.ListenAddr)
	v.SetDefault(cfgKeyDebug, false)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFile, "")
	v.SetDefault(cfgKeyUploadDir, def.UploadDir)
	v.SetDefault(cfgKeyUploadPrefix, def.UploadPrefix)
	v.SetDefault(cfgKeyMaxUploadMB, def.MaxUploadMB)
	v.SetDefault(cfgKeyAllowedExtensions, def.AllowedExtensions)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile writes config.yaml with default values unless it
// already exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(defaultConfigFile())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}

// storeConfig builds the record store and asset configuration.
func (a *app) storeConfig() types.Config {
	return types.Config{
		Backend:           strings.ToLower(a.v.GetString(cfgKeyBackend)),
		DataDir:           a.dataDir,
		UploadDir:         a.v.GetString(cfgKeyUploadDir),
		UploadPrefix:      a.v.GetString(cfgKeyUploadPrefix),
		AllowedExtensions: a.v.GetStringSlice(cfgKeyAllowedExtensions),
		MaxUploadBytes:    a.v.GetInt64(cfgKeyMaxUploadMB) << 20,
	}.WithDefaults()
}
