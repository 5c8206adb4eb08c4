package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	appErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
)

type (
	Config struct {
		Language     string                      `toml:"language"`
		LocalesDir   string                      `toml:"locales_dir,omitempty"`
		Redmine      RedmineConfig               `toml:"redmine"`
		Print        PrintConfig                 `toml:"print"`
		Server       ServerConfig                `toml:"server"`
		CustomFields []models.CustomFieldMapping `toml:"custom_fields,omitempty"`
		PathFile     string                      `toml:"-"`
	}

	// RedmineConfig holds the settings the tracker itself would expose
	// (protocol, host_name) plus the REST access used by the adapters.
	RedmineConfig struct {
		Protocol string `toml:"protocol"`
		HostName string `toml:"host_name"`
		BaseURL  string `toml:"base_url,omitempty"`
		APIKey   string `toml:"api_key,omitempty"`
		// CacheTTLSeconds keeps enumerations (trackers, statuses,
		// priorities) on disk; 0 turns the cache off.
		CacheTTLSeconds int `toml:"cache_ttl_seconds"`
	}

	PrintConfig struct {
		BaseURL             string `toml:"base_url"`
		App                 string `toml:"app"`
		Format              string `toml:"format"`
		DefaultLayout       string `toml:"default_layout"`
		PollIntervalSeconds int    `toml:"poll_interval_seconds"`
		TimeoutSeconds      int    `toml:"timeout_seconds"`
	}

	ServerConfig struct {
		Addr string `toml:"addr"`
	}
)

// CustomFieldKeys lists the well-known custom fields in print order.
var CustomFieldKeys = []string{"reporter", "channel", "phone", "email", "address"}

const (
	defaultLang         = LangJA
	defaultProtocol     = "http"
	defaultHostName     = "localhost:3000"
	defaultPrintURL     = "http://localhost:8080/mapfish"
	defaultPrintApp     = "default"
	defaultPrintFormat  = "pdf"
	defaultLayout       = "A4 portrait"
	defaultPollInterval = 2
	defaultTimeout      = 120
	defaultServerAddr   = ":8090"
	defaultCacheTTL     = 3600

	configDirName  = ".gtt-print"
	configFileName = "config.toml"
)

// LoadConfig reads the configuration at path. A directory (usually the home
// directory) resolves to <dir>/.gtt-print/config.toml; a missing file is
// created with defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, appErrors.ErrConfigMissing
	}

	var configPath string

	if filepath.Ext(path) == ".toml" {
		configPath = path
	} else {
		configDir := filepath.Join(path, configDirName)
		configPath = filepath.Join(configDir, configFileName)

		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			if err := os.MkdirAll(configDir, 0755); err != nil {
				return nil, fmt.Errorf("error creating config directory: %w", err)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	config := DefaultConfig()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, appErrors.ErrConfigInvalid.WithError(err).WithContext("path", configPath)
	}
	config.PathFile = configPath

	if err := validateConfig(config); err != nil {
		return nil, appErrors.ErrConfigInvalid.WithError(err).WithContext("path", configPath)
	}

	return config, nil
}

// DefaultConfig returns the built-in settings without touching the disk.
func DefaultConfig() *Config {
	return &Config{
		Language: defaultLang,
		Redmine: RedmineConfig{
			Protocol:        defaultProtocol,
			HostName:        defaultHostName,
			CacheTTLSeconds: defaultCacheTTL,
		},
		Print: PrintConfig{
			BaseURL:             defaultPrintURL,
			App:                 defaultPrintApp,
			Format:              defaultPrintFormat,
			DefaultLayout:       defaultLayout,
			PollIntervalSeconds: defaultPollInterval,
			TimeoutSeconds:      defaultTimeout,
		},
		Server: ServerConfig{
			Addr: defaultServerAddr,
		},
	}
}

func createDefaultConfig(path string) (*Config, error) {
	config := DefaultConfig()
	config.PathFile = path

	if err := SaveConfig(config); err != nil {
		return nil, fmt.Errorf("error saving default config: %w", err)
	}

	return config, nil
}

func SaveConfig(config *Config) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("config to save is invalid: %w", err)
	}

	if config.PathFile == "" {
		return errors.New("config file path is not set")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(config.PathFile), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	if err := os.WriteFile(config.PathFile, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	return nil
}

func validateConfig(config *Config) error {
	if config.Language == "" {
		return errors.New("language cannot be empty")
	}

	switch config.Redmine.Protocol {
	case "http", "https":
	default:
		return fmt.Errorf("unsupported protocol: %q", config.Redmine.Protocol)
	}

	if config.Redmine.HostName == "" {
		return appErrors.ErrHostNameMissing
	}

	if config.Print.Format == "" {
		return errors.New("print format cannot be empty")
	}

	if config.Print.PollIntervalSeconds < 0 || config.Print.TimeoutSeconds < 0 {
		return errors.New("print intervals cannot be negative")
	}

	if config.Redmine.CacheTTLSeconds < 0 {
		return errors.New("cache ttl cannot be negative")
	}

	for _, cf := range config.CustomFields {
		if !isCustomFieldKey(cf.Key) {
			return appErrors.ErrUnknownCustomField.WithContext("key", cf.Key)
		}
	}

	return nil
}

func isCustomFieldKey(key string) bool {
	for _, k := range CustomFieldKeys {
		if k == key {
			return true
		}
	}
	return false
}

// CustomFieldMappings returns one mapping per well-known field. Names come
// from the configuration when set there, otherwise from the translations.
func (c *Config) CustomFieldMappings(t *i18n.Translations) []models.CustomFieldMapping {
	overrides := make(map[string]models.CustomFieldMapping, len(c.CustomFields))
	for _, cf := range c.CustomFields {
		overrides[cf.Key] = cf
	}

	mappings := make([]models.CustomFieldMapping, 0, len(CustomFieldKeys))
	for _, key := range CustomFieldKeys {
		m := models.CustomFieldMapping{Key: key}
		if o, ok := overrides[key]; ok {
			m.FieldName = o.FieldName
			m.Attribute = o.Attribute
		}
		if m.FieldName == "" {
			m.FieldName = t.CustomFieldName(key)
		}
		mappings = append(mappings, m)
	}
	return mappings
}

// AttachmentURL builds the public download URL of an attachment.
// TODO: escape the filename with url.PathEscape once the print templates are
// checked against encoded URLs; names with spaces or '#' break today.
func (c *Config) AttachmentURL(a models.Attachment) string {
	return fmt.Sprintf("%s://%s/attachments/download/%d/%s", c.Redmine.Protocol, c.Redmine.HostName, a.ID, a.Filename)
}
