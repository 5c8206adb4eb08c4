package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	appErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("should fail without a path", func(t *testing.T) {
		_, err := LoadConfig("")
		assert.True(t, errors.Is(err, appErrors.ErrConfigMissing))
	})

	t.Run("should create a default config inside a directory", func(t *testing.T) {
		tmpDir := t.TempDir()

		cfg, err := LoadConfig(tmpDir)

		require.NoError(t, err)
		expectedPath := filepath.Join(tmpDir, ".gtt-print", "config.toml")
		assert.Equal(t, expectedPath, cfg.PathFile)
		assert.FileExists(t, expectedPath)
		assert.Equal(t, "ja", cfg.Language)
		assert.Equal(t, "http", cfg.Redmine.Protocol)
		assert.Equal(t, "localhost:3000", cfg.Redmine.HostName)
		assert.Equal(t, "pdf", cfg.Print.Format)
	})

	t.Run("should read an explicit toml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gtt.toml")
		content := `
language = "en"

[redmine]
protocol = "https"
host_name = "redmine.example.org"

[print]
base_url = "https://print.example.org/mapfish"
app = "gtt"
format = "png"

[[custom_fields]]
key = "reporter"
name = "Caller"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "en", cfg.Language)
		assert.Equal(t, "https", cfg.Redmine.Protocol)
		assert.Equal(t, "redmine.example.org", cfg.Redmine.HostName)
		assert.Equal(t, "gtt", cfg.Print.App)
		assert.Equal(t, "png", cfg.Print.Format)
		assert.Equal(t, "A4 portrait", cfg.Print.DefaultLayout, "unset keys keep their default")
		require.Len(t, cfg.CustomFields, 1)
		assert.Equal(t, "Caller", cfg.CustomFields[0].FieldName)
	})

	t.Run("should reject malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("[redmine\nprotocol ="), 0644))

		_, err := LoadConfig(path)

		assert.True(t, errors.Is(err, appErrors.ErrConfigInvalid))
	})

	t.Run("should reject an unknown custom field key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gtt.toml")
		content := `
[[custom_fields]]
key = "weather"
name = "Weather"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, err := LoadConfig(path)

		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrConfigInvalid))
		assert.Contains(t, err.Error(), "Unknown custom field key")
	})
}

func TestSaveConfig(t *testing.T) {
	t.Run("should validate before saving", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Language = ""
		cfg.PathFile = filepath.Join(t.TempDir(), "config.toml")

		assert.Error(t, SaveConfig(cfg))
	})

	t.Run("should require a path", func(t *testing.T) {
		assert.Error(t, SaveConfig(DefaultConfig()))
	})

	t.Run("should reject an unsupported protocol", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Redmine.Protocol = "ftp"
		cfg.PathFile = filepath.Join(t.TempDir(), "config.toml")

		assert.Error(t, SaveConfig(cfg))
	})

	t.Run("should write a readable file", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Redmine.HostName = "gtt.example.jp"
		cfg.PathFile = filepath.Join(t.TempDir(), "nested", "config.toml")

		require.NoError(t, SaveConfig(cfg))

		var saved Config
		_, err := toml.DecodeFile(cfg.PathFile, &saved)
		require.NoError(t, err)
		assert.Equal(t, "gtt.example.jp", saved.Redmine.HostName)
		assert.Empty(t, saved.PathFile)
	})
}

func TestConfig_CustomFieldMappings(t *testing.T) {
	trans, err := i18n.NewTranslations("ja", "")
	require.NoError(t, err)

	t.Run("should use localized names by default", func(t *testing.T) {
		mappings := DefaultConfig().CustomFieldMappings(trans)

		attrs := make([]string, 0, len(mappings))
		for _, m := range mappings {
			attrs = append(attrs, m.AttributeName())
		}
		assert.Equal(t, []string{
			"cf_通報者",
			"cf_通報手段",
			"cf_通報者電話番号",
			"cf_通報者メールアドレス",
			"cf_現地住所",
		}, attrs)
	})

	t.Run("should apply overrides", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CustomFields = []models.CustomFieldMapping{
			{Key: "phone", FieldName: "Phone"},
			{Key: "email", FieldName: "Mail", Attribute: "reporter_mail"},
		}

		mappings := cfg.CustomFieldMappings(trans)

		require.Len(t, mappings, 5)
		assert.Equal(t, models.CustomFieldMapping{Key: "reporter", FieldName: "通報者"}, mappings[0])
		assert.Equal(t, "Phone", mappings[2].FieldName)
		assert.Equal(t, "cf_Phone", mappings[2].AttributeName())
		assert.Equal(t, "reporter_mail", mappings[3].AttributeName())
	})
}

func TestConfig_AttachmentURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Redmine.Protocol = "https"
	cfg.Redmine.HostName = "redmine.example.org"

	url := cfg.AttachmentURL(models.Attachment{ID: 17, Filename: "photo.jpg"})

	assert.Equal(t, "https://redmine.example.org/attachments/download/17/photo.jpg", url)
}

func TestGetLocaleConfig(t *testing.T) {
	assert.Equal(t, LangEN, GetLocaleConfig("en"))
	assert.Equal(t, LangJA, GetLocaleConfig("ja"))
	assert.Equal(t, LangJA, GetLocaleConfig("xx"))
}
