package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  name: branch
  http:
    port: 9000
jwt:
  secret: from-file
db:
  driver: postgres
  dsn: postgres://x
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("APP_DB_DSN", "postgres://from-env")

	c, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "branch", c.App.Name)
	assert.Equal(t, 9000, c.App.HTTP.Port)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "postgres://from-env", c.DB.DSN)
	assert.Equal(t, "from-file", c.JWT.Secret)
	// 默认值
	assert.Equal(t, 8081, c.App.Admin.Port)
	assert.Equal(t, 10, c.Limits.TimeoutSec)
}

func TestRead_MissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "s3cret")
	c, err := Read(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "library.db", c.DB.DSN)
	assert.True(t, c.DB.AutoMigrate)
}

func TestRead_RequiresSecret(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
