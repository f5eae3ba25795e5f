package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: "dev-secret"
  expire_hours: 2
storage:
  type: minio
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "index_lms.html", cfg.Scorm.DefaultLaunchFile)
	assert.Equal(t, 10*time.Second, cfg.Scorm.LaunchLockTTL())
	assert.False(t, cfg.Scorm.ClampSuccessStatus)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.FilePath)
}

func TestLoadConfig_ReleaseRequiresLongSecret(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: "short"
storage:
  type: minio
`)

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfig_ScormSection(t *testing.T) {
	dir := writeConfig(t, `
jwt:
  secret: "dev-secret"
storage:
  type: minio
scorm:
  default_launch_file: start.html
  clamp_success_status: true
  launch_lock_ttl_seconds: 3
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "start.html", cfg.Scorm.DefaultLaunchFile)
	assert.True(t, cfg.Scorm.ClampSuccessStatus)
	assert.Equal(t, 3*time.Second, cfg.Scorm.LaunchLockTTL())
}
