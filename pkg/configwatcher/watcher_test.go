package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scorm_host_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
jwt:
  secret: "dev-secret"
storage:
  type: minio
scorm:
  clamp_success_status: %s
`

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	write := func(clamp string) {
		require.NoError(t, os.WriteFile(file, []byte(fmt.Sprintf(baseConfig, clamp)), 0644))
	}
	write("false")

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan *config.Config, 8)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, file, 50*time.Millisecond, func(cfg *config.Config) {
			reloaded <- cfg
		})
	}()

	var got *config.Config
	require.Eventually(t, func() bool {
		write("true")
		select {
		case got = <-reloaded:
			return true
		default:
			return false
		}
	}, 5*time.Second, 200*time.Millisecond)
	assert.True(t, got.Scorm.ClampSuccessStatus)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
