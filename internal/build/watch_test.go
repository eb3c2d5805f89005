package build

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchRebuildsOnChange(t *testing.T) {
	captureOutput(t)
	p := newProject(t, true, testAssets)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.builder.Watch(ctx, WatchOptions{Action: ActionBuild, Debounce: 20 * time.Millisecond})
	}()
	defer func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watch did not stop after cancel")
		}
	}()

	chromeManifest := p.path("dist", "chrome", "manifest.json")
	require.Eventually(t, func() bool {
		_, err := os.Stat(chromeManifest)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "initial build")

	updated := strings.Replace(testManifest, "1.4.0", "1.5.0", 1)
	require.NoError(t, os.WriteFile(p.path("src", "manifest.json"), []byte(updated), 0644))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(chromeManifest)
		return err == nil && strings.Contains(string(data), `"1.5.0"`)
	}, 5*time.Second, 20*time.Millisecond, "rebuild after manifest change")
}

func TestWatchRejectsUnknownAction(t *testing.T) {
	captureOutput(t)
	p := newProject(t, true, testAssets)

	err := p.builder.Watch(context.Background(), WatchOptions{Action: Action("deploy")})
	assert.True(t, errors.Is(err, ErrUnknownAction))
	assert.NoDirExists(t, p.path("dist"))
}
