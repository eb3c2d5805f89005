package build

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/clickat/extbuild/internal/config"
	"github.com/clickat/extbuild/internal/manifest"
	"github.com/clickat/extbuild/pkg/util"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `{
  "manifest_version": 3,
  "name": "Click At",
  "version": "1.4.0",
  "background": {"service_worker": "old.js"},
  "content_scripts": [{"matches": ["<all_urls>"], "js": ["content.js"]}]
}`

var testAssets = map[string]string{
	"src/background.js": "chrome.runtime.onInstalled.addListener(() => {});",
	"src/content.js":    "document.addEventListener('click', () => {});",
	"src/style.css":     ".click-at { color: red; }",
	"assets/icon.png":   "\x89PNG fake icon",
}

var assetNames = []string{"background.js", "content.js", "style.css", "icon.png"}

// captureOutput routes pterm output into a buffer for the duration of the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	pterm.DisableStyling()
	restore := util.SetOutput(&buf)
	t.Cleanup(func() {
		restore()
		pterm.EnableStyling()
	})
	return &buf
}

type project struct {
	root    string
	cfg     *config.Config
	builder *Builder
}

func newProject(t *testing.T, withManifest bool, assets map[string]string) *project {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	if withManifest {
		require.NoError(t, os.WriteFile(filepath.Join(root, "src", "manifest.json"), []byte(testManifest), 0644))
	}
	for path, content := range assets {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	cfg := config.Default(root)
	return &project{root: root, cfg: cfg, builder: New(cfg)}
}

func (p *project) path(parts ...string) string {
	return filepath.Join(append([]string{p.root}, parts...)...)
}

func loadManifest(t *testing.T, path string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Load(path)
	require.NoError(t, err)
	return m
}

func manifestMap(t *testing.T, m *manifest.Manifest) map[string]any {
	t.Helper()
	data, err := m.Bytes()
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestBuildWritesBothTargets(t *testing.T) {
	out := captureOutput(t)
	p := newProject(t, true, testAssets)

	require.NoError(t, p.builder.Build(context.Background()))

	chrome := loadManifest(t, p.path("dist", "chrome", "manifest.json"))
	firefox := loadManifest(t, p.path("dist", "firefox", "manifest.json"))

	assert.Equal(t, "background.js", chrome.Get("background.service_worker").String())
	assert.False(t, chrome.Get("browser_specific_settings").Exists())
	require.Len(t, firefox.Get("background.scripts").Array(), 1)
	assert.Equal(t, "background.js", firefox.Get("background.scripts.0").String())
	assert.Equal(t, config.DefaultExtensionID, firefox.Get("browser_specific_settings.gecko.id").String())

	for _, target := range []string{"chrome", "firefox"} {
		for _, name := range assetNames {
			got, err := os.ReadFile(p.path("dist", target, name))
			require.NoError(t, err, "%s/%s", target, name)
			src := "src/" + name
			if name == "icon.png" {
				src = "assets/" + name
			}
			assert.Equal(t, testAssets[src], string(got))
		}
	}

	assert.Contains(t, out.String(), "Build started")
	assert.Contains(t, out.String(), "Build completed")
}

func TestBuildManifestIsIndented(t *testing.T) {
	captureOutput(t)
	p := newProject(t, true, testAssets)
	require.NoError(t, p.builder.Build(context.Background()))

	data, err := os.ReadFile(p.path("dist", "chrome", "manifest.json"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("{\n  \"manifest_version\": 3,\n  \"name\": \"Click At\"")), string(data))
}

func TestBuildMissingManifest(t *testing.T) {
	out := captureOutput(t)
	p := newProject(t, false, testAssets)

	err := p.builder.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, manifest.ErrNotFound))
	assert.Contains(t, out.String(), "Manifest not found")

	for _, target := range []string{"chrome", "firefox"} {
		entries, err := os.ReadDir(p.path("dist", target))
		require.NoError(t, err, "target directories are created before the manifest is read")
		assert.Empty(t, entries)
	}
}

func TestBuildInvalidManifest(t *testing.T) {
	captureOutput(t)
	p := newProject(t, false, testAssets)
	require.NoError(t, os.WriteFile(p.path("src", "manifest.json"), []byte(`["not", "an", "object"]`), 0644))

	err := p.builder.Build(context.Background())
	require.Error(t, err)
	assert.NoFileExists(t, p.path("dist", "chrome", "manifest.json"))
}

func TestBuildMissingAssetWarns(t *testing.T) {
	out := captureOutput(t)
	assets := map[string]string{}
	for k, v := range testAssets {
		if k != "src/style.css" {
			assets[k] = v
		}
	}
	p := newProject(t, true, assets)

	require.NoError(t, p.builder.Build(context.Background()))

	assert.Contains(t, out.String(), "File does not exist, skipping")
	assert.NoFileExists(t, p.path("dist", "chrome", "style.css"))
	assert.NoFileExists(t, p.path("dist", "firefox", "style.css"))
	assert.FileExists(t, p.path("dist", "firefox", "content.js"))
}

func TestCopyAssetMissingSourceLeavesDestUnchanged(t *testing.T) {
	captureOutput(t)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "keep.txt"), []byte("x"), 0644))

	require.NoError(t, copyAsset(filepath.Join(t.TempDir(), "missing.js"), dest))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Name())
}

func TestBuildUsesConfiguredGeckoSettings(t *testing.T) {
	captureOutput(t)
	p := newProject(t, true, testAssets)
	p.cfg.ExtensionID = "clickat@example.org"
	p.cfg.GeckoStrictMinVersion = "109.0"

	require.NoError(t, p.builder.Build(context.Background()))

	firefox := loadManifest(t, p.path("dist", "firefox", "manifest.json"))
	assert.Equal(t, "clickat@example.org", firefox.Get("browser_specific_settings.gecko.id").String())
	assert.Equal(t, "109.0", firefox.Get("browser_specific_settings.gecko.strict_min_version").String())
}

func zipContents(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	contents := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		contents[f.Name] = string(data)
	}
	return contents
}
