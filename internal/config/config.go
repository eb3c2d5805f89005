// Package config resolves the paths and constants used to build the extension.
//
// Values are layered from lowest to highest precedence: built-in defaults,
// an optional YAML file, a .env file in the project root, and EXTBUILD_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"sigs.k8s.io/yaml"
)

const (
	// DefaultFileName is looked up in the project root when no config file is given.
	DefaultFileName = "extbuild.yaml"

	// EnvFileName is the dotenv file read from the project root.
	EnvFileName = ".env"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "EXTBUILD_"

	DefaultExtensionID = "@clickAt"
)

type Config struct {
	// Root is the project directory that relative paths resolve against.
	Root string `json:"-"`

	SrcDir    string `json:"srcDir"`
	AssetsDir string `json:"assetsDir"`
	DistDir   string `json:"distDir"`

	Manifest   string `json:"manifest"`
	Background string `json:"background"`
	Content    string `json:"content"`
	Styles     string `json:"styles"`
	Icon       string `json:"icon"`

	ExtensionID           string `json:"extensionId"`
	GeckoStrictMinVersion string `json:"geckoStrictMinVersion,omitempty"`
}

// Default returns the configuration rooted at root.
func Default(root string) *Config {
	return &Config{
		Root:        root,
		SrcDir:      "src",
		AssetsDir:   "assets",
		DistDir:     "dist",
		Manifest:    "manifest.json",
		Background:  "background.js",
		Content:     "content.js",
		Styles:      "style.css",
		Icon:        "icon.png",
		ExtensionID: DefaultExtensionID,
	}
}

// Load builds the configuration for the project at root. configPath may be
// empty, in which case root/extbuild.yaml is used if present. An explicitly
// named config file must exist.
func Load(root, configPath string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	cfg := Default(absRoot)

	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(absRoot, DefaultFileName)
	} else if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(absRoot, configPath)
	}
	if err := cfg.mergeFile(configPath, explicit); err != nil {
		return nil, err
	}

	dotenv, err := readDotenv(filepath.Join(absRoot, EnvFileName))
	if err != nil {
		return nil, err
	}
	cfg.mergeEnv(dotenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// mergeEnv applies EXTBUILD_* overrides. Process environment beats the .env file.
func (c *Config) mergeEnv(dotenv map[string]string) {
	for name, field := range c.envFields() {
		key := EnvPrefix + name
		*field = lo.CoalesceOrEmpty(os.Getenv(key), dotenv[key], *field)
	}
}

func (c *Config) envFields() map[string]*string {
	return map[string]*string{
		"SRC_DIR":                  &c.SrcDir,
		"ASSETS_DIR":               &c.AssetsDir,
		"DIST_DIR":                 &c.DistDir,
		"MANIFEST":                 &c.Manifest,
		"BACKGROUND":               &c.Background,
		"CONTENT":                  &c.Content,
		"STYLES":                   &c.Styles,
		"ICON":                     &c.Icon,
		"EXTENSION_ID":             &c.ExtensionID,
		"GECKO_STRICT_MIN_VERSION": &c.GeckoStrictMinVersion,
	}
}

// Validate checks that every required value is set.
func (c *Config) Validate() error {
	required := map[string]string{
		"srcDir":      c.SrcDir,
		"assetsDir":   c.AssetsDir,
		"distDir":     c.DistDir,
		"manifest":    c.Manifest,
		"background":  c.Background,
		"content":     c.Content,
		"styles":      c.Styles,
		"icon":        c.Icon,
		"extensionId": c.ExtensionID,
	}
	missing := lo.Filter(lo.Keys(required), func(key string, _ int) bool {
		return strings.TrimSpace(required[key]) == ""
	})
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("config values must not be empty: %s", strings.Join(missing, ", "))
	}

	if c.GeckoStrictMinVersion != "" {
		if _, err := semver.NewVersion(c.GeckoStrictMinVersion); err != nil {
			return fmt.Errorf("invalid geckoStrictMinVersion %q: %w", c.GeckoStrictMinVersion, err)
		}
	}
	return nil
}

// Path resolves p against the project root.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// DistPath is the absolute output root.
func (c *Config) DistPath() string {
	return c.Path(c.DistDir)
}

// ManifestPath is the absolute path of the base manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Path(c.SrcDir), c.Manifest)
}

// AssetPaths lists the static files copied into every target, in copy order.
func (c *Config) AssetPaths() []string {
	src := c.Path(c.SrcDir)
	return []string{
		filepath.Join(src, c.Background),
		filepath.Join(src, c.Content),
		filepath.Join(src, c.Styles),
		filepath.Join(c.Path(c.AssetsDir), c.Icon),
	}
}

// WatchDirs are the directories whose changes trigger a rebuild.
func (c *Config) WatchDirs() []string {
	return lo.Uniq([]string{c.Path(c.SrcDir), c.Path(c.AssetsDir)})
}
