package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/clickat/extbuild/internal/build"
	"github.com/clickat/extbuild/internal/config"
	"github.com/clickat/extbuild/pkg/util"
	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Metadata is stamped into the binary at release time.
type Metadata struct {
	Version string
	Commit  string
}

var metadata = Metadata{Version: "dev", Commit: "none"}

type globalFlags struct {
	dir     string
	config  string
	verbose bool
	noColor bool
}

var flags globalFlags

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&g.dir, "dir", "C", ".", "Project root directory")
	fs.StringVar(&g.config, "config", "", "Config file (default <dir>/"+config.DefaultFileName+")")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "Show debug output")
	fs.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
}

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#7D56F4"))

var rootCmd = &cobra.Command{
	Use:   "extbuild",
	Short: "Build and package the Click At browser extension",
	Long: titleStyle.Render("extbuild") + ` turns the extension sources into a Chrome tree and a Firefox
tree under dist/, and zips each of them into a release archive.

Paths and the Firefox add-on id can be changed in extbuild.yaml, in a .env
file, or with EXTBUILD_* environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("no action given: expected one of %s", actionNames())
	},
}

func init() {
	flags.register(rootCmd.PersistentFlags())
}

func actionNames() string {
	return strings.Join(lo.Map(build.Actions(), func(a build.Action, _ int) string {
		return string(a)
	}), ", ")
}

func setup(cmd *cobra.Command, args []string) error {
	if flags.noColor {
		pterm.DisableStyling()
	}
	if flags.verbose {
		pterm.EnableDebugMessages()
	}
	return nil
}

// getConfig loads the project configuration named by the global flags.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flags.dir, flags.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	pterm.Debug.Printf("extbuild %s (%s), project root %s\n", metadata.Version, metadata.Commit, cfg.Root)
	return cfg, nil
}

// Execute runs the command tree. Diagnostics are written to stderr.
func Execute(ctx context.Context, m Metadata) error {
	metadata = m
	util.SetOutput(os.Stderr)
	return fang.Execute(ctx, rootCmd,
		fang.WithVersion(m.Version),
		fang.WithCommit(m.Commit),
	)
}
