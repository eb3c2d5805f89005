package cmd

import (
	"context"
	"time"

	"github.com/clickat/extbuild/internal/build"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Runner is the part of build.Builder the commands drive.
type Runner interface {
	Run(ctx context.Context, a build.Action) error
	Watch(ctx context.Context, opts build.WatchOptions) error
}

// ExtensionCmd executes build actions against one project.
type ExtensionCmd struct {
	builder Runner
}

type ActionInput struct {
	Action build.Action
}

type WatchInput struct {
	Debounce time.Duration
}

func (e ExtensionCmd) Run(ctx context.Context, in ActionInput) error {
	if _, err := build.ParseAction(string(in.Action)); err != nil {
		return err
	}
	pterm.Debug.Printf("Running %s\n", in.Action)
	return e.builder.Run(ctx, in.Action)
}

// Watch rebuilds everything whenever the sources change, until ctx ends.
func (e ExtensionCmd) Watch(ctx context.Context, in WatchInput) error {
	return e.builder.Watch(ctx, build.WatchOptions{
		Action:   build.ActionAll,
		Debounce: in.Debounce,
	})
}

func newActionCmd(a build.Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(a),
		Short: a.Description(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			e := ExtensionCmd{builder: build.New(cfg)}
			return e.Run(cmd.Context(), ActionInput{Action: a})
		},
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run a full build and release, then repeat it whenever the sources change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	for _, a := range build.Actions() {
		rootCmd.AddCommand(newActionCmd(a))
	}

	watchCmd.Flags().Duration("debounce", 200*time.Millisecond, "How long to wait for further changes before rebuilding")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounce, _ := cmd.Flags().GetDuration("debounce")

	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}
	e := ExtensionCmd{builder: build.New(cfg)}
	return e.Watch(cmd.Context(), WatchInput{Debounce: debounce})
}
