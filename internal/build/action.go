package build

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Action is a top-level workflow selectable from the command line.
type Action string

const (
	ActionBuild   Action = "build"
	ActionClean   Action = "clean"
	ActionRelease Action = "release"
	ActionAll     Action = "all"
)

var ErrUnknownAction = errors.New("unknown action")

// Actions returns every action in the order they are listed in help output.
func Actions() []Action {
	return []Action{ActionBuild, ActionClean, ActionRelease, ActionAll}
}

// ParseAction maps a command-line word to an Action.
func ParseAction(s string) (Action, error) {
	a, ok := lo.Find(Actions(), func(a Action) bool { return string(a) == s })
	if !ok {
		names := lo.Map(Actions(), func(a Action, _ int) string { return string(a) })
		return "", fmt.Errorf("%w %q: expected one of %s", ErrUnknownAction, s, strings.Join(names, ", "))
	}
	return a, nil
}

// Description is the one-line help text for a.
func (a Action) Description() string {
	switch a {
	case ActionBuild:
		return "Build the Chrome and Firefox extension trees"
	case ActionClean:
		return "Remove the dist directory"
	case ActionRelease:
		return "Build, then package both targets into release zips"
	case ActionAll:
		return "Clean, build and package in one go"
	default:
		return ""
	}
}

type stage struct {
	name string
	run  func(context.Context) error
}

func (b *Builder) stages(a Action) ([]stage, error) {
	clean := stage{"clean", b.Clean}
	build := stage{"build", b.Build}
	pkg := stage{"package", func(ctx context.Context) error {
		_, err := b.Package(ctx)
		return err
	}}

	switch a {
	case ActionBuild:
		return []stage{build}, nil
	case ActionClean:
		return []stage{clean}, nil
	case ActionRelease:
		return []stage{build, pkg}, nil
	case ActionAll:
		return []stage{clean, build, pkg}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, a)
	}
}

// Run executes the stages of a in order and stops at the first failure.
// Side effects of completed stages are kept.
func (b *Builder) Run(ctx context.Context, a Action) error {
	stages, err := b.stages(a)
	if err != nil {
		return err
	}
	for _, s := range stages {
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s failed: %w", s.name, err)
		}
	}
	return nil
}
