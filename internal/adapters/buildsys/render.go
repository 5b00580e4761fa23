package buildsys

import (
	"strings"

	"github.com/google/shlex"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// merge layers the state options over the adapter defaults.
func merge(defaults *domain.Options, state *domain.BuildState) *domain.Options {
	out := defaults.Clone()
	out.Merge(state.Options)
	return out
}

func isFlag(key string) bool {
	return strings.HasPrefix(key, "-")
}

// configureArgs renders options for a configure script.
// Dashed keys become --key=value or a bare --key, other keys are passed as VAR=value.
func configureArgs(opts *domain.Options) []string {
	var args []string
	for o := range opts.All() {
		if o.Flag {
			args = append(args, o.Key)
			continue
		}
		args = append(args, o.Key+"="+o.Value)
	}
	return args
}

// defineArgs renders options as -Dkey=value definitions, passing dashed keys through.
// Bare keys are rendered with value.
func defineArgs(opts *domain.Options, bare string) []string {
	var args []string
	for o := range opts.All() {
		switch {
		case isFlag(o.Key) && o.Flag:
			args = append(args, o.Key)
		case isFlag(o.Key):
			args = append(args, o.Key+"="+o.Value)
		case o.Flag:
			args = append(args, "-D"+o.Key+"="+bare)
		default:
			args = append(args, "-D"+o.Key+"="+o.Value)
		}
	}
	return args
}

// extraArgs splits the free-form extra arguments of the target with shell quoting rules.
func extraArgs(state *domain.BuildState) ([]string, error) {
	if state.Target == nil || state.Target.ExtraArgs == "" {
		return nil, nil
	}
	args, err := shlex.Split(state.Target.ExtraArgs)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTarget, "extra_args cannot be split"), "extra_args", state.Target.ExtraArgs)
	}
	return args, nil
}

func linkage(state *domain.BuildState) domain.Linkage {
	if state.Target == nil {
		return domain.LinkageDefault
	}
	return state.Target.Kind.Linkage()
}
