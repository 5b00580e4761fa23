package driver

import (
	"github.com/Masterminds/semver/v3"
	"go.trai.ch/kiln/internal/core/domain"
)

// installed reports whether the unit can be skipped.
// Both probes must pass: the source is staged and the install artifacts exist. Targets that
// declare no install artifacts rely on the ledger record instead, which only counts when it
// was written for the install directory of this unit.
func (r *run) installed(state *domain.BuildState, record *domain.CompletionRecord, stale, sourceReady bool) (bool, error) {
	if !sourceReady || stale {
		return false, nil
	}
	if len(state.Target.Installs) == 0 {
		return record != nil && record.InstallDir == state.InstallDir, nil
	}
	return r.svc.Verifier.Exists(state.InstallDir, state.Target.Installs)
}

// describeChange explains why a previously installed target is rebuilt.
func describeChange(from, to string) string {
	if from == to {
		return "definition changed, rebuilding"
	}
	prev, errPrev := semver.NewVersion(from)
	next, errNext := semver.NewVersion(to)
	if errPrev != nil || errNext != nil {
		return "version changed from " + from + " to " + to
	}
	if next.LessThan(prev) {
		return "downgrading from " + prev.String() + " to " + next.String()
	}
	return "upgrading from " + prev.String() + " to " + next.String()
}
