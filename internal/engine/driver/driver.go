// Package driver executes a resolved build order.
//
// Targets run strictly one after another: later targets read headers, libraries and tools that
// earlier ones installed. Each target runs once per requested architecture, or once in total
// when it is not multi-platform, and walks the lifecycle
//
//	PENDING → DETECTING → (SKIPPED | ACQUIRING → CONFIGURING → BUILDING → INSTALLING → DONE)
//
// The first failing step ends the run; nothing is retried.
package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/kiln/internal/adapters/telemetry" //nolint:depguard // Default when no recorder is wired
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Services are the collaborators of the driver.
type Services struct {
	Systems       ports.BuildSystems
	Executor      ports.Executor
	Fetcher       ports.Fetcher
	Extractor     ports.Extractor
	Patcher       ports.Patcher
	Rewriter      ports.Rewriter
	Verifier      ports.Verifier
	Fingerprinter ports.Fingerprinter
	Ledger        ports.CompletionStoreOpener
	Telemetry     ports.Telemetry
	Logger        ports.Logger
}

// Driver runs targets through their lifecycle.
type Driver struct {
	svc Services

	goos     string
	now      func() time.Time
	newRunID func() string
}

// New creates a Driver for the host operating system.
// A nil Telemetry records nothing.
func New(svc Services) *Driver {
	if svc.Telemetry == nil {
		svc.Telemetry = telemetry.Noop{}
	}
	return &Driver{
		svc:      svc,
		goos:     runtime.GOOS,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// Unit is one target built for one architecture.
type Unit struct {
	Target *domain.Target
	Arch   domain.Architecture
	// MultiArch selects the per-architecture install prefix.
	MultiArch bool
}

// Schedule expands a resolution order into build units.
// Multi-platform targets get one unit per architecture; the others a single unit for the
// primary architecture that installs into the shared prefix.
func Schedule(order []*domain.Target, archs []domain.Architecture) []Unit {
	if len(archs) == 0 {
		archs = []domain.Architecture{domain.HostArchitecture()}
	}
	multiArch := len(archs) > 1
	primary := domain.PrimaryArchitecture(archs)

	units := make([]Unit, 0, len(order)*len(archs))
	for _, t := range order {
		if !t.MultiPlatform {
			units = append(units, Unit{Target: t, Arch: primary})
			continue
		}
		for _, a := range archs {
			units = append(units, Unit{Target: t, Arch: a, MultiArch: multiArch})
		}
	}
	return units
}

// Run builds order with the given settings. The returned report lists every unit that reached a
// terminal state; on failure its last outcome is the failed one and the error is a *domain.BuildError.
func (d *Driver) Run(ctx context.Context, order []*domain.Target, settings domain.Settings, req domain.BuildRequest) (*domain.Report, error) {
	report := &domain.Report{RunID: d.newRunID()}

	ledger, err := d.svc.Ledger.Open(settings.LedgerPath())
	if err != nil {
		return report, zerr.Wrap(err, "failed to open completion ledger")
	}
	if err := d.svc.Telemetry.Journal(settings.RunJournal(report.RunID)); err != nil {
		d.svc.Logger.Warn(fmt.Sprintf("progress of run %s is not persisted: %v", report.RunID, err))
	}

	r := &run{
		Driver:   d,
		settings: settings,
		req:      req,
		ledger:   ledger,
		runID:    report.RunID,
		staged:   make(map[string]bool),
	}

	for _, u := range Schedule(order, req.Architectures) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		start := d.now()
		step, err := r.execute(ctx, u)
		outcome := domain.Outcome{
			Target:   u.Target.Name.String(),
			Arch:     u.Arch,
			Step:     step,
			Duration: d.now().Sub(start),
		}
		if err != nil {
			outcome.Step = domain.StepFailed
			report.Outcomes = append(report.Outcomes, outcome)
			return report, &domain.BuildError{Target: outcome.Target, Arch: u.Arch, Step: step, Err: err}
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report, nil
}

// run is the state shared by the units of one Run call.
type run struct {
	*Driver
	settings domain.Settings
	req      domain.BuildRequest
	ledger   ports.CompletionStore
	runID    string
	// staged marks targets whose source was staged during this run.
	staged map[string]bool
}

type stepFunc func(ctx context.Context, state *domain.BuildState, bs ports.BuildSystem) error

// execute drives one unit. On failure it returns the step that failed.
func (r *run) execute(ctx context.Context, u Unit) (domain.Step, error) {
	t := u.Target
	state := r.newState(u)

	ctx, vertex := r.svc.Telemetry.Record(ctx, state.String())

	step := domain.StepDetecting
	fail := func(err error) (domain.Step, error) {
		vertex.Complete(err)
		return step, err
	}

	bs, err := r.svc.Systems.For(t.Kind)
	if err != nil {
		return fail(err)
	}

	fingerprint := r.svc.Fingerprinter.Fingerprint(t, u.Arch, r.req.Features, r.req.Overrides)
	record, err := r.ledger.Get(domain.CompletionKey(t.Name.String(), u.Arch))
	if err != nil {
		return fail(err)
	}
	stale := record != nil && record.Fingerprint != fingerprint
	sourceReady := r.sourceStaged(state)

	if !r.req.Force {
		done, err := r.installed(state, record, stale, sourceReady)
		if err != nil {
			return fail(err)
		}
		if done {
			r.svc.Logger.Info(fmt.Sprintf("%s: up to date", state))
			vertex.Cached()
			vertex.Complete(nil)
			return domain.StepSkipped, nil
		}
	}
	if stale {
		r.svc.Logger.Info(fmt.Sprintf("%s: %s", state, describeChange(record.Version, t.Version)))
	}

	reuseSource := r.staged[t.Name.String()] || (sourceReady && !stale && !r.req.Force)

	steps := []struct {
		step domain.Step
		run  stepFunc
	}{
		{domain.StepAcquiring, func(ctx context.Context, state *domain.BuildState, _ ports.BuildSystem) error {
			return r.acquire(ctx, state, reuseSource)
		}},
		{domain.StepConfiguring, r.configure},
		{domain.StepBuilding, func(ctx context.Context, state *domain.BuildState, bs ports.BuildSystem) error {
			return bs.Build(ctx, state)
		}},
		{domain.StepInstalling, func(ctx context.Context, state *domain.BuildState, bs ports.BuildSystem) error {
			return r.install(ctx, state, bs, fingerprint)
		}},
	}

	for _, s := range steps {
		step = s.step
		r.svc.Logger.Info(fmt.Sprintf("%s: %s", state, step))
		if err := s.run(ctx, state, bs); err != nil {
			return fail(err)
		}
	}

	vertex.Complete(nil)
	return domain.StepDone, nil
}

func (r *run) configure(ctx context.Context, state *domain.BuildState, bs ports.BuildSystem) error {
	// Every unit starts from an empty build tree.
	if err := os.RemoveAll(state.BuildDir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to clear build directory"), "dir", state.BuildDir)
	}
	if err := os.MkdirAll(state.BuildDir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create build directory"), "dir", state.BuildDir)
	}

	if hook := state.Target.Hooks.Configure; hook != nil {
		if err := hook(state); err != nil {
			return err
		}
	}
	return bs.Configure(ctx, state)
}

func (r *run) install(ctx context.Context, state *domain.BuildState, bs ports.BuildSystem, fingerprint string) error {
	if err := os.MkdirAll(state.InstallDir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create install directory"), "dir", state.InstallDir)
	}
	if err := bs.Install(ctx, state); err != nil {
		return err
	}
	if err := r.postBuild(ctx, state); err != nil {
		return err
	}

	return r.ledger.Put(domain.CompletionRecord{
		Target:      state.Target.Name.String(),
		Arch:        state.Arch,
		Version:     state.Target.Version,
		Fingerprint: fingerprint,
		RunID:       r.runID,
		InstallDir:  state.InstallDir,
		BuiltAt:     r.now().UTC(),
	})
}
