// Package app implements the application layer for kiln.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/driver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// fetchConcurrency bounds parallel downloads of kiln fetch.
const fetchConcurrency = 4

// App represents the main application logic.
type App struct {
	loader    ports.CatalogLoader
	driver    *driver.Driver
	fetcher   ports.Fetcher
	telemetry ports.Telemetry
	logger    ports.Logger
	now       func() time.Time
}

// New creates a new App instance.
func New(
	loader ports.CatalogLoader,
	drv *driver.Driver,
	fetcher ports.Fetcher,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *App {
	return &App{
		loader:    loader,
		driver:    drv,
		fetcher:   fetcher,
		telemetry: telemetry,
		logger:    logger,
		now:       time.Now,
	}
}

// CatalogOptions select the catalog and override its settings.
// Zero values keep the catalog settings.
type CatalogOptions struct {
	Path    string
	Prefix  string
	WorkDir string
	Jobs    int
}

// BuildOptions configure a build or plan.
type BuildOptions struct {
	CatalogOptions
	Architectures []string
	Features      []string
	Overrides     []string
	Force         bool
}

// CleanOptions select what kiln clean removes.
type CleanOptions struct {
	CatalogOptions
	Sources   bool
	Builds    bool
	Downloads bool
	Ledger    bool
}

// PlanEntry is one target of a plan with the architectures it is built for.
type PlanEntry struct {
	Target        *domain.Target
	Architectures []domain.Architecture
	// Shared is true when the target installs into the root prefix.
	Shared bool
}

// Build resolves targets and builds them in order.
func (a *App) Build(ctx context.Context, targets []string, opts BuildOptions) (*domain.Report, error) {
	defer func() {
		if err := a.telemetry.Close(); err != nil {
			a.logger.Warn("failed to close telemetry: " + err.Error())
		}
	}()

	order, settings, req, err := a.prepare(targets, opts)
	if err != nil {
		return nil, err
	}

	start := a.now()
	report, err := a.driver.Run(ctx, order, settings, req)
	if err != nil {
		return report, err
	}

	a.logger.Info(fmt.Sprintf("built %d, skipped %d in %s",
		report.Count(domain.StepDone), report.Count(domain.StepSkipped), a.now().Sub(start).Round(time.Millisecond)))
	return report, nil
}

// Plan resolves targets without side effects.
func (a *App) Plan(targets []string, opts BuildOptions) ([]PlanEntry, error) {
	order, _, req, err := a.prepare(targets, opts)
	if err != nil {
		return nil, err
	}

	var entries []PlanEntry
	index := make(map[*domain.Target]int, len(order))
	for _, u := range driver.Schedule(order, req.Architectures) {
		i, ok := index[u.Target]
		if !ok {
			i = len(entries)
			index[u.Target] = i
			entries = append(entries, PlanEntry{Target: u.Target, Shared: !u.MultiArch})
		}
		entries[i].Architectures = append(entries[i].Architectures, u.Arch)
	}
	return entries, nil
}

// List returns every catalog target sorted by name.
func (a *App) List(opts CatalogOptions) ([]*domain.Target, error) {
	catalog, _, err := a.load(opts)
	if err != nil {
		return nil, err
	}

	names := catalog.Names()
	slices.Sort(names)

	out := make([]*domain.Target, 0, len(names))
	for _, name := range names {
		t, _ := catalog.Get(name)
		out = append(out, t)
	}
	return out, nil
}

// Fetch downloads and verifies the archives of targets and their prerequisites.
// Without targets the whole catalog is fetched.
func (a *App) Fetch(ctx context.Context, targets []string, opts CatalogOptions) error {
	catalog, settings, err := a.load(opts)
	if err != nil {
		return err
	}

	var order []*domain.Target
	if len(targets) == 0 {
		order, err = catalog.ResolveAll()
	} else {
		order, err = catalog.Resolve(targets)
	}
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	fetched := 0
	for _, t := range order {
		if t.Source.URL == "" {
			continue
		}
		fetched++
		g.Go(func() error {
			path, err := a.fetcher.Fetch(ctx, t.Source, settings.DownloadDir(), settings.Fetch)
			if err != nil {
				return zerr.With(err, "target", t.Name.String())
			}
			if info, err := os.Stat(path); err == nil {
				a.logger.Info(fmt.Sprintf("%s: %s (%s)", t.Name.String(), filepath.Base(path), humanize.Bytes(uint64(info.Size())))) //nolint:gosec // sizes are never negative
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info(fmt.Sprintf("fetched %d archives into %s", fetched, settings.DownloadDir()))
	return nil
}

// Clean removes work directory state. Without a selection only build trees are removed.
func (a *App) Clean(opts CleanOptions) error {
	_, settings, err := a.load(opts.CatalogOptions)
	if err != nil {
		return err
	}

	if !opts.Sources && !opts.Builds && !opts.Downloads && !opts.Ledger {
		opts.Builds = true
	}

	var paths []string
	if opts.Sources {
		paths = append(paths, settings.SourcesDir())
	}
	if opts.Builds {
		paths = append(paths, settings.BuildsDir())
	}
	if opts.Downloads {
		paths = append(paths, settings.DownloadDir())
	}
	if opts.Ledger {
		paths = append(paths, settings.LedgerPath(), settings.RunsDir())
	}

	for _, p := range paths {
		if err := os.RemoveAll(p); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to remove"), "path", p)
		}
		a.logger.Info("removed " + p)
	}
	return nil
}

// prepare loads the catalog, resolves targets and assembles the driver request.
// Nothing touches the filesystem beyond reading the catalog.
func (a *App) prepare(targets []string, opts BuildOptions) ([]*domain.Target, domain.Settings, domain.BuildRequest, error) {
	var req domain.BuildRequest
	if len(targets) == 0 {
		return nil, domain.Settings{}, req, domain.ErrNoTargets
	}

	catalog, settings, err := a.load(opts.CatalogOptions)
	if err != nil {
		return nil, settings, req, err
	}

	order, err := catalog.Resolve(targets)
	if err != nil {
		return nil, settings, req, err
	}

	archs, err := domain.ExpandArchitectures(opts.Architectures, settings.Architectures)
	if err != nil {
		return nil, settings, req, err
	}

	req = domain.BuildRequest{
		Targets:       slices.Clone(targets),
		Architectures: archs,
		Features:      make(map[string]bool, len(opts.Features)),
		Force:         opts.Force,
	}
	for _, f := range opts.Features {
		req.Features[f] = true
	}
	for _, s := range opts.Overrides {
		o, err := domain.ParseOverride(s)
		if err != nil {
			return nil, settings, req, err
		}
		if o.Target != "" {
			if _, ok := catalog.Get(o.Target); !ok {
				return nil, settings, req, zerr.With(zerr.Wrap(domain.ErrUnknownTarget, "override names an unknown target"), "target", o.Target)
			}
		}
		req.Overrides = append(req.Overrides, o)
	}
	return order, settings, req, nil
}

func (a *App) load(opts CatalogOptions) (*domain.Catalog, domain.Settings, error) {
	path := opts.Path
	if path == "" {
		path = domain.DefaultCatalogFile
	}

	catalog, settings, err := a.loader.Load(path)
	if err != nil {
		return nil, settings, zerr.Wrap(err, "failed to load catalog")
	}

	if opts.Prefix != "" {
		settings.Prefix = opts.Prefix
	}
	if opts.WorkDir != "" {
		settings.WorkDir = opts.WorkDir
	}
	if opts.Jobs > 0 {
		settings.Jobs = opts.Jobs
	}

	// Build tools run in other directories, so every path must be absolute.
	for _, dir := range []*string{&settings.Prefix, &settings.WorkDir, &settings.PatchDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, settings, zerr.With(zerr.Wrap(err, "failed to resolve directory"), "dir", *dir)
		}
		*dir = abs
	}
	return catalog, settings, nil
}
