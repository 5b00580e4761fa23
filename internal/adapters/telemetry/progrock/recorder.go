// Package progrock provides the progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Recorder implements ports.Telemetry on top of a progrock recorder.
// Updates go to the writer it was created with and, once Journal was called, to a journal file.
type Recorder struct {
	out *fanout
	rec *progrock.Recorder
}

var _ ports.Telemetry = (*Recorder)(nil)

// New creates a Recorder writing to an in-memory tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w progrock.Writer) *Recorder {
	out := &fanout{primary: w}
	return &Recorder{
		out: out,
		rec: progrock.NewRecorder(out),
	}
}

// Record starts a vertex named after the unit of work, usually "target@arch".
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	v := &Vertex{vertex: r.rec.Vertex(digest.FromString(name), name)}
	return ports.ContextWithVertex(ctx, v), v
}

// Journal writes every later update to path as JSON lines, replacing an earlier journal.
func (r *Recorder) Journal(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create journal directory"), "path", path)
	}
	journal, err := progrock.CreateJournal(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create journal"), "path", path)
	}
	return r.out.attach(journal)
}

// Close completes the recording and closes every writer.
func (r *Recorder) Close() error {
	r.rec.Complete()
	return r.rec.Close()
}

// fanout copies updates to the primary writer and the current journal.
type fanout struct {
	mu      sync.Mutex
	primary progrock.Writer
	journal progrock.Writer
}

func (f *fanout) WriteStatus(update *progrock.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.primary.WriteStatus(update); err != nil {
		return err
	}
	if f.journal != nil {
		return f.journal.WriteStatus(update)
	}
	return nil
}

func (f *fanout) attach(journal progrock.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev := f.journal
	f.journal = journal
	if prev != nil {
		return prev.Close()
	}
	return nil
}

func (f *fanout) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs *multierror.Error
	if err := f.primary.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if f.journal != nil {
		if err := f.journal.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
		f.journal = nil
	}
	return errs.ErrorOrNil()
}
