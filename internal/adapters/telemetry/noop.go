// Package telemetry holds telemetry adapters that need no backend.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/ports"
)

// Noop implements ports.Telemetry by discarding everything.
type Noop struct{}

var _ ports.Telemetry = Noop{}

// Record returns ctx unchanged and a vertex that discards output.
func (Noop) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Journal does nothing.
func (Noop) Journal(string) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }

type noopVertex struct{}

func (noopVertex) Stdout() io.Writer { return io.Discard }
func (noopVertex) Stderr() io.Writer { return io.Discard }
func (noopVertex) Cached() {}
func (noopVertex) Complete(error) {}
