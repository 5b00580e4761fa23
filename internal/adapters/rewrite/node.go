package rewrite

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the graft node of the rewriter.
const NodeID graft.ID = "adapter.rewriter"

func init() {
	graft.Register(graft.Node[ports.Rewriter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Rewriter, error) {
			return NewRewriter(), nil
		},
	})
}
