package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the graft node of the ledger opener.
const NodeID graft.ID = "adapter.completion_store"

func init() {
	graft.Register(graft.Node[ports.CompletionStoreOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.CompletionStoreOpener, error) {
			return Opener{}, nil
		},
	})
}
