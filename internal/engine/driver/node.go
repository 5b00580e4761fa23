package driver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/archive"            //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/buildsys"           //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/fetch"              //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/patch"              //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/rewrite"            //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/shell"              //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the driver Graft node.
const NodeID graft.ID = "engine.driver"

func init() {
	graft.Register(graft.Node[*Driver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			buildsys.NodeID,
			shell.NodeID,
			fetch.NodeID,
			archive.NodeID,
			patch.NodeID,
			rewrite.NodeID,
			fs.VerifierNodeID,
			fs.FingerprinterNodeID,
			cas.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Driver, error) {
			var (
				svc Services
				err error
			)
			if svc.Systems, err = graft.Dep[ports.BuildSystems](ctx); err != nil {
				return nil, err
			}
			if svc.Executor, err = graft.Dep[ports.Executor](ctx); err != nil {
				return nil, err
			}
			if svc.Fetcher, err = graft.Dep[ports.Fetcher](ctx); err != nil {
				return nil, err
			}
			if svc.Extractor, err = graft.Dep[ports.Extractor](ctx); err != nil {
				return nil, err
			}
			if svc.Patcher, err = graft.Dep[ports.Patcher](ctx); err != nil {
				return nil, err
			}
			if svc.Rewriter, err = graft.Dep[ports.Rewriter](ctx); err != nil {
				return nil, err
			}
			if svc.Verifier, err = graft.Dep[ports.Verifier](ctx); err != nil {
				return nil, err
			}
			if svc.Fingerprinter, err = graft.Dep[ports.Fingerprinter](ctx); err != nil {
				return nil, err
			}
			if svc.Ledger, err = graft.Dep[ports.CompletionStoreOpener](ctx); err != nil {
				return nil, err
			}
			if svc.Telemetry, err = graft.Dep[ports.Telemetry](ctx); err != nil {
				return nil, err
			}
			if svc.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
				return nil, err
			}
			return New(svc), nil
		},
	})
}
