// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Executor runs subprocesses.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd and blocks until it exits.
	//
	// cmd.Env is layered over the process environment. Output is streamed while the command runs.
	// A non-zero exit status is returned as domain.ErrToolFailed carrying the exit code and the
	// tail of the command output.
	Execute(ctx context.Context, cmd *domain.Command) error
}
