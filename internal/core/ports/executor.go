// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/bake/internal/core/domain"
)

// Executor defines the interface for running external commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command and waits for it to finish.
	//
	// It returns an error wrapping domain.ErrCommandFailed if the command
	// exits unsuccessfully.
	Execute(ctx context.Context, cmd *domain.Command) error

	// LookPath resolves an executable name using the process PATH.
	LookPath(name string) (string, error)
}
