// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/jig/internal/core/domain"
)

// Builder runs the external site build.
//
//go:generate go run go.uber.org/mock/mockgen -source=builder.go -destination=mocks/mock_builder.go -package=mocks
type Builder interface {
	// Build runs cmd to completion.
	//
	// It returns an error wrapping domain.ErrBuildFailed when the process exits non-zero.
	Build(ctx context.Context, cmd *domain.BuildCommand) error
}
