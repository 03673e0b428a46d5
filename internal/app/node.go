package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/jig/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/jig/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/jig/internal/adapters/reload"    //nolint:depguard // Wired in app layer
	"go.trai.ch/jig/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/jig/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/jig/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/jig/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles what the entry point needs from the dependency graph.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			watcher.NodeID,
			reload.NodeID,
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	builder, err := graft.Dep[ports.Builder](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	hub, err := graft.Dep[*reload.Hub](ctx)
	if err != nil {
		return nil, err
	}

	metrics, err := graft.Dep[*telemetry.Metrics](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, builder, w, hub, metrics, log), nil
}
