package reload

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/jig/internal/adapters/telemetry"
)

// NodeID is the unique identifier for the reload hub Graft node.
const NodeID graft.ID = "adapter.reload"

func init() {
	graft.Register(graft.Node[*Hub]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{telemetry.NodeID},
		Run: func(ctx context.Context) (*Hub, error) {
			metrics, err := graft.Dep[*telemetry.Metrics](ctx)
			if err != nil {
				return nil, err
			}
			return NewHub(metrics), nil
		},
	})
}
