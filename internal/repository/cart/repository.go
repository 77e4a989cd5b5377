package cart

import (
	"context"

	"storefront/internal/domain"
)

// Snapshotter persists the whole cart store. Load returns an empty snapshot
// when nothing has been saved yet and an error when stored data can't be
// read or decoded.
type Snapshotter interface {
	Name() string
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
	Ping(ctx context.Context) error
}
