// File: internal/repository/threadlink/interface.go
package threadlink

import (
	"context"
	"time"
)

type ThreadLinkRepository interface {
	CountByParent(ctx context.Context, parentID uint) (int64, error)
	CountByParents(ctx context.Context, parentIDs []uint) (map[uint]int64, error)
	// DeleteOrphaned removes links whose parent or reply was soft-deleted
	// and last touched before the cutoff. Returns rows removed.
	DeleteOrphaned(ctx context.Context, deletedBefore time.Time) (int64, error)
}
