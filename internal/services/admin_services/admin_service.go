// File: internal/services/admin_services/admin_service.go
package admin_services

import (
	"context"
	"fmt"
	"time"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/repository/reaction"
	"github.com/huddlehq/huddle/internal/repository/threadlink"
	"github.com/huddlehq/huddle/internal/repository/user"
)

// SweepReport summarizes one orphan reconciliation run.
type SweepReport struct {
	ReactionsRemoved   int64     `json:"reactions_removed"`
	ThreadLinksRemoved int64     `json:"thread_links_removed"`
	Cutoff             time.Time `json:"cutoff"`
}

// AdminService provides functionalities for administrative tasks.
type AdminService struct {
	userRepo       user.UserRepository
	reactionRepo   reaction.ReactionRepository
	threadLinkRepo threadlink.ThreadLinkRepository
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(
	userRepo user.UserRepository,
	reactionRepo reaction.ReactionRepository,
	threadLinkRepo threadlink.ThreadLinkRepository,
) *AdminService {
	return &AdminService{
		userRepo:       userRepo,
		reactionRepo:   reactionRepo,
		threadLinkRepo: threadLinkRepo,
	}
}

// GetAllUsers retrieves a list of all users in the system.
func (s *AdminService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

// SweepOrphans removes reactions and thread links whose messages were
// soft-deleted before the given grace period. Soft-deleting a message
// never cascades; this operator-triggered sweep is the cleanup policy.
func (s *AdminService) SweepOrphans(ctx context.Context, gracePeriod time.Duration) (*SweepReport, error) {
	if gracePeriod < 0 {
		gracePeriod = 0
	}
	cutoff := time.Now().UTC().Add(-gracePeriod)

	reactions, err := s.reactionRepo.DeleteOrphaned(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep orphaned reactions: %w", err)
	}
	links, err := s.threadLinkRepo.DeleteOrphaned(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep orphaned thread links: %w", err)
	}

	return &SweepReport{
		ReactionsRemoved:   reactions,
		ThreadLinksRemoved: links,
		Cutoff:             cutoff,
	}, nil
}
