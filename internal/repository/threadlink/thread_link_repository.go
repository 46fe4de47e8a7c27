// File: internal/repository/threadlink/thread_link_repository.go
package threadlink

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/internal/domain"
)

type gormThreadLinkRepository struct {
	db *gorm.DB
}

func NewThreadLinkRepository(db *gorm.DB) ThreadLinkRepository {
	return &gormThreadLinkRepository{db: db}
}

func (r *gormThreadLinkRepository) CountByParent(ctx context.Context, parentID uint) (int64, error) {
	if parentID == 0 {
		return 0, errors.New("invalid parent message ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ThreadLink{}).
		Where("parent_id = ?", parentID).
		Count(&count).Error
	if err != nil {
		log.Printf("[ThreadLinkRepository] Database error counting replies for parent ID %d: %v", parentID, err)
		return 0, errors.New("database error counting thread replies")
	}

	return count, nil
}

// CountByParents returns reply counts for a page of parents in one query.
func (r *gormThreadLinkRepository) CountByParents(ctx context.Context, parentIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	type row struct {
		ParentID uint
		Replies  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.ThreadLink{}).
		Select("parent_id, COUNT(*) AS replies").
		Where("parent_id IN ?", parentIDs).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		log.Printf("[ThreadLinkRepository] Database error in batched reply count: %v", err)
		return nil, errors.New("database error counting thread replies")
	}

	for _, r := range rows {
		counts[r.ParentID] = r.Replies
	}
	return counts, nil
}

// DeleteOrphaned is the thread-link half of the reconciliation sweep.
func (r *gormThreadLinkRepository) DeleteOrphaned(ctx context.Context, deletedBefore time.Time) (int64, error) {
	deleted := r.db.Model(&domain.Message{}).
		Select("id").
		Where("is_deleted = ? AND updated_at < ?", true, deletedBefore)

	result := r.db.WithContext(ctx).
		Where("parent_id IN (?) OR reply_id IN (?)", deleted, deleted).
		Delete(&domain.ThreadLink{})
	if result.Error != nil {
		log.Printf("[ThreadLinkRepository] Database error sweeping orphaned thread links: %v", result.Error)
		return 0, errors.New("database error sweeping orphaned thread links")
	}

	if result.RowsAffected > 0 {
		log.Printf("[ThreadLinkRepository] Swept %d orphaned thread links", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
