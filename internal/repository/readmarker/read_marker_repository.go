// File: internal/repository/readmarker/read_marker_repository.go
package readmarker

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/internal/domain"
)

var ErrReadMarkerNotFound = errors.New("read marker not found")

type gormReadMarkerRepository struct {
	db *gorm.DB
}

func NewReadMarkerRepository(db *gorm.DB) ReadMarkerRepository {
	return &gormReadMarkerRepository{db: db}
}

// Upsert runs in a transaction so concurrent marks serialize on the row.
// LastReadAt only ever moves forward; LastMessageID follows the winning
// timestamp.
func (r *gormReadMarkerRepository) Upsert(ctx context.Context, userID, channelID uint, lastMessageID *uint) (*domain.ReadMarker, error) {
	if userID == 0 || channelID == 0 {
		return nil, errors.New("invalid user ID or channel ID")
	}

	now := time.Now().UTC()
	var marker domain.ReadMarker
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND channel_id = ?", userID, channelID).First(&marker).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			marker = domain.ReadMarker{
				UserID:        userID,
				ChannelID:     channelID,
				LastReadAt:    now,
				LastMessageID: lastMessageID,
			}
			return tx.Create(&marker).Error
		}
		if err != nil {
			return err
		}

		if !now.After(marker.LastReadAt) {
			// Stale mark; keep the newer position.
			return nil
		}
		marker.LastReadAt = now
		if lastMessageID != nil {
			marker.LastMessageID = lastMessageID
		}
		return tx.Save(&marker).Error
	})
	if err != nil {
		log.Printf("[ReadMarkerRepository] Database error upserting marker for user %d channel %d: %v", userID, channelID, err)
		return nil, errors.New("database error saving read marker")
	}

	return &marker, nil
}

func (r *gormReadMarkerRepository) Find(ctx context.Context, userID, channelID uint) (*domain.ReadMarker, error) {
	if userID == 0 || channelID == 0 {
		return nil, errors.New("invalid user ID or channel ID")
	}

	var marker domain.ReadMarker
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		First(&marker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReadMarkerNotFound
		}
		log.Printf("[ReadMarkerRepository] Find database error: %v", err)
		return nil, errors.New("database query failed")
	}

	return &marker, nil
}

func (r *gormReadMarkerRepository) FindForUser(ctx context.Context, userID uint, channelIDs []uint) (map[uint]domain.ReadMarker, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}
	markers := make(map[uint]domain.ReadMarker, len(channelIDs))
	if len(channelIDs) == 0 {
		return markers, nil
	}

	var rows []domain.ReadMarker
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_id IN ?", userID, channelIDs).
		Find(&rows).Error
	if err != nil {
		log.Printf("[ReadMarkerRepository] Database error fetching markers for user %d: %v", userID, err)
		return nil, errors.New("database error fetching read markers")
	}

	for _, m := range rows {
		markers[m.ChannelID] = m
	}
	return markers, nil
}
