// File: internal/services/admin_services/admin_service_test.go
package admin_services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/huddlehq/huddle/internal/domain"
	reactionrepo "github.com/huddlehq/huddle/internal/repository/reaction"
	threadlinkrepo "github.com/huddlehq/huddle/internal/repository/threadlink"
	userrepo "github.com/huddlehq/huddle/internal/repository/user"
	"github.com/huddlehq/huddle/internal/services/admin_services"
)

func newAdminFixture(t *testing.T) (*admin_services.AdminService, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "admin_test.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Message{},
		&domain.ThreadLink{},
		&domain.Reaction{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	svc := admin_services.NewAdminService(
		userrepo.NewGormUserRepository(db),
		reactionrepo.NewReactionRepository(db),
		threadlinkrepo.NewThreadLinkRepository(db),
	)
	return svc, db
}

func TestSweepOrphansRespectsGracePeriod(t *testing.T) {
	svc, db := newAdminFixture(t)
	ctx := context.Background()

	// A long-deleted parent with a reaction and a thread link, plus a
	// freshly deleted message still inside the grace period.
	stale := domain.Message{ChannelID: 1, AuthorID: 1, Content: "stale", IsDeleted: true}
	fresh := domain.Message{ChannelID: 1, AuthorID: 1, Content: "fresh", IsDeleted: true}
	reply := domain.Message{ChannelID: 1, AuthorID: 2, Content: "reply"}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("create stale failed: %v", err)
	}
	if err := db.Create(&fresh).Error; err != nil {
		t.Fatalf("create fresh failed: %v", err)
	}
	if err := db.Create(&reply).Error; err != nil {
		t.Fatalf("create reply failed: %v", err)
	}

	// Age the stale message past the grace period.
	old := time.Now().UTC().Add(-48 * time.Hour)
	if err := db.Model(&domain.Message{}).Where("id = ?", stale.ID).
		Update("updated_at", old).Error; err != nil {
		t.Fatalf("failed to age stale message: %v", err)
	}

	rows := []interface{}{
		&domain.Reaction{MessageID: stale.ID, UserID: 2, Emoji: "👍"},
		&domain.Reaction{MessageID: fresh.ID, UserID: 2, Emoji: "👍"},
		&domain.ThreadLink{ParentID: stale.ID, ReplyID: reply.ID},
		&domain.ThreadLink{ParentID: fresh.ID, ReplyID: reply.ID},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	report, err := svc.SweepOrphans(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("SweepOrphans failed: %v", err)
	}
	if report.ReactionsRemoved != 1 {
		t.Fatalf("expected 1 reaction swept, got %d", report.ReactionsRemoved)
	}
	if report.ThreadLinksRemoved != 1 {
		t.Fatalf("expected 1 thread link swept, got %d", report.ThreadLinksRemoved)
	}

	// The fresh message's rows survive the sweep.
	var reactions, links int64
	if err := db.Model(&domain.Reaction{}).Count(&reactions).Error; err != nil {
		t.Fatalf("count reactions failed: %v", err)
	}
	if err := db.Model(&domain.ThreadLink{}).Count(&links).Error; err != nil {
		t.Fatalf("count links failed: %v", err)
	}
	if reactions != 1 || links != 1 {
		t.Fatalf("sweep removed rows inside the grace period: reactions=%d links=%d", reactions, links)
	}
}

func TestSweepOrphansEmptyDatabase(t *testing.T) {
	svc, _ := newAdminFixture(t)

	report, err := svc.SweepOrphans(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("SweepOrphans failed: %v", err)
	}
	if report.ReactionsRemoved != 0 || report.ThreadLinksRemoved != 0 {
		t.Fatalf("expected nothing swept, got %+v", report)
	}
}
