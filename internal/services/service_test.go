// File: internal/services/service_test.go
package services_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/huddlehq/huddle/internal/domain"
	channelrepo "github.com/huddlehq/huddle/internal/repository/channel"
	membershiprepo "github.com/huddlehq/huddle/internal/repository/membership"
	messagerepo "github.com/huddlehq/huddle/internal/repository/message"
	reactionrepo "github.com/huddlehq/huddle/internal/repository/reaction"
	readmarkerrepo "github.com/huddlehq/huddle/internal/repository/readmarker"
	threadlinkrepo "github.com/huddlehq/huddle/internal/repository/threadlink"
	userrepo "github.com/huddlehq/huddle/internal/repository/user"
	"github.com/huddlehq/huddle/internal/services"
)

// fixture wires every conversation-layer service against a throwaway
// SQLite database, the same way cmd/server does.
type fixture struct {
	db *gorm.DB

	userRepo    userrepo.UserRepository
	messageRepo messagerepo.MessageRepository

	channels      *services.ChannelService
	messages      *services.MessageService
	reactions     *services.ReactionService
	reads         *services.ReadService
	conversations *services.ConversationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "huddle_test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Channel{},
		&domain.Membership{},
		&domain.Message{},
		&domain.ThreadLink{},
		&domain.Reaction{},
		&domain.ReadMarker{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_channels_active_name ON channels(name) WHERE deleted_at IS NULL",
	).Error; err != nil {
		t.Fatalf("failed to create name index: %v", err)
	}

	f := &fixture{db: db}
	f.userRepo = userrepo.NewGormUserRepository(db)
	channelRepo := channelrepo.NewChannelRepository(db)
	membershipRepo := membershiprepo.NewMembershipRepository(db)
	f.messageRepo = messagerepo.NewMessageRepository(db)
	threadLinkRepo := threadlinkrepo.NewThreadLinkRepository(db)
	reactionRepo := reactionrepo.NewReactionRepository(db)
	readMarkerRepo := readmarkerrepo.NewReadMarkerRepository(db)

	f.channels, err = services.NewChannelService(channelRepo, membershipRepo, f.userRepo, nil, nil)
	if err != nil {
		t.Fatalf("failed to build channel service: %v", err)
	}
	f.messages, err = services.NewMessageService(f.messageRepo, channelRepo, threadLinkRepo, nil, nil)
	if err != nil {
		t.Fatalf("failed to build message service: %v", err)
	}
	f.reactions, err = services.NewReactionService(reactionRepo, f.messageRepo, nil, nil)
	if err != nil {
		t.Fatalf("failed to build reaction service: %v", err)
	}
	f.reads, err = services.NewReadService(readMarkerRepo, f.messageRepo, nil, nil)
	if err != nil {
		t.Fatalf("failed to build read service: %v", err)
	}
	f.conversations, err = services.NewConversationService(membershipRepo, channelRepo, f.messageRepo, f.userRepo, nil)
	if err != nil {
		t.Fatalf("failed to build conversation service: %v", err)
	}
	return f
}

var userSeq int

// createUser inserts a user and returns its id.
func (f *fixture) createUser(t *testing.T, name string) uint {
	t.Helper()
	userSeq++
	u := &domain.User{
		Username:    fmt.Sprintf("%s%d", name, userSeq),
		DisplayName: name,
		Email:       fmt.Sprintf("%s%d@example.com", name, userSeq),
	}
	created, err := f.userRepo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("createUser(%s) failed: %v", name, err)
	}
	return created.ID
}

// createChannel makes a public channel owned by ownerID.
func (f *fixture) createChannel(t *testing.T, ownerID uint, name string) *domain.Channel {
	t.Helper()
	ch, err := f.channels.Create(context.Background(), ownerID, name, "", domain.ChannelPublic)
	if err != nil {
		t.Fatalf("createChannel(%s) failed: %v", name, err)
	}
	return ch
}

// post writes a top-level message.
func (f *fixture) post(t *testing.T, channelID, authorID uint, content string) *domain.Message {
	t.Helper()
	msg, err := f.messages.Create(context.Background(), channelID, authorID, content, nil, nil)
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	return msg
}
