// File: internal/services/read_service_test.go
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/huddlehq/huddle/internal/domain"
)

func TestUnreadCountLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	ch := f.createChannel(t, alice, "general")
	if _, err := f.channels.AddMember(ctx, ch.ID, bob, domain.RoleMember); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	f.post(t, ch.ID, bob, "hello alice")

	// No marker yet: everything from others is unread.
	count, err := f.reads.UnreadCount(ctx, alice, ch.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread before first markRead, got %d", count)
	}

	if _, err := f.reads.MarkRead(ctx, alice, ch.ID, nil); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	count, err = f.reads.UnreadCount(ctx, alice, ch.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread right after markRead, got %d", count)
	}

	// Another user's post bumps the count by one.
	time.Sleep(5 * time.Millisecond)
	f.post(t, ch.ID, bob, "still there?")
	count, err = f.reads.UnreadCount(ctx, alice, ch.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread after bob's post, got %d", count)
	}
}

func TestOwnMessagesNeverCountAsUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	ch := f.createChannel(t, alice, "notes")

	f.post(t, ch.ID, alice, "note to self")

	count, err := f.reads.UnreadCount(ctx, alice, ch.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("own messages counted as unread: %d", count)
	}
}

func TestMarkReadIsMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	ch := f.createChannel(t, alice, "general")

	marker, err := f.reads.MarkRead(ctx, alice, ch.ID, nil)
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	// Push the stored position into the future, then replay a mark.
	// The position must never move backwards.
	future := time.Now().UTC().Add(time.Hour)
	if err := f.db.Model(&domain.ReadMarker{}).
		Where("id = ?", marker.ID).
		Update("last_read_at", future).Error; err != nil {
		t.Fatalf("failed to advance marker: %v", err)
	}

	replayed, err := f.reads.MarkRead(ctx, alice, ch.ID, nil)
	if err != nil {
		t.Fatalf("replayed MarkRead failed: %v", err)
	}
	if replayed.LastReadAt.Before(future.Add(-time.Second)) {
		t.Fatalf("read position moved backwards: %v < %v", replayed.LastReadAt, future)
	}
}

func TestBatchUnreadCountsMatchesIndividual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	chans := make([]uint, 3)
	for i, name := range []string{"alpha", "beta", "gamma"} {
		ch := f.createChannel(t, bob, name)
		if _, err := f.channels.AddMember(ctx, ch.ID, alice, domain.RoleMember); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		chans[i] = ch.ID
		for j := 0; j <= i; j++ {
			f.post(t, ch.ID, bob, "ping")
		}
	}

	// Alice catches up on beta only.
	if _, err := f.reads.MarkRead(ctx, alice, chans[1], nil); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	batch, err := f.reads.BatchUnreadCounts(ctx, alice, chans)
	if err != nil {
		t.Fatalf("BatchUnreadCounts failed: %v", err)
	}
	for _, id := range chans {
		single, err := f.reads.UnreadCount(ctx, alice, id)
		if err != nil {
			t.Fatalf("UnreadCount(%d) failed: %v", id, err)
		}
		if batch[id] != single {
			t.Fatalf("batch/individual mismatch for channel %d: %d vs %d", id, batch[id], single)
		}
	}
	if batch[chans[0]] != 1 || batch[chans[1]] != 0 || batch[chans[2]] != 3 {
		t.Fatalf("unexpected unread spread: %+v", batch)
	}
}

func TestUnreadExcludesDeletedMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	ch := f.createChannel(t, alice, "general")
	if _, err := f.channels.AddMember(ctx, ch.ID, bob, domain.RoleMember); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	msg := f.post(t, ch.ID, bob, "oops")
	if _, err := f.messages.SoftDelete(ctx, msg.ID, bob); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	count, err := f.reads.UnreadCount(ctx, alice, ch.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("deleted message counted as unread: %d", count)
	}
}
