// File: internal/services/conversation_service_test.go
package services_test

import (
	"context"
	"testing"
	"time"
)

func TestListDirectConversations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")

	abChannel, err := f.channels.GetOrCreateDirectChannel(ctx, alice, bob)
	if err != nil {
		t.Fatalf("GetOrCreateDirectChannel(a,b) failed: %v", err)
	}
	acChannel, err := f.channels.GetOrCreateDirectChannel(ctx, alice, carol)
	if err != nil {
		t.Fatalf("GetOrCreateDirectChannel(a,c) failed: %v", err)
	}

	// Bob's DM has traffic; Carol's stays empty.
	f.post(t, abChannel.ID, bob, "hey alice")
	time.Sleep(5 * time.Millisecond)
	last := f.post(t, abChannel.ID, bob, "you around?")

	rows, err := f.conversations.ListDirectConversations(ctx, alice)
	if err != nil {
		t.Fatalf("ListDirectConversations failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(rows))
	}

	// The conversation with messages sorts first.
	if rows[0].ChannelID != abChannel.ID {
		t.Fatalf("expected active conversation first, got channel %d", rows[0].ChannelID)
	}
	if rows[0].CounterpartID != bob {
		t.Fatalf("expected counterpart bob, got %d", rows[0].CounterpartID)
	}
	if rows[0].LastMessage == nil || rows[0].LastMessage.ID != last.ID {
		t.Fatalf("expected last message %d, got %+v", last.ID, rows[0].LastMessage)
	}
	if rows[0].UnreadCount != 2 {
		t.Fatalf("expected 2 unread from bob, got %d", rows[0].UnreadCount)
	}

	// The empty conversation falls back to channel creation time.
	if rows[1].ChannelID != acChannel.ID {
		t.Fatalf("expected carol's conversation second, got channel %d", rows[1].ChannelID)
	}
	if rows[1].LastMessage != nil {
		t.Fatalf("expected no last message, got %+v", rows[1].LastMessage)
	}
	if !rows[1].LastActivityAt.Equal(acChannel.CreatedAt) {
		t.Fatalf("expected fallback to channel creation time")
	}
}

func TestListDirectConversationsSkipsUnresolvableCounterpart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	ghost := f.createUser(t, "ghost")

	if _, err := f.channels.GetOrCreateDirectChannel(ctx, alice, bob); err != nil {
		t.Fatalf("GetOrCreateDirectChannel(a,b) failed: %v", err)
	}
	if _, err := f.channels.GetOrCreateDirectChannel(ctx, alice, ghost); err != nil {
		t.Fatalf("GetOrCreateDirectChannel(a,ghost) failed: %v", err)
	}

	// The ghost account disappears; its row is excluded, not an error.
	if err := f.userRepo.Delete(ctx, ghost); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	rows, err := f.conversations.ListDirectConversations(ctx, alice)
	if err != nil {
		t.Fatalf("ListDirectConversations failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected the ghost conversation to be excluded, got %d rows", len(rows))
	}
	if rows[0].CounterpartID != bob {
		t.Fatalf("expected bob's conversation to survive, got %+v", rows[0])
	}
}

func TestListDirectConversationsIgnoresDeletedLastMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	ch, err := f.channels.GetOrCreateDirectChannel(ctx, alice, bob)
	if err != nil {
		t.Fatalf("GetOrCreateDirectChannel failed: %v", err)
	}

	kept := f.post(t, ch.ID, bob, "keep this")
	time.Sleep(5 * time.Millisecond)
	retracted := f.post(t, ch.ID, bob, "retract this")
	if _, err := f.messages.SoftDelete(ctx, retracted.ID, bob); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	rows, err := f.conversations.ListDirectConversations(ctx, alice)
	if err != nil {
		t.Fatalf("ListDirectConversations failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(rows))
	}
	if rows[0].LastMessage == nil || rows[0].LastMessage.ID != kept.ID {
		t.Fatalf("expected preview to fall back to %d, got %+v", kept.ID, rows[0].LastMessage)
	}
	if rows[0].UnreadCount != 1 {
		t.Fatalf("expected 1 unread after retraction, got %d", rows[0].UnreadCount)
	}
}
