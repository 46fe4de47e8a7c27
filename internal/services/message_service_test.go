// File: internal/services/message_service_test.go
package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/services/core"
)

func TestCreateMessageContentBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	ch := f.createChannel(t, owner, "general")

	if _, err := f.messages.Create(ctx, ch.ID, owner, "", nil, nil); !core.IsType(err, core.ErrTypeInvalidArgument) {
		t.Fatalf("expected InvalidArgument for empty content, got %v", err)
	}

	atCap := strings.Repeat("a", domain.MaxMessageContentLength)
	if _, err := f.messages.Create(ctx, ch.ID, owner, atCap, nil, nil); err != nil {
		t.Fatalf("content at the cap should be accepted: %v", err)
	}

	overCap := strings.Repeat("a", domain.MaxMessageContentLength+1)
	if _, err := f.messages.Create(ctx, ch.ID, owner, overCap, nil, nil); !core.IsType(err, core.ErrTypeInvalidArgument) {
		t.Fatalf("expected InvalidArgument one character over the cap, got %v", err)
	}

	// The cap counts characters, so multibyte content gets the same
	// allowance even though it is twice as many bytes.
	multibyteAtCap := strings.Repeat("é", domain.MaxMessageContentLength)
	if _, err := f.messages.Create(ctx, ch.ID, owner, multibyteAtCap, nil, nil); err != nil {
		t.Fatalf("multibyte content at the cap should be accepted: %v", err)
	}
	multibyteOverCap := strings.Repeat("é", domain.MaxMessageContentLength+1)
	if _, err := f.messages.Create(ctx, ch.ID, owner, multibyteOverCap, nil, nil); !core.IsType(err, core.ErrTypeInvalidArgument) {
		t.Fatalf("expected InvalidArgument one character over the cap, got %v", err)
	}
}

func TestCreateMessageRequiresActiveChannel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	ch := f.createChannel(t, owner, "doomed")

	if err := f.channels.SoftDelete(ctx, ch.ID, owner); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if _, err := f.messages.Create(ctx, ch.ID, owner, "hello?", nil, nil); !core.IsType(err, core.ErrTypeNotFound) {
		t.Fatalf("expected NotFound posting into deleted channel, got %v", err)
	}
}

func TestThreadRepliesOrderedAndSingleLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	ch := f.createChannel(t, owner, "general")

	parent := f.post(t, ch.ID, owner, "thread root")

	first, err := f.messages.Create(ctx, ch.ID, owner, "first reply", &parent.ID, nil)
	if err != nil {
		t.Fatalf("first reply failed: %v", err)
	}
	second, err := f.messages.Create(ctx, ch.ID, owner, "second reply", &parent.ID, nil)
	if err != nil {
		t.Fatalf("second reply failed: %v", err)
	}

	replies, err := f.messages.GetThreadReplies(ctx, parent.ID)
	if err != nil {
		t.Fatalf("GetThreadReplies failed: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(replies))
	}
	if replies[0].ID != first.ID || replies[1].ID != second.ID {
		t.Fatalf("replies out of order: %d, %d", replies[0].ID, replies[1].ID)
	}

	// Threads stay flat: replying to a reply is rejected.
	if _, err := f.messages.Create(ctx, ch.ID, owner, "nested", &first.ID, nil); !core.IsType(err, core.ErrTypeNotFound) {
		t.Fatalf("expected NotFound for reply-to-reply, got %v", err)
	}

	counts, err := f.messages.ThreadReplyCounts(ctx, []uint{parent.ID})
	if err != nil {
		t.Fatalf("ThreadReplyCounts failed: %v", err)
	}
	if counts[parent.ID] != 2 {
		t.Fatalf("expected reply count 2, got %d", counts[parent.ID])
	}
}

func TestReplyParentMustBeVisibleAndSameChannel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	ch := f.createChannel(t, owner, "general")
	other := f.createChannel(t, owner, "random")

	parent := f.post(t, ch.ID, owner, "root")

	if _, err := f.messages.Create(ctx, other.ID, owner, "wrong channel", &parent.ID, nil); !core.IsType(err, core.ErrTypeInvalidArgument) {
		t.Fatalf("expected InvalidArgument for cross-channel reply, got %v", err)
	}

	if _, err := f.messages.SoftDelete(ctx, parent.ID, owner); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if _, err := f.messages.Create(ctx, ch.ID, owner, "late reply", &parent.ID, nil); !core.IsType(err, core.ErrTypeNotFound) {
		t.Fatalf("expected NotFound replying to deleted parent, got %v", err)
	}
}

func TestEditMessageAuthorGated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	intruder := f.createUser(t, "intruder")
	ch := f.createChannel(t, author, "general")

	msg := f.post(t, ch.ID, author, "original")

	if _, err := f.messages.Edit(ctx, msg.ID, intruder, "hijacked"); !core.IsType(err, core.ErrTypeUnauthorized) {
		t.Fatalf("expected Unauthorized for non-author edit, got %v", err)
	}

	edited, err := f.messages.Edit(ctx, msg.ID, author, "revised")
	if err != nil {
		t.Fatalf("author edit failed: %v", err)
	}
	if edited.Content != "revised" || !edited.IsEdited || edited.EditedAt == nil {
		t.Fatalf("edit flags not set: %+v", edited)
	}
}

func TestSoftDeleteMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	intruder := f.createUser(t, "intruder")
	ch := f.createChannel(t, author, "general")

	msg := f.post(t, ch.ID, author, "ephemeral")

	if _, err := f.messages.SoftDelete(ctx, msg.ID, intruder); !core.IsType(err, core.ErrTypeUnauthorized) {
		t.Fatalf("expected Unauthorized for non-author delete, got %v", err)
	}

	deleted, err := f.messages.SoftDelete(ctx, msg.ID, author)
	if err != nil || !deleted {
		t.Fatalf("SoftDelete: deleted=%v err=%v", deleted, err)
	}

	// Repeated deletes are a no-op, not an error.
	deleted, err = f.messages.SoftDelete(ctx, msg.ID, author)
	if err != nil {
		t.Fatalf("second SoftDelete errored: %v", err)
	}
	if deleted {
		t.Fatalf("second SoftDelete should report false")
	}

	listed, err := f.messages.ListChannelMessages(ctx, ch.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListChannelMessages failed: %v", err)
	}
	for _, m := range listed {
		if m.ID == msg.ID {
			t.Fatalf("deleted message still listed")
		}
	}
}

func TestListChannelMessagesNewestFirstWithPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	ch := f.createChannel(t, author, "general")

	var ids []uint
	for i := 0; i < 5; i++ {
		ids = append(ids, f.post(t, ch.ID, author, "message").ID)
	}

	page, err := f.messages.ListChannelMessages(ctx, ch.ID, 2, 0)
	if err != nil {
		t.Fatalf("ListChannelMessages failed: %v", err)
	}
	if len(page) != 2 || page[0].ID != ids[4] || page[1].ID != ids[3] {
		t.Fatalf("expected newest two messages, got %+v", page)
	}

	next, err := f.messages.ListChannelMessages(ctx, ch.ID, 2, page[1].ID)
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(next) != 2 || next[0].ID != ids[2] || next[1].ID != ids[1] {
		t.Fatalf("unexpected second page: %+v", next)
	}
}

func TestToggleBookmark(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	reader := f.createUser(t, "reader")
	ch := f.createChannel(t, author, "general")

	msg := f.post(t, ch.ID, author, "worth keeping")

	state, err := f.messages.ToggleBookmark(ctx, msg.ID, reader)
	if err != nil || !state {
		t.Fatalf("first toggle: state=%v err=%v", state, err)
	}
	state, err = f.messages.ToggleBookmark(ctx, msg.ID, reader)
	if err != nil || state {
		t.Fatalf("second toggle should clear: state=%v err=%v", state, err)
	}
}

func TestSetPinned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	ch := f.createChannel(t, author, "general")

	msg := f.post(t, ch.ID, author, "announcement")

	changed, err := f.messages.SetPinned(ctx, msg.ID, author, true)
	if err != nil || !changed {
		t.Fatalf("pin: changed=%v err=%v", changed, err)
	}
	// Pinning an already-pinned message reports no change.
	changed, err = f.messages.SetPinned(ctx, msg.ID, author, true)
	if err != nil {
		t.Fatalf("re-pin errored: %v", err)
	}
	if changed {
		t.Fatalf("re-pin should report false")
	}

	pinned, err := f.messages.Get(ctx, msg.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !pinned.IsPinned {
		t.Fatalf("message should be pinned")
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	ch := f.createChannel(t, author, "general")

	hit := f.post(t, ch.ID, author, "Deploy window opens Friday")
	f.post(t, ch.ID, author, "lunch plans?")

	results, err := f.messages.Search(ctx, ch.ID, "deploy", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != hit.ID {
		t.Fatalf("expected a single hit for %d, got %+v", hit.ID, results)
	}

	// Case folds on both sides: an uppercase term still matches.
	results, err = f.messages.Search(ctx, ch.ID, "DEPLOY", 10)
	if err != nil {
		t.Fatalf("uppercase Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != hit.ID {
		t.Fatalf("expected uppercase term to match %d, got %+v", hit.ID, results)
	}

	if _, err := f.messages.Search(ctx, ch.ID, "  ", 10); !core.IsType(err, core.ErrTypeInvalidArgument) {
		t.Fatalf("expected InvalidArgument for blank search term, got %v", err)
	}
}
