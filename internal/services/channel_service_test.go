// File: internal/services/channel_service_test.go
package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/services/core"
)

func TestCreateChannelRegistersOwnerAsSoleAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")

	ch, err := f.channels.Create(ctx, owner, "Engineering Team", "all things eng", domain.ChannelPublic)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ch.Name != "engineering-team" {
		t.Fatalf("expected normalized name engineering-team, got %q", ch.Name)
	}

	members, err := f.channels.ListMembers(ctx, ch.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected exactly one member, got %d", len(members))
	}
	if members[0].UserID != owner || members[0].Role != domain.RoleAdmin {
		t.Fatalf("expected owner as admin, got %+v", members[0])
	}

	admin, err := f.channels.IsAdmin(ctx, ch.ID, owner)
	if err != nil || !admin {
		t.Fatalf("expected owner to be admin, got admin=%v err=%v", admin, err)
	}
}

func TestCreateChannelDuplicateNameConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")

	f.createChannel(t, owner, "general")

	_, err := f.channels.Create(ctx, owner, "General", "", domain.ChannelPublic)
	if !core.IsType(err, core.ErrTypeConflict) {
		t.Fatalf("expected Conflict for duplicate name, got %v", err)
	}
}

func TestChannelNameReusableAfterSoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")

	first := f.createChannel(t, owner, "ops")
	if err := f.channels.SoftDelete(ctx, first.ID, owner); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	second, err := f.channels.Create(ctx, owner, "ops", "", domain.ChannelPublic)
	if err != nil {
		t.Fatalf("expected name reuse after soft delete, got %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected a fresh channel row")
	}

	// The deleted channel stays addressable but reads as not found.
	_, err = f.channels.Get(ctx, first.ID)
	if !core.IsType(err, core.ErrTypeNotFound) {
		t.Fatalf("expected NotFound for deleted channel, got %v", err)
	}
}

func TestCreateChannelRejectsDirectVisibility(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner")

	_, err := f.channels.Create(context.Background(), owner, "sneaky-dm", "", domain.ChannelDirect)
	if !core.IsType(err, core.ErrTypeInvalidArgument) {
		t.Fatalf("expected InvalidArgument for direct visibility, got %v", err)
	}
}

func TestCreateChannelRejectsReservedDirectName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	mallory := f.createUser(t, "mallory")

	// The derived direct name cannot be squatted as an ordinary channel.
	_, err := f.channels.Create(ctx, mallory, domain.DirectChannelName(alice, bob), "", domain.ChannelPublic)
	if !core.IsType(err, core.ErrTypeInvalidArgument) {
		t.Fatalf("expected InvalidArgument for reserved dm-- name, got %v", err)
	}

	// The pair still converges on a real direct channel of their own.
	dm, err := f.channels.GetOrCreateDirectChannel(ctx, alice, bob)
	if err != nil {
		t.Fatalf("GetOrCreateDirectChannel failed: %v", err)
	}
	if dm.Visibility != domain.ChannelDirect {
		t.Fatalf("expected direct visibility, got %q", dm.Visibility)
	}
	if member, err := f.channels.IsMember(ctx, dm.ID, mallory); err != nil || member {
		t.Fatalf("outsider must not belong to the direct channel: member=%v err=%v", member, err)
	}
}

func TestGetOrCreateDirectChannelIsDeterministic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	ab, err := f.channels.GetOrCreateDirectChannel(ctx, alice, bob)
	if err != nil {
		t.Fatalf("GetOrCreateDirectChannel(a,b) failed: %v", err)
	}
	ba, err := f.channels.GetOrCreateDirectChannel(ctx, bob, alice)
	if err != nil {
		t.Fatalf("GetOrCreateDirectChannel(b,a) failed: %v", err)
	}
	if ab.ID != ba.ID {
		t.Fatalf("expected both orders to converge: %d vs %d", ab.ID, ba.ID)
	}
	if ab.Visibility != domain.ChannelDirect {
		t.Fatalf("expected direct visibility, got %q", ab.Visibility)
	}

	for _, id := range []uint{alice, bob} {
		member, err := f.channels.IsMember(ctx, ab.ID, id)
		if err != nil || !member {
			t.Fatalf("expected user %d to be a member, got member=%v err=%v", id, member, err)
		}
	}
}

func TestGetOrCreateDirectChannelConcurrentConvergence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	var wg sync.WaitGroup
	results := make([]*domain.Channel, 2)
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = f.channels.GetOrCreateDirectChannel(ctx, alice, bob)
	}()
	go func() {
		defer wg.Done()
		results[1], errs[1] = f.channels.GetOrCreateDirectChannel(ctx, bob, alice)
	}()
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent call %d failed: %v", i, err)
		}
	}
	if results[0].ID != results[1].ID {
		t.Fatalf("concurrent callers produced two channels: %d and %d", results[0].ID, results[1].ID)
	}
}

func TestGetOrCreateDirectChannelRejectsSelf(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice")

	_, err := f.channels.GetOrCreateDirectChannel(context.Background(), alice, alice)
	if !core.IsType(err, core.ErrTypeInvalidArgument) {
		t.Fatalf("expected InvalidArgument for self DM, got %v", err)
	}
}

func TestAddMemberIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	joiner := f.createUser(t, "joiner")
	ch := f.createChannel(t, owner, "random")

	added, err := f.channels.AddMember(ctx, ch.ID, joiner, domain.RoleMember)
	if err != nil || !added {
		t.Fatalf("first AddMember: added=%v err=%v", added, err)
	}
	added, err = f.channels.AddMember(ctx, ch.ID, joiner, domain.RoleMember)
	if err != nil {
		t.Fatalf("second AddMember errored: %v", err)
	}
	if added {
		t.Fatalf("second AddMember should report false, not true")
	}

	members, err := f.channels.ListMembers(ctx, ch.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 membership rows, got %d", len(members))
	}
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	joiner := f.createUser(t, "joiner")
	ch := f.createChannel(t, owner, "random")

	if _, err := f.channels.AddMember(ctx, ch.ID, joiner, domain.RoleMember); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	removed, err := f.channels.RemoveMember(ctx, ch.ID, joiner)
	if err != nil || !removed {
		t.Fatalf("RemoveMember: removed=%v err=%v", removed, err)
	}
	removed, err = f.channels.RemoveMember(ctx, ch.ID, joiner)
	if err != nil {
		t.Fatalf("second RemoveMember errored: %v", err)
	}
	if removed {
		t.Fatalf("removing a non-member should report false")
	}
}

func TestListForUserAndListPublic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	other := f.createUser(t, "other")

	public := f.createChannel(t, owner, "town-square")
	private, err := f.channels.Create(ctx, owner, "leads", "", domain.ChannelPrivate)
	if err != nil {
		t.Fatalf("Create private failed: %v", err)
	}

	mine, err := f.channels.ListForUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected owner in 2 channels, got %d", len(mine))
	}

	theirs, err := f.channels.ListForUser(ctx, other)
	if err != nil {
		t.Fatalf("ListForUser(other) failed: %v", err)
	}
	if len(theirs) != 0 {
		t.Fatalf("expected other user in 0 channels, got %d", len(theirs))
	}

	discoverable, err := f.channels.ListPublic(ctx, 100)
	if err != nil {
		t.Fatalf("ListPublic failed: %v", err)
	}
	if len(discoverable) != 1 || discoverable[0].ID != public.ID {
		t.Fatalf("expected only %d in public listing, got %+v", public.ID, discoverable)
	}
	_ = private
}

func TestListForUserOrdersByActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")

	older := f.createChannel(t, owner, "alpha")
	time.Sleep(5 * time.Millisecond)
	newer := f.createChannel(t, owner, "beta")

	// Posting into the older channel makes it the most recently active.
	time.Sleep(5 * time.Millisecond)
	f.post(t, older.ID, owner, "bump")

	mine, err := f.channels.ListForUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(mine))
	}
	if mine[0].ID != older.ID || mine[1].ID != newer.ID {
		t.Fatalf("expected activity ordering [%d %d], got [%d %d]", older.ID, newer.ID, mine[0].ID, mine[1].ID)
	}
}
