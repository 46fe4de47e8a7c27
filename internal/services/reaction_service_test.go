// File: internal/services/reaction_service_test.go
package services_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/services/core"
)

func TestAddOrReplaceKeepsOneReactionPerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	reactor := f.createUser(t, "reactor")
	ch := f.createChannel(t, author, "general")
	msg := f.post(t, ch.ID, author, "react to me")

	if err := f.reactions.AddOrReplace(ctx, msg.ID, reactor, "👍"); err != nil {
		t.Fatalf("first reaction failed: %v", err)
	}
	if err := f.reactions.AddOrReplace(ctx, msg.ID, reactor, "🎉"); err != nil {
		t.Fatalf("replacement reaction failed: %v", err)
	}

	rollups, err := f.reactions.Rollup(ctx, msg.ID)
	if err != nil {
		t.Fatalf("Rollup failed: %v", err)
	}
	if len(rollups) != 1 {
		t.Fatalf("expected one rollup group after replacement, got %+v", rollups)
	}
	if rollups[0].Emoji != "🎉" || rollups[0].Count != 1 {
		t.Fatalf("expected latest emoji to win, got %+v", rollups[0])
	}
}

func TestRollupSortedByCountThenEmoji(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	ch := f.createChannel(t, author, "general")
	msg := f.post(t, ch.ID, author, "popular message")

	u1 := f.createUser(t, "u")
	u2 := f.createUser(t, "u")
	u3 := f.createUser(t, "u")

	// Two 👍, then a 🎉 and a ❤️ tied at one each.
	for _, id := range []uint{u1, u2} {
		if err := f.reactions.AddOrReplace(ctx, msg.ID, id, "👍"); err != nil {
			t.Fatalf("thumbs up failed: %v", err)
		}
	}
	if err := f.reactions.AddOrReplace(ctx, msg.ID, u3, "🎉"); err != nil {
		t.Fatalf("party failed: %v", err)
	}
	if err := f.reactions.AddOrReplace(ctx, msg.ID, author, "❤️"); err != nil {
		t.Fatalf("heart failed: %v", err)
	}

	rollups, err := f.reactions.Rollup(ctx, msg.ID)
	if err != nil {
		t.Fatalf("Rollup failed: %v", err)
	}
	if len(rollups) != 3 {
		t.Fatalf("expected 3 groups, got %+v", rollups)
	}
	if rollups[0].Emoji != "👍" || rollups[0].Count != 2 {
		t.Fatalf("expected 👍 x2 first, got %+v", rollups[0])
	}
	if !reflect.DeepEqual(rollups[0].Users, []uint{u1, u2}) {
		t.Fatalf("expected users in reaction order, got %v", rollups[0].Users)
	}
	// The two singles are ordered by emoji, not insertion.
	if !(rollups[1].Emoji < rollups[2].Emoji) {
		t.Fatalf("tie not broken by emoji order: %q then %q", rollups[1].Emoji, rollups[2].Emoji)
	}
}

func TestBulkRollupMatchesIndividualRollups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	reactor := f.createUser(t, "reactor")
	ch := f.createChannel(t, author, "general")

	m1 := f.post(t, ch.ID, author, "first")
	m2 := f.post(t, ch.ID, author, "second")
	m3 := f.post(t, ch.ID, author, "silent")

	if err := f.reactions.AddOrReplace(ctx, m1.ID, reactor, "👍"); err != nil {
		t.Fatalf("reaction failed: %v", err)
	}
	if err := f.reactions.AddOrReplace(ctx, m1.ID, author, "👍"); err != nil {
		t.Fatalf("reaction failed: %v", err)
	}
	if err := f.reactions.AddOrReplace(ctx, m2.ID, reactor, "🚀"); err != nil {
		t.Fatalf("reaction failed: %v", err)
	}

	bulk, err := f.reactions.BulkRollup(ctx, []uint{m1.ID, m2.ID, m3.ID})
	if err != nil {
		t.Fatalf("BulkRollup failed: %v", err)
	}
	if len(bulk) != 3 {
		t.Fatalf("expected an entry per requested message, got %d", len(bulk))
	}
	if len(bulk[m3.ID]) != 0 {
		t.Fatalf("message with no reactions should roll up empty, got %+v", bulk[m3.ID])
	}

	for _, id := range []uint{m1.ID, m2.ID} {
		single, err := f.reactions.Rollup(ctx, id)
		if err != nil {
			t.Fatalf("Rollup(%d) failed: %v", id, err)
		}
		if !reflect.DeepEqual(single, bulk[id]) {
			t.Fatalf("bulk and individual rollups diverge for %d: %+v vs %+v", id, bulk[id], single)
		}
	}
}

func TestRemoveReaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	reactor := f.createUser(t, "reactor")
	ch := f.createChannel(t, author, "general")
	msg := f.post(t, ch.ID, author, "fleeting")

	removed, err := f.reactions.Remove(ctx, msg.ID, reactor)
	if err != nil {
		t.Fatalf("Remove with nothing to remove errored: %v", err)
	}
	if removed {
		t.Fatalf("expected false when no reaction existed")
	}

	if err := f.reactions.AddOrReplace(ctx, msg.ID, reactor, "👍"); err != nil {
		t.Fatalf("AddOrReplace failed: %v", err)
	}
	removed, err = f.reactions.Remove(ctx, msg.ID, reactor)
	if err != nil || !removed {
		t.Fatalf("Remove: removed=%v err=%v", removed, err)
	}
}

func TestReactionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	ch := f.createChannel(t, author, "general")
	msg := f.post(t, ch.ID, author, "target")

	if err := f.reactions.AddOrReplace(ctx, msg.ID, author, "  "); !core.IsType(err, core.ErrTypeInvalidArgument) {
		t.Fatalf("expected InvalidArgument for blank emoji, got %v", err)
	}

	if _, err := f.messages.SoftDelete(ctx, msg.ID, author); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if err := f.reactions.AddOrReplace(ctx, msg.ID, author, "👍"); !core.IsType(err, core.ErrTypeNotFound) {
		t.Fatalf("expected NotFound reacting to deleted message, got %v", err)
	}
}

func TestGeneralThumbsUpScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	ch, err := f.channels.Create(ctx, owner, "general", "company wide", domain.ChannelPublic)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	msg := f.post(t, ch.ID, owner, "welcome to general!")
	members := []uint{f.createUser(t, "m"), f.createUser(t, "m"), f.createUser(t, "m")}
	for _, id := range members {
		if _, err := f.channels.AddMember(ctx, ch.ID, id, domain.RoleMember); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if err := f.reactions.AddOrReplace(ctx, msg.ID, id, "👍"); err != nil {
			t.Fatalf("AddOrReplace failed: %v", err)
		}
	}

	rollups, err := f.reactions.Rollup(ctx, msg.ID)
	if err != nil {
		t.Fatalf("Rollup failed: %v", err)
	}
	if len(rollups) != 1 || rollups[0].Emoji != "👍" || rollups[0].Count != 3 {
		t.Fatalf("expected 👍 x3, got %+v", rollups)
	}
	if !reflect.DeepEqual(rollups[0].Users, members) {
		t.Fatalf("expected users in reaction order %v, got %v", members, rollups[0].Users)
	}
}
