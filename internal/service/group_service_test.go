package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitperfect/internal/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	alice, aliceID := env.user(t, "alice")

	resp, err := alice.group.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name: "Roommates",
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	g := resp.Msg.Group
	if g.ID == "" || g.JoinCode == "" {
		t.Errorf("expected ID and join code, got %+v", g)
	}
	if g.Name != "Roommates" {
		t.Errorf("name: expected 'Roommates', got '%s'", g.Name)
	}
	if g.CreatedBy != aliceID {
		t.Errorf("created_by: expected %s, got %s", aliceID, g.CreatedBy)
	}
	if len(g.Members) != 1 || g.Members[0].UserID != aliceID || g.Members[0].DisplayName != "alice" {
		t.Errorf("expected alice as sole member, got %+v", g.Members)
	}
}

func TestCreateGroup_BlankName(t *testing.T) {
	env := setupTestServer(t)
	alice, _ := env.user(t, "alice")

	_, err := alice.group.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{Name: "   "}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestJoinGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice, _ := env.user(t, "alice")
	bob, bobID := env.user(t, "bob")

	created, err := alice.group.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Ski Trip"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	joined, err := bob.group.JoinGroup(ctx, connect.NewRequest(&api.JoinGroupRequest{JoinCode: created.Msg.Group.JoinCode}))
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if len(joined.Msg.Group.Members) != 2 {
		t.Fatalf("members: expected 2, got %d", len(joined.Msg.Group.Members))
	}
	var found bool
	for _, m := range joined.Msg.Group.Members {
		found = found || m.UserID == bobID
	}
	if !found {
		t.Errorf("expected bob among members, got %+v", joined.Msg.Group.Members)
	}

	t.Run("twice", func(t *testing.T) {
		_, err := bob.group.JoinGroup(ctx, connect.NewRequest(&api.JoinGroupRequest{JoinCode: created.Msg.Group.JoinCode}))
		assertCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("bad code", func(t *testing.T) {
		_, err := bob.group.JoinGroup(ctx, connect.NewRequest(&api.JoinGroupRequest{JoinCode: "nope"}))
		assertCode(t, err, connect.CodeNotFound)
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := bob.group.JoinGroup(ctx, connect.NewRequest(&api.JoinGroupRequest{}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("listed with member count", func(t *testing.T) {
		list, err := bob.group.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(list.Msg.Groups) != 1 {
			t.Fatalf("expected 1 group, got %d", len(list.Msg.Groups))
		}
		if list.Msg.Groups[0].MemberCount != 2 {
			t.Errorf("member count: expected 2, got %d", list.Msg.Groups[0].MemberCount)
		}
	})
}

func TestListGroups_Empty(t *testing.T) {
	env := setupTestServer(t)
	alice, _ := env.user(t, "alice")

	resp, err := alice.group.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 0 {
		t.Errorf("expected 0 groups, got %d", len(resp.Msg.Groups))
	}
}

func TestGetGroup_Access(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice, _ := env.user(t, "alice")
	mallory, _ := env.user(t, "mallory")

	created, err := alice.group.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Work Lunch"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := created.Msg.Group.ID

	got, err := alice.group.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Msg.Group.Name != "Work Lunch" {
		t.Errorf("name: expected 'Work Lunch', got '%s'", got.Msg.Group.Name)
	}

	_, err = mallory.group.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = alice.group.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "nonexistent-id"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice, _ := env.user(t, "alice")
	bob, _ := env.user(t, "bob")

	created, err := alice.group.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Temp"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := created.Msg.Group.ID
	if _, err := bob.group.JoinGroup(ctx, connect.NewRequest(&api.JoinGroupRequest{JoinCode: created.Msg.Group.JoinCode})); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}

	_, err = bob.group.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: groupID}))
	assertCode(t, err, connect.CodePermissionDenied)

	if _, err := alice.group.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: groupID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = alice.group.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	assertCode(t, err, connect.CodeNotFound)
}
