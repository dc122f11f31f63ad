package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitperfect/internal/api"
	"github.com/mmynk/splitperfect/internal/models"
	"github.com/mmynk/splitperfect/internal/storage"
)

var _ api.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	slog.Info("CreateGroup request received", "name", name, "user_id", userID)

	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupName)
	}

	group := &models.Group{
		Name:      name,
		CreatedBy: userID,
		Members:   []models.Member{{UserID: userID}},
	}

	// Generates ID, join code and CreatedAt
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, storeError(err)
	}

	// Re-read for member display names
	created, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to fetch created group", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(created)}), nil
}

// JoinGroup adds the caller to the group with the given join code.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.Msg.JoinCode)
	if code == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errJoinCode)
	}

	group, err := s.store.GetGroupByJoinCode(ctx, code)
	if err != nil {
		// Never echo the code back
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, errors.New("no group with that join code"))
		}
		slog.Error("JoinGroup lookup failed", "error", err)
		return nil, storeError(err)
	}

	if err := s.store.AddGroupMember(ctx, group.ID, userID); err != nil {
		if !errors.Is(err, storage.ErrAlreadyMember) {
			slog.Error("JoinGroup failed", "group_id", group.ID, "user_id", userID, "error", err)
		}
		return nil, storeError(err)
	}

	joined, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError(err)
	}

	slog.Info("User joined group", "group_id", group.ID, "user_id", userID)
	return connect.NewResponse(&api.JoinGroupResponse{Group: toAPIGroup(joined)}), nil
}

// ListGroups retrieves all groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	infos := make([]*api.GroupInfo, len(groups))
	for i, g := range groups {
		infos[i] = &api.GroupInfo{
			ID:          g.ID,
			Name:        g.Name,
			MemberCount: len(g.Members),
			CreatedAt:   g.CreatedAt,
		}
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: infos}), nil
}

// GetGroup retrieves a group by ID. Only members may see it.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup removes a group with all of its expenses. Only the creator may do so.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID, "user_id", userID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotCreator)
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// memberGroup loads a group and checks that userID belongs to it.
func memberGroup(ctx context.Context, store storage.Store, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupID)
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("Failed to load group", "group_id", groupID, "error", err)
		}
		return nil, storeError(err)
	}
	if !group.HasMember(userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return group, nil
}
