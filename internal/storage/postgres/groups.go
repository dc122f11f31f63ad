package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/splitperfect/internal/models"
	"github.com/mmynk/splitperfect/internal/storage"
)

// CreateGroup persists a new group and its initial members.
func (s *PostgresStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.JoinCode == "" {
		code, err := models.NewJoinCode()
		if err != nil {
			return err
		}
		group.JoinCode = code
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		"INSERT INTO groups (id, name, join_code, created_by, created_at) VALUES ($1, $2, $3, $4, $5)",
		group.ID, group.Name, group.JoinCode, group.CreatedBy, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i := range group.Members {
		m := &group.Members[i]
		if m.JoinedAt == 0 {
			m.JoinedAt = group.CreatedAt
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)",
			group.ID, m.UserID, m.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *PostgresStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return getGroup(ctx, s.pool, "id", groupID)
}

// GetGroupByJoinCode retrieves a group by its join code.
func (s *PostgresStore) GetGroupByJoinCode(ctx context.Context, code string) (*models.Group, error) {
	return getGroup(ctx, s.pool, "join_code", code)
}

func getGroup(ctx context.Context, q querier, column, value string) (*models.Group, error) {
	group := &models.Group{}
	err := q.QueryRow(ctx,
		"SELECT id, name, join_code, created_by, created_at FROM groups WHERE "+column+" = $1",
		value,
	).Scan(&group.ID, &group.Name, &group.JoinCode, &group.CreatedBy, &group.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", value, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	rows, err := q.Query(ctx,
		`SELECT m.user_id, COALESCE(u.display_name, ''), m.joined_at
		 FROM group_members m LEFT JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = $1 ORDER BY m.joined_at, m.user_id`,
		group.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		group.Members = append(group.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return group, nil
}

// ListGroupsByMember retrieves all groups a user belongs to, newest first.
func (s *PostgresStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT g.id FROM groups g JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = $1 ORDER BY g.created_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	groupIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(groupIDs))
	for _, id := range groupIDs {
		group, err := getGroup(ctx, s.pool, "id", id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// AddGroupMember adds a user to an existing group.
func (s *PostgresStore) AddGroupMember(ctx context.Context, groupID, userID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists int
	err = tx.QueryRow(ctx, "SELECT 1 FROM groups WHERE id = $1 FOR UPDATE", groupID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}

	ct, err := tx.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return storage.ErrAlreadyMember
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteGroup removes a group. Memberships and expenses cascade.
func (s *PostgresStore) DeleteGroup(ctx context.Context, groupID string) error {
	ct, err := s.pool.Exec(ctx, "DELETE FROM groups WHERE id = $1", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}
