package models

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// joinCodeBytes is the amount of randomness in a join code.
const joinCodeBytes = 16

// Group is a set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// JoinCode is the secret other users enter to join the group.
	JoinCode string

	// CreatedBy is the user ID of the creator. Only the creator may delete the group.
	CreatedBy string

	// Members is the current roster, ordered by join time.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is one user's membership in a group.
type Member struct {
	UserID      string
	DisplayName string
	JoinedAt    int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the user IDs of all members.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// NewJoinCode returns a random base58 join code.
func NewJoinCode() (string, error) {
	buf := make([]byte, joinCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate join code: %w", err)
	}
	return base58.Encode(buf), nil
}
