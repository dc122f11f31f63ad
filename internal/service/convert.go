package service

import (
	"github.com/mmynk/splitperfect/internal/api"
	"github.com/mmynk/splitperfect/internal/calculator"
	"github.com/mmynk/splitperfect/internal/models"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	members := make([]*api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = &api.Member{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			JoinedAt:    m.JoinedAt,
		}
	}
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		JoinCode:  g.JoinCode,
		CreatedBy: g.CreatedBy,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense, names map[string]string) *api.Expense {
	items := make([]*api.Item, len(e.Items))
	for i, item := range e.Items {
		items[i] = &api.Item{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
			SharedBy:    item.SharedBy,
		}
	}
	return &api.Expense{
		ID:         e.ID,
		GroupID:    e.GroupID,
		PaidBy:     e.PaidBy,
		PaidByName: names[e.PaidBy],
		Title:      e.Title,
		Items:      items,
		Total:      e.Total(),
		CreatedAt:  e.CreatedAt,
	}
}

func toAPIShares(splits []calculator.PersonSplit, names map[string]string) []*api.PersonShare {
	shares := make([]*api.PersonShare, len(splits))
	for i, ps := range splits {
		items := make([]*api.PersonItem, len(ps.Items))
		for j, pi := range ps.Items {
			items[j] = &api.PersonItem{Description: pi.Description, Amount: pi.Amount}
		}
		shares[i] = &api.PersonShare{
			UserID:      string(ps.Participant),
			DisplayName: names[string(ps.Participant)],
			Total:       ps.Total,
			Items:       items,
		}
	}
	return shares
}

// displayNames maps member IDs to display names.
func displayNames(g *models.Group) map[string]string {
	names := make(map[string]string, len(g.Members))
	for _, m := range g.Members {
		names[m.UserID] = m.DisplayName
	}
	return names
}
