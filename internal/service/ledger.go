package service

import (
	"github.com/mmynk/splitperfect/internal/calculator"
	"github.com/mmynk/splitperfect/internal/models"
)

// participants returns the group roster as calculator participants.
func participants(g *models.Group) []calculator.ParticipantID {
	ids := make([]calculator.ParticipantID, len(g.Members))
	for i, m := range g.Members {
		ids[i] = calculator.ParticipantID(m.UserID)
	}
	return ids
}

func toRecord(e *models.Expense) calculator.ExpenseRecord {
	items := make([]calculator.LineItem, len(e.Items))
	for i, item := range e.Items {
		sharedBy := make([]calculator.ParticipantID, len(item.SharedBy))
		for j, id := range item.SharedBy {
			sharedBy[j] = calculator.ParticipantID(id)
		}
		items[i] = calculator.LineItem{
			Description: item.Description,
			Amount:      item.Amount,
			SharedBy:    sharedBy,
		}
	}
	return calculator.ExpenseRecord{
		ID:    e.ID,
		Payer: calculator.ParticipantID(e.PaidBy),
		Items: items,
	}
}

func toRecords(expenses []*models.Expense) []calculator.ExpenseRecord {
	records := make([]calculator.ExpenseRecord, len(expenses))
	for i, e := range expenses {
		records[i] = toRecord(e)
	}
	return records
}
