package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Ledger mutation operations carried on ExpenseChangedMessage.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ExpenseChangedMessage announces a ledger mutation. It carries only ids;
// consumers re-query the store for current state, aggregates are never cached
// in flight.
type ExpenseChangedMessage struct {
	MessageID string    `json:"message_id"`
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// BudgetAlertMessage announces that a month's total crossed the user's budget
// threshold.
type BudgetAlertMessage struct {
	MessageID   string    `json:"message_id"`
	UserID      int64     `json:"user_id"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	TotalCents  int64     `json:"total_cents"`
	BudgetCents int64     `json:"budget_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewExpenseChangedMessage(expenseID, userID int64, op string) *ExpenseChangedMessage {
	return &ExpenseChangedMessage{
		MessageID: uuid.NewString(),
		ExpenseID: expenseID,
		UserID:    userID,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func NewBudgetAlertMessage(userID int64, year, month int, totalCents, budgetCents int64) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		MessageID:   uuid.NewString(),
		UserID:      userID,
		Year:        year,
		Month:       month,
		TotalCents:  totalCents,
		BudgetCents: budgetCents,
		Timestamp:   time.Now(),
	}
}

func (m *ExpenseChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseChangedMessageFromJSON(data []byte) (*ExpenseChangedMessage, error) {
	var msg ExpenseChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
