package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tracker/internal/amqp"
	"tracker/internal/core"
	"tracker/internal/storage"
)

// ExpenseService owns the ledger and the monthly aggregation reads. Every
// mutation publishes a change event when a broker is configured; aggregates
// are recomputed from the store on every read, never cached.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{storage: storage, amqpClient: amqpClient}
}

// Add validates and appends a ledger record. Amount must parse as a
// non-negative decimal, date as an ISO calendar date; a blank category falls
// back to core.FallbackCategory. After the insert the expense's own month is
// re-evaluated against the user's budget and an alert event is published when
// exceeded.
func (s *ExpenseService) Add(ctx context.Context, userID int64, amount, category, description, date string) (int64, error) {
	e, err := s.buildExpense(userID, amount, category, description, date)
	if err != nil {
		return 0, err
	}

	id, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("add expense: %w", err)
	}

	s.publishChange(ctx, id, userID, amqp.OpAdd)
	s.checkBudget(ctx, userID, e.Date.Year(), int(e.Date.Month()))

	return id, nil
}

// Update replaces every field of an existing record. The record must belong
// to the calling user; core.ErrNotFound otherwise.
func (s *ExpenseService) Update(ctx context.Context, id, userID int64, amount, category, description, date string) error {
	e, err := s.buildExpense(userID, amount, category, description, date)
	if err != nil {
		return err
	}
	e.ID = id

	if err := s.storage.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense %d: %w", id, err)
	}

	s.publishChange(ctx, id, userID, amqp.OpUpdate)
	s.checkBudget(ctx, userID, e.Date.Year(), int(e.Date.Month()))

	return nil
}

// Delete removes a record; deleting a missing id is a no-op.
func (s *ExpenseService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.storage.DeleteExpense(ctx, id, userID); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}

	s.publishChange(ctx, id, userID, amqp.OpDelete)
	return nil
}

// List returns the user's ledger ordered by date descending, insertion order
// on ties.
func (s *ExpenseService) List(ctx context.Context, userID int64) ([]core.Expense, error) {
	expenses, err := s.storage.ListExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// MonthlyTotal sums the user's expenses for one calendar month.
func (s *ExpenseService) MonthlyTotal(ctx context.Context, userID int64, year, month int) (core.Money, error) {
	cents, err := s.storage.MonthTotal(ctx, userID, year, month)
	if err != nil {
		return core.Money{}, fmt.Errorf("monthly total: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// CategoryBreakdown groups one month's expenses by stored category string.
func (s *ExpenseService) CategoryBreakdown(ctx context.Context, userID int64, year, month int) ([]core.CategoryAmount, error) {
	sums, err := s.storage.CategorySums(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return sums, nil
}

// Summary runs both aggregation queries for a month and applies the budget
// policy to the total.
func (s *ExpenseService) Summary(ctx context.Context, userID int64, year, month int) (core.MonthSummary, error) {
	total, err := s.MonthlyTotal(ctx, userID, year, month)
	if err != nil {
		return core.MonthSummary{}, err
	}
	byCategory, err := s.CategoryBreakdown(ctx, userID, year, month)
	if err != nil {
		return core.MonthSummary{}, err
	}
	budgetCents, err := s.storage.GetBudget(ctx, userID)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("summary budget: %w", err)
	}

	budget := core.Money{Cents: budgetCents}
	return core.MonthSummary{
		Year:       year,
		Month:      month,
		Total:      total,
		ByCategory: byCategory,
		Budget:     budget,
		Alert:      core.EvaluateBudget(total, budget),
	}, nil
}

func (s *ExpenseService) buildExpense(userID int64, amount, category, description, date string) (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = core.FallbackCategory
	}

	e := core.Expense{
		UserID:      userID,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: strings.TrimSpace(description),
		Date:        d,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// publishChange emits a mutation event. Publishing failures are logged and
// swallowed: the ledger write already succeeded.
func (s *ExpenseService) publishChange(ctx context.Context, id, userID int64, op string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishExpenseChanged(ctx, id, userID, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense change event",
			"expense_id", id, "user_id", userID, "op", op, "error", err)
	}
}

// checkBudget re-runs the month total after a mutation and publishes an alert
// event on strict excess. Failures never surface to the caller.
func (s *ExpenseService) checkBudget(ctx context.Context, userID int64, year, month int) {
	total, err := s.storage.MonthTotal(ctx, userID, year, month)
	if err != nil {
		slog.ErrorContext(ctx, "Budget check: month total failed",
			"user_id", userID, "year", year, "month", month, "error", err)
		return
	}
	budget, err := s.storage.GetBudget(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Budget check: read budget failed",
			"user_id", userID, "error", err)
		return
	}

	if core.EvaluateBudget(core.Money{Cents: total}, core.Money{Cents: budget}) != core.AlertExceeded {
		return
	}

	slog.WarnContext(ctx, "Budget exceeded",
		"user_id", userID,
		"year", year,
		"month", month,
		"total_cents", total,
		"budget_cents", budget)

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishBudgetAlert(ctx, userID, year, month, total, budget); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert event",
				"user_id", userID, "error", err)
		}
	}
}

// Close releases the storage handle and the broker connection.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
