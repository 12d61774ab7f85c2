// Package storage is the SQLite persistence layer: user records, the category
// registry, the expense ledger, and the monthly aggregation queries.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tracker/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the single handle every component receives at
// construction. The database is single-writer; callers serialize access.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateUser persists a new user with a zero budget. Returns
// core.ErrUsernameTaken when the username is already registered.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, secretHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, secret_hash) VALUES (?, ?)`,
		username, secretHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, core.ErrUsernameTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)
	return id, nil
}

// GetUserByUsername returns core.ErrUserNotFound when no such user exists.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, secret_hash, budget_cents FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.SecretHash, &u.Budget.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// SetBudget overwrites the stored budget threshold.
func (r *SQLiteRepository) SetBudget(ctx context.Context, userID, cents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET budget_cents = ? WHERE id = ?`, cents, userID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("budget rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrUserNotFound
	}

	slog.InfoContext(ctx, "Budget updated", "user_id", userID, "budget_cents", cents)
	return nil
}

// GetBudget returns the budget threshold in cents, or 0 when the user does
// not exist.
func (r *SQLiteRepository) GetBudget(ctx context.Context, userID int64) (int64, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT budget_cents FROM users WHERE id = ?`, userID).Scan(&cents)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select budget: %w", err)
	}
	return cents, nil
}

// SeedDefaultCategories ensures the global category set exists. Duplicate
// inserts are silently ignored, so the call is idempotent.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context, names []string) error {
	for _, name := range names {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name, user_id) VALUES (?, NULL)`, name)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	return nil
}

// CreateCategory inserts a per-user category. Names are stored exactly as
// given; uniqueness is exact-match on (name, user_id). Returns
// core.ErrCategoryExists on a duplicate.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, user_id) VALUES (?, ?)`, name, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrCategoryExists
		}
		return fmt.Errorf("insert category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "name", name, "user_id", userID)
	return nil
}

// ListCategories returns the union of global categories and the user's own,
// alphabetically ordered and deduplicated by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT name FROM categories
		 WHERE user_id IS NULL OR user_id = ?
		 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return names, nil
}

// CreateExpense appends a record to the ledger and returns its id.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount_cents, category, description, date)
		 VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Amount.Cents, e.Category, e.Description, e.Date.ISO())
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"user_id", e.UserID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"date", e.Date.ISO())

	return id, nil
}

// UpdateExpense replaces every field of a record. The statement is scoped to
// the owning user, so a caller can never reach another user's record by id.
// Returns core.ErrNotFound when no matching row exists.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, category = ?, description = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		e.Amount.Cents, e.Category, e.Description, e.Date.ISO(), e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("expense rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense updated", "id", e.ID, "user_id", e.UserID)
	return nil
}

// DeleteExpense removes a record. Deleting a missing or foreign id is a
// silent no-op; delete is idempotent.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "user_id", userID)
	return nil
}

// ListExpenses returns a user's ledger ordered by date descending; ties on
// date keep insertion order.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, category, description, date
		 FROM expenses WHERE user_id = ?
		 ORDER BY date DESC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e    core.Expense
			desc sql.NullString
			date string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Category, &desc, &date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Description = desc.String
		e.Date, err = core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// MonthTotal sums a user's expenses over the half-open month interval.
// A month with no records totals 0.
func (r *SQLiteRepository) MonthTotal(ctx context.Context, userID int64, year, month int) (int64, error) {
	start, end, err := core.MonthRange(year, month)
	if err != nil {
		return 0, err
	}

	var total sql.NullInt64
	err = r.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM expenses
		 WHERE user_id = ? AND date >= ? AND date < ?`,
		userID, start, end).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("month total: %w", err)
	}
	return total.Int64, nil
}

// CategorySums groups a month's expenses by their literal stored category
// string. Categories without records in the month are omitted.
func (r *SQLiteRepository) CategorySums(ctx context.Context, userID int64, year, month int) ([]core.CategoryAmount, error) {
	start, end, err := core.MonthRange(year, month)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) FROM expenses
		 WHERE user_id = ? AND date >= ? AND date < ?
		 GROUP BY category ORDER BY category`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	var sums []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums = append(sums, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category sums: %w", err)
	}
	return sums, nil
}
