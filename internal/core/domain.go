package core

import (
	"errors"
	"strings"
	"time"
)

// FallbackCategory is assigned to expenses saved without a category.
const FallbackCategory = "Other"

// DefaultCategories is the global seed set shared by every user.
var DefaultCategories = []string{"Food", "Transport", "Shopping", "Bills", "Entertainment", "Other"}

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID         int64
		Username   string
		SecretHash string
		Budget     Money
	}

	Category struct {
		ID     int64
		Name   string
		UserID int64 // 0 means global
	}

	Expense struct {
		ID          int64
		UserID      int64
		Amount      Money
		Category    string
		Description string
		Date        Date
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrEmptyUsername      = errors.New("empty username")
	ErrEmptySecret        = errors.New("empty secret")
	ErrEmptyCategory      = errors.New("empty category name")
	ErrNotFound           = errors.New("expense not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrCategoryExists     = errors.New("category already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NewDate creates a calendar date from year, month, day. The time component
// is always midnight UTC; the ledger never stores times.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO returns the date in YYYY-MM-DD form, the format stored in the ledger
// and used by the export snapshot.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if e.UserID <= 0 {
		return ErrUserNotFound
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return e.Date.Validate()
}
