package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"tracker/internal/core"
	"tracker/internal/export"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

type budgetRequest struct {
	Amount string `json:"amount"` // decimal string, e.g. "250.00"
}

type categoryRequest struct {
	Name string `json:"name"`
}

type expenseRequest struct {
	Amount      string `json:"amount"` // decimal string
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
}

type expenseResponse struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type summaryResponse struct {
	Year       int               `json:"year"`
	Month      int               `json:"month"`
	Total      string            `json:"total"`
	ByCategory map[string]string `json:"by_category"`
	Budget     string            `json:"budget"`
	Alert      string            `json:"alert"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// respondServiceError maps the core error taxonomy onto HTTP statuses.
// Anything unrecognized is a storage-layer fault and surfaces as a 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrEmptyUsername),
		errors.Is(err, core.ErrEmptySecret),
		errors.Is(err, core.ErrEmptyCategory):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrUsernameTaken),
		errors.Is(err, core.ErrCategoryExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Unhandled service error",
			"path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := s.accounts.Register(r.Context(), req.Username, req.Secret)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, "user registered", map[string]int64{"user_id": id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.accounts.Authenticate(r.Context(), req.Username, req.Secret)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "authenticated", map[string]any{
		"user_id":  u.ID,
		"username": u.Username,
	})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	budget, err := s.accounts.GetBudget(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "budget", map[string]string{"budget": budget.Format()})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := s.accounts.SetBudget(r.Context(), userID, cents); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "budget updated", nil)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	names, err := s.categories.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "categories", names)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.categories.Add(r.Context(), req.Name, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, "category added", nil)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.expenses.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseResponse{
			ID:          e.ID,
			Amount:      e.Amount.Format(),
			Category:    e.Category,
			Description: e.Description,
			Date:        e.Date.ISO(),
		})
	}

	respondJSON(w, http.StatusOK, "expenses", out)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := s.expenses.Add(r.Context(), userID, req.Amount, req.Category, req.Description, req.Date)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, "expense added", map[string]int64{"id": id})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	expenseID, err := pathID(r, "expenseID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.expenses.Update(r.Context(), expenseID, userID, req.Amount, req.Category, req.Description, req.Date); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "expense updated", nil)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	expenseID, err := pathID(r, "expenseID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.expenses.Delete(r.Context(), expenseID, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "expense deleted", nil)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month")
		return
	}

	summary, err := s.expenses.Summary(r.Context(), userID, year, month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	byCategory := make(map[string]string, len(summary.ByCategory))
	for _, ca := range summary.ByCategory {
		byCategory[ca.Name] = ca.Amount.Format()
	}

	respondJSON(w, http.StatusOK, "summary", summaryResponse{
		Year:       summary.Year,
		Month:      summary.Month,
		Total:      summary.Total.Format(),
		ByCategory: byCategory,
		Budget:     summary.Budget.Format(),
		Alert:      string(summary.Alert),
	})
}

// handleExport streams the CSV snapshot, or mirrors it to Google Sheets when
// ?target=sheets is requested and an exporter is configured.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.expenses.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if r.URL.Query().Get("target") == "sheets" {
		if s.sheets == nil {
			respondError(w, http.StatusNotImplemented, "sheets export is not configured")
			return
		}
		if err := s.sheets.Export(r.Context(), expenses); err != nil {
			slog.ErrorContext(r.Context(), "Sheets export failed", "user_id", userID, "error", err)
			respondError(w, http.StatusBadGateway, "sheets export failed")
			return
		}
		respondJSON(w, http.StatusOK, "exported to sheets", map[string]int{"rows": len(expenses)})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	if err := export.WriteSnapshot(w, expenses); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "user_id", userID, "error", err)
	}
}
