// Package http is the thin JSON delivery surface over the tracker core. The
// desktop front-end is the intended caller; it authenticates once and then
// addresses its own user id on every route, the same trust model the core
// assumes.
package http

import (
	"net/http"
	"time"

	"tracker/internal/export"
	"tracker/internal/services"
)

// Server carries the service handles the route handlers call into.
type Server struct {
	accounts   *services.AccountService
	categories *services.CategoryService
	expenses   *services.ExpenseService
	sheets     *export.SheetsExporter // nil when Sheets export is not configured
}

// NewServer wires routes and middleware and returns a ready http.Server.
func NewServer(addr string, accounts *services.AccountService, categories *services.CategoryService, expenses *services.ExpenseService, sheets *export.SheetsExporter) *http.Server {
	s := &Server{
		accounts:   accounts,
		categories: categories,
		expenses:   expenses,
		sheets:     sheets,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/users/{userID}/budget", s.handleGetBudget)
	mux.HandleFunc("PUT /api/users/{userID}/budget", s.handleSetBudget)
	mux.HandleFunc("GET /api/users/{userID}/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/users/{userID}/categories", s.handleAddCategory)
	mux.HandleFunc("GET /api/users/{userID}/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/users/{userID}/expenses", s.handleAddExpense)
	mux.HandleFunc("PUT /api/users/{userID}/expenses/{expenseID}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/users/{userID}/expenses/{expenseID}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/users/{userID}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/users/{userID}/export", s.handleExport)

	return &http.Server{
		Addr:              addr,
		Handler:           traceMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "ok", nil)
}
