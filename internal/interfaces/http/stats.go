package http

import (
	"log"
	"net/http"

	"plata/internal/domain/transaction"
	"plata/internal/shared/middleware"
)

type StatsHandler struct {
	stats *transaction.StatsService
}

func NewStatsHandler(stats *transaction.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// HandleDashboard returns the aggregated dashboard statistics
func (h *StatsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.stats.Dashboard(r.Context(), userID)
	if err != nil {
		log.Printf("Error computing dashboard stats for user %d: %v", userID, err)
		http.Error(w, "Failed to compute statistics", http.StatusInternalServerError)
		return
	}

	if stats.ExpenseDistribution == nil {
		stats.ExpenseDistribution = []transaction.CategoryTotal{}
	}
	if stats.RecentTransactions == nil {
		stats.RecentTransactions = []*transaction.Transaction{}
	}

	writeJSON(w, http.StatusOK, stats)
}
