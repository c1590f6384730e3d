package transaction

import (
	"context"
	"math"
	"sort"
	"time"
)

// DashboardStats is the aggregated view the dashboard renders.
type DashboardStats struct {
	CurrentBalance      float64         `json:"currentBalance"`
	MonthlyIncome       float64         `json:"monthlyIncome"`
	MonthlyExpenses     float64         `json:"monthlyExpenses"`
	BalanceChange       float64         `json:"balanceChange"` // percent vs previous month net
	ExpenseDistribution []CategoryTotal `json:"expenseDistribution"`
	RecentTransactions  []*Transaction  `json:"recentTransactions"`
	BudgetProgress      BudgetProgress  `json:"budgetProgress"`
}

// CategoryTotal is one slice of the current month's expense distribution.
type CategoryTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// BudgetProgress tracks current-month spending against the configured
// monthly budget.
type BudgetProgress struct {
	TotalBudget float64 `json:"totalBudget"`
	Spent       float64 `json:"spent"`
	Percentage  float64 `json:"percentage"`
	Remaining   float64 `json:"remaining"`
}

// StatsService aggregates transactions into dashboard statistics.
type StatsService struct {
	repo          Repository
	monthlyBudget float64
	now           func() time.Time
}

// NewStatsService creates a stats service. monthlyBudget comes from
// configuration.
func NewStatsService(repo Repository, monthlyBudget float64) *StatsService {
	return &StatsService{repo: repo, monthlyBudget: monthlyBudget, now: time.Now}
}

const recentTransactionCount = 5

// Dashboard computes the full dashboard view for one user. All aggregation
// happens over the user's complete transaction list, which the repository
// returns date-descending.
func (s *StatsService) Dashboard(ctx context.Context, userID int64) (*DashboardStats, error) {
	txs, err := s.repo.ListAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	var balance, monthlyIncome, monthlyExpenses float64
	var prevIncome, prevExpenses float64
	byCategory := make(map[string]float64)

	for _, tx := range txs {
		balance += tx.Amount

		inCurrentMonth := !tx.Date.Before(monthStart)
		inPrevMonth := !tx.Date.Before(prevMonthStart) && tx.Date.Before(monthStart)

		switch {
		case inCurrentMonth && tx.Amount > 0:
			monthlyIncome += tx.Amount
		case inCurrentMonth && tx.Amount < 0:
			monthlyExpenses += -tx.Amount
			byCategory[tx.Category] += -tx.Amount
		case inPrevMonth && tx.Amount > 0:
			prevIncome += tx.Amount
		case inPrevMonth && tx.Amount < 0:
			prevExpenses += -tx.Amount
		}
	}

	monthlyNet := monthlyIncome - monthlyExpenses
	prevNet := prevIncome - prevExpenses
	var balanceChange float64
	if prevNet != 0 {
		balanceChange = (monthlyNet - prevNet) / math.Abs(prevNet) * 100
	}

	distribution := make([]CategoryTotal, 0, len(byCategory))
	for name, value := range byCategory {
		distribution = append(distribution, CategoryTotal{Name: name, Value: value})
	}
	sort.Slice(distribution, func(i, j int) bool {
		if distribution[i].Value != distribution[j].Value {
			return distribution[i].Value > distribution[j].Value
		}
		return distribution[i].Name < distribution[j].Name
	})

	recent := txs
	if len(recent) > recentTransactionCount {
		recent = recent[:recentTransactionCount]
	}

	progress := BudgetProgress{TotalBudget: s.monthlyBudget, Spent: monthlyExpenses}
	if progress.TotalBudget > 0 {
		progress.Percentage = math.Min(progress.Spent/progress.TotalBudget*100, 100)
	}
	progress.Remaining = math.Max(progress.TotalBudget-progress.Spent, 0)

	return &DashboardStats{
		CurrentBalance:      balance,
		MonthlyIncome:       monthlyIncome,
		MonthlyExpenses:     monthlyExpenses,
		BalanceChange:       balanceChange,
		ExpenseDistribution: distribution,
		RecentTransactions:  recent,
		BudgetProgress:      progress,
	}, nil
}
