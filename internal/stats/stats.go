// Package stats computes dashboard aggregates from the transaction
// collection and settings. All money math goes through decimals; no amount
// ever passes through a float.
package stats

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okwera/fintrack/internal/database/repository"
)

// Stats aggregates a transaction collection.
type Stats struct {
	TotalTransactions int
	TotalSpending     decimal.Decimal
	CategoryTotals    map[string]decimal.Decimal
	// CategoryOrder lists categories in first-seen order. Go map iteration is
	// randomized, so the insertion-order tie-break for TopCategory is carried
	// explicitly.
	CategoryOrder []string
	TopCategory   string
	WeekSpending  decimal.Decimal
}

// Compute folds rows into Stats in one pass. WeekSpending covers the
// trailing 7 days up to and including now's calendar date. An empty
// collection yields zero stats and TopCategory "None".
func Compute(rows []repository.Transaction, now time.Time) Stats {
	s := Stats{
		TotalSpending:  decimal.Zero,
		WeekSpending:   decimal.Zero,
		CategoryTotals: map[string]decimal.Decimal{},
		TopCategory:    "None",
	}
	weekStart := now.AddDate(0, 0, -7).Format("2006-01-02")
	for _, r := range rows {
		s.TotalTransactions++
		s.TotalSpending = s.TotalSpending.Add(r.Amount)
		if _, seen := s.CategoryTotals[r.Category]; !seen {
			s.CategoryOrder = append(s.CategoryOrder, r.Category)
		}
		s.CategoryTotals[r.Category] = s.CategoryTotals[r.Category].Add(r.Amount)
		if r.Date >= weekStart {
			s.WeekSpending = s.WeekSpending.Add(r.Amount)
		}
	}
	// Largest total wins; on a tie the category seen first keeps the title.
	var best decimal.Decimal
	for _, c := range s.CategoryOrder {
		if t := s.CategoryTotals[c]; t.GreaterThan(best) {
			s.TopCategory, best = c, t
		}
	}
	return s
}

// Status labels budget consumption.
type Status string

const (
	StatusNone    Status = "none"
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// BudgetStatus describes budget consumption for display.
type BudgetStatus struct {
	Spent decimal.Decimal
	Cap   *decimal.Decimal
	// Percentage is clamped to [0,100] for display; the unclamped value has
	// already decided Status by the time callers see it.
	Percentage decimal.Decimal
	Status     Status
	Message    string
}

var (
	hundred       = decimal.NewFromInt(100)
	warnThreshold = decimal.NewFromInt(80)
)

// Budget reports consumption of budgetCap by total. A nil or non-positive
// cap means no budget tracking.
func Budget(total decimal.Decimal, budgetCap *decimal.Decimal) BudgetStatus {
	if budgetCap == nil || budgetCap.Sign() <= 0 {
		return BudgetStatus{
			Spent:      total,
			Percentage: decimal.Zero,
			Status:     StatusNone,
			Message:    "No budget set",
		}
	}
	pct := total.Div(*budgetCap).Mul(hundred)
	bs := BudgetStatus{Spent: total, Cap: budgetCap, Percentage: pct}
	switch {
	case pct.GreaterThanOrEqual(hundred):
		bs.Status = StatusDanger
		bs.Message = fmt.Sprintf("You've exceeded your budget by %s", total.Sub(*budgetCap).StringFixed(2))
		bs.Percentage = hundred
	case pct.GreaterThanOrEqual(warnThreshold):
		bs.Status = StatusWarning
		bs.Message = fmt.Sprintf("You're approaching your budget limit (%s%% used)", pct.Round(0))
	default:
		bs.Status = StatusSuccess
		bs.Message = "You're within budget"
	}
	if bs.Percentage.Sign() < 0 {
		bs.Percentage = decimal.Zero
	}
	return bs
}
