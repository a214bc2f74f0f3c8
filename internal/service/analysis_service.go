package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const topCategoryCount = 3

// largeCategoryThreshold is the per-category monthly spend above which the
// engine suggests reviewing the category.
var largeCategoryThreshold = decimal.NewFromInt(5000)

const fallbackRecommendation = "Great job! You are managing your finances well."

// AnalysisService is the budget-vs-actual engine: given a user, a month and
// an injected "today" it computes actual totals, plan deltas, a linear
// month-end projection and a ranked category breakdown, plus the
// recommendation messages both front ends show verbatim.
type AnalysisService struct {
	userRepo        domain.UserRepository
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	budgetRepo      domain.MonthlyBudgetRepository
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(
	userRepo domain.UserRepository,
	transactionRepo domain.TransactionRepository,
	categoryRepo domain.CategoryRepository,
	budgetRepo domain.MonthlyBudgetRepository,
) *AnalysisService {
	return &AnalysisService{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		budgetRepo:      budgetRepo,
	}
}

// ComputeReport builds the budget report for one user-month. today is
// injected rather than read from the clock so projections are testable.
// A missing budget or an empty transaction set is a normal zero state,
// never an error; an unknown user is.
func (s *AnalysisService) ComputeReport(ctx context.Context, userID uuid.UUID, month domain.Month, today time.Time) (*domain.BudgetReport, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.ListRange(ctx, userID, month.Start(), month.End())
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	categoryByID := make(map[int32]*domain.Category, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = c
	}

	report := &domain.BudgetReport{
		Month:        month,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}

	for _, t := range transactions {
		category, ok := categoryByID[t.CategoryID]
		if !ok {
			// Every transaction references one of the user's categories;
			// the row-level FK guarantees this.
			continue
		}
		if category.IsIncome {
			report.TotalIncome = report.TotalIncome.Add(t.Amount)
		} else {
			report.TotalExpense = report.TotalExpense.Add(t.Amount)
		}
	}

	recommendations := make([]string, 0, 4)

	budget, err := s.budgetRepo.Get(ctx, userID, month)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		budget = nil
	case err != nil:
		return nil, err
	}

	if budget != nil {
		report.HasBudget = true
		report.PlannedIncome = budget.PlannedIncome
		report.PlannedExpense = budget.PlannedExpense
		report.IncomeDiff = report.TotalIncome.Sub(budget.PlannedIncome)
		report.ExpenseDiff = report.TotalExpense.Sub(budget.PlannedExpense)

		recommendations = append(recommendations, s.incomeAnalysis(report.TotalIncome, budget.PlannedIncome)...)
		recommendations = append(recommendations, s.expenseAnalysis(report.TotalExpense, budget.PlannedExpense)...)

		if projection, ok := projectMonthEnd(report.TotalExpense, budget.PlannedExpense, month, today); ok {
			report.HasProjection = true
			report.ProjectedExpense = projection.projected
			recommendations = append(recommendations, projection.message)
		}
	}

	report.TopCategories = RankCategories(transactions, categoryByID, topCategoryCount)
	for _, ct := range report.TopCategories {
		if ct.Total.GreaterThan(largeCategoryThreshold) {
			recommendations = append(recommendations, fmt.Sprintf(
				"You are spending a lot on '%s' — %s. There may be room to optimize.",
				ct.Name, FormatMoney(ct.Total),
			))
		}
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, fallbackRecommendation)
	}
	report.Recommendations = recommendations

	return report, nil
}

// incomeAnalysis compares actual income against the plan. A diff of exactly
// zero emits nothing.
func (s *AnalysisService) incomeAnalysis(actual, planned decimal.Decimal) []string {
	if !planned.IsPositive() {
		return nil
	}

	diff := actual.Sub(planned)
	percent := actual.Div(planned).Mul(decimal.NewFromInt(100))

	switch {
	case diff.IsPositive():
		return []string{fmt.Sprintf(
			"Income exceeded the plan by %s (%s of planned). Well done!",
			FormatMoney(diff), formatPercent(percent),
		)}
	case diff.IsNegative():
		return []string{fmt.Sprintf(
			"Income is below the plan by %s (%s of planned). Consider ways to increase income.",
			FormatMoney(diff.Abs()), formatPercent(percent),
		)}
	default:
		return nil
	}
}

// expenseAnalysis mirrors incomeAnalysis with reversed polarity: spending
// over the plan warns, staying under is positive.
func (s *AnalysisService) expenseAnalysis(actual, planned decimal.Decimal) []string {
	if !planned.IsPositive() {
		return nil
	}

	diff := actual.Sub(planned)
	percent := actual.Div(planned).Mul(decimal.NewFromInt(100))

	switch {
	case diff.IsPositive():
		return []string{fmt.Sprintf(
			"Expenses exceeded the plan by %s (%s of planned). Review the categories with the largest overruns.",
			FormatMoney(diff), formatPercent(percent),
		)}
	case diff.IsNegative():
		return []string{fmt.Sprintf(
			"Expenses are below the plan by %s (%s of planned). You are staying within budget.",
			FormatMoney(diff.Abs()), formatPercent(percent),
		)}
	default:
		return nil
	}
}

type monthEndProjection struct {
	projected decimal.Decimal
	message   string
}

// projectMonthEnd extrapolates month-end spend linearly from the average
// daily rate observed so far. Only computed while the month is in progress
// and a positive expense plan exists.
func projectMonthEnd(totalExpense, plannedExpense decimal.Decimal, month domain.Month, today time.Time) (monthEndProjection, bool) {
	if !plannedExpense.IsPositive() || !month.Contains(today) {
		return monthEndProjection{}, false
	}

	daysPassed := today.Day() // day-of-month == days elapsed including today
	if daysPassed < 1 {
		daysPassed = 1
	}
	daysRemaining := month.Days() - daysPassed

	dailyExpense := totalExpense.Div(decimal.NewFromInt(int64(daysPassed)))
	projected := totalExpense.Add(dailyExpense.Mul(decimal.NewFromInt(int64(daysRemaining))))

	if projected.GreaterThan(plannedExpense) {
		over := projected.Sub(plannedExpense)
		return monthEndProjection{
			projected: projected,
			message: fmt.Sprintf(
				"At the current rate you will exceed the monthly budget by %s.",
				FormatMoney(over),
			),
		}, true
	}

	remaining := plannedExpense.Sub(projected)
	return monthEndProjection{
		projected: projected,
		message: fmt.Sprintf(
			"At the current rate you will stay within budget, with %s to spare.",
			FormatMoney(remaining),
		),
	}, true
}

// RankCategories groups expense transactions by category name, sums the
// amounts and returns the topN groups in descending order of total. Ties
// keep first-seen insertion order so identical inputs always rank
// identically.
func RankCategories(transactions []*domain.Transaction, categoryByID map[int32]*domain.Category, topN int) []domain.CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	order := make([]string, 0)

	for _, t := range transactions {
		category, ok := categoryByID[t.CategoryID]
		if !ok || category.IsIncome {
			continue
		}
		if _, seen := totals[category.Name]; !seen {
			order = append(order, category.Name)
		}
		totals[category.Name] = totals[category.Name].Add(t.Amount)
	}

	ranked := make([]domain.CategoryTotal, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, domain.CategoryTotal{Name: name, Total: totals[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total.GreaterThan(ranked[j].Total)
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
