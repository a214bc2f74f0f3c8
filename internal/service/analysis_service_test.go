package service

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type analysisFixture struct {
	service         *AnalysisService
	userRepo        *testutil.MockUserRepository
	transactionRepo *testutil.MockTransactionRepository
	categoryRepo    *testutil.MockCategoryRepository
	budgetRepo      *testutil.MockMonthlyBudgetRepository
	userID          uuid.UUID
}

func newAnalysisFixture() *analysisFixture {
	userRepo := testutil.NewMockUserRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	budgetRepo := testutil.NewMockMonthlyBudgetRepository()

	user := userRepo.AddUser(&domain.User{Username: "alice"})

	return &analysisFixture{
		service:         NewAnalysisService(userRepo, transactionRepo, categoryRepo, budgetRepo),
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		budgetRepo:      budgetRepo,
		userID:          user.ID,
	}
}

// addCategory registers the category with both repos so polarity resolution
// works in sums as well as in the engine
func (f *analysisFixture) addCategory(name string, isIncome bool) *domain.Category {
	c := f.categoryRepo.AddCategory(&domain.Category{UserID: f.userID, Name: name, IsIncome: isIncome})
	f.transactionRepo.Categories[c.ID] = c
	return c
}

func (f *analysisFixture) addTransaction(categoryID int32, amount int64, date time.Time) {
	f.transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     f.userID,
		Amount:     decimal.NewFromInt(amount),
		Date:       date,
		CategoryID: categoryID,
	})
}

func hasRecommendationContaining(report *domain.BudgetReport, substr string) bool {
	for _, r := range report.Recommendations {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}

func TestComputeReport_TotalsPartitionByPolarity(t *testing.T) {
	f := newAnalysisFixture()
	month := domain.Month{Year: 2025, Month: time.June}
	salary := f.addCategory("Salary", true)
	food := f.addCategory("Food", false)
	rent := f.addCategory("Rent", false)

	f.addTransaction(salary.ID, 50000, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	f.addTransaction(food.ID, 1200, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	f.addTransaction(rent.ID, 20000, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))
	// Outside the month, must not be counted
	f.addTransaction(food.ID, 999, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	report, err := f.service.ComputeReport(context.Background(), f.userID, month, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !report.TotalIncome.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected income 50000, got %s", report.TotalIncome)
	}
	if !report.TotalExpense.Equal(decimal.NewFromInt(21200)) {
		t.Errorf("Expected expense 21200, got %s", report.TotalExpense)
	}

	// Every in-range transaction counted exactly once
	total := report.TotalIncome.Add(report.TotalExpense)
	if !total.Equal(decimal.NewFromInt(71200)) {
		t.Errorf("Expected income+expense to cover all transactions, got %s", total)
	}
}

func TestComputeReport_Idempotent(t *testing.T) {
	f := newAnalysisFixture()
	month := domain.Month{Year: 2025, Month: time.June}
	food := f.addCategory("Food", false)
	f.addTransaction(food.ID, 3000, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC))
	f.budgetRepo.AddBudget(&domain.MonthlyBudget{
		UserID:         f.userID,
		Month:          month,
		PlannedIncome:  decimal.NewFromInt(40000),
		PlannedExpense: decimal.NewFromInt(10000),
	})

	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	first, err := f.service.ComputeReport(context.Background(), f.userID, month, today)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := f.service.ComputeReport(context.Background(), f.userID, month, today)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical reports for identical inputs:\n%+v\n%+v", first, second)
	}
}

func TestComputeReport_ZeroExpensePlan_NoExpenseMessages(t *testing.T) {
	f := newAnalysisFixture()
	month := domain.Month{Year: 2025, Month: time.June}
	food := f.addCategory("Food", false)
	f.addTransaction(food.ID, 500, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	f.budgetRepo.AddBudget(&domain.MonthlyBudget{
		UserID:         f.userID,
		Month:          month,
		PlannedIncome:  decimal.NewFromInt(40000),
		PlannedExpense: decimal.Zero,
	})

	report, err := f.service.ComputeReport(context.Background(), f.userID, month, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if report.HasProjection {
		t.Error("Expected no projection with a zero expense plan")
	}
	if hasRecommendationContaining(report, "Expenses") {
		t.Errorf("Expected no expense-diff message, got %v", report.Recommendations)
	}
	if hasRecommendationContaining(report, "current rate") {
		t.Errorf("Expected no projection message, got %v", report.Recommendations)
	}
}

func TestComputeReport_ProjectionHeadroom(t *testing.T) {
	f := newAnalysisFixture()
	// June has 30 days; today is day 10
	month := domain.Month{Year: 2025, Month: time.June}
	food := f.addCategory("Food", false)
	f.addTransaction(food.ID, 3000, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	f.budgetRepo.AddBudget(&domain.MonthlyBudget{
		UserID:         f.userID,
		Month:          month,
		PlannedExpense: decimal.NewFromInt(10000),
	})

	report, err := f.service.ComputeReport(context.Background(), f.userID, month, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !report.HasProjection {
		t.Fatal("Expected a projection")
	}
	// daily = 3000/10 = 300; remaining 20 days → projected 3000 + 6000 = 9000
	if !report.ProjectedExpense.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("Expected projected expense 9000, got %s", report.ProjectedExpense)
	}
	if !hasRecommendationContaining(report, "1000.00") || !hasRecommendationContaining(report, "to spare") {
		t.Errorf("Expected headroom message mentioning 1000.00, got %v", report.Recommendations)
	}
}

func TestComputeReport_ProjectionOverage(t *testing.T) {
	f := newAnalysisFixture()
	month := domain.Month{Year: 2025, Month: time.June}
	food := f.addCategory("Food", false)
	f.addTransaction(food.ID, 3000, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	f.budgetRepo.AddBudget(&domain.MonthlyBudget{
		UserID:         f.userID,
		Month:          month,
		PlannedExpense: decimal.NewFromInt(8000),
	})

	report, err := f.service.ComputeReport(context.Background(), f.userID, month, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !report.ProjectedExpense.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("Expected projected expense 9000, got %s", report.ProjectedExpense)
	}
	if !hasRecommendationContaining(report, "exceed the monthly budget by 1000.00") {
		t.Errorf("Expected overage message of 1000.00, got %v", report.Recommendations)
	}
}

func TestComputeReport_NoProjectionOutsideMonth(t *testing.T) {
	f := newAnalysisFixture()
	month := domain.Month{Year: 2025, Month: time.June}
	food := f.addCategory("Food", false)
	f.addTransaction(food.ID, 3000, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	f.budgetRepo.AddBudget(&domain.MonthlyBudget{
		UserID:         f.userID,
		Month:          month,
		PlannedExpense: decimal.NewFromInt(8000),
	})

	// Viewing a past month: totals and diffs, but no projection
	report, err := f.service.ComputeReport(context.Background(), f.userID, month, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if report.HasProjection {
		t.Error("Expected no projection when today is outside the month")
	}
	if !report.HasBudget {
		t.Error("Expected budget section to still be present")
	}
}

func TestComputeReport_UnknownUser(t *testing.T) {
	f := newAnalysisFixture()
	month := domain.Month{Year: 2025, Month: time.June}

	_, err := f.service.ComputeReport(context.Background(), uuid.New(), month, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != domain.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestComputeReport_EmptyState(t *testing.T) {
	f := newAnalysisFixture()
	month := domain.Month{Year: 2025, Month: time.June}

	report, err := f.service.ComputeReport(context.Background(), f.userID, month, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error for the empty state, got %v", err)
	}

	if !report.TotalIncome.IsZero() || !report.TotalExpense.IsZero() {
		t.Errorf("Expected zero totals, got income=%s expense=%s", report.TotalIncome, report.TotalExpense)
	}
	if report.HasBudget {
		t.Error("Expected no budget section")
	}
	if len(report.Recommendations) != 1 || report.Recommendations[0] != fallbackRecommendation {
		t.Errorf("Expected exactly the fallback recommendation, got %v", report.Recommendations)
	}
}

func TestComputeReport_IncomeExactlyOnPlan_EmitsNothing(t *testing.T) {
	f := newAnalysisFixture()
	month := domain.Month{Year: 2025, Month: time.June}
	salary := f.addCategory("Salary", true)
	f.addTransaction(salary.ID, 40000, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	f.budgetRepo.AddBudget(&domain.MonthlyBudget{
		UserID:        f.userID,
		Month:         month,
		PlannedIncome: decimal.NewFromInt(40000),
	})

	report, err := f.service.ComputeReport(context.Background(), f.userID, month, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if hasRecommendationContaining(report, "Income") {
		t.Errorf("Expected no income message when diff is exactly zero, got %v", report.Recommendations)
	}
}

func TestComputeReport_LargeCategoryAdvisory(t *testing.T) {
	f := newAnalysisFixture()
	month := domain.Month{Year: 2025, Month: time.June}
	restaurants := f.addCategory("Restaurants", false)
	f.addTransaction(restaurants.ID, 7500, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))

	report, err := f.service.ComputeReport(context.Background(), f.userID, month, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !hasRecommendationContaining(report, "'Restaurants'") {
		t.Errorf("Expected an advisory naming the category, got %v", report.Recommendations)
	}
	if hasRecommendationContaining(report, fallbackRecommendation) {
		t.Errorf("Expected no fallback when an advisory was emitted, got %v", report.Recommendations)
	}
}

func TestRankCategories_DescendingTopN(t *testing.T) {
	f := newAnalysisFixture()
	food := f.addCategory("Food", false)
	rent := f.addCategory("Rent", false)
	fun := f.addCategory("Fun", false)
	books := f.addCategory("Books", false)
	salary := f.addCategory("Salary", true)

	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	f.addTransaction(food.ID, 300, date)
	f.addTransaction(rent.ID, 20000, date)
	f.addTransaction(fun.ID, 1500, date)
	f.addTransaction(books.ID, 100, date)
	f.addTransaction(salary.ID, 90000, date) // income, excluded from ranking

	ranked := RankCategories(f.transactionRepo.Transactions, f.transactionRepo.Categories, 3)

	want := []string{"Rent", "Fun", "Food"}
	if len(ranked) != 3 {
		t.Fatalf("Expected top 3, got %d entries", len(ranked))
	}
	for i, name := range want {
		if ranked[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, ranked[i].Name)
		}
	}
}

func TestRankCategories_TieKeepsFirstSeenOrder(t *testing.T) {
	f := newAnalysisFixture()
	c1 := f.addCategory("Cafe", false)
	c2 := f.addCategory("Bus", false)
	c3 := f.addCategory("Gifts", false)

	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	// Three-way tie at 100: order of first appearance must be preserved
	f.addTransaction(c1.ID, 100, date)
	f.addTransaction(c2.ID, 100, date)
	f.addTransaction(c3.ID, 100, date)

	ranked := RankCategories(f.transactionRepo.Transactions, f.transactionRepo.Categories, 3)

	want := []string{"Cafe", "Bus", "Gifts"}
	for i, name := range want {
		if ranked[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s (ties must keep insertion order)", i, name, ranked[i].Name)
		}
	}
}
