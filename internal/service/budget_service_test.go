package service

import (
	"context"
	"testing"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestBudgetGetOrCreate_LazyZeroBudget(t *testing.T) {
	budgetRepo := testutil.NewMockMonthlyBudgetRepository()
	budgetService := NewBudgetService(budgetRepo, testutil.NewMockTransactionRepository())
	userID := uuid.New()
	month := domain.Month{Year: 2025, Month: time.June}

	budget, err := budgetService.GetOrCreate(context.Background(), userID, month)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !budget.PlannedIncome.IsZero() || !budget.PlannedExpense.IsZero() {
		t.Errorf("Expected a zero budget on first view, got %s/%s", budget.PlannedIncome, budget.PlannedExpense)
	}

	again, err := budgetService.GetOrCreate(context.Background(), userID, month)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if again.ID != budget.ID {
		t.Errorf("Expected the same row on second view, got %d and %d", budget.ID, again.ID)
	}
}

func TestBudgetSet_RejectsNegative(t *testing.T) {
	budgetService := NewBudgetService(testutil.NewMockMonthlyBudgetRepository(), testutil.NewMockTransactionRepository())
	month := domain.Month{Year: 2025, Month: time.June}

	_, err := budgetService.Set(context.Background(), uuid.New(), month, decimal.NewFromInt(-1), decimal.Zero)
	if err != domain.ErrInvalidBudget {
		t.Errorf("Expected ErrInvalidBudget for negative income, got %v", err)
	}

	_, err = budgetService.Set(context.Background(), uuid.New(), month, decimal.Zero, decimal.NewFromInt(-1))
	if err != domain.ErrInvalidBudget {
		t.Errorf("Expected ErrInvalidBudget for negative expense, got %v", err)
	}
}

func TestBudgetOverview_DiffsAgainstActuals(t *testing.T) {
	budgetRepo := testutil.NewMockMonthlyBudgetRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	budgetService := NewBudgetService(budgetRepo, transactionRepo)
	userID := uuid.New()
	month := domain.Month{Year: 2025, Month: time.June}

	salary := &domain.Category{ID: 1, UserID: userID, Name: "Salary", IsIncome: true}
	food := &domain.Category{ID: 2, UserID: userID, Name: "Food"}
	transactionRepo.Categories[salary.ID] = salary
	transactionRepo.Categories[food.ID] = food

	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	transactionRepo.AddTransaction(&domain.Transaction{UserID: userID, Amount: decimal.NewFromInt(45000), Date: date, CategoryID: salary.ID})
	transactionRepo.AddTransaction(&domain.Transaction{UserID: userID, Amount: decimal.NewFromInt(12000), Date: date, CategoryID: food.ID})

	budgetRepo.AddBudget(&domain.MonthlyBudget{
		UserID:         userID,
		Month:          month,
		PlannedIncome:  decimal.NewFromInt(40000),
		PlannedExpense: decimal.NewFromInt(15000),
	})

	overview, err := budgetService.Overview(context.Background(), userID, month)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !overview.IncomeDiff.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected income diff 5000, got %s", overview.IncomeDiff)
	}
	if !overview.ExpenseDiff.Equal(decimal.NewFromInt(-3000)) {
		t.Errorf("Expected expense diff -3000, got %s", overview.ExpenseDiff)
	}
}
