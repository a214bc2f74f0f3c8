package bot

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
)

func TestParseAddArgs(t *testing.T) {
	amount, category, description, err := parseAddArgs("500 Food lunch with friends")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected amount 500, got %s", amount)
	}
	if category != "Food" {
		t.Errorf("Expected category Food, got %q", category)
	}
	if description != "lunch with friends" {
		t.Errorf("Expected description 'lunch with friends', got %q", description)
	}
}

func TestParseAddArgs_NoDescription(t *testing.T) {
	amount, category, description, err := parseAddArgs("120.50 Transport")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !amount.Equal(decimal.NewFromFloat(120.50)) {
		t.Errorf("Expected amount 120.50, got %s", amount)
	}
	if category != "Transport" {
		t.Errorf("Expected category Transport, got %q", category)
	}
	if description != "" {
		t.Errorf("Expected empty description, got %q", description)
	}
}

func TestParseAddArgs_Invalid(t *testing.T) {
	cases := []struct {
		name string
		args string
	}{
		{"empty", ""},
		{"amount only", "500"},
		{"bad amount", "abc Food"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, _, err := parseAddArgs(tc.args); err == nil {
				t.Errorf("Expected error for %q, got nil", tc.args)
			}
		})
	}
}

func TestParseNewCategoryArgs(t *testing.T) {
	name, isIncome, err := parseNewCategoryArgs("Salary income")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if name != "Salary" {
		t.Errorf("Expected name Salary, got %q", name)
	}
	if !isIncome {
		t.Error("Expected income category")
	}
}

func TestParseNewCategoryArgs_MultiWordName(t *testing.T) {
	name, isIncome, err := parseNewCategoryArgs("Eating out expense")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if name != "Eating out" {
		t.Errorf("Expected name 'Eating out', got %q", name)
	}
	if isIncome {
		t.Error("Expected expense category")
	}
}

func TestParseNewCategoryArgs_DefaultsToExpense(t *testing.T) {
	name, isIncome, err := parseNewCategoryArgs("Food")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if name != "Food" {
		t.Errorf("Expected name Food, got %q", name)
	}
	if isIncome {
		t.Error("Expected expense category by default")
	}
}

func TestParseNewCategoryArgs_Invalid(t *testing.T) {
	cases := []struct {
		name string
		args string
	}{
		{"empty", ""},
		{"type only", "income"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := parseNewCategoryArgs(tc.args); err == nil {
				t.Errorf("Expected error for %q, got nil", tc.args)
			}
		})
	}
}

func TestParseBudgetArgs(t *testing.T) {
	income, expense, err := parseBudgetArgs("50000 35000")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !income.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected income 50000, got %s", income)
	}
	if !expense.Equal(decimal.NewFromInt(35000)) {
		t.Errorf("Expected expense 35000, got %s", expense)
	}
}

func TestParseBudgetArgs_Invalid(t *testing.T) {
	cases := []struct {
		name string
		args string
	}{
		{"empty", ""},
		{"one value", "50000"},
		{"three values", "50000 35000 1000"},
		{"bad income", "abc 35000"},
		{"bad expense", "50000 abc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := parseBudgetArgs(tc.args); err == nil {
				t.Errorf("Expected error for %q, got nil", tc.args)
			}
		})
	}
}

func TestFormatReport_WithBudget(t *testing.T) {
	report := &domain.BudgetReport{
		Month:          domain.Month{Year: 2026, Month: 8},
		TotalIncome:    decimal.NewFromInt(48000),
		TotalExpense:   decimal.NewFromInt(21000),
		HasBudget:      true,
		PlannedIncome:  decimal.NewFromInt(50000),
		PlannedExpense: decimal.NewFromInt(35000),
		TopCategories: []domain.CategoryTotal{
			{Name: "Food", Total: decimal.NewFromInt(12000)},
			{Name: "Transport", Total: decimal.NewFromInt(9000)},
		},
		Recommendations: []string{"Spending is on track."},
	}

	text := formatReport(report)

	for _, want := range []string{
		"Report for 2026-08",
		"Income: 48000.00 ₽",
		"Spent: 21000.00 ₽",
		"Planned income: 50000.00 ₽",
		"Planned expense: 35000.00 ₽",
		"1. Food: 12000.00 ₽",
		"2. Transport: 9000.00 ₽",
		"Spending is on track.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, text)
		}
	}
}

func TestFormatReport_NoBudget(t *testing.T) {
	report := &domain.BudgetReport{
		Month:        domain.Month{Year: 2026, Month: 8},
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.NewFromInt(300),
	}

	text := formatReport(report)

	if strings.Contains(text, "Planned") {
		t.Errorf("Expected no planned lines without a budget, got:\n%s", text)
	}
	if strings.Contains(text, "Projected") {
		t.Errorf("Expected no projection line, got:\n%s", text)
	}
}
