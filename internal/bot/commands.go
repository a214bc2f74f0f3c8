package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/service"
)

const helpText = "Commands:\n" +
	"/today - income and spending for today\n" +
	"/week - spending over the last 7 days\n" +
	"/month - this month's budget report\n" +
	"/add <amount> <category> [description] - record a transaction\n" +
	"/newcategory <name> [income] - create a category (expense by default)\n" +
	"/budget <income> <expense> - set this month's budget\n" +
	"/recommendations - budget recommendations"

const notLinkedText = "This chat is not linked to an account yet.\n" +
	"Generate a link on the website and open it to connect."

// resolveUser maps the telegram sender to an application user
func (b *Bot) resolveUser(ctx context.Context, msg *tgbotapi.Message) (*domain.User, error) {
	return b.authService.ResolveTelegram(ctx, msg.From.ID)
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	// A deep link passes the token as the command argument
	token := strings.TrimSpace(msg.CommandArguments())

	if token != "" {
		user, err := b.linkService.CompleteLink(ctx, token, msg.From.ID)
		switch {
		case errors.Is(err, domain.ErrLinkTokenNotFound):
			return "This link is invalid. Generate a new one on the website.", nil
		case errors.Is(err, domain.ErrLinkTokenExpired):
			return "This link has expired. Generate a new one on the website.", nil
		case err != nil:
			return "", err
		}
		return fmt.Sprintf("Welcome, %s! Your account is now linked.\n\n%s", user.Username, helpText), nil
	}

	user, err := b.resolveUser(ctx, msg)
	if errors.Is(err, domain.ErrNotLinked) {
		return notLinkedText, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Welcome back, %s!\n\n%s", user.Username, helpText), nil
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	user, err := b.resolveUser(ctx, msg)
	if errors.Is(err, domain.ErrNotLinked) {
		return notLinkedText, nil
	}
	if err != nil {
		return "", err
	}

	income, expense, err := b.transactionService.DayTotals(ctx, user.ID, time.Now())
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Today:\nIncome: %s\nSpent: %s",
		service.FormatMoney(income), service.FormatMoney(expense)), nil
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	user, err := b.resolveUser(ctx, msg)
	if errors.Is(err, domain.ErrNotLinked) {
		return notLinkedText, nil
	}
	if err != nil {
		return "", err
	}

	expense, err := b.transactionService.WeekExpenses(ctx, user.ID, time.Now())
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Spent over the last 7 days: %s", service.FormatMoney(expense)), nil
}

func (b *Bot) handleMonth(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	user, err := b.resolveUser(ctx, msg)
	if errors.Is(err, domain.ErrNotLinked) {
		return notLinkedText, nil
	}
	if err != nil {
		return "", err
	}

	now := time.Now()
	report, err := b.analysisService.ComputeReport(ctx, user.ID, domain.MonthOf(now), now)
	if err != nil {
		return "", err
	}

	return formatReport(report), nil
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	user, err := b.resolveUser(ctx, msg)
	if errors.Is(err, domain.ErrNotLinked) {
		return notLinkedText, nil
	}
	if err != nil {
		return "", err
	}

	amount, categoryName, description, parseErr := parseAddArgs(msg.CommandArguments())
	if parseErr != nil {
		return "Usage: /add <amount> <category> [description]\nExample: /add 500 Food lunch", nil
	}

	transaction, category, err := b.transactionService.CreateByCategoryName(ctx, user.ID, amount, time.Now().UTC(), categoryName, description)
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "The amount must be greater than zero.", nil
	case errors.Is(err, domain.ErrCategoryNotFound):
		return b.unknownCategoryText(ctx, user.ID, categoryName), nil
	case err != nil:
		return "", err
	}

	kind := "Expense"
	if category.IsIncome {
		kind = "Income"
	}
	return fmt.Sprintf("%s recorded: %s, %s", kind, service.FormatMoney(transaction.Amount), category.Name), nil
}

func (b *Bot) handleNewCategory(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	user, err := b.resolveUser(ctx, msg)
	if errors.Is(err, domain.ErrNotLinked) {
		return notLinkedText, nil
	}
	if err != nil {
		return "", err
	}

	name, isIncome, parseErr := parseNewCategoryArgs(msg.CommandArguments())
	if parseErr != nil {
		return "Usage: /newcategory <name> [income]\nExample: /newcategory Transport", nil
	}

	category, err := b.categoryService.Create(ctx, user.ID, name, isIncome, nil)
	switch {
	case errors.Is(err, domain.ErrCategoryExists):
		return fmt.Sprintf("You already have a category named %q.", name), nil
	case errors.Is(err, domain.ErrNameRequired), errors.Is(err, domain.ErrNameTooLong):
		return "Category names must be between 1 and 50 characters.", nil
	case err != nil:
		return "", err
	}

	return fmt.Sprintf("Category %q created.", category.Name), nil
}

func (b *Bot) handleBudget(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	user, err := b.resolveUser(ctx, msg)
	if errors.Is(err, domain.ErrNotLinked) {
		return notLinkedText, nil
	}
	if err != nil {
		return "", err
	}

	plannedIncome, plannedExpense, parseErr := parseBudgetArgs(msg.CommandArguments())
	if parseErr != nil {
		return "Usage: /budget <income> <expense>\nExample: /budget 50000 35000", nil
	}

	now := time.Now()
	month := domain.MonthOf(now)
	if _, err := b.budgetService.Set(ctx, user.ID, month, plannedIncome, plannedExpense); err != nil {
		if errors.Is(err, domain.ErrInvalidBudget) {
			return "Income and expense must not be negative.", nil
		}
		return "", err
	}

	report, err := b.analysisService.ComputeReport(ctx, user.ID, month, now)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Budget for %s saved: income %s, expense %s.\n\nBudget analysis:\n%s",
		month,
		service.FormatMoney(plannedIncome),
		service.FormatMoney(plannedExpense),
		strings.Join(report.Recommendations, "\n")), nil
}

func (b *Bot) handleRecommendations(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	user, err := b.resolveUser(ctx, msg)
	if errors.Is(err, domain.ErrNotLinked) {
		return notLinkedText, nil
	}
	if err != nil {
		return "", err
	}

	now := time.Now()
	report, err := b.analysisService.ComputeReport(ctx, user.ID, domain.MonthOf(now), now)
	if err != nil {
		return "", err
	}

	return strings.Join(report.Recommendations, "\n"), nil
}

// unknownCategoryText reports a missing category and lists what the user has
func (b *Bot) unknownCategoryText(ctx context.Context, userID uuid.UUID, name string) string {
	categories, err := b.categoryService.List(ctx, userID)
	if err != nil || len(categories) == 0 {
		return fmt.Sprintf("You have no category named %q. Create it with /newcategory.", name)
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("You have no category named %q.\nYour categories: %s",
		name, strings.Join(names, ", "))
}

// formatReport renders the month report for chat
func formatReport(report *domain.BudgetReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Report for %s:\n", report.Month)
	fmt.Fprintf(&sb, "Income: %s\n", service.FormatMoney(report.TotalIncome))
	fmt.Fprintf(&sb, "Spent: %s\n", service.FormatMoney(report.TotalExpense))

	if report.HasBudget {
		fmt.Fprintf(&sb, "Planned income: %s\n", service.FormatMoney(report.PlannedIncome))
		fmt.Fprintf(&sb, "Planned expense: %s\n", service.FormatMoney(report.PlannedExpense))
	}
	if report.HasProjection {
		fmt.Fprintf(&sb, "Projected month-end spending: %s\n", service.FormatMoney(report.ProjectedExpense))
	}

	if len(report.TopCategories) > 0 {
		sb.WriteString("\nTop spending categories:\n")
		for i, ct := range report.TopCategories {
			fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, ct.Name, service.FormatMoney(ct.Total))
		}
	}

	if len(report.Recommendations) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(report.Recommendations, "\n"))
	}

	return sb.String()
}

// parseAddArgs parses "/add <amount> <category> [description]" arguments
func parseAddArgs(args string) (decimal.Decimal, string, string, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return decimal.Decimal{}, "", "", errors.New("amount and category are required")
	}

	amount, err := decimal.NewFromString(fields[0])
	if err != nil {
		return decimal.Decimal{}, "", "", fmt.Errorf("invalid amount: %w", err)
	}

	category := fields[1]
	description := strings.Join(fields[2:], " ")
	return amount, category, description, nil
}

// parseNewCategoryArgs parses "/newcategory <name> [income|expense]"
// arguments. Without a trailing type keyword the category is an expense.
func parseNewCategoryArgs(args string) (string, bool, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", false, errors.New("name is required")
	}

	kind := strings.ToLower(fields[len(fields)-1])
	if kind == "income" || kind == "expense" {
		fields = fields[:len(fields)-1]
		if len(fields) == 0 {
			return "", false, errors.New("name is required")
		}
		return strings.Join(fields, " "), kind == "income", nil
	}

	return strings.Join(fields, " "), false, nil
}

// parseBudgetArgs parses "/budget <income> <expense>" arguments
func parseBudgetArgs(args string) (decimal.Decimal, decimal.Decimal, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return decimal.Decimal{}, decimal.Decimal{}, errors.New("income and expense are required")
	}

	income, err := decimal.NewFromString(fields[0])
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("invalid income: %w", err)
	}
	expense, err := decimal.NewFromString(fields[1])
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("invalid expense: %w", err)
	}
	return income, expense, nil
}
