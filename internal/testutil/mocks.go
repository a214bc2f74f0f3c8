package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is an in-memory implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[uuid.UUID]*domain.User)}
}

// AddUser seeds a user, assigning an id if missing
func (m *MockUserRepository) AddUser(user *domain.User) *domain.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.Users[user.ID] = user
	return user
}

func (m *MockUserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range m.Users {
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	m.Users[user.ID] = user
	return user, nil
}

func (m *MockUserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByTelegramID(_ context.Context, telegramID int64) (*domain.User, error) {
	for _, u := range m.Users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) LinkTelegram(_ context.Context, id uuid.UUID, telegramID int64) (*domain.User, error) {
	user, ok := m.Users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.TelegramID = &telegramID
	user.TelegramLinked = true
	return user, nil
}

func (m *MockUserRepository) SetDailyReport(_ context.Context, id uuid.UUID, enabled bool) error {
	user, ok := m.Users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.SendDailyReport = enabled
	return nil
}

func (m *MockUserRepository) GetDigestRecipients(_ context.Context) ([]*domain.User, error) {
	var recipients []*domain.User
	for _, u := range m.Users {
		if u.TelegramLinked && u.SendDailyReport {
			recipients = append(recipients, u)
		}
	}
	sort.Slice(recipients, func(i, j int) bool {
		return recipients[i].Username < recipients[j].Username
	})
	return recipients, nil
}

// MockCategoryRepository is an in-memory implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories []*domain.Category
	InUse      map[int32]bool
	nextID     int32
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{InUse: make(map[int32]bool)}
}

// AddCategory seeds a category, assigning an id if missing
func (m *MockCategoryRepository) AddCategory(category *domain.Category) *domain.Category {
	if category.ID == 0 {
		m.nextID++
		category.ID = m.nextID
	} else if category.ID > m.nextID {
		m.nextID = category.ID
	}
	m.Categories = append(m.Categories, category)
	return category
}

func (m *MockCategoryRepository) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	m.nextID++
	category.ID = m.nextID
	m.Categories = append(m.Categories, category)
	return category, nil
}

func (m *MockCategoryRepository) GetByID(_ context.Context, userID uuid.UUID, id int32) (*domain.Category, error) {
	for _, c := range m.Categories {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (m *MockCategoryRepository) GetAllByUser(_ context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, c := range m.Categories {
		if c.UserID == userID {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (m *MockCategoryRepository) Update(_ context.Context, category *domain.Category) (*domain.Category, error) {
	for i, c := range m.Categories {
		if c.ID == category.ID && c.UserID == category.UserID {
			m.Categories[i] = category
			return category, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (m *MockCategoryRepository) Delete(_ context.Context, userID uuid.UUID, id int32) error {
	for i, c := range m.Categories {
		if c.ID == id && c.UserID == userID {
			m.Categories = append(m.Categories[:i], m.Categories[i+1:]...)
			return nil
		}
	}
	return domain.ErrCategoryNotFound
}

func (m *MockCategoryRepository) HasTransactions(_ context.Context, _ uuid.UUID, id int32) (bool, error) {
	return m.InUse[id], nil
}

// MockTransactionRepository is an in-memory implementation of
// domain.TransactionRepository. SumRange resolves polarity through the
// Categories map, which tests populate alongside the category repository.
type MockTransactionRepository struct {
	Transactions []*domain.Transaction
	Categories   map[int32]*domain.Category
	nextID       int64
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{Categories: make(map[int32]*domain.Category)}
}

// AddTransaction seeds a transaction, assigning an id if missing
func (m *MockTransactionRepository) AddTransaction(t *domain.Transaction) *domain.Transaction {
	if t.ID == 0 {
		m.nextID++
		t.ID = m.nextID
	}
	m.Transactions = append(m.Transactions, t)
	return t
}

func (m *MockTransactionRepository) Create(_ context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Now()
	m.Transactions = append(m.Transactions, t)
	return t, nil
}

func (m *MockTransactionRepository) GetByID(_ context.Context, userID uuid.UUID, id int64) (*domain.Transaction, error) {
	for _, t := range m.Transactions {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTransactionRepository) GetByUser(_ context.Context, userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	var matches []*domain.Transaction
	for _, t := range m.Transactions {
		if t.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.From != nil && t.Date.Before(*filters.From) {
				continue
			}
			if filters.To != nil && !t.Date.Before(*filters.To) {
				continue
			}
			if filters.CategoryID != nil && t.CategoryID != *filters.CategoryID {
				continue
			}
		}
		matches = append(matches, t)
	}

	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
		}
	}

	totalItems := int64(len(matches))
	totalPages := int32((totalItems + int64(pageSize) - 1) / int64(pageSize))
	start := int((page - 1) * pageSize)
	if start > len(matches) {
		start = len(matches)
	}
	end := start + int(pageSize)
	if end > len(matches) {
		end = len(matches)
	}

	return &domain.PaginatedTransactions{
		Data:       matches[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

func (m *MockTransactionRepository) ListRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Transaction, error) {
	var matches []*domain.Transaction
	for _, t := range m.Transactions {
		if t.UserID == userID && !t.Date.Before(from) && t.Date.Before(to) {
			matches = append(matches, t)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Date.Equal(matches[j].Date) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Date.Before(matches[j].Date)
	})
	return matches, nil
}

func (m *MockTransactionRepository) SumRange(_ context.Context, userID uuid.UUID, from, to time.Time, isIncome bool) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range m.Transactions {
		if t.UserID != userID || t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		category, ok := m.Categories[t.CategoryID]
		if !ok || category.IsIncome != isIncome {
			continue
		}
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

func (m *MockTransactionRepository) Delete(_ context.Context, userID uuid.UUID, id int64) error {
	for i, t := range m.Transactions {
		if t.ID == id && t.UserID == userID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// MockMonthlyBudgetRepository is an in-memory implementation of
// domain.MonthlyBudgetRepository
type MockMonthlyBudgetRepository struct {
	Budgets map[string]*domain.MonthlyBudget
	nextID  int32
}

// NewMockMonthlyBudgetRepository creates a new MockMonthlyBudgetRepository
func NewMockMonthlyBudgetRepository() *MockMonthlyBudgetRepository {
	return &MockMonthlyBudgetRepository{Budgets: make(map[string]*domain.MonthlyBudget)}
}

func budgetKey(userID uuid.UUID, month domain.Month) string {
	return userID.String() + "/" + month.String()
}

// AddBudget seeds a budget row
func (m *MockMonthlyBudgetRepository) AddBudget(budget *domain.MonthlyBudget) *domain.MonthlyBudget {
	if budget.ID == 0 {
		m.nextID++
		budget.ID = m.nextID
	}
	m.Budgets[budgetKey(budget.UserID, budget.Month)] = budget
	return budget
}

func (m *MockMonthlyBudgetRepository) Get(_ context.Context, userID uuid.UUID, month domain.Month) (*domain.MonthlyBudget, error) {
	if b, ok := m.Budgets[budgetKey(userID, month)]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockMonthlyBudgetRepository) GetOrCreate(_ context.Context, userID uuid.UUID, month domain.Month) (*domain.MonthlyBudget, error) {
	key := budgetKey(userID, month)
	if b, ok := m.Budgets[key]; ok {
		return b, nil
	}
	m.nextID++
	b := &domain.MonthlyBudget{
		ID:             m.nextID,
		UserID:         userID,
		Month:          month,
		PlannedIncome:  decimal.Zero,
		PlannedExpense: decimal.Zero,
		CreatedAt:      time.Now(),
	}
	m.Budgets[key] = b
	return b, nil
}

func (m *MockMonthlyBudgetRepository) Upsert(_ context.Context, userID uuid.UUID, month domain.Month, plannedIncome, plannedExpense decimal.Decimal) (*domain.MonthlyBudget, error) {
	key := budgetKey(userID, month)
	if b, ok := m.Budgets[key]; ok {
		b.PlannedIncome = plannedIncome
		b.PlannedExpense = plannedExpense
		b.UpdatedAt = time.Now()
		return b, nil
	}
	m.nextID++
	b := &domain.MonthlyBudget{
		ID:             m.nextID,
		UserID:         userID,
		Month:          month,
		PlannedIncome:  plannedIncome,
		PlannedExpense: plannedExpense,
		CreatedAt:      time.Now(),
	}
	m.Budgets[key] = b
	return b, nil
}

func (m *MockMonthlyBudgetRepository) History(_ context.Context, userID uuid.UUID, upTo domain.Month, limit int32) ([]*domain.MonthlyBudget, error) {
	var history []*domain.MonthlyBudget
	for _, b := range m.Budgets {
		if b.UserID == userID && b.Month.String() <= upTo.String() {
			history = append(history, b)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Month.String() > history[j].Month.String()
	})
	if int32(len(history)) > limit {
		history = history[:limit]
	}
	return history, nil
}

// MockLinkTokenRepository is an in-memory implementation of
// domain.TelegramLinkTokenRepository
type MockLinkTokenRepository struct {
	Tokens map[uuid.UUID]*domain.TelegramLinkToken
}

// NewMockLinkTokenRepository creates a new MockLinkTokenRepository
func NewMockLinkTokenRepository() *MockLinkTokenRepository {
	return &MockLinkTokenRepository{Tokens: make(map[uuid.UUID]*domain.TelegramLinkToken)}
}

func (m *MockLinkTokenRepository) Replace(_ context.Context, userID uuid.UUID, token string) (*domain.TelegramLinkToken, error) {
	t := &domain.TelegramLinkToken{UserID: userID, Token: token, CreatedAt: time.Now()}
	m.Tokens[userID] = t
	return t, nil
}

func (m *MockLinkTokenRepository) GetByToken(_ context.Context, token string) (*domain.TelegramLinkToken, error) {
	for _, t := range m.Tokens {
		if t.Token == token {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockLinkTokenRepository) Delete(_ context.Context, userID uuid.UUID) error {
	delete(m.Tokens, userID)
	return nil
}

// SentMessage records one delivery made through MockMessageSender
type SentMessage struct {
	ChatID int64
	Text   string
}

// MockMessageSender records sent messages and can fail for chosen chats
type MockMessageSender struct {
	mu      sync.Mutex
	Sent    []SentMessage
	FailFor map[int64]error
}

// NewMockMessageSender creates a new MockMessageSender
func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{FailFor: make(map[int64]error)}
}

// SendMessage implements service.MessageSender
func (m *MockMessageSender) SendMessage(chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[chatID]; ok {
		return err
	}
	m.Sent = append(m.Sent, SentMessage{ChatID: chatID, Text: text})
	return nil
}

// SentTo returns the messages delivered to a chat
func (m *MockMessageSender) SentTo(chatID int64) []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var msgs []SentMessage
	for _, s := range m.Sent {
		if s.ChatID == chatID {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
