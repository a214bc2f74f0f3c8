package service

import (
	"context"
	"strings"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/google/uuid"
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// Create creates a category. Names are unique per user under case-folding.
func (s *CategoryService) Create(ctx context.Context, userID uuid.UUID, name string, isIncome bool, parentID *int32) (*domain.Category, error) {
	name, err := s.validateName(name)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(ctx, userID, name, 0); err != nil {
		return nil, err
	}

	if parentID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, userID, *parentID); err != nil {
			return nil, domain.ErrCategoryNotFound
		}
	}

	return s.categoryRepo.Create(ctx, &domain.Category{
		UserID:   userID,
		Name:     name,
		IsIncome: isIncome,
		ParentID: parentID,
	})
}

// List returns all of the user's categories
func (s *CategoryService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	return s.categoryRepo.GetAllByUser(ctx, userID)
}

// Update renames a category or flips its polarity
func (s *CategoryService) Update(ctx context.Context, userID uuid.UUID, id int32, name string, isIncome bool) (*domain.Category, error) {
	name, err := s.validateName(name)
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, domain.ErrCategoryNotFound
	}

	if err := s.ensureNameFree(ctx, userID, name, id); err != nil {
		return nil, err
	}

	category.Name = name
	category.IsIncome = isIncome
	return s.categoryRepo.Update(ctx, category)
}

// Delete removes a category that has no transactions
func (s *CategoryService) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	if _, err := s.categoryRepo.GetByID(ctx, userID, id); err != nil {
		return domain.ErrCategoryNotFound
	}

	inUse, err := s.categoryRepo.HasTransactions(ctx, userID, id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrCategoryInUse
	}

	return s.categoryRepo.Delete(ctx, userID, id)
}

func (s *CategoryService) validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}

// ensureNameFree enforces per-user case-insensitive uniqueness using the
// folded-name index. excludeID skips the category being renamed.
func (s *CategoryService) ensureNameFree(ctx context.Context, userID uuid.UUID, name string, excludeID int32) error {
	categories, err := s.categoryRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return err
	}

	if existing, ok := domain.NewCategoryIndex(categories).Find(name); ok && existing.ID != excludeID {
		return domain.ErrCategoryExists
	}
	return nil
}
