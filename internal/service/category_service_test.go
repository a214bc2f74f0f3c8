package service

import (
	"context"
	"strings"
	"testing"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestCreateCategory_Success(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)
	userID := uuid.New()

	category, err := categoryService.Create(context.Background(), userID, "Groceries", false, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if category.Name != "Groceries" {
		t.Errorf("Expected name 'Groceries', got %s", category.Name)
	}
	if category.IsIncome {
		t.Error("Expected an expense category")
	}
	if category.UserID != userID {
		t.Errorf("Expected user %s, got %s", userID, category.UserID)
	}
}

func TestCreateCategory_EmptyName(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())

	_, err := categoryService.Create(context.Background(), uuid.New(), "   ", false, nil)
	if err != domain.ErrNameRequired {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}
}

func TestCreateCategory_NameTooLong(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())

	_, err := categoryService.Create(context.Background(), uuid.New(), strings.Repeat("a", domain.MaxCategoryNameLength+1), false, nil)
	if err != domain.ErrNameTooLong {
		t.Errorf("Expected ErrNameTooLong, got %v", err)
	}
}

func TestCreateCategory_DuplicateNameCaseInsensitive(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())
	userID := uuid.New()

	if _, err := categoryService.Create(context.Background(), userID, "Food", false, nil); err != nil {
		t.Fatalf("Expected no error for first create, got %v", err)
	}

	_, err := categoryService.Create(context.Background(), userID, "fOOd", false, nil)
	if err != domain.ErrCategoryExists {
		t.Errorf("Expected ErrCategoryExists for case-folded duplicate, got %v", err)
	}
}

func TestCreateCategory_SameNameDifferentUsers(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())

	if _, err := categoryService.Create(context.Background(), uuid.New(), "Food", false, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := categoryService.Create(context.Background(), uuid.New(), "Food", false, nil); err != nil {
		t.Errorf("Expected no conflict across users, got %v", err)
	}
}

func TestUpdateCategory_KeepOwnNameOnRename(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())
	userID := uuid.New()

	category, err := categoryService.Create(context.Background(), userID, "Food", false, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Renaming to its own name (different case) must not trip uniqueness
	updated, err := categoryService.Update(context.Background(), userID, category.ID, "FOOD", false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.Name != "FOOD" {
		t.Errorf("Expected renamed category, got %s", updated.Name)
	}
}

func TestDeleteCategory_InUse(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)
	userID := uuid.New()

	category, err := categoryService.Create(context.Background(), userID, "Food", false, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	categoryRepo.InUse[category.ID] = true

	if err := categoryService.Delete(context.Background(), userID, category.ID); err != domain.ErrCategoryInUse {
		t.Errorf("Expected ErrCategoryInUse, got %v", err)
	}
}

func TestDeleteCategory_OtherUsersCategory(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())
	owner := uuid.New()

	category, err := categoryService.Create(context.Background(), owner, "Food", false, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := categoryService.Delete(context.Background(), uuid.New(), category.ID); err != domain.ErrCategoryNotFound {
		t.Errorf("Expected ErrCategoryNotFound for a foreign category, got %v", err)
	}
}
