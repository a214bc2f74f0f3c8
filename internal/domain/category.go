package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Category groups transactions and carries their monetary polarity:
// a transaction is income or expense depending on its category.
type Category struct {
	ID       int32     `json:"id"`
	UserID   uuid.UUID `json:"userId"`
	Name     string    `json:"name"`
	IsIncome bool      `json:"isIncome"`
	ParentID *int32    `json:"parentId,omitempty"`
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Category, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	Delete(ctx context.Context, userID uuid.UUID, id int32) error
	HasTransactions(ctx context.Context, userID uuid.UUID, id int32) (bool, error)
}

// CategoryIndex resolves category names case-insensitively. It is built once
// per request from the user's category list so lookups never compare
// per-row inside loops.
type CategoryIndex struct {
	byFoldedName map[string]*Category
}

// NewCategoryIndex builds a case-folded name index over the given categories
func NewCategoryIndex(categories []*Category) *CategoryIndex {
	idx := &CategoryIndex{byFoldedName: make(map[string]*Category, len(categories))}
	for _, c := range categories {
		idx.byFoldedName[foldName(c.Name)] = c
	}
	return idx
}

// Find returns the category whose name equals the given name under case-folding
func (idx *CategoryIndex) Find(name string) (*Category, bool) {
	c, ok := idx.byFoldedName[foldName(name)]
	return c, ok
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
