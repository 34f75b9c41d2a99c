package ports

import "context"

// CategoryService defines the category resource operations.
type CategoryService interface {
	List(ctx context.Context) ([]CategorySummary, error)
	Get(ctx context.Context, id int64) (*CategorySummary, error)
	Create(ctx context.Context, name string) (*CategorySummary, error)
}
