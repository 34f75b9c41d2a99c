package ports

import (
	"context"

	"github.com/marsone/crew-api/internal/core/domain"
)

// UserRepository defines persistence operations for users.
// Lookups return domain.ErrNotFound when no row matches.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// JobRepository defines persistence operations for jobs and their category links.
type JobRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
	// Create inserts the job and links it to job.Categories by id.
	Create(ctx context.Context, job *domain.Job) error
	// Update writes the scalar fields only; category links are left untouched.
	Update(ctx context.Context, job *domain.Job) error
	// ReplaceCategories discards the job's current links and installs categoryIDs.
	ReplaceCategories(ctx context.Context, jobID int64, categoryIDs []int64) error
	// Delete removes the job and its category links.
	Delete(ctx context.Context, id int64) error
	CountByLeader(ctx context.Context, userID int64) (int64, error)
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
}
