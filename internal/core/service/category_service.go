package service

import (
	"context"
	"fmt"

	"github.com/marsone/crew-api/internal/core/domain"
	"github.com/marsone/crew-api/internal/core/ports"
)

const categoryResource = "categories"

// CategoryService implements ports.CategoryService.
type CategoryService struct {
	tx   ports.Transactor
	opts Options
}

func NewCategoryService(tx ports.Transactor, opts Options) *CategoryService {
	return &CategoryService{tx: tx, opts: opts}
}

func (s *CategoryService) List(ctx context.Context) ([]ports.CategorySummary, error) {
	var out []ports.CategorySummary
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		categories, err := uow.Categories().List(ctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		out = make([]ports.CategorySummary, 0, len(categories))
		for _, c := range categories {
			out = append(out, ports.CategorySummary{ID: c.ID, Name: c.Name})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*ports.CategorySummary, error) {
	var out ports.CategorySummary
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		c, err := uow.Categories().FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "category", id)
		}
		out = ports.CategorySummary{ID: c.ID, Name: c.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new category. Names are not required to be unique.
func (s *CategoryService) Create(ctx context.Context, name string) (*ports.CategorySummary, error) {
	c := &domain.Category{Name: name}
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		if err := uow.Categories().Create(ctx, c); err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.opts.audit(ctx, categoryResource, c.ID, domain.AuditCreate, nil)
	s.opts.Logger.Info().Int64("category_id", c.ID).Msg("category created")
	return &ports.CategorySummary{ID: c.ID, Name: c.Name}, nil
}
