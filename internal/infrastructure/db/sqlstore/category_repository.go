package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/marsone/crew-api/internal/core/domain"
)

type categoryRepository struct {
	db *gorm.DB
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	var m categoryModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate("find category", err)
	}
	c := m.toDomain()
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate("list categories", err)
	}
	out := make([]domain.Category, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	m := categoryModel{Name: c.Name}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate("create category", err)
	}
	c.ID = m.ID
	return nil
}
