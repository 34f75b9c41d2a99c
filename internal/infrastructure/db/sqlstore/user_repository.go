package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/marsone/crew-api/internal/core/domain"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate("find user", err)
	}
	u := m.toDomain()
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, translate("find user by email", err)
	}
	u := m.toDomain()
	return &u, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var rows []userModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate("list users", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		users = append(users, m.toDomain())
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	m := fromDomainUser(u)
	m.ID = 0
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate("create user", err)
	}
	u.ID = m.ID
	return nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	m := fromDomainUser(u)
	err := r.db.WithContext(ctx).Model(&userModel{ID: u.ID}).Updates(map[string]any{
		"name":            m.Name,
		"surname":         m.Surname,
		"age":             m.Age,
		"position":        m.Position,
		"speciality":      m.Speciality,
		"address":         m.Address,
		"city_from":       m.CityFrom,
		"email":           m.Email,
		"hashed_password": m.HashedPassword,
		"modified_date":   m.ModifiedDate,
	}).Error
	return translate("update user", err)
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&userModel{}, id)
	if res.Error != nil {
		return translate("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("delete user", gorm.ErrRecordNotFound)
	}
	return nil
}
