package sqlstore

import (
	"time"

	"github.com/marsone/crew-api/internal/core/domain"
)

type userModel struct {
	ID             int64  `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	Surname        *string
	Age            *int
	Position       *string
	Speciality     *string
	Address        *string
	CityFrom       *string
	Email          string `gorm:"size:255;not null;uniqueIndex"`
	HashedPassword string `gorm:"not null"`
	ModifiedDate   time.Time
}

func (userModel) TableName() string { return "users" }

type categoryModel struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (categoryModel) TableName() string { return "categories" }

type jobModel struct {
	ID            int64     `gorm:"primaryKey"`
	TeamLeaderID  int64     `gorm:"not null;index"`
	TeamLeader    userModel `gorm:"foreignKey:TeamLeaderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Job           string    `gorm:"not null"`
	WorkSize      *int
	Collaborators *string
	StartDate     *time.Time
	EndDate       *time.Time
	IsFinished    bool            `gorm:"not null;default:false"`
	Categories    []categoryModel `gorm:"many2many:job_categories;joinForeignKey:JobID;joinReferences:CategoryID"`
}

func (jobModel) TableName() string { return "jobs" }

// jobCategoryModel is the association row. The composite key keeps a category
// from being linked to the same job twice.
type jobCategoryModel struct {
	JobID      int64 `gorm:"primaryKey;autoIncrement:false"`
	CategoryID int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (jobCategoryModel) TableName() string { return "job_categories" }

func fromDomainUser(u *domain.User) userModel {
	return userModel{
		ID:             u.ID,
		Name:           u.Name,
		Surname:        u.Surname,
		Age:            u.Age,
		Position:       u.Position,
		Speciality:     u.Speciality,
		Address:        u.Address,
		CityFrom:       u.CityFrom,
		Email:          u.Email,
		HashedPassword: u.PasswordHash,
		ModifiedDate:   u.ModifiedDate.UTC(),
	}
}

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Surname:      m.Surname,
		Age:          m.Age,
		Position:     m.Position,
		Speciality:   m.Speciality,
		Address:      m.Address,
		CityFrom:     m.CityFrom,
		Email:        m.Email,
		PasswordHash: m.HashedPassword,
		ModifiedDate: m.ModifiedDate.UTC(),
	}
}

func fromDomainJob(j *domain.Job) jobModel {
	return jobModel{
		ID:            j.ID,
		TeamLeaderID:  j.TeamLeaderID,
		Job:           j.Title,
		WorkSize:      j.WorkSize,
		Collaborators: j.Collaborators,
		StartDate:     utcPtr(j.StartDate),
		EndDate:       utcPtr(j.EndDate),
		IsFinished:    j.IsFinished,
	}
}

func (m jobModel) toDomain() domain.Job {
	job := domain.Job{
		ID:            m.ID,
		TeamLeaderID:  m.TeamLeaderID,
		Title:         m.Job,
		WorkSize:      m.WorkSize,
		Collaborators: m.Collaborators,
		StartDate:     utcPtr(m.StartDate),
		EndDate:       utcPtr(m.EndDate),
		IsFinished:    m.IsFinished,
		Categories:    make([]domain.Category, 0, len(m.Categories)),
	}
	for _, c := range m.Categories {
		job.Categories = append(job.Categories, c.toDomain())
	}
	return job
}

func (m categoryModel) toDomain() domain.Category {
	return domain.Category{ID: m.ID, Name: m.Name}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
