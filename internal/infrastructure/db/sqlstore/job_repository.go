package sqlstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marsone/crew-api/internal/core/domain"
)

type jobRepository struct {
	db *gorm.DB
}

func (r *jobRepository) withCategories(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Categories", func(db *gorm.DB) *gorm.DB {
		return db.Order("categories.id")
	})
}

func (r *jobRepository) FindByID(ctx context.Context, id int64) (*domain.Job, error) {
	var m jobModel
	if err := r.withCategories(ctx).First(&m, id).Error; err != nil {
		return nil, translate("find job", err)
	}
	job := m.toDomain()
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context) ([]domain.Job, error) {
	var rows []jobModel
	if err := r.withCategories(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate("list jobs", err)
	}
	jobs := make([]domain.Job, 0, len(rows))
	for _, m := range rows {
		jobs = append(jobs, m.toDomain())
	}
	return jobs, nil
}

// Create inserts the job row, then one association row per category.
func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	m := fromDomainJob(job)
	m.ID = 0
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return translate("create job", err)
	}
	job.ID = m.ID

	ids := make([]int64, 0, len(job.Categories))
	for _, c := range job.Categories {
		ids = append(ids, c.ID)
	}
	return r.link(ctx, job.ID, ids)
}

func (r *jobRepository) Update(ctx context.Context, job *domain.Job) error {
	m := fromDomainJob(job)
	err := r.db.WithContext(ctx).Model(&jobModel{ID: job.ID}).Omit(clause.Associations).Updates(map[string]any{
		"team_leader_id": m.TeamLeaderID,
		"job":            m.Job,
		"work_size":      m.WorkSize,
		"collaborators":  m.Collaborators,
		"start_date":     m.StartDate,
		"end_date":       m.EndDate,
		"is_finished":    m.IsFinished,
	}).Error
	return translate("update job", err)
}

func (r *jobRepository) ReplaceCategories(ctx context.Context, jobID int64, categoryIDs []int64) error {
	if err := r.unlink(ctx, jobID); err != nil {
		return err
	}
	return r.link(ctx, jobID, categoryIDs)
}

func (r *jobRepository) Delete(ctx context.Context, id int64) error {
	if err := r.unlink(ctx, id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&jobModel{}, id)
	if res.Error != nil {
		return translate("delete job", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("delete job", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *jobRepository) CountByLeader(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&jobModel{}).Where("team_leader_id = ?", userID).Count(&n).Error
	return n, translate("count jobs by leader", err)
}

func (r *jobRepository) link(ctx context.Context, jobID int64, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]jobCategoryModel, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		rows = append(rows, jobCategoryModel{JobID: jobID, CategoryID: id})
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	return translate("link job categories", err)
}

func (r *jobRepository) unlink(ctx context.Context, jobID int64) error {
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Delete(&jobCategoryModel{}).Error
	return translate("unlink job categories", err)
}
