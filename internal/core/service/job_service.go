package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/marsone/crew-api/internal/core/domain"
	"github.com/marsone/crew-api/internal/core/ports"
)

const jobResource = "jobs"

// JobService implements ports.JobService. Every call runs in its own unit of work.
type JobService struct {
	tx   ports.Transactor
	opts Options
}

func NewJobService(tx ports.Transactor, opts Options) *JobService {
	return &JobService{tx: tx, opts: opts}
}

// List returns every job ordered by id. An empty slice is a valid result.
func (s *JobService) List(ctx context.Context) ([]ports.JobView, error) {
	var views []ports.JobView
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		jobs, err := uow.Jobs().List(ctx)
		if err != nil {
			return fmt.Errorf("list jobs: %w", err)
		}
		views = make([]ports.JobView, 0, len(jobs))
		for i := range jobs {
			views = append(views, toJobView(&jobs[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *JobService) Get(ctx context.Context, id int64) (*ports.JobView, error) {
	var view ports.JobView
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		job, err := uow.Jobs().FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "job", id)
		}
		view = toJobView(job)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Create resolves the team leader and every category before inserting. A
// missing reference aborts the whole unit of work, so no job row survives.
// When an idempotency key was already used, the earlier job is returned.
func (s *JobService) Create(ctx context.Context, in ports.CreateJobInput) (*ports.CreateJobResult, error) {
	var earlier *ports.JobView
	replayed, settle, err := s.opts.claimKey(ctx, jobResource, in.IdempotencyKey, func(id int64) error {
		view, err := s.Get(ctx, id)
		earlier = view
		return err
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		s.opts.Logger.Info().Str("idempotency_key", in.IdempotencyKey).Int64("job_id", earlier.ID).Msg("idempotent replay")
		return &ports.CreateJobResult{Job: *earlier, AlreadyExisted: true}, nil
	}

	var view ports.JobView
	err = s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		if err := checkLeader(ctx, uow, in.TeamLeaderID); err != nil {
			return err
		}
		categories, err := resolveCategories(ctx, uow, in.CategoryIDs)
		if err != nil {
			return err
		}

		job := &domain.Job{
			TeamLeaderID:  in.TeamLeaderID,
			Title:         in.Job,
			WorkSize:      in.WorkSize,
			Collaborators: in.Collaborators,
			StartDate:     in.StartDate,
			EndDate:       in.EndDate,
			IsFinished:    in.IsFinished,
			Categories:    categories,
		}
		if job.StartDate == nil {
			now := s.opts.now()
			job.StartDate = &now
		}
		if err := uow.Jobs().Create(ctx, job); err != nil {
			return fmt.Errorf("create job: %w", err)
		}
		view = toJobView(job)
		return nil
	})
	if err != nil {
		settle(0)
		return nil, err
	}

	settle(view.ID)
	s.opts.audit(ctx, jobResource, view.ID, domain.AuditCreate, nil)
	s.opts.Logger.Info().Int64("job_id", view.ID).Int64("team_leader_id", view.TeamLeaderID).Msg("job created")

	return &ports.CreateJobResult{Job: view}, nil
}

// Replace applies the fields present in patch. All references are resolved
// before anything is written; any failure rolls back the unit of work and
// leaves the stored job untouched.
func (s *JobService) Replace(ctx context.Context, id int64, patch ports.JobPatch) (*ports.JobView, error) {
	var view ports.JobView
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		job, err := uow.Jobs().FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "job", id)
		}

		if leaderID, ok := patch.TeamLeaderID.Value(); ok {
			if err := checkLeader(ctx, uow, leaderID); err != nil {
				return err
			}
			job.TeamLeaderID = leaderID
		}

		var categories []domain.Category
		ids, replaceCategories := patch.CategoryIDs.Value()
		if replaceCategories {
			if categories, err = resolveCategories(ctx, uow, ids); err != nil {
				return err
			}
		}

		applyJobPatch(job, patch)

		if err := uow.Jobs().Update(ctx, job); err != nil {
			return fmt.Errorf("update job: %w", err)
		}
		if replaceCategories {
			if err := uow.Jobs().ReplaceCategories(ctx, id, ids); err != nil {
				return fmt.Errorf("replace job categories: %w", err)
			}
			job.Categories = categories
		}
		view = toJobView(job)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.opts.audit(ctx, jobResource, id, domain.AuditUpdate, patch.Fields())
	return &view, nil
}

// Delete removes the job and its category links. Deleting an absent job,
// including one deleted a moment ago, reports NotFound.
func (s *JobService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		if _, err := uow.Jobs().FindByID(ctx, id); err != nil {
			return notFoundAs(err, "job", id)
		}
		if err := uow.Jobs().Delete(ctx, id); err != nil {
			return notFoundAs(err, "job", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.opts.audit(ctx, jobResource, id, domain.AuditDelete, nil)
	s.opts.Logger.Info().Int64("job_id", id).Msg("job deleted")
	return nil
}

func checkLeader(ctx context.Context, uow ports.UnitOfWork, leaderID int64) error {
	if _, err := uow.Users().FindByID(ctx, leaderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ReferenceNotFound("team_leader_id", "team_leader", leaderID)
		}
		return fmt.Errorf("find team leader: %w", err)
	}
	return nil
}

// resolveCategories loads each id in order and fails on the first one missing.
func resolveCategories(ctx context.Context, uow ports.UnitOfWork, ids []int64) ([]domain.Category, error) {
	categories := make([]domain.Category, 0, len(ids))
	for _, id := range ids {
		c, err := uow.Categories().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ReferenceNotFound("category_ids", "category", id)
			}
			return nil, fmt.Errorf("find category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, nil
}

func applyJobPatch(job *domain.Job, patch ports.JobPatch) {
	if v, ok := patch.Job.Value(); ok {
		job.Title = v
	}
	if patch.WorkSize.Present() {
		job.WorkSize = patch.WorkSize.Ptr()
	}
	if patch.Collaborators.Present() {
		job.Collaborators = patch.Collaborators.Ptr()
	}
	if v, ok := patch.IsFinished.Value(); ok {
		job.IsFinished = v
	}
	if patch.StartDate.Present() {
		job.StartDate = patch.StartDate.Ptr()
	}
	if patch.EndDate.Present() {
		job.EndDate = patch.EndDate.Ptr()
	}
}

func toJobView(job *domain.Job) ports.JobView {
	categories := make([]ports.CategorySummary, 0, len(job.Categories))
	for _, c := range job.Categories {
		categories = append(categories, ports.CategorySummary{ID: c.ID, Name: c.Name})
	}
	slices.SortFunc(categories, func(a, b ports.CategorySummary) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return ports.JobView{
		ID:            job.ID,
		TeamLeaderID:  job.TeamLeaderID,
		Job:           job.Title,
		WorkSize:      job.WorkSize,
		Collaborators: job.Collaborators,
		StartDate:     job.StartDate,
		EndDate:       job.EndDate,
		IsFinished:    job.IsFinished,
		Categories:    categories,
	}
}
