package ports

import (
	"context"
	"time"

	"github.com/marsone/crew-api/internal/core/domain"
)

// CreateJobInput carries a validated job creation request.
type CreateJobInput struct {
	Job            string
	TeamLeaderID   int64
	WorkSize       *int
	Collaborators  *string
	IsFinished     bool
	StartDate      *time.Time
	EndDate        *time.Time
	CategoryIDs    []int64
	IdempotencyKey string
}

// JobPatch carries a validated partial update. Absent fields keep their stored value.
type JobPatch struct {
	Job           domain.Optional[string]
	TeamLeaderID  domain.Optional[int64]
	WorkSize      domain.Optional[int]
	Collaborators domain.Optional[string]
	IsFinished    domain.Optional[bool]
	StartDate     domain.Optional[time.Time]
	EndDate       domain.Optional[time.Time]
	CategoryIDs   domain.Optional[[]int64]
}

// Fields lists the JSON names of the fields present in the patch.
func (p JobPatch) Fields() []string {
	var out []string
	add := func(present bool, name string) {
		if present {
			out = append(out, name)
		}
	}
	add(p.Job.Present(), "job")
	add(p.TeamLeaderID.Present(), "team_leader_id")
	add(p.WorkSize.Present(), "work_size")
	add(p.Collaborators.Present(), "collaborators")
	add(p.IsFinished.Present(), "is_finished")
	add(p.StartDate.Present(), "start_date")
	add(p.EndDate.Present(), "end_date")
	add(p.CategoryIDs.Present(), "category_ids")
	return out
}

// CategorySummary is the id+name pair embedded in job views.
type CategorySummary struct {
	ID   int64
	Name string
}

// JobView is the full job representation returned by the service.
type JobView struct {
	ID            int64
	TeamLeaderID  int64
	Job           string
	WorkSize      *int
	Collaborators *string
	StartDate     *time.Time
	EndDate       *time.Time
	IsFinished    bool
	Categories    []CategorySummary
}

// CreateJobResult is returned by Create.
type CreateJobResult struct {
	Job JobView
	// AlreadyExisted is true when the idempotency key matched an earlier create.
	AlreadyExisted bool
}

// JobService defines the job resource operations.
type JobService interface {
	List(ctx context.Context) ([]JobView, error)
	Get(ctx context.Context, id int64) (*JobView, error)
	Create(ctx context.Context, in CreateJobInput) (*CreateJobResult, error)
	Replace(ctx context.Context, id int64, patch JobPatch) (*JobView, error)
	Delete(ctx context.Context, id int64) error
}
