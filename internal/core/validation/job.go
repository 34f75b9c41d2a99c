package validation

import (
	"github.com/marsone/crew-api/internal/core/ports"
)

// jobRules holds the value constraints shared by create and patch. Nil fields
// were absent, null or failed coercion and are skipped.
type jobRules struct {
	Job      *string `json:"job"       validate:"omitnil,min=1"`
	WorkSize *int64  `json:"work_size" validate:"omitnil,gte=0"`
}

// JobCreate validates a job creation request. is_finished defaults to false and
// start_date to the current time.
func (val *Validator) JobCreate(raw map[string]any) (ports.CreateJobInput, error) {
	r := newReader(raw)
	r.required("job")
	r.required("team_leader_id")
	r.notNull("category_ids")

	title := trimmed(r.str("job"))
	leader := r.integer("team_leader_id")
	workSize := r.integer("work_size")
	collaborators := r.str("collaborators")
	finished := r.boolean("is_finished")
	start := r.datetime("start_date")
	end := r.datetime("end_date")
	categories := r.intList("category_ids")

	val.check(r, jobRules{Job: valuePtr(title), WorkSize: valuePtr(workSize)})
	if err := r.result(); err != nil {
		return ports.CreateJobInput{}, err
	}

	in := ports.CreateJobInput{
		WorkSize:      valuePtr(narrow(workSize)),
		Collaborators: valuePtr(collaborators),
		StartDate:     valuePtr(start),
		EndDate:       valuePtr(end),
	}
	in.Job, _ = title.Value()
	in.TeamLeaderID, _ = leader.Value()
	in.IsFinished, _ = finished.Value()
	if ids, ok := categories.Value(); ok {
		in.CategoryIDs = ids
	}
	if in.StartDate == nil {
		now := val.now()
		in.StartDate = &now
	}
	return in, nil
}

// JobPatch validates a partial job update. Only keys present in raw end up
// present in the patch.
func (val *Validator) JobPatch(raw map[string]any) (ports.JobPatch, error) {
	r := newReader(raw)
	for _, field := range []string{"job", "team_leader_id", "is_finished", "category_ids"} {
		r.notNull(field)
	}

	patch := ports.JobPatch{
		Job:           trimmed(r.str("job")),
		TeamLeaderID:  r.integer("team_leader_id"),
		Collaborators: r.str("collaborators"),
		IsFinished:    r.boolean("is_finished"),
		StartDate:     r.datetime("start_date"),
		EndDate:       r.datetime("end_date"),
		CategoryIDs:   r.intList("category_ids"),
	}
	workSize := r.integer("work_size")
	patch.WorkSize = narrow(workSize)

	val.check(r, jobRules{Job: valuePtr(patch.Job), WorkSize: valuePtr(workSize)})
	if err := r.result(); err != nil {
		return ports.JobPatch{}, err
	}
	return patch, nil
}
