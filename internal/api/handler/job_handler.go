package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marsone/crew-api/internal/api/metrics"
	"github.com/marsone/crew-api/internal/core/ports"
	"github.com/marsone/crew-api/internal/core/validation"
)

const jobsResource = "jobs"

// JobHandler handles HTTP requests for the job resource.
type JobHandler struct {
	service ports.JobService
	val     *validation.Validator
}

func NewJobHandler(service ports.JobService, val *validation.Validator) *JobHandler {
	return &JobHandler{service: service, val: val}
}

// List handles GET /api/jobs.
//
// @Summary      List jobs
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  jobListResponse
// @Failure      500  {object}  ErrorBody
// @Router       /api/jobs [get]
func (h *JobHandler) List(c echo.Context) (err error) {
	defer track(jobsResource, "list", time.Now(), &err)

	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := jobListResponse{Jobs: make([]jobResponse, 0, len(views))}
	for _, v := range views {
		out.Jobs = append(out.Jobs, toJobResponse(v))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/jobs/:id.
//
// @Summary      Get a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job id"
// @Success      200  {object}  jobEnvelope
// @Failure      400  {object}  ErrorBody
// @Failure      404  {object}  ErrorBody
// @Router       /api/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) (err error) {
	defer track(jobsResource, "get", time.Now(), &err)

	id, err := pathID(c)
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobEnvelope{Job: toJobResponse(*view)})
}

// Create handles POST /api/jobs.
//
// @Summary      Create a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string  false  "Replays the earlier result when reused"
// @Param        body             body      object  true   "job, team_leader_id, work_size, collaborators, start_date, end_date, is_finished, category_ids"
// @Success      201              {object}  createJobResponse
// @Success      200              {object}  createJobResponse  "Idempotent replay"
// @Failure      400              {object}  ErrorBody
// @Failure      409              {object}  ErrorBody  "Idempotency key still in use"
// @Router       /api/jobs [post]
func (h *JobHandler) Create(c echo.Context) (err error) {
	defer track(jobsResource, "create", time.Now(), &err)

	raw, err := decodeBody(c)
	if err != nil {
		return err
	}
	in, err := h.val.JobCreate(raw)
	if err != nil {
		return err
	}
	in.IdempotencyKey = c.Request().Header.Get(idempotencyHeader)

	res, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		metrics.IdempotentReplaysTotal.WithLabelValues(jobsResource).Inc()
		status = http.StatusOK
	}
	return c.JSON(status, createJobResponse{ID: res.Job.ID, Job: toJobResponse(res.Job)})
}

// Replace handles PUT /api/jobs/:id. Only the fields present in the body change.
//
// @Summary      Update a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      int     true  "Job id"
// @Param        body  body      object  true  "Any subset of the job fields; null clears optional fields"
// @Success      200   {object}  jobEnvelope
// @Failure      400   {object}  ErrorBody
// @Failure      404   {object}  ErrorBody
// @Router       /api/jobs/{id} [put]
func (h *JobHandler) Replace(c echo.Context) (err error) {
	defer track(jobsResource, "replace", time.Now(), &err)

	id, err := pathID(c)
	if err != nil {
		return err
	}
	raw, err := decodeBody(c)
	if err != nil {
		return err
	}
	patch, err := h.val.JobPatch(raw)
	if err != nil {
		return err
	}

	view, err := h.service.Replace(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobEnvelope{Job: toJobResponse(*view)})
}

// Delete handles DELETE /api/jobs/:id.
//
// @Summary      Delete a job
// @Tags         jobs
// @Param        id   path  int  true  "Job id"
// @Success      204
// @Failure      404  {object}  ErrorBody
// @Router       /api/jobs/{id} [delete]
func (h *JobHandler) Delete(c echo.Context) (err error) {
	defer track(jobsResource, "delete", time.Now(), &err)

	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
