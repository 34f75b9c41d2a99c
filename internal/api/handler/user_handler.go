package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marsone/crew-api/internal/api/metrics"
	"github.com/marsone/crew-api/internal/core/ports"
	"github.com/marsone/crew-api/internal/core/validation"
)

const usersResource = "users"

// UserHandler handles HTTP requests for the user resource. Responses never
// include the password or its hash.
type UserHandler struct {
	service ports.UserService
	val     *validation.Validator
}

func NewUserHandler(service ports.UserService, val *validation.Validator) *UserHandler {
	return &UserHandler{service: service, val: val}
}

// List handles GET /api/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  userListResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) (err error) {
	defer track(usersResource, "list", time.Now(), &err)

	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := userListResponse{Users: make([]userResponse, 0, len(views))}
	for _, v := range views {
		out.Users = append(out.Users, toUserResponse(v))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  userEnvelope
// @Failure      404  {object}  ErrorBody
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) (err error) {
	defer track(usersResource, "get", time.Now(), &err)

	id, err := pathID(c)
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(*view)})
}

// Create handles POST /api/users.
//
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string  false  "Replays the earlier result when reused"
// @Param        body             body      object  true   "name, email, password and optional profile fields"
// @Success      201              {object}  createUserResponse
// @Failure      400              {object}  ErrorBody
// @Failure      409              {object}  ErrorBody
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) (err error) {
	defer track(usersResource, "create", time.Now(), &err)

	raw, err := decodeBody(c)
	if err != nil {
		return err
	}
	in, err := h.val.UserCreate(raw)
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
		metrics.IdempotentReplaysTotal.WithLabelValues(usersResource).Inc()
		status = http.StatusOK
	}
	return c.JSON(status, createUserResponse{ID: res.User.ID, User: toUserResponse(res.User)})
}

// Replace handles PUT /api/users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int     true  "User id"
// @Param        body  body      object  true  "Any subset of the user fields"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  ErrorBody
// @Failure      404   {object}  ErrorBody
// @Failure      409   {object}  ErrorBody
// @Router       /api/users/{id} [put]
func (h *UserHandler) Replace(c echo.Context) (err error) {
	defer track(usersResource, "replace", time.Now(), &err)

	id, err := pathID(c)
	if err != nil {
		return err
	}
	raw, err := decodeBody(c)
	if err != nil {
		return err
	}
	patch, err := h.val.UserPatch(raw)
	if err != nil {
		return err
	}

	view, err := h.service.Replace(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(*view)})
}

// Delete handles DELETE /api/users/:id. A user leading jobs cannot be deleted.
//
// @Summary      Delete a user
// @Tags         users
// @Param        id   path  int  true  "User id"
// @Success      204
// @Failure      404  {object}  ErrorBody
// @Failure      409  {object}  ErrorBody
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) (err error) {
	defer track(usersResource, "delete", time.Now(), &err)

	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
