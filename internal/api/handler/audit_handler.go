package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marsone/crew-api/internal/core/domain"
	"github.com/marsone/crew-api/internal/core/ports"
)

// AuditHandler exposes the recorded mutation history of jobs, users and categories.
type AuditHandler struct {
	reader ports.AuditReader
}

func NewAuditHandler(reader ports.AuditReader) *AuditHandler {
	return &AuditHandler{reader: reader}
}

type auditEntryResponse struct {
	Action string   `json:"action"`
	Fields []string `json:"fields"`
	At     string   `json:"at"`
}

type historyResponse struct {
	Resource string               `json:"resource"`
	ID       int64                `json:"id"`
	History  []auditEntryResponse `json:"history"`
}

// JobHistory handles GET /api/jobs/:id/history.
//
// @Summary  Mutation history of a job
// @Tags     jobs
// @Produce  json
// @Param    id   path      int  true  "Job id"
// @Success  200  {object}  historyResponse
// @Router   /api/jobs/{id}/history [get]
func (h *AuditHandler) JobHistory(c echo.Context) error {
	return h.history(c, jobsResource)
}

// UserHistory handles GET /api/users/:id/history.
//
// @Summary  Mutation history of a user
// @Tags     users
// @Produce  json
// @Param    id   path      int  true  "User id"
// @Success  200  {object}  historyResponse
// @Router   /api/users/{id}/history [get]
func (h *AuditHandler) UserHistory(c echo.Context) error {
	return h.history(c, usersResource)
}

// CategoryHistory handles GET /api/categories/:id/history.
//
// @Summary  Mutation history of a category
// @Tags     categories
// @Produce  json
// @Param    id   path      int  true  "Category id"
// @Success  200  {object}  historyResponse
// @Router   /api/categories/{id}/history [get]
func (h *AuditHandler) CategoryHistory(c echo.Context) error {
	return h.history(c, categoriesResource)
}

func (h *AuditHandler) history(c echo.Context, resource string) (err error) {
	defer track(resource, "history", time.Now(), &err)

	id, err := pathID(c)
	if err != nil {
		return err
	}
	entries, err := h.reader.History(c.Request().Context(), resource, id)
	if err != nil {
		return err
	}
	out := historyResponse{Resource: resource, ID: id, History: make([]auditEntryResponse, 0, len(entries))}
	for _, e := range entries {
		out.History = append(out.History, toAuditEntryResponse(e))
	}
	return c.JSON(http.StatusOK, out)
}

func toAuditEntryResponse(e domain.AuditEntry) auditEntryResponse {
	fields := e.Fields
	if fields == nil {
		fields = []string{}
	}
	return auditEntryResponse{
		Action: string(e.Action),
		Fields: fields,
		At:     e.At.UTC().Format(time.RFC3339Nano),
	}
}
