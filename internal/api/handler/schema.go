package handler

import (
	"time"

	"github.com/marsone/crew-api/internal/core/domain"
	"github.com/marsone/crew-api/internal/core/ports"
)

// --- Response types ---

// ErrorBody is the error envelope rendered for every failed request.
type ErrorBody struct {
	Error  string                  `json:"error"`
	Reason string                  `json:"reason"`
	Fields []domain.FieldViolation `json:"fields,omitempty"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type jobResponse struct {
	ID            int64              `json:"id"`
	TeamLeaderID  int64              `json:"team_leader_id"`
	Job           string             `json:"job"`
	WorkSize      *int               `json:"work_size"`
	Collaborators *string            `json:"collaborators"`
	StartDate     *string            `json:"start_date"`
	EndDate       *string            `json:"end_date"`
	IsFinished    bool               `json:"is_finished"`
	Categories    []categoryResponse `json:"categories"`
}

type userResponse struct {
	ID           int64   `json:"id"`
	Surname      *string `json:"surname"`
	Name         string  `json:"name"`
	Age          *int    `json:"age"`
	Position     *string `json:"position"`
	Speciality   *string `json:"speciality"`
	Address      *string `json:"address"`
	Email        string  `json:"email"`
	CityFrom     *string `json:"city_from"`
	ModifiedDate *string `json:"modified_date"`
}

type jobListResponse struct {
	Jobs []jobResponse `json:"jobs"`
}

type jobEnvelope struct {
	Job jobResponse `json:"job"`
}

type createJobResponse struct {
	ID  int64       `json:"id"`
	Job jobResponse `json:"job"`
}

type userListResponse struct {
	Users []userResponse `json:"users"`
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

type createUserResponse struct {
	ID   int64        `json:"id"`
	User userResponse `json:"user"`
}

type categoryListResponse struct {
	Categories []categoryResponse `json:"categories"`
}

type categoryEnvelope struct {
	Category categoryResponse `json:"category"`
}

type createCategoryResponse struct {
	ID       int64            `json:"id"`
	Category categoryResponse `json:"category"`
}

// --- Request types ---

type createCategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// --- Mappers ---

func toCategoryResponse(c ports.CategorySummary) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name}
}

func toJobResponse(v ports.JobView) jobResponse {
	categories := make([]categoryResponse, 0, len(v.Categories))
	for _, c := range v.Categories {
		categories = append(categories, toCategoryResponse(c))
	}
	return jobResponse{
		ID:            v.ID,
		TeamLeaderID:  v.TeamLeaderID,
		Job:           v.Job,
		WorkSize:      v.WorkSize,
		Collaborators: v.Collaborators,
		StartDate:     formatTime(v.StartDate),
		EndDate:       formatTime(v.EndDate),
		IsFinished:    v.IsFinished,
		Categories:    categories,
	}
}

func toUserResponse(v ports.UserView) userResponse {
	var modified *string
	if !v.ModifiedDate.IsZero() {
		modified = formatTime(&v.ModifiedDate)
	}
	return userResponse{
		ID:           v.ID,
		Surname:      v.Surname,
		Name:         v.Name,
		Age:          v.Age,
		Position:     v.Position,
		Speciality:   v.Speciality,
		Address:      v.Address,
		Email:        v.Email,
		CityFrom:     v.CityFrom,
		ModifiedDate: modified,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
