package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marsone/crew-api/internal/core/ports"
)

const categoriesResource = "categories"

// CategoryHandler handles HTTP requests for the category resource.
type CategoryHandler struct {
	service ports.CategoryService
}

func NewCategoryHandler(service ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// List handles GET /api/categories.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  categoryListResponse
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c echo.Context) (err error) {
	defer track(categoriesResource, "list", time.Now(), &err)

	categories, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := categoryListResponse{Categories: make([]categoryResponse, 0, len(categories))}
	for _, cat := range categories {
		out.Categories = append(out.Categories, toCategoryResponse(cat))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/categories/:id.
//
// @Summary      Get a category
// @Tags         categories
// @Produce      json
// @Param        id   path      int  true  "Category id"
// @Success      200  {object}  categoryEnvelope
// @Failure      404  {object}  ErrorBody
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) (err error) {
	defer track(categoriesResource, "get", time.Now(), &err)

	id, err := pathID(c)
	if err != nil {
		return err
	}
	cat, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoryEnvelope{Category: toCategoryResponse(*cat)})
}

// Create handles POST /api/categories.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body      createCategoryRequest  true  "Category"
// @Success      201   {object}  createCategoryResponse
// @Failure      400   {object}  ErrorBody
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c echo.Context) (err error) {
	defer track(categoriesResource, "create", time.Now(), &err)

	var req createCategoryRequest
	if err := new(echo.DefaultBinder).BindBody(c, &req); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}

	cat, err := h.service.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createCategoryResponse{ID: cat.ID, Category: toCategoryResponse(*cat)})
}
