package http

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch categories")
		return
	}

	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, NewCategoryResponse(&categories[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := idParam(c, services.ErrCategoryNotFound)
	if !ok {
		return
	}

	cat, err := h.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to fetch category")
		return
	}
	c.JSON(http.StatusOK, NewCategoryResponse(cat))
}

func (h *Handler) CreateCategory(c *gin.Context) {
	const fallback = "Failed to create category"

	image, err := h.readImage(c)
	if err != nil {
		writeError(c, err, fallback)
		return
	}

	cat, err := h.catalog.CreateCategory(c.Request.Context(), services.CreateCategoryInput{
		Name:        c.PostForm("name"),
		Slug:        c.PostForm("slug"),
		Description: formText(c, "description"),
		Image:       image,
	})
	if err != nil {
		writeError(c, err, fallback)
		return
	}
	c.JSON(http.StatusCreated, NewCategoryResponse(cat))
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	const fallback = "Failed to update category"

	id, ok := idParam(c, services.ErrCategoryNotFound)
	if !ok {
		return
	}

	image, err := h.readImage(c)
	if err != nil {
		writeError(c, err, fallback)
		return
	}

	cat, err := h.catalog.UpdateCategory(c.Request.Context(), id, domain.CategoryChanges{
		Name:        formString(c, "name"),
		Slug:        formText(c, "slug"),
		Description: formString(c, "description"),
		Image:       image,
	})
	if err != nil {
		writeError(c, err, fallback)
		return
	}
	c.JSON(http.StatusOK, NewCategoryResponse(cat))
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid category ID")
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
