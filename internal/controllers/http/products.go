package http

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

// ListProducts accepts featured=true, categoryId and category (a slug).
// categoryId wins when both are given.
func (h *Handler) ListProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		FeaturedOnly: c.Query("featured") == "true",
	}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "Invalid category ID")
			return
		}
		filter.CategoryID = &id
	} else {
		filter.CategorySlug = c.Query("category")
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err, "Failed to fetch products")
		return
	}

	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c, services.ErrProductNotFound)
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to fetch product")
		return
	}
	c.JSON(http.StatusOK, NewProductResponse(p))
}

func (h *Handler) CreateProduct(c *gin.Context) {
	const fallback = "Failed to create product"

	image, err := h.readImage(c)
	if err != nil {
		writeError(c, err, fallback)
		return
	}

	in := services.CreateProductInput{
		Name:        c.PostForm("name"),
		Image:       image,
		Category:    c.PostForm("category"),
		InStock:     formBool(c, "inStock"),
		Featured:    formBool(c, "featured"),
		Description: formText(c, "description"),
	}
	// An unparseable price counts as a missing one.
	in.Price, _ = formDecimal(c, "price")
	if in.CategoryID, err = formUint(c, "categoryId"); err != nil {
		writeError(c, err, fallback)
		return
	}
	if in.Rating, err = formDecimal(c, "rating"); err != nil {
		writeError(c, err, fallback)
		return
	}
	if in.Reviews, err = formInt(c, "reviews"); err != nil {
		writeError(c, err, fallback)
		return
	}

	p, err := h.catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, fallback)
		return
	}
	c.JSON(http.StatusCreated, NewProductResponse(p))
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	const fallback = "Failed to update product"

	id, ok := idParam(c, services.ErrProductNotFound)
	if !ok {
		return
	}

	image, err := h.readImage(c)
	if err != nil {
		writeError(c, err, fallback)
		return
	}

	in := services.UpdateProductInput{
		Name:        formString(c, "name"),
		Image:       image,
		Category:    formString(c, "category"),
		InStock:     formBool(c, "inStock"),
		Featured:    formBool(c, "featured"),
		Description: formString(c, "description"),
	}
	if in.Price, err = formDecimal(c, "price"); err != nil {
		writeError(c, err, fallback)
		return
	}
	if in.CategoryID, err = formUint(c, "categoryId"); err != nil {
		writeError(c, err, fallback)
		return
	}
	if in.Rating, err = formDecimal(c, "rating"); err != nil {
		writeError(c, err, fallback)
		return
	}
	if in.Reviews, err = formInt(c, "reviews"); err != nil {
		writeError(c, err, fallback)
		return
	}

	p, err := h.catalog.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err, fallback)
		return
	}
	c.JSON(http.StatusOK, NewProductResponse(p))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, services.ErrProductNotFound)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
