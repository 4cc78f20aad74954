package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"commerce-backend/internal/entity"
	"commerce-backend/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new instance of ProductHandler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts --> GET /products
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productService.List(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, products)
}

// GetProductByID --> GET /products/:id
func (h *ProductHandler) GetProductByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	product, err := h.productService.GetByID(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, product)
}

// SearchProducts --> GET /products/search?name=
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	products, err := h.productService.SearchByName(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, products)
}

// ListProductsByCategory --> GET /products/category/:category
func (h *ProductHandler) ListProductsByCategory(c echo.Context) error {
	products, err := h.productService.ListByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, products)
}

// CreateProduct --> POST /products
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	created, err := h.productService.Create(c.Request().Context(), &product)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, created)
}

// UpdateProduct --> PUT /products/:id
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	updated, err := h.productService.Update(c.Request().Context(), id, &product)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, updated)
}

// DeleteProduct --> DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "product deleted"})
}
