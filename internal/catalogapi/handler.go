package catalogapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thomas/knits-terminal-go/internal/catalog"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	provider catalog.Provider
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listProducts handles GET /api/v1/products?category=&search=&sort=.
func (h *handler) listProducts(c *gin.Context) {
	cat, ok := h.load(c)
	if !ok {
		return
	}

	category := c.DefaultQuery("category", catalog.AllCategories)
	products := catalog.FilterAndSort(
		cat.Products,
		category,
		c.Query("search"),
		catalog.ParseSortKey(c.Query("sort")),
	)
	c.JSON(http.StatusOK, products)
}

// getProduct handles GET /api/v1/products/:id.
func (h *handler) getProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
		return
	}

	cat, ok := h.load(c)
	if !ok {
		return
	}

	product, err := cat.Find(id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// listCategories handles GET /api/v1/categories.
func (h *handler) listCategories(c *gin.Context) {
	cat, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cat.Categories)
}

func (h *handler) load(c *gin.Context) (*catalog.Catalog, bool) {
	cat, err := h.provider.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "catalog unavailable"})
		return nil, false
	}
	return cat, true
}
