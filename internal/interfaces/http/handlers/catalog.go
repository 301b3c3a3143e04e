// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casemandu/storefront/internal/domain/catalog"
)

// CatalogHandler serves products, offers and the lookup lists
type CatalogHandler struct {
	catalogService *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Home handles GET /home
func (h *CatalogHandler) Home(c *gin.Context) {
	home, err := h.catalogService.Home(c.Request.Context())
	if err != nil {
		respondUpstreamError(c, err, "Failed to load home page")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Home page retrieved successfully",
		"data":    home,
	})
}

// GetProduct handles GET /products/:slug
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.ProductBySlug(c.Request.Context(), c.Param("slug"))
	h.respondItem(c, product, err, "Product")
}

// GetOffer handles GET /offers/:slug
func (h *CatalogHandler) GetOffer(c *gin.Context) {
	offer, err := h.catalogService.OfferBySlug(c.Request.Context(), c.Param("slug"))
	h.respondItem(c, offer, err, "Offer")
}

func (h *CatalogHandler) respondItem(c *gin.Context, item *catalog.Product, err error, what string) {
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": what + " not found",
		})
		return
	}
	if err != nil {
		respondUpstreamError(c, err, "Failed to load "+what)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": what + " retrieved successfully",
		"data":    item,
	})
}

// GetCategories handles GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    h.catalogService.Categories(c.Request.Context()),
	})
}

// GetOptions handles GET /options
func (h *CatalogHandler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Options retrieved successfully",
		"data":    h.catalogService.Options(c.Request.Context()),
	})
}

// GetPhones handles GET /phones
func (h *CatalogHandler) GetPhones(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Phones retrieved successfully",
		"data":    h.catalogService.Phones(c.Request.Context()),
	})
}

// GetVideos handles GET /videos
func (h *CatalogHandler) GetVideos(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Videos retrieved successfully",
		"data":    h.catalogService.Videos(c.Request.Context()),
	})
}

// GetBanners handles GET /banners
func (h *CatalogHandler) GetBanners(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Banners retrieved successfully",
		"data":    h.catalogService.Banners(c.Request.Context()),
	})
}

// GetHappyCustomers handles GET /happy-customers
func (h *CatalogHandler) GetHappyCustomers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Happy customers retrieved successfully",
		"data":    h.catalogService.HappyCustomers(c.Request.Context()),
	})
}
