// internal/interfaces/http/handlers/listing.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casemandu/storefront/internal/domain/listing"
)

// ListingHandler serves the filterable shop and offer grids
type ListingHandler struct {
	listingService *listing.Service
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *listing.Service) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// ListProducts handles GET /listing/products
func (h *ListingHandler) ListProducts(c *gin.Context) {
	h.respond(c, listing.Request{Kind: listing.KindProducts, Values: c.Request.URL.Query()})
}

// ListOffers handles GET /listing/offers
func (h *ListingHandler) ListOffers(c *gin.Context) {
	h.respond(c, listing.Request{Kind: listing.KindOffers, Values: c.Request.URL.Query()})
}

// Search handles GET /search, the product listing with the search box on
func (h *ListingHandler) Search(c *gin.Context) {
	h.respond(c, listing.Request{Kind: listing.KindProducts, Values: c.Request.URL.Query(), SearchEnabled: true})
}

// Failed fetches still answer 200: the page carries the error text next to
// whatever products could be shown.
func (h *ListingHandler) respond(c *gin.Context, req listing.Request) {
	page := h.listingService.Load(c.Request.Context(), req)

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing retrieved successfully",
		"data":    page,
	})
}
