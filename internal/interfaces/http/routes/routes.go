// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/casemandu/storefront/internal/interfaces/http/handlers"
)

// Handlers groups every route handler
type Handlers struct {
	Catalog  *handlers.CatalogHandler
	Listing  *handlers.ListingHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Order    *handlers.OrderHandler
	SEO      *handlers.SEOHandler
}

// SetupRoutes mounts the JSON API under rg
func SetupRoutes(rg *gin.RouterGroup, h *Handlers) {
	SetupCatalogRoutes(rg, h.Catalog)
	SetupListingRoutes(rg, h.Listing)
	SetupCartRoutes(rg, h.Cart)
	SetupCheckoutRoutes(rg, h.Checkout)
	SetupOrderRoutes(rg, h.Order)
}

// SetupCatalogRoutes sets up product, offer and lookup routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h *handlers.CatalogHandler) {
	rg.GET("/home", h.Home)
	rg.GET("/products/:slug", h.GetProduct)
	rg.GET("/offers/:slug", h.GetOffer)
	rg.GET("/categories", h.GetCategories)
	rg.GET("/options", h.GetOptions)
	rg.GET("/phones", h.GetPhones)
	rg.GET("/videos", h.GetVideos)
	rg.GET("/banners", h.GetBanners)
	rg.GET("/happy-customers", h.GetHappyCustomers)
}

// SetupListingRoutes sets up the filterable grid routes
func SetupListingRoutes(rg *gin.RouterGroup, h *handlers.ListingHandler) {
	listing := rg.Group("/listing")
	{
		listing.GET("/products", h.ListProducts)
		listing.GET("/offers", h.ListOffers)
	}
	rg.GET("/search", h.Search)
}

// SetupCartRoutes sets up cart routes. The cart belongs to the browser
// session, so no authentication is involved.
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.GET("/events", h.Events)
		cart.POST("/items", h.AddToCart)
		cart.PATCH("/items/increment", h.IncrementItem)
		cart.PATCH("/items/decrement", h.DecrementItem)
		cart.DELETE("/items", h.RemoveFromCart)
		cart.DELETE("", h.ClearCart)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *handlers.CheckoutHandler) {
	checkout := rg.Group("/checkout")
	{
		checkout.GET("", h.GetSummary)
		checkout.GET("/payment-methods", h.GetPaymentMethods)
		checkout.GET("/districts", h.GetDistricts)
		checkout.PUT("/district", h.SetDistrict)
		checkout.POST("/promo", h.ApplyPromo)
		checkout.POST("/validate", h.ValidateOrder)
		checkout.POST("/orders", h.PlaceOrder)
	}
}

// SetupOrderRoutes sets up order lookup routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler) {
	orders := rg.Group("/orders")
	{
		orders.GET("/track", h.TrackOrder)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/receipt", h.GetReceipt)
	}
}

// SetupSEORoutes sets up the crawler endpoints at the site root
func SetupSEORoutes(r gin.IRoutes, h *handlers.SEOHandler) {
	r.GET("/sitemap.xml", h.Sitemap)
	r.GET("/robots.txt", h.Robots)
}
