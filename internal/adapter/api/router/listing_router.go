package router

import (
	"channelmarket/internal/adapter/api/handler"
	"channelmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupListingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	listingHandler := handler.GetListingHandler()

	// Browsing is public; mutations require a signed-in seller.
	listings := e.Group("/v1/listings")
	listings.GET("", listingHandler.ListListings)
	listings.GET("/:id", listingHandler.GetListing)

	listings.POST("", listingHandler.CreateListing, authMiddleware.Authenticate)
	listings.PATCH("/:id", listingHandler.UpdateListing, authMiddleware.Authenticate)
}
