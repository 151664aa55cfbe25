// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(container.Logger))
	r.Use(middleware.CORSMiddleware(config.CORSOrigins))

	// Initialize handlers
	cartHandlers := handlers.NewCartHandlers(container.Logger, container.PerfTracker)
	wishlistHandlers := handlers.NewWishlistHandlers(container.Logger)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	themeHandlers := handlers.NewThemeHandlers(container.ThemeStore, container.SettingsService, container.Logger, container.PerfTracker)
	siteHandlers := handlers.NewSiteHandlers(container.Logger)
	catalogHandlers := handlers.NewCatalogHandlers(container.CatalogService)
	checkoutHandlers := handlers.NewCheckoutHandlers(container.CheckoutService, container.Logger)
	eventHandlers := handlers.NewEventHandlers(container.Broadcaster, AllowedOrigin(config.CORSOrigins), container.Logger)
	systemHandlers := handlers.NewSystemHandlers(container.Version(), container.Backend, container.Profiles, container.Logger, container.PerfTracker)

	r.GET("/health", systemHandlers.Health)

	api := r.Group("/api/v1")
	{
		// Profile-independent routes
		api.GET("/theme", themeHandlers.GetTheme)
		api.GET("/theme.css", themeHandlers.ThemeCSS)
		api.POST("/theme/refresh", themeHandlers.RefreshTheme)
		api.GET("/settings", themeHandlers.GetSettings)
		api.GET("/products", catalogHandlers.Products)
		api.GET("/categories", catalogHandlers.Categories)

		system := api.Group("/system")
		system.Use(middleware.SysopAuthMiddleware(config.SysopPassword, container.Logger))
		{
			system.GET("/profiles", systemHandlers.Profiles)
			system.GET("/performance", systemHandlers.PerfStats)
			system.GET("/logs/levels", systemHandlers.GetLogLevels)
			system.POST("/logs/levels", systemHandlers.SetLogLevel)
		}

		profile := api.Group("")
		profile.Use(middleware.ProfileMiddleware(container.Profiles, container.Logger, container.PerfTracker))
		{
			cart := profile.Group("/cart")
			{
				cart.GET("", cartHandlers.GetCart)
				cart.GET("/total", cartHandlers.GetTotal)
				cart.POST("", cartHandlers.AddToCart)
				cart.PUT("/:productId", cartHandlers.UpdateQuantity)
				cart.DELETE("/:productId", cartHandlers.RemoveFromCart)
				cart.DELETE("", cartHandlers.ClearCart)
			}

			wishlist := profile.Group("/wishlist")
			{
				wishlist.GET("", wishlistHandlers.GetWishlist)
				wishlist.POST("/toggle", wishlistHandlers.Toggle)
				wishlist.GET("/:productId", wishlistHandlers.Contains)
				wishlist.DELETE("/:productId", wishlistHandlers.Remove)
			}

			auth := profile.Group("/auth")
			{
				auth.POST("/login", authHandlers.CustomerLogin)
				auth.POST("/register", authHandlers.Register)
				auth.POST("/google-login", authHandlers.GoogleLogin)
				auth.POST("/logout", authHandlers.Logout(handlers.CustomerSession))
				auth.GET("/session", authHandlers.Session(handlers.CustomerSession))
				auth.PUT("/session", authHandlers.Adopt(handlers.CustomerSession))
			}

			admin := profile.Group("/admin")
			{
				admin.POST("/login", authHandlers.AdminLogin)
				admin.POST("/logout", authHandlers.Logout(handlers.AdminSession))
				admin.GET("/session", authHandlers.Session(handlers.AdminSession))
				admin.PUT("/session", authHandlers.Adopt(handlers.AdminSession))

				admin.POST("/settings", themeHandlers.SaveSettings)

				admin.GET("/websites", siteHandlers.ListWebsites)
				admin.POST("/websites/refresh", siteHandlers.RefreshWebsites)
				admin.PUT("/websites/selected", siteHandlers.SelectWebsite)

				admin.GET("/products", catalogHandlers.AdminProducts)
				admin.GET("/categories", catalogHandlers.AdminCategories)
			}

			profile.POST("/checkout", checkoutHandlers.PlaceOrder)
			profile.GET("/events", eventHandlers.Stream)
		}
	}

	return r
}

// Handler wraps the router so every inbound request starts a server span
func Handler(container *container.Container) http.Handler {
	return otelhttp.NewHandler(SetupRoutes(container), "storefront-go")
}

// AllowedOrigin accepts websocket handshakes from the CORS origins, and
// from clients that send no Origin at all.
func AllowedOrigin(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}
