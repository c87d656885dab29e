package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/config"
	"github.com/example/unihome/internal/handlers"
	"github.com/example/unihome/internal/middleware"
	"github.com/example/unihome/internal/services"
)

// Deps are the collaborators shared by the handlers.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Sessions *session.Store
	Codes    services.VerificationStore
	Mailer   services.Mailer
	Notifier services.Notifier
	Storage  *services.UploadStorage
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) {
	db, cfg := deps.DB, deps.Config

	auth := middleware.NewAuth(db, deps.Sessions, cfg.SessionSecret)
	accounts := services.NewAccountService(db, deps.Codes, deps.Mailer, cfg.VerificationTTL)

	authHandler := handlers.NewAuthHandler(db, accounts, auth, cfg.SessionSecret, cfg.TokenExpires)
	propertyHandler := handlers.NewPropertyHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(services.NewAppointmentService(db, deps.Notifier))
	favoriteHandler := handlers.NewFavoriteHandler(services.NewFavoriteService(db))
	adminHandler := handlers.NewAdminHandler(db)
	pageHandler := handlers.NewPageHandler(db)
	adminPages := handlers.NewAdminPageHandler(db, auth, deps.Storage)

	app.Use(auth.Load())

	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Listings
	api.Get("/properties", propertyHandler.ListProperties)
	api.Get("/property/:id", propertyHandler.GetProperty)
	api.Get("/stats", propertyHandler.Stats)
	api.Get("/price_ranges", propertyHandler.PriceRanges)

	// Reference data
	api.Get("/locations", catalogHandler.ListLocations)
	api.Get("/property_types", catalogHandler.ListPropertyTypes)

	// Accounts
	api.Post("/send_email_code", authHandler.SendEmailCode)
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authHandler.Logout)
	api.Get("/current_user", authHandler.CurrentUser)
	api.Get("/contact_info", authHandler.ContactInfo)

	// Appointments
	api.Post("/appointments", appointmentHandler.Create)
	api.Get("/appointments", auth.RequireAdminAPI(), appointmentHandler.List)
	api.Put("/appointments/:id", auth.RequireAdminAPI(), appointmentHandler.UpdateStatus)

	// Favorites
	api.Get("/favorites/check/:property_id", favoriteHandler.Check)
	favorites := api.Group("/favorites", auth.RequireUser())
	favorites.Post("/", favoriteHandler.Add)
	favorites.Get("/", favoriteHandler.List)
	favorites.Delete("/:property_id", favoriteHandler.Remove)

	// Favorites analytics
	adminAPI := api.Group("/admin", auth.RequireAdminAPI())
	adminAPI.Get("/customer_favorites", adminHandler.CustomerFavorites)
	adminAPI.Get("/customer_favorites/stats", adminHandler.CustomerFavoriteStats)
	adminAPI.Get("/customer_favorites/export", adminHandler.ExportCustomerFavorites)

	// Public pages
	app.Get("/", pageHandler.Index)
	app.Get("/search", pageHandler.Search)
	app.Get("/property/:id", pageHandler.Detail)
	app.Get("/favorites", pageHandler.Favorites)

	// Console login
	app.Get("/admin/login", adminPages.LoginPage)
	app.Post("/admin/login", adminPages.Login)
	app.Get("/admin/logout", adminPages.Logout)

	// Console API
	requireAdmin := auth.RequireAdminAPI()
	app.Get("/admin/api/locations", requireAdmin, catalogHandler.AllLocations)
	app.Get("/admin/api/property_types", requireAdmin, catalogHandler.AllPropertyTypes)
	app.Post("/admin/locations", requireAdmin, catalogHandler.CreateLocation)
	app.Put("/admin/locations/:id", requireAdmin, catalogHandler.UpdateLocation)
	app.Delete("/admin/locations/:id", requireAdmin, catalogHandler.DeleteLocation)
	app.Post("/admin/property_types", requireAdmin, catalogHandler.CreatePropertyType)
	app.Put("/admin/property_types/:id", requireAdmin, catalogHandler.UpdatePropertyType)
	app.Delete("/admin/property_types/:id", requireAdmin, catalogHandler.DeletePropertyType)
	app.Post("/admin/property/delete/:id", requireAdmin, adminPages.DeleteProperty)
	app.Post("/admin/property/toggle_status/:id", requireAdmin, adminPages.TogglePropertyStatus)
	app.Post("/admin/profile", requireAdmin, adminPages.UpdateProfile)

	// Console pages
	console := app.Group("/admin", auth.RequireAdminPage())
	console.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/admin/dashboard")
	})
	console.Get("/dashboard", adminPages.Dashboard)
	console.Get("/properties", adminPages.Properties)
	console.Get("/property/add", adminPages.NewPropertyForm)
	console.Post("/property/add", adminPages.CreateProperty)
	console.Get("/property/edit/:id", adminPages.EditPropertyForm)
	console.Post("/property/edit/:id", adminPages.UpdateProperty)
	console.Get("/profile", adminPages.ProfilePage)
	console.Get("/locations", adminPages.LocationsPage)
	console.Get("/property_types", adminPages.PropertyTypesPage)
	console.Get("/appointments", adminPages.AppointmentsPage)
	console.Get("/customer_favorites", adminPages.CustomerFavoritesPage)
}
