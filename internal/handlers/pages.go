package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/middleware"
	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/services"
)

const publicLayout = "layouts/main"

// PageHandler renders the public site.
type PageHandler struct {
	db       *gorm.DB
	listings *services.ListingService
}

// NewPageHandler constructs PageHandler.
func NewPageHandler(db *gorm.DB) *PageHandler {
	return &PageHandler{db: db, listings: services.NewListingService(db)}
}

func (h *PageHandler) catalog() (locations []models.Location, types []models.PropertyType, err error) {
	if err = h.db.Where("is_active = ?", true).Order("sort_order asc, name asc").Find(&locations).Error; err != nil {
		return nil, nil, err
	}
	err = h.db.Where("is_active = ?", true).Order("sort_order asc, name asc").Find(&types).Error
	return locations, types, err
}

// Index shows the six newest active listings.
func (h *PageHandler) Index(c *fiber.Ctx) error {
	properties, err := h.listings.Latest(6)
	if err != nil {
		return err
	}
	locations, types, err := h.catalog()
	if err != nil {
		return err
	}

	return c.Render("index", fiber.Map{
		"Title":         "UniHome",
		"User":          middleware.CurrentUser(c),
		"Properties":    services.SerializeProperties(properties),
		"Locations":     locations,
		"PropertyTypes": types,
		"PriceBuckets":  services.SearchPageBuckets,
	}, publicLayout)
}

// Search shows listings filtered by location, type, price bucket and sort label.
func (h *PageHandler) Search(c *fiber.Ctx) error {
	filter := services.ParseSearchPageFilter(queryFunc(c))

	properties, err := h.listings.SearchPage(filter)
	if err != nil {
		return err
	}
	locations, types, err := h.catalog()
	if err != nil {
		return err
	}

	return c.Render("search", fiber.Map{
		"Title":         "搜索房源",
		"User":          middleware.CurrentUser(c),
		"Properties":    services.SerializeProperties(properties),
		"Filters":       filter,
		"Locations":     locations,
		"PropertyTypes": types,
		"PriceBuckets":  services.SearchPageBuckets,
		"Sorts":         services.SearchPageSorts,
	}, publicLayout)
}

// Detail shows one listing and up to three similar ones.
func (h *PageHandler) Detail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	property, err := h.listings.Find(id)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	similar, err := h.listings.Similar(property, 3)
	if err != nil {
		return err
	}

	return c.Render("detail", fiber.Map{
		"Title":    property.Name,
		"User":     middleware.CurrentUser(c),
		"Property": services.SerializeProperty(property),
		"Similar":  services.SerializeProperties(similar),
	}, publicLayout)
}

// Favorites renders the favorites page; data is loaded from the API.
func (h *PageHandler) Favorites(c *fiber.Ctx) error {
	return c.Render("favorites", fiber.Map{
		"Title": "我的收藏",
		"User":  middleware.CurrentUser(c),
	}, publicLayout)
}
