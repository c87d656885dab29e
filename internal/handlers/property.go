package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/services"
)

// PropertyHandler serves the public listing API.
type PropertyHandler struct {
	db       *gorm.DB
	listings *services.ListingService
}

// NewPropertyHandler constructs PropertyHandler.
func NewPropertyHandler(db *gorm.DB) *PropertyHandler {
	return &PropertyHandler{db: db, listings: services.NewListingService(db)}
}

// ListProperties returns a filtered, sorted page of listings.
func (h *PropertyHandler) ListProperties(c *fiber.Ctx) error {
	filter := services.ParseListingFilter(queryFunc(c))

	page, err := h.listings.Search(filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       services.SerializeProperties(page.Properties),
		"pagination": filter.Pagination.Meta(page.Total),
		"filters":    filter.Echo(),
	})
}

// GetProperty returns a single serialized listing.
func (h *PropertyHandler) GetProperty(c *fiber.Ctx) error {
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

	return c.JSON(services.SerializeProperty(property))
}

// Stats returns the dashboard counters.
func (h *PropertyHandler) Stats(c *fiber.Ctx) error {
	stats, err := services.Dashboard(h.db)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"properties_count":    stats.TotalProperties,
		"users_count":         stats.TotalUsers,
		"active_properties":   stats.ActiveProperties,
		"pending_properties":  stats.PendingProperties,
		"inactive_properties": stats.InactiveProperties,
		"orders_count":        stats.Orders,
		"messages_count":      stats.Messages,
	})
}

// PriceRanges returns price buckets derived from active listings.
func (h *PropertyHandler) PriceRanges(c *fiber.Ctx) error {
	ranges, stats, ok, err := services.PriceRanges(h.db)
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(fiber.Map{"success": true, "data": ranges, "message": "暂无房源数据"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    ranges,
		"total":   len(ranges),
		"stats":   stats,
	})
}
