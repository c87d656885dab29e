package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/services"
)

// CatalogHandler manages locations and property types.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

type locationPayload struct {
	Name        *string `json:"name"`
	Country     *string `json:"country"`
	DisplayName *string `json:"display_name"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

type propertyTypePayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func activeOnly(c *fiber.Ctx) bool {
	return strings.ToLower(c.Query("active_only", "true")) == "true"
}

// ListLocations returns locations grouped by country, or a flat list when a
// country is requested.
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	country := c.Query("country")

	query := h.db.Model(&models.Location{})
	if activeOnly(c) {
		query = query.Where("is_active = ?", true)
	}
	if country != "" {
		query = query.Where("country = ?", country)
	}

	var locations []models.Location
	if err := query.Order("sort_order asc, name asc").Find(&locations).Error; err != nil {
		return err
	}

	if country != "" {
		data := make([]map[string]interface{}, 0, len(locations))
		for i := range locations {
			data = append(data, locations[i].ToMap())
		}
		return c.JSON(fiber.Map{"success": true, "data": data, "total": len(locations)})
	}

	grouped := map[string][]map[string]interface{}{}
	for i := range locations {
		grouped[locations[i].Country] = append(grouped[locations[i].Country], locations[i].ToMap())
	}
	return c.JSON(fiber.Map{"success": true, "data": grouped, "total": len(locations)})
}

// ListPropertyTypes returns property types in display order.
func (h *CatalogHandler) ListPropertyTypes(c *fiber.Ctx) error {
	query := h.db.Model(&models.PropertyType{})
	if activeOnly(c) {
		query = query.Where("is_active = ?", true)
	}

	var types []models.PropertyType
	if err := query.Order("sort_order asc, name asc").Find(&types).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": types, "total": len(types)})
}

// AllLocations lists every location for the admin console.
func (h *CatalogHandler) AllLocations(c *fiber.Ctx) error {
	var locations []models.Location
	if err := h.db.Order("sort_order asc, name asc").Find(&locations).Error; err != nil {
		return err
	}

	data := make([]map[string]interface{}, 0, len(locations))
	for i := range locations {
		data = append(data, locations[i].ToMap())
	}
	return c.JSON(fiber.Map{"success": true, "data": data, "total": len(locations)})
}

// AllPropertyTypes lists every property type for the admin console.
func (h *CatalogHandler) AllPropertyTypes(c *fiber.Ctx) error {
	var types []models.PropertyType
	if err := h.db.Order("sort_order asc, name asc").Find(&types).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": types, "total": len(types)})
}

// CreateLocation adds a location. Display name defaults to "name (country)".
func (h *CatalogHandler) CreateLocation(c *fiber.Ctx) error {
	var payload locationPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Name == nil || *payload.Name == "" || payload.Country == nil || *payload.Country == "" {
		return fiber.NewError(fiber.StatusBadRequest, "缺少位置名称或国家")
	}

	taken, err := services.LocationNameTaken(h.db, *payload.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return fiber.NewError(fiber.StatusBadRequest, services.ErrLocationExists.Error())
	}

	location := models.Location{
		Name:     *payload.Name,
		Country:  *payload.Country,
		IsActive: true,
	}
	location.DisplayName = fmt.Sprintf("%s (%s)", location.Name, location.Country)
	if payload.DisplayName != nil && *payload.DisplayName != "" {
		location.DisplayName = *payload.DisplayName
	}
	if payload.SortOrder != nil {
		location.SortOrder = *payload.SortOrder
	}
	if payload.IsActive != nil {
		location.IsActive = *payload.IsActive
	}

	if err := h.db.Create(&location).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "位置创建成功", "data": location.ToMap()})
}

// UpdateLocation applies the fields present in the body.
func (h *CatalogHandler) UpdateLocation(c *fiber.Ctx) error {
	location, err := h.findLocation(c)
	if err != nil {
		return err
	}

	var payload locationPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Name != nil {
		taken, err := services.LocationNameTaken(h.db, *payload.Name, location.ID)
		if err != nil {
			return err
		}
		if taken {
			return fiber.NewError(fiber.StatusBadRequest, services.ErrLocationExists.Error())
		}
		location.Name = *payload.Name
	}
	if payload.Country != nil {
		location.Country = *payload.Country
	}
	if payload.DisplayName != nil {
		location.DisplayName = *payload.DisplayName
	}
	if payload.SortOrder != nil {
		location.SortOrder = *payload.SortOrder
	}
	if payload.IsActive != nil {
		location.IsActive = *payload.IsActive
	}

	if err := h.db.Save(location).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "位置更新成功", "data": location.ToMap()})
}

// DeleteLocation removes a location no listing uses.
func (h *CatalogHandler) DeleteLocation(c *fiber.Ctx) error {
	location, err := h.findLocation(c)
	if err != nil {
		return err
	}

	if err := services.DeleteLocation(h.db, location); err != nil {
		var inUse *services.InUseError
		if errors.As(err, &inUse) {
			return fiber.NewError(fiber.StatusBadRequest, inUse.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "位置删除成功"})
}

// CreatePropertyType adds a property type.
func (h *CatalogHandler) CreatePropertyType(c *fiber.Ctx) error {
	var payload propertyTypePayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Name == nil || *payload.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "缺少类型名称")
	}

	taken, err := services.PropertyTypeNameTaken(h.db, *payload.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return fiber.NewError(fiber.StatusBadRequest, services.ErrPropertyTypeExists.Error())
	}

	propertyType := models.PropertyType{Name: *payload.Name, IsActive: true}
	if payload.Description != nil {
		propertyType.Description = *payload.Description
	}
	if payload.SortOrder != nil {
		propertyType.SortOrder = *payload.SortOrder
	}
	if payload.IsActive != nil {
		propertyType.IsActive = *payload.IsActive
	}

	if err := h.db.Create(&propertyType).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "房屋类型创建成功", "data": propertyType})
}

// UpdatePropertyType applies the fields present in the body.
func (h *CatalogHandler) UpdatePropertyType(c *fiber.Ctx) error {
	propertyType, err := h.findPropertyType(c)
	if err != nil {
		return err
	}

	var payload propertyTypePayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Name != nil {
		taken, err := services.PropertyTypeNameTaken(h.db, *payload.Name, propertyType.ID)
		if err != nil {
			return err
		}
		if taken {
			return fiber.NewError(fiber.StatusBadRequest, services.ErrPropertyTypeExists.Error())
		}
		propertyType.Name = *payload.Name
	}
	if payload.Description != nil {
		propertyType.Description = *payload.Description
	}
	if payload.SortOrder != nil {
		propertyType.SortOrder = *payload.SortOrder
	}
	if payload.IsActive != nil {
		propertyType.IsActive = *payload.IsActive
	}

	if err := h.db.Save(propertyType).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "房屋类型更新成功", "data": propertyType})
}

// DeletePropertyType removes a type no listing uses.
func (h *CatalogHandler) DeletePropertyType(c *fiber.Ctx) error {
	propertyType, err := h.findPropertyType(c)
	if err != nil {
		return err
	}

	if err := services.DeletePropertyType(h.db, propertyType); err != nil {
		var inUse *services.InUseError
		if errors.As(err, &inUse) {
			return fiber.NewError(fiber.StatusBadRequest, inUse.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "房屋类型删除成功"})
}

func (h *CatalogHandler) findLocation(c *fiber.Ctx) (*models.Location, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}

	var location models.Location
	if err := h.db.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "位置不存在")
		}
		return nil, err
	}
	return &location, nil
}

func (h *CatalogHandler) findPropertyType(c *fiber.Ctx) (*models.PropertyType, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}

	var propertyType models.PropertyType
	if err := h.db.First(&propertyType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "房屋类型不存在")
		}
		return nil, err
	}
	return &propertyType, nil
}
