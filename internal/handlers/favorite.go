package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/unihome/internal/middleware"
	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/services"
	"github.com/example/unihome/internal/utils"
)

// FavoriteHandler manages the current user's saved listings.
type FavoriteHandler struct {
	favorites *services.FavoriteService
}

// NewFavoriteHandler constructs FavoriteHandler.
func NewFavoriteHandler(favorites *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

type favoriteRequest struct {
	PropertyID utils.FlexUint `json:"property_id"`
}

func favoriteMap(f *models.Favorite) fiber.Map {
	var property interface{}
	if f.Property != nil {
		property = services.SerializeProperty(f.Property)
	}
	return fiber.Map{
		"id":          f.ID,
		"user_id":     f.UserID,
		"property_id": f.PropertyID,
		"property":    property,
		"created_at":  f.CreatedAt,
	}
}

// Add saves a listing for the current user.
func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.PropertyID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "缺少房源ID")
	}

	favorite, err := h.favorites.Add(user.ID, uint(req.PropertyID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPropertyNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrAlreadyFavorited):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "收藏成功", "data": favoriteMap(favorite)})
}

// Remove deletes a saved listing.
func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	propertyID, err := parseID(c, "property_id")
	if err != nil {
		return err
	}

	if err := h.favorites.Remove(user.ID, propertyID); err != nil {
		if errors.Is(err, services.ErrNotFavorited) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "取消收藏成功"})
}

// List returns the current user's favorites newest first.
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	favorites, err := h.favorites.List(user.ID)
	if err != nil {
		return err
	}

	data := make([]fiber.Map, 0, len(favorites))
	for i := range favorites {
		data = append(data, favoriteMap(&favorites[i]))
	}

	return c.JSON(fiber.Map{"success": true, "data": data})
}

// Check reports whether the current user saved the listing. Guests get
// need_login instead of an error.
func (h *FavoriteHandler) Check(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(fiber.Map{"success": true, "is_favorited": false, "need_login": true})
	}

	propertyID, err := parseID(c, "property_id")
	if err != nil {
		return err
	}

	favorited, err := h.favorites.IsFavorited(user.ID, propertyID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "is_favorited": favorited, "need_login": false})
}
