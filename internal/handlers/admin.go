package handlers

import (
	"bytes"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/services"
	"github.com/example/unihome/internal/utils"
)

// AdminHandler serves the admin analytics API.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// CustomerFavorites lists favorites across all customers.
func (h *AdminHandler) CustomerFavorites(c *fiber.Ctx) error {
	q := services.ParseFavoriteQuery(queryFunc(c))
	pg := utils.ParsePagination(c, 20, 0)

	favorites, total, err := services.CustomerFavorites(h.db, q, pg)
	if err != nil {
		return err
	}

	data := make([]map[string]interface{}, 0, len(favorites))
	for i := range favorites {
		data = append(data, services.CustomerFavoriteMap(&favorites[i]))
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       data,
		"pagination": pg.Meta(total),
	})
}

// CustomerFavoriteStats returns totals and top lists.
func (h *AdminHandler) CustomerFavoriteStats(c *fiber.Ctx) error {
	stats, err := services.CustomerFavoriteStats(h.db, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}

// ExportCustomerFavorites streams the filtered favorites as a CSV attachment.
func (h *AdminHandler) ExportCustomerFavorites(c *fiber.Ctx) error {
	q := services.ParseFavoriteQuery(queryFunc(c))

	favorites, err := services.AllCustomerFavorites(h.db, q)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := services.WriteFavoritesCSV(&buf, favorites); err != nil {
		return err
	}

	stamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("客户收藏数据_%s.csv", stamp)

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(
		`attachment; filename="customer_favorites_%s.csv"; filename*=UTF-8''%s`, stamp, url.PathEscape(filename)))
	return c.Send(buf.Bytes())
}
