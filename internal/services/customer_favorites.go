package services

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/utils"
)

const dateLayout = "2006-01-02"

// CSVHeader is the first row of the favorites export.
var CSVHeader = []string{"收藏ID", "客户姓名", "客户邮箱", "客户注册时间", "房源名称", "房源位置", "房源价格", "货币", "收藏时间"}

// FavoriteQuery filters the admin view of customer favorites.
type FavoriteQuery struct {
	Search     string
	DateFrom   *time.Time
	DateTo     *time.Time
	PropertyID uint
	UserID     uint
}

// ParseFavoriteQuery reads filters through query. Malformed dates and ids are ignored.
func ParseFavoriteQuery(query func(key string) string) FavoriteQuery {
	q := FavoriteQuery{
		Search:     strings.TrimSpace(query("search")),
		PropertyID: parseUint(query("property_id")),
		UserID:     parseUint(query("user_id")),
	}

	if from, err := time.ParseInLocation(dateLayout, query("date_from"), time.Local); err == nil {
		q.DateFrom = &from
	}
	if to, err := time.ParseInLocation(dateLayout, query("date_to"), time.Local); err == nil {
		end := to.Add(24*time.Hour - time.Second)
		q.DateTo = &end
	}

	return q
}

// Apply joins users and properties and adds the active filters.
func (q FavoriteQuery) Apply(db *gorm.DB) *gorm.DB {
	db = db.Model(&models.Favorite{}).
		Joins("JOIN users ON users.id = favorites.user_id").
		Joins("JOIN properties ON properties.id = favorites.property_id")

	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("users.username LIKE ? OR users.email LIKE ? OR properties.name LIKE ? OR properties.location LIKE ?",
			like, like, like, like)
	}
	if q.DateFrom != nil {
		db = db.Where("favorites.created_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("favorites.created_at <= ?", *q.DateTo)
	}
	if q.PropertyID != 0 {
		db = db.Where("favorites.property_id = ?", q.PropertyID)
	}
	if q.UserID != 0 {
		db = db.Where("favorites.user_id = ?", q.UserID)
	}

	return db
}

// CustomerFavorites returns one page of matching favorites, newest first.
func CustomerFavorites(db *gorm.DB, q FavoriteQuery, pg utils.Pagination) ([]models.Favorite, int64, error) {
	var total int64
	if err := q.Apply(db).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var favorites []models.Favorite
	err := q.Apply(db).
		Preload("User").
		Preload("Property.Images", orderByID).
		Order("favorites.created_at desc, favorites.id desc").
		Limit(pg.PerPage).
		Offset(pg.Offset).
		Find(&favorites).Error
	return favorites, total, err
}

// AllCustomerFavorites returns every matching favorite, newest first.
func AllCustomerFavorites(db *gorm.DB, q FavoriteQuery) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := q.Apply(db).
		Preload("User").
		Preload("Property").
		Order("favorites.created_at desc, favorites.id desc").
		Find(&favorites).Error
	return favorites, err
}

// CustomerFavoriteMap renders a favorite for the admin list.
func CustomerFavoriteMap(f *models.Favorite) map[string]interface{} {
	out := map[string]interface{}{
		"id":         f.ID,
		"created_at": f.CreatedAt,
	}
	if f.User != nil {
		out["user"] = map[string]interface{}{
			"id":         f.User.ID,
			"username":   f.User.Username,
			"email":      f.User.Email,
			"created_at": f.User.CreatedAt,
		}
	}
	if f.Property != nil {
		images := f.Property.ImagePaths()
		if len(images) > 1 {
			images = images[:1]
		}
		out["property"] = map[string]interface{}{
			"id":       f.Property.ID,
			"name":     f.Property.Name,
			"location": f.Property.Location,
			"price":    f.Property.Price,
			"currency": f.Property.Currency,
			"images":   images,
		}
	}
	return out
}

// PopularProperty is a row of the most-favorited listings.
type PopularProperty struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	FavoriteCount int64  `json:"favorite_count"`
}

// ActiveUser is a row of the users with the most favorites.
type ActiveUser struct {
	ID            uint   `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FavoriteCount int64  `json:"favorite_count"`
}

// FavoriteStats summarises favorites for the admin console.
type FavoriteStats struct {
	TotalFavorites    int64             `json:"total_favorites"`
	TodayFavorites    int64             `json:"today_favorites"`
	WeekFavorites     int64             `json:"week_favorites"`
	PopularProperties []PopularProperty `json:"popular_properties"`
	ActiveUsers       []ActiveUser      `json:"active_users"`
}

// CustomerFavoriteStats computes totals relative to now.
func CustomerFavoriteStats(db *gorm.DB, now time.Time) (*FavoriteStats, error) {
	stats := &FavoriteStats{PopularProperties: []PopularProperty{}, ActiveUsers: []ActiveUser{}}

	if err := db.Model(&models.Favorite{}).Count(&stats.TotalFavorites).Error; err != nil {
		return nil, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.Favorite{}).
		Where("created_at >= ? AND created_at < ?", startOfDay, startOfDay.AddDate(0, 0, 1)).
		Count(&stats.TodayFavorites).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Favorite{}).
		Where("created_at >= ?", now.AddDate(0, 0, -7)).
		Count(&stats.WeekFavorites).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Property{}).
		Select("properties.id, properties.name, properties.location, COUNT(favorites.id) AS favorite_count").
		Joins("JOIN favorites ON favorites.property_id = properties.id").
		Group("properties.id, properties.name, properties.location").
		Order("favorite_count desc, properties.id asc").
		Limit(5).
		Scan(&stats.PopularProperties).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.User{}).
		Select("users.id, users.username, users.email, COUNT(favorites.id) AS favorite_count").
		Joins("JOIN favorites ON favorites.user_id = users.id").
		Group("users.id, users.username, users.email").
		Order("favorite_count desc, users.id asc").
		Limit(5).
		Scan(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// WriteFavoritesCSV writes the header row and one row per favorite.
func WriteFavoritesCSV(w io.Writer, favorites []models.Favorite) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}

	const stamp = "2006-01-02 15:04:05"
	for _, f := range favorites {
		row := make([]string, 0, len(CSVHeader))
		row = append(row, strconv.FormatUint(uint64(f.ID), 10))
		if f.User != nil {
			row = append(row, f.User.Username, f.User.Email, f.User.CreatedAt.Format(stamp))
		} else {
			row = append(row, "", "", "")
		}
		if f.Property != nil {
			row = append(row,
				f.Property.Name,
				f.Property.Location,
				strconv.FormatFloat(f.Property.Price, 'f', -1, 64),
				f.Property.Currency,
			)
		} else {
			row = append(row, "", "", "", "")
		}
		row = append(row, f.CreatedAt.Format(stamp))

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func parseUint(value string) uint {
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}
