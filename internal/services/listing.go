package services

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/utils"
)

// Listing query limits.
const (
	DefaultPerPage = 50
	MaxPerPage     = 100
	NoPriceCeiling = 999999
)

var listingSortColumns = map[string]string{
	"price":      "price",
	"created_at": "created_at",
	"name":       "name",
}

// ListingFilter is the parsed form of the listing query string.
type ListingFilter struct {
	Location     string
	PropertyType string
	Country      string
	Currency     string
	MinPrice     *float64
	MaxPrice     *float64
	Status       string
	SortBy       string
	SortOrder    string
	Pagination   utils.Pagination
}

// ParseListingFilter reads listing parameters through query. Unparseable numbers
// are treated as absent.
func ParseListingFilter(query func(key string) string) ListingFilter {
	f := ListingFilter{
		Location:     query("location"),
		PropertyType: query("property_type"),
		Country:      query("country"),
		Currency:     query("currency"),
		MinPrice:     parseFloat(query("min_price")),
		MaxPrice:     parseFloat(query("max_price")),
		Status:       query("status"),
		SortBy:       query("sort_by"),
		SortOrder:    query("sort_order"),
		Pagination:   utils.NewPagination(query("page"), query("per_page"), DefaultPerPage, MaxPerPage),
	}

	if f.Status == "" {
		f.Status = models.StatusActive
	}
	if f.SortBy == "" {
		f.SortBy = "created_at"
	}
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	}

	return f
}

// Apply adds the WHERE clauses for every active filter.
func (f ListingFilter) Apply(db *gorm.DB) *gorm.DB {
	if !isAll(f.Status) {
		db = db.Where("status = ?", f.Status)
	}
	if !isAll(f.Location) {
		db = db.Where("location = ?", f.Location)
	}
	if !isAll(f.PropertyType) {
		db = db.Where("property_type = ?", f.PropertyType)
	}
	if !isAll(f.Country) {
		db = db.Where("country = ?", f.Country)
	}

	currency := !isAll(f.Currency)
	if f.MinPrice != nil || f.MaxPrice != nil || currency {
		if currency {
			db = db.Where("currency = ?", f.Currency)
		}
		if f.MinPrice != nil {
			db = db.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil && *f.MaxPrice < NoPriceCeiling {
			db = db.Where("price <= ?", *f.MaxPrice)
		}
	}

	return db
}

// OrderClause returns the ORDER BY expression. The id tie-breaker keeps pages stable.
func (f ListingFilter) OrderClause() string {
	column, ok := listingSortColumns[f.SortBy]
	if !ok {
		return "created_at desc, id asc"
	}

	direction := "desc"
	if f.SortOrder == "asc" {
		direction = "asc"
	}

	return column + " " + direction + ", id asc"
}

// Echo reports the parameters the query was built from.
func (f ListingFilter) Echo() map[string]interface{} {
	return map[string]interface{}{
		"location":      nullable(f.Location),
		"property_type": nullable(f.PropertyType),
		"min_price":     f.MinPrice,
		"max_price":     f.MaxPrice,
		"currency":      nullable(f.Currency),
		"country":       nullable(f.Country),
		"status":        f.Status,
		"sort_by":       f.SortBy,
		"sort_order":    f.SortOrder,
	}
}

// ListingPage is one page of a filtered listing query.
type ListingPage struct {
	Properties []models.Property
	Total      int64
}

// ListingService runs listing queries.
type ListingService struct {
	db *gorm.DB
}

// NewListingService constructs ListingService.
func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{db: db}
}

// Search returns the requested page of properties with owner, images and videos loaded.
func (s *ListingService) Search(f ListingFilter) (*ListingPage, error) {
	var total int64
	if err := f.Apply(s.db.Model(&models.Property{})).Count(&total).Error; err != nil {
		return nil, err
	}

	var properties []models.Property
	err := f.Apply(s.db.Model(&models.Property{})).
		Scopes(WithPropertyRelations).
		Order(f.OrderClause()).
		Limit(f.Pagination.PerPage).
		Offset(f.Pagination.Offset).
		Find(&properties).Error
	if err != nil {
		return nil, err
	}

	return &ListingPage{Properties: properties, Total: total}, nil
}

// Find loads a single property with its relations.
func (s *ListingService) Find(id uint) (*models.Property, error) {
	var property models.Property
	if err := s.db.Scopes(WithPropertyRelations).First(&property, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

// Latest returns the newest active properties.
func (s *ListingService) Latest(limit int) ([]models.Property, error) {
	var properties []models.Property
	err := s.db.Scopes(WithPropertyRelations).
		Where("status = ?", models.StatusActive).
		Order("created_at desc, id asc").
		Limit(limit).
		Find(&properties).Error
	return properties, err
}

// Similar returns other active properties in the same location.
func (s *ListingService) Similar(property *models.Property, limit int) ([]models.Property, error) {
	var properties []models.Property
	err := s.db.Scopes(WithPropertyRelations).
		Where("location = ? AND id <> ? AND status = ?", property.Location, property.ID, models.StatusActive).
		Order("created_at desc, id asc").
		Limit(limit).
		Find(&properties).Error
	return properties, err
}

// WithPropertyRelations preloads what the serializer reads.
func WithPropertyRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner").
		Preload("Images", orderByID).
		Preload("Videos", orderByID)
}

func orderByID(tx *gorm.DB) *gorm.DB {
	return tx.Order("id asc")
}

func isAll(value string) bool {
	return value == "" || value == "all" || value == "全部"
}

func parseFloat(value string) *float64 {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
