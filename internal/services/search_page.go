package services

import (
	"github.com/example/unihome/internal/models"
)

// Price buckets offered by the search page. Each covers both currencies.
const (
	PriceBucketLow  = "¥1000-3000 / $200-500"
	PriceBucketMid  = "¥3000-5000 / $500-800"
	PriceBucketHigh = "¥5000+ / $800+"
)

// Sort labels offered by the search page.
const (
	SortPriceAsc  = "价格 ↑"
	SortPriceDesc = "价格 ↓"
	SortNewest    = "最新"
)

// SearchPageBuckets lists the bucket labels in display order.
var SearchPageBuckets = []string{PriceBucketLow, PriceBucketMid, PriceBucketHigh}

// SearchPageSorts lists the sort labels in display order.
var SearchPageSorts = []string{SortPriceAsc, SortPriceDesc, SortNewest}

// SearchPageFilter is the query string of the public search page.
type SearchPageFilter struct {
	Location string `json:"location"`
	Price    string `json:"price"`
	Type     string `json:"type"`
	Sort     string `json:"sort"`
}

// ParseSearchPageFilter reads the search page parameters.
func ParseSearchPageFilter(query func(key string) string) SearchPageFilter {
	f := SearchPageFilter{
		Location: query("location"),
		Price:    query("price"),
		Type:     query("type"),
		Sort:     query("sort"),
	}
	if f.Sort == "" {
		f.Sort = "recommended"
	}
	return f
}

// SearchPage returns every active listing matching the search page filter.
func (s *ListingService) SearchPage(f SearchPageFilter) ([]models.Property, error) {
	query := s.db.Scopes(WithPropertyRelations).Where("status = ?", models.StatusActive)

	if !isAll(f.Location) {
		query = query.Where("location = ?", f.Location)
	}
	if !isAll(f.Type) {
		query = query.Where("property_type = ?", f.Type)
	}

	switch f.Price {
	case PriceBucketLow:
		query = query.Where("(currency = ? AND price BETWEEN ? AND ?) OR (currency = ? AND price BETWEEN ? AND ?)",
			models.CurrencyCNY, 1000, 3000, models.CurrencyCAD, 200, 500)
	case PriceBucketMid:
		query = query.Where("(currency = ? AND price BETWEEN ? AND ?) OR (currency = ? AND price BETWEEN ? AND ?)",
			models.CurrencyCNY, 3000, 5000, models.CurrencyCAD, 500, 800)
	case PriceBucketHigh:
		query = query.Where("(currency = ? AND price > ?) OR (currency = ? AND price > ?)",
			models.CurrencyCNY, 5000, models.CurrencyCAD, 800)
	}

	switch f.Sort {
	case SortPriceAsc:
		query = query.Order("price asc, id asc")
	case SortPriceDesc:
		query = query.Order("price desc, id asc")
	case SortNewest:
		query = query.Order("created_at desc, id asc")
	default:
		query = query.Order("id asc")
	}

	var properties []models.Property
	err := query.Find(&properties).Error
	return properties, err
}
