package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
)

// PriceRange is one selectable price bucket.
type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Label    string  `json:"label"`
	Currency string  `json:"currency"`
}

// PriceStats summarises active listing prices per currency.
type PriceStats struct {
	CADCount int       `json:"cad_count"`
	CNYCount int       `json:"cny_count"`
	CADRange []float64 `json:"cad_range"`
	CNYRange []float64 `json:"cny_range"`
}

// PriceRanges loads active listing prices and returns the buckets for both
// currencies. ok is false when there are no active listings.
func PriceRanges(db *gorm.DB) (ranges []PriceRange, stats PriceStats, ok bool, err error) {
	var rows []models.Property
	if err = db.Select("price", "currency").Where("status = ?", models.StatusActive).Find(&rows).Error; err != nil {
		return nil, stats, false, err
	}
	if len(rows) == 0 {
		return []PriceRange{}, stats, false, nil
	}

	var cad, cny []float64
	for _, row := range rows {
		switch row.Currency {
		case models.CurrencyCAD:
			cad = append(cad, row.Price)
		case models.CurrencyCNY:
			cny = append(cny, row.Price)
		}
	}

	ranges = []PriceRange{}
	stats.CADCount = len(cad)
	stats.CNYCount = len(cny)
	if len(cad) > 0 {
		lo, hi := minMax(cad)
		stats.CADRange = []float64{lo, hi}
		ranges = append(ranges, BucketsFor(models.CurrencyCAD, hi)...)
	}
	if len(cny) > 0 {
		lo, hi := minMax(cny)
		stats.CNYRange = []float64{lo, hi}
		ranges = append(ranges, BucketsFor(models.CurrencyCNY, hi)...)
	}

	return ranges, stats, true, nil
}

// BucketsFor picks the bucket set for a currency given its highest price.
func BucketsFor(currency string, maxPrice float64) []PriceRange {
	var bounds [][2]float64
	if currency == models.CurrencyCAD {
		switch {
		case maxPrice <= 800:
			bounds = [][2]float64{{0, 500}, {500, 800}}
		case maxPrice <= 1500:
			bounds = [][2]float64{{0, 600}, {600, 1000}, {1000, 1500}}
		default:
			bounds = [][2]float64{{0, 800}, {800, 1500}, {1500, NoPriceCeiling}}
		}
	} else {
		switch {
		case maxPrice <= 5000:
			bounds = [][2]float64{{0, 2000}, {2000, 3500}, {3500, 5000}}
		case maxPrice <= 8000:
			bounds = [][2]float64{{0, 3000}, {3000, 5000}, {5000, 8000}}
		default:
			bounds = [][2]float64{{0, 4000}, {4000, 8000}, {8000, NoPriceCeiling}}
		}
	}

	// Dollar labels carry a doubled sign, as the storefront has always shown them.
	prefix := currency
	if currency == models.CurrencyCAD {
		prefix = "$" + currency
	}

	ranges := make([]PriceRange, 0, len(bounds))
	for _, b := range bounds {
		label := fmt.Sprintf("%s%g-%g", prefix, b[0], b[1])
		if b[1] >= NoPriceCeiling {
			label = fmt.Sprintf("%s%g+", prefix, b[0])
		}
		ranges = append(ranges, PriceRange{Min: b[0], Max: b[1], Label: label, Currency: currency})
	}
	return ranges
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
