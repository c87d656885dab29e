package models

// Location is a curated city used by search filters.
type Location struct {
	BaseModel
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Country     string `gorm:"size:50;not null" json:"country"`
	DisplayName string `gorm:"size:150" json:"display_name"`
	IsActive    bool   `json:"is_active"`
	SortOrder   int    `gorm:"default:0" json:"sort_order"`
}

// Label falls back to the name when no display name was set.
func (l *Location) Label() string {
	if l.DisplayName != "" {
		return l.DisplayName
	}
	return l.Name
}

// PropertyType is a curated listing category.
type PropertyType struct {
	BaseModel
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:200" json:"description"`
	IsActive    bool   `json:"is_active"`
	SortOrder   int    `gorm:"default:0" json:"sort_order"`
}

// ToMap renders the location with its display name resolved.
func (l *Location) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":           l.ID,
		"name":         l.Name,
		"country":      l.Country,
		"display_name": l.Label(),
		"is_active":    l.IsActive,
		"sort_order":   l.SortOrder,
		"created_at":   l.CreatedAt,
		"updated_at":   l.UpdatedAt,
	}
}
