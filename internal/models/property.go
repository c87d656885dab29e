package models

import (
	"gorm.io/datatypes"
)

// Property statuses.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Currency symbols used by listings.
const (
	CurrencyCAD = "$"
	CurrencyCNY = "¥"
)

// Property is a rental listing. Location and PropertyType hold the display names;
// LocationID and PropertyTypeID are set only when the name matched a reference row.
type Property struct {
	BaseModel
	Name           string          `gorm:"size:150;not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	Location       string          `gorm:"size:100;not null;index" json:"location"`
	LocationID     *uint           `gorm:"index" json:"location_id"`
	Country        string          `gorm:"size:50;not null" json:"country"`
	Address        string          `gorm:"size:200" json:"address"`
	Price          float64         `gorm:"not null;index" json:"price"`
	Currency       string          `gorm:"size:10;default:$" json:"currency"`
	Bedrooms       *int            `json:"bedrooms"`
	Bathrooms      *int            `json:"bathrooms"`
	Area           *float64        `json:"area"`
	PropertyType   string          `gorm:"size:50;index" json:"property_type"`
	PropertyTypeID *uint           `gorm:"index" json:"property_type_id"`
	Status         string          `gorm:"size:20;default:pending;index" json:"status"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	Owner          *User           `gorm:"foreignKey:UserID" json:"-"`
	Rent           *float64        `json:"rent"`
	Deposit        *float64        `json:"deposit"`
	Utility        string          `gorm:"size:50" json:"utility"`
	MinTerm        string          `gorm:"size:50" json:"min_term"`
	ExtraInfo      datatypes.JSON  `json:"extra_info"`
	SeedContent    datatypes.JSON  `json:"-"`
	Images         []PropertyImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	Videos         []PropertyVideo `gorm:"constraint:OnDelete:CASCADE" json:"videos"`
}

// PropertyImage is an uploaded picture, ordered by id.
type PropertyImage struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Path       string `gorm:"size:200;not null" json:"path"`
	PropertyID uint   `gorm:"not null;index" json:"property_id"`
}

// PropertyVideo is an uploaded clip, ordered by id.
type PropertyVideo struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Path       string `gorm:"size:200;not null" json:"path"`
	PropertyID uint   `gorm:"not null;index" json:"property_id"`
}

// ImagePaths returns the image paths in upload order.
func (p *Property) ImagePaths() []string {
	paths := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		paths = append(paths, img.Path)
	}
	return paths
}

// VideoPaths returns the video paths in upload order.
func (p *Property) VideoPaths() []string {
	paths := make([]string, 0, len(p.Videos))
	for _, vid := range p.Videos {
		paths = append(paths, vid.Path)
	}
	return paths
}
