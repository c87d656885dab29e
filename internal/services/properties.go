package services

import (
	"errors"
	"mime/multipart"

	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
)

// PropertyInput is the admin form for a listing.
type PropertyInput struct {
	Name         string
	Description  string
	Location     string
	Country      string
	Address      string
	Price        float64
	Currency     string
	Bedrooms     *int
	Bathrooms    *int
	Area         *float64
	PropertyType string
	Status       string
	Deposit      *float64
	Utility      string
	MinTerm      string
	Extra        ExtraInfoForm
}

// Uploads are the files attached to a property form.
type Uploads struct {
	Images []*multipart.FileHeader
	Videos []*multipart.FileHeader
}

// SaveResult reports what a create or update stored.
type SaveResult struct {
	Property       *models.Property
	ImagesUploaded int
	VideosUploaded int
}

// PropertyService writes listings and their media.
type PropertyService struct {
	db      *gorm.DB
	storage *UploadStorage
}

// NewPropertyService constructs PropertyService.
func NewPropertyService(db *gorm.DB, storage *UploadStorage) *PropertyService {
	return &PropertyService{db: db, storage: storage}
}

// Create stores a new listing owned by ownerID.
func (s *PropertyService) Create(ownerID uint, in PropertyInput, uploads Uploads) (*SaveResult, error) {
	property := models.Property{UserID: ownerID}
	applyInput(&property, in)
	if property.Status == "" {
		property.Status = models.StatusPending
	}
	if extra := BuildExtraInfo(in.Extra); extra != nil {
		property.ExtraInfo = extra
	}

	return s.save(&property, uploads, true)
}

// Update overwrites the listing fields, keeps extra_info when the form produced
// none and appends any new uploads.
func (s *PropertyService) Update(id uint, in PropertyInput, uploads Uploads) (*SaveResult, error) {
	var property models.Property
	if err := s.db.First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	applyInput(&property, in)
	if extra := BuildExtraInfo(in.Extra); extra != nil {
		property.ExtraInfo = extra
	}

	return s.save(&property, uploads, false)
}

func (s *PropertyService) save(property *models.Property, uploads Uploads, create bool) (*SaveResult, error) {
	images, err := s.storeAll(uploads.Images)
	if err != nil {
		return nil, err
	}
	videos, err := s.storeAll(uploads.Videos)
	if err != nil {
		s.removeAll(images)
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := ResolveReferences(tx, property); err != nil {
			return err
		}

		if create {
			if err := tx.Omit("Images", "Videos").Create(property).Error; err != nil {
				return err
			}
		} else if err := tx.Omit("Images", "Videos").Save(property).Error; err != nil {
			return err
		}

		for _, path := range images {
			if err := tx.Create(&models.PropertyImage{Path: path, PropertyID: property.ID}).Error; err != nil {
				return err
			}
		}
		for _, path := range videos {
			if err := tx.Create(&models.PropertyVideo{Path: path, PropertyID: property.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.removeAll(images)
		s.removeAll(videos)
		return nil, err
	}

	return &SaveResult{Property: property, ImagesUploaded: len(images), VideosUploaded: len(videos)}, nil
}

// Delete removes the listing with its media rows in one transaction, then removes
// uploaded files. Bundled assets are never removed.
func (s *PropertyService) Delete(id uint) error {
	var property models.Property
	if err := s.db.Preload("Images").Preload("Videos").First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", property.ID).Delete(&models.PropertyImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", property.ID).Delete(&models.PropertyVideo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Property{}, property.ID).Error
	})
	if err != nil {
		return err
	}

	s.removeAll(property.ImagePaths())
	s.removeAll(property.VideoPaths())
	return nil
}

// ToggleStatus flips active to inactive and anything else to active.
func (s *PropertyService) ToggleStatus(id uint) (string, error) {
	var property models.Property
	if err := s.db.Select("id", "status").First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPropertyNotFound
		}
		return "", err
	}

	next := models.StatusActive
	if property.Status == models.StatusActive {
		next = models.StatusInactive
	}

	if err := s.db.Model(&property).Update("status", next).Error; err != nil {
		return "", err
	}
	return next, nil
}

// storeAll saves every non-empty upload with an accepted extension. Others are
// skipped.
func (s *PropertyService) storeAll(files []*multipart.FileHeader) ([]string, error) {
	var paths []string
	for _, fh := range files {
		if fh == nil || fh.Filename == "" || !AllowedFile(fh.Filename) {
			continue
		}
		path, err := s.storage.Save(fh)
		if err != nil {
			s.removeAll(paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *PropertyService) removeAll(paths []string) {
	for _, path := range paths {
		s.storage.Remove(path)
	}
}

func applyInput(p *models.Property, in PropertyInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.Location = in.Location
	p.Country = in.Country
	p.Address = in.Address
	p.Price = in.Price
	p.Currency = in.Currency
	if p.Currency == "" {
		p.Currency = models.CurrencyCAD
	}
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = in.Bathrooms
	p.Area = in.Area
	p.PropertyType = in.PropertyType
	if in.Status != "" {
		p.Status = in.Status
	}
	price := in.Price
	p.Rent = &price
	p.Deposit = in.Deposit
	p.Utility = in.Utility
	p.MinTerm = in.MinTerm
}

// DashboardStats are the counters on the admin dashboard.
type DashboardStats struct {
	TotalProperties    int64 `json:"total_properties"`
	ActiveProperties   int64 `json:"active_properties"`
	PendingProperties  int64 `json:"pending_properties"`
	InactiveProperties int64 `json:"inactive_properties"`
	TotalUsers         int64 `json:"total_users"`
	Orders             int64 `json:"orders"`
	Messages           int64 `json:"messages"`
}

// Dashboard counts listings by status and users. Orders and messages are
// derived from listing counts; the platform has no order or message records.
func Dashboard(db *gorm.DB) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := db.Model(&models.Property{}).Count(&stats.TotalProperties).Error; err != nil {
		return nil, err
	}

	counts := map[string]*int64{
		models.StatusActive:   &stats.ActiveProperties,
		models.StatusPending:  &stats.PendingProperties,
		models.StatusInactive: &stats.InactiveProperties,
	}
	for status, target := range counts {
		if err := db.Model(&models.Property{}).Where("status = ?", status).Count(target).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	stats.Orders = stats.ActiveProperties + stats.PendingProperties
	stats.Messages = stats.PendingProperties
	return stats, nil
}
