package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
)

// InUseError reports how many listings block deleting a reference row.
type InUseError struct {
	Count int64
	Kind  string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("无法删除，有 %d 个房源正在使用此%s", e.Count, e.Kind)
}

// Unwrap lets errors.Is match ErrReferenceInUse.
func (e *InUseError) Unwrap() error {
	return ErrReferenceInUse
}

// ResolveReferences links the property to the Location and PropertyType rows
// whose names match its text fields, and clears the links otherwise.
func ResolveReferences(db *gorm.DB, property *models.Property) error {
	property.LocationID = nil
	property.PropertyTypeID = nil

	var location models.Location
	err := db.Where("name = ?", property.Location).First(&location).Error
	switch {
	case err == nil:
		property.LocationID = &location.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if property.PropertyType == "" {
		return nil
	}

	var propertyType models.PropertyType
	err = db.Where("name = ?", property.PropertyType).First(&propertyType).Error
	switch {
	case err == nil:
		property.PropertyTypeID = &propertyType.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	return nil
}

// LocationUsage counts listings that reference the location by id or by name.
func LocationUsage(db *gorm.DB, location *models.Location) (int64, error) {
	var count int64
	err := db.Model(&models.Property{}).
		Where("location_id = ? OR location = ?", location.ID, location.Name).
		Count(&count).Error
	return count, err
}

// PropertyTypeUsage counts listings that reference the type by id or by name.
func PropertyTypeUsage(db *gorm.DB, propertyType *models.PropertyType) (int64, error) {
	var count int64
	err := db.Model(&models.Property{}).
		Where("property_type_id = ? OR property_type = ?", propertyType.ID, propertyType.Name).
		Count(&count).Error
	return count, err
}

// DeleteLocation removes the location unless listings still use it.
func DeleteLocation(db *gorm.DB, location *models.Location) error {
	return db.Transaction(func(tx *gorm.DB) error {
		count, err := LocationUsage(tx, location)
		if err != nil {
			return err
		}
		if count > 0 {
			return &InUseError{Count: count, Kind: "位置"}
		}
		return tx.Delete(location).Error
	})
}

// DeletePropertyType removes the type unless listings still use it.
func DeletePropertyType(db *gorm.DB, propertyType *models.PropertyType) error {
	return db.Transaction(func(tx *gorm.DB) error {
		count, err := PropertyTypeUsage(tx, propertyType)
		if err != nil {
			return err
		}
		if count > 0 {
			return &InUseError{Count: count, Kind: "类型"}
		}
		return tx.Delete(propertyType).Error
	})
}

// LocationNameTaken reports whether another location already uses name.
func LocationNameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Location{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error
	return count > 0, err
}

// PropertyTypeNameTaken reports whether another type already uses name.
func PropertyTypeNameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&models.PropertyType{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error
	return count > 0, err
}
