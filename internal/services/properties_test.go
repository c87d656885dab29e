package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/unihome/internal/models"
)

func newPropertyService(t *testing.T) (*PropertyService, *models.User) {
	t.Helper()

	db := newTestDB(t)
	storage, err := NewUploadStorage(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Location{Name: "多伦多", Country: "Canada", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.PropertyType{Name: "整套公寓", IsActive: true}).Error)

	return NewPropertyService(db, storage), createUser(t, db, "admin")
}

func sampleInput() PropertyInput {
	return PropertyInput{
		Name:         "Sunny Loft",
		Location:     "多伦多",
		Country:      "Canada",
		Price:        820,
		PropertyType: "整套公寓",
		Extra: ExtraInfoForm{
			Facilities: []string{"wifi"},
			Desc:       `["Bright and quiet"]`,
		},
	}
}

func TestCreatePropertyDefaultsAndLinks(t *testing.T) {
	svc, admin := newPropertyService(t)

	uploads := Uploads{
		Images: fileHeaders(t, "images", map[string]string{"room.png": "png"}),
		Videos: fileHeaders(t, "videos", map[string]string{"notes.txt": "skip me"}),
	}
	result, err := svc.Create(admin.ID, sampleInput(), uploads)
	require.NoError(t, err)

	p := result.Property
	assert.Equal(t, models.StatusPending, p.Status)
	assert.Equal(t, models.CurrencyCAD, p.Currency)
	require.NotNil(t, p.Rent)
	assert.Equal(t, 820.0, *p.Rent)
	require.NotNil(t, p.LocationID)
	require.NotNil(t, p.PropertyTypeID)
	assert.Equal(t, 1, result.ImagesUploaded)
	assert.Equal(t, 0, result.VideosUploaded)

	found, err := NewListingService(svc.db).Find(p.ID)
	require.NoError(t, err)
	require.Len(t, found.Images, 1)

	record := SerializeProperty(found)
	assert.Equal(t, []string{"Bright and quiet"}, record.DescLines())
	assert.Equal(t, []Icon{{Icon: "fa-wifi", Label: "免费WiFi"}}, record.IconList("facilities"))
}

func TestUpdateKeepsExtraInfoWhenFormEmpty(t *testing.T) {
	svc, admin := newPropertyService(t)

	created, err := svc.Create(admin.ID, sampleInput(), Uploads{})
	require.NoError(t, err)

	input := sampleInput()
	input.Name = "Renamed"
	input.Price = 900
	input.Location = "unknown town"
	input.Extra = ExtraInfoForm{}

	updated, err := svc.Update(created.Property.ID, input, Uploads{})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Property.Name)
	assert.Nil(t, updated.Property.LocationID)
	assert.Equal(t, 900.0, *updated.Property.Rent)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(updated.Property.ExtraInfo, &extra))
	assert.Contains(t, extra, "facilities")
}

func TestUpdateMissingProperty(t *testing.T) {
	svc, _ := newPropertyService(t)

	_, err := svc.Update(404, sampleInput(), Uploads{})
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestDeletePropertyRemovesMediaRowsAndFiles(t *testing.T) {
	svc, admin := newPropertyService(t)

	result, err := svc.Create(admin.ID, sampleInput(), Uploads{
		Images: fileHeaders(t, "images", map[string]string{"room.png": "png"}),
	})
	require.NoError(t, err)

	var image models.PropertyImage
	require.NoError(t, svc.db.Where("property_id = ?", result.Property.ID).First(&image).Error)
	require.NoError(t, svc.db.Create(&models.PropertyImage{Path: "static/images/icon_lg.png", PropertyID: result.Property.ID}).Error)

	require.NoError(t, svc.Delete(result.Property.ID))

	_, err = os.Stat(filepath.FromSlash(image.Path))
	assert.True(t, os.IsNotExist(err))

	var count int64
	require.NoError(t, svc.db.Model(&models.PropertyImage{}).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, svc.Delete(result.Property.ID), ErrPropertyNotFound)
}

func TestToggleStatus(t *testing.T) {
	svc, admin := newPropertyService(t)

	result, err := svc.Create(admin.ID, sampleInput(), Uploads{})
	require.NoError(t, err)

	status, err := svc.ToggleStatus(result.Property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, status)

	status, err = svc.ToggleStatus(result.Property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, status)

	status, err = svc.ToggleStatus(result.Property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, status)
}

func TestDashboardCounters(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	createProperty(t, db, owner, models.Property{Name: "A", Location: "多伦多", Price: 1})
	createProperty(t, db, owner, models.Property{Name: "B", Location: "多伦多", Price: 1, Status: models.StatusPending})
	createProperty(t, db, owner, models.Property{Name: "C", Location: "多伦多", Price: 1, Status: models.StatusInactive})

	stats, err := Dashboard(db)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalProperties)
	assert.Equal(t, int64(1), stats.ActiveProperties)
	assert.Equal(t, int64(1), stats.PendingProperties)
	assert.Equal(t, int64(1), stats.InactiveProperties)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.Orders)
	assert.Equal(t, int64(1), stats.Messages)
}
