package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/example/unihome/internal/models"
)

func TestSerializeBarePropertyUsesFallbacks(t *testing.T) {
	record := SerializeProperty(&models.Property{Name: "Bare", Location: "多伦多", MinTerm: "4个月"})

	assert.Equal(t, []string{FallbackDescription}, record.Desc)
	assert.Len(t, record.IconList("facilities"), 3)
	assert.Equal(t, []Icon{{Icon: "fa-bus", Label: "附近公交站"}}, record.IconList("traffic"))
	assert.Equal(t, []Icon{{Icon: "fa-shopping-basket", Label: "附近超市"}}, record.IconList("surroundings"))
	assert.Equal(t, FallbackMapURL, record.Map)
	assert.Equal(t, "", record.Video)
	assert.Equal(t, []string{}, record.Videos)
	assert.Equal(t, []string{}, record.Images)
	assert.Equal(t, "4个月", record.MinTerm)
	assert.Equal(t, record.MinTerm, record.MinTermAlias)
	assert.Equal(t, fallbackLandlord, record.Landlord.Name)
	assert.Equal(t, models.DefaultAvatar, record.FirstImage())
}

func TestSerializeSuppressesDescFallbackWhenDescriptionPresent(t *testing.T) {
	record := SerializeProperty(&models.Property{Description: "Close to campus"})

	assert.Equal(t, []string{}, record.Desc)
	assert.Empty(t, record.DescLines())
}

func TestSerializeExtraInfoOverridesColumns(t *testing.T) {
	p := &models.Property{
		Images:    []models.PropertyImage{{Path: "static/uploads/a.png"}},
		Videos:    []models.PropertyVideo{{Path: "static/uploads/tour.mp4"}},
		ExtraInfo: datatypes.JSON(`{"desc":["one","two"],"facilities":[{"icon":"fa-gym","label":"Gym"}],"map":"https://maps.example.com","traffic":[]}`),
		Owner:     &models.User{Username: "landlord", DisplayName: "Ms. Lee", Phone: "123"},
	}

	record := SerializeProperty(p)

	assert.Equal(t, []string{"one", "two"}, record.DescLines())
	assert.Equal(t, []Icon{{Icon: "fa-gym", Label: "Gym"}}, record.IconList("facilities"))
	assert.Equal(t, []Icon{{Icon: "fa-bus", Label: "附近公交站"}}, record.IconList("traffic"))
	assert.Equal(t, "https://maps.example.com", record.Map)
	assert.Equal(t, "static/uploads/tour.mp4", record.Video)
	assert.Equal(t, "static/uploads/a.png", record.FirstImage())
	assert.Equal(t, "Ms. Lee", record.Landlord.Name)
	assert.Equal(t, models.DefaultAvatar, record.Landlord.Avatar)
}

func TestSerializeExtraVideoBeatsUploadedVideo(t *testing.T) {
	p := &models.Property{
		Videos:    []models.PropertyVideo{{Path: "static/uploads/tour.mp4"}},
		ExtraInfo: datatypes.JSON(`{"video":"https://video.example.com/embed"}`),
	}

	assert.Equal(t, "https://video.example.com/embed", SerializeProperty(p).Video)
}

func TestSerializeSeedContentOverridesExtraInfo(t *testing.T) {
	p := &models.Property{
		ExtraInfo:   datatypes.JSON(`{"map":"https://extra.example.com","video":"https://extra.example.com/v"}`),
		SeedContent: datatypes.JSON(`{"map":"https://seed.example.com","video":"https://seed.example.com/v","images":["static/images/ic_e_a.png"],"landlord":{"name":"Seed Admin","phone":"+1"}}`),
		Owner:       &models.User{Username: "owner"},
	}

	record := SerializeProperty(p)

	assert.Equal(t, "https://seed.example.com", record.Map)
	assert.Equal(t, "https://seed.example.com/v", record.Video)
	assert.Equal(t, []string{"static/images/ic_e_a.png"}, record.Images)
	assert.Equal(t, "Seed Admin", record.Landlord.Name)
	assert.Equal(t, models.DefaultAvatar, record.Landlord.Avatar)
}

func TestSerializeToleratesMalformedExtraInfo(t *testing.T) {
	require.NotPanics(t, func() {
		record := SerializeProperty(&models.Property{ExtraInfo: datatypes.JSON(`not json`)})
		assert.Equal(t, FallbackMapURL, record.Map)
	})

	record := SerializeProperty(&models.Property{ExtraInfo: datatypes.JSON(`{"desc":42,"facilities":"wifi"}`)})
	assert.Empty(t, record.DescLines())
	assert.Empty(t, record.IconList("facilities"))
}
