package services

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/example/unihome/internal/models"
)

// Placeholder content served when a listing has none of its own.
const (
	FallbackMapURL      = "https://www.google.com/maps/embed?pb=!1m18!1m12!1m3!1d2886.2008271359426!2d-79.39939548450163!3d43.66098397912126!2m3!1f0!2f0!3f0!3m2!1i1024!2i768!4f13.1!3m3!1m2!1s0x882b34b8a4000001%3A0x50fea143d86f2d30!2sUniversity%20of%20Toronto!5e0!3m2!1sen!2sca!4v1620927112519!5m2!1sen!2sca"
	FallbackDescription = "本房源暂无详细介绍。欢迎联系房东获取更多信息。"
	fallbackLandlord    = "房源管理员"
)

// overridable lists the keys extra_info may replace.
var overridable = []string{"desc", "facilities", "traffic", "surroundings", "map", "videos"}

// Icon is a labelled Font Awesome entry used for facilities, traffic and surroundings.
type Icon struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// Landlord is the contact block shown on a listing.
type Landlord struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Wechat string `json:"wechat"`
}

// PropertyRecord is the flat representation of a listing returned by the API and
// handed to templates.
type PropertyRecord struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Location       string          `json:"location"`
	LocationID     *uint           `json:"location_id"`
	Country        string          `json:"country"`
	Address        string          `json:"address"`
	Price          float64         `json:"price"`
	Currency       string          `json:"currency"`
	Bedrooms       *int            `json:"bedrooms"`
	Bathrooms      *int            `json:"bathrooms"`
	Area           *float64        `json:"area"`
	PropertyType   string          `json:"property_type"`
	PropertyTypeID *uint           `json:"property_type_id"`
	Status         string          `json:"status"`
	UserID         uint            `json:"user_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Rent           *float64        `json:"rent"`
	Deposit        *float64        `json:"deposit"`
	Utility        string          `json:"utility"`
	MinTerm        string          `json:"min_term"`
	MinTermAlias   string          `json:"minTerm"`
	Images         []string        `json:"images"`
	Videos         interface{}     `json:"videos"`
	Video          string          `json:"video"`
	Map            string          `json:"map"`
	Desc           interface{}     `json:"desc"`
	Facilities     interface{}     `json:"facilities"`
	Traffic        interface{}     `json:"traffic"`
	Surroundings   interface{}     `json:"surroundings"`
	Landlord       Landlord        `json:"landlord"`
	ExtraInfo      json.RawMessage `json:"-"`
}

// DescLines returns desc as strings for templates; anything else is dropped.
func (r PropertyRecord) DescLines() []string {
	return stringList(r.Desc)
}

// IconList returns the named icon collection for templates.
func (r PropertyRecord) IconList(key string) []Icon {
	var raw interface{}
	switch key {
	case "facilities":
		raw = r.Facilities
	case "traffic":
		raw = r.Traffic
	case "surroundings":
		raw = r.Surroundings
	}
	return iconList(raw)
}

// FirstImage returns the cover image or the default avatar.
func (r PropertyRecord) FirstImage() string {
	if len(r.Images) > 0 {
		return r.Images[0]
	}
	return models.DefaultAvatar
}

// SerializeProperty maps a property with Owner, Images and Videos loaded to its
// record. Values resolve in order: columns, extra_info, seed content, placeholders.
func SerializeProperty(p *models.Property) PropertyRecord {
	record := PropertyRecord{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Location:       p.Location,
		LocationID:     p.LocationID,
		Country:        p.Country,
		Address:        p.Address,
		Price:          p.Price,
		Currency:       p.Currency,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		Area:           p.Area,
		PropertyType:   p.PropertyType,
		PropertyTypeID: p.PropertyTypeID,
		Status:         p.Status,
		UserID:         p.UserID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Rent:           p.Rent,
		Deposit:        p.Deposit,
		Utility:        p.Utility,
		MinTerm:        p.MinTerm,
		MinTermAlias:   p.MinTerm,
		Images:         p.ImagePaths(),
		Videos:         p.VideoPaths(),
		ExtraInfo:      json.RawMessage(p.ExtraInfo),
	}

	values := map[string]interface{}{}
	extra := decodeObject(p.ExtraInfo)
	for _, key := range overridable {
		if v, ok := extra[key]; ok && !isEmpty(v) {
			values[key] = v
		}
	}
	if v, ok := values["videos"]; ok {
		record.Videos = v
	}

	if video, ok := extra["video"].(string); ok && video != "" {
		record.Video = video
	} else if first := firstString(record.Videos); first != "" {
		record.Video = first
	}

	record.Landlord = landlordFor(p.Owner)

	seed := decodeObject(p.SeedContent)
	for key, v := range seed {
		if isEmpty(v) {
			continue
		}
		switch key {
		case "landlord":
			if landlord, ok := decodeLandlord(v); ok {
				record.Landlord = landlord
			}
		case "video":
			if video, ok := v.(string); ok {
				record.Video = video
			}
		case "videos":
			record.Videos = v
		case "images":
			if images := stringList(v); len(images) > 0 {
				record.Images = images
			}
		case "desc", "facilities", "traffic", "surroundings", "map":
			values[key] = v
		}
	}

	record.Desc = values["desc"]
	if record.Desc == nil {
		if p.Description != "" {
			record.Desc = []string{}
		} else {
			record.Desc = []string{FallbackDescription}
		}
	}

	record.Facilities = valueOr(values["facilities"], []Icon{
		{Icon: "fa-wifi", Label: "免费WiFi"},
		{Icon: "fa-tv", Label: "电视"},
		{Icon: "fa-parking", Label: "停车位"},
	})
	record.Traffic = valueOr(values["traffic"], []Icon{{Icon: "fa-bus", Label: "附近公交站"}})
	record.Surroundings = valueOr(values["surroundings"], []Icon{{Icon: "fa-shopping-basket", Label: "附近超市"}})

	record.Map = FallbackMapURL
	if m, ok := values["map"].(string); ok && m != "" {
		record.Map = m
	}

	if isEmpty(record.Videos) {
		record.Videos = []string{}
	}
	if record.Images == nil {
		record.Images = []string{}
	}

	return record
}

// SerializeProperties maps a slice of properties.
func SerializeProperties(properties []models.Property) []PropertyRecord {
	records := make([]PropertyRecord, 0, len(properties))
	for i := range properties {
		records = append(records, SerializeProperty(&properties[i]))
	}
	return records
}

func landlordFor(owner *models.User) Landlord {
	if owner == nil {
		return Landlord{Name: fallbackLandlord, Avatar: models.DefaultAvatar}
	}

	avatar := owner.Avatar
	if avatar == "" {
		avatar = models.DefaultAvatar
	}

	return Landlord{
		Name:   owner.NameOrUsername(),
		Avatar: avatar,
		Phone:  owner.Phone,
		Email:  owner.Email,
		Wechat: owner.Wechat,
	}
}

func decodeLandlord(v interface{}) (Landlord, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Landlord{}, false
	}
	var landlord Landlord
	if err := json.Unmarshal(raw, &landlord); err != nil {
		return Landlord{}, false
	}
	if landlord.Avatar == "" {
		landlord.Avatar = models.DefaultAvatar
	}
	return landlord, true
}

// decodeObject tolerates missing or malformed JSON by returning an empty map.
func decodeObject(raw datatypes.JSON) map[string]interface{} {
	out := map[string]interface{}{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]interface{}{}
	}
	return out
}

func isEmpty(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case bool:
		return !value
	case float64:
		return value == 0
	case []interface{}:
		return len(value) == 0
	case []string:
		return len(value) == 0
	case map[string]interface{}:
		return len(value) == 0
	}
	return false
}

func valueOr(v, fallback interface{}) interface{} {
	if isEmpty(v) {
		return fallback
	}
	return v
}

func firstString(v interface{}) string {
	list := stringList(v)
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func iconList(v interface{}) []Icon {
	switch list := v.(type) {
	case []Icon:
		return list
	case []interface{}:
		out := make([]Icon, 0, len(list))
		for _, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			icon, _ := entry["icon"].(string)
			label, _ := entry["label"].(string)
			if label == "" {
				continue
			}
			out = append(out, Icon{Icon: icon, Label: label})
		}
		return out
	}
	return nil
}
