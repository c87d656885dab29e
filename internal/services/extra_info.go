package services

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// IconOption is a form checkbox and the icon it stores.
type IconOption struct {
	Key string
	Icon
}

// FacilityOptions are the facility checkboxes offered by the property form.
var FacilityOptions = []IconOption{
	{"wifi", Icon{"fa-wifi", "免费WiFi"}},
	{"tv", Icon{"fa-tv", "电视"}},
	{"parking", Icon{"fa-parking", "停车位"}},
	{"air_conditioning", Icon{"fa-snowflake", "空调"}},
	{"heating", Icon{"fa-fire", "暖气"}},
	{"kitchen", Icon{"fa-utensils", "厨房"}},
	{"refrigerator", Icon{"fa-cube", "冰箱"}},
	{"microwave", Icon{"fa-microchip", "微波炉"}},
	{"washing_machine", Icon{"fa-tshirt", "洗衣机"}},
	{"dishwasher", Icon{"fa-sink", "洗碗机"}},
	{"gym", Icon{"fa-dumbbell", "健身房"}},
	{"pool", Icon{"fa-swimming-pool", "游泳池"}},
	{"elevator", Icon{"fa-elevator", "电梯"}},
	{"security", Icon{"fa-shield-alt", "24小时安保"}},
	{"pets_allowed", Icon{"fa-paw", "允许宠物"}},
}

// TrafficOptions are the transport checkboxes offered by the property form.
var TrafficOptions = []IconOption{
	{"bus", Icon{"fa-bus", "附近公交站"}},
	{"subway", Icon{"fa-subway", "地铁站"}},
	{"taxi", Icon{"fa-taxi", "出租车站"}},
	{"bike", Icon{"fa-bicycle", "共享单车"}},
	{"airport", Icon{"fa-plane", "机场巴士"}},
}

// SurroundingOptions are the neighbourhood checkboxes offered by the property form.
var SurroundingOptions = []IconOption{
	{"supermarket", Icon{"fa-shopping-basket", "附近超市"}},
	{"mall", Icon{"fa-shopping-bag", "购物中心"}},
	{"restaurant", Icon{"fa-utensils", "餐厅"}},
	{"school", Icon{"fa-school", "学校"}},
	{"hospital", Icon{"fa-hospital", "医院"}},
	{"library", Icon{"fa-book", "图书馆"}},
	{"park", Icon{"fa-tree", "公园"}},
	{"gym", Icon{"fa-dumbbell", "健身房"}},
	{"cinema", Icon{"fa-film", "电影院"}},
}

// Icons used for free-text entries.
const (
	customFacilityIcon    = "fa-check"
	customTrafficIcon     = "fa-route"
	customSurroundingIcon = "fa-map-marker-alt"
)

// ExtraInfoForm is the structured part of the property form.
type ExtraInfoForm struct {
	Facilities         []string
	CustomFacilities   string
	Traffic            []string
	CustomTraffic      string
	Surroundings       []string
	CustomSurroundings string
	Desc               string
	Map                string
	Video              string
}

// BuildExtraInfo converts the form into the extra_info document. It returns nil
// when the form supplied nothing, in which case the stored value must be kept.
func BuildExtraInfo(form ExtraInfoForm) datatypes.JSON {
	extra := map[string]interface{}{}

	if list := pickIcons(FacilityOptions, form.Facilities, form.CustomFacilities, customFacilityIcon); len(list) > 0 {
		extra["facilities"] = list
	}
	if list := pickIcons(TrafficOptions, form.Traffic, form.CustomTraffic, customTrafficIcon); len(list) > 0 {
		extra["traffic"] = list
	}
	if list := pickIcons(SurroundingOptions, form.Surroundings, form.CustomSurroundings, customSurroundingIcon); len(list) > 0 {
		extra["surroundings"] = list
	}

	if form.Desc != "" {
		var desc interface{}
		if err := json.Unmarshal([]byte(form.Desc), &desc); err == nil {
			extra["desc"] = desc
		}
	}
	if form.Map != "" {
		extra["map"] = form.Map
	}
	if form.Video != "" {
		extra["video"] = form.Video
	}

	if len(extra) == 0 {
		return nil
	}

	raw, err := json.Marshal(extra)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// SelectedKeys reports which option keys of an existing extra_info list are
// present, for pre-checking the edit form.
func SelectedKeys(options []IconOption, current interface{}) map[string]bool {
	selected := map[string]bool{}
	for _, entry := range iconList(current) {
		for _, opt := range options {
			if opt.Icon == entry {
				selected[opt.Key] = true
			}
		}
	}
	return selected
}

func pickIcons(options []IconOption, selected []string, custom, customIcon string) []Icon {
	var list []Icon
	for _, key := range selected {
		for _, opt := range options {
			if opt.Key == key {
				list = append(list, opt.Icon)
				break
			}
		}
	}

	for _, entry := range strings.Split(strings.TrimSpace(custom), ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			list = append(list, Icon{Icon: customIcon, Label: entry})
		}
	}

	return list
}
